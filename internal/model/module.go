package model

// Module 课程内的单个学习单元（视频 + 可选文档 + 测验）
// swagger:model Module
type Module struct {
	UUIDBase
	CourseID    string `gorm:"size:36;index;not null" json:"courseId"`
	Title       string `gorm:"size:255;not null" json:"title"`
	Description string `gorm:"type:text" json:"description"`
	// ContentText 富文本正文（JSON 序列化）
	ContentText     string `gorm:"type:text" json:"contentText"`
	VideoURL        string `gorm:"size:500" json:"videoUrl"`
	DocURL          string `gorm:"size:500" json:"docUrl"`
	DurationMinutes int    `gorm:"default:0" json:"durationMinutes"`
	XPAmount        int    `gorm:"default:0" json:"xpAmount"`
	// Order 由培训师编辑，不保证唯一或连续；展示时按升序排序
	Order       int  `gorm:"default:0" json:"order"`
	IsCompleted bool `gorm:"default:false" json:"isCompleted"`
}

func (Module) TableName() string {
	return "modules"
}
