package model

type CourseStatus string

const (
	CourseDraft     CourseStatus = "draft"
	CoursePublished CourseStatus = "published"
)

// swagger:model Course
type Course struct {
	UUIDBase
	Title       string       `gorm:"size:255;not null" json:"title"`
	Description string       `gorm:"type:text" json:"description"`
	Category    string       `gorm:"size:100" json:"category"`
	Thumbnail   string       `gorm:"size:255" json:"thumbnail"`
	Duration    string       `gorm:"size:50" json:"duration"`
	Status      CourseStatus `gorm:"type:enum('draft','published');default:'draft'" json:"status"`
	CreatedBy   string       `gorm:"size:36;index;not null" json:"createdBy"`
	TrainerName string       `gorm:"size:100" json:"trainer"`
	Enrolled    int          `gorm:"default:0" json:"enrolled"`
	Rating      float64      `gorm:"default:0" json:"rating"`
	// Progress/IsCompleted 为派生字段：仅由模块完成状态重算，禁止直接写入
	Progress    int      `gorm:"default:0" json:"progress"`
	IsCompleted bool     `gorm:"default:false" json:"isCompleted"`
	Modules     []Module `gorm:"foreignKey:CourseID" json:"modules,omitempty"`
}

func (Course) TableName() string {
	return "courses"
}
