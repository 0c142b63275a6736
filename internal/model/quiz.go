package model

// swagger:model Quiz
type Quiz struct {
	UUIDBase
	ModuleID string `gorm:"size:36;uniqueIndex;not null" json:"moduleId"`
	Title    string `gorm:"size:255;not null" json:"title"`
	// PassingScore 及格线（0-100 百分比）
	PassingScore int `gorm:"default:70" json:"passingScore"`
	// TimeLimit 答题时限（分钟），0 表示不限时
	TimeLimit int        `gorm:"default:0" json:"timeLimit"`
	XPBonus   int        `gorm:"default:0" json:"xpBonus"`
	Questions []Question `gorm:"foreignKey:QuizID" json:"questions,omitempty"`
}

func (Quiz) TableName() string {
	return "quizzes"
}

// swagger:model Question
type Question struct {
	UUIDBase
	QuizID   string   `gorm:"size:36;index;not null" json:"quizId"`
	Text     string   `gorm:"type:text;not null" json:"question"`
	Options  []string `gorm:"serializer:json;type:json" json:"options"`
	// CorrectAnswer 为 Options 的下标（从0开始）
	CorrectAnswer int    `gorm:"not null" json:"correctAnswer"`
	Explanation   string `gorm:"type:text" json:"explanation"`
	Order         int    `gorm:"default:0" json:"order"`
}

func (Question) TableName() string {
	return "questions"
}
