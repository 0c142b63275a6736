package model

import (
	"time"
)

// AnswerUnselected 表示该题在提交时未作答（限时到期强制提交会出现）
const AnswerUnselected = -1

// QuizResult 一次已提交测验尝试的不可变记录
type QuizResult struct {
	UUIDBase
	QuizID string  `gorm:"size:36;index;not null" json:"quizId"`
	UserID string  `gorm:"size:36;index;not null" json:"userId"`
	Score  float64 `gorm:"not null" json:"score"`
	Passed bool    `gorm:"not null" json:"passed"`
	// Answers 与题目顺序对齐；未作答记为 AnswerUnselected
	Answers     []int     `gorm:"serializer:json;type:json" json:"answers"`
	CompletedAt time.Time `json:"completedAt"`
}

func (QuizResult) TableName() string {
	return "quiz_results"
}
