package model

import (
	"time"
)

type EnrollmentStatus string

const (
	Enrolled           EnrollmentStatus = "enrolled"
	EnrollmentProgress EnrollmentStatus = "in_progress"
	EnrollmentDone     EnrollmentStatus = "completed"
)

type Enrollment struct {
	UUIDBase
	UserID             string           `gorm:"size:36;index;not null" json:"userId"`
	CourseID           string           `gorm:"size:36;index;not null" json:"courseId"`
	Status             EnrollmentStatus `gorm:"type:enum('enrolled','in_progress','completed');default:'enrolled'" json:"status"`
	ProgressPercentage int              `gorm:"default:0" json:"progressPercentage"`
	CompletedAt        *time.Time       `json:"completedAt"`
}

func (Enrollment) TableName() string {
	return "enrollments"
}
