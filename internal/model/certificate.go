package model

import (
	"time"
)

// Certificate 课程完成证书
type Certificate struct {
	UUIDBase
	UserID          string    `gorm:"size:36;index;not null" json:"userId"`
	CourseID        string    `gorm:"size:36;index;not null" json:"courseId"`
	UserName        string    `gorm:"size:100" json:"userName"`
	CourseTitle     string    `gorm:"size:200" json:"courseTitle"`
	CertificateCode string    `gorm:"size:50;unique;not null" json:"certificateCode"`
	FileURL         string    `gorm:"size:500" json:"fileUrl"`
	IssuedAt        time.Time `json:"issuedAt"`
}

func (Certificate) TableName() string {
	return "certificates"
}
