package model

import (
	"time"
)

type UserRole string

const (
	Admin   UserRole = "admin"
	Trainer UserRole = "trainer"
	DSE     UserRole = "dse"
)

// swagger:model User
type User struct {
	UUIDBase
	Name       string   `gorm:"size:100;not null" json:"name"`
	Email      string   `gorm:"size:100;unique;not null" json:"email"`
	Password   string   `gorm:"size:100" json:"-"`
	Role       UserRole `gorm:"type:enum('admin','trainer','dse');default:'dse'" json:"role"`
	AuthID     *string  `gorm:"size:64;uniqueIndex" json:"-"` // 外部身份标识（Google OAuth subject）
	Avatar     string   `gorm:"size:255" json:"avatar"`
	Department string   `gorm:"size:100" json:"department"`
	Region     string   `gorm:"size:100" json:"region"`
	EmployeeID string   `gorm:"size:50" json:"employeeId"`
	Phone      string   `gorm:"size:30" json:"phone"`
	// 游戏化属性：积分驱动排行榜，等级由积分换算
	Points    int       `gorm:"default:0" json:"points"`
	Level     int       `gorm:"default:1" json:"level"`
	JoinDate  time.Time `gorm:"default:CURRENT_TIMESTAMP(3)" json:"joinDate"`
	LastLogin time.Time `gorm:"default:CURRENT_TIMESTAMP(3)" json:"lastLogin"`
	LastSeen  time.Time `gorm:"default:CURRENT_TIMESTAMP(3)" json:"lastSeen"`
}

func (User) TableName() string {
	return "profiles"
}
