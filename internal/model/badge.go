package model

import (
	"time"
)

type BadgeRarity string

const (
	BadgeCommon    BadgeRarity = "common"
	BadgeRare      BadgeRarity = "rare"
	BadgeEpic      BadgeRarity = "epic"
	BadgeLegendary BadgeRarity = "legendary"
)

// Badge 静态奖励定义
// swagger:model Badge
type Badge struct {
	UUIDBase
	Name        string      `gorm:"size:100;not null" json:"name"`
	Description string      `gorm:"type:text" json:"description"`
	Icon        string      `gorm:"size:50" json:"icon"`
	Rarity      BadgeRarity `gorm:"type:enum('common','rare','epic','legendary');default:'common'" json:"rarity"`
	// Criteria 授予条件编码，见 service 层内置条件常量
	Criteria string `gorm:"size:100;index" json:"criteria"`
}

func (Badge) TableName() string {
	return "badges"
}

// UserBadge 用户已获得的徽章
type UserBadge struct {
	UUIDBase
	UserID   string    `gorm:"size:36;index;not null" json:"userId"`
	BadgeID  string    `gorm:"size:36;index;not null" json:"badgeId"`
	EarnedAt time.Time `json:"earnedAt"`
}

func (UserBadge) TableName() string {
	return "user_badges"
}
