package repository

import (
	"indosat_lms_backend/internal/model"
	"time"

	"gorm.io/gorm"
)

type BadgeRepository struct {
	DB *gorm.DB
}

func NewBadgeRepository(db *gorm.DB) *BadgeRepository {
	return &BadgeRepository{DB: db}
}

func (r *BadgeRepository) FindAll() ([]model.Badge, error) {
	var badges []model.Badge
	err := r.DB.Find(&badges).Error
	return badges, err
}

func (r *BadgeRepository) FindByID(id string) (*model.Badge, error) {
	var badge model.Badge
	err := r.DB.First(&badge, "id = ?", id).Error
	return &badge, err
}

// Award 给用户颁发徽章，已持有时不重复颁发
func (r *BadgeRepository) Award(userID, badgeID string) error {
	return r.DB.Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&model.UserBadge{}).
			Where("user_id = ? AND badge_id = ?", userID, badgeID).
			Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return nil
		}
		return tx.Create(&model.UserBadge{
			UserID:   userID,
			BadgeID:  badgeID,
			EarnedAt: time.Now(),
		}).Error
	})
}

func (r *BadgeRepository) FindByUser(userID string) ([]model.UserBadge, error) {
	var earned []model.UserBadge
	err := r.DB.Where("user_id = ?", userID).Order("earned_at DESC").Find(&earned).Error
	return earned, err
}

func (r *BadgeRepository) CountByUser(userID string) (int64, error) {
	var count int64
	err := r.DB.Model(&model.UserBadge{}).Where("user_id = ?", userID).Count(&count).Error
	return count, err
}
