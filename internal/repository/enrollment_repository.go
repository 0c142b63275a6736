package repository

import (
	"indosat_lms_backend/internal/model"
	"time"

	"gorm.io/gorm"
)

type EnrollmentRepository struct {
	DB *gorm.DB
}

func NewEnrollmentRepository(db *gorm.DB) *EnrollmentRepository {
	return &EnrollmentRepository{DB: db}
}

// GetOrCreate 返回用户在课程上的报名记录，不存在则创建
func (r *EnrollmentRepository) GetOrCreate(userID, courseID string) (*model.Enrollment, error) {
	var enrollment model.Enrollment
	err := r.DB.Transaction(func(tx *gorm.DB) error {
		err := tx.Where("user_id = ? AND course_id = ?", userID, courseID).First(&enrollment).Error
		if err == nil {
			return nil
		}
		if err != gorm.ErrRecordNotFound {
			return err
		}
		enrollment = model.Enrollment{
			UserID:   userID,
			CourseID: courseID,
			Status:   model.Enrolled,
		}
		return tx.Create(&enrollment).Error
	})
	if err != nil {
		return nil, err
	}
	return &enrollment, nil
}

func (r *EnrollmentRepository) UpdateProgress(id string, progress int) error {
	updates := map[string]interface{}{
		"progress_percentage": progress,
		"status":              model.EnrollmentProgress,
	}
	if progress >= 100 {
		now := time.Now()
		updates["status"] = model.EnrollmentDone
		updates["completed_at"] = &now
	}
	return r.DB.Model(&model.Enrollment{}).Where("id = ?", id).Updates(updates).Error
}

func (r *EnrollmentRepository) FindByUser(userID string) ([]model.Enrollment, error) {
	var enrollments []model.Enrollment
	err := r.DB.Where("user_id = ?", userID).Find(&enrollments).Error
	return enrollments, err
}

func (r *EnrollmentRepository) CountCompletedByUser(userID string) (int64, error) {
	var count int64
	err := r.DB.Model(&model.Enrollment{}).
		Where("user_id = ? AND status = ?", userID, model.EnrollmentDone).
		Count(&count).Error
	return count, err
}

func (r *EnrollmentRepository) CountByCourse(courseID string) (int64, error) {
	var count int64
	err := r.DB.Model(&model.Enrollment{}).Where("course_id = ?", courseID).Count(&count).Error
	return count, err
}
