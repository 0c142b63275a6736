package repository

import (
	"indosat_lms_backend/internal/model"

	"gorm.io/gorm"
)

type CourseRepository struct {
	DB *gorm.DB
}

func NewCourseRepository(db *gorm.DB) *CourseRepository {
	return &CourseRepository{DB: db}
}

func (r *CourseRepository) Create(course *model.Course) error {
	return r.DB.Create(course).Error
}

func (r *CourseRepository) FindByID(id string) (*model.Course, error) {
	var course model.Course
	err := r.DB.First(&course, "id = ?", id).Error
	return &course, err
}

func (r *CourseRepository) FindByCreator(userID string) ([]model.Course, error) {
	var courses []model.Course
	err := r.DB.Where("created_by = ?", userID).Order("created_at DESC").Find(&courses).Error
	return courses, err
}

func (r *CourseRepository) FindPublished() ([]model.Course, error) {
	var courses []model.Course
	err := r.DB.Where("status = ?", model.CoursePublished).Order("created_at DESC").Find(&courses).Error
	return courses, err
}

func (r *CourseRepository) Update(course *model.Course) error {
	return r.DB.Save(course).Error
}

// UpdateStatus 幂等的状态更新：已处于目标状态时也视为成功
func (r *CourseRepository) UpdateStatus(id string, status model.CourseStatus) error {
	return r.DB.Model(&model.Course{}).
		Where("id = ?", id).
		Update("status", status).Error
}

// UpdateProgress 派生字段的唯一写入口，进度由 service 层重算后落库
func (r *CourseRepository) UpdateProgress(id string, progress int, completed bool) error {
	return r.DB.Model(&model.Course{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"progress":     progress,
			"is_completed": completed,
		}).Error
}

func (r *CourseRepository) FindCompleted() ([]model.Course, error) {
	var courses []model.Course
	err := r.DB.Where("is_completed = ?", true).Find(&courses).Error
	return courses, err
}

func (r *CourseRepository) Count() (int64, error) {
	var count int64
	err := r.DB.Model(&model.Course{}).Count(&count).Error
	return count, err
}
