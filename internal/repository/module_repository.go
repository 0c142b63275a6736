package repository

import (
	"indosat_lms_backend/internal/model"

	"gorm.io/gorm"
)

type ModuleRepository struct {
	DB *gorm.DB
}

func NewModuleRepository(db *gorm.DB) *ModuleRepository {
	return &ModuleRepository{DB: db}
}

func (r *ModuleRepository) Create(module *model.Module) error {
	return r.DB.Create(module).Error
}

func (r *ModuleRepository) FindByID(id string) (*model.Module, error) {
	var module model.Module
	err := r.DB.First(&module, "id = ?", id).Error
	return &module, err
}

// FindByCourse 按 order 升序返回课程模块；order 不保证唯一，重复值按插入序并列
func (r *ModuleRepository) FindByCourse(courseID string) ([]model.Module, error) {
	var modules []model.Module
	err := r.DB.Where("course_id = ?", courseID).Order("`order` ASC").Find(&modules).Error
	return modules, err
}

func (r *ModuleRepository) Update(module *model.Module) error {
	return r.DB.Save(module).Error
}

func (r *ModuleRepository) SetCompleted(id string, completed bool) error {
	return r.DB.Model(&model.Module{}).
		Where("id = ?", id).
		Update("is_completed", completed).Error
}

func (r *ModuleRepository) CountByCourse(courseID string) (int64, error) {
	var count int64
	err := r.DB.Model(&model.Module{}).Where("course_id = ?", courseID).Count(&count).Error
	return count, err
}

func (r *ModuleRepository) CountCompletedByCourse(courseID string) (int64, error) {
	var count int64
	err := r.DB.Model(&model.Module{}).
		Where("course_id = ? AND is_completed = ?", courseID, true).
		Count(&count).Error
	return count, err
}

func (r *ModuleRepository) Count() (int64, error) {
	var count int64
	err := r.DB.Model(&model.Module{}).Count(&count).Error
	return count, err
}
