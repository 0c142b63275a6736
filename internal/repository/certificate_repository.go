package repository

import (
	"indosat_lms_backend/internal/model"

	"gorm.io/gorm"
)

type CertificateRepository struct {
	DB *gorm.DB
}

func NewCertificateRepository(db *gorm.DB) *CertificateRepository {
	return &CertificateRepository{DB: db}
}

// GetOrCreate 同一用户同一课程只签发一张证书
func (r *CertificateRepository) GetOrCreate(cert *model.Certificate) (*model.Certificate, error) {
	var existing model.Certificate
	err := r.DB.Transaction(func(tx *gorm.DB) error {
		err := tx.Where("user_id = ? AND course_id = ?", cert.UserID, cert.CourseID).First(&existing).Error
		if err == nil {
			return nil
		}
		if err != gorm.ErrRecordNotFound {
			return err
		}
		if err := tx.Create(cert).Error; err != nil {
			return err
		}
		existing = *cert
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &existing, nil
}

func (r *CertificateRepository) FindByUser(userID string) ([]model.Certificate, error) {
	var certs []model.Certificate
	err := r.DB.Where("user_id = ?", userID).Order("issued_at DESC").Find(&certs).Error
	return certs, err
}

func (r *CertificateRepository) FindByCode(code string) (*model.Certificate, error) {
	var cert model.Certificate
	err := r.DB.Where("certificate_code = ?", code).First(&cert).Error
	return &cert, err
}
