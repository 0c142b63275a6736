package service

import (
	"context"
	"indosat_lms_backend/internal/model"
	"indosat_lms_backend/internal/repository"
	"indosat_lms_backend/internal/util"
	"mime/multipart"

	"gorm.io/gorm"
)

// ProfileUpdate 仅允许用户自改的字段；积分、等级、角色由系统维护
type ProfileUpdate struct {
	Name       *string `json:"name"`
	Department *string `json:"department"`
	Region     *string `json:"region"`
	Phone      *string `json:"phone"`
}

type UserService struct {
	UserRepo *repository.UserRepository
	Storage  *StorageService
}

func NewUserService(userRepo *repository.UserRepository, storage *StorageService) *UserService {
	return &UserService{UserRepo: userRepo, Storage: storage}
}

func (s *UserService) GetProfile(userID string) (*model.User, error) {
	user, err := s.UserRepo.FindByID(userID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, util.ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

func (s *UserService) UpdateProfile(userID string, update ProfileUpdate) (*model.User, error) {
	user, err := s.GetProfile(userID)
	if err != nil {
		return nil, err
	}

	if update.Name != nil && *update.Name != "" {
		user.Name = *update.Name
	}
	if update.Department != nil {
		user.Department = *update.Department
	}
	if update.Region != nil {
		user.Region = *update.Region
	}
	if update.Phone != nil {
		user.Phone = *update.Phone
	}

	if err := s.UserRepo.Update(user); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *UserService) UpdateAvatar(ctx context.Context, userID string, header *multipart.FileHeader) (*model.User, error) {
	user, err := s.GetProfile(userID)
	if err != nil {
		return nil, err
	}

	url, err := s.Storage.UploadAvatar(ctx, userID, header)
	if err != nil {
		return nil, err
	}

	user.Avatar = url
	if err := s.UserRepo.Update(user); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *UserService) ListUsers() ([]model.User, error) {
	return s.UserRepo.FindAll()
}

func (s *UserService) Heartbeat(userID string) error {
	return s.UserRepo.UpdateLastSeen(userID)
}
