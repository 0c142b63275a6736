package repository

import (
	"indosat_lms_backend/internal/model"
	"indosat_lms_backend/internal/util"
	"time"

	"gorm.io/gorm"
)

type UserRepository struct {
	DB *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{DB: db}
}

func (r *UserRepository) Create(user *model.User) error {
	return r.DB.Create(user).Error
}

func (r *UserRepository) FindByID(id string) (*model.User, error) {
	var user model.User
	err := r.DB.First(&user, "id = ?", id).Error
	return &user, err
}

func (r *UserRepository) FindByEmail(email string) (*model.User, error) {
	var user model.User
	err := r.DB.Where("email = ?", email).First(&user).Error
	return &user, err
}

// FindByAuthID 按外部身份标识查询档案。
// 返回 gorm.ErrRecordNotFound（无记录）或 util.ErrAmbiguousProfile（多行，
// 数据完整性异常），两者由上层走同一条 get-or-create 补救路径。
func (r *UserRepository) FindByAuthID(authID string) (*model.User, error) {
	var users []model.User
	if err := r.DB.Where("auth_id = ?", authID).Limit(2).Find(&users).Error; err != nil {
		return nil, err
	}
	switch len(users) {
	case 0:
		return nil, gorm.ErrRecordNotFound
	case 1:
		return &users[0], nil
	default:
		return nil, util.ErrAmbiguousProfile
	}
}

// GetOrCreateByAuthID 幂等的档案获取或创建：存在即返回既有行，
// 否则在同一事务内创建并返回。重复调用安全。
func (r *UserRepository) GetOrCreateByAuthID(authID, email, name string, role model.UserRole) (*model.User, error) {
	var user model.User
	err := r.DB.Transaction(func(tx *gorm.DB) error {
		err := tx.Where("auth_id = ?", authID).First(&user).Error
		if err == nil {
			return nil
		}
		if err != gorm.ErrRecordNotFound {
			return err
		}
		user = model.User{
			Name:     name,
			Email:    email,
			Role:     role,
			AuthID:   &authID,
			JoinDate: time.Now(),
		}
		return tx.Create(&user).Error
	})
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *UserRepository) Update(user *model.User) error {
	return r.DB.Save(user).Error
}

// AddPoints 累加积分并按阈值重算等级
func (r *UserRepository) AddPoints(userID string, points int) error {
	return r.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&model.User{}).
			Where("id = ?", userID).
			Update("points", gorm.Expr("points + ?", points)).Error; err != nil {
			return err
		}
		return tx.Model(&model.User{}).
			Where("id = ?", userID).
			Update("level", gorm.Expr("points DIV ? + 1", util.PointsPerLevel)).Error
	})
}

func (r *UserRepository) FindTopByPoints(limit int) ([]model.User, error) {
	var users []model.User
	err := r.DB.Where("points > 0").Order("points DESC").Limit(limit).Find(&users).Error
	return users, err
}

func (r *UserRepository) FindAll() ([]model.User, error) {
	var users []model.User
	err := r.DB.Find(&users).Error
	return users, err
}

func (r *UserRepository) CountByRole(role model.UserRole) (int64, error) {
	var count int64
	err := r.DB.Model(&model.User{}).Where("role = ?", role).Count(&count).Error
	return count, err
}

func (r *UserRepository) UpdateLastSeen(userID string) error {
	return r.DB.Model(&model.User{}).
		Where("id = ?", userID).
		Update("last_seen", time.Now()).Error
}

func (r *UserRepository) UpdateLastLogin(userID string) error {
	return r.DB.Model(&model.User{}).
		Where("id = ?", userID).
		Update("last_login", time.Now()).Error
}
