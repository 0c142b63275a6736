package service

import (
	"context"
	"errors"
	"indosat_lms_backend/internal/config"
	"indosat_lms_backend/internal/model"
	"indosat_lms_backend/internal/repository"
	"indosat_lms_backend/internal/util"
	"indosat_lms_backend/pkg/logger"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"google.golang.org/api/idtoken"
	"gorm.io/gorm"
)

// IDTokenVerifier 校验 Google ID token 并返回 payload，测试中可替换
type IDTokenVerifier func(ctx context.Context, token, audience string) (*idtoken.Payload, error)

func verifyGoogleIDToken(ctx context.Context, token, audience string) (*idtoken.Payload, error) {
	payload, err := idtoken.Validate(ctx, token, audience)
	if err != nil {
		return nil, err
	}
	return payload, nil
}

// UserStore 登录与档案解析所需的用户持久化入口
type UserStore interface {
	Create(user *model.User) error
	FindByID(id string) (*model.User, error)
	FindByEmail(email string) (*model.User, error)
	FindByAuthID(authID string) (*model.User, error)
	GetOrCreateByAuthID(authID, email, name string, role model.UserRole) (*model.User, error)
	UpdateLastLogin(userID string) error
}

// AuthService 邮箱密码注册登录 + Google OAuth 登录与档案解析
type AuthService struct {
	UserRepo UserStore
	Cfg      *config.Config
	Verify   IDTokenVerifier
}

func NewAuthService(userRepo *repository.UserRepository, cfg *config.Config) *AuthService {
	return &AuthService{
		UserRepo: userRepo,
		Cfg:      cfg,
		Verify:   verifyGoogleIDToken,
	}
}

func (s *AuthService) Register(user *model.User) error {
	_, err := s.UserRepo.FindByEmail(user.Email)
	if err == nil {
		return util.ErrEmailRegistered
	} else if err != gorm.ErrRecordNotFound {
		return err
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(user.Password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	user.Password = string(hashedPassword)
	if user.Role == "" {
		user.Role = model.DSE
	}
	return s.UserRepo.Create(user)
}

func (s *AuthService) Login(email, password string) (string, *model.User, error) {
	user, err := s.UserRepo.FindByEmail(email)
	if err != nil {
		return "", nil, util.ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return "", nil, util.ErrInvalidCredentials
	}

	if err := s.UserRepo.UpdateLastLogin(user.ID); err != nil {
		logger.Log.Warn("update last login failed", zap.String("user", user.ID), zap.Error(err))
	}

	token, err := util.GenerateJWT(user, s.Cfg.JWT.Secret, s.Cfg.JWT.ExpireTime)
	if err != nil {
		return "", nil, err
	}
	return token, user, nil
}

// LoginWithGoogle 校验 ID token 后解析档案并签发本系统 JWT
func (s *AuthService) LoginWithGoogle(ctx context.Context, idToken string) (string, *model.User, error) {
	payload, err := s.Verify(ctx, idToken, s.Cfg.Google.ClientID)
	if err != nil {
		return "", nil, util.ErrInvalidCredentials
	}

	email, _ := payload.Claims["email"].(string)
	name, _ := payload.Claims["name"].(string)

	user, err := s.ResolveProfile(payload.Subject, email, name)
	if err != nil {
		return "", nil, err
	}

	if err := s.UserRepo.UpdateLastLogin(user.ID); err != nil {
		logger.Log.Warn("update last login failed", zap.String("user", user.ID), zap.Error(err))
	}

	token, err := util.GenerateJWT(user, s.Cfg.JWT.Secret, s.Cfg.JWT.ExpireTime)
	if err != nil {
		return "", nil, err
	}
	return token, user, nil
}

// ResolveProfile 按 OAuth 主体查档案。
// 查不到行与查出多行（历史脏数据）走同一条补救路径：幂等地取或建档案；
// 其余数据库错误原样上抛。新档案默认 DSE 角色。
func (s *AuthService) ResolveProfile(authID, email, oauthName string) (*model.User, error) {
	user, err := s.UserRepo.FindByAuthID(authID)
	if err == nil {
		return user, nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) || errors.Is(err, util.ErrAmbiguousProfile) {
		if errors.Is(err, util.ErrAmbiguousProfile) {
			logger.Log.Warn("ambiguous profile rows for auth subject, falling back to get-or-create",
				zap.String("auth_id", authID))
		}
		return s.UserRepo.GetOrCreateByAuthID(authID, email, deriveDisplayName("", oauthName, email), model.DSE)
	}
	return nil, err
}

// deriveDisplayName 展示名优先级：显式指定 > OAuth 名 > 邮箱本地段 > "User"
func deriveDisplayName(explicit, oauthName, email string) string {
	if explicit != "" {
		return explicit
	}
	if oauthName != "" {
		return oauthName
	}
	if at := strings.Index(email, "@"); at > 0 {
		return email[:at]
	}
	return "User"
}

func (s *AuthService) GetCurrentUser(c *gin.Context) *model.User {
	claims := util.GetUserFromContext(c)
	if claims == nil {
		return nil
	}

	user, _ := s.UserRepo.FindByID(claims.UserID)
	return user
}
