package service

import (
	"context"
	"crypto/rand"
	"encoding/json"
	"fmt"
	"indosat_lms_backend/internal/model"
	"indosat_lms_backend/internal/repository"
	"indosat_lms_backend/internal/util"
	"indosat_lms_backend/pkg/logger"
	"time"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	leaderboardCacheKey = "lms:leaderboard:top"
	leaderboardCacheTTL = 60 * time.Second
	leaderboardSize     = 20
)

// 徽章授予条件的内置编码，badges.criteria 字段取这些值
const (
	BadgeFirstCourse  = "first_course_completed"
	BadgeFiveCourses  = "five_courses_completed"
	BadgeFirstQuiz    = "first_quiz_passed"
	BadgeTenQuizzes   = "ten_quizzes_passed"
	BadgeLevelFive    = "level_five_reached"
)

// LeaderboardEntry 排行榜条目（仅积分>0的用户上榜）
type LeaderboardEntry struct {
	Rank   int    `json:"rank"`
	UserID string `json:"userId"`
	Name   string `json:"name"`
	Avatar string `json:"avatar"`
	Points int    `json:"points"`
	Level  int    `json:"level"`
}

// GamificationService 徽章、排行榜与结业证书
type GamificationService struct {
	UserRepo    *repository.UserRepository
	BadgeRepo   *repository.BadgeRepository
	CertRepo    *repository.CertificateRepository
	EnrollRepo  *repository.EnrollmentRepository
	QuizRepo    *repository.QuizRepository
	CourseRepo  *repository.CourseRepository
	RedisClient *redis.Client
}

func NewGamificationService(
	userRepo *repository.UserRepository,
	badgeRepo *repository.BadgeRepository,
	certRepo *repository.CertificateRepository,
	enrollRepo *repository.EnrollmentRepository,
	quizRepo *repository.QuizRepository,
	courseRepo *repository.CourseRepository,
	redisClient *redis.Client,
) *GamificationService {
	return &GamificationService{
		UserRepo:    userRepo,
		BadgeRepo:   badgeRepo,
		CertRepo:    certRepo,
		EnrollRepo:  enrollRepo,
		QuizRepo:    quizRepo,
		CourseRepo:  courseRepo,
		RedisClient: redisClient,
	}
}

// AwardPoints 加积分并顺带复查等级类徽章
func (s *GamificationService) AwardPoints(userID string, points int) error {
	if points <= 0 {
		return nil
	}
	if err := s.UserRepo.AddPoints(userID, points); err != nil {
		return err
	}
	s.invalidateLeaderboard()
	s.CheckBadges(userID)
	return nil
}

// CheckBadges 对照当前战绩补发所有已达成的徽章。
// 补发失败只记日志，不影响主流程。
func (s *GamificationService) CheckBadges(userID string) {
	user, err := s.UserRepo.FindByID(userID)
	if err != nil {
		return
	}

	coursesDone, _ := s.EnrollRepo.CountCompletedByUser(userID)
	quizzesPassed, _ := s.QuizRepo.CountPassedByUser(userID)

	earned := map[string]bool{
		BadgeFirstCourse: coursesDone >= 1,
		BadgeFiveCourses: coursesDone >= 5,
		BadgeFirstQuiz:   quizzesPassed >= 1,
		BadgeTenQuizzes:  quizzesPassed >= 10,
		BadgeLevelFive:   user.Level >= 5,
	}

	badges, err := s.BadgeRepo.FindAll()
	if err != nil {
		return
	}
	for _, badge := range badges {
		if !earned[badge.Criteria] {
			continue
		}
		if err := s.BadgeRepo.Award(userID, badge.ID); err != nil {
			logger.Log.Warn("badge award failed",
				zap.String("user", userID), zap.String("badge", badge.ID), zap.Error(err))
		}
	}
}

func (s *GamificationService) GetUserBadges(userID string) ([]model.UserBadge, error) {
	return s.BadgeRepo.FindByUser(userID)
}

func (s *GamificationService) ListBadges() ([]model.Badge, error) {
	return s.BadgeRepo.FindAll()
}

// GetLeaderboard 读排行榜，60秒 Redis 缓存；缓存不可用时直查库
func (s *GamificationService) GetLeaderboard(ctx context.Context) ([]LeaderboardEntry, error) {
	if s.RedisClient != nil {
		cached, err := s.RedisClient.Get(ctx, leaderboardCacheKey).Result()
		if err == nil {
			var entries []LeaderboardEntry
			if json.Unmarshal([]byte(cached), &entries) == nil {
				return entries, nil
			}
		}
	}

	users, err := s.UserRepo.FindTopByPoints(leaderboardSize)
	if err != nil {
		return nil, err
	}

	entries := make([]LeaderboardEntry, 0, len(users))
	for i, u := range users {
		entries = append(entries, LeaderboardEntry{
			Rank:   i + 1,
			UserID: u.ID,
			Name:   u.Name,
			Avatar: u.Avatar,
			Points: u.Points,
			Level:  u.Level,
		})
	}

	if s.RedisClient != nil {
		if data, err := json.Marshal(entries); err == nil {
			if err := s.RedisClient.Set(ctx, leaderboardCacheKey, data, leaderboardCacheTTL).Err(); err != nil {
				logger.Log.Warn("leaderboard cache write failed", zap.Error(err))
			}
		}
	}
	return entries, nil
}

func (s *GamificationService) invalidateLeaderboard() {
	if s.RedisClient == nil {
		return
	}
	if err := s.RedisClient.Del(context.Background(), leaderboardCacheKey).Err(); err != nil && err != redis.Nil {
		logger.Log.Warn("leaderboard cache invalidate failed", zap.Error(err))
	}
}

// IssueCertificate 课程进度满100%后签发证书，重复调用返回同一张
func (s *GamificationService) IssueCertificate(userID, courseID string) (*model.Certificate, error) {
	course, err := s.CourseRepo.FindByID(courseID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, util.ErrCourseNotFound
		}
		return nil, err
	}
	if course.Progress < 100 {
		return nil, util.ErrCertificateNotEarned
	}

	user, err := s.UserRepo.FindByID(userID)
	if err != nil {
		return nil, err
	}

	cert := &model.Certificate{
		UserID:          userID,
		CourseID:        courseID,
		UserName:        user.Name,
		CourseTitle:     course.Title,
		CertificateCode: generateCertificateCode(),
		IssuedAt:        time.Now(),
	}
	return s.CertRepo.GetOrCreate(cert)
}

func (s *GamificationService) GetUserCertificates(userID string) ([]model.Certificate, error) {
	return s.CertRepo.FindByUser(userID)
}

// VerifyCertificate 公开验真入口，按证书编号查询
func (s *GamificationService) VerifyCertificate(code string) (*model.Certificate, error) {
	cert, err := s.CertRepo.FindByCode(code)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, util.ErrCertificateNotEarned
		}
		return nil, err
	}
	return cert, nil
}

// generateCertificateCode 形如 LMS-XXXXXXXX 的短验真码
func generateCertificateCode() string {
	const alphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"
	buf := make([]byte, 8)
	rand.Read(buf)
	for i := range buf {
		buf[i] = alphabet[int(buf[i])%len(alphabet)]
	}
	return fmt.Sprintf("LMS-%s", buf)
}
