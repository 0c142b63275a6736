package service

import (
	"fmt"
	"indosat_lms_backend/internal/model"
	"indosat_lms_backend/internal/repository"
	"indosat_lms_backend/internal/util"
)

// AdminDashboard 平台全局概览
type AdminDashboard struct {
	TotalUsers    int64 `json:"totalUsers"`
	TotalTrainers int64 `json:"totalTrainers"`
	TotalDSE      int64 `json:"totalDse"`
	TotalCourses  int64 `json:"totalCourses"`
	TotalModules  int64 `json:"totalModules"`
}

// TrainerDashboard 培训师视角：自己名下课程与学员量
type TrainerDashboard struct {
	Courses        []model.Course `json:"courses"`
	CourseCount    int            `json:"courseCount"`
	PublishedCount int            `json:"publishedCount"`
	TotalEnrolled  int64          `json:"totalEnrolled"`
}

// DSEDashboard 学员视角：学习进度与游戏化战绩
type DSEDashboard struct {
	Enrollments      []model.Enrollment `json:"enrollments"`
	CompletedCourses int64              `json:"completedCourses"`
	QuizzesPassed    int64              `json:"quizzesPassed"`
	BadgeCount       int64              `json:"badgeCount"`
	Points           int                `json:"points"`
	Level            int                `json:"level"`
	NextLevelPoints  int                `json:"nextLevelPoints"`
}

type DashboardService struct {
	UserRepo   *repository.UserRepository
	CourseRepo *repository.CourseRepository
	ModuleRepo *repository.ModuleRepository
	QuizRepo   *repository.QuizRepository
	BadgeRepo  *repository.BadgeRepository
	EnrollRepo *repository.EnrollmentRepository
}

func NewDashboardService(
	userRepo *repository.UserRepository,
	courseRepo *repository.CourseRepository,
	moduleRepo *repository.ModuleRepository,
	quizRepo *repository.QuizRepository,
	badgeRepo *repository.BadgeRepository,
	enrollRepo *repository.EnrollmentRepository,
) *DashboardService {
	return &DashboardService{
		UserRepo:   userRepo,
		CourseRepo: courseRepo,
		ModuleRepo: moduleRepo,
		QuizRepo:   quizRepo,
		BadgeRepo:  badgeRepo,
		EnrollRepo: enrollRepo,
	}
}

// GetDashboard 按角色分派：admin / trainer / dse 各有专属视图。
// 未知角色直接报错，不给任何默认视图。
func (s *DashboardService) GetDashboard(user *model.User) (interface{}, error) {
	switch user.Role {
	case model.Admin:
		return s.adminDashboard()
	case model.Trainer:
		return s.trainerDashboard(user.ID)
	case model.DSE:
		return s.dseDashboard(user)
	default:
		return nil, fmt.Errorf("unknown role: %s", user.Role)
	}
}

func (s *DashboardService) adminDashboard() (*AdminDashboard, error) {
	trainers, err := s.UserRepo.CountByRole(model.Trainer)
	if err != nil {
		return nil, err
	}
	dses, err := s.UserRepo.CountByRole(model.DSE)
	if err != nil {
		return nil, err
	}
	admins, err := s.UserRepo.CountByRole(model.Admin)
	if err != nil {
		return nil, err
	}
	courses, err := s.CourseRepo.Count()
	if err != nil {
		return nil, err
	}
	modules, err := s.ModuleRepo.Count()
	if err != nil {
		return nil, err
	}

	return &AdminDashboard{
		TotalUsers:    admins + trainers + dses,
		TotalTrainers: trainers,
		TotalDSE:      dses,
		TotalCourses:  courses,
		TotalModules:  modules,
	}, nil
}

func (s *DashboardService) trainerDashboard(userID string) (*TrainerDashboard, error) {
	courses, err := s.CourseRepo.FindByCreator(userID)
	if err != nil {
		return nil, err
	}

	dash := &TrainerDashboard{
		Courses:     courses,
		CourseCount: len(courses),
	}
	for _, course := range courses {
		if course.Status == model.CoursePublished {
			dash.PublishedCount++
		}
		enrolled, err := s.EnrollRepo.CountByCourse(course.ID)
		if err != nil {
			return nil, err
		}
		dash.TotalEnrolled += enrolled
	}
	return dash, nil
}

func (s *DashboardService) dseDashboard(user *model.User) (*DSEDashboard, error) {
	enrollments, err := s.EnrollRepo.FindByUser(user.ID)
	if err != nil {
		return nil, err
	}
	completed, err := s.EnrollRepo.CountCompletedByUser(user.ID)
	if err != nil {
		return nil, err
	}
	passed, err := s.QuizRepo.CountPassedByUser(user.ID)
	if err != nil {
		return nil, err
	}
	badges, err := s.BadgeRepo.CountByUser(user.ID)
	if err != nil {
		return nil, err
	}

	return &DSEDashboard{
		Enrollments:      enrollments,
		CompletedCourses: completed,
		QuizzesPassed:    passed,
		BadgeCount:       badges,
		Points:           user.Points,
		Level:            user.Level,
		NextLevelPoints:  user.Level*util.PointsPerLevel - user.Points,
	}, nil
}
