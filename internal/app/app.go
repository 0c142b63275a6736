package app

import (
	"context"
	"indosat_lms_backend/internal/config"
	"indosat_lms_backend/internal/controller"
	"indosat_lms_backend/internal/repository"
	"indosat_lms_backend/internal/service"
	"indosat_lms_backend/pkg/database"
	"indosat_lms_backend/pkg/logger"
	"indosat_lms_backend/pkg/monitoring"
	"indosat_lms_backend/pkg/security"
	"indosat_lms_backend/pkg/tracing"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type App struct {
	Config          *config.Config
	Router          *gin.Engine
	DB              *gorm.DB
	Redis           *redis.Client
	configCallbacks []func(*config.Config)
}

type repositories struct {
	user        *repository.UserRepository
	course      *repository.CourseRepository
	module      *repository.ModuleRepository
	quiz        *repository.QuizRepository
	badge       *repository.BadgeRepository
	enrollment  *repository.EnrollmentRepository
	certificate *repository.CertificateRepository
}

type services struct {
	auth         *service.AuthService
	storage      *service.StorageService
	user         *service.UserService
	course       *service.CourseService
	quiz         *service.QuizService
	dashboard    *service.DashboardService
	gamification *service.GamificationService
	youtube      *service.YouTubeService
	drive        *service.DriveService
	oauth        *service.GoogleOAuthService
}

type controllers struct {
	auth         *controller.AuthController
	user         *controller.UserController
	course       *controller.CourseController
	learning     *controller.LearningController
	dashboard    *controller.DashboardController
	gamification *controller.GamificationController
	media        *controller.MediaController
	health       *controller.HealthController
}

func (a *App) RegisterConfigCallback(callback func(*config.Config)) {
	a.configCallbacks = append(a.configCallbacks, callback)
}

func (a *App) initRepositories(db *gorm.DB) *repositories {
	return &repositories{
		user:        repository.NewUserRepository(db),
		course:      repository.NewCourseRepository(db),
		module:      repository.NewModuleRepository(db),
		quiz:        repository.NewQuizRepository(db),
		badge:       repository.NewBadgeRepository(db),
		enrollment:  repository.NewEnrollmentRepository(db),
		certificate: repository.NewCertificateRepository(db),
	}
}

func (a *App) initServices(repos *repositories, cfg *config.Config, rdb *redis.Client) *services {
	s := &services{}

	s.storage = service.NewStorageService(cfg)
	s.auth = service.NewAuthService(repos.user, cfg)
	s.user = service.NewUserService(repos.user, s.storage)
	s.youtube = service.NewYouTubeService(&cfg.Google)
	s.drive = service.NewDriveService()
	s.oauth = service.NewGoogleOAuthService(&cfg.Google)

	s.gamification = service.NewGamificationService(
		repos.user,
		repos.badge,
		repos.certificate,
		repos.enrollment,
		repos.quiz,
		repos.course,
		rdb,
	)

	s.course = service.NewCourseService(repos.course, repos.module, repos.enrollment, s.youtube, s.drive)
	// 课程走完触发证书签发与徽章复查
	s.course.OnCourseCompleted = func(userID, courseID string) {
		if _, err := s.gamification.IssueCertificate(userID, courseID); err != nil {
			logger.Log.Warn("certificate issue failed",
				zap.String("user", userID), zap.String("course", courseID), zap.Error(err))
		}
		s.gamification.CheckBadges(userID)
	}

	s.quiz = service.NewQuizService(repos.quiz, s.course, s.course, s.gamification)
	s.dashboard = service.NewDashboardService(
		repos.user,
		repos.course,
		repos.module,
		repos.quiz,
		repos.badge,
		repos.enrollment,
	)

	return s
}

func (a *App) initControllers(s *services, db *gorm.DB) *controllers {
	return &controllers{
		health:       controller.NewHealthController(db),
		auth:         controller.NewAuthController(s.auth),
		user:         controller.NewUserController(s.user),
		course:       controller.NewCourseController(s.course, s.quiz, s.storage, s.auth),
		learning:     controller.NewLearningController(s.quiz),
		dashboard:    controller.NewDashboardController(s.dashboard, s.auth),
		gamification: controller.NewGamificationController(s.gamification),
		media:        controller.NewMediaController(s.youtube, s.oauth),
	}
}

func (a *App) setupMiddlewares(router *gin.Engine, cfg *config.Config) {
	router.Use(security.CORS(cfg.CORS.AllowedOrigins))
	router.Use(security.Secure())

	maxRequests := cfg.RateLimit.MaxRequests
	if maxRequests <= 0 {
		maxRequests = 1000
	}
	window := time.Duration(cfg.RateLimit.WindowMinutes) * time.Minute
	if window <= 0 {
		window = time.Minute
	}
	router.Use(security.RateLimiter(maxRequests, window))

	// 分布式追踪中间件
	if cfg.Tracing.Enabled {
		router.Use(tracing.GinMiddleware())
	}

	router.Use(monitoring.MetricsMiddleware())
}

func NewApp(cfg *config.Config) *App {
	logger.InitLogger(cfg)

	logger.Log.Info("Logger initialized successfully")

	db, err := database.InitDB(&cfg.Database)
	if err != nil {
		logger.Log.Fatal("Failed to initialize database", zap.Error(err))
	}

	rdb, err := database.InitRedis(&cfg.Redis)
	if err != nil {
		logger.Log.Fatal("Failed to initialize redis", zap.Error(err))
	}

	app := &App{
		Config: cfg,
		DB:     db,
		Redis:  rdb,
	}

	repos := app.initRepositories(db)
	services := app.initServices(repos, cfg, rdb)
	controllers := app.initControllers(services, db)

	// 监控初始化
	monitoring.Init()

	router := gin.Default()
	app.Router = router

	app.setupMiddlewares(router, cfg)

	if cfg.Tracing.Enabled {
		if _, err := tracing.InitTracer("indosat-lms", cfg.Tracing.CollectorEndpoint); err != nil {
			logger.Log.Fatal("Failed to initialize tracing", zap.Error(err))
		}
	}

	app.registerRoutes(router, controllers, repos, cfg)

	if cfg.Storage.Type == "local" {
		router.Static("/uploads", cfg.Storage.LocalPath)
	}

	return app
}

func (a *App) Run() {
	srv := &http.Server{
		Addr:    ":" + a.Config.Server.Port,
		Handler: a.Router,
	}

	// 启动服务器
	go func() {
		log.Printf("Server running on port %s", a.Config.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %s\n", err)
		}
	}()

	// 等待中断信号优雅地关闭服务器（设置5秒的超时时间）
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	log.Println("Server exiting")
}
