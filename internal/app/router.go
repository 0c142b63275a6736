package app

import (
	"indosat_lms_backend/docs"
	"indosat_lms_backend/internal/config"
	"indosat_lms_backend/internal/middleware"
	"indosat_lms_backend/internal/model"
	"indosat_lms_backend/pkg/monitoring"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

func (a *App) registerRoutes(router *gin.Engine, c *controllers, repos *repositories, cfg *config.Config) {
	docs.SwaggerInfo.BasePath = "/api"
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler, ginSwagger.URL("/swagger/doc.json")))

	router.GET("/metrics", monitoring.PrometheusHandler())

	// 1. 公共路由(无需登录)
	a.registerPublicRoutes(router, c)

	// 2. 需要授权的路由
	authGroup := router.Group("/api")
	authGroup.Use(middleware.AuthMiddleware(cfg), middleware.ActivityMiddleware(repos.user))
	{
		a.registerLearnerRoutes(authGroup, c)
		a.registerTrainerRoutes(authGroup, c)
	}

	// 3. 管理员相关接口
	a.registerAdminRoutes(router, c, repos)
}

func (a *App) registerPublicRoutes(router *gin.Engine, c *controllers) {
	public := router.Group("/api")
	{
		public.GET("/health", c.health.HealthCheck)
		public.POST("/auth/register", c.auth.Register)
		public.POST("/auth/login", c.auth.Login)
		public.POST("/auth/google", c.auth.LoginWithGoogle)

		// 证书验真无需登录
		public.GET("/certificates/verify/:code", c.gamification.VerifyCertificate)
	}
}

func (a *App) registerLearnerRoutes(rg *gin.RouterGroup, c *controllers) {
	rg.GET("/auth/me", c.auth.Me)
	rg.GET("/users/profile", c.user.GetProfile)
	rg.PUT("/users/profile", c.user.UpdateProfile)
	rg.POST("/users/avatar", c.user.UpdateAvatar)

	rg.GET("/dashboard", c.dashboard.GetDashboard)

	// 课程目录与学习
	rg.GET("/courses", c.course.ListCourses)
	rg.GET("/courses/:id", c.course.GetCourse)
	rg.POST("/courses/:id/enroll", c.course.Enroll)
	rg.POST("/modules/:moduleId/complete", c.course.CompleteModule)

	// 答题会话
	rg.POST("/modules/:moduleId/attempts", c.learning.StartAttempt)
	rg.GET("/attempts/:id", c.learning.GetAttempt)
	rg.POST("/attempts/:id/answer", c.learning.SelectAnswer)
	rg.POST("/attempts/:id/next", c.learning.NextQuestion)
	rg.POST("/attempts/:id/previous", c.learning.PreviousQuestion)
	rg.POST("/attempts/:id/submit", c.learning.SubmitAttempt)
	rg.POST("/attempts/:id/retry", c.learning.RetryAttempt)
	rg.DELETE("/attempts/:id", c.learning.ExitAttempt)
	rg.GET("/results", c.learning.MyResults)

	// 游戏化
	rg.GET("/badges", c.gamification.ListBadges)
	rg.GET("/badges/mine", c.gamification.MyBadges)
	rg.GET("/leaderboard", c.gamification.Leaderboard)
	rg.GET("/certificates", c.gamification.MyCertificates)

	// 媒体检索
	rg.GET("/media/videos/search", c.media.SearchVideos)
	rg.GET("/media/videos", c.media.VideoDetails)
	rg.GET("/media/playlists/:id", c.media.PlaylistVideos)
	rg.GET("/media/channels/:id", c.media.ChannelDetails)
}

func (a *App) registerTrainerRoutes(rg *gin.RouterGroup, c *controllers) {
	trainer := rg.Group("/trainer")
	trainer.Use(middleware.RoleMiddleware(model.Trainer))
	{
		trainer.POST("/courses", c.course.CreateCourse)
		trainer.GET("/courses", c.course.MyCourses)
		trainer.POST("/courses/:id/modules", c.course.AddModule)
		trainer.POST("/courses/:id/cover", c.course.UploadCover)
		trainer.POST("/courses/:id/publish", c.course.PublishCourse)
		trainer.POST("/modules/:moduleId/quiz", c.course.CreateQuiz)

		// 内容上传的 Google 授权流程
		trainer.GET("/google/auth-url", c.media.AuthURL)
		trainer.POST("/google/exchange", c.media.ExchangeCode)
		trainer.POST("/google/refresh", c.media.RefreshToken)
	}
}

func (a *App) registerAdminRoutes(router *gin.Engine, c *controllers, repos *repositories) {
	admin := router.Group("/api/admin")
	admin.Use(middleware.AuthMiddleware(a.Config), middleware.ActivityMiddleware(repos.user))
	admin.Use(middleware.RoleMiddleware(model.Admin))
	{
		admin.GET("/users", c.user.ListUsers)
	}
}
