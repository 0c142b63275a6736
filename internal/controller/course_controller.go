package controller

import (
	"errors"
	"indosat_lms_backend/internal/model"
	"indosat_lms_backend/internal/service"
	"indosat_lms_backend/internal/util"
	"strconv"

	"github.com/gin-gonic/gin"
)

type CourseController struct {
	CourseService *service.CourseService
	QuizService   *service.QuizService
	Storage       *service.StorageService
	AuthService   *service.AuthService
}

func NewCourseController(courseService *service.CourseService, quizService *service.QuizService, storage *service.StorageService, authService *service.AuthService) *CourseController {
	return &CourseController{
		CourseService: courseService,
		QuizService:   quizService,
		Storage:       storage,
		AuthService:   authService,
	}
}

// CreateCourseRequest 建课请求
type CreateCourseRequest struct {
	Title       string `json:"title" binding:"required"`
	Description string `json:"description"`
	Category    string `json:"category"`
}

// CreateCourse godoc
// @Summary 新建课程（草稿）
// @Tags 课程
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param   body body CreateCourseRequest true "课程信息"
// @Success 201 {object} util.Response{data=model.Course}
// @Failure 403 {object} util.Response "非培训师"
// @Router /api/trainer/courses [post]
func (c *CourseController) CreateCourse(ctx *gin.Context) {
	user := c.AuthService.GetCurrentUser(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	var req CreateCourseRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	course, err := c.CourseService.CreateCourse(user, req.Title, req.Description, req.Category)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Created(ctx, course)
}

// MyCourses godoc
// @Summary 我创建的课程
// @Tags 课程
// @Produce  json
// @Security BearerAuth
// @Success 200 {object} util.Response{data=[]model.Course}
// @Router /api/trainer/courses [get]
func (c *CourseController) MyCourses(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	courses, err := c.CourseService.GetMyCourses(claims.UserID)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, courses)
}

// ListCourses godoc
// @Summary 已发布课程目录
// @Tags 课程
// @Produce  json
// @Security BearerAuth
// @Success 200 {object} util.Response{data=[]model.Course}
// @Router /api/courses [get]
func (c *CourseController) ListCourses(ctx *gin.Context) {
	courses, err := c.CourseService.GetPublishedCourses()
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, courses)
}

// GetCourse godoc
// @Summary 课程详情与模块列表
// @Tags 课程
// @Produce  json
// @Security BearerAuth
// @Param   id path string true "课程ID"
// @Success 200 {object} util.Response{data=object}
// @Failure 404 {object} util.Response "课程不存在"
// @Router /api/courses/{id} [get]
func (c *CourseController) GetCourse(ctx *gin.Context) {
	course, err := c.CourseService.GetCourse(ctx.Param("id"))
	if err != nil {
		if errors.Is(err, util.ErrCourseNotFound) {
			util.NotFound(ctx, "课程不存在")
		} else {
			util.LogInternalError(ctx, err)
		}
		return
	}

	modules, err := c.CourseService.GetModules(course.ID)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"course": course, "modules": modules})
}

// AddModule godoc
// @Summary 为课程添加模块
// @Description multipart 表单：文本字段 + 可选视频/文档附件。
// @Description 选择了附件但缺少 Google 授权 token 时整体失败，不发起任何上传。
// @Tags 课程
// @Accept  multipart/form-data
// @Produce  json
// @Security BearerAuth
// @Param   id path string true "课程ID"
// @Param   title formData string true "模块标题"
// @Param   contentText formData string false "图文内容"
// @Param   order formData int false "模块顺序"
// @Param   xpAmount formData int false "完成奖励积分"
// @Param   googleToken formData string false "Google OAuth access token"
// @Param   video formData file false "视频附件（上传至 YouTube）"
// @Param   document formData file false "文档附件（上传至 Drive）"
// @Success 201 {object} util.Response{data=model.Module}
// @Failure 401 {object} util.Response "缺少 Google 授权"
// @Failure 403 {object} util.Response "不是课程创建者"
// @Failure 502 {object} util.Response "外部上传失败"
// @Router /api/trainer/courses/{id}/modules [post]
func (c *CourseController) AddModule(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	order, _ := strconv.Atoi(ctx.PostForm("order"))
	xp, _ := strconv.Atoi(ctx.PostForm("xpAmount"))

	input := service.ModuleInput{
		Title:       ctx.PostForm("title"),
		ContentText: ctx.PostForm("contentText"),
		Order:       order,
		XPAmount:    xp,
	}
	if input.Title == "" {
		util.BadRequest(ctx, "title required")
		return
	}

	if video, err := ctx.FormFile("video"); err == nil {
		if !util.IsVideoFilename(video.Filename) {
			util.BadRequest(ctx, "unsupported video format")
			return
		}
		path, stageErr := c.Storage.StageUpload(video)
		if stageErr != nil {
			util.LogInternalError(ctx, stageErr)
			return
		}
		defer c.Storage.DiscardStaged(path)
		input.VideoPath = path
	}

	if doc, err := ctx.FormFile("document"); err == nil {
		mime := doc.Header.Get("Content-Type")
		if !util.IsAllowedDocMime(mime) {
			util.BadRequest(ctx, "unsupported document type")
			return
		}
		path, stageErr := c.Storage.StageUpload(doc)
		if stageErr != nil {
			util.LogInternalError(ctx, stageErr)
			return
		}
		defer c.Storage.DiscardStaged(path)
		input.DocPath = path
		input.DocName = doc.Filename
		input.DocMime = mime
	}

	module, err := c.CourseService.AddModule(ctx.Request.Context(), ctx.Param("id"), claims.UserID, ctx.PostForm("googleToken"), input)
	if err != nil {
		switch {
		case errors.Is(err, util.ErrCourseNotFound):
			util.NotFound(ctx, "课程不存在")
		case errors.Is(err, util.ErrPermissionDenied):
			util.Forbidden(ctx)
		case errors.Is(err, util.ErrGoogleAuthRequired):
			util.Error(ctx, 401, "google authorization required for attachments")
		default:
			util.Error(ctx, 502, "attachment upload failed: "+err.Error())
		}
		return
	}
	util.Created(ctx, module)
}

// UploadCover godoc
// @Summary 上传课程封面
// @Tags 课程
// @Accept  multipart/form-data
// @Produce  json
// @Security BearerAuth
// @Param   id path string true "课程ID"
// @Param   cover formData file true "封面图片"
// @Success 200 {object} util.Response{data=model.Course}
// @Failure 403 {object} util.Response "不是课程创建者"
// @Router /api/trainer/courses/{id}/cover [post]
func (c *CourseController) UploadCover(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	file, err := ctx.FormFile("cover")
	if err != nil {
		util.BadRequest(ctx, "cover file required")
		return
	}

	url, err := c.Storage.UploadCourseCover(ctx.Request.Context(), ctx.Param("id"), file)
	if err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	course, err := c.CourseService.SetThumbnail(ctx.Param("id"), claims.UserID, url)
	if err != nil {
		switch {
		case errors.Is(err, util.ErrCourseNotFound):
			util.NotFound(ctx, "课程不存在")
		case errors.Is(err, util.ErrPermissionDenied):
			util.Forbidden(ctx)
		default:
			util.LogInternalError(ctx, err)
		}
		return
	}
	util.Success(ctx, course)
}

// CreateQuizRequest 测验配置请求
type CreateQuizRequest struct {
	Title        string               `json:"title" binding:"required"`
	PassingScore int                  `json:"passingScore"`
	TimeLimit    int                  `json:"timeLimit"`
	XPBonus      int                  `json:"xpBonus"`
	Questions    []CreateQuizQuestion `json:"questions" binding:"required,min=1,dive"`
}

type CreateQuizQuestion struct {
	Text          string   `json:"text" binding:"required"`
	Options       []string `json:"options" binding:"required,min=2"`
	CorrectAnswer int      `json:"correctAnswer"`
	Explanation   string   `json:"explanation"`
}

// CreateQuiz godoc
// @Summary 为模块配置测验
// @Tags 课程
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param   moduleId path string true "模块ID"
// @Param   body body CreateQuizRequest true "测验配置"
// @Success 201 {object} util.Response{data=model.Quiz}
// @Failure 403 {object} util.Response "不是课程创建者"
// @Failure 422 {object} util.Response "题目配置非法"
// @Router /api/trainer/modules/{moduleId}/quiz [post]
func (c *CourseController) CreateQuiz(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	var req CreateQuizRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	quiz := &model.Quiz{
		ModuleID:     ctx.Param("moduleId"),
		Title:        req.Title,
		PassingScore: req.PassingScore,
		TimeLimit:    req.TimeLimit,
		XPBonus:      req.XPBonus,
	}
	for i, q := range req.Questions {
		quiz.Questions = append(quiz.Questions, model.Question{
			Text:          q.Text,
			Options:       q.Options,
			CorrectAnswer: q.CorrectAnswer,
			Explanation:   q.Explanation,
			Order:         i,
		})
	}

	if err := c.QuizService.CreateQuiz(claims.UserID, quiz); err != nil {
		switch {
		case errors.Is(err, util.ErrQuizNoQuestions) || errors.Is(err, util.ErrInvalidAnswerIndex):
			util.UnprocessableEntity(ctx, err.Error())
		case errors.Is(err, util.ErrModuleNotFound):
			util.NotFound(ctx, "模块不存在")
		case errors.Is(err, util.ErrPermissionDenied):
			util.Forbidden(ctx)
		default:
			util.LogInternalError(ctx, err)
		}
		return
	}
	util.Created(ctx, quiz)
}

// PublishCourse godoc
// @Summary 发布课程
// @Description 幂等操作：对已发布课程重复发布仍返回成功
// @Tags 课程
// @Produce  json
// @Security BearerAuth
// @Param   id path string true "课程ID"
// @Success 200 {object} util.Response{data=model.Course}
// @Failure 403 {object} util.Response "不是课程创建者"
// @Router /api/trainer/courses/{id}/publish [post]
func (c *CourseController) PublishCourse(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	course, err := c.CourseService.PublishCourse(ctx.Param("id"), claims.UserID)
	if err != nil {
		switch {
		case errors.Is(err, util.ErrCourseNotFound):
			util.NotFound(ctx, "课程不存在")
		case errors.Is(err, util.ErrPermissionDenied):
			util.Forbidden(ctx)
		default:
			util.LogInternalError(ctx, err)
		}
		return
	}
	util.Success(ctx, course)
}

// Enroll godoc
// @Summary 选课
// @Tags 课程
// @Produce  json
// @Security BearerAuth
// @Param   id path string true "课程ID"
// @Success 200 {object} util.Response{data=model.Enrollment}
// @Failure 404 {object} util.Response "课程不存在或未发布"
// @Router /api/courses/{id}/enroll [post]
func (c *CourseController) Enroll(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	enrollment, err := c.CourseService.Enroll(claims.UserID, ctx.Param("id"))
	if err != nil {
		if errors.Is(err, util.ErrCourseNotFound) {
			util.NotFound(ctx, "课程不存在或未发布")
		} else {
			util.LogInternalError(ctx, err)
		}
		return
	}
	util.Success(ctx, enrollment)
}

// CompleteModule godoc
// @Summary 标记模块完成
// @Description 写入完成标志后重算课程进度；进度只能由模块状态推导
// @Tags 课程
// @Produce  json
// @Security BearerAuth
// @Param   moduleId path string true "模块ID"
// @Success 200 {object} util.Response
// @Failure 404 {object} util.Response "模块不存在"
// @Router /api/modules/{moduleId}/complete [post]
func (c *CourseController) CompleteModule(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	if err := c.CourseService.CompleteModule(ctx.Param("moduleId"), claims.UserID); err != nil {
		if errors.Is(err, util.ErrModuleNotFound) {
			util.NotFound(ctx, "模块不存在")
		} else {
			util.LogInternalError(ctx, err)
		}
		return
	}
	util.Success(ctx, nil)
}
