package controller

import (
	"errors"
	"indosat_lms_backend/internal/service"
	"indosat_lms_backend/internal/util"

	"github.com/gin-gonic/gin"
)

// LearningController 答题会话的全部入口
type LearningController struct {
	QuizService *service.QuizService
}

func NewLearningController(quizService *service.QuizService) *LearningController {
	return &LearningController{QuizService: quizService}
}

func (c *LearningController) handleAttemptError(ctx *gin.Context, err error) {
	switch {
	case errors.Is(err, util.ErrQuizNotFound):
		util.NotFound(ctx, "该模块没有测验")
	case errors.Is(err, util.ErrQuizNoQuestions):
		util.UnprocessableEntity(ctx, "测验没有任何题目，请联系管理员")
	case errors.Is(err, util.ErrAttemptNotFound):
		util.NotFound(ctx, "答题会话不存在")
	case errors.Is(err, util.ErrAttemptSubmitted):
		util.Conflict(ctx, "本次作答已提交")
	case errors.Is(err, util.ErrAttemptInProgress):
		util.Conflict(ctx, "作答尚未提交")
	case errors.Is(err, util.ErrAttemptIncomplete):
		util.UnprocessableEntity(ctx, "还有题目未作答")
	case errors.Is(err, util.ErrRetryAfterPass):
		util.Conflict(ctx, "已通过的测验不能重做")
	case errors.Is(err, util.ErrInvalidAnswerIndex):
		util.BadRequest(ctx, "选项下标越界")
	default:
		util.LogInternalError(ctx, err)
	}
}

// StartAttempt godoc
// @Summary 开始答题
// @Description 为模块测验开启会话；限时测验同时启动倒计时，到点自动交卷
// @Tags 学习
// @Produce  json
// @Security BearerAuth
// @Param   moduleId path string true "模块ID"
// @Success 201 {object} util.Response{data=service.AttemptView}
// @Failure 404 {object} util.Response "模块没有测验"
// @Failure 422 {object} util.Response "测验没有题目"
// @Router /api/modules/{moduleId}/attempts [post]
func (c *LearningController) StartAttempt(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	view, err := c.QuizService.StartAttempt(claims.UserID, ctx.Param("moduleId"))
	if err != nil {
		c.handleAttemptError(ctx, err)
		return
	}
	util.Created(ctx, view)
}

// GetAttempt godoc
// @Summary 查看答题会话
// @Tags 学习
// @Produce  json
// @Security BearerAuth
// @Param   id path string true "会话ID"
// @Success 200 {object} util.Response{data=service.AttemptView}
// @Router /api/attempts/{id} [get]
func (c *LearningController) GetAttempt(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	view, err := c.QuizService.GetAttempt(ctx.Param("id"), claims.UserID)
	if err != nil {
		c.handleAttemptError(ctx, err)
		return
	}
	util.Success(ctx, view)
}

// AnswerRequest 作答请求
type AnswerRequest struct {
	OptionIndex *int `json:"optionIndex" binding:"required"`
}

// SelectAnswer godoc
// @Summary 选择当前题的答案
// @Tags 学习
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param   id path string true "会话ID"
// @Param   body body AnswerRequest true "选项下标"
// @Success 200 {object} util.Response{data=service.AttemptView}
// @Failure 400 {object} util.Response "选项下标越界"
// @Router /api/attempts/{id}/answer [post]
func (c *LearningController) SelectAnswer(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	var req AnswerRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	view, err := c.QuizService.SelectAnswer(ctx.Param("id"), claims.UserID, *req.OptionIndex)
	if err != nil {
		c.handleAttemptError(ctx, err)
		return
	}
	util.Success(ctx, view)
}

// NextQuestion godoc
// @Summary 下一题
// @Tags 学习
// @Produce  json
// @Security BearerAuth
// @Param   id path string true "会话ID"
// @Success 200 {object} util.Response{data=service.AttemptView}
// @Router /api/attempts/{id}/next [post]
func (c *LearningController) NextQuestion(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	view, err := c.QuizService.NextQuestion(ctx.Param("id"), claims.UserID)
	if err != nil {
		c.handleAttemptError(ctx, err)
		return
	}
	util.Success(ctx, view)
}

// PreviousQuestion godoc
// @Summary 上一题
// @Tags 学习
// @Produce  json
// @Security BearerAuth
// @Param   id path string true "会话ID"
// @Success 200 {object} util.Response{data=service.AttemptView}
// @Router /api/attempts/{id}/previous [post]
func (c *LearningController) PreviousQuestion(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	view, err := c.QuizService.PreviousQuestion(ctx.Param("id"), claims.UserID)
	if err != nil {
		c.handleAttemptError(ctx, err)
		return
	}
	util.Success(ctx, view)
}

// SubmitAttempt godoc
// @Summary 交卷
// @Description 所有题目必须作答；重复提交幂等返回首次结果
// @Tags 学习
// @Produce  json
// @Security BearerAuth
// @Param   id path string true "会话ID"
// @Success 200 {object} util.Response{data=service.AttemptView}
// @Failure 422 {object} util.Response "有题未答"
// @Router /api/attempts/{id}/submit [post]
func (c *LearningController) SubmitAttempt(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	view, err := c.QuizService.SubmitAttempt(ctx.Param("id"), claims.UserID)
	if err != nil {
		c.handleAttemptError(ctx, err)
		return
	}
	util.Success(ctx, view)
}

// RetryAttempt godoc
// @Summary 重做测验
// @Description 仅未通过的已提交会话可重做；清空作答并重置倒计时
// @Tags 学习
// @Produce  json
// @Security BearerAuth
// @Param   id path string true "会话ID"
// @Success 200 {object} util.Response{data=service.AttemptView}
// @Failure 409 {object} util.Response "未提交或已通过"
// @Router /api/attempts/{id}/retry [post]
func (c *LearningController) RetryAttempt(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	view, err := c.QuizService.RetryAttempt(ctx.Param("id"), claims.UserID)
	if err != nil {
		c.handleAttemptError(ctx, err)
		return
	}
	util.Success(ctx, view)
}

// ExitAttempt godoc
// @Summary 退出答题
// @Description 取消倒计时并丢弃会话；已提交的结果不受影响
// @Tags 学习
// @Produce  json
// @Security BearerAuth
// @Param   id path string true "会话ID"
// @Success 200 {object} util.Response
// @Router /api/attempts/{id} [delete]
func (c *LearningController) ExitAttempt(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	if err := c.QuizService.ExitAttempt(ctx.Param("id"), claims.UserID); err != nil {
		c.handleAttemptError(ctx, err)
		return
	}
	util.Success(ctx, nil)
}

// MyResults godoc
// @Summary 我的测验成绩
// @Tags 学习
// @Produce  json
// @Security BearerAuth
// @Success 200 {object} util.Response{data=[]model.QuizResult}
// @Router /api/results [get]
func (c *LearningController) MyResults(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	results, err := c.QuizService.GetResultsByUser(claims.UserID)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, results)
}
