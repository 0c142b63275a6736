package controller

import (
	"indosat_lms_backend/internal/service"
	"indosat_lms_backend/internal/util"
	"strconv"

	"github.com/gin-gonic/gin"
)

// MediaController YouTube 检索与 Google 授权流程
type MediaController struct {
	YouTube *service.YouTubeService
	OAuth   *service.GoogleOAuthService
}

func NewMediaController(youtube *service.YouTubeService, oauth *service.GoogleOAuthService) *MediaController {
	return &MediaController{YouTube: youtube, OAuth: oauth}
}

// SearchVideos godoc
// @Summary 检索教学视频
// @Tags 媒体
// @Produce  json
// @Security BearerAuth
// @Param   q query string true "关键词"
// @Param   limit query int false "返回条数，默认10"
// @Success 200 {object} util.Response{data=[]service.YouTubeVideo}
// @Router /api/media/videos/search [get]
func (c *MediaController) SearchVideos(ctx *gin.Context) {
	query := ctx.Query("q")
	if query == "" {
		util.BadRequest(ctx, "query required")
		return
	}
	limit, _ := strconv.ParseInt(ctx.DefaultQuery("limit", "10"), 10, 64)
	if limit <= 0 || limit > 50 {
		limit = 10
	}

	videos, err := c.YouTube.SearchVideos(ctx.Request.Context(), query, limit)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, videos)
}

// VideoDetails godoc
// @Summary 视频详情
// @Tags 媒体
// @Produce  json
// @Security BearerAuth
// @Param   ids query string true "逗号分隔的视频ID"
// @Success 200 {object} util.Response{data=[]service.YouTubeVideo}
// @Router /api/media/videos [get]
func (c *MediaController) VideoDetails(ctx *gin.Context) {
	ids := ctx.QueryArray("ids")
	if len(ids) == 0 {
		util.BadRequest(ctx, "ids required")
		return
	}

	videos, err := c.YouTube.GetVideoDetails(ctx.Request.Context(), ids)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, videos)
}

// PlaylistVideos godoc
// @Summary 播放列表条目
// @Tags 媒体
// @Produce  json
// @Security BearerAuth
// @Param   id path string true "播放列表ID"
// @Success 200 {object} util.Response{data=[]service.YouTubeVideo}
// @Router /api/media/playlists/{id} [get]
func (c *MediaController) PlaylistVideos(ctx *gin.Context) {
	limit, _ := strconv.ParseInt(ctx.DefaultQuery("limit", "25"), 10, 64)
	videos, err := c.YouTube.GetPlaylistVideos(ctx.Request.Context(), ctx.Param("id"), limit)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, videos)
}

// ChannelDetails godoc
// @Summary 频道详情
// @Tags 媒体
// @Produce  json
// @Security BearerAuth
// @Param   id path string true "频道ID"
// @Success 200 {object} util.Response{data=service.YouTubeChannel}
// @Router /api/media/channels/{id} [get]
func (c *MediaController) ChannelDetails(ctx *gin.Context) {
	channel, err := c.YouTube.GetChannelDetails(ctx.Request.Context(), ctx.Param("id"))
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, channel)
}

// AuthURL godoc
// @Summary 获取 Google 授权链接
// @Description 培训师上传内容前先走授权码流程
// @Tags 媒体
// @Produce  json
// @Security BearerAuth
// @Success 200 {object} util.Response{data=object}
// @Router /api/media/google/auth-url [get]
func (c *MediaController) AuthURL(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}
	// state 绑定用户，回调时校验归属
	util.Success(ctx, gin.H{"url": c.OAuth.AuthURL(claims.UserID)})
}

// ExchangeRequest 授权码换 token 请求
type ExchangeRequest struct {
	Code string `json:"code" binding:"required"`
}

// ExchangeCode godoc
// @Summary 授权码换取 access token
// @Tags 媒体
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param   body body ExchangeRequest true "授权码"
// @Success 200 {object} util.Response{data=object}
// @Failure 400 {object} util.Response "授权码无效"
// @Router /api/media/google/exchange [post]
func (c *MediaController) ExchangeCode(ctx *gin.Context) {
	var req ExchangeRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	token, err := c.OAuth.Exchange(ctx.Request.Context(), req.Code)
	if err != nil {
		util.BadRequest(ctx, "invalid authorization code")
		return
	}

	util.Success(ctx, gin.H{
		"accessToken":  token.AccessToken,
		"refreshToken": token.RefreshToken,
		"expiry":       token.Expiry,
	})
}

// RefreshRequest 刷新 token 请求
type RefreshRequest struct {
	RefreshToken string `json:"refreshToken" binding:"required"`
}

// RefreshToken godoc
// @Summary 刷新 Google access token
// @Tags 媒体
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param   body body RefreshRequest true "refresh token"
// @Success 200 {object} util.Response{data=object}
// @Failure 400 {object} util.Response "refresh token 无效"
// @Router /api/media/google/refresh [post]
func (c *MediaController) RefreshToken(ctx *gin.Context) {
	var req RefreshRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	token, err := c.OAuth.Refresh(ctx.Request.Context(), req.RefreshToken)
	if err != nil {
		util.BadRequest(ctx, "invalid refresh token")
		return
	}

	util.Success(ctx, gin.H{
		"accessToken": token.AccessToken,
		"expiry":      token.Expiry,
	})
}
