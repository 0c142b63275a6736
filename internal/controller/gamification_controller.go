package controller

import (
	"errors"
	"indosat_lms_backend/internal/service"
	"indosat_lms_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type GamificationController struct {
	GamificationService *service.GamificationService
}

func NewGamificationController(gamificationService *service.GamificationService) *GamificationController {
	return &GamificationController{GamificationService: gamificationService}
}

// ListBadges godoc
// @Summary 全部徽章定义
// @Tags 游戏化
// @Produce  json
// @Security BearerAuth
// @Success 200 {object} util.Response{data=[]model.Badge}
// @Router /api/badges [get]
func (c *GamificationController) ListBadges(ctx *gin.Context) {
	badges, err := c.GamificationService.ListBadges()
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, badges)
}

// MyBadges godoc
// @Summary 我获得的徽章
// @Tags 游戏化
// @Produce  json
// @Security BearerAuth
// @Success 200 {object} util.Response{data=[]model.UserBadge}
// @Router /api/badges/mine [get]
func (c *GamificationController) MyBadges(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	badges, err := c.GamificationService.GetUserBadges(claims.UserID)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, badges)
}

// Leaderboard godoc
// @Summary 积分排行榜
// @Description 仅积分大于0的用户上榜，带60秒缓存
// @Tags 游戏化
// @Produce  json
// @Security BearerAuth
// @Success 200 {object} util.Response{data=[]service.LeaderboardEntry}
// @Router /api/leaderboard [get]
func (c *GamificationController) Leaderboard(ctx *gin.Context) {
	entries, err := c.GamificationService.GetLeaderboard(ctx.Request.Context())
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, entries)
}

// MyCertificates godoc
// @Summary 我的结业证书
// @Tags 游戏化
// @Produce  json
// @Security BearerAuth
// @Success 200 {object} util.Response{data=[]model.Certificate}
// @Router /api/certificates [get]
func (c *GamificationController) MyCertificates(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	certs, err := c.GamificationService.GetUserCertificates(claims.UserID)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, certs)
}

// VerifyCertificate godoc
// @Summary 证书验真
// @Description 公开接口，按证书编号查询真伪
// @Tags 游戏化
// @Produce  json
// @Param   code path string true "证书编号"
// @Success 200 {object} util.Response{data=model.Certificate}
// @Failure 404 {object} util.Response "证书不存在"
// @Router /api/certificates/verify/{code} [get]
func (c *GamificationController) VerifyCertificate(ctx *gin.Context) {
	cert, err := c.GamificationService.VerifyCertificate(ctx.Param("code"))
	if err != nil {
		if errors.Is(err, util.ErrCertificateNotEarned) {
			util.NotFound(ctx, "证书不存在")
		} else {
			util.LogInternalError(ctx, err)
		}
		return
	}
	util.Success(ctx, cert)
}
