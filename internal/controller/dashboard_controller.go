package controller

import (
	"indosat_lms_backend/internal/service"
	"indosat_lms_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type DashboardController struct {
	DashboardService *service.DashboardService
	AuthService      *service.AuthService
}

func NewDashboardController(dashboardService *service.DashboardService, authService *service.AuthService) *DashboardController {
	return &DashboardController{
		DashboardService: dashboardService,
		AuthService:      authService,
	}
}

// GetDashboard godoc
// @Summary 角色仪表盘
// @Description 按登录用户角色返回 admin / trainer / dse 专属视图
// @Tags 仪表盘
// @Produce  json
// @Security BearerAuth
// @Success 200 {object} util.Response{data=object}
// @Failure 401 {object} util.Response
// @Router /api/dashboard [get]
func (c *DashboardController) GetDashboard(ctx *gin.Context) {
	user := c.AuthService.GetCurrentUser(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	dash, err := c.DashboardService.GetDashboard(user)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, dash)
}
