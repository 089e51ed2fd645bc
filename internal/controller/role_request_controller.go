package controller

import (
	"qa_forum_backend/internal/service"
	"qa_forum_backend/internal/util"
	"strings"

	"github.com/gin-gonic/gin"
)

type RoleRequestController struct {
	RoleRequestService *service.RoleRequestService
}

func NewRoleRequestController(roleRequestService *service.RoleRequestService) *RoleRequestController {
	return &RoleRequestController{RoleRequestService: roleRequestService}
}

// RequestRole godoc
// @Summary 申请新角色
// @Tags 角色申请
// @Security ApiKeyAuth
// @Accept json
// @Produce json
// @Param body body AddRoleRequest true "申请的角色"
// @Success 201 {object} util.Response{data=model.RoleRequest}
// @Failure 400 {object} util.Response "已持有该角色"
// @Failure 409 {object} util.Response "已申请过"
// @Router /api/role-requests [post]
func (c *RoleRequestController) RequestRole(ctx *gin.Context) {
	user, ok := currentUser(ctx)
	if !ok {
		return
	}
	var req AddRoleRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	created, err := c.RoleRequestService.RequestRole(ctx.Request.Context(), user.UserID, req.Role)
	if err != nil {
		util.RespondError(ctx, err)
		return
	}
	util.Created(ctx, created)
}

// ListMyRequests godoc
// @Summary 我的角色申请
// @Tags 角色申请
// @Security ApiKeyAuth
// @Produce json
// @Success 200 {object} util.Response{data=[]model.RoleRequest}
// @Router /api/role-requests/mine [get]
func (c *RoleRequestController) ListMyRequests(ctx *gin.Context) {
	user, ok := currentUser(ctx)
	if !ok {
		return
	}

	requests, err := c.RoleRequestService.ListUserRequests(ctx.Request.Context(), user.UserID)
	if err != nil {
		util.RespondError(ctx, err)
		return
	}
	util.Success(ctx, requests)
}

// HasRequested godoc
// @Summary 是否已申请某角色
// @Tags 角色申请
// @Security ApiKeyAuth
// @Produce json
// @Param role query string true "角色"
// @Success 200 {object} util.Response{data=object}
// @Router /api/role-requests/check [get]
func (c *RoleRequestController) HasRequested(ctx *gin.Context) {
	user, ok := currentUser(ctx)
	if !ok {
		return
	}

	requested, err := c.RoleRequestService.HasRequestedRole(ctx.Request.Context(), user.UserID, ctx.Query("role"))
	if err != nil {
		util.RespondError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"requested": requested})
}

// ListRequests godoc
// @Summary 待审批的角色申请
// @Tags 管理
// @Security ApiKeyAuth
// @Produce json
// @Param roles query string false "逗号分隔的角色过滤"
// @Param sort query string false "recent 或 oldest"
// @Success 200 {object} util.Response{data=[]model.RoleRequest}
// @Router /api/admin/role-requests [get]
func (c *RoleRequestController) ListRequests(ctx *gin.Context) {
	var roles []string
	if raw := ctx.Query("roles"); raw != "" {
		roles = strings.Split(raw, ",")
	}

	requests, err := c.RoleRequestService.ListRoleRequests(ctx.Request.Context(), roles, ctx.Query("sort"))
	if err != nil {
		util.RespondError(ctx, err)
		return
	}
	util.Success(ctx, requests)
}

// Approve godoc
// @Summary 批准角色申请
// @Tags 管理
// @Security ApiKeyAuth
// @Produce json
// @Param id path int true "申请ID"
// @Success 200 {object} util.Response
// @Failure 404 {object} util.Response
// @Router /api/admin/role-requests/{id}/approve [post]
func (c *RoleRequestController) Approve(ctx *gin.Context) {
	id, ok := util.ParamID(ctx, "id")
	if !ok {
		return
	}
	if err := c.RoleRequestService.ApproveRoleRequest(ctx.Request.Context(), id); err != nil {
		util.RespondError(ctx, err)
		return
	}
	util.Success(ctx, nil)
}

// Deny godoc
// @Summary 拒绝角色申请
// @Tags 管理
// @Security ApiKeyAuth
// @Produce json
// @Param id path int true "申请ID"
// @Success 200 {object} util.Response
// @Failure 404 {object} util.Response
// @Router /api/admin/role-requests/{id}/deny [post]
func (c *RoleRequestController) Deny(ctx *gin.Context) {
	id, ok := util.ParamID(ctx, "id")
	if !ok {
		return
	}
	if err := c.RoleRequestService.DenyRoleRequest(ctx.Request.Context(), id); err != nil {
		util.RespondError(ctx, err)
		return
	}
	util.Success(ctx, nil)
}
