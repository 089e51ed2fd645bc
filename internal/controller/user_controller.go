package controller

import (
	"qa_forum_backend/internal/service"
	"qa_forum_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type UserController struct {
	UserService *service.UserService
}

func NewUserController(userService *service.UserService) *UserController {
	return &UserController{UserService: userService}
}

type AddRoleRequest struct {
	Role string `json:"role" binding:"required"`
}

// ListUsers godoc
// @Summary 用户列表
// @Tags 用户
// @Security ApiKeyAuth
// @Produce json
// @Success 200 {object} util.Response{data=[]service.UserLightweightDTO}
// @Router /api/users [get]
func (c *UserController) ListUsers(ctx *gin.Context) {
	users, err := c.UserService.ListUsers(ctx.Request.Context())
	if err != nil {
		util.RespondError(ctx, err)
		return
	}
	util.Success(ctx, users)
}

// GetUser godoc
// @Summary 用户详情
// @Tags 用户
// @Security ApiKeyAuth
// @Produce json
// @Param id path int true "用户ID"
// @Success 200 {object} util.Response{data=service.UserLightweightDTO}
// @Failure 404 {object} util.Response
// @Router /api/users/{id} [get]
func (c *UserController) GetUser(ctx *gin.Context) {
	id, ok := util.ParamID(ctx, "id")
	if !ok {
		return
	}

	user, err := c.UserService.GetUser(ctx.Request.Context(), id)
	if err != nil {
		util.RespondError(ctx, err)
		return
	}
	util.Success(ctx, user)
}

// GetUserRoles godoc
// @Summary 用户角色
// @Tags 用户
// @Security ApiKeyAuth
// @Produce json
// @Param id path int true "用户ID"
// @Success 200 {object} util.Response{data=[]string}
// @Router /api/users/{id}/roles [get]
func (c *UserController) GetUserRoles(ctx *gin.Context) {
	id, ok := util.ParamID(ctx, "id")
	if !ok {
		return
	}

	roles, err := c.UserService.GetUserRoles(ctx.Request.Context(), id)
	if err != nil {
		util.RespondError(ctx, err)
		return
	}
	util.Success(ctx, roles)
}

// GetUserRolesByName godoc
// @Summary 按用户名查询角色
// @Tags 用户
// @Security ApiKeyAuth
// @Produce json
// @Param name path string true "用户名"
// @Success 200 {object} util.Response{data=[]string}
// @Router /api/users/by-name/{name}/roles [get]
func (c *UserController) GetUserRolesByName(ctx *gin.Context) {
	roles, err := c.UserService.GetUserRolesByName(ctx.Request.Context(), ctx.Param("name"))
	if err != nil {
		util.RespondError(ctx, err)
		return
	}
	util.Success(ctx, roles)
}

// AddUserRole godoc
// @Summary 管理员为用户添加角色
// @Tags 管理
// @Security ApiKeyAuth
// @Accept json
// @Produce json
// @Param id path int true "用户ID"
// @Param body body AddRoleRequest true "角色"
// @Success 200 {object} util.Response
// @Router /api/admin/users/{id}/roles [post]
func (c *UserController) AddUserRole(ctx *gin.Context) {
	id, ok := util.ParamID(ctx, "id")
	if !ok {
		return
	}
	var req AddRoleRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	if err := c.UserService.AddUserRole(ctx.Request.Context(), id, req.Role); err != nil {
		util.RespondError(ctx, err)
		return
	}
	util.Success(ctx, nil)
}
