package controller

import (
	"errors"
	"net/http"
	"qa_forum_backend/internal/model"
	"qa_forum_backend/internal/service"
	"qa_forum_backend/internal/util"
	"strings"

	"github.com/gin-gonic/gin"
)

type AuthController struct {
	AuthService *service.AuthService
	UserService *service.UserService
}

func NewAuthController(authService *service.AuthService, userService *service.UserService) *AuthController {
	return &AuthController{
		AuthService: authService,
		UserService: userService,
	}
}

// RegisterRequest defines model for registration
// swagger:model RegisterRequest
type RegisterRequest struct {
	UserName string   `json:"userName" binding:"required,max=100"`
	Password string   `json:"password" binding:"required,min=8,max=72"`
	FullName string   `json:"fullName" binding:"max=100"`
	Email    string   `json:"email" binding:"omitempty,email"`
	Roles    []string `json:"roles" binding:"required,min=1"`
}

func (r RegisterRequest) input() service.RegisterInput {
	return service.RegisterInput{
		UserName: r.UserName,
		Password: r.Password,
		FullName: r.FullName,
		Email:    r.Email,
		Roles:    r.Roles,
	}
}

// InvitationRegisterRequest 凭邀请码注册，角色由邀请码决定
// swagger:model InvitationRegisterRequest
type InvitationRegisterRequest struct {
	Code     string `json:"code" binding:"required,len=4"`
	UserName string `json:"userName" binding:"required,max=100"`
	Password string `json:"password" binding:"required,min=8,max=72"`
	FullName string `json:"fullName" binding:"max=100"`
	Email    string `json:"email" binding:"omitempty,email"`
}

// BootstrapRequest 首个管理员，额外角色可选
// swagger:model BootstrapRequest
type BootstrapRequest struct {
	UserName string   `json:"userName" binding:"required,max=100"`
	Password string   `json:"password" binding:"required,min=8,max=72"`
	FullName string   `json:"fullName" binding:"max=100"`
	Email    string   `json:"email" binding:"omitempty,email"`
	Roles    []string `json:"roles"`
}

// swagger:model LoginRequest
type LoginRequest struct {
	UserName string `json:"userName" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// Register godoc
// @Summary 注册新用户
// @Description 自助注册，可选择除 admin 以外的角色
// @Tags 认证
// @Accept  json
// @Produce  json
// @Param   body body RegisterRequest true "用户注册信息"
// @Success 201 {object} util.Response{data=object} "创建成功"
// @Failure 400 {object} util.Response "请求参数错误"
// @Failure 409 {object} util.Response "用户名已存在"
// @Router /api/register [post]
func (c *AuthController) Register(ctx *gin.Context) {
	var req RegisterRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	for _, role := range req.Roles {
		if strings.EqualFold(strings.TrimSpace(role), string(model.RoleAdmin)) {
			util.Error(ctx, http.StatusForbidden, "admin role cannot be self-assigned")
			return
		}
	}

	id, err := c.AuthService.Register(ctx.Request.Context(), req.input())
	if err != nil {
		util.RespondError(ctx, err)
		return
	}

	util.Created(ctx, gin.H{"id": id})
}

// RegisterWithInvitation godoc
// @Summary 邀请码注册
// @Tags 认证
// @Accept  json
// @Produce  json
// @Param   body body InvitationRegisterRequest true "邀请码与用户信息"
// @Success 201 {object} util.Response{data=object}
// @Failure 400 {object} util.Response "邀请码已使用或参数错误"
// @Failure 404 {object} util.Response "邀请码不存在"
// @Router /api/register/invitation [post]
func (c *AuthController) RegisterWithInvitation(ctx *gin.Context) {
	var req InvitationRegisterRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	id, err := c.AuthService.RegisterWithInvitation(ctx.Request.Context(), req.Code, service.RegisterInput{
		UserName: req.UserName,
		Password: req.Password,
		FullName: req.FullName,
		Email:    req.Email,
	})
	if err != nil {
		util.RespondError(ctx, err)
		return
	}

	util.Created(ctx, gin.H{"id": id})
}

// SetupStatus godoc
// @Summary 是否需要初始化管理员
// @Tags 认证
// @Produce  json
// @Success 200 {object} util.Response{data=object}
// @Router /api/setup [get]
func (c *AuthController) SetupStatus(ctx *gin.Context) {
	empty, err := c.AuthService.IsDatabaseEmpty(ctx.Request.Context())
	if err != nil {
		util.RespondError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"needsSetup": empty})
}

// BootstrapAdmin godoc
// @Summary 创建首个管理员
// @Description 仅在系统中没有任何用户时可用
// @Tags 认证
// @Accept  json
// @Produce  json
// @Param   body body BootstrapRequest true "管理员信息"
// @Success 201 {object} util.Response{data=object}
// @Failure 400 {object} util.Response "系统已初始化"
// @Router /api/setup [post]
func (c *AuthController) BootstrapAdmin(ctx *gin.Context) {
	var req BootstrapRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	id, err := c.AuthService.BootstrapAdmin(ctx.Request.Context(), service.RegisterInput(req))
	if err != nil {
		util.RespondError(ctx, err)
		return
	}

	util.Created(ctx, gin.H{"id": id})
}

// Login godoc
// @Summary 用户登录
// @Description 验证用户身份并返回JWT令牌
// @Tags 认证
// @Accept  json
// @Produce  json
// @Param   body body LoginRequest true "用户登录凭据"
// @Success 200 {object} util.Response{data=object} "登录成功"
// @Failure 401 {object} util.Response "用户名或密码错误"
// @Failure 429 {object} util.Response "失败次数过多"
// @Router /api/login [post]
func (c *AuthController) Login(ctx *gin.Context) {
	var req LoginRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	userID, err := c.AuthService.Login(ctx.Request.Context(), req.UserName, req.Password)
	if errors.Is(err, util.ErrInvalidCredentials) {
		util.Error(ctx, http.StatusUnauthorized, err.Error())
		return
	}
	if err != nil {
		util.RespondError(ctx, err)
		return
	}

	token, err := c.AuthService.IssueToken(ctx.Request.Context(), userID)
	if err != nil {
		util.RespondError(ctx, err)
		return
	}
	user, err := c.UserService.GetUser(ctx.Request.Context(), userID)
	if err != nil {
		util.RespondError(ctx, err)
		return
	}

	util.Success(ctx, gin.H{"token": token, "user": user})
}

// Profile godoc
// @Summary 当前用户信息
// @Tags 认证
// @Security ApiKeyAuth
// @Produce  json
// @Success 200 {object} util.Response{data=service.UserLightweightDTO}
// @Router /api/profile [get]
func (c *AuthController) Profile(ctx *gin.Context) {
	claims, ok := currentUser(ctx)
	if !ok {
		return
	}

	user, err := c.UserService.GetUser(ctx.Request.Context(), claims.UserID)
	if err != nil {
		util.RespondError(ctx, err)
		return
	}
	util.Success(ctx, user)
}

// RefreshToken godoc
// @Summary 刷新令牌
// @Description 角色变更（例如申请被批准）后重新签发包含最新角色的令牌
// @Tags 认证
// @Security ApiKeyAuth
// @Produce  json
// @Success 200 {object} util.Response{data=object}
// @Router /api/token/refresh [post]
func (c *AuthController) RefreshToken(ctx *gin.Context) {
	claims, ok := currentUser(ctx)
	if !ok {
		return
	}

	token, err := c.AuthService.IssueToken(ctx.Request.Context(), claims.UserID)
	if err != nil {
		util.RespondError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"token": token})
}
