package controller

import (
	"qa_forum_backend/internal/service"
	"qa_forum_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type InvitationController struct {
	InvitationService *service.InvitationService
}

func NewInvitationController(invitationService *service.InvitationService) *InvitationController {
	return &InvitationController{InvitationService: invitationService}
}

type CreateInvitationRequest struct {
	Roles []string `json:"roles"`
}

// Create godoc
// @Summary 生成邀请码
// @Description roles 为空时默认 student
// @Tags 管理
// @Security ApiKeyAuth
// @Accept json
// @Produce json
// @Param body body CreateInvitationRequest false "邀请码授予的角色"
// @Success 201 {object} util.Response{data=model.InvitationCode}
// @Router /api/admin/invitations [post]
func (c *InvitationController) Create(ctx *gin.Context) {
	user, ok := currentUser(ctx)
	if !ok {
		return
	}
	var req CreateInvitationRequest
	if ctx.Request.ContentLength > 0 {
		if err := ctx.ShouldBindJSON(&req); err != nil {
			util.BadRequest(ctx, err.Error())
			return
		}
	}

	code, err := c.InvitationService.CreateCode(ctx.Request.Context(), user.UserID, req.Roles)
	if err != nil {
		util.RespondError(ctx, err)
		return
	}
	util.Created(ctx, code)
}

// List godoc
// @Summary 邀请码列表
// @Tags 管理
// @Security ApiKeyAuth
// @Produce json
// @Param unused query bool false "只看未使用"
// @Success 200 {object} util.Response{data=[]model.InvitationCode}
// @Router /api/admin/invitations [get]
func (c *InvitationController) List(ctx *gin.Context) {
	codes, err := c.InvitationService.ListCodes(ctx.Request.Context(), ctx.Query("unused") == "true")
	if err != nil {
		util.RespondError(ctx, err)
		return
	}
	util.Success(ctx, codes)
}

// Validate godoc
// @Summary 校验邀请码
// @Tags 认证
// @Produce json
// @Param code path string true "邀请码"
// @Success 200 {object} util.Response{data=object}
// @Failure 400 {object} util.Response "已使用"
// @Failure 404 {object} util.Response "不存在"
// @Router /api/invitations/{code} [get]
func (c *InvitationController) Validate(ctx *gin.Context) {
	code, err := c.InvitationService.ValidateCode(ctx.Request.Context(), ctx.Param("code"))
	if err != nil {
		util.RespondError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"code": code.Code, "roles": code.Roles})
}
