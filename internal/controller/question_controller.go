package controller

import (
	"qa_forum_backend/internal/service"
	"qa_forum_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type QuestionController struct {
	ThreadService *service.ThreadService
}

func NewQuestionController(threadService *service.ThreadService) *QuestionController {
	return &QuestionController{ThreadService: threadService}
}

type ResolveRequest struct {
	AnswerID uint `json:"answerId" binding:"required"`
}

// ListQuestions godoc
// @Summary 问题列表
// @Description 关键词搜索（停用词会被忽略），filter: all/unresolved/resolved/mine/mine_unresolved/mine_resolved，sort: recent/oldest/az/za
// @Tags 问答
// @Produce json
// @Param q query string false "关键词"
// @Param filter query string false "状态过滤"
// @Param sort query string false "排序"
// @Param limit query int false "数量"
// @Param offset query int false "偏移"
// @Success 200 {object} util.Response{data=[]service.QuestionLightweightDTO}
// @Router /api/questions [get]
func (c *QuestionController) ListQuestions(ctx *gin.Context) {
	var in service.ListQuestionsInput
	if err := ctx.ShouldBindQuery(&in); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	if user := util.GetUserFromContext(ctx); user != nil {
		in.UserID = user.UserID
	}

	questions, err := c.ThreadService.ListQuestions(ctx.Request.Context(), in)
	if err != nil {
		util.RespondError(ctx, err)
		return
	}
	util.Success(ctx, questions)
}

// GetQuestion godoc
// @Summary 问题详情
// @Description 提问者本人查看时清零未读回答计数
// @Tags 问答
// @Produce json
// @Param id path int true "问题ID"
// @Success 200 {object} util.Response{data=model.Question}
// @Failure 404 {object} util.Response
// @Router /api/questions/{id} [get]
func (c *QuestionController) GetQuestion(ctx *gin.Context) {
	id, ok := util.ParamID(ctx, "id")
	if !ok {
		return
	}

	question, err := c.ThreadService.GetQuestion(ctx.Request.Context(), id)
	if err != nil {
		util.RespondError(ctx, err)
		return
	}

	if user := util.GetUserFromContext(ctx); user != nil && user.UserID == question.AuthorID && question.AuthorUnreadCount > 0 {
		if err := c.ThreadService.ResetQuestionUnreadCount(ctx.Request.Context(), id); err != nil {
			util.RespondError(ctx, err)
			return
		}
		question.AuthorUnreadCount = 0
	}
	util.Success(ctx, question)
}

// ListFollowUps godoc
// @Summary 追问列表
// @Tags 问答
// @Produce json
// @Param id path int true "问题ID"
// @Success 200 {object} util.Response{data=[]service.QuestionLightweightDTO}
// @Router /api/questions/{id}/follow-ups [get]
func (c *QuestionController) ListFollowUps(ctx *gin.Context) {
	id, ok := util.ParamID(ctx, "id")
	if !ok {
		return
	}

	questions, err := c.ThreadService.ListFollowUps(ctx.Request.Context(), id)
	if err != nil {
		util.RespondError(ctx, err)
		return
	}
	util.Success(ctx, questions)
}

// CreateQuestion godoc
// @Summary 提问
// @Tags 问答
// @Security ApiKeyAuth
// @Accept json
// @Produce json
// @Param body body service.QuestionInput true "问题"
// @Success 201 {object} util.Response{data=model.Question}
// @Failure 400 {object} util.Response
// @Router /api/questions [post]
func (c *QuestionController) CreateQuestion(ctx *gin.Context) {
	user, ok := currentUser(ctx)
	if !ok {
		return
	}
	var in service.QuestionInput
	if err := ctx.ShouldBindJSON(&in); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	question, err := c.ThreadService.AddQuestion(ctx.Request.Context(), user.UserID, in)
	if err != nil {
		util.RespondError(ctx, err)
		return
	}
	util.Created(ctx, question)
}

// UpdateQuestion godoc
// @Summary 修改问题
// @Tags 问答
// @Security ApiKeyAuth
// @Accept json
// @Produce json
// @Param id path int true "问题ID"
// @Param body body service.QuestionInput true "问题"
// @Success 200 {object} util.Response{data=model.Question}
// @Failure 403 {object} util.Response
// @Router /api/questions/{id} [put]
func (c *QuestionController) UpdateQuestion(ctx *gin.Context) {
	user, ok := currentUser(ctx)
	if !ok {
		return
	}
	id, ok := util.ParamID(ctx, "id")
	if !ok {
		return
	}
	var in service.QuestionInput
	if err := ctx.ShouldBindJSON(&in); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	existing, err := c.ThreadService.GetQuestion(ctx.Request.Context(), id)
	if err != nil {
		util.RespondError(ctx, err)
		return
	}
	if !requireOwnerOrModerator(ctx, user, existing.AuthorID) {
		return
	}

	question, err := c.ThreadService.UpdateQuestion(ctx.Request.Context(), id, in)
	if err != nil {
		util.RespondError(ctx, err)
		return
	}
	util.Success(ctx, question)
}

// DeleteQuestion godoc
// @Summary 删除问题
// @Description 同时删除其回答、投票、评审与相关私信
// @Tags 问答
// @Security ApiKeyAuth
// @Produce json
// @Param id path int true "问题ID"
// @Success 200 {object} util.Response
// @Router /api/questions/{id} [delete]
func (c *QuestionController) DeleteQuestion(ctx *gin.Context) {
	user, ok := currentUser(ctx)
	if !ok {
		return
	}
	id, ok := util.ParamID(ctx, "id")
	if !ok {
		return
	}

	existing, err := c.ThreadService.GetQuestion(ctx.Request.Context(), id)
	if err != nil {
		util.RespondError(ctx, err)
		return
	}
	if !requireOwnerOrModerator(ctx, user, existing.AuthorID) {
		return
	}

	if err := c.ThreadService.DeleteQuestion(ctx.Request.Context(), id); err != nil {
		util.RespondError(ctx, err)
		return
	}
	util.Success(ctx, nil)
}

// UnreadCount godoc
// @Summary 问题的未读回答数
// @Tags 问答
// @Security ApiKeyAuth
// @Produce json
// @Param id path int true "问题ID"
// @Success 200 {object} util.Response{data=object}
// @Router /api/questions/{id}/unread [get]
func (c *QuestionController) UnreadCount(ctx *gin.Context) {
	user, ok := currentUser(ctx)
	if !ok {
		return
	}
	id, ok := util.ParamID(ctx, "id")
	if !ok {
		return
	}

	question, err := c.ThreadService.GetQuestion(ctx.Request.Context(), id)
	if err != nil {
		util.RespondError(ctx, err)
		return
	}
	if question.AuthorID != user.UserID {
		util.Forbidden(ctx)
		return
	}
	util.Success(ctx, gin.H{"unread": question.AuthorUnreadCount})
}

// GetResolution godoc
// @Summary 问题的解决状态
// @Tags 问答
// @Produce json
// @Param id path int true "问题ID"
// @Success 200 {object} util.Response{data=service.Resolution}
// @Router /api/questions/{id}/resolution [get]
func (c *QuestionController) GetResolution(ctx *gin.Context) {
	id, ok := util.ParamID(ctx, "id")
	if !ok {
		return
	}

	res, err := c.ThreadService.GetResolution(ctx.Request.Context(), id)
	if err != nil {
		util.RespondError(ctx, err)
		return
	}
	util.Success(ctx, res)
}

// SetResolution godoc
// @Summary 采纳回答
// @Description 仅提问者可操作，回答必须属于该问题
// @Tags 问答
// @Security ApiKeyAuth
// @Accept json
// @Produce json
// @Param id path int true "问题ID"
// @Param body body ResolveRequest true "回答ID"
// @Success 200 {object} util.Response
// @Router /api/questions/{id}/resolution [put]
func (c *QuestionController) SetResolution(ctx *gin.Context) {
	user, ok := currentUser(ctx)
	if !ok {
		return
	}
	id, ok := util.ParamID(ctx, "id")
	if !ok {
		return
	}
	var req ResolveRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	question, err := c.ThreadService.GetQuestion(ctx.Request.Context(), id)
	if err != nil {
		util.RespondError(ctx, err)
		return
	}
	if question.AuthorID != user.UserID {
		util.Forbidden(ctx)
		return
	}

	if err := c.ThreadService.SetResolvedAnswer(ctx.Request.Context(), id, req.AnswerID); err != nil {
		util.RespondError(ctx, err)
		return
	}
	util.Success(ctx, nil)
}

// ClearResolution godoc
// @Summary 取消采纳
// @Tags 问答
// @Security ApiKeyAuth
// @Produce json
// @Param id path int true "问题ID"
// @Success 200 {object} util.Response
// @Router /api/questions/{id}/resolution [delete]
func (c *QuestionController) ClearResolution(ctx *gin.Context) {
	user, ok := currentUser(ctx)
	if !ok {
		return
	}
	id, ok := util.ParamID(ctx, "id")
	if !ok {
		return
	}

	question, err := c.ThreadService.GetQuestion(ctx.Request.Context(), id)
	if err != nil {
		util.RespondError(ctx, err)
		return
	}
	if question.AuthorID != user.UserID {
		util.Forbidden(ctx)
		return
	}

	if err := c.ThreadService.RemoveResolvedAnswer(ctx.Request.Context(), id); err != nil {
		util.RespondError(ctx, err)
		return
	}
	util.Success(ctx, nil)
}
