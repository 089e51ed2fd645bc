package controller

import (
	"context"
	"qa_forum_backend/internal/service"
	"qa_forum_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type AnswerController struct {
	ThreadService *service.ThreadService
	VoteService   *service.VoteService
}

func NewAnswerController(threadService *service.ThreadService, voteService *service.VoteService) *AnswerController {
	return &AnswerController{ThreadService: threadService, VoteService: voteService}
}

type VoteRequest struct {
	Vote *int `json:"vote" binding:"required"`
}

// ListAnswers godoc
// @Summary 问题下的回答
// @Tags 问答
// @Produce json
// @Param id path int true "问题ID"
// @Success 200 {object} util.Response{data=[]service.AnswerView}
// @Router /api/questions/{id}/answers [get]
func (c *AnswerController) ListAnswers(ctx *gin.Context) {
	id, ok := util.ParamID(ctx, "id")
	if !ok {
		return
	}

	answers, err := c.ThreadService.ListAnswers(ctx.Request.Context(), id)
	if err != nil {
		util.RespondError(ctx, err)
		return
	}
	util.Success(ctx, answers)
}

// CreateAnswer godoc
// @Summary 回答问题
// @Tags 问答
// @Security ApiKeyAuth
// @Accept json
// @Produce json
// @Param id path int true "问题ID"
// @Param body body service.AnswerInput true "回答"
// @Success 201 {object} util.Response{data=model.Answer}
// @Router /api/questions/{id}/answers [post]
func (c *AnswerController) CreateAnswer(ctx *gin.Context) {
	user, ok := currentUser(ctx)
	if !ok {
		return
	}
	id, ok := util.ParamID(ctx, "id")
	if !ok {
		return
	}
	var in service.AnswerInput
	if err := ctx.ShouldBindJSON(&in); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	answer, err := c.ThreadService.AddAnswer(ctx.Request.Context(), user.UserID, id, in.Content)
	if err != nil {
		util.RespondError(ctx, err)
		return
	}
	util.Created(ctx, answer)
}

// GetAnswer godoc
// @Summary 回答详情
// @Tags 问答
// @Produce json
// @Param id path int true "回答ID"
// @Success 200 {object} util.Response{data=model.Answer}
// @Router /api/answers/{id} [get]
func (c *AnswerController) GetAnswer(ctx *gin.Context) {
	id, ok := util.ParamID(ctx, "id")
	if !ok {
		return
	}

	answer, err := c.ThreadService.GetAnswer(ctx.Request.Context(), id)
	if err != nil {
		util.RespondError(ctx, err)
		return
	}
	util.Success(ctx, answer)
}

// UpdateAnswer godoc
// @Summary 修改回答
// @Tags 问答
// @Security ApiKeyAuth
// @Accept json
// @Produce json
// @Param id path int true "回答ID"
// @Param body body service.AnswerInput true "回答"
// @Success 200 {object} util.Response{data=model.Answer}
// @Router /api/answers/{id} [put]
func (c *AnswerController) UpdateAnswer(ctx *gin.Context) {
	user, ok := currentUser(ctx)
	if !ok {
		return
	}
	id, ok := util.ParamID(ctx, "id")
	if !ok {
		return
	}
	var in service.AnswerInput
	if err := ctx.ShouldBindJSON(&in); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	existing, err := c.ThreadService.GetAnswer(ctx.Request.Context(), id)
	if err != nil {
		util.RespondError(ctx, err)
		return
	}
	if !requireOwnerOrModerator(ctx, user, existing.AuthorID) {
		return
	}

	answer, err := c.ThreadService.UpdateAnswer(ctx.Request.Context(), id, in.Content)
	if err != nil {
		util.RespondError(ctx, err)
		return
	}
	util.Success(ctx, answer)
}

// DeleteAnswer godoc
// @Summary 删除回答
// @Description 被采纳的回答删除后问题回到未解决状态
// @Tags 问答
// @Security ApiKeyAuth
// @Produce json
// @Param id path int true "回答ID"
// @Success 200 {object} util.Response
// @Router /api/answers/{id} [delete]
func (c *AnswerController) DeleteAnswer(ctx *gin.Context) {
	user, ok := currentUser(ctx)
	if !ok {
		return
	}
	id, ok := util.ParamID(ctx, "id")
	if !ok {
		return
	}

	existing, err := c.ThreadService.GetAnswer(ctx.Request.Context(), id)
	if err != nil {
		util.RespondError(ctx, err)
		return
	}
	if !requireOwnerOrModerator(ctx, user, existing.AuthorID) {
		return
	}

	if err := c.ThreadService.DeleteAnswer(ctx.Request.Context(), id); err != nil {
		util.RespondError(ctx, err)
		return
	}
	util.Success(ctx, nil)
}

// MyAnswers godoc
// @Summary 我的回答
// @Tags 问答
// @Security ApiKeyAuth
// @Produce json
// @Success 200 {object} util.Response{data=[]service.AnswerLightweightDTO}
// @Router /api/me/answers [get]
func (c *AnswerController) MyAnswers(ctx *gin.Context) {
	user, ok := currentUser(ctx)
	if !ok {
		return
	}

	answers, err := c.ThreadService.ListUserAnswers(ctx.Request.Context(), user.UserID)
	if err != nil {
		util.RespondError(ctx, err)
		return
	}
	util.Success(ctx, answers)
}

// GetVotes godoc
// @Summary 回答票数
// @Description 登录用户同时返回自己的投票
// @Tags 投票
// @Produce json
// @Param id path int true "回答ID"
// @Success 200 {object} util.Response{data=object}
// @Router /api/answers/{id}/votes [get]
func (c *AnswerController) GetVotes(ctx *gin.Context) {
	id, ok := util.ParamID(ctx, "id")
	if !ok {
		return
	}

	total, err := c.VoteService.GetAnswerVoteCount(ctx.Request.Context(), id)
	if err != nil {
		util.RespondError(ctx, err)
		return
	}
	resp := gin.H{"count": total, "label": service.FormatVoteCount(total)}

	if user := util.GetUserFromContext(ctx); user != nil {
		mine, err := c.VoteService.GetUserVoteForAnswer(ctx.Request.Context(), user.UserID, id)
		if err != nil {
			util.RespondError(ctx, err)
			return
		}
		resp["mine"] = mine
	}
	util.Success(ctx, resp)
}

// SetVote godoc
// @Summary 设置投票
// @Description vote 取 -1、0、1
// @Tags 投票
// @Security ApiKeyAuth
// @Accept json
// @Produce json
// @Param id path int true "回答ID"
// @Param body body VoteRequest true "投票"
// @Success 200 {object} util.Response{data=object}
// @Router /api/answers/{id}/vote [put]
func (c *AnswerController) SetVote(ctx *gin.Context) {
	user, ok := currentUser(ctx)
	if !ok {
		return
	}
	id, ok := util.ParamID(ctx, "id")
	if !ok {
		return
	}
	var req VoteRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	if err := c.VoteService.UpdateUserVoteForAnswer(ctx.Request.Context(), user.UserID, id, *req.Vote); err != nil {
		util.RespondError(ctx, err)
		return
	}
	c.respondTally(ctx, id, *req.Vote)
}

// Upvote godoc
// @Summary 点赞（再次点击取消）
// @Tags 投票
// @Security ApiKeyAuth
// @Produce json
// @Param id path int true "回答ID"
// @Success 200 {object} util.Response{data=object}
// @Router /api/answers/{id}/upvote [post]
func (c *AnswerController) Upvote(ctx *gin.Context) {
	c.toggle(ctx, c.VoteService.ToggleUpvote)
}

// Downvote godoc
// @Summary 点踩（再次点击取消）
// @Tags 投票
// @Security ApiKeyAuth
// @Produce json
// @Param id path int true "回答ID"
// @Success 200 {object} util.Response{data=object}
// @Router /api/answers/{id}/downvote [post]
func (c *AnswerController) Downvote(ctx *gin.Context) {
	c.toggle(ctx, c.VoteService.ToggleDownvote)
}

func (c *AnswerController) toggle(ctx *gin.Context, fn func(context.Context, uint, uint) (int, error)) {
	user, ok := currentUser(ctx)
	if !ok {
		return
	}
	id, ok := util.ParamID(ctx, "id")
	if !ok {
		return
	}

	vote, err := fn(ctx.Request.Context(), user.UserID, id)
	if err != nil {
		util.RespondError(ctx, err)
		return
	}
	c.respondTally(ctx, id, vote)
}

// 返回投票后的最新票数
func (c *AnswerController) respondTally(ctx *gin.Context, answerID uint, mine int) {
	total, err := c.VoteService.GetAnswerVoteCount(ctx.Request.Context(), answerID)
	if err != nil {
		util.RespondError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"count": total, "label": service.FormatVoteCount(total), "mine": mine})
}
