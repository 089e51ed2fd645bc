package controller

import (
	"qa_forum_backend/internal/service"
	"qa_forum_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type ReviewController struct {
	ReviewService *service.ReviewService
}

func NewReviewController(reviewService *service.ReviewService) *ReviewController {
	return &ReviewController{ReviewService: reviewService}
}

type UpdateReviewRequest struct {
	Content string `json:"content" binding:"required"`
}

type TrustRequest struct {
	ReviewerID uint `json:"reviewerId" binding:"required"`
	Weight     int  `json:"weight" binding:"required"`
}

type TrustWeightRequest struct {
	Weight int `json:"weight" binding:"required"`
}

// ListReviews godoc
// @Summary 评审列表
// @Description questionId 与 answerId 必须恰好给出一个
// @Tags 评审
// @Produce json
// @Param questionId query int false "问题ID"
// @Param answerId query int false "回答ID"
// @Success 200 {object} util.Response{data=[]service.ReviewLightweightDTO}
// @Failure 400 {object} util.Response
// @Router /api/reviews [get]
func (c *ReviewController) ListReviews(ctx *gin.Context) {
	target, err := service.TargetFromIDs(util.OptionalQueryID(ctx, "questionId"), util.OptionalQueryID(ctx, "answerId"))
	if err != nil {
		util.RespondError(ctx, err)
		return
	}

	reviews, err := c.ReviewService.GetAllReviews(ctx.Request.Context(), target)
	if err != nil {
		util.RespondError(ctx, err)
		return
	}
	util.Success(ctx, reviews)
}

// ListTrustedReviews godoc
// @Summary 我信任的评审者给出的评审
// @Tags 评审
// @Security ApiKeyAuth
// @Produce json
// @Param questionId query int false "问题ID"
// @Param answerId query int false "回答ID"
// @Success 200 {object} util.Response{data=[]service.TrustedReviewView}
// @Router /api/reviews/trusted [get]
func (c *ReviewController) ListTrustedReviews(ctx *gin.Context) {
	user, ok := currentUser(ctx)
	if !ok {
		return
	}
	target, err := service.TargetFromIDs(util.OptionalQueryID(ctx, "questionId"), util.OptionalQueryID(ctx, "answerId"))
	if err != nil {
		util.RespondError(ctx, err)
		return
	}

	reviews, err := c.ReviewService.GetAllTrustedReviews(ctx.Request.Context(), target, user.UserID)
	if err != nil {
		util.RespondError(ctx, err)
		return
	}
	util.Success(ctx, reviews)
}

// CreateReview godoc
// @Summary 发表评审
// @Tags 评审
// @Security ApiKeyAuth
// @Accept json
// @Produce json
// @Param body body service.ReviewInput true "评审"
// @Success 201 {object} util.Response{data=model.Review}
// @Failure 403 {object} util.Response "需要 reviewer 角色"
// @Router /api/reviews [post]
func (c *ReviewController) CreateReview(ctx *gin.Context) {
	user, ok := currentUser(ctx)
	if !ok {
		return
	}
	var in service.ReviewInput
	if err := ctx.ShouldBindJSON(&in); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	review, err := c.ReviewService.AddReview(ctx.Request.Context(), user.UserID, in)
	if err != nil {
		util.RespondError(ctx, err)
		return
	}
	util.Created(ctx, review)
}

// GetReview godoc
// @Summary 评审详情
// @Tags 评审
// @Produce json
// @Param id path int true "评审ID"
// @Success 200 {object} util.Response{data=model.Review}
// @Router /api/reviews/{id} [get]
func (c *ReviewController) GetReview(ctx *gin.Context) {
	id, ok := util.ParamID(ctx, "id")
	if !ok {
		return
	}

	review, err := c.ReviewService.GetReview(ctx.Request.Context(), id)
	if err != nil {
		util.RespondError(ctx, err)
		return
	}
	util.Success(ctx, review)
}

// UpdateReview godoc
// @Summary 修改评审内容
// @Tags 评审
// @Security ApiKeyAuth
// @Accept json
// @Produce json
// @Param id path int true "评审ID"
// @Param body body UpdateReviewRequest true "内容"
// @Success 200 {object} util.Response{data=model.Review}
// @Router /api/reviews/{id} [put]
func (c *ReviewController) UpdateReview(ctx *gin.Context) {
	user, ok := currentUser(ctx)
	if !ok {
		return
	}
	id, ok := util.ParamID(ctx, "id")
	if !ok {
		return
	}
	var req UpdateReviewRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	existing, err := c.ReviewService.GetReview(ctx.Request.Context(), id)
	if err != nil {
		util.RespondError(ctx, err)
		return
	}
	if !requireOwnerOrModerator(ctx, user, existing.AuthorID) {
		return
	}

	review, err := c.ReviewService.UpdateReviewContent(ctx.Request.Context(), id, req.Content)
	if err != nil {
		util.RespondError(ctx, err)
		return
	}
	util.Success(ctx, review)
}

// DeleteReview godoc
// @Summary 删除评审
// @Tags 评审
// @Security ApiKeyAuth
// @Produce json
// @Param id path int true "评审ID"
// @Success 200 {object} util.Response
// @Router /api/reviews/{id} [delete]
func (c *ReviewController) DeleteReview(ctx *gin.Context) {
	user, ok := currentUser(ctx)
	if !ok {
		return
	}
	id, ok := util.ParamID(ctx, "id")
	if !ok {
		return
	}

	existing, err := c.ReviewService.GetReview(ctx.Request.Context(), id)
	if err != nil {
		util.RespondError(ctx, err)
		return
	}
	if !requireOwnerOrModerator(ctx, user, existing.AuthorID) {
		return
	}

	if err := c.ReviewService.DeleteReview(ctx.Request.Context(), id); err != nil {
		util.RespondError(ctx, err)
		return
	}
	util.Success(ctx, nil)
}

// MyReviews godoc
// @Summary 我发表的评审
// @Description filter: all/questions/answers，sort: recent/oldest/az/za
// @Tags 评审
// @Security ApiKeyAuth
// @Produce json
// @Param q query string false "关键词"
// @Param filter query string false "评审对象类型"
// @Param sort query string false "排序"
// @Success 200 {object} util.Response{data=[]service.ReviewLightweightDTO}
// @Router /api/me/reviews [get]
func (c *ReviewController) MyReviews(ctx *gin.Context) {
	user, ok := currentUser(ctx)
	if !ok {
		return
	}
	var in service.ListReviewsInput
	if err := ctx.ShouldBindQuery(&in); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	reviews, err := c.ReviewService.ListUserReviews(ctx.Request.Context(), user.UserID, in)
	if err != nil {
		util.RespondError(ctx, err)
		return
	}
	util.Success(ctx, reviews)
}

// ListTrustedReviewers godoc
// @Summary 我信任的评审者
// @Tags 可信评审
// @Security ApiKeyAuth
// @Produce json
// @Success 200 {object} util.Response{data=[]model.TrustedReviewer}
// @Router /api/trusted-reviewers [get]
func (c *ReviewController) ListTrustedReviewers(ctx *gin.Context) {
	user, ok := currentUser(ctx)
	if !ok {
		return
	}

	reviewers, err := c.ReviewService.ListTrustedReviewers(ctx.Request.Context(), user.UserID)
	if err != nil {
		util.RespondError(ctx, err)
		return
	}
	util.Success(ctx, reviewers)
}

// AddTrustedReviewer godoc
// @Summary 添加可信评审者
// @Description 权重范围 1-10，评审者必须持有 reviewer 角色
// @Tags 可信评审
// @Security ApiKeyAuth
// @Accept json
// @Produce json
// @Param body body TrustRequest true "评审者与权重"
// @Success 201 {object} util.Response
// @Failure 409 {object} util.Response "已信任"
// @Router /api/trusted-reviewers [post]
func (c *ReviewController) AddTrustedReviewer(ctx *gin.Context) {
	user, ok := currentUser(ctx)
	if !ok {
		return
	}
	var req TrustRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	if err := c.ReviewService.AddTrustedReviewer(ctx.Request.Context(), user.UserID, req.ReviewerID, req.Weight); err != nil {
		util.RespondError(ctx, err)
		return
	}
	util.Created(ctx, nil)
}

// CheckTrustedReviewer godoc
// @Summary 是否信任某评审者
// @Tags 可信评审
// @Security ApiKeyAuth
// @Produce json
// @Param reviewerId path int true "评审者ID"
// @Success 200 {object} util.Response{data=object}
// @Router /api/trusted-reviewers/{reviewerId} [get]
func (c *ReviewController) CheckTrustedReviewer(ctx *gin.Context) {
	user, ok := currentUser(ctx)
	if !ok {
		return
	}
	reviewerID, ok := util.ParamID(ctx, "reviewerId")
	if !ok {
		return
	}

	trusted, err := c.ReviewService.StudentTrustsReviewer(ctx.Request.Context(), user.UserID, reviewerID)
	if err != nil {
		util.RespondError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"trusted": trusted})
}

// UpdateTrustedReviewer godoc
// @Summary 修改信任权重
// @Tags 可信评审
// @Security ApiKeyAuth
// @Accept json
// @Produce json
// @Param reviewerId path int true "评审者ID"
// @Param body body TrustWeightRequest true "权重"
// @Success 200 {object} util.Response
// @Router /api/trusted-reviewers/{reviewerId} [put]
func (c *ReviewController) UpdateTrustedReviewer(ctx *gin.Context) {
	user, ok := currentUser(ctx)
	if !ok {
		return
	}
	reviewerID, ok := util.ParamID(ctx, "reviewerId")
	if !ok {
		return
	}
	var req TrustWeightRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	if err := c.ReviewService.UpdateTrustedReviewerWeight(ctx.Request.Context(), user.UserID, reviewerID, req.Weight); err != nil {
		util.RespondError(ctx, err)
		return
	}
	util.Success(ctx, nil)
}

// RemoveTrustedReviewer godoc
// @Summary 取消信任
// @Tags 可信评审
// @Security ApiKeyAuth
// @Produce json
// @Param reviewerId path int true "评审者ID"
// @Success 200 {object} util.Response
// @Router /api/trusted-reviewers/{reviewerId} [delete]
func (c *ReviewController) RemoveTrustedReviewer(ctx *gin.Context) {
	user, ok := currentUser(ctx)
	if !ok {
		return
	}
	reviewerID, ok := util.ParamID(ctx, "reviewerId")
	if !ok {
		return
	}

	if err := c.ReviewService.DeleteTrustedReviewer(ctx.Request.Context(), user.UserID, reviewerID); err != nil {
		util.RespondError(ctx, err)
		return
	}
	util.Success(ctx, nil)
}
