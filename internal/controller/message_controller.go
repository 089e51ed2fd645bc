package controller

import (
	"qa_forum_backend/internal/model"
	"qa_forum_backend/internal/repository"
	"qa_forum_backend/internal/service"
	"qa_forum_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type MessageController struct {
	MessageService *service.MessageService
}

func NewMessageController(messageService *service.MessageService) *MessageController {
	return &MessageController{MessageService: messageService}
}

// ThreadRequest 会话键，作为查询参数或请求体
type ThreadRequest struct {
	AuthorID    uint   `json:"authorId" form:"authorId" binding:"required"`
	CommenterID uint   `json:"commenterId" form:"commenterId" binding:"required"`
	ParentType  string `json:"parentType" form:"parentType" binding:"required"`
	ParentID    uint   `json:"parentId" form:"parentId" binding:"required"`
}

func (r ThreadRequest) key() repository.ThreadKey {
	return repository.ThreadKey{
		AuthorID:    r.AuthorID,
		CommenterID: r.CommenterID,
		ParentType:  model.ParentType(r.ParentType),
		ParentID:    r.ParentID,
	}
}

type SendMessageRequest struct {
	ThreadRequest
	Content string `json:"content" binding:"required"`
}

// participant 调用者必须是会话双方之一，返回其是否为作者
func participant(ctx *gin.Context, user *util.Claims, key repository.ThreadKey) (bool, bool) {
	switch user.UserID {
	case key.AuthorID:
		return true, true
	case key.CommenterID:
		return false, true
	}
	util.Forbidden(ctx)
	return false, false
}

// SendMessage godoc
// @Summary 发送私信
// @Description 调用者为作者时消息发给评论者，反之亦然
// @Tags 私信
// @Security ApiKeyAuth
// @Accept json
// @Produce json
// @Param body body SendMessageRequest true "会话与内容"
// @Success 201 {object} util.Response{data=model.PrivateMessage}
// @Failure 403 {object} util.Response
// @Router /api/messages [post]
func (c *MessageController) SendMessage(ctx *gin.Context) {
	user, ok := currentUser(ctx)
	if !ok {
		return
	}
	var req SendMessageRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	key := req.key()
	fromAuthor, ok := participant(ctx, user, key)
	if !ok {
		return
	}

	msg, err := c.MessageService.AddPrivateMessage(ctx.Request.Context(), service.MessageInput{
		Thread:     key,
		FromAuthor: fromAuthor,
		Content:    req.Content,
	})
	if err != nil {
		util.RespondError(ctx, err)
		return
	}
	util.Created(ctx, msg)
}

// GetThread godoc
// @Summary 会话消息
// @Tags 私信
// @Security ApiKeyAuth
// @Produce json
// @Param authorId query int true "作者ID"
// @Param commenterId query int true "评论者ID"
// @Param parentType query string true "question/answer/review"
// @Param parentId query int true "对象ID"
// @Success 200 {object} util.Response{data=[]service.PrivateMessageLightweightDTO}
// @Router /api/messages/thread [get]
func (c *MessageController) GetThread(ctx *gin.Context) {
	user, ok := currentUser(ctx)
	if !ok {
		return
	}
	var req ThreadRequest
	if err := ctx.ShouldBindQuery(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	key := req.key()
	if _, ok := participant(ctx, user, key); !ok {
		return
	}

	messages, err := c.MessageService.GetAllPrivateMessages(ctx.Request.Context(), key)
	if err != nil {
		util.RespondError(ctx, err)
		return
	}
	util.Success(ctx, messages)
}

// MarkRead godoc
// @Summary 标记会话已读
// @Tags 私信
// @Security ApiKeyAuth
// @Accept json
// @Produce json
// @Param body body ThreadRequest true "会话"
// @Success 200 {object} util.Response
// @Router /api/messages/thread/read [post]
func (c *MessageController) MarkRead(ctx *gin.Context) {
	user, ok := currentUser(ctx)
	if !ok {
		return
	}
	var req ThreadRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	key := req.key()
	isAuthor, ok := participant(ctx, user, key)
	if !ok {
		return
	}

	if err := c.MessageService.MarkThreadRead(ctx.Request.Context(), key, isAuthor); err != nil {
		util.RespondError(ctx, err)
		return
	}
	util.Success(ctx, nil)
}

// ListCommenters godoc
// @Summary 就我的内容发来私信的用户
// @Tags 私信
// @Security ApiKeyAuth
// @Produce json
// @Param parentType query string true "question/answer/review"
// @Param parentId query int true "对象ID"
// @Success 200 {object} util.Response{data=[]int}
// @Router /api/messages/commenters [get]
func (c *MessageController) ListCommenters(ctx *gin.Context) {
	user, ok := currentUser(ctx)
	if !ok {
		return
	}
	parentID := util.MustParseUint(ctx.Query("parentId"))
	if parentID == 0 {
		util.BadRequest(ctx, "invalid parentId")
		return
	}

	ids, err := c.MessageService.GetAllMessages(ctx.Request.Context(), user.UserID, model.ParentType(ctx.Query("parentType")), parentID)
	if err != nil {
		util.RespondError(ctx, err)
		return
	}
	util.Success(ctx, ids)
}

// ListThreads godoc
// @Summary 我参与的会话
// @Tags 私信
// @Security ApiKeyAuth
// @Produce json
// @Success 200 {object} util.Response{data=[]repository.ThreadKey}
// @Router /api/messages/threads [get]
func (c *MessageController) ListThreads(ctx *gin.Context) {
	user, ok := currentUser(ctx)
	if !ok {
		return
	}

	threads, err := c.MessageService.ListThreads(ctx.Request.Context(), user.UserID)
	if err != nil {
		util.RespondError(ctx, err)
		return
	}
	util.Success(ctx, threads)
}
