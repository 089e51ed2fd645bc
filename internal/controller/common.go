package controller

import (
	"qa_forum_backend/internal/model"
	"qa_forum_backend/internal/util"

	"github.com/gin-gonic/gin"
)

// moderatorRoles 可以编辑或删除他人内容的角色
var moderatorRoles = []string{
	string(model.RoleAdmin),
	string(model.RoleStaff),
	string(model.RoleInstructor),
}

// currentUser 取出已认证用户，未认证时写入 401
func currentUser(ctx *gin.Context) (*util.Claims, bool) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return nil, false
	}
	return user, true
}

func isModerator(user *util.Claims) bool {
	return user != nil && user.HasRole(moderatorRoles...)
}

// canModify 内容作者本人或版主
func canModify(user *util.Claims, ownerID uint) bool {
	return user != nil && (user.UserID == ownerID || isModerator(user))
}

// requireOwnerOrModerator 无权限时写入 403
func requireOwnerOrModerator(ctx *gin.Context, user *util.Claims, ownerID uint) bool {
	if !canModify(user, ownerID) {
		util.Forbidden(ctx)
		return false
	}
	return true
}
