package repository

import (
	"context"
	"qa_forum_backend/internal/model"

	"gorm.io/gorm"
)

// ThreadKey 私信会话键
type ThreadKey struct {
	AuthorID    uint             `json:"authorId"`
	CommenterID uint             `json:"commenterId"`
	ParentType  model.ParentType `json:"parentType"`
	ParentID    uint             `json:"parentId"`
}

type MessageRepository struct {
	DB *gorm.DB
}

func NewMessageRepository(db *gorm.DB) *MessageRepository {
	return &MessageRepository{DB: db}
}

func (r *MessageRepository) WithTx(tx *gorm.DB) *MessageRepository {
	return &MessageRepository{DB: tx}
}

func threadScope(key ThreadKey) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("author_id = ? AND commenter_id = ? AND parent_type = ? AND parent_id = ?",
			key.AuthorID, key.CommenterID, key.ParentType, key.ParentID)
	}
}

func (r *MessageRepository) Create(ctx context.Context, msg *model.PrivateMessage) error {
	return storageErr(r.DB.WithContext(ctx).Create(msg).Error)
}

// ListThread 按插入顺序返回会话中的消息
func (r *MessageRepository) ListThread(ctx context.Context, key ThreadKey) ([]model.PrivateMessage, error) {
	var messages []model.PrivateMessage
	err := r.DB.WithContext(ctx).
		Scopes(threadScope(key)).
		Order("id ASC").
		Find(&messages).Error
	return messages, storageErr(err)
}

// ListCommenters 返回就该对象联系过作者的用户，按首次联系顺序
func (r *MessageRepository) ListCommenters(ctx context.Context, authorID uint, parentType model.ParentType, parentID uint) ([]uint, error) {
	var ids []uint
	err := r.DB.WithContext(ctx).Model(&model.PrivateMessage{}).
		Where("author_id = ? AND parent_type = ? AND parent_id = ?", authorID, parentType, parentID).
		Group("commenter_id").
		Order("MIN(id) ASC").
		Pluck("commenter_id", &ids).Error
	return ids, storageErr(err)
}

// MarkRead 将对方发送的消息标记为已读
func (r *MessageRepository) MarkRead(ctx context.Context, key ThreadKey, readerIsAuthor bool) error {
	err := r.DB.WithContext(ctx).Model(&model.PrivateMessage{}).
		Scopes(threadScope(key)).
		Where("is_author = ? AND is_read = ?", !readerIsAuthor, false).
		Update("is_read", true).Error
	return storageErr(err)
}

// HasUnread 用户作为任一方是否还有未读消息
func (r *MessageRepository) HasUnread(ctx context.Context, userID uint) (bool, error) {
	var count int64
	err := r.DB.WithContext(ctx).Model(&model.PrivateMessage{}).
		Where("is_read = ?", false).
		Where("(author_id = ? AND is_author = ?) OR (commenter_id = ? AND is_author = ?)", userID, false, userID, true).
		Count(&count).Error
	return count > 0, storageErr(err)
}

// ListThreadsForUser 列出用户参与的全部会话，按最近消息排序
func (r *MessageRepository) ListThreadsForUser(ctx context.Context, userID uint) ([]ThreadKey, error) {
	var keys []ThreadKey
	err := r.DB.WithContext(ctx).Model(&model.PrivateMessage{}).
		Select("author_id, commenter_id, parent_type, parent_id").
		Where("author_id = ? OR commenter_id = ?", userID, userID).
		Group("author_id, commenter_id, parent_type, parent_id").
		Order("MAX(id) DESC").
		Scan(&keys).Error
	return keys, storageErr(err)
}
