package model

type ParentType string

const (
	ParentQuestion ParentType = "question"
	ParentAnswer   ParentType = "answer"
	ParentReview   ParentType = "review"
)

func (p ParentType) Valid() bool {
	switch p {
	case ParentQuestion, ParentAnswer, ParentReview:
		return true
	}
	return false
}

// PrivateMessage 会话由 (AuthorID, CommenterID, ParentType, ParentID) 唯一确定，
// AuthorID 始终是被评论对象的所有者
type PrivateMessage struct {
	BaseModel
	AuthorID    uint       `gorm:"index:idx_messages_thread,priority:1;not null" json:"authorId"`
	CommenterID uint       `gorm:"index:idx_messages_thread,priority:2;index;not null" json:"commenterId"`
	ParentType  ParentType `gorm:"index:idx_messages_thread,priority:3;size:20;not null" json:"parentType"`
	ParentID    uint       `gorm:"index:idx_messages_thread,priority:4;not null" json:"parentId"`
	IsAuthor    bool       `gorm:"not null" json:"isAuthor"`
	Content     string     `gorm:"type:text;not null" json:"content"`
	IsRead      bool       `gorm:"not null;default:false" json:"isRead"`
}

func (PrivateMessage) TableName() string {
	return "private_messages"
}
