package model

import (
	"time"
)

// swagger:model
type BaseModel struct {
	ID        uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// All 返回需要迁移的全部模型，MySQL 与测试用 SQLite 共用
func All() []interface{} {
	return []interface{}{
		&User{},
		&UserRole{},
		&Question{},
		&Answer{},
		&Vote{},
		&Review{},
		&TrustedReviewer{},
		&PrivateMessage{},
		&RoleRequest{},
		&InvitationCode{},
	}
}
