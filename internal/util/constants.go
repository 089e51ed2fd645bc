package util

const ContextUserKey = "user"

// 文本字段长度上限（按字符计）
const (
	MaxTitleLength   = 255
	InvitationLength = 4
)

const (
	MinTrustWeight = 1
	MaxTrustWeight = 10
)
