package model

import (
	"sort"
	"time"
)

type Role string

const (
	RoleAdmin      Role = "admin"
	RoleStudent    Role = "student"
	RoleInstructor Role = "instructor"
	RoleStaff      Role = "staff"
	RoleReviewer   Role = "reviewer"
)

var AllRoles = []Role{RoleAdmin, RoleStudent, RoleInstructor, RoleStaff, RoleReviewer}

func ParseRole(s string) (Role, bool) {
	for _, r := range AllRoles {
		if string(r) == s {
			return r, true
		}
	}
	return "", false
}

// swagger:model User
type User struct {
	BaseModel
	UserName      string     `gorm:"size:100;uniqueIndex;not null" json:"userName"`
	Password      string     `gorm:"size:100;not null" json:"-"`
	FullName      string     `gorm:"size:100" json:"fullName"`
	Email         string     `gorm:"size:255" json:"email"`
	HasUnreadMsgs bool       `gorm:"not null;default:false" json:"hasUnreadMsgs"`
	Roles         []UserRole `gorm:"foreignKey:UserID" json:"-"`
}

func (User) TableName() string {
	return "users"
}

// RoleNames 按授予顺序返回角色
func (u *User) RoleNames() []string {
	roles := make([]UserRole, len(u.Roles))
	copy(roles, u.Roles)
	sort.SliceStable(roles, func(i, j int) bool { return roles[i].ID < roles[j].ID })

	names := make([]string, 0, len(roles))
	for _, r := range roles {
		names = append(names, string(r.Role))
	}
	return names
}

// UserRole 用户角色，一个用户可持有多个角色
type UserRole struct {
	ID        uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID    uint      `gorm:"uniqueIndex:idx_user_roles_user_role;not null" json:"userId"`
	Role      Role      `gorm:"uniqueIndex:idx_user_roles_user_role;size:20;not null" json:"role"`
	CreatedAt time.Time `json:"createdAt"`
}

func (UserRole) TableName() string {
	return "user_roles"
}

// RoleRequest 行存在即表示待审批
type RoleRequest struct {
	BaseModel
	UserID uint `gorm:"uniqueIndex:idx_role_requests_user_role;not null" json:"userId"`
	Role   Role `gorm:"uniqueIndex:idx_role_requests_user_role;size:20;not null" json:"role"`
}

func (RoleRequest) TableName() string {
	return "role_requests"
}

// InvitationCode 一次性注册邀请码
type InvitationCode struct {
	Code      string    `gorm:"primaryKey;size:4" json:"code"`
	IsUsed    bool      `gorm:"not null;default:false" json:"isUsed"`
	Roles     string    `gorm:"size:100;not null" json:"roles"` // 逗号分隔
	CreatedBy uint      `gorm:"index" json:"createdBy"`
	UsedBy    *uint     `json:"usedBy"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (InvitationCode) TableName() string {
	return "invitation_codes"
}
