package repository

import (
	"context"
	"qa_forum_backend/internal/model"
	"qa_forum_backend/internal/util"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type UserRepository struct {
	DB *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{DB: db}
}

func (r *UserRepository) WithTx(tx *gorm.DB) *UserRepository {
	return &UserRepository{DB: tx}
}

func preloadRoles(db *gorm.DB) *gorm.DB {
	return db.Order("user_roles.id ASC")
}

// Create 插入用户及其角色，用户名唯一约束冲突即为重复注册
func (r *UserRepository) Create(ctx context.Context, user *model.User) error {
	err := r.DB.WithContext(ctx).Create(user).Error
	return duplicateOr(err, util.ErrDuplicateUser)
}

func (r *UserRepository) FindByID(ctx context.Context, id uint) (*model.User, error) {
	var user model.User
	err := r.DB.WithContext(ctx).Preload("Roles", preloadRoles).First(&user, id).Error
	if err != nil {
		return nil, notFoundOr(err, util.ErrUserNotFound)
	}
	return &user, nil
}

func (r *UserRepository) FindByUserName(ctx context.Context, userName string) (*model.User, error) {
	var user model.User
	err := r.DB.WithContext(ctx).Preload("Roles", preloadRoles).
		Where("user_name = ?", userName).First(&user).Error
	if err != nil {
		return nil, notFoundOr(err, util.ErrUserNotFound)
	}
	return &user, nil
}

func (r *UserRepository) List(ctx context.Context) ([]model.User, error) {
	var users []model.User
	err := r.DB.WithContext(ctx).Preload("Roles", preloadRoles).Order("id ASC").Find(&users).Error
	return users, storageErr(err)
}

func (r *UserRepository) Exists(ctx context.Context, id uint) (bool, error) {
	var count int64
	err := r.DB.WithContext(ctx).Model(&model.User{}).Where("id = ?", id).Count(&count).Error
	return count > 0, storageErr(err)
}

func (r *UserRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.DB.WithContext(ctx).Model(&model.User{}).Count(&count).Error
	return count, storageErr(err)
}

// AddRole 幂等：已持有的角色不会重复插入
func (r *UserRepository) AddRole(ctx context.Context, userID uint, role model.Role) error {
	exists, err := r.Exists(ctx, userID)
	if err != nil {
		return err
	}
	if !exists {
		return util.ErrUserNotFound
	}

	err = r.DB.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&model.UserRole{UserID: userID, Role: role}).Error
	return storageErr(err)
}

func (r *UserRepository) HasRole(ctx context.Context, userID uint, role model.Role) (bool, error) {
	var count int64
	err := r.DB.WithContext(ctx).Model(&model.UserRole{}).
		Where("user_id = ? AND role = ?", userID, role).
		Count(&count).Error
	return count > 0, storageErr(err)
}

// Roles 按授予顺序返回角色名
func (r *UserRepository) Roles(ctx context.Context, userID uint) ([]string, error) {
	var roles []string
	err := r.DB.WithContext(ctx).Model(&model.UserRole{}).
		Where("user_id = ?", userID).
		Order("id ASC").
		Pluck("role", &roles).Error
	return roles, storageErr(err)
}

func (r *UserRepository) SetUnreadMessages(ctx context.Context, userID uint, unread bool) error {
	err := r.DB.WithContext(ctx).Model(&model.User{}).
		Where("id = ?", userID).
		Update("has_unread_msgs", unread).Error
	return storageErr(err)
}
