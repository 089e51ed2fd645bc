package repository

import (
	"context"
	"qa_forum_backend/internal/model"
	"qa_forum_backend/internal/util"

	"gorm.io/gorm"
)

type RoleRequestRepository struct {
	DB *gorm.DB
}

func NewRoleRequestRepository(db *gorm.DB) *RoleRequestRepository {
	return &RoleRequestRepository{DB: db}
}

func (r *RoleRequestRepository) WithTx(tx *gorm.DB) *RoleRequestRepository {
	return &RoleRequestRepository{DB: tx}
}

// Create 同一用户同一角色只允许一条待审批请求
func (r *RoleRequestRepository) Create(ctx context.Context, req *model.RoleRequest) error {
	err := r.DB.WithContext(ctx).Create(req).Error
	return duplicateOr(err, util.ErrDuplicateRoleRequest)
}

func (r *RoleRequestRepository) FindByID(ctx context.Context, id uint) (*model.RoleRequest, error) {
	var req model.RoleRequest
	if err := r.DB.WithContext(ctx).First(&req, id).Error; err != nil {
		return nil, notFoundOr(err, util.ErrRoleRequestNotFound)
	}
	return &req, nil
}

func (r *RoleRequestRepository) Exists(ctx context.Context, userID uint, role model.Role) (bool, error) {
	var count int64
	err := r.DB.WithContext(ctx).Model(&model.RoleRequest{}).
		Where("user_id = ? AND role = ?", userID, role).
		Count(&count).Error
	return count > 0, storageErr(err)
}

func (r *RoleRequestRepository) ListByUser(ctx context.Context, userID uint) ([]model.RoleRequest, error) {
	var reqs []model.RoleRequest
	err := r.DB.WithContext(ctx).Where("user_id = ?", userID).Order("id ASC").Find(&reqs).Error
	return reqs, storageErr(err)
}

func (r *RoleRequestRepository) List(ctx context.Context, q RoleRequestQuery) ([]model.RoleRequest, error) {
	var reqs []model.RoleRequest

	query := r.DB.WithContext(ctx).Model(&model.RoleRequest{})
	if len(q.Roles) > 0 {
		query = query.Where("role IN ?", q.Roles)
	}
	if q.Sort == SortOldest {
		query = query.Order("id ASC")
	} else {
		query = query.Order("id DESC")
	}

	err := query.Find(&reqs).Error
	return reqs, storageErr(err)
}

// Delete 返回是否确有记录被删除
func (r *RoleRequestRepository) Delete(ctx context.Context, id uint) (bool, error) {
	result := r.DB.WithContext(ctx).Delete(&model.RoleRequest{}, id)
	return result.RowsAffected > 0, storageErr(result.Error)
}
