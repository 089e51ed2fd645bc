package repository

import (
	"context"
	"qa_forum_backend/internal/model"
	"qa_forum_backend/internal/util"

	"gorm.io/gorm"
)

type InvitationRepository struct {
	DB *gorm.DB
}

func NewInvitationRepository(db *gorm.DB) *InvitationRepository {
	return &InvitationRepository{DB: db}
}

func (r *InvitationRepository) WithTx(tx *gorm.DB) *InvitationRepository {
	return &InvitationRepository{DB: tx}
}

func (r *InvitationRepository) Create(ctx context.Context, code *model.InvitationCode) error {
	return storageErr(r.DB.WithContext(ctx).Create(code).Error)
}

func (r *InvitationRepository) FindByCode(ctx context.Context, code string) (*model.InvitationCode, error) {
	var inv model.InvitationCode
	if err := r.DB.WithContext(ctx).Where("code = ?", code).Take(&inv).Error; err != nil {
		return nil, notFoundOr(err, util.ErrInvitationNotFound)
	}
	return &inv, nil
}

// Redeem 条件更新保证邀请码只能被使用一次
func (r *InvitationRepository) Redeem(ctx context.Context, code string, userID uint) error {
	result := r.DB.WithContext(ctx).Model(&model.InvitationCode{}).
		Where("code = ? AND is_used = ?", code, false).
		Updates(map[string]interface{}{"is_used": true, "used_by": userID})
	if result.Error != nil {
		return storageErr(result.Error)
	}
	if result.RowsAffected > 0 {
		return nil
	}

	if _, err := r.FindByCode(ctx, code); err != nil {
		return err
	}
	return util.ErrInvitationUsed
}

func (r *InvitationRepository) List(ctx context.Context, unusedOnly bool) ([]model.InvitationCode, error) {
	var codes []model.InvitationCode
	query := r.DB.WithContext(ctx).Order("created_at DESC")
	if unusedOnly {
		query = query.Where("is_used = ?", false)
	}
	err := query.Find(&codes).Error
	return codes, storageErr(err)
}
