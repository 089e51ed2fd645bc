package repository

import (
	"context"
	"qa_forum_backend/internal/model"
	"qa_forum_backend/internal/util"

	"gorm.io/gorm"
)

type TrustRepository struct {
	DB *gorm.DB
}

func NewTrustRepository(db *gorm.DB) *TrustRepository {
	return &TrustRepository{DB: db}
}

func (r *TrustRepository) WithTx(tx *gorm.DB) *TrustRepository {
	return &TrustRepository{DB: tx}
}

func (r *TrustRepository) Create(ctx context.Context, trust *model.TrustedReviewer) error {
	err := r.DB.WithContext(ctx).Create(trust).Error
	return duplicateOr(err, util.ErrDuplicateTrust)
}

func (r *TrustRepository) Find(ctx context.Context, studentID, reviewerID uint) (*model.TrustedReviewer, error) {
	var trust model.TrustedReviewer
	err := r.DB.WithContext(ctx).
		Where("student_id = ? AND reviewer_id = ?", studentID, reviewerID).
		Take(&trust).Error
	if err != nil {
		return nil, notFoundOr(err, util.ErrTrustNotFound)
	}
	return &trust, nil
}

func (r *TrustRepository) UpdateWeight(ctx context.Context, studentID, reviewerID uint, weight int) error {
	return Transaction(ctx, r.DB, func(tx *gorm.DB) error {
		if _, err := r.WithTx(tx).Find(ctx, studentID, reviewerID); err != nil {
			return err
		}
		return tx.Model(&model.TrustedReviewer{}).
			Where("student_id = ? AND reviewer_id = ?", studentID, reviewerID).
			Update("weight", weight).Error
	})
}

// Delete 幂等，记录不存在时不报错
func (r *TrustRepository) Delete(ctx context.Context, studentID, reviewerID uint) error {
	err := r.DB.WithContext(ctx).
		Where("student_id = ? AND reviewer_id = ?", studentID, reviewerID).
		Delete(&model.TrustedReviewer{}).Error
	return storageErr(err)
}

func (r *TrustRepository) ListByStudent(ctx context.Context, studentID uint) ([]model.TrustedReviewer, error) {
	var trusted []model.TrustedReviewer
	err := r.DB.WithContext(ctx).
		Where("student_id = ?", studentID).
		Order("weight DESC").
		Order("reviewer_id ASC").
		Find(&trusted).Error
	return trusted, storageErr(err)
}

func (r *TrustRepository) Exists(ctx context.Context, studentID, reviewerID uint) (bool, error) {
	var count int64
	err := r.DB.WithContext(ctx).Model(&model.TrustedReviewer{}).
		Where("student_id = ? AND reviewer_id = ?", studentID, reviewerID).
		Count(&count).Error
	return count > 0, storageErr(err)
}
