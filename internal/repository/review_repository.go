package repository

import (
	"context"
	"qa_forum_backend/internal/model"
	"qa_forum_backend/internal/util"

	"gorm.io/gorm"
)

type ReviewRepository struct {
	DB *gorm.DB
}

func NewReviewRepository(db *gorm.DB) *ReviewRepository {
	return &ReviewRepository{DB: db}
}

func (r *ReviewRepository) WithTx(tx *gorm.DB) *ReviewRepository {
	return &ReviewRepository{DB: tx}
}

// TrustedReview 带有信任权重的评审
type TrustedReview struct {
	model.Review
	Weight int
}

func (r *ReviewRepository) Create(ctx context.Context, review *model.Review) error {
	return storageErr(r.DB.WithContext(ctx).Create(review).Error)
}

func (r *ReviewRepository) FindByID(ctx context.Context, id uint) (*model.Review, error) {
	var review model.Review
	if err := r.DB.WithContext(ctx).First(&review, id).Error; err != nil {
		return nil, notFoundOr(err, util.ErrReviewNotFound)
	}
	return &review, nil
}

func (r *ReviewRepository) UpdateContent(ctx context.Context, id uint, content string) error {
	err := r.DB.WithContext(ctx).Model(&model.Review{}).
		Where("id = ?", id).
		Update("content", content).Error
	return storageErr(err)
}

// Delete 评审没有依赖数据，直接删除
func (r *ReviewRepository) Delete(ctx context.Context, id uint) error {
	return storageErr(r.DB.WithContext(ctx).Delete(&model.Review{}, id).Error)
}

func (r *ReviewRepository) ListByTarget(ctx context.Context, target model.ReviewTarget) ([]model.Review, error) {
	var reviews []model.Review
	err := r.DB.WithContext(ctx).
		Where(target.Column()+" = ?", target.ID()).
		Order("id ASC").
		Find(&reviews).Error
	return reviews, storageErr(err)
}

// ListTrusted 仅返回学生信任的评审者所写的评审，按权重降序
func (r *ReviewRepository) ListTrusted(ctx context.Context, target model.ReviewTarget, studentID uint) ([]TrustedReview, error) {
	var reviews []TrustedReview
	err := r.DB.WithContext(ctx).Model(&model.Review{}).
		Select("reviews.*, trusted_reviewers.weight AS weight").
		Joins("JOIN trusted_reviewers ON trusted_reviewers.reviewer_id = reviews.author_id AND trusted_reviewers.student_id = ?", studentID).
		Where("reviews."+target.Column()+" = ?", target.ID()).
		Order("trusted_reviewers.weight DESC").
		Order("reviews.id ASC").
		Scan(&reviews).Error
	return reviews, storageErr(err)
}

func (r *ReviewRepository) ListByAuthor(ctx context.Context, q ReviewQuery) ([]model.Review, error) {
	var reviews []model.Review

	query := r.DB.WithContext(ctx).Model(&model.Review{}).Where("author_id = ?", q.AuthorID)
	query = matchAny(query, "content", q.Keywords)
	query = applyReviewFilter(query, q.Filter)
	query = orderBy(query, q.Sort, "id", "content")

	err := query.Find(&reviews).Error
	return reviews, storageErr(err)
}
