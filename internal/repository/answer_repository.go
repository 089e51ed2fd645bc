package repository

import (
	"context"
	"qa_forum_backend/internal/model"
	"qa_forum_backend/internal/util"

	"gorm.io/gorm"
)

type AnswerRepository struct {
	DB *gorm.DB
}

func NewAnswerRepository(db *gorm.DB) *AnswerRepository {
	return &AnswerRepository{DB: db}
}

func (r *AnswerRepository) WithTx(tx *gorm.DB) *AnswerRepository {
	return &AnswerRepository{DB: tx}
}

func (r *AnswerRepository) Create(ctx context.Context, answer *model.Answer) error {
	return storageErr(r.DB.WithContext(ctx).Create(answer).Error)
}

func (r *AnswerRepository) FindByID(ctx context.Context, id uint) (*model.Answer, error) {
	var answer model.Answer
	if err := r.DB.WithContext(ctx).First(&answer, id).Error; err != nil {
		return nil, notFoundOr(err, util.ErrAnswerNotFound)
	}
	return &answer, nil
}

func (r *AnswerRepository) ListByQuestion(ctx context.Context, questionID uint) ([]model.Answer, error) {
	var answers []model.Answer
	err := r.DB.WithContext(ctx).
		Where("question_id = ?", questionID).
		Order("id ASC").
		Find(&answers).Error
	return answers, storageErr(err)
}

func (r *AnswerRepository) ListByAuthor(ctx context.Context, authorID uint) ([]model.Answer, error) {
	var answers []model.Answer
	err := r.DB.WithContext(ctx).
		Where("author_id = ?", authorID).
		Order("id DESC").
		Find(&answers).Error
	return answers, storageErr(err)
}

func (r *AnswerRepository) UpdateContent(ctx context.Context, id uint, content string) error {
	err := r.DB.WithContext(ctx).Model(&model.Answer{}).
		Where("id = ?", id).
		Update("content", content).Error
	return storageErr(err)
}

// Delete 删除投票并清除指向该回答的解决状态，整体在一个事务内完成
func (r *AnswerRepository) Delete(ctx context.Context, id uint) error {
	return Transaction(ctx, r.DB, func(tx *gorm.DB) error {
		var answer model.Answer
		if err := tx.Select("id").First(&answer, id).Error; err != nil {
			return notFoundOr(err, util.ErrAnswerNotFound)
		}
		return deleteAnswersTx(tx, []uint{id})
	})
}
