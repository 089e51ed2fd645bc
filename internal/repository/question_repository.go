package repository

import (
	"context"
	"qa_forum_backend/internal/model"
	"qa_forum_backend/internal/util"

	"gorm.io/gorm"
)

type QuestionRepository struct {
	DB *gorm.DB
}

func NewQuestionRepository(db *gorm.DB) *QuestionRepository {
	return &QuestionRepository{DB: db}
}

func (r *QuestionRepository) WithTx(tx *gorm.DB) *QuestionRepository {
	return &QuestionRepository{DB: tx}
}

func (r *QuestionRepository) Create(ctx context.Context, question *model.Question) error {
	return storageErr(r.DB.WithContext(ctx).Create(question).Error)
}

func (r *QuestionRepository) FindByID(ctx context.Context, id uint) (*model.Question, error) {
	var question model.Question
	if err := r.DB.WithContext(ctx).First(&question, id).Error; err != nil {
		return nil, notFoundOr(err, util.ErrQuestionNotFound)
	}
	return &question, nil
}

func (r *QuestionRepository) Exists(ctx context.Context, id uint) (bool, error) {
	var count int64
	err := r.DB.WithContext(ctx).Model(&model.Question{}).Where("id = ?", id).Count(&count).Error
	return count > 0, storageErr(err)
}

// UpdateText 只更新标题与描述
func (r *QuestionRepository) UpdateText(ctx context.Context, id uint, title, description string) error {
	err := r.DB.WithContext(ctx).Model(&model.Question{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{"title": title, "description": description}).Error
	return storageErr(err)
}

func (r *QuestionRepository) List(ctx context.Context, q QuestionQuery) ([]model.Question, error) {
	var questions []model.Question

	query := r.DB.WithContext(ctx).Model(&model.Question{})
	query = matchAny(query, "title", q.Keywords)
	query = applyQuestionFilter(query, q.Filter, q.UserID)
	query = orderBy(query, q.Sort, "id", "title")
	query = paginate(query, q.Limit, q.Offset)

	err := query.Find(&questions).Error
	return questions, storageErr(err)
}

func (r *QuestionRepository) ListFollowUps(ctx context.Context, parentID uint) ([]model.Question, error) {
	var questions []model.Question
	err := r.DB.WithContext(ctx).
		Where("parent_question_id = ?", parentID).
		Order("id ASC").
		Find(&questions).Error
	return questions, storageErr(err)
}

// IncrementUnread 原子递增提问者未读计数
func (r *QuestionRepository) IncrementUnread(ctx context.Context, id uint) error {
	err := r.DB.WithContext(ctx).Model(&model.Question{}).
		Where("id = ?", id).
		Update("author_unread_count", gorm.Expr("author_unread_count + 1")).Error
	return storageErr(err)
}

func (r *QuestionRepository) ResetUnread(ctx context.Context, id uint) error {
	err := r.DB.WithContext(ctx).Model(&model.Question{}).
		Where("id = ?", id).
		Update("author_unread_count", 0).Error
	return storageErr(err)
}

// SetResolution answerID 为 nil 时回到未解决状态，resolved 与 resolved_answer_id 始终同步写入
func (r *QuestionRepository) SetResolution(ctx context.Context, id uint, answerID *uint) error {
	err := r.DB.WithContext(ctx).Model(&model.Question{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"resolved":           answerID != nil,
			"resolved_answer_id": answerID,
		}).Error
	return storageErr(err)
}

// Delete 级联删除问题下的回答（含投票、评审、私信），清空追问的父引用，最后删除问题本身
func (r *QuestionRepository) Delete(ctx context.Context, id uint) error {
	return Transaction(ctx, r.DB, func(tx *gorm.DB) error {
		var question model.Question
		if err := tx.Select("id").First(&question, id).Error; err != nil {
			return notFoundOr(err, util.ErrQuestionNotFound)
		}

		var answerIDs []uint
		if err := tx.Model(&model.Answer{}).Where("question_id = ?", id).Pluck("id", &answerIDs).Error; err != nil {
			return err
		}
		if err := deleteAnswersTx(tx, answerIDs); err != nil {
			return err
		}

		var reviewIDs []uint
		if err := tx.Model(&model.Review{}).Where("question_id = ?", id).Pluck("id", &reviewIDs).Error; err != nil {
			return err
		}
		if err := deleteReviewsTx(tx, reviewIDs); err != nil {
			return err
		}

		if err := deleteMessagesTx(tx, model.ParentQuestion, []uint{id}); err != nil {
			return err
		}

		// 追问只是反向引用，不随原问题删除
		if err := tx.Model(&model.Question{}).
			Where("parent_question_id = ?", id).
			Update("parent_question_id", nil).Error; err != nil {
			return err
		}

		return tx.Delete(&model.Question{}, id).Error
	})
}

// deleteAnswersTx 回答级联：投票、解决状态、评审、私信，最后删除回答
func deleteAnswersTx(tx *gorm.DB, answerIDs []uint) error {
	if len(answerIDs) == 0 {
		return nil
	}

	if err := tx.Where("answer_id IN ?", answerIDs).Delete(&model.Vote{}).Error; err != nil {
		return err
	}

	if err := tx.Model(&model.Question{}).
		Where("resolved_answer_id IN ?", answerIDs).
		Updates(map[string]interface{}{"resolved": false, "resolved_answer_id": nil}).Error; err != nil {
		return err
	}

	var reviewIDs []uint
	if err := tx.Model(&model.Review{}).Where("answer_id IN ?", answerIDs).Pluck("id", &reviewIDs).Error; err != nil {
		return err
	}
	if err := deleteReviewsTx(tx, reviewIDs); err != nil {
		return err
	}

	if err := deleteMessagesTx(tx, model.ParentAnswer, answerIDs); err != nil {
		return err
	}

	return tx.Where("id IN ?", answerIDs).Delete(&model.Answer{}).Error
}

func deleteReviewsTx(tx *gorm.DB, reviewIDs []uint) error {
	if len(reviewIDs) == 0 {
		return nil
	}
	if err := deleteMessagesTx(tx, model.ParentReview, reviewIDs); err != nil {
		return err
	}
	return tx.Where("id IN ?", reviewIDs).Delete(&model.Review{}).Error
}

func deleteMessagesTx(tx *gorm.DB, parentType model.ParentType, parentIDs []uint) error {
	if len(parentIDs) == 0 {
		return nil
	}
	return tx.Where("parent_type = ? AND parent_id IN ?", parentType, parentIDs).
		Delete(&model.PrivateMessage{}).Error
}
