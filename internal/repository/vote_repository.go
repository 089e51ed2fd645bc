package repository

import (
	"context"
	"errors"
	"qa_forum_backend/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type VoteRepository struct {
	DB *gorm.DB
}

func NewVoteRepository(db *gorm.DB) *VoteRepository {
	return &VoteRepository{DB: db}
}

func (r *VoteRepository) WithTx(tx *gorm.DB) *VoteRepository {
	return &VoteRepository{DB: tx}
}

// Upsert 以 (user_id, answer_id) 为键原子写入当前投票
func (r *VoteRepository) Upsert(ctx context.Context, userID, answerID uint, voteType int) error {
	vote := model.Vote{UserID: userID, AnswerID: answerID, VoteType: voteType}
	err := r.DB.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "answer_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"vote_type", "updated_at"}),
		}).
		Create(&vote).Error
	return storageErr(err)
}

// Get 无记录时返回 0
func (r *VoteRepository) Get(ctx context.Context, userID, answerID uint) (int, error) {
	var vote model.Vote
	err := r.DB.WithContext(ctx).
		Where("user_id = ? AND answer_id = ?", userID, answerID).
		Take(&vote).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, storageErr(err)
	}
	return vote.VoteType, nil
}

// Sum 空集合求和为 0
func (r *VoteRepository) Sum(ctx context.Context, answerID uint) (int, error) {
	var sum int64
	err := r.DB.WithContext(ctx).Model(&model.Vote{}).
		Select("COALESCE(SUM(vote_type), 0)").
		Where("answer_id = ?", answerID).
		Scan(&sum).Error
	return int(sum), storageErr(err)
}

type voteTotal struct {
	AnswerID uint
	Total    int64
}

// SumByAnswers 批量统计，没有投票的回答不出现在结果中
func (r *VoteRepository) SumByAnswers(ctx context.Context, answerIDs []uint) (map[uint]int, error) {
	totals := make(map[uint]int, len(answerIDs))
	if len(answerIDs) == 0 {
		return totals, nil
	}

	var rows []voteTotal
	err := r.DB.WithContext(ctx).Model(&model.Vote{}).
		Select("answer_id, COALESCE(SUM(vote_type), 0) AS total").
		Where("answer_id IN ?", answerIDs).
		Group("answer_id").
		Scan(&rows).Error
	if err != nil {
		return nil, storageErr(err)
	}
	for _, row := range rows {
		totals[row.AnswerID] = int(row.Total)
	}
	return totals, nil
}

func (r *VoteRepository) CountRows(ctx context.Context, answerID uint) (int64, error) {
	var count int64
	err := r.DB.WithContext(ctx).Model(&model.Vote{}).Where("answer_id = ?", answerID).Count(&count).Error
	return count, storageErr(err)
}
