package service

import (
	"context"
	"qa_forum_backend/internal/repository"
	"qa_forum_backend/internal/util"
	"strconv"

	"gorm.io/gorm"
)

const (
	VoteDown = -1
	VoteNone = 0
	VoteUp   = 1
)

type VoteService struct {
	DB         *gorm.DB
	VoteRepo   *repository.VoteRepository
	AnswerRepo *repository.AnswerRepository
	UserRepo   *repository.UserRepository
	Exec       *Executor
}

func NewVoteService(db *gorm.DB, voteRepo *repository.VoteRepository, answerRepo *repository.AnswerRepository, userRepo *repository.UserRepository, exec *Executor) *VoteService {
	return &VoteService{DB: db, VoteRepo: voteRepo, AnswerRepo: answerRepo, UserRepo: userRepo, Exec: exec}
}

// FormatVoteCount 非负数带加号
func FormatVoteCount(n int) string {
	if n >= 0 {
		return "+" + strconv.Itoa(n)
	}
	return strconv.Itoa(n)
}

func validVote(v int) bool {
	return v == VoteDown || v == VoteNone || v == VoteUp
}

func (s *VoteService) checkParticipants(ctx context.Context, tx *gorm.DB, userID, answerID uint) error {
	if _, err := s.AnswerRepo.WithTx(tx).FindByID(ctx, answerID); err != nil {
		return err
	}
	exists, err := s.UserRepo.WithTx(tx).Exists(ctx, userID)
	if err != nil {
		return err
	}
	if !exists {
		return util.ErrUserNotFound
	}
	return nil
}

// UpdateUserVoteForAnswer 每个用户对每个回答只保留一票
func (s *VoteService) UpdateUserVoteForAnswer(ctx context.Context, userID, answerID uint, vote int) error {
	if !validVote(vote) {
		return util.Invalid("vote must be -1, 0 or 1")
	}
	return s.Exec.Do(ctx, "vote.update", func(ctx context.Context) error {
		return repository.Transaction(ctx, s.DB, func(tx *gorm.DB) error {
			if err := s.checkParticipants(ctx, tx, userID, answerID); err != nil {
				return err
			}
			return s.VoteRepo.WithTx(tx).Upsert(ctx, userID, answerID, vote)
		})
	})
}

func (s *VoteService) ToggleUpvote(ctx context.Context, userID, answerID uint) (int, error) {
	return s.toggle(ctx, "vote.toggle_up", userID, answerID, VoteUp)
}

func (s *VoteService) ToggleDownvote(ctx context.Context, userID, answerID uint) (int, error) {
	return s.toggle(ctx, "vote.toggle_down", userID, answerID, VoteDown)
}

// toggle 再次点击同一方向时撤销投票，否则切换到该方向
func (s *VoteService) toggle(ctx context.Context, op string, userID, answerID uint, pressed int) (int, error) {
	return run(ctx, s.Exec, op, func(ctx context.Context) (int, error) {
		next := VoteNone
		err := repository.Transaction(ctx, s.DB, func(tx *gorm.DB) error {
			if err := s.checkParticipants(ctx, tx, userID, answerID); err != nil {
				return err
			}
			votes := s.VoteRepo.WithTx(tx)
			current, err := votes.Get(ctx, userID, answerID)
			if err != nil {
				return err
			}
			next = pressed
			if current == pressed {
				next = VoteNone
			}
			return votes.Upsert(ctx, userID, answerID, next)
		})
		return next, err
	})
}

func (s *VoteService) GetAnswerVoteCount(ctx context.Context, answerID uint) (int, error) {
	return run(ctx, s.Exec, "vote.count", func(ctx context.Context) (int, error) {
		return s.VoteRepo.Sum(ctx, answerID)
	})
}

func (s *VoteService) GetUserVoteForAnswer(ctx context.Context, userID, answerID uint) (int, error) {
	return run(ctx, s.Exec, "vote.get", func(ctx context.Context) (int, error) {
		return s.VoteRepo.Get(ctx, userID, answerID)
	})
}
