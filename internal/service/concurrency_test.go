package service

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"qa_forum_backend/internal/config"
	"qa_forum_backend/internal/model"
	"qa_forum_backend/internal/repository"
	"qa_forum_backend/internal/testutil"
	"qa_forum_backend/internal/util"
)

const workers = 12

type concurrentFixture struct {
	db      *gorm.DB
	auth    *AuthService
	threads *ThreadService
	votes   *VoteService
}

func newConcurrentFixture(t *testing.T) *concurrentFixture {
	db := testutil.NewConcurrentDB(t, 8)
	exec := NewExecutor(config.RetryConfig{MaxAttempts: 3, InitialInterval: time.Millisecond, MaxInterval: 5 * time.Millisecond})
	cfg := &config.Config{JWT: config.JWTConfig{Secret: "test-secret", ExpireTime: time.Hour}}

	userRepo := repository.NewUserRepository(db)
	questionRepo := repository.NewQuestionRepository(db)
	answerRepo := repository.NewAnswerRepository(db)
	voteRepo := repository.NewVoteRepository(db)

	return &concurrentFixture{
		db:      db,
		auth:    NewAuthService(db, userRepo, repository.NewInvitationRepository(db), nil, exec, cfg),
		threads: NewThreadService(db, questionRepo, answerRepo, userRepo, voteRepo, exec),
		votes:   NewVoteService(db, voteRepo, answerRepo, userRepo, exec),
	}
}

// seed 返回投票者与被投票的回答
func (f *concurrentFixture) seed(t *testing.T) (uint, uint) {
	ctx := context.Background()
	register := func(name string) uint {
		id, err := f.auth.Register(ctx, RegisterInput{UserName: name, Password: "password-" + name, Roles: []string{string(model.RoleStudent)}})
		require.NoError(t, err)
		return id
	}
	author := register("author")
	voter := register("voter")

	q, err := f.threads.AddQuestion(ctx, author, QuestionInput{Title: "race", Description: "votes"})
	require.NoError(t, err)
	a, err := f.threads.AddAnswer(ctx, author, q.ID, "answer")
	require.NoError(t, err)
	return voter, a.ID
}

func (f *concurrentFixture) assertSingleVote(t *testing.T, answerID uint) int {
	ctx := context.Background()
	rows, err := repository.NewVoteRepository(f.db).CountRows(ctx, answerID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), rows)

	sum, err := f.votes.GetAnswerVoteCount(ctx, answerID)
	require.NoError(t, err)
	assert.Contains(t, []int{VoteDown, VoteNone, VoteUp}, sum)
	return sum
}

func TestConcurrentVoteUpdatesKeepOneRow(t *testing.T) {
	f := newConcurrentFixture(t)
	voter, answer := f.seed(t)
	ctx := context.Background()

	var g errgroup.Group
	for i := 0; i < workers; i++ {
		vote := []int{VoteUp, VoteDown, VoteNone}[i%3]
		g.Go(func() error {
			return f.votes.UpdateUserVoteForAnswer(ctx, voter, answer, vote)
		})
	}
	require.NoError(t, g.Wait())

	sum := f.assertSingleVote(t, answer)
	mine, err := f.votes.GetUserVoteForAnswer(ctx, voter, answer)
	require.NoError(t, err)
	assert.Equal(t, sum, mine)
}

func TestConcurrentTogglesSerialize(t *testing.T) {
	f := newConcurrentFixture(t)
	voter, answer := f.seed(t)
	ctx := context.Background()

	// 每次点击都翻转一次，偶数次并发点击后必然回到未投票
	var g errgroup.Group
	for i := 0; i < workers; i++ {
		g.Go(func() error {
			_, err := f.votes.ToggleUpvote(ctx, voter, answer)
			return err
		})
	}
	require.NoError(t, g.Wait())

	assert.Equal(t, VoteNone, f.assertSingleVote(t, answer))
}

func TestConcurrentMixedVotes(t *testing.T) {
	f := newConcurrentFixture(t)
	voter, answer := f.seed(t)
	ctx := context.Background()

	var g errgroup.Group
	for i := 0; i < workers; i++ {
		i := i
		g.Go(func() error {
			switch i % 3 {
			case 0:
				_, err := f.votes.ToggleUpvote(ctx, voter, answer)
				return err
			case 1:
				_, err := f.votes.ToggleDownvote(ctx, voter, answer)
				return err
			default:
				return f.votes.UpdateUserVoteForAnswer(ctx, voter, answer, VoteUp)
			}
		})
	}
	require.NoError(t, g.Wait())

	f.assertSingleVote(t, answer)
}

func TestConcurrentRegisterSameUserName(t *testing.T) {
	f := newConcurrentFixture(t)
	ctx := context.Background()

	var created, duplicates atomic.Int32
	var g errgroup.Group
	for i := 0; i < workers; i++ {
		i := i
		g.Go(func() error {
			_, err := f.auth.Register(ctx, RegisterInput{
				UserName: "racer",
				Password: fmt.Sprintf("password-%d", i),
				Roles:    []string{string(model.RoleStudent)},
			})
			switch {
			case err == nil:
				created.Add(1)
			case errors.Is(err, util.ErrDuplicateUser):
				duplicates.Add(1)
			default:
				return err
			}
			return nil
		})
	}
	require.NoError(t, g.Wait())

	assert.Equal(t, int32(1), created.Load())
	assert.Equal(t, int32(workers-1), duplicates.Load())

	var count int64
	require.NoError(t, f.db.Model(&model.User{}).Where("user_name = ?", "racer").Count(&count).Error)
	assert.Equal(t, int64(1), count)
}
