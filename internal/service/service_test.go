package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"gorm.io/gorm"

	"qa_forum_backend/internal/config"
	"qa_forum_backend/internal/model"
	"qa_forum_backend/internal/repository"
	"qa_forum_backend/internal/testutil"
)

type ServiceSuite struct {
	suite.Suite
	ctx  context.Context
	db   *gorm.DB
	cfg  *config.Config
	exec *Executor

	auth     *AuthService
	users    *UserService
	requests *RoleRequestService
	invites  *InvitationService
	threads  *ThreadService
	votes    *VoteService
	reviews  *ReviewService
	messages *MessageService
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	s.ctx = context.Background()
	s.db = testutil.NewDB(s.T())
	s.cfg = &config.Config{
		JWT:   config.JWTConfig{Secret: "test-secret", ExpireTime: time.Hour},
		Retry: config.RetryConfig{MaxAttempts: 2, InitialInterval: time.Millisecond, MaxInterval: time.Millisecond},
	}
	s.exec = NewExecutor(s.cfg.Retry)

	userRepo := repository.NewUserRepository(s.db)
	questionRepo := repository.NewQuestionRepository(s.db)
	answerRepo := repository.NewAnswerRepository(s.db)
	voteRepo := repository.NewVoteRepository(s.db)
	reviewRepo := repository.NewReviewRepository(s.db)
	trustRepo := repository.NewTrustRepository(s.db)
	messageRepo := repository.NewMessageRepository(s.db)
	requestRepo := repository.NewRoleRequestRepository(s.db)
	invitationRepo := repository.NewInvitationRepository(s.db)

	s.auth = NewAuthService(s.db, userRepo, invitationRepo, nil, s.exec, s.cfg)
	s.users = NewUserService(userRepo, s.exec)
	s.requests = NewRoleRequestService(s.db, requestRepo, userRepo, s.exec)
	s.invites = NewInvitationService(invitationRepo, s.exec)
	s.threads = NewThreadService(s.db, questionRepo, answerRepo, userRepo, voteRepo, s.exec)
	s.votes = NewVoteService(s.db, voteRepo, answerRepo, userRepo, s.exec)
	s.reviews = NewReviewService(s.db, reviewRepo, trustRepo, questionRepo, answerRepo, userRepo, s.exec)
	s.messages = NewMessageService(s.db, messageRepo, userRepo, questionRepo, answerRepo, reviewRepo, s.exec)
}

func (s *ServiceSuite) register(name string, roles ...model.Role) uint {
	names := make([]string, 0, len(roles))
	for _, r := range roles {
		names = append(names, string(r))
	}
	id, err := s.auth.Register(s.ctx, RegisterInput{
		UserName: name,
		Password: "password-" + name,
		FullName: name,
		Roles:    names,
	})
	s.Require().NoError(err)
	return id
}

func (s *ServiceSuite) ask(authorID uint, title string) uint {
	q, err := s.threads.AddQuestion(s.ctx, authorID, QuestionInput{Title: title, Description: "details about " + title})
	s.Require().NoError(err)
	return q.ID
}

func (s *ServiceSuite) answer(authorID, questionID uint, content string) uint {
	a, err := s.threads.AddAnswer(s.ctx, authorID, questionID, content)
	s.Require().NoError(err)
	return a.ID
}
