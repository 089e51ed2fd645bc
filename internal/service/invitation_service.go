package service

import (
	"context"
	"errors"
	"qa_forum_backend/internal/model"
	"qa_forum_backend/internal/repository"
	"qa_forum_backend/internal/util"
	"strings"

	"github.com/google/uuid"
)

const maxCodeAttempts = 5

type InvitationService struct {
	InvitationRepo *repository.InvitationRepository
	Exec           *Executor
}

func NewInvitationService(invitationRepo *repository.InvitationRepository, exec *Executor) *InvitationService {
	return &InvitationService{InvitationRepo: invitationRepo, Exec: exec}
}

func newCode() string {
	return uuid.New().String()[:util.InvitationLength]
}

// CreateCode 生成 4 位一次性邀请码，主键冲突时换码重试
func (s *InvitationService) CreateCode(ctx context.Context, createdBy uint, roleNames []string) (*model.InvitationCode, error) {
	roles, err := ParseRoles(roleNames)
	if err != nil {
		return nil, err
	}
	if len(roles) == 0 {
		roles = []model.Role{model.RoleStudent}
	}
	names := make([]string, 0, len(roles))
	for _, r := range roles {
		names = append(names, string(r))
	}

	return run(ctx, s.Exec, "invitation.create", func(ctx context.Context) (*model.InvitationCode, error) {
		for i := 0; i < maxCodeAttempts; i++ {
			code := &model.InvitationCode{
				Code:      newCode(),
				Roles:     strings.Join(names, ","),
				CreatedBy: createdBy,
			}
			err := s.InvitationRepo.Create(ctx, code)
			if err == nil {
				return code, nil
			}
			if !errors.Is(err, util.ErrDuplicate) {
				return nil, err
			}
		}
		return nil, errors.New("could not allocate a unique invitation code")
	})
}

// ValidateCode 只检查邀请码是否可用，不核销
func (s *InvitationService) ValidateCode(ctx context.Context, code string) (*model.InvitationCode, error) {
	return run(ctx, s.Exec, "invitation.validate", func(ctx context.Context) (*model.InvitationCode, error) {
		inv, err := s.InvitationRepo.FindByCode(ctx, strings.TrimSpace(code))
		if err != nil {
			return nil, err
		}
		if inv.IsUsed {
			return nil, util.ErrInvitationUsed
		}
		return inv, nil
	})
}

func (s *InvitationService) ListCodes(ctx context.Context, unusedOnly bool) ([]model.InvitationCode, error) {
	return run(ctx, s.Exec, "invitation.list", func(ctx context.Context) ([]model.InvitationCode, error) {
		return s.InvitationRepo.List(ctx, unusedOnly)
	})
}
