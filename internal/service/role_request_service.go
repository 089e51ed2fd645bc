package service

import (
	"context"
	"qa_forum_backend/internal/model"
	"qa_forum_backend/internal/repository"
	"qa_forum_backend/internal/util"

	"gorm.io/gorm"
)

// RoleRequestService 角色申请：无记录 → 待审批（有记录）→ 批准（授予角色并删除记录）或拒绝（删除记录）
type RoleRequestService struct {
	DB          *gorm.DB
	RequestRepo *repository.RoleRequestRepository
	UserRepo    *repository.UserRepository
	Exec        *Executor
}

func NewRoleRequestService(db *gorm.DB, requestRepo *repository.RoleRequestRepository, userRepo *repository.UserRepository, exec *Executor) *RoleRequestService {
	return &RoleRequestService{DB: db, RequestRepo: requestRepo, UserRepo: userRepo, Exec: exec}
}

func (s *RoleRequestService) RequestRole(ctx context.Context, userID uint, roleName string) (*model.RoleRequest, error) {
	role, ok := model.ParseRole(roleName)
	if !ok {
		return nil, util.ErrInvalidRole
	}

	return run(ctx, s.Exec, "role_request.create", func(ctx context.Context) (*model.RoleRequest, error) {
		held, err := s.UserRepo.HasRole(ctx, userID, role)
		if err != nil {
			return nil, err
		}
		if held {
			return nil, util.ErrRoleAlreadyHeld
		}
		exists, err := s.UserRepo.Exists(ctx, userID)
		if err != nil {
			return nil, err
		}
		if !exists {
			return nil, util.ErrUserNotFound
		}

		req := &model.RoleRequest{UserID: userID, Role: role}
		if err := s.RequestRepo.Create(ctx, req); err != nil {
			return nil, err
		}
		return req, nil
	})
}

func (s *RoleRequestService) HasRequestedRole(ctx context.Context, userID uint, roleName string) (bool, error) {
	role, ok := model.ParseRole(roleName)
	if !ok {
		return false, util.ErrInvalidRole
	}
	return run(ctx, s.Exec, "role_request.exists", func(ctx context.Context) (bool, error) {
		return s.RequestRepo.Exists(ctx, userID, role)
	})
}

// ListRoleRequests roles 为空时返回全部
func (s *RoleRequestService) ListRoleRequests(ctx context.Context, roleNames []string, sort string) ([]model.RoleRequest, error) {
	roles, err := ParseRoles(roleNames)
	if err != nil {
		return nil, err
	}
	order, err := ParseSort(sort)
	if err != nil {
		return nil, err
	}
	if order != repository.SortRecent && order != repository.SortOldest {
		return nil, util.Invalid("role requests can only be sorted by recent or oldest")
	}

	return run(ctx, s.Exec, "role_request.list", func(ctx context.Context) ([]model.RoleRequest, error) {
		return s.RequestRepo.List(ctx, repository.RoleRequestQuery{Roles: roles, Sort: order})
	})
}

func (s *RoleRequestService) ListUserRequests(ctx context.Context, userID uint) ([]model.RoleRequest, error) {
	return run(ctx, s.Exec, "role_request.list_user", func(ctx context.Context) ([]model.RoleRequest, error) {
		return s.RequestRepo.ListByUser(ctx, userID)
	})
}

// ApproveRoleRequest 授予角色与删除申请在同一事务内
func (s *RoleRequestService) ApproveRoleRequest(ctx context.Context, requestID uint) error {
	return s.Exec.Do(ctx, "role_request.approve", func(ctx context.Context) error {
		return repository.Transaction(ctx, s.DB, func(tx *gorm.DB) error {
			requests := s.RequestRepo.WithTx(tx)
			req, err := requests.FindByID(ctx, requestID)
			if err != nil {
				return err
			}
			if err := s.UserRepo.WithTx(tx).AddRole(ctx, req.UserID, req.Role); err != nil {
				return err
			}
			deleted, err := requests.Delete(ctx, req.ID)
			if err != nil {
				return err
			}
			if !deleted {
				return util.ErrRoleRequestNotFound
			}
			return nil
		})
	})
}

func (s *RoleRequestService) DenyRoleRequest(ctx context.Context, requestID uint) error {
	return s.Exec.Do(ctx, "role_request.deny", func(ctx context.Context) error {
		deleted, err := s.RequestRepo.Delete(ctx, requestID)
		if err != nil {
			return err
		}
		if !deleted {
			return util.ErrRoleRequestNotFound
		}
		return nil
	})
}
