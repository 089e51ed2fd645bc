package service

import (
	"context"
	"qa_forum_backend/internal/model"
	"qa_forum_backend/internal/repository"
	"qa_forum_backend/internal/util"
	"strings"
)

type UserService struct {
	UserRepo *repository.UserRepository
	Exec     *Executor
}

func NewUserService(userRepo *repository.UserRepository, exec *Executor) *UserService {
	return &UserService{UserRepo: userRepo, Exec: exec}
}

func (s *UserService) GetUser(ctx context.Context, userID uint) (*UserLightweightDTO, error) {
	return run(ctx, s.Exec, "user.get", func(ctx context.Context) (*UserLightweightDTO, error) {
		user, err := s.UserRepo.FindByID(ctx, userID)
		if err != nil {
			return nil, err
		}
		dto := toUserDTO(user)
		return &dto, nil
	})
}

func (s *UserService) ListUsers(ctx context.Context) ([]UserLightweightDTO, error) {
	return run(ctx, s.Exec, "user.list", func(ctx context.Context) ([]UserLightweightDTO, error) {
		users, err := s.UserRepo.List(ctx)
		if err != nil {
			return nil, err
		}
		out := make([]UserLightweightDTO, 0, len(users))
		for i := range users {
			out = append(out, toUserDTO(&users[i]))
		}
		return out, nil
	})
}

// GetUserRoles 返回按授予顺序排列的角色，已存在的用户至少有一个角色
func (s *UserService) GetUserRoles(ctx context.Context, userID uint) ([]string, error) {
	return run(ctx, s.Exec, "user.roles", func(ctx context.Context) ([]string, error) {
		roles, err := s.UserRepo.Roles(ctx, userID)
		if err != nil || len(roles) > 0 {
			return roles, err
		}
		// 没有角色行说明用户不存在
		exists, err := s.UserRepo.Exists(ctx, userID)
		if err != nil {
			return nil, err
		}
		if !exists {
			return nil, util.ErrUserNotFound
		}
		return []string{}, nil
	})
}

func (s *UserService) GetUserRolesByName(ctx context.Context, userName string) ([]string, error) {
	return run(ctx, s.Exec, "user.roles_by_name", func(ctx context.Context) ([]string, error) {
		user, err := s.UserRepo.FindByUserName(ctx, strings.TrimSpace(userName))
		if err != nil {
			return nil, err
		}
		return user.RoleNames(), nil
	})
}

// AddUserRole 幂等，已持有的角色不报错
func (s *UserService) AddUserRole(ctx context.Context, userID uint, roleName string) error {
	role, ok := model.ParseRole(roleName)
	if !ok {
		return util.ErrInvalidRole
	}
	return s.Exec.Do(ctx, "user.add_role", func(ctx context.Context) error {
		return s.UserRepo.AddRole(ctx, userID, role)
	})
}

func (s *UserService) HasRole(ctx context.Context, userID uint, role model.Role) (bool, error) {
	return run(ctx, s.Exec, "user.has_role", func(ctx context.Context) (bool, error) {
		return s.UserRepo.HasRole(ctx, userID, role)
	})
}
