package service

import (
	"context"
	"errors"
	"qa_forum_backend/internal/config"
	"qa_forum_backend/internal/model"
	"qa_forum_backend/internal/repository"
	"qa_forum_backend/internal/util"
	"strings"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type AuthService struct {
	DB             *gorm.DB
	UserRepo       *repository.UserRepository
	InvitationRepo *repository.InvitationRepository
	Guard          *LoginGuard
	Exec           *Executor
	Cfg            *config.Config
}

func NewAuthService(db *gorm.DB, userRepo *repository.UserRepository, invitationRepo *repository.InvitationRepository, guard *LoginGuard, exec *Executor, cfg *config.Config) *AuthService {
	return &AuthService{
		DB:             db,
		UserRepo:       userRepo,
		InvitationRepo: invitationRepo,
		Guard:          guard,
		Exec:           exec,
		Cfg:            cfg,
	}
}

type RegisterInput struct {
	UserName string   `json:"userName" binding:"required" validate:"required,nonblank,max=100"`
	Password string   `json:"password" binding:"required" validate:"required,max=72"`
	FullName string   `json:"fullName" validate:"max=100"`
	Email    string   `json:"email" validate:"omitempty,email,max=255"`
	Roles    []string `json:"roles" validate:"omitempty,dive,role"`
}

// newUser 校验输入、哈希密码并组装用户及角色
func newUser(in RegisterInput, roles []model.Role) (*model.User, error) {
	in.UserName = strings.TrimSpace(in.UserName)
	in.FullName = strings.TrimSpace(in.FullName)
	in.Email = strings.TrimSpace(in.Email)
	if err := validateStruct(in); err != nil {
		return nil, err
	}
	if len(roles) == 0 {
		return nil, util.Invalid("roles must contain at least 1 item(s)")
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := &model.User{
		UserName: in.UserName,
		Password: string(hashed),
		FullName: in.FullName,
		Email:    in.Email,
	}
	for _, role := range roles {
		user.Roles = append(user.Roles, model.UserRole{Role: role})
	}
	return user, nil
}

// Register 用户名唯一性以插入时的约束冲突为准
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (uint, error) {
	roles, err := ParseRoles(in.Roles)
	if err != nil {
		return 0, err
	}
	user, err := newUser(in, roles)
	if err != nil {
		return 0, err
	}

	err = s.Exec.Do(ctx, "auth.register", func(ctx context.Context) error {
		resetIDs(user)
		return s.UserRepo.Create(ctx, user)
	})
	if err != nil {
		return 0, err
	}
	return user.ID, nil
}

// RegisterWithInvitation 邀请码决定角色；用户创建与邀请码核销在同一事务中
func (s *AuthService) RegisterWithInvitation(ctx context.Context, code string, in RegisterInput) (uint, error) {
	code = strings.TrimSpace(code)
	var userID uint

	err := s.Exec.Do(ctx, "auth.register_invitation", func(ctx context.Context) error {
		return repository.Transaction(ctx, s.DB, func(tx *gorm.DB) error {
			invitations := s.InvitationRepo.WithTx(tx)
			inv, err := invitations.FindByCode(ctx, code)
			if err != nil {
				return err
			}
			if inv.IsUsed {
				return util.ErrInvitationUsed
			}

			roles, err := ParseRoles(splitRoles(inv.Roles))
			if err != nil {
				return err
			}
			user, err := newUser(in, roles)
			if err != nil {
				return err
			}
			if err := s.UserRepo.WithTx(tx).Create(ctx, user); err != nil {
				return err
			}
			if err := invitations.Redeem(ctx, code, user.ID); err != nil {
				return err
			}
			userID = user.ID
			return nil
		})
	})
	return userID, err
}

// BootstrapAdmin 仅在用户表为空时创建首个管理员
func (s *AuthService) BootstrapAdmin(ctx context.Context, in RegisterInput) (uint, error) {
	extra, err := ParseRoles(in.Roles)
	if err != nil {
		return 0, err
	}
	roles := []model.Role{model.RoleAdmin}
	for _, r := range extra {
		if r != model.RoleAdmin {
			roles = append(roles, r)
		}
	}
	user, err := newUser(in, roles)
	if err != nil {
		return 0, err
	}

	err = s.Exec.Do(ctx, "auth.bootstrap_admin", func(ctx context.Context) error {
		return repository.Transaction(ctx, s.DB, func(tx *gorm.DB) error {
			users := s.UserRepo.WithTx(tx)
			count, err := users.Count(ctx)
			if err != nil {
				return err
			}
			if count > 0 {
				return util.ErrAlreadyInitialized
			}
			resetIDs(user)
			return users.Create(ctx, user)
		})
	})
	if err != nil {
		return 0, err
	}
	return user.ID, nil
}

func (s *AuthService) IsDatabaseEmpty(ctx context.Context) (bool, error) {
	return run(ctx, s.Exec, "auth.is_empty", func(ctx context.Context) (bool, error) {
		count, err := s.UserRepo.Count(ctx)
		return count == 0, err
	})
}

// Login 成功返回用户 ID；用户不存在与密码错误不作区分
func (s *AuthService) Login(ctx context.Context, userName, password string) (uint, error) {
	userName = strings.TrimSpace(userName)
	if s.Guard.Locked(ctx, userName) {
		return 0, util.ErrLoginLocked
	}

	user, err := run(ctx, s.Exec, "auth.login", func(ctx context.Context) (*model.User, error) {
		return s.UserRepo.FindByUserName(ctx, userName)
	})
	if errors.Is(err, util.ErrUserNotFound) {
		s.Guard.RecordFailure(ctx, userName)
		return 0, util.ErrInvalidCredentials
	}
	if err != nil {
		return 0, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		s.Guard.RecordFailure(ctx, userName)
		return 0, util.ErrInvalidCredentials
	}

	s.Guard.Reset(ctx, userName)
	return user.ID, nil
}

// IssueToken 为已登录用户签发携带全部角色的令牌
func (s *AuthService) IssueToken(ctx context.Context, userID uint) (string, error) {
	user, err := run(ctx, s.Exec, "auth.issue_token", func(ctx context.Context) (*model.User, error) {
		return s.UserRepo.FindByID(ctx, userID)
	})
	if err != nil {
		return "", err
	}
	return util.GenerateJWT(user.ID, user.UserName, user.RoleNames(), s.Cfg.JWT.Secret, s.Cfg.JWT.ExpireTime)
}

// resetIDs 重试前清除上一次失败插入回填的主键
func resetIDs(user *model.User) {
	user.ID = 0
	for i := range user.Roles {
		user.Roles[i].ID = 0
		user.Roles[i].UserID = 0
	}
}

func splitRoles(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
