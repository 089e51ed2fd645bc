package service

import (
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"

	"qa_forum_backend/internal/config"
	"qa_forum_backend/internal/model"
	"qa_forum_backend/internal/util"
)

func (s *ServiceSuite) TestRegister() {
	s.Run("creates user with requested roles in order", func() {
		id := s.register("alice", model.RoleStudent, model.RoleReviewer)
		roles, err := s.users.GetUserRoles(s.ctx, id)
		s.Require().NoError(err)
		s.Equal([]string{"student", "reviewer"}, roles)
	})

	s.Run("duplicate user name", func() {
		_, err := s.auth.Register(s.ctx, RegisterInput{UserName: "alice", Password: "pw", Roles: []string{"student"}})
		s.ErrorIs(err, util.ErrDuplicateUser)
	})

	s.Run("at least one role is required", func() {
		_, err := s.auth.Register(s.ctx, RegisterInput{UserName: "norole", Password: "pw"})
		s.ErrorIs(err, util.ErrValidation)
	})

	s.Run("unknown role", func() {
		_, err := s.auth.Register(s.ctx, RegisterInput{UserName: "wizard", Password: "pw", Roles: []string{"wizard"}})
		s.ErrorIs(err, util.ErrValidation)
	})

	s.Run("blank user name", func() {
		_, err := s.auth.Register(s.ctx, RegisterInput{UserName: "   ", Password: "pw", Roles: []string{"student"}})
		s.ErrorIs(err, util.ErrValidation)
	})

	s.Run("password is stored hashed", func() {
		user, err := s.auth.UserRepo.FindByUserName(s.ctx, "alice")
		s.Require().NoError(err)
		s.NotEqual("password-alice", user.Password)
	})
}

func (s *ServiceSuite) TestLogin() {
	id := s.register("carol", model.RoleStudent)

	got, err := s.auth.Login(s.ctx, "carol", "password-carol")
	s.Require().NoError(err)
	s.Equal(id, got)

	_, err = s.auth.Login(s.ctx, "carol", "wrong")
	s.ErrorIs(err, util.ErrInvalidCredentials)

	_, err = s.auth.Login(s.ctx, "nobody", "pw")
	s.ErrorIs(err, util.ErrInvalidCredentials)

	token, err := s.auth.IssueToken(s.ctx, id)
	s.Require().NoError(err)
	claims, err := util.ParseJWT(token, s.cfg.JWT.Secret)
	s.Require().NoError(err)
	s.Equal(id, claims.UserID)
	s.Equal([]string{"student"}, claims.Roles)
}

func (s *ServiceSuite) TestLoginLockout() {
	mr := miniredis.RunT(s.T())
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer rdb.Close()

	guard := NewLoginGuard(rdb, config.AuthConfig{MaxLoginFailures: 2, LockoutMinutes: 5})
	auth := NewAuthService(s.db, s.auth.UserRepo, s.auth.InvitationRepo, guard, s.exec, s.cfg)
	s.register("dave", model.RoleStudent)

	_, err := auth.Login(s.ctx, "dave", "bad")
	s.ErrorIs(err, util.ErrInvalidCredentials)
	_, err = auth.Login(s.ctx, "DAVE", "bad")
	s.ErrorIs(err, util.ErrInvalidCredentials)

	_, err = auth.Login(s.ctx, "dave", "password-dave")
	s.ErrorIs(err, util.ErrLoginLocked)

	mr.FastForward(6 * time.Minute)
	_, err = auth.Login(s.ctx, "dave", "password-dave")
	s.NoError(err)
	s.False(mr.Exists("login:fail:dave"))
}

func (s *ServiceSuite) TestBootstrapAdmin() {
	empty, err := s.auth.IsDatabaseEmpty(s.ctx)
	s.Require().NoError(err)
	s.True(empty)

	id, err := s.auth.BootstrapAdmin(s.ctx, RegisterInput{UserName: "root", Password: "pw", Roles: []string{"staff"}})
	s.Require().NoError(err)
	roles, err := s.users.GetUserRoles(s.ctx, id)
	s.Require().NoError(err)
	s.Equal([]string{"admin", "staff"}, roles)

	_, err = s.auth.BootstrapAdmin(s.ctx, RegisterInput{UserName: "root2", Password: "pw"})
	s.ErrorIs(err, util.ErrAlreadyInitialized)

	empty, err = s.auth.IsDatabaseEmpty(s.ctx)
	s.Require().NoError(err)
	s.False(empty)
}

func (s *ServiceSuite) TestRegisterWithInvitation() {
	admin := s.register("admin", model.RoleAdmin)
	code, err := s.invites.CreateCode(s.ctx, admin, []string{"instructor", "reviewer"})
	s.Require().NoError(err)
	s.Len(code.Code, util.InvitationLength)

	_, err = s.invites.ValidateCode(s.ctx, code.Code)
	s.Require().NoError(err)

	_, err = s.auth.RegisterWithInvitation(s.ctx, code.Code, RegisterInput{UserName: "erin", Password: "pw", Roles: []string{"admin"}})
	s.Require().NoError(err)
	roles, err := s.users.GetUserRolesByName(s.ctx, "erin")
	s.Require().NoError(err)
	s.Equal([]string{"instructor", "reviewer"}, roles)

	_, err = s.auth.RegisterWithInvitation(s.ctx, code.Code, RegisterInput{UserName: "frank", Password: "pw"})
	s.ErrorIs(err, util.ErrInvitationUsed)
	_, err = s.invites.ValidateCode(s.ctx, code.Code)
	s.ErrorIs(err, util.ErrInvitationUsed)

	_, err = s.auth.RegisterWithInvitation(s.ctx, "zzzz", RegisterInput{UserName: "frank", Password: "pw"})
	s.ErrorIs(err, util.ErrInvitationNotFound)

	s.Run("failed registration leaves code unused", func() {
		fresh, err := s.invites.CreateCode(s.ctx, admin, nil)
		s.Require().NoError(err)
		s.Equal("student", fresh.Roles)

		_, err = s.auth.RegisterWithInvitation(s.ctx, fresh.Code, RegisterInput{UserName: "erin", Password: "pw"})
		s.ErrorIs(err, util.ErrDuplicateUser)

		unused, err := s.invites.ListCodes(s.ctx, true)
		s.Require().NoError(err)
		s.Len(unused, 1)
		s.Equal(fresh.Code, unused[0].Code)
	})
}

func (s *ServiceSuite) TestUsers() {
	id := s.register("gina", model.RoleStudent)

	s.Require().NoError(s.users.AddUserRole(s.ctx, id, "reviewer"))
	s.Require().NoError(s.users.AddUserRole(s.ctx, id, "reviewer"))
	s.ErrorIs(s.users.AddUserRole(s.ctx, id, "wizard"), util.ErrInvalidRole)
	s.ErrorIs(s.users.AddUserRole(s.ctx, 9999, "staff"), util.ErrUserNotFound)

	user, err := s.users.GetUser(s.ctx, id)
	s.Require().NoError(err)
	s.Equal("gina", user.UserName)
	s.Equal([]string{"student", "reviewer"}, user.Roles)

	ok, err := s.users.HasRole(s.ctx, id, model.RoleReviewer)
	s.Require().NoError(err)
	s.True(ok)

	_, err = s.users.GetUser(s.ctx, 9999)
	s.ErrorIs(err, util.ErrUserNotFound)

	all, err := s.users.ListUsers(s.ctx)
	s.Require().NoError(err)
	s.Len(all, 1)
}

func (s *ServiceSuite) TestRoleRequests() {
	id := s.register("hank", model.RoleStudent)
	other := s.register("iris", model.RoleStudent)

	_, err := s.requests.RequestRole(s.ctx, id, "student")
	s.ErrorIs(err, util.ErrRoleAlreadyHeld)

	first, err := s.requests.RequestRole(s.ctx, id, "reviewer")
	s.Require().NoError(err)
	_, err = s.requests.RequestRole(s.ctx, id, "reviewer")
	s.ErrorIs(err, util.ErrDuplicateRoleRequest)
	second, err := s.requests.RequestRole(s.ctx, other, "instructor")
	s.Require().NoError(err)

	requested, err := s.requests.HasRequestedRole(s.ctx, id, "reviewer")
	s.Require().NoError(err)
	s.True(requested)

	recent, err := s.requests.ListRoleRequests(s.ctx, nil, "recent")
	s.Require().NoError(err)
	s.Require().Len(recent, 2)
	s.Equal(second.ID, recent[0].ID)

	reviewerOnly, err := s.requests.ListRoleRequests(s.ctx, []string{"reviewer"}, "oldest")
	s.Require().NoError(err)
	s.Require().Len(reviewerOnly, 1)
	s.Equal(first.ID, reviewerOnly[0].ID)

	_, err = s.requests.ListRoleRequests(s.ctx, nil, "az")
	s.ErrorIs(err, util.ErrValidation)

	s.Require().NoError(s.requests.ApproveRoleRequest(s.ctx, first.ID))
	roles, err := s.users.GetUserRoles(s.ctx, id)
	s.Require().NoError(err)
	s.Equal([]string{"student", "reviewer"}, roles)
	requested, err = s.requests.HasRequestedRole(s.ctx, id, "reviewer")
	s.Require().NoError(err)
	s.False(requested)

	s.Require().NoError(s.requests.DenyRoleRequest(s.ctx, second.ID))
	roles, err = s.users.GetUserRoles(s.ctx, other)
	s.Require().NoError(err)
	s.Equal([]string{"student"}, roles)
	_, err = s.users.GetUserRoles(s.ctx, 9999)
	s.ErrorIs(err, util.ErrUserNotFound)

	s.ErrorIs(s.requests.DenyRoleRequest(s.ctx, second.ID), util.ErrRoleRequestNotFound)
	s.ErrorIs(s.requests.ApproveRoleRequest(s.ctx, first.ID), util.ErrRoleRequestNotFound)

	left, err := s.requests.ListRoleRequests(s.ctx, nil, "")
	s.Require().NoError(err)
	s.Empty(left)
}
