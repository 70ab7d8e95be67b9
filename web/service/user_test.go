package service

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/storerate/storerate/database/model"
	"github.com/storerate/storerate/util/common"
	"github.com/storerate/storerate/web/entity"
	"github.com/storerate/storerate/web/policy"
)

func registerReq(name, email string) *entity.RegisterRequest {
	return &entity.RegisterRequest{Name: name, Email: email, Password: "Passw0rd!", Role: "user"}
}

func TestRegisterAndLogin(t *testing.T) {
	f := setup(t)

	tok, err := f.users.Register(f.ctx, registerReq("Twenty Character Name!!", "  A@X.com "))
	require.NoError(t, err)
	claims, err := f.tokens.Verify(tok)
	require.NoError(t, err)
	assert.Equal(t, model.RoleUser, claims.Role)

	tok, err = f.users.Login(f.ctx, &entity.LoginRequest{Email: "a@x.com", Password: "Passw0rd!"})
	require.NoError(t, err)
	again, err := f.tokens.Verify(tok)
	require.NoError(t, err)
	assert.Equal(t, claims.Id, again.Id)

	_, err = f.users.Login(f.ctx, &entity.LoginRequest{Email: "a@x.com", Password: "wrong"})
	assert.ErrorIs(t, err, common.ErrInvalidCredentials)
	_, err = f.users.Login(f.ctx, &entity.LoginRequest{Email: "nobody@x.com", Password: "Passw0rd!"})
	assert.ErrorIs(t, err, common.ErrInvalidCredentials)
}

func TestRegisterNameBoundary(t *testing.T) {
	f := setup(t)

	_, err := f.users.Register(f.ctx, registerReq(strings.Repeat("a", 19), "short@x.com"))
	assert.Equal(t, common.KindValidation, common.KindOf(err))

	_, err = f.users.Register(f.ctx, registerReq(strings.Repeat("a", 20), "exact@x.com"))
	assert.NoError(t, err)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	f := setup(t)
	_, err := f.users.Register(f.ctx, registerReq("Twenty Character Name!!", "dup@x.com"))
	require.NoError(t, err)

	_, err = f.users.Register(f.ctx, registerReq("Another Twenty Char Name", "DUP@x.com"))
	assert.ErrorIs(t, err, common.ErrEmailTaken)
}

func TestProfileUpdate(t *testing.T) {
	f := setup(t)
	sub := f.addUser(t, "p@x.com", model.RoleUser)

	require.NoError(t, f.users.UpdateProfile(f.ctx, sub, &entity.ProfileUpdateRequest{Name: "  Jo ", Address: "Elm St"}))
	u, err := f.users.Profile(f.ctx, sub)
	require.NoError(t, err)
	assert.Equal(t, "Jo", u.Name)
	assert.Equal(t, "Elm St", u.Address)

	err = f.users.UpdateProfile(f.ctx, sub, &entity.ProfileUpdateRequest{Name: "J"})
	assert.Equal(t, common.KindValidation, common.KindOf(err))

	_, err = f.users.Profile(f.ctx, nil)
	assert.ErrorIs(t, err, common.ErrUnauthenticated)
}

func TestChangePassword(t *testing.T) {
	f := setup(t)
	sub := f.addUser(t, "pw@x.com", model.RoleUser)

	err := f.users.ChangePassword(f.ctx, sub, &entity.PasswordChangeRequest{
		CurrentPassword: "not-it", NewPassword: "N3w-pass!", ConfirmPassword: "N3w-pass!",
	})
	var appErr *common.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, common.KindValidation, appErr.Kind)
	assert.Equal(t, "currentPassword", appErr.Fields[0].Field)

	err = f.users.ChangePassword(f.ctx, sub, &entity.PasswordChangeRequest{
		CurrentPassword: "Passw0rd!", NewPassword: "Passw0rd!", ConfirmPassword: "Passw0rd!",
	})
	assert.Equal(t, common.KindValidation, common.KindOf(err))

	require.NoError(t, f.users.ChangePassword(f.ctx, sub, &entity.PasswordChangeRequest{
		CurrentPassword: "Passw0rd!", NewPassword: "N3w-pass!", ConfirmPassword: "N3w-pass!",
	}))

	_, err = f.users.Login(f.ctx, &entity.LoginRequest{Email: "pw@x.com", Password: "Passw0rd!"})
	assert.ErrorIs(t, err, common.ErrInvalidCredentials)
	_, err = f.users.Login(f.ctx, &entity.LoginRequest{Email: "pw@x.com", Password: "N3w-pass!"})
	assert.NoError(t, err)
}

func TestChangePasswordReportsAllProblems(t *testing.T) {
	f := setup(t)
	sub := f.addUser(t, "pw@x.com", model.RoleUser)

	err := f.users.ChangePassword(f.ctx, sub, &entity.PasswordChangeRequest{
		CurrentPassword: "not-it", NewPassword: "N3w-pass!", ConfirmPassword: "different",
	})
	var appErr *common.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, common.KindValidation, appErr.Kind)
	fields := map[string]bool{}
	for _, fe := range appErr.Fields {
		fields[fe.Field] = true
	}
	assert.Equal(t, map[string]bool{"confirmPassword": true, "currentPassword": true}, fields)

	_, err = f.users.Login(f.ctx, &entity.LoginRequest{Email: "pw@x.com", Password: "Passw0rd!"})
	assert.NoError(t, err)
}

func TestListUsersAdminOnly(t *testing.T) {
	f := setup(t)
	admin := f.addUser(t, "admin@x.com", model.RoleAdmin)
	user := f.addUser(t, "u@x.com", model.RoleUser)

	users, err := f.users.ListUsers(f.ctx, admin)
	require.NoError(t, err)
	assert.Len(t, users, 2)

	_, err = f.users.ListUsers(f.ctx, user)
	assert.ErrorIs(t, err, common.ErrForbidden)
}

func TestRefreshToken(t *testing.T) {
	f := setup(t)
	sub := f.addUser(t, "r@x.com", model.RoleOwner)
	tok, err := f.tokens.Issue(sub.Id, sub.Role)
	require.NoError(t, err)

	fresh, err := f.users.RefreshToken(sub, tok)
	require.NoError(t, err)
	claims, err := f.tokens.Verify(fresh)
	require.NoError(t, err)
	assert.Equal(t, sub.Id, claims.Id)

	_, err = f.users.RefreshToken(nil, tok)
	assert.ErrorIs(t, err, common.ErrUnauthenticated)
}

func TestEnsureAdmin(t *testing.T) {
	f := setup(t)

	u, created, err := f.users.EnsureAdmin(f.ctx, "Bootstrap Administrator", "root@x.com", "Adm1n-pass", "")
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, model.RoleAdmin, u.Role)

	sub := f.addUser(t, "promote@x.com", model.RoleUser)
	u, created, err = f.users.EnsureAdmin(f.ctx, "Promoted Administrator", "promote@x.com", "Adm1n-pass", "")
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, sub.Id, u.Id)

	users, err := f.users.ListUsers(f.ctx, &policy.Subject{Id: u.Id, Role: model.RoleAdmin})
	require.NoError(t, err)
	for _, x := range users {
		assert.Equal(t, model.RoleAdmin, x.Role)
	}
}
