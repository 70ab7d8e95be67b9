package service

import (
	"context"

	"github.com/storerate/storerate/database"
	"github.com/storerate/storerate/database/model"
	"github.com/storerate/storerate/logger"
	"github.com/storerate/storerate/util/common"
	"github.com/storerate/storerate/util/crypto"
	"github.com/storerate/storerate/web/entity"
	"github.com/storerate/storerate/web/policy"
	"github.com/storerate/storerate/web/validation"

	"gorm.io/gorm"
)

// UserService handles accounts: registration, login and profile changes.
type UserService struct {
	tokens *TokenService
	policy policy.Policy
}

func NewUserService(tokens *TokenService, p policy.Policy) *UserService {
	return &UserService{tokens: tokens, policy: p}
}

// Register creates an account and returns a session token for it.
func (s *UserService) Register(ctx context.Context, req *entity.RegisterRequest) (string, error) {
	req.Normalize()
	if err := validation.Struct(req); err != nil {
		return "", err
	}
	role, err := model.ParseRole(req.Role)
	if err != nil {
		return "", validation.Field("role", err.Error())
	}
	hash, err := crypto.HashPassword(req.Password)
	if err != nil {
		return "", common.Internal("hash password", err)
	}

	user := &model.User{
		Name:     req.Name,
		Email:    req.Email,
		Password: hash,
		Address:  req.Address,
		Role:     role,
	}
	err = database.GetDB().WithContext(ctx).Create(user).Error
	if database.IsDuplicateKey(err) {
		return "", common.ErrEmailTaken
	} else if err != nil {
		return "", common.Internal("create user", err)
	}
	logger.Infof("registered user %d (%s)", user.Id, user.Role)
	return s.tokens.Issue(user.Id, user.Role)
}

// Login checks credentials and returns a fresh token. Unknown email and wrong
// password are indistinguishable to the caller.
func (s *UserService) Login(ctx context.Context, req *entity.LoginRequest) (string, error) {
	req.Normalize()
	if err := validation.Struct(req); err != nil {
		return "", err
	}
	user := &model.User{}
	err := database.GetDB().WithContext(ctx).
		Where("email = ?", req.Email).
		First(user).
		Error
	if database.IsNotFound(err) {
		return "", common.ErrInvalidCredentials
	} else if err != nil {
		return "", common.Internal("load user", err)
	}
	if !crypto.CheckPasswordHash(user.Password, req.Password) {
		logger.Warningf("failed login for user %d", user.Id)
		return "", common.ErrInvalidCredentials
	}
	return s.tokens.Issue(user.Id, user.Role)
}

// RefreshToken exchanges a valid token for a new one.
func (s *UserService) RefreshToken(sub *policy.Subject, token string) (string, error) {
	if err := s.policy.Authorize(sub, policy.RefreshToken, policy.Resource{}); err != nil {
		return "", err
	}
	return s.tokens.Refresh(token)
}

// Profile returns the caller's own account.
func (s *UserService) Profile(ctx context.Context, sub *policy.Subject) (*model.User, error) {
	if sub == nil {
		return nil, common.ErrUnauthenticated
	}
	if err := s.policy.Authorize(sub, policy.ViewProfile, policy.Resource{SubjectId: sub.Id}); err != nil {
		return nil, err
	}
	return s.getUser(database.GetDB().WithContext(ctx), sub.Id)
}

func (s *UserService) UpdateProfile(ctx context.Context, sub *policy.Subject, req *entity.ProfileUpdateRequest) error {
	if sub == nil {
		return common.ErrUnauthenticated
	}
	if err := s.policy.Authorize(sub, policy.UpdateProfile, policy.Resource{SubjectId: sub.Id}); err != nil {
		return err
	}
	req.Normalize()
	if err := validation.Struct(req); err != nil {
		return err
	}
	res := database.GetDB().WithContext(ctx).
		Model(&model.User{}).
		Where("id = ?", sub.Id).
		Updates(map[string]any{"name": req.Name, "address": req.Address})
	if res.Error != nil {
		return common.Internal("update profile", res.Error)
	}
	if res.RowsAffected == 0 {
		return common.NotFound("user not found")
	}
	return nil
}

// ChangePassword replaces the caller's password after checking the current
// one. Rule failures and a wrong current password are reported together;
// the write re-checks the current password in its transaction.
func (s *UserService) ChangePassword(ctx context.Context, sub *policy.Subject, req *entity.PasswordChangeRequest) error {
	if sub == nil {
		return common.ErrUnauthenticated
	}
	if err := s.policy.Authorize(sub, policy.ChangePassword, policy.Resource{SubjectId: sub.Id}); err != nil {
		return err
	}
	user, err := s.getUser(database.GetDB().WithContext(ctx), sub.Id)
	if err != nil {
		return err
	}
	var currentErr error
	if req.CurrentPassword != "" && !crypto.CheckPasswordHash(user.Password, req.CurrentPassword) {
		currentErr = validation.Field("currentPassword", "is incorrect")
	}
	if err := validation.Merge(validation.Struct(req), currentErr); err != nil {
		return err
	}
	hash, err := crypto.HashPassword(req.NewPassword)
	if err != nil {
		return common.Internal("hash password", err)
	}
	return database.Transaction(ctx, func(tx *gorm.DB) error {
		user, err := s.getUser(tx, sub.Id)
		if err != nil {
			return err
		}
		if !crypto.CheckPasswordHash(user.Password, req.CurrentPassword) {
			return validation.Field("currentPassword", "is incorrect")
		}
		err = tx.Model(user).Update("password", hash).Error
		if err != nil {
			return common.Internal("update password", err)
		}
		logger.Infof("user %d changed password", user.Id)
		return nil
	})
}

// ListUsers returns every account, newest first.
func (s *UserService) ListUsers(ctx context.Context, sub *policy.Subject) ([]model.User, error) {
	if err := s.policy.Authorize(sub, policy.ListUsers, policy.Resource{}); err != nil {
		return nil, err
	}
	var users []model.User
	err := database.GetDB().WithContext(ctx).
		Order("created_at DESC, id DESC").
		Find(&users).
		Error
	if err != nil {
		return nil, common.Internal("list users", err)
	}
	return users, nil
}

// EnsureAdmin creates an admin account or, when the email is taken,
// promotes that account to admin and resets its password. It reports
// whether a new account was created.
func (s *UserService) EnsureAdmin(ctx context.Context, name, email, password, address string) (*model.User, bool, error) {
	req := &entity.RegisterRequest{
		Name:     name,
		Email:    email,
		Password: password,
		Address:  address,
		Role:     model.RoleAdmin.String(),
	}
	req.Normalize()
	if err := validation.Struct(req); err != nil {
		return nil, false, err
	}
	hash, err := crypto.HashPassword(req.Password)
	if err != nil {
		return nil, false, common.Internal("hash password", err)
	}

	user := &model.User{}
	created := false
	err = database.Transaction(ctx, func(tx *gorm.DB) error {
		err := tx.Where("email = ?", req.Email).First(user).Error
		if database.IsNotFound(err) {
			*user = model.User{
				Name:     req.Name,
				Email:    req.Email,
				Password: hash,
				Address:  req.Address,
				Role:     model.RoleAdmin,
			}
			created = true
			return tx.Create(user).Error
		} else if err != nil {
			return err
		}
		user.Name = req.Name
		user.Password = hash
		user.Address = req.Address
		user.Role = model.RoleAdmin
		return tx.Save(user).Error
	})
	if err != nil {
		return nil, false, common.Internal("ensure admin", err)
	}
	return user, created, nil
}

func (s *UserService) getUser(db *gorm.DB, id int) (*model.User, error) {
	user := &model.User{}
	err := db.Where("id = ?", id).First(user).Error
	if database.IsNotFound(err) {
		return nil, common.NotFound("user not found")
	} else if err != nil {
		return nil, common.Internal("load user", err)
	}
	return user, nil
}
