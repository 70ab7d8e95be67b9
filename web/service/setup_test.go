package service

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/storerate/storerate/database"
	"github.com/storerate/storerate/database/model"
	"github.com/storerate/storerate/util/crypto"
	"github.com/storerate/storerate/web/policy"
)

type fixture struct {
	ctx     context.Context
	tokens  *TokenService
	users   *UserService
	stores  *StoreService
	ratings *RatingService
}

func setup(t *testing.T) *fixture {
	t.Helper()
	crypto.Cost = bcrypt.MinCost
	require.NoError(t, database.InitDB(filepath.Join(t.TempDir(), "storerate.db")))
	t.Cleanup(func() { _ = database.CloseDB() })

	tokens := NewTokenService("test-secret", 0)
	p := policy.Policy{}
	return &fixture{
		ctx:     context.Background(),
		tokens:  tokens,
		users:   NewUserService(tokens, p),
		stores:  NewStoreService(p),
		ratings: NewRatingService(p),
	}
}

func (f *fixture) addUser(t *testing.T, email string, role model.Role) *policy.Subject {
	t.Helper()
	hash, err := crypto.HashPassword("Passw0rd!")
	require.NoError(t, err)
	u := &model.User{Name: "Someone With A Long Name", Email: email, Password: hash, Role: role}
	require.NoError(t, database.GetDB().Create(u).Error)
	return &policy.Subject{Id: u.Id, Role: u.Role}
}

func (f *fixture) addStore(t *testing.T, owner *policy.Subject, email string) *model.Store {
	t.Helper()
	s := &model.Store{OwnerId: owner.Id, Name: "Corner Shop On Main Street", Email: email, Address: "1 Main St"}
	require.NoError(t, database.GetDB().Create(s).Error)
	return s
}
