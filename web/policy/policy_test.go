package policy

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/storerate/storerate/database/model"
	"github.com/storerate/storerate/util/common"
)

var (
	admin = &Subject{Id: 1, Role: model.RoleAdmin}
	owner = &Subject{Id: 2, Role: model.RoleOwner}
	user  = &Subject{Id: 3, Role: model.RoleUser}
)

func TestAuthorizeRoleMatrix(t *testing.T) {
	p := Policy{}
	tests := []struct {
		act     Action
		allowed []*Subject
		denied  []*Subject
	}{
		{CreateStore, []*Subject{admin, owner}, []*Subject{user}},
		{AdminCreateStore, []*Subject{admin}, []*Subject{owner, user}},
		{UpdateStore, []*Subject{admin}, []*Subject{owner, user}},
		{DeleteStore, []*Subject{admin}, []*Subject{owner, user}},
		{ListUsers, []*Subject{admin}, []*Subject{owner, user}},
		{AdminListStores, []*Subject{admin}, []*Subject{owner, user}},
		{ViewLogs, []*Subject{admin}, []*Subject{owner, user}},
		{RateStore, []*Subject{user}, []*Subject{owner, admin}},
		{ViewOwnerRatings, []*Subject{owner}, []*Subject{admin, user}},
		{RespondRating, []*Subject{owner}, []*Subject{admin, user}},
		{RefreshToken, []*Subject{admin, owner, user}, nil},
		{ViewStoreRatings, []*Subject{admin, owner, user}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.act.String(), func(t *testing.T) {
			for _, s := range tt.allowed {
				assert.NoError(t, p.Authorize(s, tt.act, Resource{}), "role %s", s.Role)
			}
			for _, s := range tt.denied {
				err := p.Authorize(s, tt.act, Resource{})
				assert.ErrorIs(t, err, common.ErrForbidden, "role %s", s.Role)
			}
		})
	}
}

func TestAnonymousAccess(t *testing.T) {
	p := Policy{}
	for _, act := range []Action{Register, Login, ListStores, ViewStore, StoreAverage} {
		assert.NoError(t, p.Authorize(nil, act, Resource{}), act.String())
	}
	for _, act := range []Action{RefreshToken, CreateStore, RateStore, ListUsers, ViewProfile} {
		assert.ErrorIs(t, p.Authorize(nil, act, Resource{}), common.ErrUnauthenticated, act.String())
	}
}

func TestUnknownRoleIsUnauthenticated(t *testing.T) {
	p := Policy{}
	err := p.Authorize(&Subject{Id: 9, Role: "superuser"}, ListUsers, Resource{})
	assert.ErrorIs(t, err, common.ErrUnauthenticated)
}

func TestRespondRequiresOwnership(t *testing.T) {
	p := Policy{}
	assert.NoError(t, p.Authorize(owner, RespondRating, Resource{OwnerId: owner.Id}))
	assert.ErrorIs(t, p.Authorize(owner, RespondRating, Resource{OwnerId: 77}), common.ErrNotFoundOrUnauthorized)
}

func TestAdminRespondAll(t *testing.T) {
	p := Policy{AdminRespondAll: true}
	assert.NoError(t, p.Authorize(admin, RespondRating, Resource{OwnerId: 77}))
	assert.NoError(t, p.Authorize(admin, ViewOwnerRatings, Resource{}))
	assert.True(t, p.SeesAllStores(admin))
	assert.False(t, p.SeesAllStores(owner))
	assert.False(t, Policy{}.SeesAllStores(admin))
}

func TestProfileIsSelfOnly(t *testing.T) {
	p := Policy{}
	for _, act := range []Action{ViewProfile, UpdateProfile, ChangePassword} {
		assert.NoError(t, p.Authorize(user, act, Resource{SubjectId: user.Id}))
		assert.ErrorIs(t, p.Authorize(admin, act, Resource{SubjectId: user.Id}), common.ErrForbidden)
	}
}

func TestCan(t *testing.T) {
	p := Policy{}
	assert.True(t, p.Can(user, RateStore, Resource{}))
	assert.False(t, p.Can(owner, RateStore, Resource{}))
}
