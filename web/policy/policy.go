// Package policy is the single place where roles and ownership decide what a
// caller may do. Handlers and services ask it instead of comparing roles.
package policy

import (
	"github.com/storerate/storerate/database/model"
	"github.com/storerate/storerate/util/common"
)

type Action int

const (
	Register Action = iota
	Login
	ListStores
	ViewStore
	StoreAverage
	RefreshToken
	ViewStoreRatings
	CreateStore
	AdminCreateStore
	UpdateStore
	DeleteStore
	ListUsers
	RateStore
	ViewOwnerRatings
	RespondRating
	ViewProfile
	UpdateProfile
	ChangePassword
	AdminListStores
	ViewLogs
)

var actionNames = map[Action]string{
	Register:         "register",
	Login:            "login",
	ListStores:       "list stores",
	ViewStore:        "view store",
	StoreAverage:     "view store average",
	RefreshToken:     "refresh token",
	ViewStoreRatings: "view store ratings",
	CreateStore:      "create store",
	AdminCreateStore: "create store as admin",
	UpdateStore:      "update store",
	DeleteStore:      "delete store",
	ListUsers:        "list users",
	RateStore:        "rate store",
	ViewOwnerRatings: "view owner ratings",
	RespondRating:    "respond to rating",
	ViewProfile:      "view profile",
	UpdateProfile:    "update profile",
	ChangePassword:   "change password",
	AdminListStores:  "list stores as admin",
	ViewLogs:         "view logs",
}

func (a Action) String() string {
	if n, ok := actionNames[a]; ok {
		return n
	}
	return "unknown action"
}

// Subject is the authenticated caller.
type Subject struct {
	Id   int
	Role model.Role
}

// Resource describes the target of an action. Zero fields are unknown and
// are not checked, which lets route-level gates run before the target is
// loaded.
type Resource struct {
	OwnerId   int
	SubjectId int
}

// Policy evaluates access rules. The zero value denies admins blanket
// access to owner-only operations.
type Policy struct {
	AdminRespondAll bool
}

// Authorize returns nil if sub may perform act on res. A nil sub is an
// anonymous caller.
func (p Policy) Authorize(sub *Subject, act Action, res Resource) error {
	switch act {
	case Register, Login, ListStores, ViewStore, StoreAverage:
		return nil
	}

	if sub == nil || sub.Id == 0 || !sub.Role.Valid() {
		return common.ErrUnauthenticated
	}

	switch act {
	case RefreshToken, ViewStoreRatings:
		return nil
	case CreateStore:
		return p.allowRoles(act, sub, model.RoleAdmin, model.RoleOwner)
	case AdminCreateStore, AdminListStores, UpdateStore, DeleteStore, ListUsers, ViewLogs:
		return p.allowRoles(act, sub, model.RoleAdmin)
	case RateStore:
		return p.allowRoles(act, sub, model.RoleUser)
	case ViewOwnerRatings:
		if p.AdminRespondAll && sub.Role == model.RoleAdmin {
			return nil
		}
		return p.allowRoles(act, sub, model.RoleOwner)
	case RespondRating:
		if p.AdminRespondAll && sub.Role == model.RoleAdmin {
			return nil
		}
		if sub.Role != model.RoleOwner {
			return deny(act)
		}
		if res.OwnerId != 0 && res.OwnerId != sub.Id {
			return common.ErrNotFoundOrUnauthorized
		}
		return nil
	case ViewProfile, UpdateProfile, ChangePassword:
		if res.SubjectId != 0 && res.SubjectId != sub.Id {
			return deny(act)
		}
		return nil
	}
	return deny(act)
}

// Can is Authorize as a predicate.
func (p Policy) Can(sub *Subject, act Action, res Resource) bool {
	return p.Authorize(sub, act, res) == nil
}

// SeesAllStores reports whether sub may act on ratings of stores it does not
// own.
func (p Policy) SeesAllStores(sub *Subject) bool {
	return sub != nil && p.AdminRespondAll && sub.Role == model.RoleAdmin
}

func (p Policy) allowRoles(act Action, sub *Subject, roles ...model.Role) error {
	for _, r := range roles {
		if sub.Role == r {
			return nil
		}
	}
	return deny(act)
}

func deny(act Action) error {
	return &common.AppError{Kind: common.KindAuthorization, Msg: "not allowed to " + act.String(), Err: common.ErrForbidden}
}
