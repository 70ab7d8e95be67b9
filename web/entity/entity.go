// Package entity defines the request and response shapes of the HTTP API.
package entity

import (
	"errors"
	"strings"
	"time"

	"github.com/storerate/storerate/config"
	"github.com/storerate/storerate/database/model"
	"github.com/storerate/storerate/util/common"
)

// Msg is the body of message-only responses.
type Msg struct {
	Success bool   `json:"success"`
	Msg     string `json:"msg"`
	Obj     any    `json:"obj,omitempty"`
}

// ErrorMsg is the body of every error response.
type ErrorMsg struct {
	Success bool                `json:"success"`
	Kind    common.Kind         `json:"kind"`
	Msg     string              `json:"msg"`
	Errors  []common.FieldError `json:"errors,omitempty"`
}

type TokenResponse struct {
	Token string `json:"token"`
}

type RegisterRequest struct {
	Name     string `json:"name" validate:"required,min=20,max=60"`
	Email    string `json:"email" validate:"required,email,max=255"`
	Password string `json:"password" validate:"required,min=8"`
	Address  string `json:"address" validate:"max=400"`
	Role     string `json:"role" validate:"required,oneof=user owner admin"`
}

func (r *RegisterRequest) Normalize() {
	r.Name = strings.TrimSpace(r.Name)
	r.Email = strings.ToLower(strings.TrimSpace(r.Email))
	r.Address = strings.TrimSpace(r.Address)
	r.Role = strings.TrimSpace(r.Role)
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

func (r *LoginRequest) Normalize() {
	r.Email = strings.ToLower(strings.TrimSpace(r.Email))
}

type ProfileUpdateRequest struct {
	Name    string `json:"name" validate:"required,min=2,max=60"`
	Address string `json:"address" validate:"max=400"`
}

func (r *ProfileUpdateRequest) Normalize() {
	r.Name = strings.TrimSpace(r.Name)
	r.Address = strings.TrimSpace(r.Address)
}

type PasswordChangeRequest struct {
	CurrentPassword string `json:"currentPassword" validate:"required"`
	NewPassword     string `json:"newPassword" validate:"required,min=8,strongpassword,nefield=CurrentPassword"`
	ConfirmPassword string `json:"confirmPassword" validate:"required,eqfield=NewPassword"`
}

// StoreRequest is the body of public store creation and admin update. OwnerId
// is the canonical owner reference; snake_case owner_id is not accepted.
type StoreRequest struct {
	Name    string `json:"name" validate:"required,min=20,max=60"`
	Email   string `json:"email" validate:"required,email,max=255"`
	Address string `json:"address" validate:"required,max=400"`
	OwnerId int    `json:"ownerId" validate:"gte=0"`
}

func (r *StoreRequest) Normalize() {
	r.Name = strings.TrimSpace(r.Name)
	r.Email = strings.ToLower(strings.TrimSpace(r.Email))
	r.Address = strings.TrimSpace(r.Address)
}

// AdminStoreRequest requires an explicit owner.
type AdminStoreRequest struct {
	Name    string `json:"name" validate:"required,min=20,max=60"`
	Email   string `json:"email" validate:"required,email,max=255"`
	Address string `json:"address" validate:"required,max=400"`
	OwnerId int    `json:"ownerId" validate:"required,gte=1"`
}

func (r *AdminStoreRequest) Normalize() {
	r.Name = strings.TrimSpace(r.Name)
	r.Email = strings.ToLower(strings.TrimSpace(r.Email))
	r.Address = strings.TrimSpace(r.Address)
}

type RatingRequest struct {
	StoreId int `json:"storeId" validate:"required,gte=1"`
	Score   int `json:"score" validate:"required,min=1,max=5"`
}

type RespondRequest struct {
	Response string `json:"response" validate:"notblank,max=1000"`
}

func (r *RespondRequest) Normalize() {
	r.Response = strings.TrimSpace(r.Response)
}

// UserView is a user without credentials.
type UserView struct {
	Id        int        `json:"id"`
	Name      string     `json:"name"`
	Email     string     `json:"email"`
	Address   string     `json:"address"`
	Role      model.Role `json:"role"`
	CreatedAt time.Time  `json:"createdAt"`
}

func NewUserView(u *model.User) UserView {
	return UserView{Id: u.Id, Name: u.Name, Email: u.Email, Address: u.Address, Role: u.Role, CreatedAt: u.CreatedAt}
}

// StoreView is a store with its rating aggregate.
type StoreView struct {
	model.Store
	AverageRating float64 `json:"averageRating"`
	TotalRatings  int64   `json:"totalRatings"`
}

// RatingResult is returned by create-or-update.
type RatingResult struct {
	Id      int  `json:"id"`
	UserId  int  `json:"userId"`
	StoreId int  `json:"storeId"`
	Score   int  `json:"score"`
	Created bool `json:"created"`
}

// RatingView is a rating joined with its author and store.
type RatingView struct {
	model.Rating
	UserName     string `json:"userName"`
	StoreName    string `json:"storeName,omitempty"`
	StoreAddress string `json:"storeAddress,omitempty"`
	StoreOwnerId int    `json:"-"`
}

// RatingAverage is the aggregate for one store.
type RatingAverage struct {
	Average      float64 `json:"average"`
	TotalRatings int64   `json:"totalRatings"`
	Lowest       *int    `json:"lowest"`
	Highest      *int    `json:"highest"`
}

type AverageResponse struct {
	Average RatingAverage `json:"average"`
}

// NewErrorMsg maps err to a status code and error body. Internal causes are
// hidden unless debug mode is on.
func NewErrorMsg(err error) (int, ErrorMsg) {
	var appErr *common.AppError
	if !errors.As(err, &appErr) {
		appErr = common.Internal("internal server error", err)
	}
	m := ErrorMsg{Kind: appErr.Kind, Msg: appErr.Msg, Errors: appErr.Fields}
	if appErr.Kind == common.KindInternal {
		m.Msg = "internal server error"
		if config.IsDebug() {
			m.Msg = err.Error()
		}
	}
	return appErr.Kind.Status(), m
}
