package client

import (
	"context"
	"fmt"
	"net/http"

	"github.com/storerate/storerate/database/model"
	"github.com/storerate/storerate/web/entity"
)

func (s *Session) Register(ctx context.Context, req entity.RegisterRequest) error {
	var res entity.TokenResponse
	if err := s.do(ctx, http.MethodPost, "/users/register", req, &res, false); err != nil {
		return err
	}
	return s.SetToken(res.Token)
}

func (s *Session) Login(ctx context.Context, email, password string) error {
	var res entity.TokenResponse
	req := entity.LoginRequest{Email: email, Password: password}
	if err := s.do(ctx, http.MethodPost, "/users/login", req, &res, false); err != nil {
		return err
	}
	return s.SetToken(res.Token)
}

// Refresh exchanges the current token for a new one. A rejected refresh
// logs the session out.
func (s *Session) Refresh(ctx context.Context) error {
	_, err := s.renew(ctx, s.token.Load())
	return err
}

func (s *Session) Profile(ctx context.Context) (*entity.UserView, error) {
	user := &entity.UserView{}
	if err := s.do(ctx, http.MethodGet, "/users/profile", nil, user, true); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *Session) UpdateProfile(ctx context.Context, req entity.ProfileUpdateRequest) error {
	return s.do(ctx, http.MethodPut, "/users/profile", req, nil, true)
}

func (s *Session) ChangePassword(ctx context.Context, req entity.PasswordChangeRequest) error {
	return s.do(ctx, http.MethodPut, "/users/password", req, nil, true)
}

func (s *Session) ListUsers(ctx context.Context) ([]entity.UserView, error) {
	var users []entity.UserView
	if err := s.do(ctx, http.MethodGet, "/users", nil, &users, true); err != nil {
		return nil, err
	}
	return users, nil
}

func (s *Session) ListStores(ctx context.Context) ([]entity.StoreView, error) {
	var stores []entity.StoreView
	if err := s.do(ctx, http.MethodGet, "/stores", nil, &stores, false); err != nil {
		return nil, err
	}
	return stores, nil
}

func (s *Session) GetStore(ctx context.Context, id int) (*entity.StoreView, error) {
	store := &entity.StoreView{}
	if err := s.do(ctx, http.MethodGet, fmt.Sprintf("/stores/%d", id), nil, store, false); err != nil {
		return nil, err
	}
	return store, nil
}

func (s *Session) CreateStore(ctx context.Context, req entity.StoreRequest) (*model.Store, error) {
	store := &model.Store{}
	if err := s.do(ctx, http.MethodPost, "/stores", req, store, true); err != nil {
		return nil, err
	}
	return store, nil
}

func (s *Session) AdminCreateStore(ctx context.Context, req entity.AdminStoreRequest) (*model.Store, error) {
	store := &model.Store{}
	if err := s.do(ctx, http.MethodPost, "/admin/stores", req, store, true); err != nil {
		return nil, err
	}
	return store, nil
}

func (s *Session) UpdateStore(ctx context.Context, id int, req entity.StoreRequest) error {
	return s.do(ctx, http.MethodPut, fmt.Sprintf("/stores/%d", id), req, nil, true)
}

func (s *Session) DeleteStore(ctx context.Context, id int) error {
	return s.do(ctx, http.MethodDelete, fmt.Sprintf("/stores/%d", id), nil, nil, true)
}

// Rate submits or replaces the caller's score for a store.
func (s *Session) Rate(ctx context.Context, storeId, score int) (*entity.RatingResult, error) {
	result := &entity.RatingResult{}
	req := entity.RatingRequest{StoreId: storeId, Score: score}
	if err := s.do(ctx, http.MethodPost, "/ratings", req, result, true); err != nil {
		return nil, err
	}
	return result, nil
}

func (s *Session) StoreRatings(ctx context.Context, storeId int) ([]entity.RatingView, error) {
	var ratings []entity.RatingView
	if err := s.do(ctx, http.MethodGet, fmt.Sprintf("/ratings/%d", storeId), nil, &ratings, true); err != nil {
		return nil, err
	}
	return ratings, nil
}

func (s *Session) Average(ctx context.Context, storeId int) (*entity.RatingAverage, error) {
	var res entity.AverageResponse
	if err := s.do(ctx, http.MethodGet, fmt.Sprintf("/ratings/%d/average", storeId), nil, &res, false); err != nil {
		return nil, err
	}
	return &res.Average, nil
}

func (s *Session) OwnerRatings(ctx context.Context) ([]entity.RatingView, error) {
	var ratings []entity.RatingView
	if err := s.do(ctx, http.MethodGet, "/owners/ratings", nil, &ratings, true); err != nil {
		return nil, err
	}
	return ratings, nil
}

func (s *Session) Respond(ctx context.Context, ratingId int, response string) (*entity.RatingView, error) {
	view := &entity.RatingView{}
	req := entity.RespondRequest{Response: response}
	if err := s.do(ctx, http.MethodPost, fmt.Sprintf("/owners/ratings/%d/respond", ratingId), req, view, true); err != nil {
		return nil, err
	}
	return view, nil
}
