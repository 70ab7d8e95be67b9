package client

import (
	"context"

	"github.com/storerate/storerate/web/entity"
)

// The helpers below perform a mutation and then refetch the view it
// affects, so callers always render server state rather than a local guess.

// RateAndReload rates a store and returns the store with its recomputed
// aggregate.
func (s *Session) RateAndReload(ctx context.Context, storeId, score int) (*entity.StoreView, error) {
	if _, err := s.Rate(ctx, storeId, score); err != nil {
		return nil, err
	}
	return s.GetStore(ctx, storeId)
}

// RespondAndReload answers a rating and returns the owner's refreshed list.
func (s *Session) RespondAndReload(ctx context.Context, ratingId int, response string) ([]entity.RatingView, error) {
	if _, err := s.Respond(ctx, ratingId, response); err != nil {
		return nil, err
	}
	return s.OwnerRatings(ctx)
}

func (s *Session) CreateStoreAndReload(ctx context.Context, req entity.StoreRequest) ([]entity.StoreView, error) {
	if _, err := s.CreateStore(ctx, req); err != nil {
		return nil, err
	}
	return s.ListStores(ctx)
}

func (s *Session) UpdateStoreAndReload(ctx context.Context, id int, req entity.StoreRequest) (*entity.StoreView, error) {
	if err := s.UpdateStore(ctx, id, req); err != nil {
		return nil, err
	}
	return s.GetStore(ctx, id)
}

func (s *Session) DeleteStoreAndReload(ctx context.Context, id int) ([]entity.StoreView, error) {
	if err := s.DeleteStore(ctx, id); err != nil {
		return nil, err
	}
	return s.ListStores(ctx)
}

func (s *Session) UpdateProfileAndReload(ctx context.Context, req entity.ProfileUpdateRequest) (*entity.UserView, error) {
	if err := s.UpdateProfile(ctx, req); err != nil {
		return nil, err
	}
	return s.Profile(ctx)
}
