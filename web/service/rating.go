package service

import (
	"context"
	"errors"
	"time"

	"github.com/storerate/storerate/database"
	"github.com/storerate/storerate/database/model"
	"github.com/storerate/storerate/logger"
	"github.com/storerate/storerate/util/common"
	"github.com/storerate/storerate/web/entity"
	"github.com/storerate/storerate/web/policy"
	"github.com/storerate/storerate/web/validation"

	"gorm.io/gorm"
)

// errRatingRace marks an insert that lost to a concurrent insert of the same
// (user, store) pair.
var errRatingRace = errors.New("rating inserted concurrently")

const ratingViewColumns = "ratings.*, users.name AS user_name, stores.name AS store_name, stores.address AS store_address, stores.owner_id AS store_owner_id"

// RatingService records ratings and owner responses.
type RatingService struct {
	policy policy.Policy
	now    func() time.Time
}

func NewRatingService(p policy.Policy) *RatingService {
	return &RatingService{policy: p, now: time.Now}
}

// CreateOrUpdate stores the caller's score for a store. A second submission
// for the same store replaces the score and keeps the rating id.
func (s *RatingService) CreateOrUpdate(ctx context.Context, sub *policy.Subject, req *entity.RatingRequest) (*entity.RatingResult, error) {
	if err := s.policy.Authorize(sub, policy.RateStore, policy.Resource{}); err != nil {
		return nil, err
	}
	if err := validation.Struct(req); err != nil {
		return nil, err
	}

	result, err := s.upsert(ctx, sub.Id, req)
	if errors.Is(err, errRatingRace) {
		logger.Debugf("rating by user %d on store %d raced, retrying", sub.Id, req.StoreId)
		result, err = s.upsert(ctx, sub.Id, req)
		if errors.Is(err, errRatingRace) {
			return nil, common.Conflict("rating was submitted concurrently, try again", err)
		}
	}
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (s *RatingService) upsert(ctx context.Context, userId int, req *entity.RatingRequest) (*entity.RatingResult, error) {
	result := &entity.RatingResult{UserId: userId, StoreId: req.StoreId, Score: req.Score}
	err := database.Transaction(ctx, func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&model.Store{}).Where("id = ?", req.StoreId).Count(&count).Error; err != nil {
			return common.Internal("load store", err)
		}
		if count == 0 {
			return common.NotFound("store not found")
		}

		rating := &model.Rating{}
		err := tx.Where("user_id = ? AND store_id = ?", userId, req.StoreId).First(rating).Error
		switch {
		case err == nil:
			if err = tx.Model(rating).Update("score", req.Score).Error; err != nil {
				return common.Internal("update rating", err)
			}
			result.Id = rating.Id
			result.Created = false
			return nil
		case !database.IsNotFound(err):
			return common.Internal("load rating", err)
		}

		rating = &model.Rating{UserId: userId, StoreId: req.StoreId, Score: req.Score}
		err = tx.Create(rating).Error
		if database.IsDuplicateKey(err) {
			return errRatingRace
		} else if err != nil {
			return common.Internal("create rating", err)
		}
		result.Id = rating.Id
		result.Created = true
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// StoreRatings lists a store's ratings with reviewer names, newest first.
func (s *RatingService) StoreRatings(ctx context.Context, sub *policy.Subject, storeId int) ([]entity.RatingView, error) {
	if err := s.policy.Authorize(sub, policy.ViewStoreRatings, policy.Resource{}); err != nil {
		return nil, err
	}
	views := []entity.RatingView{}
	err := ratingViewQuery(database.GetDB().WithContext(ctx)).
		Where("ratings.store_id = ?", storeId).
		Order("ratings.created_at DESC, ratings.id DESC").
		Scan(&views).
		Error
	if err != nil {
		return nil, common.Internal("list ratings", err)
	}
	return views, nil
}

// Average summarizes a store's scores. A store without ratings, or an
// unknown store, reports zeros and no lowest or highest score.
func (s *RatingService) Average(ctx context.Context, storeId int) (*entity.RatingAverage, error) {
	avg := &entity.RatingAverage{}
	err := database.GetDB().WithContext(ctx).
		Model(&model.Rating{}).
		Select("COALESCE(AVG(score), 0) AS average, COUNT(id) AS total_ratings, MIN(score) AS lowest, MAX(score) AS highest").
		Where("store_id = ?", storeId).
		Scan(avg).
		Error
	if err != nil {
		return nil, common.Internal("average rating", err)
	}
	avg.Average = model.RoundAverage(avg.Average)
	return avg, nil
}

// OwnerRatings lists the ratings on every store the caller owns.
func (s *RatingService) OwnerRatings(ctx context.Context, sub *policy.Subject) ([]entity.RatingView, error) {
	if err := s.policy.Authorize(sub, policy.ViewOwnerRatings, policy.Resource{}); err != nil {
		return nil, err
	}
	q := ratingViewQuery(database.GetDB().WithContext(ctx))
	if !s.policy.SeesAllStores(sub) {
		q = q.Where("stores.owner_id = ?", sub.Id)
	}
	views := []entity.RatingView{}
	err := q.Order("ratings.created_at DESC, ratings.id DESC").Scan(&views).Error
	if err != nil {
		return nil, common.Internal("list owner ratings", err)
	}
	return views, nil
}

// Respond sets the owner's reply on a rating, replacing any earlier reply.
// A rating that does not exist and one on someone else's store fail the
// same way.
func (s *RatingService) Respond(ctx context.Context, sub *policy.Subject, ratingId int, req *entity.RespondRequest) (*entity.RatingView, error) {
	if err := s.policy.Authorize(sub, policy.RespondRating, policy.Resource{}); err != nil {
		return nil, err
	}
	req.Normalize()
	if err := validation.Struct(req); err != nil {
		return nil, err
	}

	view := &entity.RatingView{}
	err := database.Transaction(ctx, func(tx *gorm.DB) error {
		var found []entity.RatingView
		q := ratingViewQuery(tx).Where("ratings.id = ?", ratingId)
		if !s.policy.SeesAllStores(sub) {
			q = q.Where("stores.owner_id = ?", sub.Id)
		}
		if err := q.Scan(&found).Error; err != nil {
			return common.Internal("load rating", err)
		}
		if len(found) == 0 {
			return common.ErrNotFoundOrUnauthorized
		}
		*view = found[0]
		if err := s.policy.Authorize(sub, policy.RespondRating, policy.Resource{OwnerId: view.StoreOwnerId}); err != nil {
			return err
		}

		now := s.now()
		response := req.Response
		err := tx.Model(&model.Rating{}).
			Where("id = ?", ratingId).
			Updates(map[string]any{"owner_response": response, "owner_response_date": now}).
			Error
		if err != nil {
			return common.Internal("save response", err)
		}
		view.OwnerResponse = &response
		view.OwnerResponseDate = &now
		return nil
	})
	if err != nil {
		return nil, err
	}
	logger.Infof("owner %d responded to rating %d", sub.Id, ratingId)
	return view, nil
}

func ratingViewQuery(db *gorm.DB) *gorm.DB {
	return db.Model(&model.Rating{}).
		Select(ratingViewColumns).
		Joins("JOIN users ON users.id = ratings.user_id").
		Joins("JOIN stores ON stores.id = ratings.store_id")
}
