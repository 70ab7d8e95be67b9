package service

import (
	"context"

	"github.com/storerate/storerate/database"
	"github.com/storerate/storerate/database/model"
	"github.com/storerate/storerate/logger"
	"github.com/storerate/storerate/util/common"
	"github.com/storerate/storerate/web/entity"
	"github.com/storerate/storerate/web/policy"
	"github.com/storerate/storerate/web/validation"

	"gorm.io/gorm"
)

// StoreService manages stores and reads them together with their rating
// aggregates.
type StoreService struct {
	policy policy.Policy
}

func NewStoreService(p policy.Policy) *StoreService {
	return &StoreService{policy: p}
}

// Create adds a store. Owners always own what they create. Admins may name
// an owner; without one the admin becomes the nominal owner.
func (s *StoreService) Create(ctx context.Context, sub *policy.Subject, req *entity.StoreRequest) (*model.Store, error) {
	if err := s.policy.Authorize(sub, policy.CreateStore, policy.Resource{}); err != nil {
		return nil, err
	}
	req.Normalize()
	if err := validation.Struct(req); err != nil {
		return nil, err
	}

	ownerId := sub.Id
	if s.policy.Can(sub, policy.AdminCreateStore, policy.Resource{}) && req.OwnerId != 0 {
		ownerId = req.OwnerId
	}
	store := &model.Store{OwnerId: ownerId, Name: req.Name, Email: req.Email, Address: req.Address}
	err := database.Transaction(ctx, func(tx *gorm.DB) error {
		if ownerId != sub.Id {
			if err := checkOwner(tx, ownerId); err != nil {
				return err
			}
		}
		return insertStore(tx, store)
	})
	if err != nil {
		return nil, err
	}
	return store, nil
}

// AdminCreate adds a store on behalf of an existing owner account.
func (s *StoreService) AdminCreate(ctx context.Context, sub *policy.Subject, req *entity.AdminStoreRequest) (*model.Store, error) {
	if err := s.policy.Authorize(sub, policy.AdminCreateStore, policy.Resource{}); err != nil {
		return nil, err
	}
	req.Normalize()
	if err := validation.Struct(req); err != nil {
		return nil, err
	}
	store := &model.Store{OwnerId: req.OwnerId, Name: req.Name, Email: req.Email, Address: req.Address}
	err := database.Transaction(ctx, func(tx *gorm.DB) error {
		if err := checkOwner(tx, req.OwnerId); err != nil {
			return err
		}
		return insertStore(tx, store)
	})
	if err != nil {
		return nil, err
	}
	return store, nil
}

// List returns every store with its average and rating count.
func (s *StoreService) List(ctx context.Context) ([]entity.StoreView, error) {
	views := []entity.StoreView{}
	err := aggregateQuery(database.GetDB().WithContext(ctx)).
		Order("stores.name ASC, stores.id ASC").
		Scan(&views).
		Error
	if err != nil {
		return nil, common.Internal("list stores", err)
	}
	for i := range views {
		views[i].AverageRating = model.RoundAverage(views[i].AverageRating)
	}
	return views, nil
}

// Get returns one store with its aggregate.
func (s *StoreService) Get(ctx context.Context, id int) (*entity.StoreView, error) {
	var views []entity.StoreView
	err := aggregateQuery(database.GetDB().WithContext(ctx)).
		Where("stores.id = ?", id).
		Scan(&views).
		Error
	if err != nil {
		return nil, common.Internal("load store", err)
	}
	if len(views) == 0 {
		return nil, common.NotFound("store not found")
	}
	view := &views[0]
	view.AverageRating = model.RoundAverage(view.AverageRating)
	return view, nil
}

// Update rewrites the store's name, email and address.
func (s *StoreService) Update(ctx context.Context, sub *policy.Subject, id int, req *entity.StoreRequest) error {
	if err := s.policy.Authorize(sub, policy.UpdateStore, policy.Resource{}); err != nil {
		return err
	}
	req.Normalize()
	if err := validation.Struct(req); err != nil {
		return err
	}
	res := database.GetDB().WithContext(ctx).
		Model(&model.Store{}).
		Where("id = ?", id).
		Updates(map[string]any{"name": req.Name, "email": req.Email, "address": req.Address})
	if database.IsDuplicateKey(res.Error) {
		return common.Conflict("store email already in use", res.Error)
	} else if res.Error != nil {
		return common.Internal("update store", res.Error)
	}
	if res.RowsAffected == 0 {
		return common.NotFound("store not found")
	}
	return nil
}

// Delete removes a store and, by cascade, its ratings.
func (s *StoreService) Delete(ctx context.Context, sub *policy.Subject, id int) error {
	if err := s.policy.Authorize(sub, policy.DeleteStore, policy.Resource{}); err != nil {
		return err
	}
	res := database.GetDB().WithContext(ctx).Delete(&model.Store{}, id)
	if res.Error != nil {
		return common.Internal("delete store", res.Error)
	}
	if res.RowsAffected == 0 {
		return common.NotFound("store not found")
	}
	logger.Infof("store %d deleted by user %d", id, sub.Id)
	return nil
}

func aggregateQuery(db *gorm.DB) *gorm.DB {
	return db.Model(&model.Store{}).
		Select("stores.*, COALESCE(AVG(ratings.score), 0) AS average_rating, COUNT(ratings.id) AS total_ratings").
		Joins("LEFT JOIN ratings ON ratings.store_id = stores.id").
		Group("stores.id")
}

func checkOwner(tx *gorm.DB, ownerId int) error {
	owner := &model.User{}
	err := tx.Where("id = ?", ownerId).First(owner).Error
	if database.IsNotFound(err) {
		return common.ErrInvalidOwner
	} else if err != nil {
		return common.Internal("load owner", err)
	}
	if owner.Role != model.RoleOwner {
		return common.ErrInvalidOwner
	}
	return nil
}

func insertStore(tx *gorm.DB, store *model.Store) error {
	err := tx.Create(store).Error
	if database.IsDuplicateKey(err) {
		return common.Conflict("store email already in use", err)
	} else if database.IsForeignKeyViolation(err) {
		return common.ErrInvalidOwner
	} else if err != nil {
		return common.Internal("create store", err)
	}
	logger.Infof("store %d created for owner %d", store.Id, store.OwnerId)
	return nil
}
