package service

import (
	"context"

	"github.com/storerate/storerate/database"
	"github.com/storerate/storerate/database/model"
	"github.com/storerate/storerate/util/common"
)

// Stats are row counts across the catalogue.
type Stats struct {
	Stores  int64
	Ratings int64
	Users   map[model.Role]int64
}

type StatsService struct{}

func (s *StatsService) Collect(ctx context.Context) (*Stats, error) {
	if database.GetDB() == nil {
		return nil, common.Internal("database is not open", nil)
	}
	db := database.GetDB().WithContext(ctx)
	st := &Stats{Users: make(map[model.Role]int64, len(model.Roles))}

	if err := db.Model(&model.Store{}).Count(&st.Stores).Error; err != nil {
		return nil, common.Internal("count stores", err)
	}
	if err := db.Model(&model.Rating{}).Count(&st.Ratings).Error; err != nil {
		return nil, common.Internal("count ratings", err)
	}

	var rows []struct {
		Role  model.Role
		Count int64
	}
	err := db.Model(&model.User{}).Select("role, COUNT(*) AS count").Group("role").Scan(&rows).Error
	if err != nil {
		return nil, common.Internal("count users", err)
	}
	for _, r := range model.Roles {
		st.Users[r] = 0
	}
	for _, r := range rows {
		st.Users[r.Role] = r.Count
	}
	return st, nil
}
