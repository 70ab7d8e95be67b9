package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/storerate/storerate/database/model"
	"github.com/storerate/storerate/web/entity"
)

func TestStatsCollect(t *testing.T) {
	f := setup(t)
	owner := f.addUser(t, "o@x.com", model.RoleOwner)
	user := f.addUser(t, "u@x.com", model.RoleUser)
	s := f.addStore(t, owner, "s@x.com")
	_, err := f.ratings.CreateOrUpdate(f.ctx, user, &entity.RatingRequest{StoreId: s.Id, Score: 5})
	require.NoError(t, err)

	st, err := (&StatsService{}).Collect(f.ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), st.Stores)
	assert.Equal(t, int64(1), st.Ratings)
	assert.Equal(t, int64(1), st.Users[model.RoleOwner])
	assert.Equal(t, int64(1), st.Users[model.RoleUser])
	assert.Equal(t, int64(0), st.Users[model.RoleAdmin])
}
