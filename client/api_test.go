package client

import (
	"context"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/storerate/storerate/config"
	"github.com/storerate/storerate/database"
	"github.com/storerate/storerate/util/common"
	"github.com/storerate/storerate/util/crypto"
	"github.com/storerate/storerate/web"
	"github.com/storerate/storerate/web/entity"
)

func newLiveAPI(t *testing.T) string {
	t.Helper()
	crypto.Cost = bcrypt.MinCost
	require.NoError(t, database.InitDB(filepath.Join(t.TempDir(), "client.db")))
	t.Cleanup(func() { _ = database.CloseDB() })
	srv := web.NewServer(&config.Config{
		BasePath:          "/api",
		RequestTimeout:    5 * time.Second,
		JWTSecret:         "secret",
		TokenTTL:          time.Hour,
		AuthRatePerMinute: 600,
		AuthRateBurst:     20,
	})
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return ts.URL + "/api"
}

func TestClientRatingFlow(t *testing.T) {
	base := newLiveAPI(t)
	ctx := context.Background()

	owner, err := NewSession(base)
	require.NoError(t, err)
	require.NoError(t, owner.Register(ctx, entity.RegisterRequest{
		Name: "Owner With A Long Name", Email: "o@x.com", Password: "Passw0rd!", Role: "owner",
	}))
	stores, err := owner.CreateStoreAndReload(ctx, entity.StoreRequest{
		Name: "Corner Shop On Main Street", Email: "shop@x.com", Address: "1 Main St",
	})
	require.NoError(t, err)
	require.Len(t, stores, 1)
	storeId := stores[0].Id

	a, err := NewSession(base)
	require.NoError(t, err)
	require.NoError(t, a.Register(ctx, entity.RegisterRequest{
		Name: "Twenty Character Name!!", Email: "a@x.com", Password: "Passw0rd!", Role: "user",
	}))

	view, err := a.RateAndReload(ctx, storeId, 4)
	require.NoError(t, err)
	assert.Equal(t, 4.0, view.AverageRating)
	assert.Equal(t, int64(1), view.TotalRatings)

	view, err = a.RateAndReload(ctx, storeId, 2)
	require.NoError(t, err)
	assert.Equal(t, 2.0, view.AverageRating)
	assert.Equal(t, int64(1), view.TotalRatings)

	_, err = owner.Rate(ctx, storeId, 5)
	assert.True(t, IsKind(err, common.KindAuthorization))

	ratings, err := owner.OwnerRatings(ctx)
	require.NoError(t, err)
	require.Len(t, ratings, 1)

	ratings, err = owner.RespondAndReload(ctx, ratings[0].Id, "Thanks for the feedback")
	require.NoError(t, err)
	require.NotNil(t, ratings[0].OwnerResponse)
	assert.Equal(t, "Thanks for the feedback", *ratings[0].OwnerResponse)

	avg, err := a.Average(ctx, storeId)
	require.NoError(t, err)
	assert.Equal(t, 2.0, avg.Average)
}

func TestClientProfileAndPassword(t *testing.T) {
	base := newLiveAPI(t)
	ctx := context.Background()

	s, err := NewSession(base)
	require.NoError(t, err)
	require.NoError(t, s.Register(ctx, entity.RegisterRequest{
		Name: "Twenty Character Name!!", Email: "a@x.com", Password: "Passw0rd!", Role: "user",
	}))

	user, err := s.UpdateProfileAndReload(ctx, entity.ProfileUpdateRequest{Name: "Al", Address: "2 Side St"})
	require.NoError(t, err)
	assert.Equal(t, "Al", user.Name)
	assert.Equal(t, "2 Side St", user.Address)

	err = s.ChangePassword(ctx, entity.PasswordChangeRequest{
		CurrentPassword: "Passw0rd!", NewPassword: "N3w-Secret", ConfirmPassword: "N3w-Secret",
	})
	require.NoError(t, err)

	require.NoError(t, s.Refresh(ctx))
	assert.True(t, s.LoggedIn())

	require.NoError(t, s.Logout())
	_, err = s.Profile(ctx)
	assert.ErrorIs(t, err, ErrSessionExpired)

	err = s.Login(ctx, "a@x.com", "Passw0rd!")
	assert.True(t, IsKind(err, common.KindAuthentication))
	require.NoError(t, s.Login(ctx, "a@x.com", "N3w-Secret"))
}
