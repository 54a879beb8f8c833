package cache

import (
	"context"
	"encoding/json"
	"io"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
	"github.com/roadlink/car-booking-backend/internal/models"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCache(t *testing.T) (*SeatCache, redismock.ClientMock) {
	t.Helper()
	client, mock := redismock.NewClientMock()
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return NewSeatCache(client, 30*time.Second, logger), mock
}

func TestSeatCacheGetAvailableSeats(t *testing.T) {
	ctx := context.Background()

	t.Run("returns the cached view on a hit", func(t *testing.T) {
		cache, mock := newTestCache(t)

		seats := models.DefaultSeatMap(6).Available()
		data, err := json.Marshal(seats)
		require.NoError(t, err)
		mock.ExpectGet("seats:trip-1").SetVal(string(data))

		got, ok := cache.GetAvailableSeats(ctx, "trip-1")
		assert.True(t, ok)
		assert.Equal(t, seats, got)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("misses on an absent key", func(t *testing.T) {
		cache, mock := newTestCache(t)

		mock.ExpectGet("seats:trip-1").RedisNil()

		_, ok := cache.GetAvailableSeats(ctx, "trip-1")
		assert.False(t, ok)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("misses on a corrupt entry", func(t *testing.T) {
		cache, mock := newTestCache(t)

		mock.ExpectGet("seats:trip-1").SetVal("not json")

		_, ok := cache.GetAvailableSeats(ctx, "trip-1")
		assert.False(t, ok)
	})

	t.Run("a nil cache never hits", func(t *testing.T) {
		var cache *SeatCache

		_, ok := cache.GetAvailableSeats(ctx, "trip-1")
		assert.False(t, ok)
	})
}

func TestSeatCacheSetAvailableSeats(t *testing.T) {
	ctx := context.Background()
	cache, mock := newTestCache(t)

	seats := models.DefaultSeatMap(6).Available()
	data, err := json.Marshal(seats)
	require.NoError(t, err)
	mock.ExpectSet("seats:trip-1", data, 30*time.Second).SetVal("OK")

	cache.SetAvailableSeats(ctx, "trip-1", seats)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSeatCacheInvalidate(t *testing.T) {
	ctx := context.Background()
	cache, mock := newTestCache(t)

	mock.ExpectDel("seats:trip-1").SetVal(1)

	cache.Invalidate(ctx, "trip-1")
	assert.NoError(t, mock.ExpectationsWereMet())

	// Safe on a nil cache as well
	var nilCache *SeatCache
	nilCache.Invalidate(ctx, "trip-1")
}
