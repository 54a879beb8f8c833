// Package cache provides a short-TTL redis cache for seat-availability
// reads. The seat map itself stays authoritative in Postgres; the cache only
// absorbs the read traffic of seat pickers polling availability.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/roadlink/car-booking-backend/internal/models"
	"github.com/sirupsen/logrus"
)

func seatKey(tripID string) string {
	return fmt.Sprintf("seats:%s", tripID)
}

// SeatCache caches the available-seats view per trip. All methods are safe
// on a nil receiver so the cache can be disabled by simply not wiring it.
type SeatCache struct {
	client *redis.Client
	ttl    time.Duration
	logger *logrus.Logger
}

// NewSeatCache creates a seat cache backed by the given redis client
func NewSeatCache(client *redis.Client, ttl time.Duration, logger *logrus.Logger) *SeatCache {
	return &SeatCache{client: client, ttl: ttl, logger: logger}
}

// GetAvailableSeats returns the cached available-seats view for a trip.
// The second return value reports a cache hit.
func (c *SeatCache) GetAvailableSeats(ctx context.Context, tripID string) (models.SeatMap, bool) {
	if c == nil || c.client == nil {
		return nil, false
	}

	data, err := c.client.Get(ctx, seatKey(tripID)).Bytes()
	if err == redis.Nil {
		return nil, false
	}
	if err != nil {
		c.logger.WithError(err).WithField("trip_id", tripID).Warn("Seat cache read failed")
		return nil, false
	}

	var seats models.SeatMap
	if err := json.Unmarshal(data, &seats); err != nil {
		c.logger.WithError(err).WithField("trip_id", tripID).Warn("Seat cache entry corrupt")
		return nil, false
	}

	return seats, true
}

// SetAvailableSeats stores the available-seats view for a trip
func (c *SeatCache) SetAvailableSeats(ctx context.Context, tripID string, seats models.SeatMap) {
	if c == nil || c.client == nil {
		return
	}

	data, err := json.Marshal(seats)
	if err != nil {
		return
	}

	if err := c.client.Set(ctx, seatKey(tripID), data, c.ttl).Err(); err != nil {
		c.logger.WithError(err).WithField("trip_id", tripID).Warn("Seat cache write failed")
	}
}

// Invalidate drops the cached view after a seat mutation commits
func (c *SeatCache) Invalidate(ctx context.Context, tripID string) {
	if c == nil || c.client == nil {
		return
	}

	if err := c.client.Del(ctx, seatKey(tripID)).Err(); err != nil {
		c.logger.WithError(err).WithField("trip_id", tripID).Warn("Seat cache invalidation failed")
	}
}
