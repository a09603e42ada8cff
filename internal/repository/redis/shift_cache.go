package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/cmlabs-hris/hris-workforce/internal/domain/shift"
	"github.com/cmlabs-hris/hris-workforce/internal/pkg/clock"
	goredis "github.com/redis/go-redis/v9"
)

const DefaultTTL = 10 * time.Minute

// ShiftCache is a read-through cache in front of a shift.ShiftRepository.
// Shift definitions and off dates are cached; assignments are always read
// from the underlying store. Redis failures fall through to the store.
type ShiftCache struct {
	next shift.ShiftRepository
	rdb  *goredis.Client
	ttl  time.Duration
}

func NewShiftCache(next shift.ShiftRepository, rdb *goredis.Client, ttl time.Duration) *ShiftCache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &ShiftCache{next: next, rdb: rdb, ttl: ttl}
}

func shiftKey(id string) string {
	return "shift:" + id
}

func offDateKey(shiftID string, date time.Time) string {
	return fmt.Sprintf("shift:%s:off:%s", shiftID, date.Format(clock.DateLayout))
}

// GetByID implements shift.ShiftRepository.
func (c *ShiftCache) GetByID(ctx context.Context, id string) (shift.Shift, error) {
	var s shift.Shift
	if hit := c.get(ctx, shiftKey(id), &s); hit {
		return s, nil
	}

	s, err := c.next.GetByID(ctx, id)
	if err != nil {
		return shift.Shift{}, err
	}

	c.set(ctx, shiftKey(id), s)
	return s, nil
}

// GetActiveAssignment implements shift.ShiftRepository.
func (c *ShiftCache) GetActiveAssignment(ctx context.Context, staffID string, at time.Time) (*shift.Assignment, error) {
	return c.next.GetActiveAssignment(ctx, staffID, at)
}

// IsOffDate implements shift.ShiftRepository.
func (c *ShiftCache) IsOffDate(ctx context.Context, shiftID string, date time.Time) (bool, error) {
	key := offDateKey(shiftID, date)

	var off bool
	if hit := c.get(ctx, key, &off); hit {
		return off, nil
	}

	off, err := c.next.IsOffDate(ctx, shiftID, date)
	if err != nil {
		return false, err
	}

	c.set(ctx, key, off)
	return off, nil
}

// Invalidate drops the cached definition of a shift.
func (c *ShiftCache) Invalidate(ctx context.Context, shiftID string) error {
	if err := c.rdb.Del(ctx, shiftKey(shiftID)).Err(); err != nil {
		return fmt.Errorf("failed to invalidate shift cache: %w", err)
	}
	return nil
}

func (c *ShiftCache) get(ctx context.Context, key string, target any) bool {
	data, err := c.rdb.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, goredis.Nil) {
			slog.Warn("shift cache read failed", "key", key, "error", err)
		}
		return false
	}

	if err := json.Unmarshal(data, target); err != nil {
		slog.Warn("shift cache entry corrupted", "key", key, "error", err)
		return false
	}
	return true
}

func (c *ShiftCache) set(ctx context.Context, key string, value any) {
	data, err := json.Marshal(value)
	if err != nil {
		slog.Warn("shift cache encode failed", "key", key, "error", err)
		return
	}
	if err := c.rdb.Set(ctx, key, data, c.ttl).Err(); err != nil {
		slog.Warn("shift cache write failed", "key", key, "error", err)
	}
}

// Connect opens a client and pings it.
func Connect(ctx context.Context, addr, password string, db int) (*goredis.Client, error) {
	rdb := goredis.NewClient(&goredis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	return rdb, nil
}
