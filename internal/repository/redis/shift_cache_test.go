package redis_test

import (
	"context"
	"testing"
	"time"

	"github.com/cmlabs-hris/hris-workforce/internal/domain/shift"
	"github.com/cmlabs-hris/hris-workforce/internal/repository/memory"
	"github.com/cmlabs-hris/hris-workforce/internal/repository/redis"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// unreachableClient points at a port nothing listens on.
func unreachableClient(t *testing.T) *goredis.Client {
	t.Helper()
	rdb := goredis.NewClient(&goredis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 50 * time.Millisecond,
		MaxRetries:  -1,
	})
	t.Cleanup(func() { rdb.Close() })
	return rdb
}

func TestShiftCache_FallsBackWhenRedisIsDown(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	sh := store.AddShift(shift.Shift{
		Name:      "Office",
		StartTime: "09:00",
		EndTime:   "18:00",
		WorkDays:  []time.Weekday{time.Monday, time.Tuesday},
	})
	offDay := time.Date(2025, 3, 31, 0, 0, 0, 0, time.UTC)
	store.AddOffDate(sh.ID, offDay)

	cache := redis.NewShiftCache(store.Shifts(), unreachableClient(t), 0)

	got, err := cache.GetByID(ctx, sh.ID)
	require.NoError(t, err)
	assert.Equal(t, "Office", got.Name)
	assert.Equal(t, sh.WorkDays, got.WorkDays)

	off, err := cache.IsOffDate(ctx, sh.ID, offDay)
	require.NoError(t, err)
	assert.True(t, off)

	off, err = cache.IsOffDate(ctx, sh.ID, offDay.AddDate(0, 0, 1))
	require.NoError(t, err)
	assert.False(t, off)

	assert.Error(t, cache.Invalidate(ctx, sh.ID))
}

func TestShiftCache_PropagatesStoreErrors(t *testing.T) {
	cache := redis.NewShiftCache(memory.NewStore().Shifts(), unreachableClient(t), time.Minute)

	_, err := cache.GetByID(context.Background(), "missing")
	assert.ErrorIs(t, err, shift.ErrShiftNotFound)

	a, err := cache.GetActiveAssignment(context.Background(), "nobody", time.Now())
	require.NoError(t, err)
	assert.Nil(t, a)
}

func TestConnect_FailsOnUnreachableServer(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	_, err := redis.Connect(ctx, "127.0.0.1:1", "", 0)
	assert.Error(t, err)
}
