package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stats struct {
	Patients  int   `json:"patients"`
	Occupancy int   `json:"occupancy"`
	Trends    []int `json:"trends"`
}

func newRedis(t *testing.T) (*Redis, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewRedis(client, "panacea:"), mr
}

func TestRedis_SetGet(t *testing.T) {
	c, mr := newRedis(t)
	ctx := context.Background()

	in := stats{Patients: 7, Occupancy: 39, Trends: []int{40, 30, 7}}
	require.NoError(t, c.Set(ctx, "analytics:stats", in, time.Minute))
	assert.True(t, mr.Exists("panacea:analytics:stats"))

	var out stats
	require.NoError(t, c.Get(ctx, "analytics:stats", &out))
	assert.Equal(t, in, out)
}

func TestRedis_Expiry(t *testing.T) {
	c, mr := newRedis(t)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "k", stats{Patients: 1}, 30*time.Second))
	mr.FastForward(31 * time.Second)

	var out stats
	assert.ErrorIs(t, c.Get(ctx, "k", &out), ErrMiss)
}

func TestRedis_Delete(t *testing.T) {
	c, _ := newRedis(t)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "a", 1, time.Minute))
	require.NoError(t, c.Delete(ctx, "a"))
	require.NoError(t, c.Delete(ctx))

	var n int
	assert.ErrorIs(t, c.Get(ctx, "a", &n), ErrMiss)
}

func TestRedis_ServerDown(t *testing.T) {
	c, mr := newRedis(t)
	mr.Close()

	var out stats
	err := c.Get(context.Background(), "k", &out)
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrMiss)
}

func TestConnect(t *testing.T) {
	mr := miniredis.RunT(t)
	client, err := Connect(context.Background(), "redis://"+mr.Addr()+"/0")
	require.NoError(t, err)
	client.Close()

	_, err = Connect(context.Background(), "://bad")
	assert.Error(t, err)
}

func TestNop(t *testing.T) {
	var c Cache = Nop{}
	ctx := context.Background()
	assert.NoError(t, c.Set(ctx, "k", 1, time.Minute))
	var n int
	assert.ErrorIs(t, c.Get(ctx, "k", &n), ErrMiss)
}
