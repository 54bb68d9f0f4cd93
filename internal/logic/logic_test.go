package logic

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/coder/quartz"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/require"

	"pixel_ranking/internal/metrics"
	"pixel_ranking/internal/model"
)

type testEnv struct {
	ctx     context.Context
	redis   *miniredis.Miniredis
	store   *model.RedisScoreStore
	clock   *quartz.Mock
	metrics *metrics.Metrics
}

// 测试时间统一放在未来，模拟时钟只向前拨动
var baseTime = time.Date(2030, 3, 10, 10, 0, 0, 0, time.UTC)

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	s := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: s.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	clock := quartz.NewMock(t)
	clock.Set(baseTime)
	return &testEnv{
		ctx:     context.Background(),
		redis:   s,
		store:   model.NewRedisScoreStore(client),
		clock:   clock,
		metrics: metrics.New(nil),
	}
}

func (e *testEnv) zadd(t *testing.T, key string, members ...model.Member) {
	t.Helper()
	require.NoError(t, e.store.ReplaceSet(e.ctx, key, members))
}

func (e *testEnv) members(t *testing.T, key string) map[string]float64 {
	t.Helper()
	ms, err := e.store.RangeByRank(e.ctx, key, 0, -1, true)
	require.NoError(t, err)
	ret := make(map[string]float64, len(ms))
	for _, m := range ms {
		ret[m.Member] = m.Score
	}
	return ret
}

func (e *testEnv) series(t *testing.T, key string) []int64 {
	t.Helper()
	vals, err := readSeries(e.ctx, e.store, key)
	require.NoError(t, err)
	return vals
}

func TestPageBounds(t *testing.T) {
	from, to, ok := pageBounds(1, 10)
	require.True(t, ok)
	require.EqualValues(t, 0, from)
	require.EqualValues(t, 9, to)

	from, to, ok = pageBounds(11, 1)
	require.True(t, ok)
	require.EqualValues(t, 10, from)
	require.EqualValues(t, 10, to)

	_, _, ok = pageBounds(0, 10)
	require.False(t, ok)
	_, _, ok = pageBounds(1, 0)
	require.False(t, ok)
}
