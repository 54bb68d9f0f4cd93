package logic

import (
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pixel_ranking/internal/model"
)

func TestRolloverLogic_ResetDailyRanks(t *testing.T) {
	env := newTestEnv(t)
	l := &RolloverLogic{Store: env.store, Clock: env.clock}

	now := time.Date(2030, 3, 11, 0, 5, 0, 0, time.UTC)
	env.clock.Set(now)

	users := make([]model.Member, 0, 12)
	want := make(map[string]float64, 12)
	for i := 1; i <= 12; i++ {
		m := model.Member{Member: strconv.Itoa(i), Score: float64(i * 10)}
		users = append(users, m)
		want[m.Member] = m.Score
	}
	env.zadd(t, model.DailyUserRankKey, users...)
	env.zadd(t, model.DailyCountryRankKey,
		model.Member{Member: "de", Score: 70},
		model.Member{Member: "fr", Score: 30},
	)
	// 已有的归档：D-21 应被清理，D-20 保留
	for _, days := range []int{20, 21} {
		day := model.DaysBefore(now, days)
		env.zadd(t, model.UserDayArchiveKey(day), model.Member{Member: "1", Score: 1})
		env.zadd(t, model.CountryDayArchiveKey(day), model.Member{Member: "de", Score: 1})
	}

	require.NoError(t, l.ResetDailyRanks(env.ctx))

	assert.False(t, env.redis.Exists(model.DailyUserRankKey))
	assert.False(t, env.redis.Exists(model.DailyCountryRankKey))

	yesterday := model.DaysBefore(now, 1)
	assert.Equal(t, "ds:20300310", model.UserDayArchiveKey(yesterday))
	assert.Equal(t, want, env.members(t, model.UserDayArchiveKey(yesterday)))
	assert.Equal(t, map[string]float64{"de": 70, "fr": 30}, env.members(t, model.CountryDayArchiveKey(yesterday)))

	top, err := env.store.RangeByRank(env.ctx, model.PrevDayTopKey, 0, -1, true)
	require.NoError(t, err)
	require.Len(t, top, 10)
	assert.Equal(t, model.Member{Member: "12", Score: 120}, top[0])
	assert.Equal(t, model.Member{Member: "3", Score: 30}, top[9])

	assert.Equal(t, []int64{100}, env.series(t, model.DailyPixelCounterKey))

	assert.False(t, env.redis.Exists(model.UserDayArchiveKey(model.DaysBefore(now, 21))))
	assert.False(t, env.redis.Exists(model.CountryDayArchiveKey(model.DaysBefore(now, 21))))
	assert.True(t, env.redis.Exists(model.UserDayArchiveKey(model.DaysBefore(now, 20))))
	assert.True(t, env.redis.Exists(model.CountryDayArchiveKey(model.DaysBefore(now, 20))))
}

func TestRolloverLogic_RetentionWindow(t *testing.T) {
	env := newTestEnv(t)
	l := &RolloverLogic{Store: env.store, Clock: env.clock}
	tracker := &RankingLogic{Store: env.store}

	start := time.Date(2030, 4, 1, 0, 5, 0, 0, time.UTC)
	var now time.Time
	for d := 0; d < 25; d++ {
		now = start.AddDate(0, 0, d)
		env.clock.Set(now)
		require.NoError(t, tracker.RecordPlacement(env.ctx, int64(d+1), "de"))
		require.NoError(t, l.ResetDailyRanks(env.ctx))
	}

	for days := 1; days <= 20; days++ {
		day := model.DaysBefore(now, days)
		assert.True(t, env.redis.Exists(model.UserDayArchiveKey(day)), "user archive D-%d", days)
		assert.True(t, env.redis.Exists(model.CountryDayArchiveKey(day)), "country archive D-%d", days)
	}
	for days := 21; days <= 25; days++ {
		day := model.DaysBefore(now, days)
		assert.False(t, env.redis.Exists(model.UserDayArchiveKey(day)), "user archive D-%d", days)
		assert.False(t, env.redis.Exists(model.CountryDayArchiveKey(day)), "country archive D-%d", days)
	}
}

func TestRolloverLogic_DailySeriesBounded(t *testing.T) {
	env := newTestEnv(t)
	l := &RolloverLogic{Store: env.store, Clock: env.clock}
	tracker := &RankingLogic{Store: env.store}

	start := time.Date(2030, 4, 1, 0, 5, 0, 0, time.UTC)
	for d := 0; d < 40; d++ {
		env.clock.Set(start.AddDate(0, 0, d))
		for i := 0; i <= d; i++ {
			require.NoError(t, tracker.RecordPlacement(env.ctx, 1, "de"))
		}
		require.NoError(t, l.ResetDailyRanks(env.ctx))
	}

	series := env.series(t, model.DailyPixelCounterKey)
	require.Len(t, series, dailySeriesCap)
	// 最新的在前
	assert.EqualValues(t, 40, series[0])
	assert.EqualValues(t, 12, series[dailySeriesCap-1])
}

func TestRolloverLogic_NoActivity(t *testing.T) {
	env := newTestEnv(t)
	l := &RolloverLogic{Store: env.store, Clock: env.clock}
	env.zadd(t, model.PrevDayTopKey, model.Member{Member: "1", Score: 5})

	require.NoError(t, l.ResetDailyRanks(env.ctx))

	assert.False(t, env.redis.Exists(model.PrevDayTopKey))
	assert.False(t, env.redis.Exists(model.UserDayArchiveKey(model.DaysBefore(baseTime, 1))))
	assert.Equal(t, []int64{0}, env.series(t, model.DailyPixelCounterKey))
}
