package logic

import (
	"fmt"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pixel_ranking/internal/cache"
	"pixel_ranking/internal/config"
	"pixel_ranking/internal/model"
	"pixel_ranking/internal/types"
)

func TestHistoryLogic_GetRanksPaging(t *testing.T) {
	env := newTestEnv(t)
	l := &HistoryLogic{Store: env.store, Clock: env.clock}

	const total = 25
	users := make([]model.Member, 0, total)
	for i := 1; i <= total; i++ {
		users = append(users, model.Member{Member: strconv.Itoa(i), Score: float64(i * 3)})
	}
	env.zadd(t, model.TotalUserRankKey, users...)

	tests := []struct {
		start, amount int64
	}{
		{1, 10}, {11, 10}, {21, 10}, {25, 1}, {26, 5}, {100, 3}, {1, 100}, {0, 5}, {3, 0},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("start=%d/amount=%d", tt.start, tt.amount), func(t *testing.T) {
			page, err := l.GetRanks(env.ctx, DimensionTotal, tt.start, tt.amount)
			require.NoError(t, err)
			require.NotNil(t, page)

			want := int64(0)
			if tt.start >= 1 && tt.amount >= 1 && tt.start <= total {
				want = min(tt.amount, total-tt.start+1)
			}
			require.Len(t, page, int(want))
			for i, item := range page {
				require.NotNil(t, item.TotalRank)
				assert.Equal(t, tt.start+int64(i), *item.TotalRank)
				if i > 0 {
					assert.LessOrEqual(t, *item.TotalPixels, *page[i-1].TotalPixels)
				}
			}
		})
	}
}

func TestHistoryLogic_GetRanksOtherDimension(t *testing.T) {
	env := newTestEnv(t)
	l := &HistoryLogic{Store: env.store, Clock: env.clock}
	env.zadd(t, model.TotalUserRankKey,
		model.Member{Member: "1", Score: 100},
		model.Member{Member: "2", Score: 80},
		model.Member{Member: "3", Score: 60},
	)
	env.zadd(t, model.DailyUserRankKey,
		model.Member{Member: "3", Score: 20},
		model.Member{Member: "2", Score: 5},
	)

	page, err := l.GetRanks(env.ctx, DimensionTotal, 1, 10)
	require.NoError(t, err)
	require.Len(t, page, 3)
	assert.EqualValues(t, 1, page[0].UserID)
	assert.Nil(t, page[0].DailyPixels)
	assert.Nil(t, page[0].DailyRank)
	assert.EqualValues(t, 2, page[1].UserID)
	assert.EqualValues(t, 5, *page[1].DailyPixels)
	assert.EqualValues(t, 2, *page[1].DailyRank)
	assert.EqualValues(t, 20, *page[2].DailyPixels)
	assert.EqualValues(t, 1, *page[2].DailyRank)

	daily, err := l.GetRanks(env.ctx, DimensionDaily, 1, 10)
	require.NoError(t, err)
	require.Len(t, daily, 2)
	assert.EqualValues(t, 3, daily[0].UserID)
	assert.EqualValues(t, 1, *daily[0].DailyRank)
	assert.EqualValues(t, 60, *daily[0].TotalPixels)
	assert.EqualValues(t, 3, *daily[0].TotalRank)

	_, err = l.GetRanks(env.ctx, Dimension("weekly"), 1, 10)
	assert.ErrorIs(t, err, ErrInvalidArgument)
}

func TestHistoryLogic_CountryPages(t *testing.T) {
	env := newTestEnv(t)
	l := &HistoryLogic{Store: env.store, Clock: env.clock}
	env.zadd(t, model.DailyCountryRankKey,
		model.Member{Member: "de", Score: 30},
		model.Member{Member: "fr", Score: 50},
		model.Member{Member: "it", Score: 10},
	)
	env.zadd(t, model.HourlyCountryRankKey, model.Member{Member: "fr", Score: 4})

	ranks, err := l.GetCountryRanks(env.ctx, 2, 5)
	require.NoError(t, err)
	assert.Equal(t, []types.CountryScore{{CountryCode: "de", Pixels: 30}, {CountryCode: "it", Pixels: 10}}, ranks)

	hourly, err := l.GetHourlyCountryStats(env.ctx, 1, 10)
	require.NoError(t, err)
	assert.Equal(t, []types.CountryScore{{CountryCode: "fr", Pixels: 4}}, hourly)

	empty, err := l.GetCountryRanks(env.ctx, 0, 10)
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestHistoryLogic_PrevTopAndSeries(t *testing.T) {
	env := newTestEnv(t)
	l := &HistoryLogic{Store: env.store, Clock: env.clock}

	top, err := l.GetPrevTop(env.ctx)
	require.NoError(t, err)
	assert.Empty(t, top)

	env.zadd(t, model.PrevDayTopKey,
		model.Member{Member: "4", Score: 9},
		model.Member{Member: "5", Score: 19},
	)
	top, err = l.GetPrevTop(env.ctx)
	require.NoError(t, err)
	assert.Equal(t, []types.UserPixels{{UserID: 5, Pixels: 19}, {UserID: 4, Pixels: 9}}, top)

	sampler := &SamplerLogic{Store: env.store, Clock: env.clock}
	require.NoError(t, sampler.RecordOnlineUserCount(env.ctx, 3))
	require.NoError(t, sampler.RecordOnlineUserCount(env.ctx, 7))
	online, err := l.GetOnlineUserStats(env.ctx)
	require.NoError(t, err)
	assert.Equal(t, []int64{7, 3}, online)

	hourly, err := l.GetHourlyPixelStats(env.ctx)
	require.NoError(t, err)
	assert.Empty(t, hourly)

	require.NoError(t, env.store.PushFront(env.ctx, model.DailyPixelCounterKey, "12"))
	daily, err := l.GetDailyPixelStats(env.ctx)
	require.NoError(t, err)
	assert.Equal(t, []int64{12}, daily)
}

func TestHistoryLogic_TopDailyHistory(t *testing.T) {
	env := newTestEnv(t)
	l := &HistoryLogic{Store: env.store, Clock: env.clock}
	env.zadd(t, model.UserDayArchiveKey(model.DaysBefore(baseTime, 1)),
		model.Member{Member: "1", Score: 10},
		model.Member{Member: "2", Score: 20},
	)
	env.zadd(t, model.UserDayArchiveKey(model.DaysBefore(baseTime, 3)),
		model.Member{Member: "2", Score: 5},
		model.Member{Member: "3", Score: 7},
	)
	// 超出 13 天的归档不参与
	env.zadd(t, model.UserDayArchiveKey(model.DaysBefore(baseTime, 14)),
		model.Member{Member: "99", Score: 1000},
	)

	h, err := l.GetTopDailyHistory(env.ctx)
	require.NoError(t, err)
	require.Len(t, h.Stats, historyDays)
	assert.Equal(t, []types.UserPixels{{UserID: 2, Pixels: 20}, {UserID: 1, Pixels: 10}}, h.Stats[0])
	assert.Empty(t, h.Stats[1])
	assert.Equal(t, []types.UserPixels{{UserID: 3, Pixels: 7}, {UserID: 2, Pixels: 5}}, h.Stats[2])
	assert.Equal(t, []int64{2, 1, 3}, h.Users)
}

func TestHistoryLogic_CountryDailyHistory(t *testing.T) {
	env := newTestEnv(t)
	l := &HistoryLogic{Store: env.store, Clock: env.clock}
	env.zadd(t, model.DailyCountryRankKey, model.Member{Member: "de", Score: 3})
	env.zadd(t, model.CountryDayArchiveKey(model.DaysBefore(baseTime, 13)), model.Member{Member: "fr", Score: 8})

	h, err := l.GetCountryDailyHistory(env.ctx)
	require.NoError(t, err)
	require.Len(t, h, historyDays+1)
	assert.Equal(t, []types.CountryScore{{CountryCode: "de", Pixels: 3}}, h[0])
	for i := 1; i < historyDays; i++ {
		assert.Empty(t, h[i])
	}
	assert.Equal(t, []types.CountryScore{{CountryCode: "fr", Pixels: 8}}, h[historyDays])
}

func TestHistoryLogic_Cached(t *testing.T) {
	env := newTestEnv(t)
	c, err := cache.New(config.CacheConf{Enabled: true, TTLSeconds: 600, MaxCost: 100, NumCounters: 1000})
	require.NoError(t, err)
	defer c.Close()
	l := &HistoryLogic{Store: env.store, Clock: env.clock, Cache: c}
	env.zadd(t, model.DailyCountryRankKey, model.Member{Member: "de", Score: 3})

	first, err := l.GetCountryDailyHistory(env.ctx)
	require.NoError(t, err)
	c.Wait()

	env.zadd(t, model.DailyCountryRankKey, model.Member{Member: "de", Score: 50})
	second, err := l.GetCountryDailyHistory(env.ctx)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}
