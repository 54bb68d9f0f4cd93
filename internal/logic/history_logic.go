package logic

import (
	"context"
	"fmt"
	"strconv"

	"github.com/coder/quartz"
	"github.com/zeromicro/go-zero/core/logx"
	"github.com/zeromicro/go-zero/core/mr"

	"pixel_ranking/internal/cache"
	"pixel_ranking/internal/model"
	"pixel_ranking/internal/types"
)

// Dimension 用户榜单的维度
type Dimension string

const (
	DimensionTotal Dimension = "total"
	DimensionDaily Dimension = "daily"
)

// HistoryLogic 提供榜单和统计序列的只读查询
// 查询期间榜单可能正被归档重命名，不存在的 key 一律视为暂无数据
type HistoryLogic struct {
	Store model.ScoreStore
	Clock quartz.Clock
	Cache *cache.HistoryCache
}

// GetRanks 分页获取用户榜单，名次从 1 开始，同时给出另一维度的分数和名次
func (l *HistoryLogic) GetRanks(ctx context.Context, dim Dimension, start, amount int64) ([]types.RankedUser, error) {
	var key, otherKey string
	switch dim {
	case DimensionTotal:
		key, otherKey = model.TotalUserRankKey, model.DailyUserRankKey
	case DimensionDaily:
		key, otherKey = model.DailyUserRankKey, model.TotalUserRankKey
	default:
		return nil, fmt.Errorf("unknown dimension %q: %w", dim, ErrInvalidArgument)
	}
	ret := []types.RankedUser{}
	from, to, ok := pageBounds(start, amount)
	if !ok {
		return ret, nil
	}

	ranks, err := l.Store.RangeByRank(ctx, key, from, to, true)
	if err != nil {
		return nil, fmt.Errorf("read %s ranks failed: %w", dim, err)
	}
	if len(ranks) == 0 {
		return ret, nil
	}
	uids := make([]string, 0, len(ranks))
	for _, r := range ranks {
		uids = append(uids, r.Member)
	}
	oScores, oRanks, err := l.Store.ScoresAndRanks(ctx, otherKey, uids, true)
	if err != nil {
		return nil, fmt.Errorf("read counterpart ranks failed: %w", err)
	}

	for i, r := range ranks {
		id, err := strconv.ParseInt(r.Member, 10, 64)
		if err != nil {
			logx.WithContext(ctx).Errorw("skip malformed user id", logx.Field("member", r.Member))
			continue
		}
		px := int64(r.Score)
		rank := start + int64(i)
		item := types.RankedUser{UserID: id}
		if dim == DimensionDaily {
			item.DailyPixels, item.DailyRank = &px, &rank
			item.TotalPixels, item.TotalRank = model.ScoreValue(oScores[i]), model.RankValue(oRanks[i])
		} else {
			item.TotalPixels, item.TotalRank = &px, &rank
			item.DailyPixels, item.DailyRank = model.ScoreValue(oScores[i]), model.RankValue(oRanks[i])
		}
		ret = append(ret, item)
	}
	return ret, nil
}

// GetCountryRanks 分页获取今日国家榜
func (l *HistoryLogic) GetCountryRanks(ctx context.Context, start, amount int64) ([]types.CountryScore, error) {
	return l.countryPage(ctx, model.DailyCountryRankKey, start, amount)
}

// GetHourlyCountryStats 分页获取最近一小时的国家榜
func (l *HistoryLogic) GetHourlyCountryStats(ctx context.Context, start, amount int64) ([]types.CountryScore, error) {
	return l.countryPage(ctx, model.HourlyCountryRankKey, start, amount)
}

func (l *HistoryLogic) countryPage(ctx context.Context, key string, start, amount int64) ([]types.CountryScore, error) {
	from, to, ok := pageBounds(start, amount)
	if !ok {
		return []types.CountryScore{}, nil
	}
	ranks, err := l.Store.RangeByRank(ctx, key, from, to, true)
	if err != nil {
		return nil, fmt.Errorf("read %s failed: %w", key, err)
	}
	return model.ToCountryScores(ranks), nil
}

// GetPrevTop 获取上一次日榜重置前的前十名
func (l *HistoryLogic) GetPrevTop(ctx context.Context) ([]types.UserPixels, error) {
	top, err := l.Store.RangeByRank(ctx, model.PrevDayTopKey, 0, topCount-1, true)
	if err != nil {
		return nil, fmt.Errorf("read previous day top failed: %w", err)
	}
	return model.ToUserPixels(top), nil
}

func (l *HistoryLogic) GetOnlineUserStats(ctx context.Context) ([]int64, error) {
	return readSeries(ctx, l.Store, model.OnlineCounterKey)
}

func (l *HistoryLogic) GetHourlyPixelStats(ctx context.Context) ([]int64, error) {
	return readSeries(ctx, l.Store, model.HourlyPixelCounterKey)
}

func (l *HistoryLogic) GetDailyPixelStats(ctx context.Context) ([]int64, error) {
	return readSeries(ctx, l.Store, model.DailyPixelCounterKey)
}

// GetTopDailyHistory 过去 13 天每天的前十名，以及出现过的全部用户
func (l *HistoryLogic) GetTopDailyHistory(ctx context.Context) (*types.TopDailyHistory, error) {
	now := l.Clock.Now()
	cacheKey := "topDaily:" + model.DateKey(now)
	if v, ok := l.Cache.Get(cacheKey); ok {
		if h, ok := v.(*types.TopDailyHistory); ok {
			return h, nil
		}
	}

	keys := make([]string, historyDays)
	for i := range keys {
		keys[i] = model.UserDayArchiveKey(model.DaysBefore(now, i+1))
	}
	days, err := l.topOfKeys(ctx, keys)
	if err != nil {
		return nil, err
	}

	ret := &types.TopDailyHistory{
		Users: []int64{},
		Stats: make([][]types.UserPixels, 0, len(days)),
	}
	seen := make(map[int64]struct{})
	for _, day := range days {
		dData := model.ToUserPixels(day)
		for _, u := range dData {
			if _, ok := seen[u.UserID]; !ok {
				seen[u.UserID] = struct{}{}
				ret.Users = append(ret.Users, u.UserID)
			}
		}
		ret.Stats = append(ret.Stats, dData)
	}
	l.Cache.Set(cacheKey, ret)
	return ret, nil
}

// GetCountryDailyHistory 今日国家前十，之后是过去 13 天每天的国家前十，共 14 项
func (l *HistoryLogic) GetCountryDailyHistory(ctx context.Context) ([][]types.CountryScore, error) {
	now := l.Clock.Now()
	cacheKey := "countryDaily:" + model.DateKey(now)
	if v, ok := l.Cache.Get(cacheKey); ok {
		if h, ok := v.([][]types.CountryScore); ok {
			return h, nil
		}
	}

	keys := make([]string, 0, historyDays+1)
	keys = append(keys, model.DailyCountryRankKey)
	for i := 1; i <= historyDays; i++ {
		keys = append(keys, model.CountryDayArchiveKey(model.DaysBefore(now, i)))
	}
	days, err := l.topOfKeys(ctx, keys)
	if err != nil {
		return nil, err
	}

	ret := make([][]types.CountryScore, 0, len(days))
	for _, day := range days {
		ret = append(ret, model.ToCountryScores(day))
	}
	l.Cache.Set(cacheKey, ret)
	return ret, nil
}

// topOfKeys 并发读取每个 key 的前十名，结果与 keys 顺序一致
func (l *HistoryLogic) topOfKeys(ctx context.Context, keys []string) ([][]model.Member, error) {
	ret := make([][]model.Member, len(keys))
	fns := make([]func() error, 0, len(keys))
	for i, key := range keys {
		i, key := i, key
		fns = append(fns, func() error {
			top, err := l.Store.RangeByRank(ctx, key, 0, topCount-1, true)
			if err != nil {
				return fmt.Errorf("read top of %s failed: %w", key, err)
			}
			ret[i] = top
			return nil
		})
	}
	if err := mr.Finish(fns...); err != nil {
		return nil, err
	}
	return ret, nil
}
