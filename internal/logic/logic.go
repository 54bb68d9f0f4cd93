package logic

import (
	"context"
	"errors"
	"strconv"
	"time"

	"pixel_ranking/internal/model"
)

// ErrInvalidArgument 请求参数不合法
var ErrInvalidArgument = errors.New("invalid argument")

const (
	// freshnessWindow 上一次快照超过该时长则不再计算增量，恰好等于该时长仍算新鲜
	freshnessWindow = 90 * time.Minute
	// 7 天的小时采样，头尾都保留
	hourlySeriesCap      = 7*24 + 1
	dailySeriesCap       = 29
	archiveRetentionDays = 21
	historyDays          = 13
	topCount             = 10
)

// isFresh 上一次快照距今不超过 freshnessWindow
func isFresh(prev, now time.Time) bool {
	return now.Sub(prev) <= freshnessWindow
}

// pageBounds 将从 1 开始的 [start, start+amount-1] 转为存储层从 0 开始的区间
func pageBounds(start, amount int64) (from, to int64, ok bool) {
	if start < 1 || amount < 1 {
		return 0, 0, false
	}
	return start - 1, start + amount - 2, true
}

// pushBounded 头部插入并截断到 capacity 个元素
func pushBounded(ctx context.Context, store model.ScoreStore, key string, value int64, capacity int64) error {
	if err := store.PushFront(ctx, key, strconv.FormatInt(value, 10)); err != nil {
		return err
	}
	return store.Trim(ctx, key, 0, capacity-1)
}

// sumSet 计算整个有序集合的分数之和，不存在的 key 视为 0
func sumSet(ctx context.Context, store model.ScoreStore, key string) (int64, error) {
	members, err := store.RangeByRank(ctx, key, 0, -1, false)
	if err != nil {
		return 0, err
	}
	return model.SumScores(members), nil
}

func readSeries(ctx context.Context, store model.ScoreStore, key string) ([]int64, error) {
	vals, err := store.ListRange(ctx, key, 0, -1)
	if err != nil {
		return nil, err
	}
	ret := make([]int64, 0, len(vals))
	for _, v := range vals {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			continue
		}
		ret = append(ret, n)
	}
	return ret, nil
}
