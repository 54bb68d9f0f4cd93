package logic

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/coder/quartz"
	"github.com/zeromicro/go-zero/core/logx"

	"pixel_ranking/internal/metrics"
	"pixel_ranking/internal/model"
)

// SamplerLogic 负责在线人数和每小时像素数的采样序列
type SamplerLogic struct {
	Store   model.ScoreStore
	Clock   quartz.Clock
	Metrics *metrics.Metrics
}

// RecordOnlineUserCount 记录一次在线人数采样
func (l *SamplerLogic) RecordOnlineUserCount(ctx context.Context, n int64) error {
	if n < 0 {
		return fmt.Errorf("negative online count %d: %w", n, ErrInvalidArgument)
	}
	if err := pushBounded(ctx, l.Store, model.OnlineCounterKey, n, hourlySeriesCap); err != nil {
		return fmt.Errorf("store online count failed: %w", err)
	}
	return nil
}

// RecordHourlyPixelsPlaced 用当前国家日榜总和减去上一次采样的总和，得到过去一小时的像素数
// 跨天重置时补上昨天归档的总和
func (l *SamplerLogic) RecordHourlyPixelsPlaced(ctx context.Context) error {
	now := l.Clock.Now()
	prevTs, prevSum, hasPrev, err := l.prevSample(ctx)
	if err != nil {
		return err
	}

	curSum, err := sumSet(ctx, l.Store, model.DailyCountryRankKey)
	if err != nil {
		return fmt.Errorf("sum daily country ranks failed: %w", err)
	}
	// 无论上一次采样是否新鲜，都覆盖为本次采样
	sample := strconv.FormatInt(now.UnixMilli(), 10) + "," + strconv.FormatInt(curSum, 10)
	if err := l.Store.Set(ctx, model.PrevHourlyPlacedKey, sample); err != nil {
		return fmt.Errorf("store hourly sample failed: %w", err)
	}

	if !hasPrev || !isFresh(prevTs, now) {
		logx.WithContext(ctx).Infow("hourly pixel sample has no fresh predecessor, skip",
			logx.Field("hasPrev", hasPrev))
		return nil
	}

	if prevSum > curSum {
		// 两次采样之间发生了日榜重置，补上昨天的总和
		archived, err := sumSet(ctx, l.Store, model.CountryDayArchiveKey(model.DaysBefore(now, 1)))
		if err != nil {
			return fmt.Errorf("sum yesterday country archive failed: %w", err)
		}
		curSum += archived
	}
	delta := curSum - prevSum
	if delta < 0 {
		logx.WithContext(ctx).Errorw("negative hourly pixel delta dropped",
			logx.Field("prevSum", prevSum),
			logx.Field("curSum", curSum))
		if l.Metrics != nil {
			l.Metrics.NegativeDeltas.WithLabelValues("hourly_pixels").Inc()
		}
		return nil
	}
	if err := pushBounded(ctx, l.Store, model.HourlyPixelCounterKey, delta, hourlySeriesCap); err != nil {
		return fmt.Errorf("store hourly pixels failed: %w", err)
	}
	return nil
}

// prevSample 读取上一次采样的 "毫秒时间戳,总和"，格式错误视为不存在
func (l *SamplerLogic) prevSample(ctx context.Context) (time.Time, int64, bool, error) {
	raw, ok, err := l.Store.Get(ctx, model.PrevHourlyPlacedKey)
	if err != nil {
		return time.Time{}, 0, false, fmt.Errorf("read previous hourly sample failed: %w", err)
	}
	if !ok {
		return time.Time{}, 0, false, nil
	}
	parts := strings.Split(raw, ",")
	if len(parts) != 2 {
		logx.WithContext(ctx).Errorw("malformed hourly sample ignored", logx.Field("value", raw))
		return time.Time{}, 0, false, nil
	}
	ts, err1 := strconv.ParseInt(parts[0], 10, 64)
	sum, err2 := strconv.ParseInt(parts[1], 10, 64)
	if err1 != nil || err2 != nil || ts <= 0 {
		logx.WithContext(ctx).Errorw("malformed hourly sample ignored", logx.Field("value", raw))
		return time.Time{}, 0, false, nil
	}
	return time.UnixMilli(ts), sum, true, nil
}
