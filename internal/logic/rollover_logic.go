package logic

import (
	"context"
	"errors"
	"fmt"

	"github.com/coder/quartz"
	"github.com/zeromicro/go-zero/core/logx"

	"pixel_ranking/internal/model"
)

// RolloverLogic 每日重置日榜：归档、保存昨日前十、记录每日像素数、清理过期归档
// 同一天只能执行一次，第二次执行会用空数据覆盖刚生成的归档
type RolloverLogic struct {
	Store model.ScoreStore
	Clock quartz.Clock
}

// ResetDailyRanks 在每天 UTC 零点之后由调度方调用一次
// 中途失败不会回滚，需人工处理，不能在同一天盲目重试
func (l *RolloverLogic) ResetDailyRanks(ctx context.Context) error {
	now := l.Clock.Now()
	day := model.DaysBefore(now, 1)
	userArchive := model.UserDayArchiveKey(day)
	countryArchive := model.CountryDayArchiveKey(day)

	// 1. 昨日前十
	top, err := l.Store.RangeByRank(ctx, model.DailyUserRankKey, 0, topCount-1, true)
	if err != nil {
		return fmt.Errorf("read daily top failed: %w", err)
	}
	if err := l.Store.ReplaceSet(ctx, model.PrevDayTopKey, top); err != nil {
		return fmt.Errorf("store previous day top failed: %w", err)
	}

	// 2. 3. 归档用户日榜和国家日榜，rename 后日榜即为空
	if err := l.archive(ctx, model.DailyUserRankKey, userArchive); err != nil {
		return err
	}
	if err := l.archive(ctx, model.DailyCountryRankKey, countryArchive); err != nil {
		return err
	}

	// 4. 每日像素数
	sum, err := sumSet(ctx, l.Store, countryArchive)
	if err != nil {
		return fmt.Errorf("sum country archive %s failed: %w", countryArchive, err)
	}
	if err := pushBounded(ctx, l.Store, model.DailyPixelCounterKey, sum, dailySeriesCap); err != nil {
		return fmt.Errorf("store daily pixels failed: %w", err)
	}

	// 5. 清理过期归档
	purgeDay := model.DaysBefore(now, archiveRetentionDays)
	if err := l.Store.Delete(ctx, model.UserDayArchiveKey(purgeDay), model.CountryDayArchiveKey(purgeDay)); err != nil {
		return fmt.Errorf("purge archives of %s failed: %w", model.DateKey(purgeDay), err)
	}

	logx.WithContext(ctx).Infow("daily ranks reset",
		logx.Field("archive", model.DateKey(day)),
		logx.Field("pixels", sum),
		logx.Field("purged", model.DateKey(purgeDay)))
	return nil
}

// archive 将日榜重命名为归档，日榜不存在（当天无人放置像素）时不生成归档
func (l *RolloverLogic) archive(ctx context.Context, src, dst string) error {
	err := l.Store.Rename(ctx, src, dst)
	if errors.Is(err, model.ErrNoSuchKey) {
		logx.WithContext(ctx).Infow("no daily ranks to archive", logx.Field("key", src))
		return nil
	}
	if err != nil {
		return fmt.Errorf("archive %s to %s failed: %w", src, dst, err)
	}
	return nil
}
