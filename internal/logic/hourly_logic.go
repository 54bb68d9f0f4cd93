package logic

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/coder/quartz"
	"github.com/zeromicro/go-zero/core/logx"

	"pixel_ranking/internal/metrics"
	"pixel_ranking/internal/model"
)

// HourlyLogic 根据国家日榜的累计值计算每个国家最近一小时的像素数
// 不能与自身并发执行，由调度方保证
type HourlyLogic struct {
	Store   model.ScoreStore
	Clock   quartz.Clock
	Metrics *metrics.Metrics
}

// hourlyInput 是一次增量计算所需的全部数据
type hourlyInput struct {
	cur  []model.Member
	prev map[string]float64
	// arch 为昨天归档的国家日榜，未跨天时为空
	arch []model.Member
	// activeToday 为今天已经有像素、但不在 cur 窗口内的国家
	activeToday map[string]struct{}
	rolledOver  bool
}

// StoreHourlyCountryStats 计算并写入国家小时榜，[start, start+amount-1] 为参与计算的国家日榜名次范围
func (l *HourlyLogic) StoreHourlyCountryStats(ctx context.Context, start, amount int64) error {
	from, to, ok := pageBounds(start, amount)
	if !ok {
		return fmt.Errorf("window start=%d amount=%d: %w", start, amount, ErrInvalidArgument)
	}
	now := l.Clock.Now()

	// 1. 当前国家日榜
	cur, err := l.Store.RangeByRank(ctx, model.DailyCountryRankKey, from, to, true)
	if err != nil {
		return fmt.Errorf("read daily country ranks failed: %w", err)
	}
	// 2. 上一次运行留下的快照
	prevData, err := l.Store.RangeByRank(ctx, model.PrevDailyCountryKey, 0, -1, true)
	if err != nil {
		return fmt.Errorf("read previous country snapshot failed: %w", err)
	}
	prevTs, hasPrevTs, err := l.prevSnapshotTs(ctx)
	if err != nil {
		return err
	}

	// 3. 无论快照是否新鲜都要推进快照并清空小时榜
	if err := l.advanceSnapshot(ctx, now); err != nil {
		return err
	}

	// 4. 快照过旧（停机或首次运行），本轮不产出增量
	if !hasPrevTs || !isFresh(prevTs, now) {
		logx.WithContext(ctx).Infow("country snapshot is stale, skip hourly delta",
			logx.Field("hasPrevTs", hasPrevTs),
			logx.Field("prevTs", prevTs))
		l.setHourlyCountries(0)
		return nil
	}

	in := hourlyInput{
		cur:        cur,
		prev:       make(map[string]float64, len(prevData)),
		rolledOver: model.DidRollover(prevTs, now),
	}
	for _, p := range prevData {
		in.prev[p.Member] = p.Score
	}

	// 5. 跨天时日榜可能已经被重置，读取昨天的归档
	// 归档整体读取，窗口外但昨天有像素的国家也需要参与第 7 步
	if in.rolledOver {
		in.arch, err = l.Store.RangeByRank(ctx, model.CountryDayArchiveKey(model.DaysBefore(now, 1)), 0, -1, true)
		if err != nil {
			return fmt.Errorf("read yesterday country archive failed: %w", err)
		}
		in.activeToday, err = l.activeOutsideWindow(ctx, cur, in.arch)
		if err != nil {
			return err
		}
	}

	// 6. 7. 计算增量
	deltas, dropped := computeHourlyDeltas(in)
	for _, cc := range dropped {
		logx.WithContext(ctx).Errorw("negative hourly country delta dropped", logx.Field("country", cc))
		if l.Metrics != nil {
			l.Metrics.NegativeDeltas.WithLabelValues("hourly_country").Inc()
		}
	}
	l.setHourlyCountries(len(deltas))

	// 8. 写入小时榜
	if len(deltas) == 0 {
		return nil
	}
	if err := l.Store.ReplaceSet(ctx, model.HourlyCountryRankKey, deltas); err != nil {
		return fmt.Errorf("write hourly country ranks failed: %w", err)
	}
	return nil
}

func (l *HourlyLogic) prevSnapshotTs(ctx context.Context) (time.Time, bool, error) {
	raw, ok, err := l.Store.Get(ctx, model.PrevDailyCountryTsKey)
	if err != nil {
		return time.Time{}, false, fmt.Errorf("read previous snapshot time failed: %w", err)
	}
	if !ok {
		return time.Time{}, false, nil
	}
	ms, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || ms <= 0 {
		logx.WithContext(ctx).Errorw("malformed snapshot time ignored", logx.Field("value", raw))
		return time.Time{}, false, nil
	}
	return time.UnixMilli(ms), true, nil
}

// advanceSnapshot 用当前国家日榜覆盖快照，记录时间并清空小时榜
func (l *HourlyLogic) advanceSnapshot(ctx context.Context, now time.Time) error {
	copied, err := l.Store.Copy(ctx, model.DailyCountryRankKey, model.PrevDailyCountryKey, true)
	if err != nil {
		return fmt.Errorf("copy country snapshot failed: %w", err)
	}
	toDelete := []string{model.HourlyCountryRankKey}
	if !copied {
		// 日榜刚被重置还没有数据，快照也应为空
		toDelete = append(toDelete, model.PrevDailyCountryKey)
	}
	if err := l.Store.Set(ctx, model.PrevDailyCountryTsKey, strconv.FormatInt(now.UnixMilli(), 10)); err != nil {
		return fmt.Errorf("store snapshot time failed: %w", err)
	}
	if err := l.Store.Delete(ctx, toDelete...); err != nil {
		return fmt.Errorf("clear hourly country ranks failed: %w", err)
	}
	return nil
}

// activeOutsideWindow 找出昨天归档中、不在当前窗口但今天已经有像素的国家
func (l *HourlyLogic) activeOutsideWindow(ctx context.Context, cur, arch []model.Member) (map[string]struct{}, error) {
	inWindow := make(map[string]struct{}, len(cur))
	for _, c := range cur {
		inWindow[c.Member] = struct{}{}
	}
	var candidates []string
	for _, a := range arch {
		if _, ok := inWindow[a.Member]; !ok {
			candidates = append(candidates, a.Member)
		}
	}
	active := make(map[string]struct{})
	if len(candidates) == 0 {
		return active, nil
	}
	scores, _, err := l.Store.ScoresAndRanks(ctx, model.DailyCountryRankKey, candidates, true)
	if err != nil {
		return nil, fmt.Errorf("lookup live country scores failed: %w", err)
	}
	for i, s := range scores {
		if s != nil {
			active[candidates[i]] = struct{}{}
		}
	}
	return active, nil
}

func (l *HourlyLogic) setHourlyCountries(n int) {
	if l.Metrics != nil {
		l.Metrics.HourlyCountries.Set(float64(n))
	}
}

// computeHourlyDeltas 计算每个国家的小时增量，返回需要写入的增量和被丢弃的负增量国家
// 分支顺序不可调整：命中归档的国家必须先从归档工作集中移除，剩余的才按昨天尾部活跃处理
func computeHourlyDeltas(in hourlyInput) ([]model.Member, []string) {
	archRanks := make(map[string]float64, len(in.arch))
	if in.rolledOver {
		for _, a := range in.arch {
			archRanks[a.Member] = a.Score
		}
	}

	var (
		deltas  []model.Member
		dropped []string
	)
	emit := func(cc string, px float64) {
		switch {
		case px < 0:
			dropped = append(dropped, cc)
		case px > 0:
			deltas = append(deltas, model.Member{Member: cc, Score: px})
		}
	}

	for _, c := range in.cur {
		prevPx := in.prev[c.Member]
		archPx, inArch := archRanks[c.Member]
		switch {
		case c.Score >= prevPx:
			emit(c.Member, c.Score-prevPx)
		case inArch:
			// 区间内日榜被清零，丢失的部分从昨天的归档中补回
			emit(c.Member, c.Score+archPx-prevPx)
		default:
			emit(c.Member, c.Score)
		}
		if inArch {
			delete(archRanks, c.Member)
		}
	}

	// 昨天有像素、今天还没有像素的国家，取昨天上次快照之后的部分
	// 按昨天的名次顺序遍历，保证结果稳定
	for _, a := range in.arch {
		archPx, ok := archRanks[a.Member]
		if !ok {
			continue
		}
		if _, active := in.activeToday[a.Member]; active {
			continue
		}
		prevPx := in.prev[a.Member]
		if archPx > prevPx {
			emit(a.Member, archPx-prevPx)
		}
	}
	return deltas, dropped
}
