package job

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/zeromicro/go-zero/core/logx"

	"pixel_ranking/internal/config"
	"pixel_ranking/internal/metrics"
)

const (
	HourlyJob = "hourly"
	DailyJob  = "daily"
)

type CountryStatsRunner interface {
	StoreHourlyCountryStats(ctx context.Context, start, amount int64) error
}

type PixelStatsRunner interface {
	RecordHourlyPixelsPlaced(ctx context.Context) error
}

type DailyRunner interface {
	ResetDailyRanks(ctx context.Context) error
}

// Jobs 每小时执行国家小时榜和小时像素数，每天执行一次日榜重置
type Jobs struct {
	Country CountryStatsRunner
	Pixels  PixelStatsRunner
	Daily   DailyRunner
}

// Scheduler 按 cron 规则触发定时任务，同一任务上一轮未结束时跳过本轮
type Scheduler struct {
	cron          *cron.Cron
	jobs          Jobs
	countryWindow int64
	timeout       time.Duration
	metrics       *metrics.Metrics
}

func NewScheduler(c config.Config, jobs Jobs, m *metrics.Metrics) (*Scheduler, error) {
	logger := cronLogger{}
	s := &Scheduler{
		cron: cron.New(
			cron.WithLocation(time.UTC),
			cron.WithLogger(logger),
			cron.WithChain(cron.Recover(logger), cron.SkipIfStillRunning(logger)),
		),
		jobs:          jobs,
		countryWindow: c.Stats.CountryWindow,
		timeout:       10 * time.Minute,
		metrics:       m,
	}
	if _, err := s.cron.AddFunc(c.Schedule.Hourly, func() { s.RunHourly(context.Background()) }); err != nil {
		return nil, fmt.Errorf("invalid hourly schedule %q: %w", c.Schedule.Hourly, err)
	}
	if _, err := s.cron.AddFunc(c.Schedule.Daily, func() { s.RunDaily(context.Background()) }); err != nil {
		return nil, fmt.Errorf("invalid daily schedule %q: %w", c.Schedule.Daily, err)
	}
	return s, nil
}

func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop 停止调度并等待正在执行的任务结束
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
}

// RunHourly 两个小时任务互不依赖，一个失败不影响另一个
func (s *Scheduler) RunHourly(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	errCountry := s.jobs.Country.StoreHourlyCountryStats(ctx, 1, s.countryWindow)
	if errCountry != nil {
		logx.WithContext(ctx).Errorw("hourly country stats failed", logx.Field("error", errCountry.Error()))
	}
	errPixels := s.jobs.Pixels.RecordHourlyPixelsPlaced(ctx)
	if errPixels != nil {
		logx.WithContext(ctx).Errorw("hourly pixel stats failed", logx.Field("error", errPixels.Error()))
	}

	err := errCountry
	if err == nil {
		err = errPixels
	}
	s.observe(HourlyJob, err)
	return err
}

func (s *Scheduler) RunDaily(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	err := s.jobs.Daily.ResetDailyRanks(ctx)
	if err != nil {
		// 日榜重置中途失败需人工处理，不自动重试
		logx.WithContext(ctx).Errorw("daily rank reset failed", logx.Field("error", err.Error()))
	}
	s.observe(DailyJob, err)
	return err
}

func (s *Scheduler) observe(job string, err error) {
	if s.metrics != nil {
		s.metrics.ObserveJob(job, err)
	}
}

// cronLogger 将 cron 的日志输出到 logx
type cronLogger struct{}

func (cronLogger) Info(msg string, keysAndValues ...interface{}) {
	logx.Debugw(msg, fields(keysAndValues)...)
}

func (cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	logx.Errorw(msg, append(fields(keysAndValues), logx.Field("error", err.Error()))...)
}

func fields(keysAndValues []interface{}) []logx.LogField {
	ret := make([]logx.LogField, 0, len(keysAndValues)/2)
	for i := 0; i+1 < len(keysAndValues); i += 2 {
		ret = append(ret, logx.Field(fmt.Sprint(keysAndValues[i]), keysAndValues[i+1]))
	}
	return ret
}
