package svc

import (
	"context"
	"fmt"

	"github.com/coder/quartz"
	"github.com/go-redis/redis/v8"

	"pixel_ranking/internal/cache"
	"pixel_ranking/internal/config"
	"pixel_ranking/internal/logic"
	"pixel_ranking/internal/metrics"
	"pixel_ranking/internal/model"
)

type ServiceContext struct {
	Config        config.Config
	RedisClient   redis.UniversalClient
	Store         model.ScoreStore
	Metrics       *metrics.Metrics
	Cache         *cache.HistoryCache
	RankingLogic  *logic.RankingLogic
	SamplerLogic  *logic.SamplerLogic
	HourlyLogic   *logic.HourlyLogic
	RolloverLogic *logic.RolloverLogic
	HistoryLogic  *logic.HistoryLogic
}

func NewServiceContext(c config.Config) (*ServiceContext, error) {
	redisClient := redis.NewClient(&redis.Options{
		Addr:         c.Redis.Address,
		Password:     c.Redis.Password,
		DB:           c.Redis.DB,
		PoolSize:     c.Redis.PoolSize,
		MinIdleConns: c.Redis.MinIdleConns,
	})
	if err := redisClient.Ping(context.Background()).Err(); err != nil {
		_ = redisClient.Close()
		return nil, fmt.Errorf("connect redis %s failed: %w", c.Redis.Address, err)
	}
	return NewServiceContextWithClient(c, redisClient, quartz.NewReal())
}

// NewServiceContextWithClient 使用已有的 Redis 连接和时钟组装服务
func NewServiceContextWithClient(c config.Config, redisClient redis.UniversalClient, clock quartz.Clock) (*ServiceContext, error) {
	historyCache, err := cache.New(c.Cache)
	if err != nil {
		return nil, fmt.Errorf("init history cache failed: %w", err)
	}
	store := model.NewRedisScoreStore(redisClient)
	m := metrics.New(nil)
	return &ServiceContext{
		Config:      c,
		RedisClient: redisClient,
		Store:       store,
		Metrics:     m,
		Cache:       historyCache,
		RankingLogic: &logic.RankingLogic{
			Store:   store,
			Metrics: m,
		},
		SamplerLogic: &logic.SamplerLogic{
			Store:   store,
			Clock:   clock,
			Metrics: m,
		},
		HourlyLogic: &logic.HourlyLogic{
			Store:   store,
			Clock:   clock,
			Metrics: m,
		},
		RolloverLogic: &logic.RolloverLogic{
			Store: store,
			Clock: clock,
		},
		HistoryLogic: &logic.HistoryLogic{
			Store: store,
			Clock: clock,
			Cache: historyCache,
		},
	}, nil
}

func (s *ServiceContext) Close() {
	s.Cache.Close()
	_ = s.RedisClient.Close()
}
