package cache

import (
	"time"

	"github.com/dgraph-io/ristretto"
	"github.com/zeromicro/go-zero/core/logx"

	"pixel_ranking/internal/config"
)

// HistoryCache 缓存历史榜单等读多写少的查询结果
// 零值和 nil 均可安全使用，此时不缓存任何内容
type HistoryCache struct {
	client *ristretto.Cache
	ttl    time.Duration
}

func New(cfg config.CacheConf) (*HistoryCache, error) {
	if !cfg.Enabled {
		return nil, nil
	}
	client, err := ristretto.NewCache(&ristretto.Config{
		NumCounters: cfg.NumCounters,
		MaxCost:     cfg.MaxCost,
		BufferItems: 64,
	})
	if err != nil {
		return nil, err
	}
	logx.Infow("history cache initialized",
		logx.Field("ttlSeconds", cfg.TTLSeconds),
		logx.Field("maxCost", cfg.MaxCost))
	return &HistoryCache{
		client: client,
		ttl:    time.Duration(cfg.TTLSeconds) * time.Second,
	}, nil
}

func (c *HistoryCache) Get(key string) (interface{}, bool) {
	if c == nil || c.client == nil {
		return nil, false
	}
	return c.client.Get(key)
}

// Set 每个条目的 cost 固定为 1
func (c *HistoryCache) Set(key string, value interface{}) {
	if c == nil || c.client == nil {
		return
	}
	c.client.SetWithTTL(key, value, 1, c.ttl)
}

// Wait 等待异步写入完成
func (c *HistoryCache) Wait() {
	if c == nil || c.client == nil {
		return
	}
	c.client.Wait()
}

func (c *HistoryCache) Clear() {
	if c == nil || c.client == nil {
		return
	}
	c.client.Clear()
}

func (c *HistoryCache) Close() {
	if c == nil || c.client == nil {
		return
	}
	c.client.Close()
}
