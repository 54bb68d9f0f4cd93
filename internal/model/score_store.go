package model

import (
	"context"
	"errors"
)

// ErrNoSuchKey 重命名时源 key 不存在
var ErrNoSuchKey = errors.New("no such key")

// Member 表示有序集合中的一个成员及其分数
type Member struct {
	Member string
	Score  float64
}

// Incr 表示对某个有序集合成员的一次加分
type Incr struct {
	Key    string
	Member string
	Delta  float64
}

// ScoreStore 是排行榜依赖的有序集合/键值存储契约
// 不存在的分数、排名以 nil 表示，排名从 0 开始
type ScoreStore interface {
	IncrScore(ctx context.Context, key, member string, delta float64) (float64, error)
	// IncrScores 在一个事务内完成多个加分，不会部分生效
	IncrScores(ctx context.Context, incrs ...Incr) error
	Score(ctx context.Context, key, member string) (*float64, error)
	Rank(ctx context.Context, key, member string, desc bool) (*int64, error)
	RangeByRank(ctx context.Context, key string, start, stop int64, desc bool) ([]Member, error)
	// ScoresAndRanks 在一次往返内由服务端同时取出分数和排名，结果与 members 顺序一致
	ScoresAndRanks(ctx context.Context, key string, members []string, desc bool) ([]*float64, []*int64, error)
	// ReplaceSet 在一个事务内清空 key 并写入 members，members 为空时只删除
	ReplaceSet(ctx context.Context, key string, members []Member) error
	Copy(ctx context.Context, src, dst string, replace bool) (bool, error)
	Rename(ctx context.Context, src, dst string) error
	Delete(ctx context.Context, keys ...string) error
	PushFront(ctx context.Context, key, value string) error
	Trim(ctx context.Context, key string, start, stop int64) error
	ListRange(ctx context.Context, key string, start, stop int64) ([]string, error)
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
}
