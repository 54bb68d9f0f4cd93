package model

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/go-redis/redis/v8"
)

// scoresAndRanksScript 在服务端一次性取出多个成员的分数和排名，避免两次查询之间排名漂移
// ARGV[1] 为 "1" 时按分数降序计算排名，其余参数为成员
// 返回 [score1, rank1, score2, rank2, ...]，不存在的成员为 ["", -1]
var scoresAndRanksScript = redis.NewScript(`
local rankCmd = 'ZRANK'
if ARGV[1] == '1' then
  rankCmd = 'ZREVRANK'
end
local ret = {}
for i = 2, #ARGV do
  local score = redis.call('ZSCORE', KEYS[1], ARGV[i])
  if score then
    ret[#ret + 1] = score
    ret[#ret + 1] = redis.call(rankCmd, KEYS[1], ARGV[i])
  else
    ret[#ret + 1] = ''
    ret[#ret + 1] = -1
  end
end
return ret
`)

// RedisScoreStore 基于 Redis 有序集合和列表实现 ScoreStore
type RedisScoreStore struct {
	RedisClient redis.UniversalClient
}

func NewRedisScoreStore(client redis.UniversalClient) *RedisScoreStore {
	return &RedisScoreStore{RedisClient: client}
}

func (s *RedisScoreStore) IncrScore(ctx context.Context, key, member string, delta float64) (float64, error) {
	return s.RedisClient.ZIncrBy(ctx, key, delta, member).Result()
}

func (s *RedisScoreStore) IncrScores(ctx context.Context, incrs ...Incr) error {
	if len(incrs) == 0 {
		return nil
	}
	pipe := s.RedisClient.TxPipeline()
	for _, in := range incrs {
		pipe.ZIncrBy(ctx, in.Key, in.Delta, in.Member)
	}
	_, err := pipe.Exec(ctx)
	return err
}

func (s *RedisScoreStore) Score(ctx context.Context, key, member string) (*float64, error) {
	score, err := s.RedisClient.ZScore(ctx, key, member).Result()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &score, nil
}

func (s *RedisScoreStore) Rank(ctx context.Context, key, member string, desc bool) (*int64, error) {
	var cmd *redis.IntCmd
	if desc {
		cmd = s.RedisClient.ZRevRank(ctx, key, member)
	} else {
		cmd = s.RedisClient.ZRank(ctx, key, member)
	}
	rank, err := cmd.Result()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &rank, nil
}

func (s *RedisScoreStore) RangeByRank(ctx context.Context, key string, start, stop int64, desc bool) ([]Member, error) {
	var cmd *redis.ZSliceCmd
	if desc {
		cmd = s.RedisClient.ZRevRangeWithScores(ctx, key, start, stop)
	} else {
		cmd = s.RedisClient.ZRangeWithScores(ctx, key, start, stop)
	}
	items, err := cmd.Result()
	if err != nil {
		return nil, err
	}
	ret := make([]Member, 0, len(items))
	for _, z := range items {
		ret = append(ret, Member{
			Member: fmt.Sprint(z.Member),
			Score:  z.Score,
		})
	}
	return ret, nil
}

func (s *RedisScoreStore) ScoresAndRanks(ctx context.Context, key string, members []string, desc bool) ([]*float64, []*int64, error) {
	scores := make([]*float64, len(members))
	ranks := make([]*int64, len(members))
	if len(members) == 0 {
		return scores, ranks, nil
	}
	args := make([]interface{}, 0, len(members)+1)
	if desc {
		args = append(args, "1")
	} else {
		args = append(args, "0")
	}
	for _, m := range members {
		args = append(args, m)
	}
	res, err := scoresAndRanksScript.Run(ctx, s.RedisClient, []string{key}, args...).Result()
	if err != nil {
		return nil, nil, err
	}
	vals, ok := res.([]interface{})
	if !ok || len(vals) != 2*len(members) {
		return nil, nil, fmt.Errorf("unexpected script reply %T with %d values", res, len(vals))
	}
	for i := range members {
		rawScore, _ := vals[2*i].(string)
		if rawScore == "" {
			continue
		}
		score, err := strconv.ParseFloat(rawScore, 64)
		if err != nil {
			return nil, nil, fmt.Errorf("parse score of %q: %w", members[i], err)
		}
		rank, ok := vals[2*i+1].(int64)
		if !ok {
			return nil, nil, fmt.Errorf("unexpected rank type %T for %q", vals[2*i+1], members[i])
		}
		scores[i] = &score
		ranks[i] = &rank
	}
	return scores, ranks, nil
}

func (s *RedisScoreStore) ReplaceSet(ctx context.Context, key string, members []Member) error {
	zMembers := make([]*redis.Z, 0, len(members))
	for _, m := range members {
		zMembers = append(zMembers, &redis.Z{
			Score:  m.Score,
			Member: m.Member,
		})
	}
	pipe := s.RedisClient.TxPipeline()
	pipe.Del(ctx, key)
	if len(zMembers) > 0 {
		pipe.ZAdd(ctx, key, zMembers...)
	}
	_, err := pipe.Exec(ctx)
	return err
}

func (s *RedisScoreStore) Copy(ctx context.Context, src, dst string, replace bool) (bool, error) {
	args := []interface{}{"copy", src, dst}
	if replace {
		args = append(args, "replace")
	}
	n, err := s.RedisClient.Do(ctx, args...).Int64()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

func (s *RedisScoreStore) Rename(ctx context.Context, src, dst string) error {
	err := s.RedisClient.Rename(ctx, src, dst).Err()
	if err != nil && strings.Contains(strings.ToLower(err.Error()), "no such key") {
		return fmt.Errorf("rename %s: %w", src, ErrNoSuchKey)
	}
	return err
}

func (s *RedisScoreStore) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	return s.RedisClient.Del(ctx, keys...).Err()
}

func (s *RedisScoreStore) PushFront(ctx context.Context, key, value string) error {
	return s.RedisClient.LPush(ctx, key, value).Err()
}

func (s *RedisScoreStore) Trim(ctx context.Context, key string, start, stop int64) error {
	return s.RedisClient.LTrim(ctx, key, start, stop).Err()
}

func (s *RedisScoreStore) ListRange(ctx context.Context, key string, start, stop int64) ([]string, error) {
	return s.RedisClient.LRange(ctx, key, start, stop).Result()
}

func (s *RedisScoreStore) Get(ctx context.Context, key string) (string, bool, error) {
	val, err := s.RedisClient.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return val, true, nil
}

func (s *RedisScoreStore) Set(ctx context.Context, key, value string) error {
	return s.RedisClient.Set(ctx, key, value, 0).Err()
}
