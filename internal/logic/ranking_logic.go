package logic

import (
	"context"
	"fmt"
	"strings"

	"pixel_ranking/internal/metrics"
	"pixel_ranking/internal/model"
	"pixel_ranking/internal/types"
)

// RankingLogic 负责记录像素放置并维护总榜、日榜和国家日榜
// 可被放置事件流并发调用
type RankingLogic struct {
	Store   model.ScoreStore
	Metrics *metrics.Metrics
}

// RecordPlacement 用户放置一个像素时触发
// 用户总榜、用户日榜、国家日榜各加 1，三次加分在同一事务内完成
func (l *RankingLogic) RecordPlacement(ctx context.Context, userID int64, countryCode string) error {
	countryCode = strings.TrimSpace(countryCode)
	if countryCode == "" {
		return fmt.Errorf("empty country code: %w", ErrInvalidArgument)
	}
	uid := model.UserMember(userID)
	err := l.Store.IncrScores(ctx,
		model.Incr{Key: model.TotalUserRankKey, Member: uid, Delta: 1},
		model.Incr{Key: model.DailyUserRankKey, Member: uid, Delta: 1},
		model.Incr{Key: model.DailyCountryRankKey, Member: countryCode, Delta: 1},
	)
	if err != nil {
		return fmt.Errorf("record placement of user %d failed: %w", userID, err)
	}
	if l.Metrics != nil {
		l.Metrics.Placements.Inc()
	}
	return nil
}

// GetUserRanks 获取用户的总像素、日像素及对应名次
// 未上榜的维度返回 nil
func (l *RankingLogic) GetUserRanks(ctx context.Context, userID int64) (*types.UserRanks, error) {
	uid := []string{model.UserMember(userID)}
	totalScores, totalRanks, err := l.Store.ScoresAndRanks(ctx, model.TotalUserRankKey, uid, true)
	if err != nil {
		return nil, fmt.Errorf("query total rank of user %d failed: %w", userID, err)
	}
	dailyScores, dailyRanks, err := l.Store.ScoresAndRanks(ctx, model.DailyUserRankKey, uid, true)
	if err != nil {
		return nil, fmt.Errorf("query daily rank of user %d failed: %w", userID, err)
	}
	return &types.UserRanks{
		TotalPixels: model.ScoreValue(totalScores[0]),
		DailyPixels: model.ScoreValue(dailyScores[0]),
		TotalRank:   model.RankValue(totalRanks[0]),
		DailyRank:   model.RankValue(dailyRanks[0]),
	}, nil
}
