package model

import (
	"strconv"

	"pixel_ranking/internal/types"
)

// SumScores 累加集合中所有成员的分数，只适用于小集合（如国家日榜）
func SumScores(members []Member) int64 {
	var total int64
	for _, m := range members {
		total += int64(m.Score)
	}
	return total
}

// ScoreValue 将存储层分数转换为像素数，nil 表示未上榜
func ScoreValue(score *float64) *int64 {
	if score == nil {
		return nil
	}
	v := int64(*score)
	return &v
}

// RankValue 将从 0 开始的存储层排名转换为从 1 开始的名次，nil 表示未上榜
func RankValue(rank *int64) *int64 {
	if rank == nil {
		return nil
	}
	v := *rank + 1
	return &v
}

// ToCountryScores 将国家有序集合转为接口返回结构
func ToCountryScores(members []Member) []types.CountryScore {
	ret := make([]types.CountryScore, 0, len(members))
	for _, m := range members {
		ret = append(ret, types.CountryScore{
			CountryCode: m.Member,
			Pixels:      int64(m.Score),
		})
	}
	return ret
}

// ToUserPixels 将用户有序集合转为接口返回结构，非法 userId 会被跳过
func ToUserPixels(members []Member) []types.UserPixels {
	ret := make([]types.UserPixels, 0, len(members))
	for _, m := range members {
		id, err := strconv.ParseInt(m.Member, 10, 64)
		if err != nil {
			continue
		}
		ret = append(ret, types.UserPixels{
			UserID: id,
			Pixels: int64(m.Score),
		})
	}
	return ret
}

// UserMember 将 userId 转为有序集合成员
func UserMember(userID int64) string {
	return strconv.FormatInt(userID, 10)
}
