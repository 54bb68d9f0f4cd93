package types

// UserRanks 表示某个用户的总榜、日榜分数与名次
// 字段为 nil 表示该用户在对应榜单中未上榜，不会用 0 代替
type UserRanks struct {
	TotalPixels *int64 `json:"totalPixels"`
	DailyPixels *int64 `json:"dailyPixels"`
	TotalRank   *int64 `json:"totalRank"`
	DailyRank   *int64 `json:"dailyRank"`
}

// RankedUser 表示排行榜中的一项
// 主维度（查询的榜单）一定有值，另一维度可能为 nil
type RankedUser struct {
	UserID      int64  `json:"id"`
	TotalPixels *int64 `json:"t"`
	TotalRank   *int64 `json:"r"`
	DailyPixels *int64 `json:"dt"`
	DailyRank   *int64 `json:"dr"`
}

// CountryScore 表示国家榜中的一项
type CountryScore struct {
	CountryCode string `json:"cc"`
	Pixels      int64  `json:"px"`
}

// UserPixels 表示某用户在某一天的像素数
type UserPixels struct {
	UserID int64 `json:"id"`
	Pixels int64 `json:"px"`
}

// TopDailyHistory 过去若干天每天的前十名
// Users 为所有出现过的用户去重后的列表，便于调用方一次性查询用户信息
type TopDailyHistory struct {
	Users []int64        `json:"users"`
	Stats [][]UserPixels `json:"stats"`
}
