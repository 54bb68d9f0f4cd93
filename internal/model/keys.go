package model

import "time"

// 与画布服务共用的 Redis key
const (
	TotalUserRankKey        = "rank"
	DailyUserRankKey        = "rankd"
	DailyCountryRankKey     = "crankd"
	HourlyCountryRankKey    = "crankh"
	PrevDailyCountryKey     = "pcrankd"
	PrevDailyCountryTsKey   = "pcrankdts"
	PrevDayTopKey           = "prankd"
	userDayArchivePrefix    = "ds"
	countryDayArchivePrefix = "cds"
	OnlineCounterKey        = "tonl"
	PrevHourlyPlacedKey     = "tmph"
	HourlyPixelCounterKey   = "thpx"
	DailyPixelCounterKey    = "tdpx"
)

// dateKeyLayout 即 YYYYMMDD，所有日期 key 统一按 UTC 计算
const dateKeyLayout = "20060102"

// DateKey 返回时间 t 对应的归档日期 key（UTC）
func DateKey(t time.Time) string {
	return t.UTC().Format(dateKeyLayout)
}

// UserDayArchiveKey 某日用户日榜归档
func UserDayArchiveKey(t time.Time) string {
	return userDayArchivePrefix + ":" + DateKey(t)
}

// CountryDayArchiveKey 某日国家日榜归档
func CountryDayArchiveKey(t time.Time) string {
	return countryDayArchivePrefix + ":" + DateKey(t)
}

// DidRollover 判断 prev 与 now 之间是否跨过了日榜重置，即两者的 UTC 日期不同
func DidRollover(prev, now time.Time) bool {
	return DateKey(prev) != DateKey(now)
}

// DaysBefore 返回 t 之前 days 个自然日的同一时刻（UTC）
func DaysBefore(t time.Time, days int) time.Time {
	return t.UTC().AddDate(0, 0, -days)
}
