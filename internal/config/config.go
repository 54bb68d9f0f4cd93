package config

import "github.com/zeromicro/go-zero/rest"

type Config struct {
	rest.RestConf
	Redis    RedisConf
	Stats    StatsConf    `json:",optional"`
	Schedule ScheduleConf `json:",optional"`
	Cache    CacheConf    `json:",optional"`
}

type RedisConf struct {
	Address      string
	Password     string `json:",optional"`
	DB           int    `json:",default=0"`
	PoolSize     int    `json:",default=10"`
	MinIdleConns int    `json:",default=2"`
}

// StatsConf 统计相关参数
type StatsConf struct {
	// CountryWindow 国家小时榜参与计算的国家数量
	CountryWindow int64 `json:",default=100"`
}

// ScheduleConf 内置调度，使用外部调度时关闭
// 规则为 5 段 cron 表达式或 @hourly 之类的描述符，按 UTC 解析
// 日重置默认错开整点，避免与整点的小时任务同时运行
type ScheduleConf struct {
	Enabled bool   `json:",default=true"`
	Hourly  string `json:",default=@hourly"`
	Daily   string `json:",default=5 0 * * *"`
}

// CacheConf 历史榜单缓存
type CacheConf struct {
	Enabled     bool  `json:",default=true"`
	TTLSeconds  int   `json:",default=60"`
	MaxCost     int64 `json:",default=1024"`
	NumCounters int64 `json:",default=10240"`
}
