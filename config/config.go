// Package config 加载服务配置：内置默认值 → YAML 文件（可选）→ 环境变量，后者覆盖前者。
//
// 环境变量以 ANIMEREC_ 为前缀，双下划线分隔层级：
//
//	ANIMEREC_SERVER__ADDR=:9000          -> server.addr
//	ANIMEREC_RECOMMEND__TOP_N=20         -> recommend.top_n
//	ANIMEREC_DATA__EMBEDDINGS__SOURCE=store
package config

import (
	"time"

	"github.com/rushteam/animerec/cache"
	"github.com/rushteam/animerec/hybrid"
	"github.com/rushteam/animerec/logging"
	"github.com/rushteam/animerec/store"
)

// Config 是完整的服务配置。
type Config struct {
	Server    ServerConfig    `koanf:"server"`
	Log       LogConfig       `koanf:"log"`
	Data      DataConfig      `koanf:"data"`
	Redis     RedisConfig     `koanf:"redis"`
	Cache     CacheConfig     `koanf:"cache"`
	Recommend RecommendConfig `koanf:"recommend"`
}

// ServerConfig 是 HTTP 服务配置。
type ServerConfig struct {
	Addr           string        `koanf:"addr" validate:"required"`
	RequestTimeout time.Duration `koanf:"request_timeout" validate:"gt=0"`
	// RateLimit 为 0 时不限流
	RateLimit       int           `koanf:"rate_limit" validate:"gte=0"`
	RateWindow      time.Duration `koanf:"rate_window" validate:"gt=0"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout" validate:"gt=0"`
}

type LogConfig struct {
	Level  string `koanf:"level" validate:"oneof=trace debug info warn error"`
	Format string `koanf:"format" validate:"oneof=json console"`
	Caller bool   `koanf:"caller"`
}

// DataConfig 描述离线产物所在位置。
type DataConfig struct {
	Source      string           `koanf:"source" validate:"oneof=csv sqlite"`
	RatingsCSV  string           `koanf:"ratings_csv" validate:"required_if=Source csv"`
	AnimeCSV    string           `koanf:"anime_csv" validate:"required_if=Source csv"`
	SynopsisCSV string           `koanf:"synopsis_csv"`
	SQLitePath  string           `koanf:"sqlite_path" validate:"required_if=Source sqlite"`
	Embeddings  EmbeddingsConfig `koanf:"embeddings"`
}

// EmbeddingsConfig: source=file 时读取本地 JSON；source=store 时从 Redis 读取。
type EmbeddingsConfig struct {
	Source    string `koanf:"source" validate:"oneof=file store"`
	UserPath  string `koanf:"user_path" validate:"required_if=Source file"`
	ItemPath  string `koanf:"item_path" validate:"required_if=Source file"`
	KeyPrefix string `koanf:"key_prefix"`
}

type RedisConfig struct {
	Addr        string        `koanf:"addr"`
	Password    string        `koanf:"password"`
	DB          int           `koanf:"db" validate:"gte=0"`
	DialTimeout time.Duration `koanf:"dial_timeout"`
}

// CacheConfig 是推荐结果缓存配置；启用时需要配置 redis.addr。
type CacheConfig struct {
	Enabled         bool          `koanf:"enabled"`
	TTL             time.Duration `koanf:"ttl" validate:"gte=0"`
	BreakerTimeout  time.Duration `koanf:"breaker_timeout" validate:"gt=0"`
	BreakerFailures uint32        `koanf:"breaker_failures" validate:"gt=0"`
}

// RecommendConfig 是推荐默认参数。
type RecommendConfig struct {
	SimilarUsers  int     `koanf:"similar_users" validate:"gt=0"`
	SimilarItems  int     `koanf:"similar_items" validate:"gt=0"`
	TopN          int     `koanf:"top_n" validate:"gt=0"`
	UserWeight    float64 `koanf:"user_weight"`
	ContentWeight float64 `koanf:"content_weight"`
	// PipelineFile 为空时使用默认 Pipeline
	PipelineFile string `koanf:"pipeline_file"`
	// Blacklist 中的物品永远不会被推荐
	Blacklist []int64 `koanf:"blacklist"`
}

func defaultConfig() *Config {
	rec := hybrid.DefaultConfig()
	cc := cache.DefaultConfig()
	lc := logging.DefaultConfig()
	return &Config{
		Server: ServerConfig{
			Addr:            ":8080",
			RequestTimeout:  10 * time.Second,
			RateLimit:       100,
			RateWindow:      time.Minute,
			ShutdownTimeout: 15 * time.Second,
		},
		Log: LogConfig{
			Level:  lc.Level,
			Format: lc.Format,
			Caller: lc.Caller,
		},
		Data: DataConfig{
			Source:      "csv",
			RatingsCSV:  "data/ratings.csv",
			AnimeCSV:    "data/anime.csv",
			SynopsisCSV: "data/anime_with_synopsis.csv",
			Embeddings: EmbeddingsConfig{
				Source:    "file",
				UserPath:  "data/user_embeddings.json",
				ItemPath:  "data/anime_embeddings.json",
				KeyPrefix: cc.KeyPrefix,
			},
		},
		Redis: RedisConfig{
			DialTimeout: 5 * time.Second,
		},
		Cache: CacheConfig{
			Enabled:         false,
			TTL:             cc.TTL,
			BreakerTimeout:  cc.BreakerTimeout,
			BreakerFailures: cc.BreakerFailures,
		},
		Recommend: RecommendConfig{
			SimilarUsers:  rec.SimilarUsers,
			SimilarItems:  rec.SimilarItems,
			TopN:          rec.TopN,
			UserWeight:    rec.UserWeight,
			ContentWeight: rec.ContentWeight,
		},
	}
}

// Hybrid 返回推荐器参数。
func (c *Config) Hybrid() hybrid.Config {
	return hybrid.Config{
		SimilarUsers:  c.Recommend.SimilarUsers,
		SimilarItems:  c.Recommend.SimilarItems,
		TopN:          c.Recommend.TopN,
		UserWeight:    c.Recommend.UserWeight,
		ContentWeight: c.Recommend.ContentWeight,
	}
}

// Logging 返回日志配置。
func (c *Config) Logging() logging.Config {
	lc := logging.DefaultConfig()
	lc.Level = c.Log.Level
	lc.Format = c.Log.Format
	lc.Caller = c.Log.Caller
	return lc
}

// CacheSettings 返回缓存配置。
func (c *Config) CacheSettings() cache.Config {
	cc := cache.DefaultConfig()
	cc.KeyPrefix = c.Data.Embeddings.KeyPrefix
	cc.TTL = c.Cache.TTL
	cc.BreakerTimeout = c.Cache.BreakerTimeout
	cc.BreakerFailures = c.Cache.BreakerFailures
	return cc
}

// RedisSettings 返回 Redis 连接配置。
func (c *Config) RedisSettings() store.RedisConfig {
	return store.RedisConfig{
		Addr:        c.Redis.Addr,
		Password:    c.Redis.Password,
		DB:          c.Redis.DB,
		DialTimeout: c.Redis.DialTimeout,
	}
}

// NeedsRedis 表示是否需要连接 Redis。
func (c *Config) NeedsRedis() bool {
	return c.Cache.Enabled || c.Data.Embeddings.Source == "store"
}
