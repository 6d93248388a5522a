// Package cache 提供基于 core.Store 的推荐结果缓存。
//
// 缓存是尽力而为的：后端故障只记录日志与指标，不影响请求；
// 连续故障时熔断器打开，直接跳过缓存读写。
// 相同 key 的并发未命中通过 singleflight 合并为一次计算。
package cache

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/sony/gobreaker/v2"
	"golang.org/x/sync/singleflight"

	"github.com/rushteam/animerec/core"
	"github.com/rushteam/animerec/logging"
	"github.com/rushteam/animerec/metrics"
)

// Config 缓存配置
type Config struct {
	// KeyPrefix 所有 key 的前缀
	KeyPrefix string
	// TTL 过期时间，<= 0 表示不过期
	TTL time.Duration
	// BreakerName 熔断器名称（用于日志/监控）
	BreakerName string
	// BreakerTimeout 熔断器打开后多久进入半开状态
	BreakerTimeout time.Duration
	// BreakerFailures 连续失败多少次后打开熔断器
	BreakerFailures uint32
}

// DefaultConfig 返回默认配置。
func DefaultConfig() Config {
	return Config{
		KeyPrefix:       "animerec:",
		TTL:             10 * time.Minute,
		BreakerName:     "cache-store",
		BreakerTimeout:  30 * time.Second,
		BreakerFailures: 5,
	}
}

// Cache 是推荐结果缓存。
type Cache struct {
	store  core.Store
	cfg    Config
	cb     *gobreaker.CircuitBreaker[[]byte]
	flight singleflight.Group
}

// New 创建缓存。
func New(store core.Store, cfg Config) *Cache {
	if cfg.BreakerName == "" {
		cfg.BreakerName = "cache-store"
	}
	if cfg.BreakerFailures == 0 {
		cfg.BreakerFailures = 5
	}
	metrics.SetCircuitBreakerState(cfg.BreakerName, 0)

	cb := gobreaker.NewCircuitBreaker[[]byte](gobreaker.Settings{
		Name:        cfg.BreakerName,
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     cfg.BreakerTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.BreakerFailures
		},
		// key 不存在是正常的未命中
		IsSuccessful: func(err error) bool {
			return err == nil || core.IsStoreNotFound(err)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logging.Warn().Str("breaker", name).Str("from", from.String()).Str("to", to.String()).
				Msg("cache circuit breaker state changed")
			metrics.SetCircuitBreakerState(name, int(to))
		},
	})

	return &Cache{store: store, cfg: cfg, cb: cb}
}

// Key 用 ':' 拼接各部分并加上前缀。
func (c *Cache) Key(parts ...any) string {
	var b strings.Builder
	b.WriteString(c.cfg.KeyPrefix)
	for i, p := range parts {
		if i > 0 {
			b.WriteByte(':')
		}
		fmt.Fprint(&b, p)
	}
	return b.String()
}

// State 返回熔断器状态。
func (c *Cache) State() gobreaker.State {
	return c.cb.State()
}

func (c *Cache) get(ctx context.Context, key string) ([]byte, error) {
	return c.cb.Execute(func() ([]byte, error) {
		return c.store.Get(ctx, key)
	})
}

func (c *Cache) set(ctx context.Context, key string, value []byte) error {
	ttl := int(c.cfg.TTL / time.Second)
	_, err := c.cb.Execute(func() ([]byte, error) {
		return nil, c.store.Set(ctx, key, value, ttl)
	})
	return err
}

// loaded 是一次合并计算的结果；payload 为 v 的 JSON 编码，编码失败时为 nil。
type loaded[T any] struct {
	v       T
	payload []byte
}

// Fetch 读取缓存，未命中时调用 load 计算并回写。
// load 的错误原样返回且不缓存；缓存读写失败只记录，不影响结果。
//
// 合并计算运行在与调用方取消信号解耦的 context 上：某个调用方取消或超时，
// 只有它自己返回 ctx.Err()，等待同一 key 的其他调用方不受影响。
// 多个调用方共享一次计算时，各自拿到从 JSON 解码出的独立副本。
func Fetch[T any](ctx context.Context, c *Cache, key string, load func(ctx context.Context) (T, error)) (T, error) {
	log := logging.Ctx(ctx)
	var zero T

	data, err := c.get(ctx, key)
	switch {
	case err == nil:
		var v T
		derr := json.Unmarshal(data, &v)
		if derr == nil {
			metrics.RecordCacheHit()
			return v, nil
		}
		metrics.RecordCacheError("decode")
		log.Warn().Err(derr).Str("key", key).Msg("cache decode failed")
	case core.IsStoreNotFound(err):
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		log.Debug().Str("key", key).Msg("cache bypassed, breaker open")
	default:
		metrics.RecordCacheError("get")
		log.Warn().Err(err).Str("key", key).Msg("cache get failed")
	}
	metrics.RecordCacheMiss()

	ch := c.flight.DoChan(key, func() (any, error) {
		lctx := context.WithoutCancel(ctx)
		v, err := load(lctx)
		if err != nil {
			return nil, err
		}
		payload, merr := json.Marshal(v)
		if merr != nil {
			metrics.RecordCacheError("encode")
			log.Warn().Err(merr).Str("key", key).Msg("cache encode failed")
			return loaded[T]{v: v}, nil
		}
		if serr := c.set(lctx, key, payload); serr != nil {
			metrics.RecordCacheError("set")
			log.Warn().Err(serr).Str("key", key).Msg("cache set failed")
		}
		return loaded[T]{v: v, payload: payload}, nil
	})

	select {
	case <-ctx.Done():
		return zero, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return zero, res.Err
		}
		l := res.Val.(loaded[T])
		if !res.Shared || l.payload == nil {
			return l.v, nil
		}
		var v T
		if err := json.Unmarshal(l.payload, &v); err != nil {
			metrics.RecordCacheError("decode")
			log.Warn().Err(err).Str("key", key).Msg("cache decode failed")
			return l.v, nil
		}
		return v, nil
	}
}
