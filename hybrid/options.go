package hybrid

import (
	"github.com/rushteam/animerec/cache"
	"github.com/rushteam/animerec/core"
	"github.com/rushteam/animerec/filter"
	"github.com/rushteam/animerec/pipeline"
)

// Config 是 Recommender 的默认参数。
type Config struct {
	SimilarUsers  int     // 相似用户数
	SimilarItems  int     // 每个种子物品扩展的相似物品数
	TopN          int     // 默认返回数量
	UserWeight    float64 // u2u 融合权重
	ContentWeight float64 // i2i 融合权重
}

// DefaultConfig 返回默认参数：10 / 10 / 10 / 0.5 / 0.5。
func DefaultConfig() Config {
	return Config{
		SimilarUsers:  defaults.DefaultTopKSimilarUsers(),
		SimilarItems:  defaults.DefaultTopKSimilarItems(),
		TopN:          defaults.DefaultTopN(),
		UserWeight:    defaults.DefaultUserWeight(),
		ContentWeight: defaults.DefaultContentWeight(),
	}
}

// Option 配置 Recommender。
type Option func(*Recommender)

// WithConfig 替换默认参数。
func WithConfig(cfg Config) Option {
	return func(r *Recommender) {
		r.cfg = cfg
	}
}

// WithPipeline 使用自定义 Pipeline（例如从 YAML 构建）。
func WithPipeline(p *pipeline.Pipeline) Option {
	return func(r *Recommender) {
		r.pipeline = p
	}
}

// WithFilters 在默认 Pipeline 的召回与融合之间插入过滤器；使用 WithPipeline 时无效。
func WithFilters(filters ...filter.Filter) Option {
	return func(r *Recommender) {
		r.filters = append(r.filters, filters...)
	}
}

// WithCache 启用结果缓存。
func WithCache(c *cache.Cache) Option {
	return func(r *Recommender) {
		r.cache = c
	}
}

// request 是单次推荐的参数。
// 只有调用方显式设置的参数才写入 RecommendContext.Params，
// 未设置时由 Pipeline 中各 Node 自身的配置决定。
type request struct {
	userWeight    float64
	contentWeight float64
	topN          int

	hasUserWeight    bool
	hasContentWeight bool
	hasTopN          bool
}

// params 返回需要覆盖 Node 配置的请求级参数。
func (q request) params() map[string]any {
	params := make(map[string]any, 3)
	if q.hasUserWeight {
		params[core.ParamUserWeight] = q.userWeight
	}
	if q.hasContentWeight {
		params[core.ParamContentWeight] = q.contentWeight
	}
	if q.hasTopN {
		params[core.ParamTopN] = q.topN
	}
	return params
}

// cacheKey 未设置的参数用 "-" 占位，与显式传入默认值区分。
func (q request) cacheKey() []any {
	parts := []any{"-", "-", "-"}
	if q.hasUserWeight {
		parts[0] = q.userWeight
	}
	if q.hasContentWeight {
		parts[1] = q.contentWeight
	}
	if q.hasTopN {
		parts[2] = q.topN
	}
	return parts
}

// RecommendOption 配置单次推荐。
type RecommendOption func(*request)

// WithWeights 设置融合权重。
func WithWeights(userWeight, contentWeight float64) RecommendOption {
	return func(q *request) {
		q.userWeight, q.hasUserWeight = userWeight, true
		q.contentWeight, q.hasContentWeight = contentWeight, true
	}
}

// WithTopN 设置返回数量。
func WithTopN(n int) RecommendOption {
	return func(q *request) {
		q.topN, q.hasTopN = n, true
	}
}

// WithUserWeight 只设置 u2u 权重。
func WithUserWeight(w float64) RecommendOption {
	return func(q *request) {
		q.userWeight, q.hasUserWeight = w, true
	}
}

// WithContentWeight 只设置 i2i 权重。
func WithContentWeight(w float64) RecommendOption {
	return func(q *request) {
		q.contentWeight, q.hasContentWeight = w, true
	}
}
