// Package hybrid 实现混合推荐：基于用户 embedding 的协同召回与基于物品 embedding 的内容扩展，
// 按出现次数加权融合后返回 Top-N。
//
//	res, err := hybrid.LoadResources(ctx, sources)
//	rec, err := hybrid.New(res)
//	names, err := rec.Recommend(ctx, 11880, hybrid.WithWeights(0.5, 0.5), hybrid.WithTopN(10))
package hybrid

import (
	"context"
	"math"
	"time"

	"github.com/rushteam/animerec/cache"
	"github.com/rushteam/animerec/core"
	"github.com/rushteam/animerec/filter"
	"github.com/rushteam/animerec/logging"
	"github.com/rushteam/animerec/metrics"
	"github.com/rushteam/animerec/pipeline"
	"github.com/rushteam/animerec/rank"
	"github.com/rushteam/animerec/recall"
	"github.com/rushteam/animerec/rerank"
	"github.com/rushteam/animerec/vector"
)

var defaults core.RecallConfig = &core.DefaultRecallConfig{}

// SceneHybrid 是混合推荐的场景名。
const SceneHybrid = "hybrid"

// Recommendation 是一条带解释信息的推荐结果。
type Recommendation struct {
	AnimeID      int64   `json:"anime_id"`
	Name         string  `json:"name"`
	Genre        string  `json:"genre"`
	Score        float64 `json:"score"`
	UserVotes    int     `json:"user_votes"`
	ContentVotes int     `json:"content_votes"`
	Synopsis     string  `json:"synopsis,omitempty"`
}

// SimilarUser 是一个相似用户。
type SimilarUser struct {
	UserID     int64   `json:"user_id"`
	Similarity float64 `json:"similarity"`
}

// SimilarAnime 是一个相似物品。
type SimilarAnime struct {
	AnimeID    int64   `json:"anime_id"`
	Name       string  `json:"name"`
	Genre      string  `json:"genre"`
	Synopsis   string  `json:"synopsis,omitempty"`
	Similarity float64 `json:"similarity"`
}

// Recommender 是混合推荐器，构建后只读，可并发使用。
type Recommender struct {
	res      *Resources
	cfg      Config
	prefs    *recall.PreferenceExtractor
	pipeline *pipeline.Pipeline
	filters  []filter.Filter
	cache    *cache.Cache
}

// New 创建推荐器；未指定 Pipeline 时使用默认的 u2u → i2i → [filter] → fusion → topN。
func New(res *Resources, opts ...Option) (*Recommender, error) {
	r := &Recommender{
		res: res,
		cfg: DefaultConfig(),
		prefs: &recall.PreferenceExtractor{
			Ratings: res.Ratings,
			Catalog: res.Catalog,
		},
	}
	for _, opt := range opts {
		opt(r)
	}
	if err := r.cfg.validate(); err != nil {
		return nil, err
	}
	if r.pipeline == nil {
		r.pipeline = DefaultPipeline(res, r.cfg, r.filters...)
	}
	return r, nil
}

// DefaultPipeline 构建默认的混合推荐 Pipeline。
func DefaultPipeline(res *Resources, cfg Config, filters ...filter.Filter) *pipeline.Pipeline {
	prefs := &recall.PreferenceExtractor{Ratings: res.Ratings, Catalog: res.Catalog}
	nodes := []pipeline.Node{
		&recall.UserNeighbors{Users: res.Users, Preferences: prefs, K: cfg.SimilarUsers},
		&recall.ContentExpansion{Items: res.Items, Catalog: res.Catalog, K: cfg.SimilarItems},
	}
	if len(filters) > 0 {
		nodes = append(nodes, &filter.FilterNode{Filters: filters})
	}
	nodes = append(nodes,
		&rank.Fusion{UserWeight: cfg.UserWeight, ContentWeight: cfg.ContentWeight},
		&rerank.TopNNode{N: cfg.TopN},
	)
	return &pipeline.Pipeline{Name: SceneHybrid, Nodes: nodes}
}

// Pipeline 返回正在使用的 Pipeline。
func (r *Recommender) Pipeline() *pipeline.Pipeline { return r.pipeline }

// Recommend 返回推荐的物品名称，按融合分数降序。
//
// 目标用户不在用户索引中时返回 NOT_FOUND；参数非法返回 INVALID_INPUT；
// 任何中间阶段为空时返回空列表（不是错误）。
func (r *Recommender) Recommend(ctx context.Context, userID int64, opts ...RecommendOption) ([]string, error) {
	recs, err := r.Explain(ctx, userID, opts...)
	if err != nil {
		return nil, err
	}
	names := make([]string, len(recs))
	for i, rec := range recs {
		names[i] = rec.Name
	}
	return names, nil
}

// Explain 与 Recommend 相同，但返回每个物品的分数、票数、类型与简介。
func (r *Recommender) Explain(ctx context.Context, userID int64, opts ...RecommendOption) ([]Recommendation, error) {
	var req request
	for _, opt := range opts {
		opt(&req)
	}

	start := time.Now()
	recs, err := r.explain(ctx, userID, req)
	metrics.RecordRecommend(outcome(len(recs), err), time.Since(start))
	if err != nil {
		logging.Ctx(ctx).Warn().Err(err).Int64("user_id", userID).Msg("recommend failed")
		return nil, err
	}
	return recs, nil
}

func (r *Recommender) explain(ctx context.Context, userID int64, req request) ([]Recommendation, error) {
	if err := req.validate(); err != nil {
		return nil, err
	}
	if r.cache == nil {
		return r.run(ctx, userID, req)
	}
	key := r.cache.Key(append([]any{"rec", userID}, req.cacheKey()...)...)
	return cache.Fetch(ctx, r.cache, key, func(ctx context.Context) ([]Recommendation, error) {
		return r.run(ctx, userID, req)
	})
}

func (r *Recommender) run(ctx context.Context, userID int64, req request) ([]Recommendation, error) {
	rctx := &core.RecommendContext{
		UserID: userID,
		Scene:  SceneHybrid,
		Params: req.params(),
	}
	items, err := r.pipeline.Run(ctx, rctx, nil)
	if err != nil {
		return nil, err
	}

	out := make([]Recommendation, 0, len(items))
	for _, it := range items {
		rec := Recommendation{
			AnimeID: it.ID,
			Name:    it.Name(),
			Genre:   it.Genre(),
			Score:   it.Score,
		}
		rec.UserVotes, _ = it.Meta[core.MetaUserVotes].(int)
		rec.ContentVotes, _ = it.Meta[core.MetaContentVotes].(int)
		if a, err := r.res.Catalog.Get(core.ByID(it.ID)); err == nil {
			rec.Synopsis = a.Synopsis
		}
		out = append(out, rec)
	}

	if skipped, ok := rctx.GetLabel(recall.LabelSkippedCandidates); ok {
		logging.Ctx(ctx).Info().
			Int64("user_id", userID).
			Strs("skipped", skipped.Values()).
			Msg("some candidates had no item embedding")
	}
	return out, nil
}

// SimilarUsers 返回最相似的 k 个用户（不含自身）。
func (r *Recommender) SimilarUsers(_ context.Context, userID int64, k int) ([]SimilarUser, error) {
	neighbors, err := r.res.Users.NearestNeighborsByID(userID, k, vector.Closest, true)
	if err != nil {
		return nil, err
	}
	out := make([]SimilarUser, len(neighbors))
	for i, nb := range neighbors {
		out[i] = SimilarUser{UserID: nb.ID, Similarity: nb.Score}
	}
	return out, nil
}

// SimilarAnime 返回与查询物品最相似（或最不相似）的 k 个物品（不含自身）。
// 相似物品在元数据中不存在时丢弃。
func (r *Recommender) SimilarAnime(_ context.Context, q core.ItemQuery, k int, mode vector.Mode) ([]SimilarAnime, error) {
	anime, err := r.res.Catalog.Get(q)
	if err != nil {
		return nil, err
	}
	neighbors, err := r.res.Items.NearestNeighborsByID(anime.ID, k, mode, true)
	if err != nil {
		return nil, err
	}
	out := make([]SimilarAnime, 0, len(neighbors))
	for _, nb := range neighbors {
		a, err := r.res.Catalog.Get(core.ByID(nb.ID))
		if err != nil {
			continue
		}
		out = append(out, SimilarAnime{
			AnimeID:    a.ID,
			Name:       a.Name,
			Genre:      a.Genre,
			Synopsis:   a.Synopsis,
			Similarity: nb.Score,
		})
	}
	return out, nil
}

// Preferences 返回用户的偏好物品；没有评分的用户返回空列表。
func (r *Recommender) Preferences(_ context.Context, userID int64) ([]recall.Preference, error) {
	return r.prefs.TopRated(userID), nil
}

// Anime 查询物品元数据（含简介）。
func (r *Recommender) Anime(_ context.Context, q core.ItemQuery) (core.Anime, error) {
	return r.res.Catalog.Get(q)
}

func (c Config) validate() error {
	if c.SimilarUsers <= 0 || c.SimilarItems <= 0 || c.TopN <= 0 {
		return invalidInput("similar_users, similar_items and top_n must be positive")
	}
	if !finite(c.UserWeight) || !finite(c.ContentWeight) {
		return invalidInput("weights must be finite numbers")
	}
	return nil
}

func (q request) validate() error {
	if q.hasTopN && q.topN <= 0 {
		return invalidInput("top_n must be positive")
	}
	if (q.hasUserWeight && !finite(q.userWeight)) || (q.hasContentWeight && !finite(q.contentWeight)) {
		return invalidInput("weights must be finite numbers")
	}
	return nil
}

func invalidInput(msg string) error {
	return core.NewDomainError(core.ModuleRank, core.ErrorCodeInvalidInput, "hybrid: "+msg)
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

func outcome(n int, err error) string {
	switch {
	case err == nil && n == 0:
		return "empty"
	case err == nil:
		return "ok"
	case core.IsNotFound(err):
		return "not_found"
	case core.IsInvalidInput(err):
		return "invalid"
	default:
		return "error"
	}
}
