package hybrid

import (
	"context"
	"fmt"

	"github.com/rushteam/animerec/core"
	"github.com/rushteam/animerec/filter"
	"github.com/rushteam/animerec/pipeline"
	"github.com/rushteam/animerec/pkg/conv"
	"github.com/rushteam/animerec/rank"
	"github.com/rushteam/animerec/recall"
	"github.com/rushteam/animerec/rerank"
)

// NewNodeFactory 返回注册了全部内置 Node 的工厂。
// 构建器捕获已加载的 Resources；store 可为 nil（此时 filter.blacklist 不支持 store_key）。
//
// 支持的 Node 类型与配置：
//
//	recall.u2u        k
//	recall.i2i        k
//	filter.blacklist  ids, store_key
//	filter.expr       expr
//	filter.rated
//	rank.fusion       user_weight, content_weight
//	rerank.diversity  max_per_genre
//	rerank.topn       n
func NewNodeFactory(ctx context.Context, res *Resources, cfg Config, store core.Store) *pipeline.NodeFactory {
	factory := pipeline.NewNodeFactory()
	prefs := &recall.PreferenceExtractor{Ratings: res.Ratings, Catalog: res.Catalog}

	// 注册 Recall Nodes
	factory.Register("recall.u2u", func(c map[string]any) (pipeline.Node, error) {
		return &recall.UserNeighbors{
			Users:       res.Users,
			Preferences: prefs,
			K:           conv.ConfigGetInt(c, "k", cfg.SimilarUsers),
		}, nil
	})
	factory.Register("recall.i2i", func(c map[string]any) (pipeline.Node, error) {
		return &recall.ContentExpansion{
			Items:   res.Items,
			Catalog: res.Catalog,
			K:       conv.ConfigGetInt(c, "k", cfg.SimilarItems),
		}, nil
	})

	// 注册 Filter Nodes
	factory.Register("filter.blacklist", func(c map[string]any) (pipeline.Node, error) {
		ids := conv.SliceAnyToInt64(c["ids"])
		key := conv.ConfigGet(c, "store_key", "")
		if key == "" {
			return &filter.FilterNode{Filters: []filter.Filter{filter.NewBlacklistFilter(ids...)}}, nil
		}
		if store == nil {
			return nil, fmt.Errorf("filter.blacklist: store_key %q configured but no store available", key)
		}
		f, err := filter.NewBlacklistFilterFromStore(ctx, store, key, ids...)
		if err != nil {
			return nil, fmt.Errorf("filter.blacklist: %w", err)
		}
		return &filter.FilterNode{Filters: []filter.Filter{f}}, nil
	})
	factory.Register("filter.expr", func(c map[string]any) (pipeline.Node, error) {
		expr := conv.ConfigGet(c, "expr", "")
		if expr == "" {
			return nil, fmt.Errorf("filter.expr: expr is required")
		}
		f, err := filter.NewExprFilter(expr)
		if err != nil {
			return nil, err
		}
		return &filter.FilterNode{Filters: []filter.Filter{f}}, nil
	})
	factory.Register("filter.rated", func(map[string]any) (pipeline.Node, error) {
		return &filter.FilterNode{Filters: []filter.Filter{&filter.RatedFilter{Ratings: res.Ratings}}}, nil
	})

	// 注册 Rank / ReRank Nodes
	factory.Register("rank.fusion", func(c map[string]any) (pipeline.Node, error) {
		return &rank.Fusion{
			UserWeight:    conv.ConfigGetFloat64(c, "user_weight", cfg.UserWeight),
			ContentWeight: conv.ConfigGetFloat64(c, "content_weight", cfg.ContentWeight),
		}, nil
	})
	factory.Register("rerank.diversity", func(c map[string]any) (pipeline.Node, error) {
		return &rerank.Diversity{MaxPerGenre: conv.ConfigGetInt(c, "max_per_genre", 1)}, nil
	})
	factory.Register("rerank.topn", func(c map[string]any) (pipeline.Node, error) {
		return &rerank.TopNNode{N: conv.ConfigGetInt(c, "n", cfg.TopN)}, nil
	})

	return factory
}

// LoadPipeline 从 YAML/JSON 文件构建 Pipeline。
func LoadPipeline(ctx context.Context, path string, res *Resources, cfg Config, store core.Store) (*pipeline.Pipeline, error) {
	pc, err := pipeline.Load(path)
	if err != nil {
		return nil, fmt.Errorf("load pipeline %s: %w", path, err)
	}
	return pc.BuildPipeline(NewNodeFactory(ctx, res, cfg, store))
}
