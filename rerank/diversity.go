package rerank

import (
	"context"
	"strings"

	"github.com/rushteam/animerec/core"
	"github.com/rushteam/animerec/pipeline"
)

// Diversity 按主类型限流：同一主类型（Genre 的第一个分量，如 "Action, Sci-Fi" → "Action"）
// 最多保留 MaxPerGenre 个，保持原有顺序；没有类型的物品不受限制。
// 放在 rank.fusion 之后、rerank.topn 之前使用。
type Diversity struct {
	// MaxPerGenre 默认 1
	MaxPerGenre int
}

func (n *Diversity) Name() string {
	return "rerank.diversity"
}

func (n *Diversity) Kind() pipeline.Kind {
	return pipeline.KindReRank
}

func (n *Diversity) Process(
	_ context.Context,
	_ *core.RecommendContext,
	items []*core.Item,
) ([]*core.Item, error) {
	if len(items) == 0 {
		return items, nil
	}

	limit := n.MaxPerGenre
	if limit <= 0 {
		limit = 1
	}

	seen := make(map[string]int, 32)
	out := make([]*core.Item, 0, len(items))

	for _, it := range items {
		if it == nil {
			continue
		}
		genre := PrimaryGenre(it.Genre())
		if genre == "" {
			out = append(out, it)
			continue
		}
		if seen[genre] >= limit {
			continue
		}
		seen[genre]++
		out = append(out, it)
	}

	return out, nil
}

// PrimaryGenre 返回逗号分隔类型串的第一个分量。
func PrimaryGenre(genre string) string {
	first, _, _ := strings.Cut(genre, ",")
	return strings.TrimSpace(first)
}
