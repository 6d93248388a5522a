// Package rank 提供排序阶段的 Node。
package rank

import (
	"context"
	"math"
	"sort"
	"strconv"

	"github.com/rushteam/animerec/core"
	"github.com/rushteam/animerec/pipeline"
	"github.com/rushteam/animerec/pkg/utils"
)

// Fusion 是混合排序节点：按出现次数加权融合 u2u 与 i2i 候选。
//
// 打分规则：
//   - u2u 候选每出现一次，累加 UserWeight
//   - i2i 候选每出现一次，累加 ContentWeight
//   - 同一物品（按 ID）只输出一次，分数为全部累加之和
//
// 排序：按分数降序；分数相同时按首次出现顺序（先处理全部 u2u 候选，再处理 i2i 候选）。
// 其他来源的候选不参与融合。
//
// 请求级参数 user_weight / content_weight 覆盖节点上的默认权重。
// 输出物品写入 Meta user_votes / content_votes 与 Label rank_model=fusion。
type Fusion struct {
	UserWeight    float64
	ContentWeight float64
}

// NewFusion 使用默认权重 0.5 / 0.5。
func NewFusion() *Fusion {
	return &Fusion{
		UserWeight:    defaults.DefaultUserWeight(),
		ContentWeight: defaults.DefaultContentWeight(),
	}
}

var defaults core.RecallConfig = &core.DefaultRecallConfig{}

func (n *Fusion) Name() string        { return "rank.fusion" }
func (n *Fusion) Kind() pipeline.Kind { return pipeline.KindRank }

type fused struct {
	item    *core.Item
	score   float64
	user    int
	content int
	order   int
}

func (n *Fusion) Process(
	_ context.Context,
	rctx *core.RecommendContext,
	items []*core.Item,
) ([]*core.Item, error) {
	userWeight := rctx.ParamFloat(core.ParamUserWeight, n.UserWeight)
	contentWeight := rctx.ParamFloat(core.ParamContentWeight, n.ContentWeight)
	if !finite(userWeight) || !finite(contentWeight) {
		return nil, core.NewDomainError(core.ModuleRank, core.ErrorCodeInvalidInput,
			"rank: fusion weights must be finite numbers")
	}

	acc := make(map[int64]*fused, len(items))
	ordered := make([]*fused, 0, len(items))
	add := func(it *core.Item, weight float64, user bool) {
		f, ok := acc[it.ID]
		if !ok {
			f = &fused{item: it, order: len(ordered)}
			acc[it.ID] = f
			ordered = append(ordered, f)
		} else {
			for _, key := range []string{core.LabelViaUser, core.LabelSeedItem} {
				if lbl, ok := it.Labels[key]; ok {
					f.item.PutLabel(key, lbl)
				}
			}
		}
		f.score += weight
		if user {
			f.user++
		} else {
			f.content++
		}
	}

	for _, it := range items {
		if it != nil && it.RecallSource() == core.SourceUserBased {
			add(it, userWeight, true)
		}
	}
	for _, it := range items {
		if it != nil && it.RecallSource() == core.SourceContentBased {
			add(it, contentWeight, false)
		}
	}

	sort.SliceStable(ordered, func(i, j int) bool {
		if ordered[i].score != ordered[j].score {
			return ordered[i].score > ordered[j].score
		}
		return ordered[i].order < ordered[j].order
	})

	out := make([]*core.Item, 0, len(ordered))
	for _, f := range ordered {
		it := f.item
		it.Score = f.score
		if it.Meta == nil {
			it.Meta = make(map[string]any)
		}
		it.Meta[core.MetaUserVotes] = f.user
		it.Meta[core.MetaContentVotes] = f.content
		it.PutLabel("rank_model", utils.Label{Value: "fusion", Source: "rank"})
		it.PutLabel("rank_score", utils.Label{Value: strconv.FormatFloat(f.score, 'g', -1, 64), Source: "rank"})
		out = append(out, it)
	}
	return out, nil
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
