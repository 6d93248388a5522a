package recall

import (
	"context"
	"strconv"

	"github.com/rushteam/animerec/core"
	"github.com/rushteam/animerec/dataset"
	"github.com/rushteam/animerec/logging"
	"github.com/rushteam/animerec/metrics"
	"github.com/rushteam/animerec/pipeline"
	"github.com/rushteam/animerec/pkg/utils"
	"github.com/rushteam/animerec/vector"
)

// LabelSkippedCandidates 是请求级 Label，记录内容扩展时无法解析的种子物品 ID（以 '|' 累积）。
const LabelSkippedCandidates = "skipped_candidates"

// ContentExpansion 是基于物品 embedding 的召回节点（i2i）。
//
// 以上游 u2u 候选中的每个不同物品为种子（按首次出现顺序），在物品向量索引中
// 找到最相似的 K 个物品（排除自身），每个结果输出一条候选。
//
// 种子物品没有 embedding 时只记录告警并跳过，不影响其他种子；
// 相似物品在元数据中不存在时丢弃。
// 输出为输入 items 原样保留，后面追加 i2i 候选（Label recall_source=i2i，seed_item=种子 ID）。
type ContentExpansion struct {
	Items   *vector.Index
	Catalog *dataset.Catalog

	// K 每个种子扩展的相似物品数，<= 0 时使用默认值 10
	K int
}

func (n *ContentExpansion) Name() string        { return "recall.i2i" }
func (n *ContentExpansion) Kind() pipeline.Kind { return pipeline.KindRecall }

func (n *ContentExpansion) Process(
	ctx context.Context,
	rctx *core.RecommendContext,
	items []*core.Item,
) ([]*core.Item, error) {
	log := logging.Ctx(ctx)

	seeds := make([]int64, 0, len(items))
	seen := make(map[int64]struct{}, len(items))
	for _, it := range items {
		if it.RecallSource() != core.SourceUserBased {
			continue
		}
		if _, ok := seen[it.ID]; ok {
			continue
		}
		seen[it.ID] = struct{}{}
		seeds = append(seeds, it.ID)
	}

	out := items
	skipped := 0
	for _, seed := range seeds {
		neighbors, err := n.Items.NearestNeighborsByID(seed, n.k(), vector.Closest, true)
		if err != nil {
			if !core.IsNotFound(err) {
				return nil, err
			}
			skipped++
			rctx.PutLabel(LabelSkippedCandidates, utils.Label{Value: strconv.FormatInt(seed, 10), Source: n.Name()})
			log.Warn().Err(err).Int64("anime_id", seed).Msg("candidate skipped in content expansion")
			continue
		}
		seedLabel := utils.Label{Value: strconv.FormatInt(seed, 10), Source: "recall"}
		for _, nb := range neighbors {
			a, err := n.Catalog.Get(core.ByID(nb.ID))
			if err != nil {
				continue
			}
			it := core.NewAnimeItem(a)
			it.PutLabel(core.LabelRecallSource, utils.Label{Value: core.SourceContentBased, Source: "recall"})
			it.PutLabel(core.LabelSeedItem, seedLabel)
			out = append(out, it)
		}
	}
	metrics.RecordSkippedCandidates(skipped)

	log.Debug().
		Int("seeds", len(seeds)).
		Int("skipped", skipped).
		Int("candidates", len(out)-len(items)).
		Msg("content-based recall")
	return out, nil
}

func (n *ContentExpansion) k() int {
	if n.K <= 0 {
		return defaults.DefaultTopKSimilarItems()
	}
	return n.K
}
