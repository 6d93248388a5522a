package recall

import (
	"context"
	"strconv"

	"github.com/rushteam/animerec/core"
	"github.com/rushteam/animerec/logging"
	"github.com/rushteam/animerec/pipeline"
	"github.com/rushteam/animerec/pkg/utils"
	"github.com/rushteam/animerec/vector"
)

// UserNeighbors 是基于用户 embedding 的召回节点（u2u → u2i）。
//
// 核心思想："兴趣相似的用户，喜欢相似的物品"
//
// 算法流程：
//  1. 在用户向量索引中找到目标用户最相似的 K 个用户（排除自身）
//  2. 计算目标用户自己的偏好物品
//  3. 对每个相似用户取其偏好物品，去掉目标用户已偏好的物品
//  4. 每个相似用户推荐一次即输出一条候选（同一物品可能出现多次，每次代表一票）
//
// 目标用户不在索引中时返回 NOT_FOUND；没有相似用户或没有偏好时返回空候选，不报错。
// 输出的候选追加在输入 items 之后，Label recall_source=u2u，via_user=相似用户 ID。
type UserNeighbors struct {
	Users       *vector.Index
	Preferences *PreferenceExtractor

	// K 相似用户数，<= 0 时使用默认值 10
	K int
}

func (n *UserNeighbors) Name() string        { return "recall.u2u" }
func (n *UserNeighbors) Kind() pipeline.Kind { return pipeline.KindRecall }

func (n *UserNeighbors) Process(
	ctx context.Context,
	rctx *core.RecommendContext,
	items []*core.Item,
) ([]*core.Item, error) {
	neighbors, err := n.Users.NearestNeighborsByID(rctx.UserID, n.k(), vector.Closest, true)
	if err != nil {
		return nil, err
	}
	if len(neighbors) == 0 {
		return items, nil
	}

	own := n.Preferences.TopRated(rctx.UserID)
	seen := make(map[int64]struct{}, len(own))
	for _, p := range own {
		seen[p.AnimeID] = struct{}{}
	}

	out := items
	for _, nb := range neighbors {
		for _, p := range n.Preferences.TopRated(nb.ID) {
			if _, ok := seen[p.AnimeID]; ok {
				continue
			}
			it := core.NewAnimeItem(core.Anime{ID: p.AnimeID, Name: p.Name, Genre: p.Genre})
			it.PutLabel(core.LabelRecallSource, utils.Label{Value: core.SourceUserBased, Source: "recall"})
			it.PutLabel(core.LabelViaUser, utils.Label{Value: strconv.FormatInt(nb.ID, 10), Source: "recall"})
			out = append(out, it)
		}
	}

	logging.Ctx(ctx).Debug().
		Int64("user_id", rctx.UserID).
		Int("neighbors", len(neighbors)).
		Int("own_preferences", len(own)).
		Int("candidates", len(out)-len(items)).
		Msg("user-based recall")
	return out, nil
}

func (n *UserNeighbors) k() int {
	if n.K <= 0 {
		return defaults.DefaultTopKSimilarUsers()
	}
	return n.K
}
