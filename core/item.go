package core

import "github.com/rushteam/animerec/pkg/utils"

// Item 是推荐链路中的统一承载结构：分数、元信息、标签。
// Labels 用于解释与策略驱动；Score 用于排序决策。
// 同一个 ID 在召回阶段可以出现多次（每次出现代表一票），由 rank.Fusion 合并。
type Item struct {
	ID     int64
	Score  float64
	Meta   map[string]any
	Labels map[string]utils.Label
}

// Meta 常用 key
const (
	MetaName         = "name"
	MetaGenre        = "genre"
	MetaUserVotes    = "user_votes"    // 在 u2u 候选中出现的次数
	MetaContentVotes = "content_votes" // 在 i2i 候选中出现的次数
)

// Label key 与召回来源
const (
	LabelRecallSource = "recall_source"
	LabelViaUser      = "via_user"  // u2u：推荐该物品的相似用户
	LabelSeedItem     = "seed_item" // i2i：扩展出该物品的种子物品

	SourceUserBased    = "u2u"
	SourceContentBased = "i2i"
)

func NewItem(id int64) *Item {
	return &Item{
		ID:     id,
		Score:  0,
		Meta:   make(map[string]any),
		Labels: make(map[string]utils.Label),
	}
}

// NewAnimeItem 根据元数据创建 Item，填充名称与类型。
func NewAnimeItem(a Anime) *Item {
	it := NewItem(a.ID)
	it.Meta[MetaName] = a.Name
	it.Meta[MetaGenre] = a.Genre
	return it
}

// PutLabel 写入 Label；若已存在同名 key，则按默认 Merge 规则累积。
func (it *Item) PutLabel(key string, lbl utils.Label) {
	if it.Labels == nil {
		it.Labels = make(map[string]utils.Label)
	}
	if old, ok := it.Labels[key]; ok {
		it.Labels[key] = utils.MergeLabel(old, lbl)
		return
	}
	it.Labels[key] = lbl
}

// Name 返回展示名称（Meta["name"]）。
func (it *Item) Name() string {
	return it.metaString(MetaName)
}

// Genre 返回类型字符串（Meta["genre"]）。
func (it *Item) Genre() string {
	return it.metaString(MetaGenre)
}

func (it *Item) metaString(key string) string {
	if it.Meta == nil {
		return ""
	}
	s, _ := it.Meta[key].(string)
	return s
}

// RecallSource 返回召回来源（u2u / i2i），未标记时返回空串。
func (it *Item) RecallSource() string {
	if it.Labels == nil {
		return ""
	}
	return it.Labels[LabelRecallSource].Value
}
