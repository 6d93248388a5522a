package recall

import (
	"math"
	"slices"
	"sort"

	"github.com/rushteam/animerec/core"
	"github.com/rushteam/animerec/dataset"
)

// Preference 是用户偏好的一个物品（评分不低于该用户自身评分的 75 分位）。
type Preference struct {
	AnimeID int64   `json:"anime_id"`
	Rating  float64 `json:"rating"`
	Name    string  `json:"name"`
	Genre   string  `json:"genre"`
}

// PreferencePercentile 是偏好阈值使用的分位数。
const PreferencePercentile = 75

// PreferenceExtractor 从评分表中提取用户偏好。
//
// 流程：
//  1. 取出该用户的全部评分
//  2. 计算评分的 75 分位（线性插值）
//  3. 保留 rating >= 分位值 的记录，按评分降序（评分相同保持原始顺序）
//  4. 关联元数据补充名称与类型；元数据中不存在的物品被丢弃
//
// 没有评分的用户返回空列表；只有一条评分时该记录一定被保留。
type PreferenceExtractor struct {
	Ratings *dataset.RatingTable
	Catalog *dataset.Catalog
}

// TopRated 返回用户的偏好物品。
func (e *PreferenceExtractor) TopRated(userID int64) []Preference {
	records := e.Ratings.ForUser(userID)
	if len(records) == 0 {
		return []Preference{}
	}

	values := make([]float64, len(records))
	for i, r := range records {
		values[i] = r.Rating
	}
	threshold := Percentile(values, PreferencePercentile)

	kept := make([]core.Rating, 0, len(records)/4+1)
	for _, r := range records {
		if r.Rating >= threshold {
			kept = append(kept, r)
		}
	}
	sort.SliceStable(kept, func(i, j int) bool {
		return kept[i].Rating > kept[j].Rating
	})

	out := make([]Preference, 0, len(kept))
	for _, r := range kept {
		a, err := e.Catalog.Get(core.ByID(r.AnimeID))
		if err != nil {
			continue
		}
		out = append(out, Preference{
			AnimeID: r.AnimeID,
			Rating:  r.Rating,
			Name:    a.Name,
			Genre:   a.Genre,
		})
	}
	return out
}

// Percentile 计算 p 分位（0-100），在排序后的相邻值之间线性插值。
// 空输入返回 NaN。
func Percentile(values []float64, p float64) float64 {
	if len(values) == 0 {
		return math.NaN()
	}
	sorted := slices.Clone(values)
	slices.Sort(sorted)

	pos := p / 100 * float64(len(sorted)-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo < 0 {
		lo = 0
	}
	if hi > len(sorted)-1 {
		hi = len(sorted) - 1
	}
	if lo >= hi {
		return sorted[hi]
	}
	v := sorted[lo] + (sorted[hi]-sorted[lo])*(pos-float64(lo))
	// 浮点误差不能让结果越过相邻值
	return math.Min(math.Max(v, sorted[lo]), sorted[hi])
}
