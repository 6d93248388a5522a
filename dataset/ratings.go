package dataset

import (
	"slices"

	"github.com/rushteam/animerec/core"
)

// RatingTable 是按用户分组的只读评分表。
// 每个用户的记录保持加载时的原始顺序（排序时用于稳定的并列处理）。
type RatingTable struct {
	byUser map[int64][]core.Rating
	total  int
}

// NewRatingTable 按用户分组构造评分表。
func NewRatingTable(records []core.Rating) *RatingTable {
	t := &RatingTable{
		byUser: make(map[int64][]core.Rating),
		total:  len(records),
	}
	for _, r := range records {
		t.byUser[r.UserID] = append(t.byUser[r.UserID], r)
	}
	return t
}

// ForUser 返回用户的评分记录副本；没有评分的用户返回空切片。
func (t *RatingTable) ForUser(userID int64) []core.Rating {
	return slices.Clone(t.byUser[userID])
}

// Len 返回记录总数。
func (t *RatingTable) Len() int { return t.total }

// UserCount 返回有评分的用户数。
func (t *RatingTable) UserCount() int { return len(t.byUser) }

// HasRated 判断用户是否评分过某物品。
func (t *RatingTable) HasRated(userID, animeID int64) bool {
	for _, r := range t.byUser[userID] {
		if r.AnimeID == animeID {
			return true
		}
	}
	return false
}
