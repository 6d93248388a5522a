package filter

import (
	"context"

	"github.com/rushteam/animerec/core"
)

// RatingLookup 判断用户是否评分过某物品。
type RatingLookup interface {
	HasRated(userID, animeID int64) bool
}

// RatedFilter 过滤掉目标用户已经评分过的物品（看过的不再推荐）。
type RatedFilter struct {
	Ratings RatingLookup
}

func (f *RatedFilter) Name() string {
	return "filter.rated"
}

func (f *RatedFilter) ShouldFilter(
	_ context.Context,
	rctx *core.RecommendContext,
	item *core.Item,
) (bool, error) {
	if item == nil {
		return true, nil
	}
	if rctx == nil || f.Ratings == nil {
		return false, nil
	}
	return f.Ratings.HasRated(rctx.UserID, item.ID), nil
}
