package filter

import (
	"context"

	"github.com/rushteam/animerec/core"
)

// BlacklistFilter 是黑名单过滤器，过滤掉黑名单中的物品。
// 黑名单在构建时确定（配置或 Store），请求期间只读。
type BlacklistFilter struct {
	ids map[int64]struct{}
}

// NewBlacklistFilter 创建一个黑名单过滤器。
func NewBlacklistFilter(itemIDs ...int64) *BlacklistFilter {
	f := &BlacklistFilter{ids: make(map[int64]struct{}, len(itemIDs))}
	for _, id := range itemIDs {
		f.ids[id] = struct{}{}
	}
	return f
}

// NewBlacklistFilterFromStore 从 Store 读取黑名单（JSON 数组）并与 extra 合并。
// key 不存在时视为空黑名单。
func NewBlacklistFilterFromStore(ctx context.Context, s core.Store, key string, extra ...int64) (*BlacklistFilter, error) {
	ids, err := LoadIDList(ctx, s, key)
	if err != nil && !core.IsStoreNotFound(err) {
		return nil, err
	}
	return NewBlacklistFilter(append(ids, extra...)...), nil
}

func (f *BlacklistFilter) Name() string {
	return "filter.blacklist"
}

// Len 返回黑名单大小。
func (f *BlacklistFilter) Len() int { return len(f.ids) }

func (f *BlacklistFilter) ShouldFilter(
	_ context.Context,
	_ *core.RecommendContext,
	item *core.Item,
) (bool, error) {
	if item == nil {
		return true, nil
	}
	_, ok := f.ids[item.ID]
	return ok, nil
}
