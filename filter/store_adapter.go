package filter

import (
	"context"
	"fmt"

	"github.com/goccy/go-json"

	"github.com/rushteam/animerec/core"
)

// LoadIDList 从 Store 读取 JSON 数组形式的物品 ID 列表，例如 [1535, 5114]。
func LoadIDList(ctx context.Context, s core.Store, key string) ([]int64, error) {
	data, err := s.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	var ids []int64
	if err := json.Unmarshal(data, &ids); err != nil {
		return nil, fmt.Errorf("decode id list %q: %w", key, err)
	}
	return ids, nil
}

// SaveIDList 把物品 ID 列表以 JSON 数组写入 Store。
func SaveIDList(ctx context.Context, s core.Store, key string, ids []int64) error {
	data, err := json.Marshal(ids)
	if err != nil {
		return err
	}
	return s.Set(ctx, key, data)
}
