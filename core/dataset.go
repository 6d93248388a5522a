package core

import "context"

// Space 表示 embedding 所属的实体空间。
type Space string

const (
	SpaceUser Space = "user"
	SpaceItem Space = "item"
)

// EmbeddingSet 是一个实体空间的 embedding 矩阵及解码表。
// IDs[i] 是第 i 行对应的原始 ID（即 decode 表），编码表由 IDs 推导。
type EmbeddingSet struct {
	IDs     []int64     `json:"ids"`
	Vectors [][]float64 `json:"vectors"`
}

// EmbeddingSource 是 embedding 产物的领域接口（由训练流程离线产出）。
//
// 实现：
//   - dataset.FileEmbeddingSource：本地 JSON 文件
//   - dataset.StoreEmbeddingSource：core.Store（如 Redis）中的 JSON
type EmbeddingSource interface {
	// Name 返回数据源名称（用于日志/监控）
	Name() string

	// LoadEmbeddings 加载指定空间的 embedding
	LoadEmbeddings(ctx context.Context, space Space) (*EmbeddingSet, error)
}

// RatingSource 提供完整的评分表（用于计算每个用户的分位数）。
type RatingSource interface {
	Name() string
	LoadRatings(ctx context.Context) ([]Rating, error)
}

// CatalogSource 提供物品元数据与简介。
type CatalogSource interface {
	Name() string
	LoadCatalog(ctx context.Context) ([]Anime, error)
}
