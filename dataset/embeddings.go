package dataset

import (
	"context"
	"os"

	"github.com/goccy/go-json"

	"github.com/rushteam/animerec/core"
)

// FileEmbeddingSource 从本地 JSON 文件读取 embedding 产物。
// 文件格式：{"ids": [...], "vectors": [[...], ...]}，ids[i] 对应第 i 行。
type FileEmbeddingSource struct {
	Paths map[core.Space]string
}

func (s *FileEmbeddingSource) Name() string { return "file" }

// LoadEmbeddings 实现 core.EmbeddingSource 接口
func (s *FileEmbeddingSource) LoadEmbeddings(_ context.Context, space core.Space) (*core.EmbeddingSet, error) {
	path, ok := s.Paths[space]
	if !ok || path == "" {
		return nil, core.NewDomainError(core.ModuleDataset, core.ErrorCodeUnavailable,
			"dataset: no embedding file configured for space "+string(space))
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, unavailable(err, "dataset: read %s embeddings", space)
	}
	return decodeEmbeddings(space, data)
}

// StoreEmbeddingSource 从 core.Store（如 Redis）读取 embedding 产物，
// key 为 KeyPrefix + "emb:" + space，value 为 JSON。
type StoreEmbeddingSource struct {
	Store     core.Store
	KeyPrefix string
}

func (s *StoreEmbeddingSource) Name() string { return "store." + s.Store.Name() }

// LoadEmbeddings 实现 core.EmbeddingSource 接口
func (s *StoreEmbeddingSource) LoadEmbeddings(ctx context.Context, space core.Space) (*core.EmbeddingSet, error) {
	key := EmbeddingKey(s.KeyPrefix, space)
	data, err := s.Store.Get(ctx, key)
	if err != nil {
		return nil, unavailable(err, "dataset: read %s embeddings from %s key %q", space, s.Store.Name(), key)
	}
	return decodeEmbeddings(space, data)
}

// PublishEmbeddings 把 embedding 产物写入 Store，供 StoreEmbeddingSource 读取。
func PublishEmbeddings(ctx context.Context, store core.Store, keyPrefix string, space core.Space, set *core.EmbeddingSet) error {
	data, err := json.Marshal(set)
	if err != nil {
		return err
	}
	return store.Set(ctx, EmbeddingKey(keyPrefix, space), data)
}

// EmbeddingKey 返回 embedding 在 Store 中的 key。
func EmbeddingKey(prefix string, space core.Space) string {
	return prefix + "emb:" + string(space)
}

func decodeEmbeddings(space core.Space, data []byte) (*core.EmbeddingSet, error) {
	var set core.EmbeddingSet
	if err := json.Unmarshal(data, &set); err != nil {
		return nil, unavailable(err, "dataset: decode %s embeddings", space)
	}
	return &set, nil
}
