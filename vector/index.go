package vector

import (
	"math"
	"strconv"

	"github.com/rushteam/animerec/core"
)

// Index 持有一个实体空间的 embedding 矩阵和编码表。
//
// 特点：
//   - 矩阵按行展平存储，行号即编码下标
//   - 构造时按行做 L2 归一化，点积即余弦相似度
//   - 构造完成后只读，可被并发请求共享，无需加锁
type Index struct {
	enc  *Encoder
	dim  int
	data []float64
}

// NewIndex 由 embedding 产物构造索引。
// 校验：行数 == ID 数、所有行维度一致、值有限。
func NewIndex(space core.Space, set *core.EmbeddingSet) (*Index, error) {
	if set == nil || len(set.IDs) == 0 {
		return nil, core.NewDomainError(core.ModuleIndex, core.ErrorCodeInvalidInput,
			"index: empty "+string(space)+" embeddings")
	}
	if len(set.IDs) != len(set.Vectors) {
		return nil, core.NewDomainError(core.ModuleIndex, core.ErrorCodeInvalidInput,
			"index: "+string(space)+" row count "+strconv.Itoa(len(set.Vectors))+
				" != id count "+strconv.Itoa(len(set.IDs)))
	}

	enc, err := NewEncoder(space, set.IDs)
	if err != nil {
		return nil, err
	}

	dim := len(set.Vectors[0])
	if dim == 0 {
		return nil, core.NewDomainError(core.ModuleIndex, core.ErrorCodeInvalidInput,
			"index: zero-dimensional "+string(space)+" embeddings")
	}

	data := make([]float64, 0, len(set.Vectors)*dim)
	for i, row := range set.Vectors {
		if len(row) != dim {
			return nil, core.NewDomainError(core.ModuleIndex, core.ErrorCodeInvalidInput,
				"index: "+string(space)+" row "+strconv.Itoa(i)+" has dimension "+
					strconv.Itoa(len(row))+", want "+strconv.Itoa(dim))
		}
		var norm float64
		for _, v := range row {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return nil, core.NewDomainError(core.ModuleIndex, core.ErrorCodeInvalidInput,
					"index: "+string(space)+" row "+strconv.Itoa(i)+" has non-finite value")
			}
			norm += v * v
		}
		norm = math.Sqrt(norm)
		for _, v := range row {
			// 零向量保持为零
			if norm > 0 {
				v /= norm
			}
			data = append(data, v)
		}
	}

	return &Index{enc: enc, dim: dim, data: data}, nil
}

// Space 返回实体空间。
func (ix *Index) Space() core.Space { return ix.enc.space }

// Len 返回行数 N。
func (ix *Index) Len() int { return ix.enc.Len() }

// Dim 返回向量维度。
func (ix *Index) Dim() int { return ix.dim }

// Encode 原始 ID -> 下标。
func (ix *Index) Encode(id int64) (int, error) { return ix.enc.Encode(id) }

// Decode 下标 -> 原始 ID。
func (ix *Index) Decode(i int) (int64, error) { return ix.enc.Decode(i) }

// Contains 判断原始 ID 是否有 embedding。
func (ix *Index) Contains(id int64) bool { return ix.enc.Contains(id) }

// VectorOf 返回第 i 行（归一化后）的副本。
func (ix *Index) VectorOf(i int) ([]float64, error) {
	if _, err := ix.enc.Decode(i); err != nil {
		return nil, err
	}
	out := make([]float64, ix.dim)
	copy(out, ix.row(i))
	return out, nil
}

// Score 返回两行的点积。
func (ix *Index) Score(i, j int) (float64, error) {
	if _, err := ix.enc.Decode(i); err != nil {
		return 0, err
	}
	if _, err := ix.enc.Decode(j); err != nil {
		return 0, err
	}
	return dot(ix.row(i), ix.row(j)), nil
}

func (ix *Index) row(i int) []float64 {
	return ix.data[i*ix.dim : (i+1)*ix.dim]
}

func dot(a, b []float64) float64 {
	var sum float64
	for i := range a {
		sum += a[i] * b[i]
	}
	return sum
}

func formatID(id int64) string {
	return strconv.FormatInt(id, 10)
}
