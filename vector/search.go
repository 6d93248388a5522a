package vector

// Mode 决定邻居的排序方向。
type Mode int

const (
	// Closest 按相似度降序（最相似优先）
	Closest Mode = iota
	// Farthest 按相似度升序（最不相似优先）
	Farthest
)

func (m Mode) String() string {
	if m == Farthest {
		return "farthest"
	}
	return "closest"
}

// ParseMode 解析 "closest" / "farthest"，其他值返回 false。
func ParseMode(s string) (Mode, bool) {
	switch s {
	case "", "closest":
		return Closest, true
	case "farthest":
		return Farthest, true
	default:
		return Closest, false
	}
}

// Neighbor 是一次近邻检索的单个结果。
type Neighbor struct {
	Index int     // 编码下标
	ID    int64   // 原始 ID
	Score float64 // 点积（归一化后即余弦相似度，范围 [-1, 1]）
}

// NearestNeighbors 对第 index 行做精确的稠密近邻检索（与矩阵中每一行比较）。
//
// 规则：
//   - Closest 按分数降序，Farthest 按分数升序；分数相同时下标小的在前
//   - 内部取 k+1 个结果；excludeSelf 时移除查询自身，若自身不在其中则丢弃排名最后的一个
//   - excludeSelf 时返回 min(k, N-1) 个结果，否则返回 min(k, N) 个
//   - k <= 0 返回空结果
//   - index 非法返回 NOT_FOUND
func (ix *Index) NearestNeighbors(index, k int, mode Mode, excludeSelf bool) ([]Neighbor, error) {
	if _, err := ix.enc.Decode(index); err != nil {
		return nil, err
	}

	n := ix.Len()
	want := k
	limit := n
	if excludeSelf {
		limit = n - 1
	}
	if want > limit {
		want = limit
	}
	if want <= 0 {
		return []Neighbor{}, nil
	}

	slots := want
	if excludeSelf {
		slots = want + 1
	}

	better := func(a, b Neighbor) bool {
		if a.Score != b.Score {
			if mode == Farthest {
				return a.Score < b.Score
			}
			return a.Score > b.Score
		}
		return a.Index < b.Index
	}

	// 有界插入：只保留排名前 slots 个，复杂度 O(N * slots)
	query := ix.row(index)
	top := make([]Neighbor, 0, slots+1)
	for j := 0; j < n; j++ {
		cand := Neighbor{Index: j, Score: dot(query, ix.row(j))}
		if len(top) == slots && !better(cand, top[len(top)-1]) {
			continue
		}
		pos := len(top)
		for pos > 0 && better(cand, top[pos-1]) {
			pos--
		}
		top = append(top, Neighbor{})
		copy(top[pos+1:], top[pos:])
		top[pos] = cand
		if len(top) > slots {
			top = top[:slots]
		}
	}

	if excludeSelf {
		selfAt := -1
		for i, nb := range top {
			if nb.Index == index {
				selfAt = i
				break
			}
		}
		if selfAt >= 0 {
			top = append(top[:selfAt], top[selfAt+1:]...)
		} else {
			top = top[:len(top)-1]
		}
	}

	for i := range top {
		top[i].ID = ix.enc.ids[top[i].Index]
	}
	return top, nil
}

// NearestNeighborsByID 先把原始 ID 编码再检索。
func (ix *Index) NearestNeighborsByID(id int64, k int, mode Mode, excludeSelf bool) ([]Neighbor, error) {
	index, err := ix.Encode(id)
	if err != nil {
		return nil, err
	}
	return ix.NearestNeighbors(index, k, mode, excludeSelf)
}
