package vector

import (
	"github.com/rushteam/animerec/core"
)

// Encoder 是原始 ID 与稠密下标之间的双射。
// ids 即 decode 表（下标 -> 原始 ID），index 即 encode 表（原始 ID -> 下标），
// 两者在构造时一次性校验，之后只读。
type Encoder struct {
	space core.Space
	ids   []int64
	index map[int64]int
}

// NewEncoder 根据 decode 顺序构造编码表；重复 ID 视为非法输入。
func NewEncoder(space core.Space, ids []int64) (*Encoder, error) {
	e := &Encoder{
		space: space,
		ids:   make([]int64, len(ids)),
		index: make(map[int64]int, len(ids)),
	}
	copy(e.ids, ids)
	for i, id := range e.ids {
		if prev, ok := e.index[id]; ok {
			return nil, core.NewDomainError(core.ModuleIndex, core.ErrorCodeInvalidInput,
				"index: duplicate "+string(space)+" id "+formatID(id)+" at rows "+formatID(int64(prev))+" and "+formatID(int64(i)))
		}
		e.index[id] = i
	}
	return e, nil
}

// Encode 原始 ID -> 下标，未出现过的 ID 返回 NOT_FOUND。
func (e *Encoder) Encode(id int64) (int, error) {
	i, ok := e.index[id]
	if !ok {
		return 0, core.NewDomainError(core.ModuleIndex, core.ErrorCodeNotFound,
			"index: "+string(e.space)+" id "+formatID(id)+" not found")
	}
	return i, nil
}

// Decode 下标 -> 原始 ID，越界返回 NOT_FOUND。
func (e *Encoder) Decode(i int) (int64, error) {
	if i < 0 || i >= len(e.ids) {
		return 0, core.NewDomainError(core.ModuleIndex, core.ErrorCodeNotFound,
			"index: "+string(e.space)+" index "+formatID(int64(i))+" out of range")
	}
	return e.ids[i], nil
}

// Contains 判断原始 ID 是否已编码。
func (e *Encoder) Contains(id int64) bool {
	_, ok := e.index[id]
	return ok
}

// Len 返回编码数量。
func (e *Encoder) Len() int { return len(e.ids) }
