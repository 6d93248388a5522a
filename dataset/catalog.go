package dataset

import (
	"github.com/rushteam/animerec/core"
)

// Catalog 是只读的物品元数据表，支持按 ID 或按展示名称查询。
// 名称重复时保留第一次出现的记录。
type Catalog struct {
	byID   map[int64]core.Anime
	byName map[string]int64
}

// NewCatalog 构造元数据表。ID 重复时后出现的记录覆盖先出现的。
func NewCatalog(animes []core.Anime) *Catalog {
	c := &Catalog{
		byID:   make(map[int64]core.Anime, len(animes)),
		byName: make(map[string]int64, len(animes)),
	}
	for _, a := range animes {
		c.byID[a.ID] = a
		if a.Name == "" {
			continue
		}
		if _, ok := c.byName[a.Name]; !ok {
			c.byName[a.Name] = a.ID
		}
	}
	return c
}

// Get 按 ItemQuery 查询元数据。
func (c *Catalog) Get(q core.ItemQuery) (core.Anime, error) {
	id := q.ID
	if q.Kind == core.QueryByName {
		var ok bool
		id, ok = c.byName[q.Name]
		if !ok {
			return core.Anime{}, notFound(q)
		}
	}
	a, ok := c.byID[id]
	if !ok {
		return core.Anime{}, notFound(q)
	}
	return a, nil
}

// Synopsis 返回简介；物品不存在或没有简介时返回 NOT_FOUND。
func (c *Catalog) Synopsis(q core.ItemQuery) (string, error) {
	a, err := c.Get(q)
	if err != nil {
		return "", err
	}
	if a.Synopsis == "" {
		return "", core.NewDomainError(core.ModuleDataset, core.ErrorCodeNotFound,
			"dataset: no synopsis for anime "+q.String())
	}
	return a.Synopsis, nil
}

// Len 返回物品数。
func (c *Catalog) Len() int { return len(c.byID) }

func notFound(q core.ItemQuery) error {
	return core.NewDomainError(core.ModuleDataset, core.ErrorCodeNotFound,
		"dataset: anime "+q.String()+" not found")
}

func unavailable(err error, format string, args ...any) error {
	return core.WrapDomainError(core.ModuleDataset, core.ErrorCodeUnavailable, err, format, args...)
}
