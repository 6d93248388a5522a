package core

import "strconv"

// Anime 是物品元数据（名称、类型、简介等）。
type Anime struct {
	ID        int64   `json:"anime_id"`
	Name      string  `json:"name"`
	Genre     string  `json:"genre"`
	Score     float64 `json:"score,omitempty"`
	Episodes  string  `json:"episodes,omitempty"`
	Type      string  `json:"type,omitempty"`
	Premiered string  `json:"premiered,omitempty"`
	Members   int64   `json:"members,omitempty"`
	Synopsis  string  `json:"synopsis,omitempty"`
}

// Rating 是一条评分记录，Rating 已归一化到 [0,1]。
type Rating struct {
	UserID  int64
	AnimeID int64
	Rating  float64
}

// QueryKind 标记 ItemQuery 的查询方式。
type QueryKind int

const (
	QueryByID QueryKind = iota
	QueryByName
)

// ItemQuery 是按 ID 或按名称查询物品的显式变体，由调用方在构造时确定，
// 不再根据运行时类型推断。
type ItemQuery struct {
	Kind QueryKind
	ID   int64
	Name string
}

// ByID 构造按 ID 查询。
func ByID(id int64) ItemQuery {
	return ItemQuery{Kind: QueryByID, ID: id}
}

// ByName 构造按展示名称查询。
func ByName(name string) ItemQuery {
	return ItemQuery{Kind: QueryByName, Name: name}
}

func (q ItemQuery) String() string {
	if q.Kind == QueryByName {
		return "name=" + strconv.Quote(q.Name)
	}
	return "id=" + strconv.FormatInt(q.ID, 10)
}
