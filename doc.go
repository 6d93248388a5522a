// Package animerec 是一个混合动漫推荐服务。
//
// 设计要点：
// - 基于预先训练好的用户 / 物品 embedding 做精确近邻检索
// - u2u 召回相似用户的偏好物品，i2i 以这些物品为种子扩展相似物品
// - 两路候选按出现次数加权融合，取 Top-N；同一输入永远得到同一输出
// - 推荐逻辑通过 Pipeline 串联（Recall → Filter → Rank → ReRank），可由 YAML 配置
package animerec

import (
	"github.com/rushteam/animerec/hybrid"
	"github.com/rushteam/animerec/pipeline"
)

// 轻量 facade：便于直接 import "animerec" 使用核心抽象。
type (
	Recommender = hybrid.Recommender
	Resources   = hybrid.Resources
	Pipeline    = pipeline.Pipeline
	Node        = pipeline.Node
	Kind        = pipeline.Kind
)

const (
	KindRecall = pipeline.KindRecall
	KindFilter = pipeline.KindFilter
	KindRank   = pipeline.KindRank
	KindReRank = pipeline.KindReRank
)

var (
	LoadResources = hybrid.LoadResources
	New           = hybrid.New
)
