package core

// RecallConfig 是召回 / 排序相关的配置接口，用于提供默认值。
type RecallConfig interface {
	// DefaultTopKSimilarUsers 返回默认的相似用户数
	DefaultTopKSimilarUsers() int

	// DefaultTopKSimilarItems 返回每个种子物品默认扩展的相似物品数
	DefaultTopKSimilarItems() int

	// DefaultTopN 返回默认的最终返回数量
	DefaultTopN() int

	// DefaultUserWeight 返回 user-based 候选的默认融合权重
	DefaultUserWeight() float64

	// DefaultContentWeight 返回 content-based 候选的默认融合权重
	DefaultContentWeight() float64
}

// DefaultRecallConfig 是默认的召回配置实现。
type DefaultRecallConfig struct{}

func (c *DefaultRecallConfig) DefaultTopKSimilarUsers() int {
	return 10
}

func (c *DefaultRecallConfig) DefaultTopKSimilarItems() int {
	return 10
}

func (c *DefaultRecallConfig) DefaultTopN() int {
	return 10
}

func (c *DefaultRecallConfig) DefaultUserWeight() float64 {
	return 0.5
}

func (c *DefaultRecallConfig) DefaultContentWeight() float64 {
	return 0.5
}
