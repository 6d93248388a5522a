// Package recall 提供召回阶段的 Node：基于用户 embedding 的 u2u 召回与基于物品 embedding 的 i2i 扩展。
package recall

import "github.com/rushteam/animerec/core"

var defaults core.RecallConfig = &core.DefaultRecallConfig{}
