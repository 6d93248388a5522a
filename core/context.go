package core

import (
	"github.com/rushteam/animerec/pkg/conv"
	"github.com/rushteam/animerec/pkg/utils"
)

// RecommendContext 承载用户与请求级参数，贯穿整个 Pipeline 透传。
// 每个请求独立创建，不与其他请求共享。
type RecommendContext struct {
	UserID int64
	Scene  string

	// Labels 是请求级标签，Node 可以写入（例如被跳过的候选），由上层读取用于观测。
	Labels map[string]utils.Label

	// Params 请求级参数，例如：
	//   - user_weight / content_weight：融合权重
	//   - top_n：返回数量
	Params map[string]any
}

// 请求级参数 key
const (
	ParamUserWeight    = "user_weight"
	ParamContentWeight = "content_weight"
	ParamTopN          = "top_n"
)

// PutLabel 写入请求级 Label。
func (rctx *RecommendContext) PutLabel(key string, lbl utils.Label) {
	if rctx.Labels == nil {
		rctx.Labels = make(map[string]utils.Label)
	}
	if old, ok := rctx.Labels[key]; ok {
		rctx.Labels[key] = utils.MergeLabel(old, lbl)
		return
	}
	rctx.Labels[key] = lbl
}

// GetLabel 获取请求级 Label。
func (rctx *RecommendContext) GetLabel(key string) (utils.Label, bool) {
	if rctx.Labels == nil {
		return utils.Label{}, false
	}
	lbl, ok := rctx.Labels[key]
	return lbl, ok
}

// ParamFloat 读取 float64 参数，不存在或类型不符时返回 defaultVal。
func (rctx *RecommendContext) ParamFloat(key string, defaultVal float64) float64 {
	if rctx == nil || rctx.Params == nil {
		return defaultVal
	}
	if v, ok := conv.ToFloat64(rctx.Params[key]); ok {
		return v
	}
	return defaultVal
}

// ParamInt 读取 int 参数，不存在或类型不符时返回 defaultVal。
func (rctx *RecommendContext) ParamInt(key string, defaultVal int) int {
	if rctx == nil || rctx.Params == nil {
		return defaultVal
	}
	if v, ok := conv.ToInt(rctx.Params[key]); ok {
		return v
	}
	return defaultVal
}
