package filter

import (
	"context"

	"github.com/rushteam/animerec/core"
	"github.com/rushteam/animerec/pkg/dsl"
)

// ExprFilter 使用 CEL 表达式过滤，表达式为 true 的物品被过滤掉。
//
//	item.genre.contains("Hentai")
//	label.recall_source == "i2i" && item.score < 0.6
type ExprFilter struct {
	program *dsl.Program
}

// NewExprFilter 编译表达式。
func NewExprFilter(expr string) (*ExprFilter, error) {
	prg, err := dsl.Compile(expr)
	if err != nil {
		return nil, core.WrapDomainError(core.ModuleFilter, core.ErrorCodeInvalidInput, err, "filter: invalid expression %q", expr)
	}
	return &ExprFilter{program: prg}, nil
}

func (f *ExprFilter) Name() string {
	return "filter.expr"
}

func (f *ExprFilter) ShouldFilter(
	_ context.Context,
	rctx *core.RecommendContext,
	item *core.Item,
) (bool, error) {
	if item == nil {
		return true, nil
	}
	return f.program.Evaluate(item, rctx)
}
