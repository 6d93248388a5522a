package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/rushteam/animerec/core"
	"github.com/rushteam/animerec/logging"
	"github.com/rushteam/animerec/metrics"
)

// Pipeline 把推荐逻辑拆成可组合的 Node 链，按顺序执行，上一个 Node 的输出是下一个的输入。
// Pipeline 本身无状态，可被多个请求并发执行。
type Pipeline struct {
	Name  string
	Nodes []Node
}

func (p *Pipeline) Run(
	ctx context.Context,
	rctx *core.RecommendContext,
	items []*core.Item,
) ([]*core.Item, error) {
	log := logging.Ctx(ctx)
	cur := items
	for _, node := range p.Nodes {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		start := time.Now()
		next, err := node.Process(ctx, rctx, cur)
		metrics.RecordNode(string(node.Kind()), node.Name(), time.Since(start), len(next), err)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", node.Name(), err)
		}

		log.Debug().
			Str("pipeline", p.Name).
			Str("node", node.Name()).
			Int("in", len(cur)).
			Int("out", len(next)).
			Dur("took", time.Since(start)).
			Msg("node done")
		cur = next
	}
	return cur, nil
}
