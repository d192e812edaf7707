package pipeline

import (
	"context"

	"github.com/rushteam/edurec/core"
)

// Pipeline 把推荐逻辑拆成可组合的 Node 链：
// 典型编排为 blend -> filter -> rerank，融合节点自带多源 fan-out。
type Pipeline struct {
	Nodes []Node
}

func (p *Pipeline) Run(
	ctx context.Context,
	rctx *core.RecommendContext,
	items []*core.Item,
) ([]*core.Item, error) {
	cur := items
	for _, node := range p.Nodes {
		next, err := node.Process(ctx, rctx, cur)
		if err != nil {
			return nil, err
		}
		cur = next
	}
	return cur, nil
}
