package pipeline

import (
	"context"

	"github.com/rushteam/recserve/core"
)

// Pipeline 把一次请求的兜底排序流程拆成可组合的 Node 链：
// 打分 → 过滤 → 重排 → 补底。每个策略家族持有一条独立的链。
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
