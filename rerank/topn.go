package rerank

import (
	"context"
	"sort"

	"github.com/rushteam/recserve/core"
	"github.com/rushteam/recserve/pipeline"
)

// TopN 是主策略结果的定型节点：按分数降序稳定排序、截断到请求的 TopK，
// 并把存活的记录标记为 primary 层级。
//
// 排序稳定性是对外承诺的一部分：分数相同的物品保持打分源的候选枚举顺序，
// 同样的请求在同一套产物上必须得到同样的序。
type TopN struct {
	// N 要保留的条数；<=0 时取请求的 TopK
	N int
}

func (n *TopN) Name() string {
	return "rerank.topn"
}

func (n *TopN) Kind() pipeline.Kind {
	return pipeline.KindReRank
}

func (n *TopN) Process(
	_ context.Context,
	rctx *core.RecommendContext,
	items []*core.Item,
) ([]*core.Item, error) {
	limit := n.N
	if limit <= 0 && rctx != nil {
		limit = rctx.TopK
	}

	sort.SliceStable(items, func(i, j int) bool {
		return items[i].Score > items[j].Score
	})

	if limit > 0 && len(items) > limit {
		items = items[:limit]
	}
	for _, it := range items {
		it.Strategy = core.StrategyPrimary
	}
	return items, nil
}
