package rerank

import (
	"context"

	"github.com/rushteam/recserve/artifact"
	"github.com/rushteam/recserve/core"
	"github.com/rushteam/recserve/pipeline"
	"github.com/rushteam/recserve/pkg/utils"
)

// Backfill 是热度补底节点：主策略结果不足 TopK 条时，按热度底表降序补齐。
//
// 补底规则：
//   - 跳过已产出的物品（去重不变式跨主策略与补底两个阶段）
//   - RemoveSeen 生效且 SkipSeen 为 true 时跳过用户已交互的物品
//   - 补底记录分数为 0，层级标记 popular_fallback
//   - 底表耗尽时允许返回少于 TopK 条，这不是错误
type Backfill struct {
	Cache *artifact.Cache

	// Artifact 指定补底读取哪套产物的热度底表
	Artifact artifact.Kind

	// SkipSeen 补底时是否响应 RemoveSeen；与策略的 seen_filter 配置联动
	//（none 的策略补底也不剔除已交互物品，保持整条链路口径一致）
	SkipSeen bool
}

func (n *Backfill) Name() string {
	return "rerank.backfill"
}

func (n *Backfill) Kind() pipeline.Kind {
	return pipeline.KindBackfill
}

func (n *Backfill) Process(
	ctx context.Context,
	rctx *core.RecommendContext,
	items []*core.Item,
) ([]*core.Item, error) {
	if rctx == nil || len(items) >= rctx.TopK {
		return items, nil
	}
	b, err := n.Cache.Get(ctx, n.Artifact)
	if err != nil {
		return nil, err
	}

	emitted := make(map[int]struct{}, len(items))
	for _, it := range items {
		emitted[it.Idx] = struct{}{}
	}

	skipSeen := n.SkipSeen && rctx.Known && rctx.RemoveSeen
	for _, idx := range b.Popularity {
		if len(items) >= rctx.TopK {
			break
		}
		if _, dup := emitted[idx]; dup {
			continue
		}
		if skipSeen && b.Matrix.At(rctx.UserIdx, idx) > 0 {
			continue
		}
		ext, ok := b.Items.ToExternal(idx)
		if !ok {
			continue
		}
		it := core.NewItem(idx, ext)
		it.Score = 0
		it.Strategy = core.StrategyPopularFallback
		it.PutLabel("scorer", utils.Label{Value: "recall.popular", Source: "backfill"})
		emitted[idx] = struct{}{}
		items = append(items, it)
	}
	return items, nil
}
