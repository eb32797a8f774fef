package recall

import (
	"context"

	"github.com/rushteam/recserve/artifact"
	"github.com/rushteam/recserve/core"
	"github.com/rushteam/recserve/pkg/utils"
)

// Popular 是热度打分源：读取 Bundle 内预计算的热度底表（物品按累计交互
// 质量降序）。服务层用它做冷启动兜底；热度补底（Backfill）走同一张底表。
// 产出的记录分数恒为 0——热度位次本身不构成个性化信号。
type Popular struct {
	Cache *artifact.Cache

	// Kind 指定从哪套产物读取底表（三套产物的底表同源，任选其一即可，
	// 但冷启动兜底应复用请求命中的那一套，避免额外装载）
	Kind artifact.Kind
}

func (r *Popular) Name() string { return "recall.popular" }

// Recall 实现 Source 接口，返回前 TopK 个热门物品。
func (r *Popular) Recall(
	ctx context.Context,
	rctx *core.RecommendContext,
) ([]*core.Item, error) {
	b, err := r.Cache.Get(ctx, r.Kind)
	if err != nil {
		return nil, err
	}
	return TopPopular(b, rctx.TopK), nil
}

// TopPopular 从已装载的 Bundle 取前 n 个热门物品（n 大于底表长度时取全部）。
func TopPopular(b *artifact.Bundle, n int) []*core.Item {
	if n > len(b.Popularity) {
		n = len(b.Popularity)
	}
	out := make([]*core.Item, 0, n)
	for _, idx := range b.Popularity[:n] {
		ext, ok := b.Items.ToExternal(idx)
		if !ok {
			continue
		}
		it := core.NewItem(idx, ext)
		it.Score = 0
		it.PutLabel("scorer", utils.Label{Value: "recall.popular", Source: "score"})
		out = append(out, it)
	}
	return out
}
