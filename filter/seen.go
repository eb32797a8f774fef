package filter

import (
	"context"

	"github.com/rushteam/recserve/artifact"
	"github.com/rushteam/recserve/core"
)

// Seen 是已交互过滤器：剔除请求用户在交互矩阵中有记录的物品。
// 只在请求开启 RemoveSeen 且策略把已交互过滤交给引擎（seen_filter: engine）
// 时被挂到链路上；ALS 在模型内部过滤，Latent 不过滤。
type Seen struct {
	Cache *artifact.Cache
	Kind  artifact.Kind
}

func (f *Seen) Name() string {
	return "filter.seen"
}

func (f *Seen) ShouldFilter(
	ctx context.Context,
	rctx *core.RecommendContext,
	item *core.Item,
) (bool, error) {
	if item == nil || rctx == nil || !rctx.Known || !rctx.RemoveSeen {
		return false, nil
	}
	b, err := f.Cache.Get(ctx, f.Kind)
	if err != nil {
		return false, err
	}
	return b.Matrix.At(rctx.UserIdx, item.Idx) > 0, nil
}
