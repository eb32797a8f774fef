package recall

import (
	"context"

	"github.com/rushteam/recserve/artifact"
	"github.com/rushteam/recserve/core"
	"github.com/rushteam/recserve/pipeline"
	"github.com/rushteam/recserve/pkg/utils"
)

// Latent 是隐因子混合模型打分源：对 [0, n_items) 全量物品索引计算
// 偏置加点积的预测分。
//
// 注意：模型不做任何已交互过滤，该策略配置为 seen_filter: none 时
// RemoveSeen 对它不生效，保持与离线评估口径一致。
//
// Latent 同时实现了 Source 和 Node 接口，可以直接在 Pipeline 中使用。
type Latent struct {
	Cache *artifact.Cache
}

func (r *Latent) Name() string        { return "recall.latent" }
func (r *Latent) Kind() pipeline.Kind { return pipeline.KindScore }

// Process 实现 Node 接口，直接调用 Recall。
func (r *Latent) Process(
	ctx context.Context,
	rctx *core.RecommendContext,
	_ []*core.Item,
) ([]*core.Item, error) {
	return r.Recall(ctx, rctx)
}

// Recall 实现 Source 接口。
func (r *Latent) Recall(
	ctx context.Context,
	rctx *core.RecommendContext,
) ([]*core.Item, error) {
	if rctx == nil || !rctx.Known {
		return nil, nil
	}
	b, err := r.Cache.Get(ctx, artifact.KindLatent)
	if err != nil {
		return nil, err
	}

	scores := b.Latent.PredictAll(rctx.UserIdx)

	out := make([]*core.Item, 0, len(scores))
	for idx, score := range scores {
		ext, ok := b.Items.ToExternal(idx)
		if !ok {
			continue
		}
		it := core.NewItem(idx, ext)
		it.Score = score
		it.PutLabel("scorer", utils.Label{Value: r.Name(), Source: "score"})
		out = append(out, it)
	}
	return out, nil
}
