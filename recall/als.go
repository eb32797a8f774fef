package recall

import (
	"context"

	"github.com/rushteam/recserve/artifact"
	"github.com/rushteam/recserve/core"
	"github.com/rushteam/recserve/pipeline"
	"github.com/rushteam/recserve/pkg/utils"
)

// ALS 是矩阵分解打分源：直接委托训练模型内建的 recommend 操作。
//
// 与其他打分源的差异：
//   - 已交互过滤在模型内部完成（传入用户的交互行），RemoveSeen 直接透传
//   - 输出已经是排好序、去过重的 (物品, 分数) 列表，长度 ≤ TopK
//
// ALS 同时实现了 Source 和 Node 接口，可以直接在 Pipeline 中使用。
type ALS struct {
	Cache *artifact.Cache
}

func (r *ALS) Name() string        { return "recall.als" }
func (r *ALS) Kind() pipeline.Kind { return pipeline.KindScore }

// Process 实现 Node 接口，直接调用 Recall。
func (r *ALS) Process(
	ctx context.Context,
	rctx *core.RecommendContext,
	_ []*core.Item,
) ([]*core.Item, error) {
	return r.Recall(ctx, rctx)
}

// Recall 实现 Source 接口。
func (r *ALS) Recall(
	ctx context.Context,
	rctx *core.RecommendContext,
) ([]*core.Item, error) {
	if rctx == nil || !rctx.Known {
		return nil, nil
	}
	b, err := r.Cache.Get(ctx, artifact.KindALS)
	if err != nil {
		return nil, err
	}

	seen, _ := b.SeenRow(rctx.UserIdx)
	scored := b.ALS.Recommend(rctx.UserIdx, rctx.TopK, seen, rctx.RemoveSeen)

	out := make([]*core.Item, 0, len(scored))
	for _, s := range scored {
		ext, ok := b.Items.ToExternal(s.Idx)
		if !ok {
			continue
		}
		it := core.NewItem(s.Idx, ext)
		it.Score = s.Score
		it.PutLabel("scorer", utils.Label{Value: r.Name(), Source: "score"})
		out = append(out, it)
	}
	return out, nil
}
