package recall

import (
	"context"

	"github.com/rushteam/recserve/artifact"
	"github.com/rushteam/recserve/core"
	"github.com/rushteam/recserve/pipeline"
	"github.com/rushteam/recserve/pkg/utils"
)

// UserKNN 是基于用户的余弦近邻打分源（User-based CF）。
//
// 算法流程：
//  1. 取请求用户的 k' 个余弦近邻（检索结果含自身，此处剔除）
//  2. 距离转相似度：similarity = 1 - distance（零相似度即零权投票，不是错误）
//  3. 物品分 = 各近邻交互行按相似度加权求和
//
// 边界：
//   - 用户数不足 k' 时按实际用户数检索
//   - 已交互物品的剔除由链路上的 filter.Seen 完成（RemoveSeen 生效时）
//
// UserKNN 同时实现了 Source 和 Node 接口，可以直接在 Pipeline 中使用。
type UserKNN struct {
	Cache *artifact.Cache

	// Neighbors 检索的近邻数 k'（<=0 时用产物内的训练值，通常为 20）
	Neighbors int
}

func (r *UserKNN) Name() string        { return "recall.knn" }
func (r *UserKNN) Kind() pipeline.Kind { return pipeline.KindScore }

// Process 实现 Node 接口，直接调用 Recall。
func (r *UserKNN) Process(
	ctx context.Context,
	rctx *core.RecommendContext,
	_ []*core.Item,
) ([]*core.Item, error) {
	return r.Recall(ctx, rctx)
}

// Recall 实现 Source 接口。
func (r *UserKNN) Recall(
	ctx context.Context,
	rctx *core.RecommendContext,
) ([]*core.Item, error) {
	if rctx == nil || !rctx.Known {
		return nil, nil
	}
	b, err := r.Cache.Get(ctx, artifact.KindUserKNN)
	if err != nil {
		return nil, err
	}

	neighbors, distances := b.KNN.Kneighbors(rctx.UserIdx, r.Neighbors)

	_, nItems := b.Matrix.Dims()
	scores := make([]float64, nItems)
	for i, neighbor := range neighbors {
		if neighbor == rctx.UserIdx {
			continue // 自邻居不参与投票
		}
		sim := 1 - distances[i]
		if sim == 0 {
			continue
		}
		cols, weights := b.Matrix.Row(neighbor)
		for k, col := range cols {
			scores[col] += sim * weights[k]
		}
	}

	// 候选按物品索引升序枚举，后续排序的并列关系依赖这个顺序
	out := make([]*core.Item, 0, nItems)
	for idx, score := range scores {
		if score == 0 {
			continue
		}
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
