package recall

import (
	"context"

	"github.com/rushteam/recserve/core"
)

// Source 表示一个可复用的打分源（ALS / UserKNN / Latent / 热度）。
// 每个 Source 消费一套已装载的产物，对解析成功的用户产出逐物品原始分。
// 未知用户由上游拦截并走冷启动兜底，Source 不处理 Known=false 的请求。
type Source interface {
	Name() string
	Recall(ctx context.Context, rctx *core.RecommendContext) ([]*core.Item, error)
}
