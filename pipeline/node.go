package pipeline

import (
	"context"

	"github.com/rushteam/recserve/core"
)

// Kind 用于标记 Node 类型，方便观测/治理/编排（例如按阶段打点）。
type Kind string

const (
	KindScore    Kind = "score"    // 打分阶段：策略模型产出原始候选
	KindFilter   Kind = "filter"   // 过滤阶段：剔除噪声分、已交互物品、规则命中项
	KindReRank   Kind = "rerank"   // 重排阶段：排序与 Top-K 截断
	KindBackfill Kind = "backfill" // 补底阶段：结果不足 K 条时用热度补齐
)

// Node 是链路的最小可扩展单元。
// 统一采用“输入 items -> 输出 items”的形态，打分生成、过滤截断、热度补底
// 都以同一形态串联。
type Node interface {
	Name() string
	Kind() Kind

	Process(
		ctx context.Context,
		rctx *core.RecommendContext,
		items []*core.Item,
	) ([]*core.Item, error)
}
