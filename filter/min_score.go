package filter

import (
	"context"

	"github.com/rushteam/recserve/core"
)

// DefaultMinScore 是近邻策略沿用的噪声分阈值。
// 这是一个历史取值、没有理论依据，因此做成可配置参数而不是硬编码常量。
const DefaultMinScore = 0.00001

// MinScore 过滤掉分数不超过阈值的候选：这类分数被视作“没有真实信号”，
// 不算一条真正的推荐，宁可留给热度补底。
type MinScore struct {
	// Threshold 噪声分阈值，候选分数必须严格大于它才保留
	Threshold float64
}

func (f *MinScore) Name() string {
	return "filter.min_score"
}

func (f *MinScore) ShouldFilter(
	_ context.Context,
	_ *core.RecommendContext,
	item *core.Item,
) (bool, error) {
	if item == nil {
		return false, nil
	}
	return item.Score <= f.Threshold, nil
}
