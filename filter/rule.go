package filter

import (
	"context"
	"fmt"

	"github.com/rushteam/recserve/core"
	"github.com/rushteam/recserve/pkg/dsl"
)

// Rule 是业务规则过滤器：按 CEL 表达式逐条判定候选是否保留。
// 表达式返回 true 表示保留；任意一条规则判 false 即剔除。
// 表达式在构建时编译一次，可在并发请求间共享。
//
// 典型用途：临时下架个别物品、按请求参数屏蔽某类结果，无需改代码发版。
type Rule struct {
	rules []*dsl.Rule
}

// NewRule 编译一组 CEL 表达式。任何一条编译失败都立即报错（配置错误
// 应该在启动时暴露，而不是在请求路径上吞掉）。
func NewRule(exprs ...string) (*Rule, error) {
	rules := make([]*dsl.Rule, 0, len(exprs))
	for _, expr := range exprs {
		r, err := dsl.Compile(expr)
		if err != nil {
			return nil, fmt.Errorf("filter: %w", err)
		}
		rules = append(rules, r)
	}
	return &Rule{rules: rules}, nil
}

func (f *Rule) Name() string {
	return "filter.rule"
}

func (f *Rule) ShouldFilter(
	_ context.Context,
	rctx *core.RecommendContext,
	item *core.Item,
) (bool, error) {
	if item == nil {
		return false, nil
	}
	for _, r := range f.rules {
		keep, err := r.Evaluate(item, rctx)
		if err != nil {
			return false, err
		}
		if !keep {
			return true, nil
		}
	}
	return false, nil
}
