package dsl

import (
	"fmt"
	"sync"

	"github.com/google/cel-go/cel"

	"github.com/rushteam/recserve/core"
)

var (
	// celEnv 是全局的 CEL 环境，线程安全，可复用
	celEnv     *cel.Env
	celEnvOnce sync.Once
	celEnvErr  error
)

// getCELEnv 获取或创建 CEL 环境，定义可用变量。
func getCELEnv() (*cel.Env, error) {
	celEnvOnce.Do(func() {
		celEnv, celEnvErr = cel.NewEnv(
			cel.Variable("item", cel.DynType),
			cel.Variable("label", cel.DynType),
			cel.Variable("rctx", cel.DynType),
		)
	})
	return celEnv, celEnvErr
}

// Rule 是一条编译后的结果过滤表达式，使用 CEL (Common Expression Language)。
// 表达式编译一次、按条评估，线程安全，可在并发请求间共享。
//
// 表达式语法（CEL 标准语法）：
//   - 基础：item.score > 0.5 / item.id != "sku-999"
//   - 标签：label.scorer == "recall.knn"
//   - 逻辑：item.score > 0.1 && rctx.user_id != "qa-robot"
//   - 存在性：label.scorer != null
//
// 返回 true 表示该条结果保留，false 表示剔除。
type Rule struct {
	expr string
	prg  cel.Program
}

// Compile 编译一条表达式。空表达式非法（无意义的规则应当直接不配置）。
func Compile(expr string) (*Rule, error) {
	if expr == "" {
		return nil, fmt.Errorf("dsl: empty expression")
	}
	env, err := getCELEnv()
	if err != nil {
		return nil, fmt.Errorf("dsl: env error: %w", err)
	}
	ast, issues := env.Compile(expr)
	if issues != nil && issues.Err() != nil {
		return nil, fmt.Errorf("dsl: compile %q: %w", expr, issues.Err())
	}
	prg, err := env.Program(ast)
	if err != nil {
		return nil, fmt.Errorf("dsl: program %q: %w", expr, err)
	}
	return &Rule{expr: expr, prg: prg}, nil
}

// String 返回原始表达式（用于日志与错误提示）。
func (r *Rule) String() string { return r.expr }

// Evaluate 对单条结果执行表达式，返回布尔结果。
// 对于不存在的 key，CEL 会返回错误；应使用 label.key != null 检查存在性。
func (r *Rule) Evaluate(item *core.Item, rctx *core.RecommendContext) (bool, error) {
	out, _, err := r.prg.Eval(buildInput(item, rctx))
	if err != nil {
		return false, fmt.Errorf("dsl: eval %q: %w", r.expr, err)
	}
	result, ok := out.Value().(bool)
	if !ok {
		return false, fmt.Errorf("dsl: expression %q must return boolean, got %T", r.expr, out.Value())
	}
	return result, nil
}

// buildInput 构建 CEL 表达式的输入数据。
func buildInput(it *core.Item, rctx *core.RecommendContext) map[string]any {
	labels := make(map[string]any, len(it.Labels))
	labelAccessor := make(map[string]any, len(it.Labels))
	for k, v := range it.Labels {
		labels[k] = map[string]any{"value": v.Value, "source": v.Source}
		// label.scorer 直接取 value，便于书写简短表达式
		labelAccessor[k] = v.Value
	}

	item := map[string]any{
		"id":       it.ID,
		"score":    it.Score,
		"strategy": string(it.Strategy),
		"labels":   labels,
	}

	rc := map[string]any{}
	if rctx != nil {
		rc["user_id"] = rctx.UserID
		rc["top_k"] = rctx.TopK
		rc["remove_seen"] = rctx.RemoveSeen
		rc["params"] = rctx.Params
	}

	return map[string]any{
		"item":  item,
		"label": labelAccessor,
		"rctx":  rc,
	}
}
