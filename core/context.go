package core

import "github.com/rushteam/recserve/pkg/utils"

// RecommendContext 承载一次请求的用户与参数信息，贯穿整条打分/兜底链路透传。
// UserIdx 仅在标识解析成功后有效（Known 为 true），各 Node 不应在 Known 为
// false 时读取它。
type RecommendContext struct {
	UserID  string // 外部用户标识（string 通用，支持所有 ID 格式）
	UserIdx int    // 内部稠密索引，由 artifact.Mapper 解析
	Known   bool   // 标识是否命中训练索引空间

	// TopK 期望返回的结果条数（调用层已做默认值处理）
	TopK int

	// RemoveSeen 是否剔除用户已交互过的物品；各策略对它的响应方式不同，
	// 由策略配置（seen_filter: model/engine/none）决定
	RemoveSeen bool

	// Params 请求级上下文参数，预留给规则过滤等扩展使用
	Params map[string]any

	// Labels 是请求级标签，可驱动链路行为（例如标记实验分组）
	Labels map[string]utils.Label
}

// PutLabel 写入请求级 Label。
func (rctx *RecommendContext) PutLabel(key string, lbl utils.Label) {
	if rctx.Labels == nil {
		rctx.Labels = make(map[string]utils.Label)
	}
	if old, ok := rctx.Labels[key]; ok {
		rctx.Labels[key] = utils.MergeLabel(old, lbl)
		return
	}
	rctx.Labels[key] = lbl
}

// GetLabel 获取请求级 Label。
func (rctx *RecommendContext) GetLabel(key string) (utils.Label, bool) {
	if rctx.Labels == nil {
		return utils.Label{}, false
	}
	lbl, ok := rctx.Labels[key]
	return lbl, ok
}
