package core

import "github.com/rushteam/recserve/pkg/utils"

// Strategy 标记一条推荐记录的产出层级：主策略命中、热门补底、冷启动兜底。
// 序列化后直接暴露给调用方，用于解释“这条结果为什么出现”。
type Strategy string

const (
	// StrategyPrimary 主策略打分产出（ALS / UserKNN / Latent）
	StrategyPrimary Strategy = "primary"
	// StrategyPopularFallback 主策略结果不足 K 条时的热门补底
	StrategyPopularFallback Strategy = "popular_fallback"
	// StrategyColdStart 用户不在训练索引空间时的整体兜底
	StrategyColdStart Strategy = "cold_start"
)

// Item 是推荐链路中的统一承载结构：内部索引、外部标识、分数、层级、标签。
// Idx 是训练产物使用的稠密索引，仅在链路内部流转；ID 是对外的物品标识。
// Labels 用于解释与观测；Strategy 用于告知调用方该记录的产出阶段。
type Item struct {
	Idx      int                    `json:"-"`
	ID       string                 `json:"item"`
	Score    float64                `json:"score"`
	Strategy Strategy               `json:"strategy"`
	Labels   map[string]utils.Label `json:"labels,omitempty"`
}

func NewItem(idx int, id string) *Item {
	return &Item{
		Idx:    idx,
		ID:     id,
		Labels: make(map[string]utils.Label),
	}
}

// PutLabel 写入 Label；若已存在同名 key，则按默认 Merge 规则累积。
func (it *Item) PutLabel(key string, lbl utils.Label) {
	if it.Labels == nil {
		it.Labels = make(map[string]utils.Label)
	}
	if old, ok := it.Labels[key]; ok {
		it.Labels[key] = utils.MergeLabel(old, lbl)
		return
	}
	it.Labels[key] = lbl
}
