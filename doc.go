// Package recserve 是一个 Top-K 推荐在线服务引擎（Recommendation Serving）。
//
// 设计要点：
//   - Pipeline-first: 每个策略家族持有一条独立的 Node 链（打分 → 过滤 → 重排 → 补底）
//   - 惰性装载: 训练产物按策略首次请求时装载，singleflight 保证并发下只装载一次
//   - 永不空手: 主策略不足时热度补底，未知用户整单冷启动兜底，
//     每条结果通过 strategy 字段标注来源（primary / popular_fallback / cold_start）
package recserve

import "github.com/rushteam/recserve/pipeline"

// 轻量 facade：便于用户直接 import "recserve" 使用核心抽象。
type Pipeline = pipeline.Pipeline
type Node = pipeline.Node
type Kind = pipeline.Kind

const (
	KindScore    = pipeline.KindScore
	KindFilter   = pipeline.KindFilter
	KindReRank   = pipeline.KindReRank
	KindBackfill = pipeline.KindBackfill
)
