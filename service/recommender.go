package service

import (
	"context"
	"fmt"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/rushteam/recserve/artifact"
	"github.com/rushteam/recserve/core"
	"github.com/rushteam/recserve/filter"
	"github.com/rushteam/recserve/pipeline"
	"github.com/rushteam/recserve/pkg/utils"
	"github.com/rushteam/recserve/recall"
	"github.com/rushteam/recserve/rerank"
)

// DefaultTopK 是请求未指定 k 时的默认返回条数。
const DefaultTopK = 10

// StrategyParams 是单个策略家族在引擎侧的可调参数。
// 三条链路共用同一个兜底引擎，策略间的差异（已交互过滤位置、噪声分阈值）
// 全部表达为这里的显式参数，而不是各写一份控制流。
type StrategyParams struct {
	// MinScore 噪声分阈值；nil 取该家族默认（als/knn 为 filter.DefaultMinScore，
	// latent 关闭——WARP 分数未经校准、可为负，阈值过滤会改变其语义）
	MinScore *float64

	// SeenFilter 已交互过滤位置：model / engine / none
	SeenFilter string

	// Neighbors 近邻数 k'（仅 knn 有效；<=0 取产物内的训练值）
	Neighbors int

	// Rules 业务规则过滤（CEL 表达式，返回 true 保留）
	Rules []string
}

type strategySpec struct {
	kind artifact.Kind
	pipe *pipeline.Pipeline
}

// Recommender 是按请求执行的兜底排序引擎。
//
// 每个请求是一台只有终态的小状态机：
//   - 未知用户态：标识解析失败 → 直接返回热度 Top-K，整单 cold_start。终态。
//   - 主策略态：解析成功 → 打分 → 噪声分过滤 → 降序截断 Top-K，标 primary。
//   - 补底态：主策略不足 K 条 → 热度降序补齐，标 popular_fallback；
//     底表耗尽时允许不足 K 条。
//
// 各态一次执行、互不重试；任何一单请求都不会因为用户冷、结果空而硬失败。
type Recommender struct {
	cache *artifact.Cache
	specs map[artifact.Kind]*strategySpec

	defaultTopK int
	results     core.Store
	resultTTL   int
	logger      zerolog.Logger
}

// Option 配置 Recommender。
type Option func(*Recommender)

// WithLogger 设置日志器（默认丢弃）。
func WithLogger(logger zerolog.Logger) Option {
	return func(r *Recommender) {
		r.logger = logger.With().Str("component", "recommender").Logger()
	}
}

// WithDefaultTopK 覆盖默认返回条数。
func WithDefaultTopK(k int) Option {
	return func(r *Recommender) {
		if k > 0 {
			r.defaultTopK = k
		}
	}
}

// WithResultCache 启用结果缓存：命中时直接返回序列化过的整单结果。
// ttlSeconds <= 0 时不启用。
func WithResultCache(s core.Store, ttlSeconds int) Option {
	return func(r *Recommender) {
		if s != nil && ttlSeconds > 0 {
			r.results = s
			r.resultTTL = ttlSeconds
		}
	}
}

// New 创建引擎并为每个策略家族组装独立的 Node 链。
// params 里未出现的家族使用各自的默认参数。
func New(cache *artifact.Cache, params map[artifact.Kind]StrategyParams, opts ...Option) (*Recommender, error) {
	r := &Recommender{
		cache:       cache,
		specs:       make(map[artifact.Kind]*strategySpec),
		defaultTopK: DefaultTopK,
		logger:      zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(r)
	}

	for _, kind := range artifact.Kinds() {
		p := params[kind]
		applyDefaults(kind, &p)
		pipe, err := buildPipeline(cache, kind, p)
		if err != nil {
			return nil, err
		}
		r.specs[kind] = &strategySpec{kind: kind, pipe: pipe}
	}
	return r, nil
}

// applyDefaults 补齐策略参数的家族默认值。
func applyDefaults(kind artifact.Kind, p *StrategyParams) {
	if p.SeenFilter == "" {
		switch kind {
		case artifact.KindALS:
			p.SeenFilter = "model"
		case artifact.KindUserKNN:
			p.SeenFilter = "engine"
		case artifact.KindLatent:
			p.SeenFilter = "none"
		}
	}
	if p.MinScore == nil && kind != artifact.KindLatent {
		threshold := filter.DefaultMinScore
		p.MinScore = &threshold
	}
}

func buildPipeline(cache *artifact.Cache, kind artifact.Kind, p StrategyParams) (*pipeline.Pipeline, error) {
	var source pipeline.Node
	switch kind {
	case artifact.KindALS:
		source = &recall.ALS{Cache: cache}
	case artifact.KindUserKNN:
		source = &recall.UserKNN{Cache: cache, Neighbors: p.Neighbors}
	case artifact.KindLatent:
		source = &recall.Latent{Cache: cache}
	default:
		return nil, core.NewDomainError(core.ModuleService, core.ErrorCodeNotFound,
			fmt.Sprintf("unknown strategy %q", kind))
	}

	var filters []filter.Filter
	if p.MinScore != nil {
		filters = append(filters, &filter.MinScore{Threshold: *p.MinScore})
	}
	if p.SeenFilter == "engine" {
		filters = append(filters, &filter.Seen{Cache: cache, Kind: kind})
	}
	if len(p.Rules) > 0 {
		rule, err := filter.NewRule(p.Rules...)
		if err != nil {
			return nil, core.WrapDomainError(core.ModuleService, core.ErrorCodeInvalidInput,
				fmt.Sprintf("strategy %s rules", kind), err)
		}
		filters = append(filters, rule)
	}

	nodes := []pipeline.Node{source}
	if len(filters) > 0 {
		nodes = append(nodes, &filter.Node{Filters: filters})
	}
	nodes = append(nodes,
		&rerank.TopN{},
		&rerank.Backfill{Cache: cache, Artifact: kind, SkipSeen: p.SeenFilter != "none"},
	)
	return &pipeline.Pipeline{Nodes: nodes}, nil
}

// Strategies 返回引擎装配的全部策略名。
func (r *Recommender) Strategies() []string {
	out := make([]string, 0, len(r.specs))
	for _, kind := range artifact.Kinds() {
		if _, ok := r.specs[kind]; ok {
			out = append(out, string(kind))
		}
	}
	return out
}

// Recommend 为一个外部用户产出至多 topK 条去重后的有序推荐。
// topK <= 0 时取默认值；removeSeen 的生效方式由各策略的 seen_filter 决定。
// 唯一的硬失败是策略未知或该策略的产物装载失败；冷用户、空结果都会落进
// 兜底链路。
func (r *Recommender) Recommend(
	ctx context.Context,
	strategy string,
	userID string,
	topK int,
	removeSeen bool,
) ([]*core.Item, error) {
	kind, ok := artifact.ParseKind(strategy)
	if !ok {
		return nil, core.NewDomainError(core.ModuleService, core.ErrorCodeNotFound,
			fmt.Sprintf("unknown strategy %q", strategy))
	}
	spec := r.specs[kind]
	if topK <= 0 {
		topK = r.defaultTopK
	}

	cacheKey := fmt.Sprintf("rec:%s:%s:%d:%t", kind, userID, topK, removeSeen)
	if cached, ok := r.cachedResult(ctx, cacheKey); ok {
		return cached, nil
	}

	b, err := r.cache.Get(ctx, kind)
	if err != nil {
		r.logger.Error().Err(err).Str("strategy", strategy).Msg("artifact load failed")
		return nil, err
	}

	rctx := &core.RecommendContext{
		UserID:     userID,
		TopK:       topK,
		RemoveSeen: removeSeen,
	}

	var items []*core.Item
	if idx, known := b.Users.ToIndex(userID); known {
		rctx.UserIdx = idx
		rctx.Known = true
		items, err = spec.pipe.Run(ctx, rctx, nil)
		if err != nil {
			return nil, err
		}
	} else {
		// 冷启动兜底：整单热度 Top-K，removeSeen 无从谈起
		items = recall.TopPopular(b, topK)
		for _, it := range items {
			it.Strategy = core.StrategyColdStart
			it.PutLabel("cold_start", utils.Label{Value: "unknown_user", Source: "engine"})
		}
	}

	if items == nil {
		items = []*core.Item{}
	}

	r.storeResult(ctx, cacheKey, items)
	r.logger.Debug().
		Str("strategy", strategy).
		Str("user_id", userID).
		Int("top_k", topK).
		Bool("remove_seen", removeSeen).
		Int("results", len(items)).
		Msg("recommend")
	return items, nil
}

// WarmUp 并发装载全部策略产物，等价于服务启动时对每个策略先 Get 一次。
// 返回第一个失败；失败策略之外的缓存仍然可用，是否带病启动由调用方决定。
func (r *Recommender) WarmUp(ctx context.Context) error {
	eg, ctx := errgroup.WithContext(ctx)
	for kind := range r.specs {
		eg.Go(func() error {
			_, err := r.cache.Get(ctx, kind)
			if err != nil {
				r.logger.Warn().Err(err).Str("strategy", string(kind)).Msg("warm up failed")
			}
			return err
		})
	}
	return eg.Wait()
}

func (r *Recommender) cachedResult(ctx context.Context, key string) ([]*core.Item, bool) {
	if r.results == nil {
		return nil, false
	}
	data, err := r.results.Get(ctx, key)
	if err != nil {
		return nil, false
	}
	var items []*core.Item
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, false
	}
	return items, true
}

func (r *Recommender) storeResult(ctx context.Context, key string, items []*core.Item) {
	if r.results == nil {
		return
	}
	data, err := json.Marshal(items)
	if err != nil {
		return
	}
	if err := r.results.Set(ctx, key, data, r.resultTTL); err != nil {
		r.logger.Warn().Err(err).Str("key", key).Msg("result cache write failed")
	}
}
