package rerank

import (
	"context"
	"testing"

	"github.com/rushteam/recserve/artifact"
	"github.com/rushteam/recserve/core"
	"github.com/rushteam/recserve/matrix"
)

// newBackfillCache 用注入的 LoadFunc 构造缓存：2 用户 × 4 物品，
// 热度序 [0, 1, 2, 3]，用户 0 交互过 item0 与 item2。
func newBackfillCache(t *testing.T) *artifact.Cache {
	t.Helper()
	mat, err := matrix.NewCSR(2, 4, []matrix.Entry{
		{Row: 0, Col: 0, Weight: 4}, {Row: 0, Col: 2, Weight: 2},
		{Row: 1, Col: 0, Weight: 4}, {Row: 1, Col: 1, Weight: 3},
		{Row: 1, Col: 3, Weight: 1},
	})
	if err != nil {
		t.Fatalf("构建矩阵失败: %v", err)
	}
	items, err := artifact.NewMapper([]artifact.MapEntry{
		{Idx: 0, External: "201"}, {Idx: 1, External: "202"},
		{Idx: 2, External: "203"}, {Idx: 3, External: "204"},
	}, nil)
	if err != nil {
		t.Fatalf("构建映射失败: %v", err)
	}
	return artifact.NewCache(func(_ context.Context, kind artifact.Kind) (*artifact.Bundle, error) {
		return &artifact.Bundle{
			Kind:       kind,
			Matrix:     mat,
			Items:      items,
			Popularity: []int{0, 1, 2, 3},
		}, nil
	})
}

func TestBackfillProcess(t *testing.T) {
	n := &Backfill{Cache: newBackfillCache(t), Artifact: artifact.KindUserKNN}
	rctx := &core.RecommendContext{UserID: "101", UserIdx: 0, Known: true, TopK: 3}

	primary := core.NewItem(1, "202")
	primary.Score = 0.7
	primary.Strategy = core.StrategyPrimary

	out, err := n.Process(context.Background(), rctx, []*core.Item{primary})
	if err != nil {
		t.Fatalf("Process 失败: %v", err)
	}
	if len(out) != 3 {
		t.Fatalf("条数 = %d, want 3", len(out))
	}
	// 主策略结果在前，补底跳过已产出的 item1，按热度补 item0、item2
	if out[0] != primary {
		t.Error("主策略结果应保持在前")
	}
	if out[1].ID != "201" || out[2].ID != "203" {
		t.Errorf("补底 = [%s %s], want [201 203]", out[1].ID, out[2].ID)
	}
	for _, it := range out[1:] {
		if it.Strategy != core.StrategyPopularFallback {
			t.Errorf("补底层级 = %s, want popular_fallback", it.Strategy)
		}
		if it.Score != 0 {
			t.Errorf("补底分数 = %v, want 0", it.Score)
		}
	}
}

// SkipSeen 与 RemoveSeen 同时生效才跳过已交互物品
func TestBackfillSkipSeen(t *testing.T) {
	n := &Backfill{Cache: newBackfillCache(t), Artifact: artifact.KindUserKNN, SkipSeen: true}
	rctx := &core.RecommendContext{UserID: "101", UserIdx: 0, Known: true, TopK: 2, RemoveSeen: true}

	// 用户 0 交互过 item0/item2 → 补 item1、item3
	out, err := n.Process(context.Background(), rctx, nil)
	if err != nil {
		t.Fatalf("Process 失败: %v", err)
	}
	if len(out) != 2 || out[0].ID != "202" || out[1].ID != "204" {
		t.Fatalf("补底 = %v, want [202 204]", ids(out))
	}

	// RemoveSeen 关闭时不跳过
	rctx.RemoveSeen = false
	out, err = n.Process(context.Background(), rctx, nil)
	if err != nil {
		t.Fatalf("Process 失败: %v", err)
	}
	if len(out) != 2 || out[0].ID != "201" || out[1].ID != "202" {
		t.Fatalf("补底 = %v, want [201 202]", ids(out))
	}
}

// 底表耗尽时允许少于 TopK 条
func TestBackfillExhausted(t *testing.T) {
	n := &Backfill{Cache: newBackfillCache(t), Artifact: artifact.KindUserKNN, SkipSeen: true}
	rctx := &core.RecommendContext{UserID: "102", UserIdx: 1, Known: true, TopK: 10, RemoveSeen: true}

	// 用户 1 交互过 item0/item1/item3，只剩 item2 可补
	out, err := n.Process(context.Background(), rctx, nil)
	if err != nil {
		t.Fatalf("Process 失败: %v", err)
	}
	if len(out) != 1 || out[0].ID != "203" {
		t.Fatalf("补底 = %v, want [203]", ids(out))
	}
}

// 结果已满时不触发补底
func TestBackfillNotNeeded(t *testing.T) {
	n := &Backfill{Cache: newBackfillCache(t), Artifact: artifact.KindUserKNN}
	rctx := &core.RecommendContext{UserID: "101", UserIdx: 0, Known: true, TopK: 1}

	primary := core.NewItem(1, "202")
	out, err := n.Process(context.Background(), rctx, []*core.Item{primary})
	if err != nil {
		t.Fatalf("Process 失败: %v", err)
	}
	if len(out) != 1 {
		t.Errorf("条数 = %d, want 1", len(out))
	}
}

func ids(items []*core.Item) []string {
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = it.ID
	}
	return out
}
