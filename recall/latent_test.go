package recall

import (
	"context"
	"math"
	"testing"

	"github.com/rushteam/recserve/core"
)

// 隐因子模型全量打分：不过滤已交互，负分也保留
func TestLatentRecall(t *testing.T) {
	r := &Latent{Cache: newTestCache(t)}
	rctx := &core.RecommendContext{UserID: "101", UserIdx: 0, Known: true, TopK: 10, RemoveSeen: true}

	items, err := r.Recall(context.Background(), rctx)
	if err != nil {
		t.Fatalf("Recall 失败: %v", err)
	}
	if len(items) != 3 {
		t.Fatalf("候选数 = %d, want 全量 3", len(items))
	}
	// item1: 0 + (-0.5) + 0.5 = 0；item2: 0 + 0.2 + 0 = 0.2
	if math.Abs(items[1].Score-0) > 1e-12 {
		t.Errorf("item 202 分数 = %v, want 0", items[1].Score)
	}
	if math.Abs(items[2].Score-0.2) > 1e-12 {
		t.Errorf("item 203 分数 = %v, want 0.2", items[2].Score)
	}
}

func TestLatentRecallUnknownUser(t *testing.T) {
	r := &Latent{Cache: newTestCache(t)}
	items, err := r.Recall(context.Background(), &core.RecommendContext{UserID: "9999"})
	if err != nil {
		t.Fatalf("Recall 失败: %v", err)
	}
	if items != nil {
		t.Errorf("未知用户应返回 nil 候选, got %d 条", len(items))
	}
}
