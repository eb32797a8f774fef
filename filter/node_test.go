package filter

import (
	"context"
	"errors"
	"testing"

	"github.com/rushteam/recserve/core"
)

type stubFilter struct {
	name   string
	filter func(*core.Item) bool
	err    error
}

func (f *stubFilter) Name() string { return f.name }

func (f *stubFilter) ShouldFilter(
	_ context.Context,
	_ *core.RecommendContext,
	item *core.Item,
) (bool, error) {
	if f.err != nil {
		return false, f.err
	}
	return f.filter(item), nil
}

func newItems(scores ...float64) []*core.Item {
	out := make([]*core.Item, len(scores))
	for i, s := range scores {
		out[i] = core.NewItem(i, "")
		out[i].Score = s
	}
	return out
}

func TestFilterNode(t *testing.T) {
	n := &Node{Filters: []Filter{
		&stubFilter{name: "low", filter: func(it *core.Item) bool { return it.Score < 0.5 }},
	}}

	items := newItems(0.9, 0.1, 0.7)
	out, err := n.Process(context.Background(), nil, items)
	if err != nil {
		t.Fatalf("Process 失败: %v", err)
	}
	if len(out) != 2 {
		t.Fatalf("保留数 = %d, want 2", len(out))
	}

	// 被过滤的物品带上过滤原因标签
	if lbl, ok := items[1].Labels["filtered"]; !ok || lbl.Source != "low" {
		t.Errorf("filtered 标签 = %+v, want source=low", lbl)
	}
}

// 任何一个过滤器判 true 即剔除
func TestFilterNodeAnyOf(t *testing.T) {
	n := &Node{Filters: []Filter{
		&stubFilter{name: "never", filter: func(*core.Item) bool { return false }},
		&stubFilter{name: "always", filter: func(*core.Item) bool { return true }},
	}}
	out, err := n.Process(context.Background(), nil, newItems(1, 2))
	if err != nil {
		t.Fatalf("Process 失败: %v", err)
	}
	if len(out) != 0 {
		t.Errorf("保留数 = %d, want 0", len(out))
	}
}

// 过滤器报错时跳过该过滤器，不中断链路，错误原因记在标签上
func TestFilterNodeErrorRecorded(t *testing.T) {
	n := &Node{Filters: []Filter{
		&stubFilter{name: "broken", err: errors.New("boom")},
	}}
	items := newItems(1, 2)
	out, err := n.Process(context.Background(), nil, items)
	if err != nil {
		t.Fatalf("Process 失败: %v", err)
	}
	if len(out) != 2 {
		t.Errorf("保留数 = %d, want 2", len(out))
	}
	for i, it := range items {
		lbl, ok := it.Labels["filter_error"]
		if !ok {
			t.Fatalf("物品 %d 缺少 filter_error 标签", i)
		}
		if lbl.Value != "boom" || lbl.Source != "broken" {
			t.Errorf("filter_error 标签 = %+v, want value=boom source=broken", lbl)
		}
	}
}

func TestFilterNodeEmpty(t *testing.T) {
	n := &Node{}
	items := newItems(1)
	out, err := n.Process(context.Background(), nil, items)
	if err != nil {
		t.Fatalf("Process 失败: %v", err)
	}
	if len(out) != 1 {
		t.Errorf("无过滤器时应原样透传, got %d", len(out))
	}
}
