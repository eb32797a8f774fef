package model

import (
	"math"
	"testing"
)

func newTestLatent() *Latent {
	return &Latent{
		Components: 2,
		UserFactors: [][]float64{
			{1, 0},
			{0, 1},
		},
		ItemFactors: [][]float64{
			{0.5, 0},
			{0, 0.5},
		},
		UserBiases: []float64{0.1, -0.3},
		ItemBiases: []float64{0.2, -0.6},
	}
}

func TestLatentPredict(t *testing.T) {
	m := newTestLatent()

	tests := []struct {
		user, item int
		want       float64
	}{
		{0, 0, 0.1 + 0.2 + 0.5}, // 偏置 + 偏置 + 点积
		{0, 1, 0.1 - 0.6 + 0},
		{1, 1, -0.3 - 0.6 + 0.5}, // WARP 分数可为负
	}
	for _, tt := range tests {
		if got := m.Predict(tt.user, tt.item); math.Abs(got-tt.want) > 1e-12 {
			t.Errorf("Predict(%d,%d) = %v, want %v", tt.user, tt.item, got, tt.want)
		}
	}
}

// 全量打分，下标即物品索引，不做任何已交互过滤
func TestLatentPredictAll(t *testing.T) {
	m := newTestLatent()
	scores := m.PredictAll(1)
	if len(scores) != 2 {
		t.Fatalf("条数 = %d, want 2", len(scores))
	}
	for itemIdx, s := range scores {
		if want := m.Predict(1, itemIdx); s != want {
			t.Errorf("PredictAll[%d] = %v, want %v", itemIdx, s, want)
		}
	}
}

func TestLatentValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Latent)
		wantErr bool
	}{
		{"合法", func(*Latent) {}, false},
		{"components 非正", func(m *Latent) { m.Components = 0 }, true},
		{"用户偏置数不匹配", func(m *Latent) { m.UserBiases = []float64{0} }, true},
		{"物品偏置数不匹配", func(m *Latent) { m.ItemBiases = nil }, true},
		{"向量维度不一致", func(m *Latent) { m.UserFactors[0] = []float64{1} }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := newTestLatent()
			tt.mutate(m)
			err := m.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
