package model

import "testing"

func newTestALS() *ALS {
	return &ALS{
		Factors: 2,
		UserFactors: [][]float64{
			{1, 0},
			{0, 1},
		},
		ItemFactors: [][]float64{
			{1, 0},   // item 0: 用户 0 得 1.0
			{0.5, 0}, // item 1: 用户 0 得 0.5
			{0, 2},   // item 2: 用户 1 得 2.0
		},
	}
}

func TestALSRecommend(t *testing.T) {
	m := newTestALS()

	got := m.Recommend(0, 3, nil, false)
	if len(got) != 3 {
		t.Fatalf("结果条数 = %d, want 3", len(got))
	}
	// 降序：item0(1.0) > item1(0.5) > item2(0)
	wantIdx := []int{0, 1, 2}
	for k, s := range got {
		if s.Idx != wantIdx[k] {
			t.Errorf("结果[%d].Idx = %d, want %d", k, s.Idx, wantIdx[k])
		}
	}
	if got[0].Score != 1.0 || got[1].Score != 0.5 {
		t.Errorf("分数 = %v/%v, want 1.0/0.5", got[0].Score, got[1].Score)
	}
}

// filterSeen 在模型内部剔除已交互物品
func TestALSRecommendFilterSeen(t *testing.T) {
	m := newTestALS()

	got := m.Recommend(0, 3, []int{0}, true)
	for _, s := range got {
		if s.Idx == 0 {
			t.Fatal("已交互物品未被剔除")
		}
	}
	if len(got) != 2 {
		t.Errorf("结果条数 = %d, want 2", len(got))
	}

	// filterSeen 为 false 时 seen 不生效
	got = m.Recommend(0, 3, []int{0}, false)
	if len(got) != 3 {
		t.Errorf("不过滤时结果条数 = %d, want 3", len(got))
	}
}

func TestALSRecommendTruncate(t *testing.T) {
	m := newTestALS()
	if got := m.Recommend(0, 2, nil, false); len(got) != 2 {
		t.Errorf("截断后条数 = %d, want 2", len(got))
	}
	// n 大于物品数时全量返回
	if got := m.Recommend(0, 10, nil, false); len(got) != 3 {
		t.Errorf("条数 = %d, want 3", len(got))
	}
}

func TestALSValidate(t *testing.T) {
	tests := []struct {
		name    string
		m       *ALS
		wantErr bool
	}{
		{"合法", newTestALS(), false},
		{"factors 非正", &ALS{Factors: 0}, true},
		{
			"用户向量维度不一致",
			&ALS{Factors: 2, UserFactors: [][]float64{{1}}, ItemFactors: [][]float64{{1, 0}}},
			true,
		},
		{
			"物品向量维度不一致",
			&ALS{Factors: 2, UserFactors: [][]float64{{1, 0}}, ItemFactors: [][]float64{{1, 0, 0}}},
			true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.m.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
