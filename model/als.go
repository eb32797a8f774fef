package model

import (
	"fmt"
	"sort"

	"gonum.org/v1/gonum/floats"
)

// ALS 是交替最小二乘矩阵分解的训练产物：用户/物品隐向量表。
// 预测分数 = 用户隐向量 · 物品隐向量。
//
// 工程特征：离线训练、在线查表，打分只有向量点积，复杂度低。
type ALS struct {
	Factors     int
	UserFactors [][]float64 // n_users x factors
	ItemFactors [][]float64 // n_items x factors
}

// Users 返回训练时的用户数。
func (m *ALS) Users() int { return len(m.UserFactors) }

// Items 返回训练时的物品数。
func (m *ALS) Items() int { return len(m.ItemFactors) }

// Validate 校验隐向量表的内部一致性，装载时调用。
func (m *ALS) Validate() error {
	if m.Factors <= 0 {
		return fmt.Errorf("model: als factors must be positive, got %d", m.Factors)
	}
	for i, f := range m.UserFactors {
		if len(f) != m.Factors {
			return fmt.Errorf("model: als user factor %d has %d components, want %d", i, len(f), m.Factors)
		}
	}
	for i, f := range m.ItemFactors {
		if len(f) != m.Factors {
			return fmt.Errorf("model: als item factor %d has %d components, want %d", i, len(f), m.Factors)
		}
	}
	return nil
}

// Recommend 对用户打分并返回至多 n 条降序结果。
// seen 是用户已交互物品的内部索引（升序）；filterSeen 为 true 时这些物品
// 在模型内部被剔除，调用方不再需要额外过滤。对未知用户没有定义行为，
// 越界索引由上游拦截。
func (m *ALS) Recommend(userIdx, n int, seen []int, filterSeen bool) []Scored {
	user := m.UserFactors[userIdx]

	scored := make([]Scored, 0, len(m.ItemFactors))
	for itemIdx, item := range m.ItemFactors {
		if filterSeen && containsSorted(seen, itemIdx) {
			continue
		}
		scored = append(scored, Scored{Idx: itemIdx, Score: floats.Dot(user, item)})
	}
	sortScoredDesc(scored)

	if n >= 0 && len(scored) > n {
		scored = scored[:n]
	}
	return scored
}

func containsSorted(s []int, v int) bool {
	k := sort.SearchInts(s, v)
	return k < len(s) && s[k] == v
}
