package model

import (
	"fmt"

	"gonum.org/v1/gonum/floats"
)

// Latent 是 WARP 损失训练出的隐因子混合模型产物：隐向量表加用户/物品偏置。
// 预测分数 = 用户偏置 + 物品偏置 + 用户隐向量 · 物品隐向量。
//
// 注意：WARP 产出的分数只保证序关系，数值未经校准、可为负；调用方不应对
// 分数的绝对大小做阈值假设。
type Latent struct {
	Components  int
	UserFactors [][]float64 // n_users x components
	ItemFactors [][]float64 // n_items x components
	UserBiases  []float64
	ItemBiases  []float64
}

// Users 返回训练时的用户数。
func (m *Latent) Users() int { return len(m.UserFactors) }

// Items 返回训练时的物品数。
func (m *Latent) Items() int { return len(m.ItemFactors) }

// Validate 校验隐向量与偏置表的内部一致性，装载时调用。
func (m *Latent) Validate() error {
	if m.Components <= 0 {
		return fmt.Errorf("model: latent components must be positive, got %d", m.Components)
	}
	if len(m.UserBiases) != len(m.UserFactors) {
		return fmt.Errorf("model: latent has %d user biases for %d user factors", len(m.UserBiases), len(m.UserFactors))
	}
	if len(m.ItemBiases) != len(m.ItemFactors) {
		return fmt.Errorf("model: latent has %d item biases for %d item factors", len(m.ItemBiases), len(m.ItemFactors))
	}
	for i, f := range m.UserFactors {
		if len(f) != m.Components {
			return fmt.Errorf("model: latent user factor %d has %d components, want %d", i, len(f), m.Components)
		}
	}
	for i, f := range m.ItemFactors {
		if len(f) != m.Components {
			return fmt.Errorf("model: latent item factor %d has %d components, want %d", i, len(f), m.Components)
		}
	}
	return nil
}

// Predict 返回用户对单个物品的预测分数。
func (m *Latent) Predict(userIdx, itemIdx int) float64 {
	return m.UserBiases[userIdx] + m.ItemBiases[itemIdx] +
		floats.Dot(m.UserFactors[userIdx], m.ItemFactors[itemIdx])
}

// PredictAll 返回用户对 [0, n_items) 全量物品的预测分数，下标即物品索引。
// 模型自身不做任何已交互过滤，是否剔除已见物品由调用方决定。
func (m *Latent) PredictAll(userIdx int) []float64 {
	scores := make([]float64, len(m.ItemFactors))
	for itemIdx := range m.ItemFactors {
		scores[itemIdx] = m.Predict(userIdx, itemIdx)
	}
	return scores
}
