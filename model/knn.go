package model

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"

	"github.com/rushteam/recserve/matrix"
)

// NearestNeighbors 是基于余弦距离的暴力近邻索引，检索空间是交互矩阵的
// 用户行向量。产物文件只记录超参（近邻数、度量），索引本身在装载时对
// 矩阵重建，行范数预计算一次。
//
// 与打分侧的约定：检索结果包含查询用户自身（自身距离为 0，排在最前），
// 自邻居的剔除由调用方完成。
type NearestNeighbors struct {
	mat      *matrix.CSR
	norms    []float64
	defaultK int
}

// NewNearestNeighbors 对交互矩阵拟合近邻索引。
// defaultK <= 0 时使用 20（离线训练侧的 n_neighbors 默认值）。
func NewNearestNeighbors(m *matrix.CSR, defaultK int) *NearestNeighbors {
	if defaultK <= 0 {
		defaultK = 20
	}
	rows, _ := m.Dims()
	norms := make([]float64, rows)
	for i := 0; i < rows; i++ {
		_, data := m.Row(i)
		norms[i] = math.Sqrt(floats.Dot(data, data))
	}
	return &NearestNeighbors{mat: m, norms: norms, defaultK: defaultK}
}

// DefaultK 返回训练时的近邻数。
func (nn *NearestNeighbors) DefaultK() int { return nn.defaultK }

// Kneighbors 返回与第 row 行最近的 k 个行索引及其余弦距离，距离升序。
// k 超过行数时收缩到行数（不足 20 个邻居不是错误）。零向量行与任何行的
// 余弦距离记为 1（相似度 0）。
func (nn *NearestNeighbors) Kneighbors(row, k int) (indices []int, distances []float64) {
	if k <= 0 {
		k = nn.defaultK
	}
	rows, _ := nn.mat.Dims()
	if k > rows {
		k = rows
	}

	queryIdx, queryData := nn.mat.Row(row)
	queryNorm := nn.norms[row]

	type candidate struct {
		idx  int
		dist float64
	}
	candidates := make([]candidate, rows)
	for i := 0; i < rows; i++ {
		dist := 1.0
		if queryNorm > 0 && nn.norms[i] > 0 {
			colIdx, colData := nn.mat.Row(i)
			dot := sparseDot(queryIdx, queryData, colIdx, colData)
			dist = 1 - dot/(queryNorm*nn.norms[i])
		}
		candidates[i] = candidate{idx: i, dist: dist}
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].dist < candidates[j].dist
	})

	indices = make([]int, k)
	distances = make([]float64, k)
	for i := 0; i < k; i++ {
		indices[i] = candidates[i].idx
		distances[i] = candidates[i].dist
	}
	return indices, distances
}

// sparseDot 计算两个稀疏行的点积，索引均为升序。
func sparseDot(aIdx []int, aData []float64, bIdx []int, bData []float64) float64 {
	var sum float64
	i, j := 0, 0
	for i < len(aIdx) && j < len(bIdx) {
		switch {
		case aIdx[i] == bIdx[j]:
			sum += aData[i] * bData[j]
			i++
			j++
		case aIdx[i] < bIdx[j]:
			i++
		default:
			j++
		}
	}
	return sum
}
