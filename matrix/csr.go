package matrix

import (
	"fmt"
	"sort"
)

// Entry 是交互表中的一行：内部用户索引、内部物品索引、正权重。
// 权重语义由离线管线决定（隐式反馈通常为 1，也可以是次数/时长）。
type Entry struct {
	Row    int
	Col    int
	Weight float64
}

// CSR 是按行压缩（Compressed Sparse Row）的用户×物品交互矩阵。
// 装载完成后只读，可被任意数量的并发请求安全共享。
//
// 不变式：
//   - 每个非零元对应源日志中出现过的一对 (user, item)
//   - 重复的 (user, item) 在构建时按稀疏矩阵求和语义合并
//   - 每行的列索引严格递增
type CSR struct {
	rows, cols int
	indptr     []int
	indices    []int
	data       []float64
}

// NewCSR 从交互三元组构建 CSR 矩阵。
// 形状由调用方给定（来自标识映射表的大小），越界的索引视为损坏数据并报错；
// 重复的 (row, col) 权重相加。
func NewCSR(rows, cols int, entries []Entry) (*CSR, error) {
	if rows < 0 || cols < 0 {
		return nil, fmt.Errorf("matrix: invalid shape %dx%d", rows, cols)
	}
	for _, e := range entries {
		if e.Row < 0 || e.Row >= rows {
			return nil, fmt.Errorf("matrix: row index %d out of range [0,%d)", e.Row, rows)
		}
		if e.Col < 0 || e.Col >= cols {
			return nil, fmt.Errorf("matrix: col index %d out of range [0,%d)", e.Col, cols)
		}
	}

	sorted := make([]Entry, len(entries))
	copy(sorted, entries)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Row != sorted[j].Row {
			return sorted[i].Row < sorted[j].Row
		}
		return sorted[i].Col < sorted[j].Col
	})

	m := &CSR{
		rows:    rows,
		cols:    cols,
		indptr:  make([]int, rows+1),
		indices: make([]int, 0, len(sorted)),
		data:    make([]float64, 0, len(sorted)),
	}

	row := 0
	for _, e := range sorted {
		// 重复坐标求和
		n := len(m.indices)
		if n > 0 && row == e.Row && m.indices[n-1] == e.Col && m.indptr[e.Row] < n {
			m.data[n-1] += e.Weight
			continue
		}
		for row < e.Row {
			row++
			m.indptr[row] = len(m.indices)
		}
		m.indices = append(m.indices, e.Col)
		m.data = append(m.data, e.Weight)
	}
	for row < rows {
		row++
		m.indptr[row] = len(m.indices)
	}
	return m, nil
}

// Dims 返回 (行数, 列数)。
func (m *CSR) Dims() (int, int) { return m.rows, m.cols }

// NNZ 返回非零元个数。
func (m *CSR) NNZ() int { return len(m.data) }

// Row 返回第 i 行的列索引与权重切片。
// 返回的是内部存储的切片视图，调用方不得修改。
func (m *CSR) Row(i int) (indices []int, data []float64) {
	start, end := m.indptr[i], m.indptr[i+1]
	return m.indices[start:end], m.data[start:end]
}

// At 返回 (i, j) 处的权重，不存在时为 0。
func (m *CSR) At(i, j int) float64 {
	indices, data := m.Row(i)
	k := sort.SearchInts(indices, j)
	if k < len(indices) && indices[k] == j {
		return data[k]
	}
	return 0
}

// ColSums 返回每列的权重和，即每个物品累计的交互质量（热度底表）。
func (m *CSR) ColSums() []float64 {
	sums := make([]float64, m.cols)
	for k, j := range m.indices {
		sums[j] += m.data[k]
	}
	return sums
}
