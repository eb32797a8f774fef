// Package model 承载离线训练产物在进程内的只读表示。
//
// 训练本身发生在外部管线（ALS 分解 / WARP 隐因子 / 余弦近邻拟合），这里只
// 实现各产物的前向计算：向量点积、近邻检索。所有类型在装载完成后不再修改，
// 可被并发请求安全共享。
package model

import "sort"

// Scored 是 (内部物品索引, 原始分数) 的打分结果对。
type Scored struct {
	Idx   int
	Score float64
}

// sortScoredDesc 按分数降序稳定排序；分数相同保持候选枚举顺序。
func sortScoredDesc(scored []Scored) {
	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})
}
