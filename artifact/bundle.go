package artifact

import (
	"sort"

	"github.com/rushteam/recserve/matrix"
	"github.com/rushteam/recserve/model"
)

// Kind 标识一套训练产物对应的打分家族。
type Kind string

const (
	// KindALS 矩阵分解（交替最小二乘）
	KindALS Kind = "als"
	// KindUserKNN 基于用户的余弦近邻
	KindUserKNN Kind = "knn"
	// KindLatent 隐因子混合模型（WARP 损失）
	KindLatent Kind = "latent"
)

// Kinds 返回全部已知的产物家族（固定顺序，供预热与校验使用）。
func Kinds() []Kind { return []Kind{KindALS, KindUserKNN, KindLatent} }

// ParseKind 解析外部传入的家族名。
func ParseKind(s string) (Kind, bool) {
	switch Kind(s) {
	case KindALS, KindUserKNN, KindLatent:
		return Kind(s), true
	}
	return "", false
}

// Bundle 是一套装载完成的策略产物：训练模型、交互矩阵、标识映射与派生的
// 热度底表。生命周期：首个请求触发装载（或服务启动时预热），装载后不再
// 修改，进程退出时随之销毁。
type Bundle struct {
	Kind Kind

	// 模型对象：每套产物仅其一非 nil，与 Kind 对应
	ALS    *model.ALS
	KNN    *model.NearestNeighbors
	Latent *model.Latent

	// Matrix 是只读的用户×物品交互矩阵
	Matrix *matrix.CSR

	// Users / Items 是外部标识与内部索引的双向映射
	Users *Mapper
	Items *Mapper

	// Popularity 是物品内部索引按累计交互质量降序的热度底表，
	// 质量相同按索引升序（确定性排序）
	Popularity []int
}

// SeenRow 返回用户已交互物品的 (索引, 权重) 行视图。
func (b *Bundle) SeenRow(userIdx int) (indices []int, weights []float64) {
	return b.Matrix.Row(userIdx)
}

// popularityRanking 由每列交互质量和推导热度底表。
func popularityRanking(colSums []float64) []int {
	ranking := make([]int, len(colSums))
	for i := range ranking {
		ranking[i] = i
	}
	sort.SliceStable(ranking, func(i, j int) bool {
		return colSums[ranking[i]] > colSums[ranking[j]]
	})
	return ranking
}
