package recall

import (
	"testing"

	"github.com/rushteam/recserve/artifact"
	"github.com/rushteam/recserve/core"
	"github.com/rushteam/recserve/model"
)

// newTestCache 构造各打分源共用的 3 用户 × 3 物品产物缓存：
//   - 用户 101 (idx 0)：item0=1, item1=1
//   - 用户 102 (idx 1)：item0=2, item1=2（与 101 同向，相似度 ~1）
//   - 用户 103 (idx 2)：item2=5（与前两者正交，相似度 0）
func newTestCache(t *testing.T) *artifact.Cache {
	t.Helper()
	als, err := artifact.EncodeALS(&model.ALS{
		Factors:     2,
		UserFactors: [][]float64{{1, 0}, {0.8, 0.2}, {0, 1}},
		ItemFactors: [][]float64{{1, 0}, {0.5, 0.5}, {0, 1}},
	})
	if err != nil {
		t.Fatalf("编码 als 失败: %v", err)
	}
	knn, err := artifact.EncodeKNN(20, "cosine")
	if err != nil {
		t.Fatalf("编码 knn 失败: %v", err)
	}
	latent, err := artifact.EncodeLatent(&model.Latent{
		Components:  2,
		UserFactors: [][]float64{{1, 0}, {0.8, 0.2}, {0, 1}},
		ItemFactors: [][]float64{{1, 0}, {0.5, 0.5}, {0, 1}},
		UserBiases:  []float64{0, 0, 0},
		ItemBiases:  []float64{0.1, -0.5, 0.2},
	})
	if err != nil {
		t.Fatalf("编码 latent 失败: %v", err)
	}
	source := &artifact.StaticSource{Blobs: map[string][]byte{
		artifact.BlobUserMap: []byte("user_idx,user_id\n0,101\n1,102\n2,103\n"),
		artifact.BlobItemMap: []byte("item_idx,item_id\n0,201\n1,202\n2,203\n"),
		artifact.BlobInteractions: []byte(
			"user_idx,item_idx,interaction\n0,0,1\n0,1,1\n1,0,2\n1,1,2\n2,2,5\n"),
		artifact.BlobALSModel:    als,
		artifact.BlobKNNModel:    knn,
		artifact.BlobLatentModel: latent,
	}}
	return artifact.NewCacheWithLoader(&artifact.Loader{Source: source})
}

func itemIDs(items []*core.Item) []string {
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = it.ID
	}
	return out
}
