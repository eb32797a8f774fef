package artifact

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/rushteam/recserve/matrix"
	"github.com/rushteam/recserve/model"
)

// 产物 blob 的约定名称，由离线管线写出、装载器读取。
const (
	BlobUserMap      = "features/user_map.csv"
	BlobItemMap      = "features/item_map.csv"
	BlobInteractions = "features/interactions.csv"
	BlobALSModel     = "models/als.msgpack"
	BlobKNNModel     = "models/knn.msgpack"
	BlobLatentModel  = "models/latent.msgpack"
)

// alsPayload 是 ALS 产物的 msgpack 布局。
type alsPayload struct {
	Factors     int         `msgpack:"factors"`
	UserFactors [][]float64 `msgpack:"user_factors"`
	ItemFactors [][]float64 `msgpack:"item_factors"`
}

// knnPayload 是近邻产物的 msgpack 布局。索引本身在装载时对交互矩阵重建，
// 产物只携带训练侧超参。
type knnPayload struct {
	Neighbors int    `msgpack:"neighbors"`
	Metric    string `msgpack:"metric"`
}

// latentPayload 是隐因子混合模型产物的 msgpack 布局。
type latentPayload struct {
	Components  int         `msgpack:"components"`
	UserFactors [][]float64 `msgpack:"user_factors"`
	ItemFactors [][]float64 `msgpack:"item_factors"`
	UserBiases  []float64   `msgpack:"user_biases"`
	ItemBiases  []float64   `msgpack:"item_biases"`
}

func decodeALS(data []byte) (*model.ALS, error) {
	var p alsPayload
	if err := msgpack.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("artifact: decode als payload: %w", err)
	}
	m := &model.ALS{Factors: p.Factors, UserFactors: p.UserFactors, ItemFactors: p.ItemFactors}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return m, nil
}

func decodeKNN(data []byte) (*knnPayload, error) {
	var p knnPayload
	if err := msgpack.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("artifact: decode knn payload: %w", err)
	}
	if p.Metric != "" && p.Metric != "cosine" {
		return nil, fmt.Errorf("artifact: unsupported knn metric %q", p.Metric)
	}
	return &p, nil
}

func decodeLatent(data []byte) (*model.Latent, error) {
	var p latentPayload
	if err := msgpack.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("artifact: decode latent payload: %w", err)
	}
	m := &model.Latent{
		Components:  p.Components,
		UserFactors: p.UserFactors,
		ItemFactors: p.ItemFactors,
		UserBiases:  p.UserBiases,
		ItemBiases:  p.ItemBiases,
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return m, nil
}

// EncodeALS 将 ALS 模型编码为产物 blob（供离线侧与测试使用）。
func EncodeALS(m *model.ALS) ([]byte, error) {
	return msgpack.Marshal(alsPayload{Factors: m.Factors, UserFactors: m.UserFactors, ItemFactors: m.ItemFactors})
}

// EncodeKNN 将近邻超参编码为产物 blob（供离线侧与测试使用）。
func EncodeKNN(neighbors int, metric string) ([]byte, error) {
	return msgpack.Marshal(knnPayload{Neighbors: neighbors, Metric: metric})
}

// EncodeLatent 将隐因子模型编码为产物 blob（供离线侧与测试使用）。
func EncodeLatent(m *model.Latent) ([]byte, error) {
	return msgpack.Marshal(latentPayload{
		Components:  m.Components,
		UserFactors: m.UserFactors,
		ItemFactors: m.ItemFactors,
		UserBiases:  m.UserBiases,
		ItemBiases:  m.ItemBiases,
	})
}

// parseIDMap 解析 idx↔id 映射表 CSV；按表头定位列，允许存在额外列。
func parseIDMap(data []byte, idxCol, idCol string) ([]MapEntry, error) {
	rows, header, err := readCSV(data)
	if err != nil {
		return nil, err
	}
	idxPos, ok := header[idxCol]
	if !ok {
		return nil, fmt.Errorf("artifact: id map missing column %q", idxCol)
	}
	idPos, ok := header[idCol]
	if !ok {
		return nil, fmt.Errorf("artifact: id map missing column %q", idCol)
	}

	entries := make([]MapEntry, 0, len(rows))
	for i, row := range rows {
		idx, err := strconv.Atoi(row[idxPos])
		if err != nil {
			return nil, fmt.Errorf("artifact: id map row %d: bad index %q", i+1, row[idxPos])
		}
		entries = append(entries, MapEntry{Idx: idx, External: row[idPos]})
	}
	return entries, nil
}

// parseInteractions 解析带索引的交互表 CSV（user_idx, item_idx, interaction）。
func parseInteractions(data []byte) ([]matrix.Entry, error) {
	rows, header, err := readCSV(data)
	if err != nil {
		return nil, err
	}
	for _, col := range []string{"user_idx", "item_idx", "interaction"} {
		if _, ok := header[col]; !ok {
			return nil, fmt.Errorf("artifact: interactions missing column %q", col)
		}
	}
	uPos, iPos, wPos := header["user_idx"], header["item_idx"], header["interaction"]

	entries := make([]matrix.Entry, 0, len(rows))
	for n, row := range rows {
		u, err := strconv.Atoi(row[uPos])
		if err != nil {
			return nil, fmt.Errorf("artifact: interactions row %d: bad user_idx %q", n+1, row[uPos])
		}
		it, err := strconv.Atoi(row[iPos])
		if err != nil {
			return nil, fmt.Errorf("artifact: interactions row %d: bad item_idx %q", n+1, row[iPos])
		}
		w, err := strconv.ParseFloat(row[wPos], 64)
		if err != nil {
			return nil, fmt.Errorf("artifact: interactions row %d: bad interaction %q", n+1, row[wPos])
		}
		entries = append(entries, matrix.Entry{Row: u, Col: it, Weight: w})
	}
	return entries, nil
}

func readCSV(data []byte) (rows [][]string, header map[string]int, err error) {
	r := csv.NewReader(bytes.NewReader(data))
	r.FieldsPerRecord = -1

	first, err := r.Read()
	if err != nil {
		return nil, nil, fmt.Errorf("artifact: read csv header: %w", err)
	}
	header = make(map[string]int, len(first))
	for i, name := range first {
		header[name] = i
	}

	for {
		row, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, nil, fmt.Errorf("artifact: read csv row: %w", err)
		}
		rows = append(rows, row)
	}
	return rows, header, nil
}
