package artifact

import (
	"fmt"
	"strconv"
	"strings"
)

// Normalizer 把外部标识归一成查表用的规范形式。
// 构建映射表与请求时查找必须使用同一个 Normalizer，否则查找会静默落空——
// 这是一类真实发生过的故障（离线管线按数值建表、在线按原始字符串查表）。
type Normalizer func(external string) string

// NumericNormalizer 模拟离线特征管线的键归一行为：数值形态的标识按解析后
// 的数值比较（"007" 与 "7" 等价），其余按去除首尾空白的原始字符串比较。
func NumericNormalizer(external string) string {
	s := strings.TrimSpace(external)
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return strconv.FormatInt(n, 10)
	}
	return s
}

// IdentityNormalizer 只去除首尾空白，用于离线侧按原始字符串建表的映射。
func IdentityNormalizer(external string) string {
	return strings.TrimSpace(external)
}

// MapEntry 是映射表里的一行：内部稠密索引与外部标识。
type MapEntry struct {
	Idx      int
	External string
}

// Mapper 在外部标识与内部稠密索引之间做双向翻译。
// 每套训练产物构建一次，之后只读；索引由特征构建期分配，服务期不再变化。
type Mapper struct {
	norm  Normalizer
	toIdx map[string]int
	toExt []string
}

// NewMapper 从映射表构建 Mapper。索引必须恰好覆盖 [0, len(entries))，
// 归一后的外部标识必须互不相同，否则视为映射表损坏。
func NewMapper(entries []MapEntry, norm Normalizer) (*Mapper, error) {
	if norm == nil {
		norm = NumericNormalizer
	}
	m := &Mapper{
		norm:  norm,
		toIdx: make(map[string]int, len(entries)),
		toExt: make([]string, len(entries)),
	}
	seen := make([]bool, len(entries))
	for _, e := range entries {
		if e.Idx < 0 || e.Idx >= len(entries) {
			return nil, fmt.Errorf("artifact: map index %d out of range [0,%d)", e.Idx, len(entries))
		}
		if seen[e.Idx] {
			return nil, fmt.Errorf("artifact: duplicate map index %d", e.Idx)
		}
		key := norm(e.External)
		if _, dup := m.toIdx[key]; dup {
			return nil, fmt.Errorf("artifact: duplicate external id %q after normalization", key)
		}
		seen[e.Idx] = true
		m.toIdx[key] = e.Idx
		m.toExt[e.Idx] = e.External
	}
	return m, nil
}

// Len 返回索引空间大小。
func (m *Mapper) Len() int { return len(m.toExt) }

// ToIndex 把外部标识翻译成内部索引；未知标识返回 (0, false)，从不报错，
// 调用方应把 miss 当作冷启动条件处理。
func (m *Mapper) ToIndex(external string) (int, bool) {
	idx, ok := m.toIdx[m.norm(external)]
	return idx, ok
}

// ToExternal 把内部索引翻译回外部标识（建表时的原始形式）。
func (m *Mapper) ToExternal(idx int) (string, bool) {
	if idx < 0 || idx >= len(m.toExt) {
		return "", false
	}
	return m.toExt[idx], true
}
