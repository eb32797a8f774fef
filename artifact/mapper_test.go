package artifact

import "testing"

func TestNumericNormalizer(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"7", "7"},
		{"007", "7"},    // 数值形态按解析后的数值归一
		{" 42 ", "42"},  // 首尾空白
		{"u_42", "u_42"}, // 非数值按原样
		{"", ""},
	}
	for _, tt := range tests {
		if got := NumericNormalizer(tt.in); got != tt.want {
			t.Errorf("NumericNormalizer(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestMapperRoundTrip(t *testing.T) {
	m, err := NewMapper([]MapEntry{
		{Idx: 0, External: "101"},
		{Idx: 1, External: "102"},
		{Idx: 2, External: "u_alpha"},
	}, nil)
	if err != nil {
		t.Fatalf("构建失败: %v", err)
	}

	if m.Len() != 3 {
		t.Errorf("Len = %d, want 3", m.Len())
	}

	tests := []struct {
		external string
		wantIdx  int
		wantOK   bool
	}{
		{"101", 0, true},
		{"0101", 0, true}, // 归一后等价
		{" 102 ", 1, true},
		{"u_alpha", 2, true},
		{"9999", 0, false}, // 未知标识：(0, false)，冷启动条件
	}
	for _, tt := range tests {
		idx, ok := m.ToIndex(tt.external)
		if idx != tt.wantIdx || ok != tt.wantOK {
			t.Errorf("ToIndex(%q) = (%d,%v), want (%d,%v)", tt.external, idx, ok, tt.wantIdx, tt.wantOK)
		}
	}

	// 反向翻译返回建表时的原始形式
	if ext, ok := m.ToExternal(0); !ok || ext != "101" {
		t.Errorf("ToExternal(0) = (%q,%v), want (101,true)", ext, ok)
	}
	if _, ok := m.ToExternal(3); ok {
		t.Error("越界索引应返回 false")
	}
}

// 建表与查找必须用同一个 Normalizer：用 Identity 建表后，
// 数值形态不同的同一标识查不到
func TestMapperNormalizerMismatch(t *testing.T) {
	m, err := NewMapper([]MapEntry{{Idx: 0, External: "007"}}, IdentityNormalizer)
	if err != nil {
		t.Fatalf("构建失败: %v", err)
	}
	if _, ok := m.ToIndex("7"); ok {
		t.Error("Identity 建表下 \"7\" 不应命中 \"007\"")
	}
	if _, ok := m.ToIndex("007"); !ok {
		t.Error("原始形式应命中")
	}
}

func TestNewMapperCorrupt(t *testing.T) {
	tests := []struct {
		name    string
		entries []MapEntry
	}{
		{"索引越界", []MapEntry{{Idx: 1, External: "a"}}},
		{"索引重复", []MapEntry{{Idx: 0, External: "a"}, {Idx: 0, External: "b"}}},
		{"归一后标识冲突", []MapEntry{{Idx: 0, External: "7"}, {Idx: 1, External: "007"}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewMapper(tt.entries, nil); err == nil {
				t.Fatal("期望报错，实际成功")
			}
		})
	}
}
