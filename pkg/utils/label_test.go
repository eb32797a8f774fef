package utils

import "testing"

func TestMergeLabel(t *testing.T) {
	tests := []struct {
		name     string
		existing Label
		incoming Label
		want     Label
	}{
		{
			name:     "Value 以竖线累积，Source 以逗号累积",
			existing: Label{Value: "recall.knn", Source: "score"},
			incoming: Label{Value: "recall.popular", Source: "backfill"},
			want:     Label{Value: "recall.knn|recall.popular", Source: "score,backfill"},
		},
		{
			name:     "旧值为空取新值",
			existing: Label{},
			incoming: Label{Value: "a", Source: "s"},
			want:     Label{Value: "a", Source: "s"},
		},
		{
			name:     "新值为空保留旧值",
			existing: Label{Value: "a", Source: "s"},
			incoming: Label{},
			want:     Label{Value: "a", Source: "s"},
		},
		{
			name:     "新 Source 为空时保留旧 Source",
			existing: Label{Value: "a", Source: "s1"},
			incoming: Label{Value: "b"},
			want:     Label{Value: "a|b", Source: "s1"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := MergeLabel(tt.existing, tt.incoming); got != tt.want {
				t.Errorf("MergeLabel = %+v, want %+v", got, tt.want)
			}
		})
	}
}
