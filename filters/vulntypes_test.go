package filters

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/ciaa/ciaa-dashboard/model"
)

func TestNormalizeVulnerabilityTypes_Shapes(t *testing.T) {
	tests := []struct {
		name  string
		raw   string
		limit int
		shape Shape
		want  []model.VulnerabilityType
	}{
		{
			name:  "typed list",
			raw:   `{"types":[{"type":"Heap Overflow","count":3},{"type":"UAF","count":9}]}`,
			limit: 5,
			shape: ShapeTypedList,
			want:  []model.VulnerabilityType{{Type: "UAF", Count: 9}, {Type: "Heap Overflow", Count: 3}},
		},
		{
			name:  "labels with counts",
			raw:   `{"types":["A","B","C"],"counts":{"A":1,"C":7}}`,
			limit: 5,
			shape: ShapeLabelsWithCounts,
			want:  []model.VulnerabilityType{{Type: "C", Count: 7}, {Type: "A", Count: 1}, {Type: "B", Count: 0}},
		},
		{
			name:  "labels only",
			raw:   `{"types":["A","B","C","D","E","F"]}`,
			limit: 5,
			shape: ShapeLabelsOnly,
			want: []model.VulnerabilityType{
				{Type: "A", Count: 100}, {Type: "B", Count: 80}, {Type: "C", Count: 60},
				{Type: "D", Count: 40}, {Type: "E", Count: 20},
			},
		},
		{
			name:  "short labels only",
			raw:   `{"types":["A","B","C"]}`,
			limit: 5,
			shape: ShapeLabelsOnly,
			want:  []model.VulnerabilityType{{Type: "A", Count: 100}, {Type: "B", Count: 80}, {Type: "C", Count: 60}},
		},
		{
			name:  "count map saturates huge counts",
			raw:   `{"A":1e300,"B":5}`,
			limit: 5,
			shape: ShapeCountMap,
			want:  []model.VulnerabilityType{{Type: "A", Count: math.MaxInt}, {Type: "B", Count: 5}},
		},
		{
			name:  "bare list with name fallback",
			raw:   `[{"name":"Race Condition","count":4},{"count":99},{"type":"Double Free","count":11}]`,
			limit: 5,
			shape: ShapeBareList,
			want:  []model.VulnerabilityType{{Type: "Double Free", Count: 11}, {Type: "Race Condition", Count: 4}},
		},
		{
			name:  "count map keeps wire order on ties",
			raw:   `{"Zeta":5,"Alpha":5,"notFound":3,"types":"x","Beta":"n/a","Gamma":8}`,
			limit: 5,
			shape: ShapeCountMap,
			want:  []model.VulnerabilityType{{Type: "Gamma", Count: 8}, {Type: "Zeta", Count: 5}, {Type: "Alpha", Count: 5}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw := json.RawMessage(tt.raw)
			if got := DetectShape(raw); got != tt.shape {
				t.Errorf("DetectShape = %v, want %v", got, tt.shape)
			}
			got := NormalizeVulnerabilityTypes(raw, tt.limit)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("NormalizeVulnerabilityTypes mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestNormalizeVulnerabilityTypes_SortedTruncatedUnique(t *testing.T) {
	raw := json.RawMessage(`{"types":[
		{"type":"A","count":1},{"type":"B","count":50},{"type":"A","count":40},
		{"type":"C","count":30},{"type":"D","count":20}]}`)

	got := NormalizeVulnerabilityTypes(raw, 3)
	want := []model.VulnerabilityType{{Type: "B", Count: 50}, {Type: "A", Count: 40}, {Type: "C", Count: 30}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}

	seen := map[string]bool{}
	for i, e := range got {
		if seen[e.Type] {
			t.Errorf("duplicate label %q", e.Type)
		}
		seen[e.Type] = true
		if i > 0 && got[i-1].Count < e.Count {
			t.Errorf("not sorted descending at %d", i)
		}
	}
}

func TestNormalizeVulnerabilityTypes_Fallback(t *testing.T) {
	inputs := []string{
		``,
		`null`,
		`{}`,
		`[]`,
		`{"notFound":true}`,
		`{"types":[]}`,
		`[{"count":3}]`,
		`{"types":"nope"}`,
		`"just a string"`,
		`{"broken":`,
	}
	want := FallbackVulnerabilityTypes()
	for _, in := range inputs {
		got := NormalizeVulnerabilityTypes(json.RawMessage(in), 5)
		if diff := cmp.Diff(want, got); diff != "" {
			t.Errorf("input %q: fallback mismatch (-want +got):\n%s", in, diff)
		}
	}
}

func TestFallbackVulnerabilityTypes_IsFixed(t *testing.T) {
	got := FallbackVulnerabilityTypes()
	labels := VulnerabilityTypeLabels(got)
	want := []string{"Use-After-Free", "Buffer Overflow", "Type Confusion", "Memory Corruption", "Cross-Site Scripting"}
	if diff := cmp.Diff(want, labels); diff != "" {
		t.Errorf("fallback labels mismatch (-want +got):\n%s", diff)
	}

	got[0].Type = "mutated"
	if FallbackVulnerabilityTypes()[0].Type != "Use-After-Free" {
		t.Error("fallback catalog must not be shared between callers")
	}
}

func TestNormalizeTopComponents(t *testing.T) {
	fromMap := NormalizeTopComponents(json.RawMessage(`{"components":{"V8":3,"Blink":9,"UI":5}}`), 2)
	want := []model.ComponentCount{{Name: "Blink", Count: 9}, {Name: "UI", Count: 5}}
	if diff := cmp.Diff(want, fromMap); diff != "" {
		t.Errorf("object form mismatch (-want +got):\n%s", diff)
	}

	fromList := NormalizeTopComponents(json.RawMessage(`{"components":[{"name":"PDF","count":2}]}`), 0)
	if diff := cmp.Diff([]model.ComponentCount{{Name: "PDF", Count: 2}}, fromList); diff != "" {
		t.Errorf("list form mismatch (-want +got):\n%s", diff)
	}

	if got := NormalizeTopComponents(nil, 5); len(got) != 0 {
		t.Errorf("nil payload = %v, want empty", got)
	}
}
