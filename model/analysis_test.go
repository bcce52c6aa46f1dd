package model

import (
	"encoding/json"
	"testing"
)

func TestScore_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		want    *float64
		wantErr bool
	}{
		{"number", `{"cvss_base_score":7.5}`, floatPtr(7.5), false},
		{"string", `{"cvss_base_score":"8.8"}`, floatPtr(8.8), false},
		{"empty string", `{"cvss_base_score":""}`, nil, false},
		{"null", `{"cvss_base_score":null}`, nil, false},
		{"absent", `{}`, nil, false},
		{"garbage", `{"cvss_base_score":"high"}`, nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var a AnalysisRecord
			err := json.Unmarshal([]byte(tt.body), &a)
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			got := a.CVSSBaseScore.Value()
			switch {
			case tt.want == nil && got != nil:
				t.Errorf("score = %v, want absent", *got)
			case tt.want != nil && (got == nil || *got != *tt.want):
				t.Errorf("score = %v, want %v", got, *tt.want)
			}
		})
	}
}

func TestClassifySeverity(t *testing.T) {
	tests := map[string]string{
		"Critical": SeverityCritical,
		"HIGH":     SeverityHigh,
		" medium ": SeverityMedium,
		"low":      SeverityLow,
		"S2":       SeverityNeutral,
		"":         SeverityNeutral,
	}
	for in, want := range tests {
		if got := ClassifySeverity(in); got != want {
			t.Errorf("ClassifySeverity(%q) = %q, want %q", in, got, want)
		}
	}
}

func floatPtr(f float64) *float64 { return &f }
