package util

import (
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestSortMilestones(t *testing.T) {
	got := SortMilestones([]string{"M118", "beta", "120", "119.0.1", "alpha", "M120"})
	want := []string{"120", "M120", "119.0.1", "M118", "alpha", "beta"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("SortMilestones mismatch (-want +got):\n%s", diff)
	}
}

func TestFormatDate(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"", "N/A"},
		{"2023-05-15T10:30:00Z", "May 15, 2023"},
		{"2023-05-15", "May 15, 2023"},
		{"yesterday", "yesterday"},
	}
	for _, tt := range tests {
		if got := FormatDate(tt.in); got != tt.want {
			t.Errorf("FormatDate(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestSplitCSV(t *testing.T) {
	got := SplitCSV(" High, ,Critical,")
	if diff := cmp.Diff([]string{"High", "Critical"}, got); diff != "" {
		t.Errorf("SplitCSV mismatch (-want +got):\n%s", diff)
	}
	if got := SplitCSV(""); got != nil {
		t.Errorf("SplitCSV(\"\") = %v, want nil", got)
	}
}

func TestClampInt(t *testing.T) {
	tests := []struct {
		in   float64
		want int
	}{
		{42.9, 42},
		{-3, -3},
		{1e300, math.MaxInt},
		{-1e300, math.MinInt},
		{math.Inf(1), math.MaxInt},
		{math.NaN(), 0},
	}
	for _, tt := range tests {
		if got := ClampInt(tt.in); got != tt.want {
			t.Errorf("ClampInt(%v) = %d, want %d", tt.in, got, tt.want)
		}
	}
}
