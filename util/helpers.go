package util

import (
	"math"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/Masterminds/semver/v3"
)

// GetEnvDefault is a convenience function for handling env vars
func GetEnvDefault(key, defVal string) string {
	val, ex := os.LookupEnv(key) // get the env var
	if !ex || val == "" {        // not found or blank return default
		return defVal
	}
	return val // return value for env var
}

// ClampInt converts f to an int, saturating at the int range. NaN becomes 0.
func ClampInt(f float64) int {
	switch {
	case math.IsNaN(f):
		return 0
	case f >= math.MaxInt:
		return math.MaxInt
	case f <= math.MinInt:
		return math.MinInt
	default:
		return int(f)
	}
}

// SplitCSV splits a comma separated value into trimmed, non-empty parts.
func SplitCSV(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

var dateLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// FormatDate renders a backend timestamp as "Jan 2, 2006". Blank input gives N/A;
// unparseable input is returned unchanged.
func FormatDate(value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return NotAvailable
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t.Format("Jan 2, 2006")
		}
	}
	return value
}

// milestoneVersion parses milestone labels such as "120", "M120" or "120.0.1".
func milestoneVersion(label string) (*semver.Version, bool) {
	clean := strings.TrimPrefix(strings.TrimSpace(label), "M")
	clean = strings.TrimPrefix(clean, "m")
	v, err := semver.NewVersion(clean)
	if err != nil {
		return nil, false
	}
	return v, true
}

// SortMilestones orders milestone labels newest first by version. Labels that are
// not versions follow, in lexicographic order.
func SortMilestones(labels []string) []string {
	out := append([]string(nil), labels...)
	sort.SliceStable(out, func(i, j int) bool {
		vi, okI := milestoneVersion(out[i])
		vj, okJ := milestoneVersion(out[j])
		switch {
		case okI && okJ:
			if vi.Equal(vj) {
				return out[i] < out[j]
			}
			return vi.GreaterThan(vj)
		case okI != okJ:
			return okI
		default:
			return out[i] < out[j]
		}
	})
	return out
}
