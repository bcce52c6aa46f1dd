// Package util provides logging, environment, CVSS and formatting helpers shared by the dashboard.
package util

import (
	"strconv"
	"strings"

	gocvss31 "github.com/pandatix/go-cvss/31"
	gocvss40 "github.com/pandatix/go-cvss/40"
)

// NotAvailable is rendered wherever an analysis value is absent.
const NotAvailable = "N/A"

// VectorScore derives the CVSS base score from a vector string such as
// "CVSS:3.1/AV:N/AC:L/PR:N/UI:R/S:U/C:H/I:H/A:H". The second result is false
// when the vector is empty, unknown or malformed.
func VectorScore(vector string) (float64, bool) {
	vector = strings.TrimSpace(vector)
	switch {
	case strings.HasPrefix(vector, "CVSS:3.1"), strings.HasPrefix(vector, "CVSS:3.0"):
		cvss31, err := gocvss31.ParseVector(vector)
		if err != nil {
			return 0, false
		}
		return cvss31.BaseScore(), true
	case strings.HasPrefix(vector, "CVSS:4.0"):
		cvss40, err := gocvss40.ParseVector(vector)
		if err != nil {
			return 0, false
		}
		return cvss40.Score(), true
	default:
		return 0, false
	}
}

// ResolveBaseScore returns the reported score when present and in range,
// otherwise the score computed from the vector.
func ResolveBaseScore(reported *float64, vector string) (float64, bool) {
	if reported != nil && *reported >= 0 && *reported <= 10 {
		return *reported, true
	}
	return VectorScore(vector)
}

// FormatScore renders a base score with one decimal, or N/A.
func FormatScore(score float64, ok bool) string {
	if !ok {
		return NotAvailable
	}
	return strconv.FormatFloat(score, 'f', 1, 64)
}

// SeverityRating returns the CVSS qualitative rating for a base score.
func SeverityRating(score float64, ok bool) string {
	if !ok {
		return NotAvailable
	}
	switch {
	case score == 0:
		return "NONE"
	case score < 4.0:
		return "LOW"
	case score < 7.0:
		return "MEDIUM"
	case score < 9.0:
		return "HIGH"
	default:
		return "CRITICAL"
	}
}

// OrNA returns s, or N/A when s is blank.
func OrNA(s string) string {
	if strings.TrimSpace(s) == "" {
		return NotAvailable
	}
	return s
}
