// Package model - AnalysisRecord holds the generated security write-up for an issue.
package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// AnalysisRecord is the auto-generated analysis attached 1:1 to an issue through
// the shared issue identifier. Every field is optional.
type AnalysisRecord struct {
	IssueID               int64    `json:"issue_id,omitempty"`
	OverviewTitle         string   `json:"overview_title,omitempty"`
	OverviewDescription   string   `json:"overview_description,omitempty"`
	CVSSBaseScore         *Score   `json:"cvss_base_score,omitempty"`
	CVSSVectorString      string   `json:"cvss_vector_string,omitempty"`
	CVSSAttackVector      string   `json:"cvss_attack_vector,omitempty"`
	CVSSPrivilegeRequired string   `json:"cvss_privilege_required,omitempty"`
	CVSSUserInteraction   string   `json:"cvss_user_interaction,omitempty"`
	RootCauseLocation     string   `json:"root_cause_location,omitempty"`
	RootCauseSnippet      string   `json:"root_cause_snippet,omitempty"`
	RootCauseAnalysis     string   `json:"root_cause_analysis,omitempty"`
	RootCauseTag          string   `json:"root_cause_tag,omitempty"`
	PatchCommitID         string   `json:"patch_commit_id,omitempty"`
	PatchCodeChange       string   `json:"patch_code_change,omitempty"`
	UpdatedAt             string   `json:"updated_at,omitempty"`
}

// Score is a CVSS base score. The backend sends it either as a number or as a numeric
// string; an empty string or null means no score.
type Score float64

// UnmarshalJSON accepts 8.8, "8.8", "" and null.
func (s *Score) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		return nil
	}
	var f float64
	if err := json.Unmarshal(data, &f); err == nil {
		*s = Score(f)
		return nil
	}
	var text string
	if err := json.Unmarshal(data, &text); err != nil {
		return fmt.Errorf("invalid CVSS score %s", data)
	}
	if text = strings.TrimSpace(text); text == "" {
		return nil
	}
	f, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return fmt.Errorf("invalid CVSS score %q", text)
	}
	*s = Score(f)
	return nil
}

// Value returns the score as a *float64, nil when absent.
func (s *Score) Value() *float64 {
	if s == nil {
		return nil
	}
	f := float64(*s)
	return &f
}
