// Package model defines the issue, analysis and dashboard records exchanged with the
// upstream issue backend and returned to the dashboard frontend.
package model

import "strings"

// Severity buckets understood by the dashboard. Anything else renders as neutral.
const (
	SeverityCritical = "critical"
	SeverityHigh     = "high"
	SeverityMedium   = "medium"
	SeverityLow      = "low"
	SeverityNeutral  = "neutral"
)

// ComponentTag is a component label attached to an issue. Tags may carry a
// ">"-delimited hierarchy such as "UI>Browser>Accessibility".
type ComponentTag struct {
	Tag string `json:"tag"`
}

// OSValue is an operating system an issue was reported against.
type OSValue struct {
	Value string `json:"value"`
}

// MilestoneValue is a release milestone attached to an issue.
type MilestoneValue struct {
	Value string `json:"value"`
}

// IssueRecord is one tracked security defect as returned by the issue backend.
// Records are immutable once fetched.
type IssueRecord struct {
	ID              int64            `json:"id"`
	IssueID         int64            `json:"issue_id"`
	Title           string           `json:"title"`
	Description     string           `json:"description,omitempty"`
	Severity        string           `json:"severity,omitempty"`
	Priority        string           `json:"priority,omitempty"`
	Status          string           `json:"status,omitempty"`
	CveID           string           `json:"cve_id,omitempty"`
	FoundIn         string           `json:"found_in,omitempty"`
	VRPReward       string           `json:"vrp_reward,omitempty"`
	IssuesURL       string           `json:"issues_url,omitempty"`
	ComponentTags   []ComponentTag   `json:"component_tags,omitempty"`
	OSValues        []OSValue        `json:"os_values,omitempty"`
	MilestoneValues []MilestoneValue `json:"milestone_values,omitempty"`
	CreateTime      string           `json:"create_time,omitempty"`
	PublicTime      string           `json:"public_time,omitempty"`
	PublishTime     string           `json:"publish_time,omitempty"`
	ModifiedTime    string           `json:"modified_time,omitempty"`
	LastUpdatedTime string           `json:"last_updated_time,omitempty"`
}

// SeverityLevel classifies the record's severity case-insensitively.
func (i IssueRecord) SeverityLevel() string {
	return ClassifySeverity(i.Severity)
}

// Tags returns the plain component tag labels.
func (i IssueRecord) Tags() []string {
	tags := make([]string, 0, len(i.ComponentTags))
	for _, t := range i.ComponentTags {
		tags = append(tags, t.Tag)
	}
	return tags
}

// ClassifySeverity maps a free-form severity onto one of the known buckets.
func ClassifySeverity(severity string) string {
	switch strings.ToLower(strings.TrimSpace(severity)) {
	case SeverityCritical:
		return SeverityCritical
	case SeverityHigh:
		return SeverityHigh
	case SeverityMedium:
		return SeverityMedium
	case SeverityLow:
		return SeverityLow
	default:
		return SeverityNeutral
	}
}

// IssuePage is one page of a listing or search response.
type IssuePage struct {
	Items []IssueRecord `json:"items"`
	Total int           `json:"total"`
	Pages int           `json:"pages"`
}

// EmptyIssuePage is the page substituted when a search fails.
func EmptyIssuePage() IssuePage {
	return IssuePage{Items: []IssueRecord{}, Total: 0, Pages: 1}
}
