// Package model - API types for the dashboard pages and filter catalogs
package model

// VulnerabilityType is one entry of the vulnerability-type chart and filter list.
type VulnerabilityType struct {
	Type  string `json:"type"`
	Count int    `json:"count"`
}

// ComponentCount is one row of the "top vulnerable components" chart.
type ComponentCount struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// Statistics is the aggregate returned by the backend statistics endpoint.
// TotalIssues is a pointer so an absent value can be told apart from zero.
type Statistics struct {
	TotalIssues         *int `json:"totalIssues,omitempty"`
	CriticalIssues      int  `json:"criticalIssues"`
	HighIssues          int  `json:"highIssues"`
	MediumIssues        int  `json:"mediumIssues"`
	LowIssues           int  `json:"lowIssues"`
	RecentlyAddedIssues int  `json:"recentlyAddedIssues"`
	CVECount            int  `json:"cveCount,omitempty"`
	FixedCount          int  `json:"fixedCount,omitempty"`
}

// Dashboard is the assembled home page payload.
type Dashboard struct {
	TotalIssues           int                 `json:"totalIssues"`
	CVEIssues             int                 `json:"cveIssues"`
	FixedIssues           int                 `json:"fixedIssues"`
	RecentlyAddedIssues   int                 `json:"recentlyAddedIssues"`
	TopComponents         []ComponentCount    `json:"topComponents"`
	TopVulnerabilityTypes []VulnerabilityType `json:"topVulnerabilityTypes"`
	RecentIssues          []IssueRecord       `json:"recentIssues"`
	Warning               string              `json:"warning,omitempty"`
}

// FilterOptions is the read-only option catalog used by the filter panel.
type FilterOptions struct {
	Severities         []string            `json:"severities"`
	Priorities         []string            `json:"priorities"`
	Statuses           []string            `json:"statuses"`
	Components         []string            `json:"components"`
	OS                 []string            `json:"os"`
	Milestones         []string            `json:"milestones"`
	VulnerabilityTypes []VulnerabilityType `json:"vulnerability_types"`
}

// IssueDetail pairs an issue with its analysis. Analysis is nil when none exists.
type IssueDetail struct {
	Issue              IssueRecord   `json:"issue"`
	SeverityLevel      string        `json:"severity_level"`
	PublishedDisplay   string        `json:"published_display"`
	LastUpdatedDisplay string        `json:"last_updated_display"`
	Analysis           *AnalysisView `json:"analysis"`
}

// AnalysisView is an AnalysisRecord prepared for display: absent values render as "N/A".
type AnalysisView struct {
	AnalysisRecord
	BaseScoreDisplay string `json:"cvss_base_score_display"`
	SeverityRating   string `json:"severity_rating"`
	UpdatedDisplay   string `json:"updated_display"`
}
