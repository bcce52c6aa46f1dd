// Package issues defines the issue backend events consumed from Kafka.
package issues

import "time"

// Event types that change the filter catalog.
const (
	EventIssueCreated    = "issue.created"
	EventIssueUpdated    = "issue.updated"
	EventAnalysisCreated = "analysis.created"
	EventCatalogRefresh  = "catalog.refresh"
)

// IssueEvent is published by the issue backend whenever issue or analysis data changes.
type IssueEvent struct {
	EventType     string    `json:"event_type"`
	EventID       string    `json:"event_id"`
	EventTime     time.Time `json:"event_time"`
	SchemaVersion string    `json:"schema_version"`

	// Issue the event refers to; zero for catalog-wide events
	IssueID int64 `json:"issue_id,omitempty"`
}

// RefreshesCatalog reports whether the event type invalidates the filter catalog.
func (e IssueEvent) RefreshesCatalog() bool {
	switch e.EventType {
	case EventIssueCreated, EventIssueUpdated, EventAnalysisCreated, EventCatalogRefresh:
		return true
	default:
		return false
	}
}
