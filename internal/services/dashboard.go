// Package services assembles the dashboard pages from the backend client and implements
// the handlers that event consumers delegate to.
package services

import (
	"context"

	"github.com/ciaa/ciaa-dashboard/filters"
	"github.com/ciaa/ciaa-dashboard/model"
	"go.uber.org/zap"
)

// MockDataWarning accompanies the sample dashboard.
const MockDataWarning = "Warning: Using mock data. Backend API may not be fully implemented."

// dashboardSize is the number of entries in each dashboard chart and list.
const dashboardSize = 5

// DashboardSource is the part of the backend client the home page needs.
type DashboardSource interface {
	Statistics(ctx context.Context) model.Statistics
	CVEIssueCount(ctx context.Context) int
	StatusIssueCount(ctx context.Context, status string) int
	TopComponents(ctx context.Context, limit int) []model.ComponentCount
	RecentIssues(ctx context.Context, limit int) []model.IssueRecord
	TopVulnerabilityTypes(ctx context.Context, limit int) []model.VulnerabilityType
}

// DashboardService builds the home page.
type DashboardService struct {
	Source DashboardSource
	Logger *zap.Logger
}

// Dashboard gathers statistics, counts, charts and recent issues. Counts missing from the
// statistics are fetched separately. When the backend has no numeric total or no top
// components the sample dashboard is returned with MockDataWarning.
func (s *DashboardService) Dashboard(ctx context.Context) model.Dashboard {
	stats := s.Source.Statistics(ctx)

	cveCount := stats.CVECount
	if cveCount == 0 {
		cveCount = s.Source.CVEIssueCount(ctx)
	}
	fixedCount := stats.FixedCount
	if fixedCount == 0 {
		fixedCount = s.Source.StatusIssueCount(ctx, "Fixed")
	}

	topComponents := s.Source.TopComponents(ctx, dashboardSize)
	recentIssues := s.Source.RecentIssues(ctx, dashboardSize)

	recentCount := stats.RecentlyAddedIssues
	if recentCount == 0 {
		recentCount = len(recentIssues)
	}

	topTypes := s.Source.TopVulnerabilityTypes(ctx, dashboardSize)
	if len(topTypes) == 0 {
		topTypes = filters.FallbackVulnerabilityTypes()
	}

	if stats.TotalIssues == nil || len(topComponents) == 0 {
		s.logger().Warn("invalid data received from API, using mock data",
			zap.Bool("has_total", stats.TotalIssues != nil),
			zap.Int("top_components", len(topComponents)))
		return MockDashboard()
	}

	return model.Dashboard{
		TotalIssues:           *stats.TotalIssues,
		CVEIssues:             cveCount,
		FixedIssues:           fixedCount,
		RecentlyAddedIssues:   recentCount,
		TopComponents:         topComponents,
		TopVulnerabilityTypes: topTypes,
		RecentIssues:          nonNil(recentIssues),
	}
}

func (s *DashboardService) logger() *zap.Logger {
	if s.Logger == nil {
		return zap.NewNop()
	}
	return s.Logger
}

// MockDashboard is the sample home page shown when the backend lacks the data.
func MockDashboard() model.Dashboard {
	issue := func(id, issueID int64, title, severity, status, component, cve, published string) model.IssueRecord {
		return model.IssueRecord{
			ID:            id,
			IssueID:       issueID,
			Title:         title,
			Severity:      severity,
			Status:        status,
			CveID:         cve,
			PublicTime:    published,
			ComponentTags: []model.ComponentTag{{Tag: component}},
		}
	}
	return model.Dashboard{
		TotalIssues:         1245,
		CVEIssues:           156,
		FixedIssues:         723,
		RecentlyAddedIssues: 24,
		TopComponents: []model.ComponentCount{
			{Name: "Blink", Count: 187},
			{Name: "V8", Count: 156},
			{Name: "UI", Count: 124},
			{Name: "Security", Count: 98},
			{Name: "Network", Count: 76},
		},
		TopVulnerabilityTypes: filters.FallbackVulnerabilityTypes(),
		RecentIssues: []model.IssueRecord{
			issue(1, 1234567, "Use-after-free in V8", "High", "Fixed", "V8", "CVE-2023-1234", "2023-05-15T10:30:00Z"),
			issue(2, 1234568, "Buffer overflow in PDF renderer", "Critical", "Fixed", "PDF", "CVE-2023-5678", "2023-05-14T14:45:00Z"),
			issue(3, 1234569, "Type confusion in JavaScript engine", "High", "Assigned", "JavaScript", "CVE-2023-9012", "2023-05-13T09:15:00Z"),
			issue(4, 1234570, "Cross-site scripting in Extensions", "Medium", "New", "Extensions", "", "2023-05-12T16:20:00Z"),
			issue(5, 1234571, "Memory corruption in Media", "High", "Verified", "Media", "CVE-2023-3456", "2023-05-11T11:10:00Z"),
		},
		Warning: MockDataWarning,
	}
}

func nonNil(items []model.IssueRecord) []model.IssueRecord {
	if items == nil {
		return []model.IssueRecord{}
	}
	return items
}
