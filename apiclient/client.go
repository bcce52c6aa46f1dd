package apiclient

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/url"
	"strconv"
	"time"

	"github.com/ciaa/ciaa-dashboard/filters"
	"github.com/ciaa/ciaa-dashboard/model"
	"github.com/ciaa/ciaa-dashboard/util"
	"go.uber.org/zap"
)

// ErrNotFound is returned by single-record lookups when the backend answers 404.
var ErrNotFound = errors.New("not found")

// Client exposes the backend endpoints used by the dashboard. Each method is a single
// call; methods documented with a fallback never return an error.
type Client struct {
	transport *Transport
	logger    *zap.Logger
	now       func() time.Time
}

// NewClient wraps a transport.
func NewClient(transport *Transport, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{transport: transport, logger: logger, now: time.Now}
}

// Transport returns the underlying transport.
func (c *Client) Transport() *Transport {
	return c.transport
}

// Fetch runs a composed query against the endpoint it targets.
func (c *Client) Fetch(ctx context.Context, q filters.Query) (model.IssuePage, error) {
	if q.Kind == filters.KindSearch {
		return c.SearchIssues(ctx, q)
	}
	return c.ListIssues(ctx, q)
}

// ListIssues fetches one page of issues and moves an exact id match to the front.
func (c *Client) ListIssues(ctx context.Context, q filters.Query) (model.IssuePage, error) {
	endpoint := q.Endpoint
	if endpoint == "" {
		endpoint = filters.EndpointIssues
	}
	page, err := c.issuePage(ctx, endpoint, q.Params.Values())
	if err != nil {
		return model.EmptyIssuePage(), err
	}
	page.Items = filters.PromoteExactMatch(page.Items, q)
	return page, nil
}

// SearchIssues runs a search and moves an exact id match to the front. Failures are
// logged and yield an empty page.
func (c *Client) SearchIssues(ctx context.Context, q filters.Query) (model.IssuePage, error) {
	endpoint := q.Endpoint
	if endpoint == "" {
		endpoint = filters.EndpointSearch
	}
	page, err := c.issuePage(ctx, endpoint, q.Params.Values())
	if err != nil {
		if ctx.Err() != nil {
			return model.EmptyIssuePage(), ctx.Err()
		}
		c.logger.Error("error searching issues", zap.Error(err))
		return model.EmptyIssuePage(), nil
	}
	page.Items = filters.PromoteExactMatch(page.Items, q)
	return page, nil
}

func (c *Client) issuePage(ctx context.Context, endpoint string, params url.Values) (model.IssuePage, error) {
	res, err := c.transport.Get(ctx, endpoint, params)
	if err != nil {
		return model.EmptyIssuePage(), err
	}
	page := model.EmptyIssuePage()
	if res.NotFound {
		return page, nil
	}
	if err := res.Decode(&page); err != nil {
		return model.EmptyIssuePage(), err
	}
	if page.Items == nil {
		page.Items = []model.IssueRecord{}
	}
	if page.Pages < 1 {
		page.Pages = 1
	}
	return page, nil
}

// GetIssue fetches a single issue. A 404 yields ErrNotFound.
func (c *Client) GetIssue(ctx context.Context, id string) (model.IssueRecord, error) {
	var issue model.IssueRecord
	res, err := c.transport.Get(ctx, "/issues/"+url.PathEscape(id), nil)
	if err != nil {
		return issue, err
	}
	if res.NotFound {
		return issue, fmt.Errorf("issue %s: %w", id, ErrNotFound)
	}
	if err := res.Decode(&issue); err != nil {
		return issue, err
	}
	return issue, nil
}

// GetAnalysis fetches the analysis for an issue. No analysis yields (nil, nil).
func (c *Client) GetAnalysis(ctx context.Context, issueID string) (*model.AnalysisRecord, error) {
	res, err := c.transport.Get(ctx, "/analysis/"+url.PathEscape(issueID), nil)
	if err != nil {
		return nil, err
	}
	if res.NotFound || len(res.Body) == 0 || string(res.Body) == "null" {
		return nil, nil
	}
	var analysis model.AnalysisRecord
	if err := res.Decode(&analysis); err != nil {
		return nil, err
	}
	return &analysis, nil
}

// IssuesBySeverity lists issues of one severity.
func (c *Client) IssuesBySeverity(ctx context.Context, severity string, limit int) (model.IssuePage, error) {
	return c.issuePage(ctx, filters.EndpointIssues, firstPage(limit, "severity", severity))
}

// IssuesByComponent lists issues tagged with one component.
func (c *Client) IssuesByComponent(ctx context.Context, component string, limit int) (model.IssuePage, error) {
	return c.issuePage(ctx, filters.EndpointIssues, firstPage(limit, "component", component))
}

// IssuesByVulnerabilityType searches issues by root cause classification.
func (c *Client) IssuesByVulnerabilityType(ctx context.Context, vulnType string, limit int) (model.IssuePage, error) {
	params := firstPage(limit, "query", vulnType)
	params.Del("page")
	params.Set("type", string(filters.SearchVulnerability))
	return c.issuePage(ctx, filters.EndpointSearch, params)
}

// HighCVSSIssues lists issues whose CVSS base score is at least minScore.
func (c *Client) HighCVSSIssues(ctx context.Context, minScore float64, limit int) (model.IssuePage, error) {
	params := url.Values{}
	params.Set("min_cvss", strconv.FormatFloat(minScore, 'f', -1, 64))
	params.Set("limit", strconv.Itoa(limitOrDefault(limit, filters.DefaultLimit)))
	return c.issuePage(ctx, filters.EndpointIssues, params)
}

// Statistics fetches the aggregate counters. Errors yield zeroed statistics; a 404 yields
// statistics without a total.
func (c *Client) Statistics(ctx context.Context) model.Statistics {
	zero := 0
	res, err := c.transport.Get(ctx, "/statistics", nil)
	if err != nil {
		c.logger.Error("error fetching statistics", zap.Error(err))
		return model.Statistics{TotalIssues: &zero}
	}
	if res.NotFound {
		return model.Statistics{}
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(res.Body, &fields); err != nil {
		c.logger.Error("error decoding statistics", zap.Error(err))
		return model.Statistics{TotalIssues: &zero}
	}
	stats := model.Statistics{
		CriticalIssues:      intField(fields, "criticalIssues"),
		HighIssues:          intField(fields, "highIssues"),
		MediumIssues:        intField(fields, "mediumIssues"),
		LowIssues:           intField(fields, "lowIssues"),
		RecentlyAddedIssues: intField(fields, "recentlyAddedIssues"),
		CVECount:            intField(fields, "cveCount"),
		FixedCount:          intField(fields, "fixedCount"),
	}
	if total, ok := numberValue(fields["totalIssues"]); ok {
		stats.TotalIssues = &total
	}
	return stats
}

// CVSSStatistics fetches the backend's CVSS score breakdown as-is. Errors and non-object
// payloads yield an empty map.
func (c *Client) CVSSStatistics(ctx context.Context) map[string]any {
	out := map[string]any{}
	res, err := c.transport.Get(ctx, "/cvss-statistics", nil)
	if err != nil {
		c.logger.Error("error fetching CVSS statistics", zap.Error(err))
		return out
	}
	if res.NotFound {
		return out
	}
	if err := json.Unmarshal(res.Body, &out); err != nil {
		c.logger.Error("error decoding CVSS statistics", zap.Error(err))
		return map[string]any{}
	}
	return out
}

// TopComponents returns the most affected components, highest count first. Errors yield
// an empty list.
func (c *Client) TopComponents(ctx context.Context, limit int) []model.ComponentCount {
	limit = limitOrDefault(limit, 10)
	res, err := c.transport.Get(ctx, "/top-vulnerable-components", url.Values{"limit": {strconv.Itoa(limit)}})
	if err != nil {
		c.logger.Error("error fetching top components", zap.Error(err))
		return []model.ComponentCount{}
	}
	return filters.NormalizeTopComponents(res.Body, limit)
}

// TopVulnerabilityTypes returns the chart entries; see filters.NormalizeVulnerabilityTypes.
func (c *Client) TopVulnerabilityTypes(ctx context.Context, limit int) []model.VulnerabilityType {
	limit = limitOrDefault(limit, filters.DefaultVulnerabilityTypeLimit)
	res, err := c.transport.Get(ctx, "/top-vulnerability-types", url.Values{"limit": {strconv.Itoa(limit)}})
	if err != nil {
		c.logger.Error("error fetching vulnerability types, using fallback", zap.Error(err))
		return filters.FallbackVulnerabilityTypes()
	}
	return filters.NormalizeVulnerabilityTypes(res.Body, limit)
}

// RecentIssues returns the newest public CVE issues. When the backend cannot sort by
// public time it retries once sorted by creation time, and finally falls back to a fixed
// sample. Errors yield an empty list.
func (c *Client) RecentIssues(ctx context.Context, limit int) []model.IssueRecord {
	limit = limitOrDefault(limit, 5)

	primary := firstPage(limit, "sort_by", "public_time")
	primary.Set("sort_order", "desc")
	primary.Set("has_cve", "true")
	page, err := c.issuePage(ctx, filters.EndpointIssues, primary)
	if err != nil {
		c.logger.Error("error fetching recent issues", zap.Error(err))
		return []model.IssueRecord{}
	}
	if len(page.Items) > 0 {
		return page.Items
	}

	c.logger.Info("falling back to create_time for sorting recent issues")
	secondary := firstPage(limit, "sort_by", "create_time")
	secondary.Set("sort_order", "desc")
	page, err = c.issuePage(ctx, filters.EndpointIssues, secondary)
	if err != nil {
		c.logger.Error("error fetching recent issues", zap.Error(err))
		return []model.IssueRecord{}
	}
	if len(page.Items) > 0 {
		return page.Items
	}

	c.logger.Info("falling back to sample data for recent issues")
	return SampleRecentIssues(c.now())
}

// Totals substituted when the backend cannot count issues.
const (
	FallbackCVEIssueCount   = 156
	FallbackFixedIssueCount = 723
)

// CVEIssueCount returns the number of issues with a CVE id.
func (c *Client) CVEIssueCount(ctx context.Context) int {
	return c.countOrFallback(ctx, firstPage(filters.DefaultLimit, "has_cve", "true"), FallbackCVEIssueCount)
}

// StatusIssueCount returns the number of issues in one status.
func (c *Client) StatusIssueCount(ctx context.Context, status string) int {
	return c.countOrFallback(ctx, firstPage(filters.DefaultLimit, "status", status), FallbackFixedIssueCount)
}

func (c *Client) countOrFallback(ctx context.Context, params url.Values, fallback int) int {
	page, err := c.issuePage(ctx, filters.EndpointIssues, params)
	if err != nil {
		c.logger.Error("error counting issues", zap.Error(err), zap.Int("fallback", fallback))
		return fallback
	}
	if len(page.Items) == 0 {
		return fallback
	}
	return page.Total
}

// SampleRecentIssues is the fixed recent-issues sample, dated relative to now.
func SampleRecentIssues(now time.Time) []model.IssueRecord {
	daysAgo := func(n int) string {
		return now.Add(-time.Duration(n) * 24 * time.Hour).UTC().Format("2006-01-02T15:04:05.000Z")
	}
	tags := func(names ...string) []model.ComponentTag {
		out := make([]model.ComponentTag, 0, len(names))
		for _, n := range names {
			out = append(out, model.ComponentTag{Tag: n})
		}
		return out
	}
	return []model.IssueRecord{
		{ID: 1, IssueID: 1234567, CveID: "CVE-2023-1234", Title: "Use-after-free vulnerability in Blink rendering engine",
			Severity: "Critical", PublicTime: daysAgo(5), ComponentTags: tags("Blink", "Rendering")},
		{ID: 2, IssueID: 1234568, CveID: "CVE-2023-5678", Title: "Buffer overflow in V8 JavaScript engine",
			Severity: "High", PublicTime: daysAgo(10), ComponentTags: tags("V8", "JavaScript")},
		{ID: 3, IssueID: 1234569, Title: "Type confusion in WebRTC implementation",
			Severity: "Medium", PublicTime: daysAgo(15), ComponentTags: tags("WebRTC", "Media")},
		{ID: 4, IssueID: 1234570, CveID: "CVE-2023-9012", Title: "Cross-site scripting vulnerability in Chrome Extensions",
			Severity: "High", PublicTime: daysAgo(20), ComponentTags: tags("Extensions", "Security")},
		{ID: 5, IssueID: 1234571, Title: "Memory corruption in PDF renderer",
			Severity: "Medium", PublicTime: daysAgo(25), ComponentTags: tags("PDF", "Rendering")},
	}
}

func firstPage(limit int, key, value string) url.Values {
	params := url.Values{}
	params.Set("page", "1")
	params.Set("limit", strconv.Itoa(limitOrDefault(limit, filters.DefaultLimit)))
	params.Set(key, value)
	return params
}

func limitOrDefault(limit, def int) int {
	if limit <= 0 {
		return def
	}
	return limit
}

func intField(fields map[string]json.RawMessage, key string) int {
	n, _ := numberValue(fields[key])
	return n
}

// numberValue accepts JSON numbers only; strings, null and missing values report false.
func numberValue(raw json.RawMessage) (int, bool) {
	if len(raw) == 0 {
		return 0, false
	}
	var f float64
	if err := json.Unmarshal(raw, &f); err != nil || math.IsNaN(f) {
		return 0, false
	}
	return util.ClampInt(f), true
}
