package graphql

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/ciaa/ciaa-dashboard/apiclient"
	"github.com/ciaa/ciaa-dashboard/catalog"
	"github.com/ciaa/ciaa-dashboard/filters"
	"github.com/ciaa/ciaa-dashboard/internal/services"
	"github.com/ciaa/ciaa-dashboard/model"
	"github.com/google/go-cmp/cmp"
	"github.com/graphql-go/graphql"
	"go.uber.org/zap"
)

type fakeBackend struct {
	lastQuery filters.Query
	analysis  *model.AnalysisRecord
}

func (f *fakeBackend) Fetch(_ context.Context, q filters.Query) (model.IssuePage, error) {
	f.lastQuery = q
	return model.IssuePage{Items: []model.IssueRecord{{ID: 1, IssueID: 7, Title: "UAF in V8"}}, Total: 1, Pages: 1}, nil
}

func (f *fakeBackend) IssuesBySeverity(_ context.Context, severity string, _ int) (model.IssuePage, error) {
	return model.IssuePage{Items: []model.IssueRecord{{IssueID: 1, Severity: severity}}, Total: 1, Pages: 1}, nil
}

func (f *fakeBackend) IssuesByComponent(context.Context, string, int) (model.IssuePage, error) {
	return model.EmptyIssuePage(), nil
}

func (f *fakeBackend) IssuesByVulnerabilityType(context.Context, string, int) (model.IssuePage, error) {
	return model.EmptyIssuePage(), nil
}

func (f *fakeBackend) HighCVSSIssues(context.Context, float64, int) (model.IssuePage, error) {
	return model.EmptyIssuePage(), nil
}

func (f *fakeBackend) TopVulnerabilityTypes(_ context.Context, limit int) []model.VulnerabilityType {
	return filters.FallbackVulnerabilityTypes()[:limit]
}

func (f *fakeBackend) GetIssue(_ context.Context, id string) (model.IssueRecord, error) {
	if id != "7" {
		return model.IssueRecord{}, apiclient.ErrNotFound
	}
	return model.IssueRecord{IssueID: 7, Title: "UAF in V8", Severity: "Critical"}, nil
}

func (f *fakeBackend) GetAnalysis(context.Context, string) (*model.AnalysisRecord, error) {
	return f.analysis, nil
}

type fakeDashboard struct{}

func (fakeDashboard) Dashboard(context.Context) model.Dashboard {
	return services.MockDashboard()
}

type fakeCatalogSource struct{}

func (fakeCatalogSource) ComponentTags(context.Context) ([]string, error) {
	return []string{"Blink>DOM", "Blink>CSS", "Internals"}, nil
}

func (fakeCatalogSource) OSValues(context.Context) ([]string, error) { return nil, nil }

func (fakeCatalogSource) MilestoneValues(context.Context) ([]string, error) { return nil, nil }

func (fakeCatalogSource) VulnerabilityTypes(context.Context) ([]model.VulnerabilityType, error) {
	return nil, nil
}

func newTestSchema(t *testing.T, backend *fakeBackend) graphql.Schema {
	t.Helper()
	cat := catalog.New(fakeCatalogSource{}, zap.NewNop())
	if err := cat.Refresh(context.Background()); err != nil {
		t.Fatal(err)
	}
	schema, err := CreateSchema(Deps{
		Issues:    backend,
		IssueSvc:  &services.IssueService{Source: backend, Logger: zap.NewNop()},
		Dashboard: fakeDashboard{},
		Catalog:   cat,
	})
	if err != nil {
		t.Fatalf("CreateSchema returned error: %v", err)
	}
	return schema
}

// run executes query and decodes the data into out.
func run(t *testing.T, schema graphql.Schema, query string, out any) []string {
	t.Helper()
	result := graphql.Do(graphql.Params{Schema: schema, RequestString: query, Context: context.Background()})
	var errs []string
	for _, e := range result.Errors {
		errs = append(errs, e.Message)
	}
	data, err := json.Marshal(result.Data)
	if err != nil {
		t.Fatal(err)
	}
	if err := json.Unmarshal(data, out); err != nil {
		t.Fatal(err)
	}
	return errs
}

func TestSchema_IssuesComposesQuery(t *testing.T) {
	backend := &fakeBackend{}
	schema := newTestSchema(t, backend)

	var data struct {
		Issues struct {
			Total int `json:"total"`
			Items []struct {
				Title string `json:"title"`
			} `json:"items"`
		} `json:"issues"`
	}
	errs := run(t, schema, `{ issues(search: "v8", type: "component", severity: ["High"], page: 2) { total items { title } } }`, &data)
	if len(errs) > 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
	if data.Issues.Total != 1 || data.Issues.Items[0].Title != "UAF in V8" {
		t.Errorf("issues = %+v", data.Issues)
	}

	want := filters.Params{"query": "v8", "type": "component", "severity": "High", "page": "2", "limit": "10"}
	if diff := cmp.Diff(want, backend.lastQuery.Params); diff != "" {
		t.Errorf("params mismatch (-want +got):\n%s", diff)
	}
}

func TestSchema_IssuesRejectsBadType(t *testing.T) {
	schema := newTestSchema(t, &fakeBackend{})
	var data map[string]any
	if errs := run(t, schema, `{ issues(type: "bogus") { total } }`, &data); len(errs) == 0 {
		t.Error("expected an error for an unknown search type")
	}
}

func TestSchema_IssueDetail(t *testing.T) {
	score := model.Score(6.1)
	backend := &fakeBackend{analysis: &model.AnalysisRecord{IssueID: 7, CVSSBaseScore: &score}}
	schema := newTestSchema(t, backend)

	var data struct {
		Issue struct {
			SeverityLevel string `json:"severity_level"`
			Analysis      struct {
				Display      string `json:"cvss_base_score_display"`
				Rating       string `json:"severity_rating"`
				RootCauseTag string `json:"root_cause_tag"`
			} `json:"analysis"`
		} `json:"issue"`
	}
	errs := run(t, schema, `{ issue(id: "7") { severity_level analysis { cvss_base_score_display severity_rating root_cause_tag } } }`, &data)
	if len(errs) > 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
	if data.Issue.SeverityLevel != "critical" {
		t.Errorf("severity_level = %q, want critical", data.Issue.SeverityLevel)
	}
	if data.Issue.Analysis.Display != "6.1" || data.Issue.Analysis.Rating != "MEDIUM" || data.Issue.Analysis.RootCauseTag != "N/A" {
		t.Errorf("analysis = %+v", data.Issue.Analysis)
	}
}

func TestSchema_IssueNotFoundMessage(t *testing.T) {
	schema := newTestSchema(t, &fakeBackend{})
	var data map[string]any
	errs := run(t, schema, `{ issue(id: "8") { severity_level } }`, &data)
	if diff := cmp.Diff([]string{services.IssueLoadFailed}, errs); diff != "" {
		t.Errorf("errors mismatch (-want +got):\n%s", diff)
	}
}

func TestSchema_AnalysisMissingIsNull(t *testing.T) {
	schema := newTestSchema(t, &fakeBackend{})
	var data struct {
		Analysis *map[string]any `json:"analysis"`
	}
	errs := run(t, schema, `{ analysis(issue_id: "7") { severity_rating } }`, &data)
	if len(errs) > 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
	if data.Analysis != nil {
		t.Errorf("analysis = %v, want null", *data.Analysis)
	}
}

func TestSchema_DashboardAndTypes(t *testing.T) {
	schema := newTestSchema(t, &fakeBackend{})
	var data struct {
		Dashboard struct {
			TotalIssues   int    `json:"totalIssues"`
			Warning       string `json:"warning"`
			TopComponents []struct {
				Name string `json:"name"`
			} `json:"topComponents"`
		} `json:"dashboard"`
		TopVulnerabilityTypes []model.VulnerabilityType `json:"topVulnerabilityTypes"`
	}
	errs := run(t, schema, `{ dashboard { totalIssues warning topComponents { name } } topVulnerabilityTypes(limit: 3) { type count } }`, &data)
	if len(errs) > 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
	if data.Dashboard.TotalIssues != 1245 || data.Dashboard.Warning != services.MockDataWarning {
		t.Errorf("dashboard = %+v", data.Dashboard)
	}
	if len(data.Dashboard.TopComponents) != 5 || data.Dashboard.TopComponents[0].Name != "Blink" {
		t.Errorf("top components = %+v", data.Dashboard.TopComponents)
	}
	if diff := cmp.Diff(filters.FallbackVulnerabilityTypes()[:3], data.TopVulnerabilityTypes); diff != "" {
		t.Errorf("types mismatch (-want +got):\n%s", diff)
	}
}

func TestSchema_ComponentTree(t *testing.T) {
	schema := newTestSchema(t, &fakeBackend{})
	var data struct {
		ComponentTree []struct {
			Path     string `json:"path"`
			Depth    int    `json:"depth"`
			Selected bool   `json:"selected"`
		} `json:"componentTree"`
	}
	errs := run(t, schema, `{ componentTree(expanded: ["Blink"], selected: ["Blink>DOM"]) { path depth selected } }`, &data)
	if len(errs) > 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}

	type row struct {
		Path     string
		Depth    int
		Selected bool
	}
	var got []row
	for _, r := range data.ComponentTree {
		got = append(got, row{r.Path, r.Depth, r.Selected})
	}
	want := []row{
		{"Blink", 0, false},
		{"Blink>CSS", 1, false},
		{"Blink>DOM", 1, true},
		{"Internals", 0, false},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("rows mismatch (-want +got):\n%s", diff)
	}
}
