package session

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/ciaa/ciaa-dashboard/filters"
	"github.com/ciaa/ciaa-dashboard/model"
	"github.com/google/go-cmp/cmp"
	"go.uber.org/zap"
)

type recordingFetcher struct {
	mu      sync.Mutex
	queries []filters.Query
	err     error
}

func (f *recordingFetcher) Fetch(_ context.Context, q filters.Query) (model.IssuePage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.queries = append(f.queries, q)
	if f.err != nil {
		return model.EmptyIssuePage(), f.err
	}
	return model.IssuePage{Items: []model.IssueRecord{{IssueID: int64(len(f.queries))}}, Total: 1, Pages: 1}, nil
}

func (f *recordingFetcher) last() filters.Query {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.queries[len(f.queries)-1]
}

type staticTree struct{ root *filters.TreeNode }

func (s staticTree) Tree() *filters.TreeNode { return s.root }

func newTestBrowser(fetcher Fetcher) *Browser {
	tree := staticTree{filters.BuildTree([]string{"Blink>DOM", "Blink>Layout", "UI>Browser"})}
	return NewBrowser(NewStore(time.Hour, 0, zap.NewNop()), fetcher, tree, zap.NewNop())
}

func TestBrowser_OpenLoadsFirstPage(t *testing.T) {
	fetcher := &recordingFetcher{}
	b := newTestBrowser(fetcher)

	snap, err := b.Open(context.Background())
	if err != nil {
		t.Fatalf("Open returned error: %v", err)
	}
	if snap.ID == "" {
		t.Error("expected a session id")
	}
	want := filters.Params{"page": "1", "limit": "10"}
	if diff := cmp.Diff(want, fetcher.last().Params); diff != "" {
		t.Errorf("params mismatch (-want +got):\n%s", diff)
	}
	if len(snap.Result.Items) != 1 || snap.Loading {
		t.Errorf("snapshot = %+v", snap)
	}
}

func TestBrowser_MutationsResetPage(t *testing.T) {
	fetcher := &recordingFetcher{}
	b := newTestBrowser(fetcher)
	ctx := context.Background()
	snap, _ := b.Open(ctx)

	if _, err := b.SetPage(ctx, snap.ID, 3, 25); err != nil {
		t.Fatalf("SetPage returned error: %v", err)
	}
	if got := fetcher.last().Params["page"]; got != "3" {
		t.Errorf("page = %s, want 3", got)
	}

	snap, err := b.ToggleFilter(ctx, snap.ID, filters.CategorySeverity, "High")
	if err != nil {
		t.Fatalf("ToggleFilter returned error: %v", err)
	}
	if snap.Page != 1 || snap.Limit != 25 {
		t.Errorf("page/limit = %d/%d, want 1/25", snap.Page, snap.Limit)
	}
	if got := fetcher.last().Params["severity"]; got != "High" {
		t.Errorf("severity = %q, want High", got)
	}

	snap, _ = b.SetHasCVE(ctx, snap.ID, true)
	if got := fetcher.last().Params["has_cve"]; got != "true" {
		t.Errorf("has_cve = %q, want true", got)
	}

	snap, _ = b.Search(ctx, snap.ID, "v8", "")
	q := fetcher.last()
	if q.Kind != filters.KindSearch || q.Params["type"] != "all" || q.Params["severity"] != "High" {
		t.Errorf("search query = %+v", q)
	}

	snap, _ = b.ClearFilters(ctx, snap.ID)
	if !snap.Filters.IsEmpty() {
		t.Errorf("filters = %+v, want empty", snap.Filters)
	}
	if snap.Search != "v8" {
		t.Error("clearing filters must keep the search term")
	}
}

func TestBrowser_InvalidMutations(t *testing.T) {
	b := newTestBrowser(&recordingFetcher{})
	ctx := context.Background()
	snap, _ := b.Open(ctx)

	if _, err := b.ToggleFilter(ctx, snap.ID, filters.Category("colour"), "red"); err == nil {
		t.Error("expected error for unknown category")
	}
	if _, err := b.SetPage(ctx, snap.ID, 0, 0); err == nil {
		t.Error("expected error for page 0")
	}
	if _, err := b.ToggleComponent(ctx, snap.ID, "Nope>Missing"); !errors.Is(err, ErrUnknownComponent) {
		t.Errorf("err = %v, want ErrUnknownComponent", err)
	}
	if _, err := b.Search(ctx, "missing", "x", ""); !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestBrowser_FetchErrorSetsMessage(t *testing.T) {
	b := newTestBrowser(&recordingFetcher{err: errors.New("boom")})

	snap, err := b.Open(context.Background())
	if err != nil {
		t.Fatalf("Open returned error: %v", err)
	}
	if snap.Error != LoadIssuesFailed {
		t.Errorf("Error = %q, want %q", snap.Error, LoadIssuesFailed)
	}
	if diff := cmp.Diff(model.EmptyIssuePage(), snap.Result); diff != "" {
		t.Errorf("result mismatch (-want +got):\n%s", diff)
	}
}

func TestBrowser_Components(t *testing.T) {
	fetcher := &recordingFetcher{}
	b := newTestBrowser(fetcher)
	ctx := context.Background()
	snap, _ := b.Open(ctx)

	rows, err := b.ToggleExpansion(snap.ID, "Blink")
	if err != nil {
		t.Fatalf("ToggleExpansion returned error: %v", err)
	}
	var paths []string
	for _, r := range rows {
		paths = append(paths, r.Path)
	}
	if diff := cmp.Diff([]string{"Blink", "Blink>DOM", "Blink>Layout", "UI"}, paths); diff != "" {
		t.Errorf("rows mismatch (-want +got):\n%s", diff)
	}

	if _, err := b.ToggleComponent(ctx, snap.ID, "Blink > DOM"); err != nil {
		t.Fatalf("ToggleComponent returned error: %v", err)
	}
	if got := fetcher.last().Params["component"]; got != "Blink>DOM" {
		t.Errorf("component = %q, want Blink>DOM", got)
	}

	rows, _ = b.SetComponentSearch(snap.ID, "dom")
	want := []filters.Row{{Label: "Blink>DOM", Path: "Blink>DOM", Selected: true}}
	if diff := cmp.Diff(want, rows); diff != "" {
		t.Errorf("search rows mismatch (-want +got):\n%s", diff)
	}
}

// gatedFetcher blocks queries for "slow" until released.
type gatedFetcher struct {
	started chan struct{}
	release chan struct{}
}

func (g *gatedFetcher) Fetch(_ context.Context, q filters.Query) (model.IssuePage, error) {
	if q.Params["query"] == "slow" {
		close(g.started)
		<-g.release
		return model.IssuePage{Items: []model.IssueRecord{{IssueID: 1}}, Total: 1, Pages: 1}, nil
	}
	return model.IssuePage{Items: []model.IssueRecord{{IssueID: 2}}, Total: 1, Pages: 1}, nil
}

func TestBrowser_DiscardsStaleResponses(t *testing.T) {
	g := &gatedFetcher{started: make(chan struct{}), release: make(chan struct{})}
	b := newTestBrowser(g)
	ctx := context.Background()
	snap, _ := b.Open(ctx)

	done := make(chan Snapshot)
	go func() {
		s, _ := b.Search(ctx, snap.ID, "slow", "")
		done <- s
	}()
	<-g.started

	fast, err := b.Search(ctx, snap.ID, "fast", "")
	if err != nil {
		t.Fatalf("Search returned error: %v", err)
	}
	if fast.Result.Items[0].IssueID != 2 {
		t.Fatalf("fast result = %+v", fast.Result)
	}

	close(g.release)
	<-done

	final, _ := b.Get(snap.ID)
	if final.Result.Items[0].IssueID != 2 {
		t.Errorf("stale response was applied: %+v", final.Result)
	}
	if final.Query.Params["query"] != "fast" {
		t.Errorf("query = %v, want fast", final.Query.Params)
	}
}

func TestStore_Sweep(t *testing.T) {
	store := NewStore(time.Minute, 0, zap.NewNop())
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return now }

	idle := store.Create()
	active := store.Create()

	now = now.Add(2 * time.Minute)
	if _, err := store.Get(active.ID); err != nil {
		t.Fatalf("Get returned error: %v", err)
	}

	if removed := store.Sweep(); removed != 1 {
		t.Errorf("Sweep removed %d, want 1", removed)
	}
	if _, err := store.Get(idle.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("idle session still present: %v", err)
	}
	if store.Len() != 1 {
		t.Errorf("Len = %d, want 1", store.Len())
	}
}

func TestStore_Delete(t *testing.T) {
	store := NewStore(0, 0, nil)
	v := store.Create()

	if err := store.Delete(v.ID); err != nil {
		t.Fatalf("Delete returned error: %v", err)
	}
	if err := store.Delete(v.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("second Delete = %v, want ErrNotFound", err)
	}
	if store.Sweep() != 0 {
		t.Error("Sweep without timeout must not remove anything")
	}
}
