package session

import (
	"context"
	"errors"
	"fmt"

	"github.com/ciaa/ciaa-dashboard/filters"
	"github.com/ciaa/ciaa-dashboard/model"
	"go.uber.org/zap"
)

// LoadIssuesFailed is shown when a listing cannot be fetched.
const LoadIssuesFailed = "Failed to load issues. Please try again later."

// ErrUnknownComponent is returned when toggling a path that is not in the component tree.
var ErrUnknownComponent = errors.New("unknown component")

// Fetcher runs a composed query.
type Fetcher interface {
	Fetch(ctx context.Context, q filters.Query) (model.IssuePage, error)
}

// TreeSource provides the current component hierarchy.
type TreeSource interface {
	Tree() *filters.TreeNode
}

// Browser applies user actions to views. Each action that changes the query mutates the
// view, composes a new query, fetches it and applies the response only when no newer
// fetch was started in the meantime.
type Browser struct {
	store   *Store
	fetcher Fetcher
	tree    TreeSource
	logger  *zap.Logger
}

// NewBrowser wires a browser to its collaborators.
func NewBrowser(store *Store, fetcher Fetcher, tree TreeSource, logger *zap.Logger) *Browser {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Browser{store: store, fetcher: fetcher, tree: tree, logger: logger}
}

// Store returns the underlying store.
func (b *Browser) Store() *Store {
	return b.store
}

// Open creates a view and loads its first page.
func (b *Browser) Open(ctx context.Context) (Snapshot, error) {
	v := b.store.Create()
	return b.refresh(ctx, v)
}

// Get returns the current state of a view without fetching.
func (b *Browser) Get(id string) (Snapshot, error) {
	v, err := b.store.Get(id)
	if err != nil {
		return Snapshot{}, err
	}
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.snapshot(), nil
}

// Close removes a view.
func (b *Browser) Close(id string) error {
	return b.store.Delete(id)
}

// Search sets the free-text term and its type and returns to the first page.
func (b *Browser) Search(ctx context.Context, id, term string, searchType filters.SearchType) (Snapshot, error) {
	return b.update(ctx, id, func(v *View) error {
		if searchType == "" {
			searchType = filters.SearchAll
		}
		v.search = term
		v.searchType = searchType
		v.page = filters.DefaultPage
		return nil
	})
}

// ToggleFilter flips one value of a filter category and returns to the first page.
func (b *Browser) ToggleFilter(ctx context.Context, id string, category filters.Category, value string) (Snapshot, error) {
	return b.update(ctx, id, func(v *View) error {
		if err := v.filters.Toggle(category, value); err != nil {
			return err
		}
		v.page = filters.DefaultPage
		return nil
	})
}

// ClearFilters resets every filter and the CVE toggle.
func (b *Browser) ClearFilters(ctx context.Context, id string) (Snapshot, error) {
	return b.update(ctx, id, func(v *View) error {
		v.filters.Clear()
		v.page = filters.DefaultPage
		return nil
	})
}

// SetHasCVE sets the "only issues with a CVE" toggle.
func (b *Browser) SetHasCVE(ctx context.Context, id string, hasCVE bool) (Snapshot, error) {
	return b.update(ctx, id, func(v *View) error {
		v.filters.SetHasCVE(hasCVE)
		v.page = filters.DefaultPage
		return nil
	})
}

// SetPage moves to another page. A non-positive limit keeps the current one.
func (b *Browser) SetPage(ctx context.Context, id string, page, limit int) (Snapshot, error) {
	return b.update(ctx, id, func(v *View) error {
		if page < 1 {
			return fmt.Errorf("invalid page %d", page)
		}
		v.page = page
		if limit > 0 {
			v.limit = limit
		}
		return nil
	})
}

// ToggleComponent selects or deselects a component tree node.
func (b *Browser) ToggleComponent(ctx context.Context, id, path string) (Snapshot, error) {
	tree := b.tree.Tree()
	return b.update(ctx, id, func(v *View) error {
		if !tree.Toggle(path, v.filters.CategorySelection(filters.CategoryComponents)) {
			return fmt.Errorf("%w: %s", ErrUnknownComponent, path)
		}
		v.page = filters.DefaultPage
		return nil
	})
}

// ToggleExpansion opens or closes a component branch. It does not fetch.
func (b *Browser) ToggleExpansion(id, path string) ([]filters.Row, error) {
	v, err := b.store.Get(id)
	if err != nil {
		return nil, err
	}
	v.mu.Lock()
	v.expansion.Toggle(path)
	v.mu.Unlock()
	return b.Components(id)
}

// SetComponentSearch filters the component list. It does not fetch.
func (b *Browser) SetComponentSearch(id, term string) ([]filters.Row, error) {
	v, err := b.store.Get(id)
	if err != nil {
		return nil, err
	}
	v.mu.Lock()
	v.componentSearch = term
	v.mu.Unlock()
	return b.Components(id)
}

// Components renders the component filter rows of a view.
func (b *Browser) Components(id string) ([]filters.Row, error) {
	v, err := b.store.Get(id)
	if err != nil {
		return nil, err
	}
	tree := b.tree.Tree()
	v.mu.Lock()
	defer v.mu.Unlock()
	return tree.Rows(v.expansion, v.filters.CategorySelection(filters.CategoryComponents), v.componentSearch), nil
}

func (b *Browser) update(ctx context.Context, id string, mutate func(v *View) error) (Snapshot, error) {
	v, err := b.store.Get(id)
	if err != nil {
		return Snapshot{}, err
	}
	v.mu.Lock()
	err = mutate(v)
	v.mu.Unlock()
	if err != nil {
		return Snapshot{}, err
	}
	return b.refresh(ctx, v)
}

// refresh fetches the view's current query. The response is applied only if it belongs to
// the latest ticket; otherwise the view is returned as is.
func (b *Browser) refresh(ctx context.Context, v *View) (Snapshot, error) {
	v.mu.Lock()
	q := filters.Compose(filters.ComposeRequest{
		Search:     v.search,
		SearchType: v.searchType,
		Filters:    v.filters,
		Page:       v.page,
		Limit:      v.limit,
	})
	ticket := v.seq.Next()
	v.loading = true
	v.mu.Unlock()

	page, err := b.fetcher.Fetch(ctx, q)

	v.mu.Lock()
	defer v.mu.Unlock()
	if !v.seq.IsLatest(ticket) {
		b.logger.Debug("discarding stale response", zap.String("session", v.ID), zap.Uint64("ticket", ticket))
		return v.snapshot(), nil
	}
	v.loading = false
	v.query = q
	if err != nil {
		b.logger.Error("failed to fetch issues", zap.String("session", v.ID), zap.Error(err))
		v.result = model.EmptyIssuePage()
		v.errMsg = LoadIssuesFailed
	} else {
		v.result = page
		v.errMsg = ""
	}
	return v.snapshot(), nil
}
