// Package session keeps the per-view state of the issue browser: the active filters, the
// search term, the component tree expansion, the current page and the last applied result.
// Every view is an explicit object addressed by id.
package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/ciaa/ciaa-dashboard/filters"
	"github.com/ciaa/ciaa-dashboard/model"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ErrNotFound is returned for unknown or expired session ids.
var ErrNotFound = errors.New("session not found")

// View is the state of one issue browser. All fields are guarded by mu.
type View struct {
	ID string

	mu              sync.Mutex
	filters         *filters.ActiveFilterState
	search          string
	searchType      filters.SearchType
	componentSearch string
	expansion       *filters.Expansion
	page            int
	limit           int
	query           filters.Query
	result          model.IssuePage
	errMsg          string
	loading         bool
	seq             filters.Sequence
	lastSeen        time.Time
}

func newView(id string, limit int, now time.Time) *View {
	if limit <= 0 {
		limit = filters.DefaultLimit
	}
	return &View{
		ID:         id,
		filters:    filters.NewActiveFilterState(),
		searchType: filters.SearchAll,
		expansion:  filters.NewExpansion(),
		page:       filters.DefaultPage,
		limit:      limit,
		result:     model.EmptyIssuePage(),
		lastSeen:   now,
	}
}

// Snapshot is a read-only copy of a view.
type Snapshot struct {
	ID              string                     `json:"id"`
	Filters         *filters.ActiveFilterState `json:"filters"`
	Search          string                     `json:"search"`
	SearchType      filters.SearchType         `json:"search_type"`
	ComponentSearch string                     `json:"component_search"`
	Expanded        []string                   `json:"expanded"`
	Page            int                        `json:"page"`
	Limit           int                        `json:"limit"`
	Query           filters.Query              `json:"query"`
	Result          model.IssuePage            `json:"result"`
	Error           string                     `json:"error,omitempty"`
	Loading         bool                       `json:"loading"`
}

// snapshot must be called with v.mu held.
func (v *View) snapshot() Snapshot {
	items := append([]model.IssueRecord{}, v.result.Items...)
	return Snapshot{
		ID:              v.ID,
		Filters:         v.filters.Clone(),
		Search:          v.search,
		SearchType:      v.searchType,
		ComponentSearch: v.componentSearch,
		Expanded:        v.expansion.Paths(),
		Page:            v.page,
		Limit:           v.limit,
		Query:           v.query,
		Result:          model.IssuePage{Items: items, Total: v.result.Total, Pages: v.result.Pages},
		Error:           v.errMsg,
		Loading:         v.loading,
	}
}

// Store holds the live views.
type Store struct {
	mu           sync.RWMutex
	views        map[string]*View
	idleTimeout  time.Duration
	defaultLimit int
	now          func() time.Time
	logger       *zap.Logger
}

// NewStore returns an empty store. Views untouched for idleTimeout are removed by Sweep.
func NewStore(idleTimeout time.Duration, defaultLimit int, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{
		views:        map[string]*View{},
		idleTimeout:  idleTimeout,
		defaultLimit: defaultLimit,
		now:          time.Now,
		logger:       logger,
	}
}

// Create registers a new view with a random id.
func (s *Store) Create() *View {
	v := newView(uuid.NewString(), s.defaultLimit, s.now())
	s.mu.Lock()
	s.views[v.ID] = v
	s.mu.Unlock()
	return v
}

// Get returns a view and marks it as used.
func (s *Store) Get(id string) (*View, error) {
	s.mu.RLock()
	v, ok := s.views[id]
	s.mu.RUnlock()
	if !ok {
		return nil, ErrNotFound
	}
	v.mu.Lock()
	v.lastSeen = s.now()
	v.mu.Unlock()
	return v, nil
}

// Delete removes a view.
func (s *Store) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.views[id]; !ok {
		return ErrNotFound
	}
	delete(s.views, id)
	return nil
}

// Len returns the number of live views.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.views)
}

// Sweep removes idle views and returns how many were removed.
func (s *Store) Sweep() int {
	if s.idleTimeout <= 0 {
		return 0
	}
	cutoff := s.now().Add(-s.idleTimeout)

	s.mu.Lock()
	defer s.mu.Unlock()
	removed := 0
	for id, v := range s.views {
		v.mu.Lock()
		idle := v.lastSeen.Before(cutoff)
		v.mu.Unlock()
		if idle {
			delete(s.views, id)
			removed++
		}
	}
	return removed
}

// RunSweeper sweeps every interval until ctx is done.
func (s *Store) RunSweeper(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if count := s.Sweep(); count > 0 {
				s.logger.Info("Background Task: removed idle sessions", zap.Int("count", count))
			}
		}
	}
}
