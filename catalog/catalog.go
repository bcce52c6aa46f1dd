// Package catalog holds the filter option sets offered by the filter panel. The catalog is
// loaded from the issue backend at startup and reloaded when issue events arrive; readers
// always get a consistent snapshot.
package catalog

import (
	"context"
	"sync"
	"time"

	"github.com/ciaa/ciaa-dashboard/filters"
	"github.com/ciaa/ciaa-dashboard/model"
	"github.com/ciaa/ciaa-dashboard/util"
	"go.uber.org/zap"
)

// Source is the subset of the backend client the catalog reads from.
type Source interface {
	ComponentTags(ctx context.Context) ([]string, error)
	OSValues(ctx context.Context) ([]string, error)
	MilestoneValues(ctx context.Context) ([]string, error)
	VulnerabilityTypes(ctx context.Context) ([]model.VulnerabilityType, error)
}

// DefaultSeverities and the other defaults are used whenever the backend has no list.
var (
	DefaultSeverities         = []string{"Critical", "High", "Medium", "Low"}
	DefaultPriorities         = []string{"P0", "P1", "P2", "P3"}
	DefaultStatuses           = []string{"New", "Assigned", "Fixed", "Verified"}
	DefaultVulnerabilityTypes = []string{
		"Use-After-Free",
		"Buffer Overflow",
		"Type Confusion",
		"Memory Corruption",
		"Cross-Site Scripting",
		"Integer Overflow",
		"Heap Corruption",
		"Race Condition",
		"Null Pointer Dereference",
		"Double Free",
	}
)

// Catalog is a concurrency-safe snapshot of the filter options and the component tree
// built from them.
type Catalog struct {
	source Source
	logger *zap.Logger

	mu       sync.RWMutex
	options  model.FilterOptions
	tree     *filters.TreeNode
	loadedAt time.Time
}

// New returns a catalog holding the defaults until the first Refresh.
func New(source Source, logger *zap.Logger) *Catalog {
	if logger == nil {
		logger = zap.NewNop()
	}
	c := &Catalog{source: source, logger: logger}
	c.set(Defaults())
	return c
}

// Defaults returns the option sets used before anything is loaded.
func Defaults() model.FilterOptions {
	types := make([]model.VulnerabilityType, 0, len(DefaultVulnerabilityTypes))
	for _, t := range DefaultVulnerabilityTypes {
		types = append(types, model.VulnerabilityType{Type: t})
	}
	return model.FilterOptions{
		Severities:         clone(DefaultSeverities),
		Priorities:         clone(DefaultPriorities),
		Statuses:           clone(DefaultStatuses),
		Components:         []string{},
		OS:                 []string{},
		Milestones:         []string{},
		VulnerabilityTypes: types,
	}
}

// Refresh reloads every source independently. A failing source keeps its default and is
// logged; Refresh itself only fails when ctx is done.
func (c *Catalog) Refresh(ctx context.Context) error {
	opts := Defaults()

	if tags, err := c.source.ComponentTags(ctx); err != nil {
		c.logger.Warn("failed to load component tags", zap.Error(err))
	} else if tags != nil {
		opts.Components = tags
	}

	if values, err := c.source.OSValues(ctx); err != nil {
		c.logger.Warn("failed to load OS values", zap.Error(err))
	} else if values != nil {
		opts.OS = values
	}

	if values, err := c.source.MilestoneValues(ctx); err != nil {
		c.logger.Warn("failed to load milestones", zap.Error(err))
	} else if values != nil {
		opts.Milestones = util.SortMilestones(values)
	}

	if types, err := c.source.VulnerabilityTypes(ctx); err != nil {
		c.logger.Warn("failed to load vulnerability types", zap.Error(err))
	} else if len(types) > 0 {
		opts.VulnerabilityTypes = dedupeTypes(types)
	}

	if err := ctx.Err(); err != nil {
		return err
	}

	c.set(opts)
	c.logger.Info("filter catalog loaded",
		zap.Int("components", len(opts.Components)),
		zap.Int("os", len(opts.OS)),
		zap.Int("milestones", len(opts.Milestones)),
		zap.Int("vulnerability_types", len(opts.VulnerabilityTypes)))
	return nil
}

func (c *Catalog) set(opts model.FilterOptions) {
	tree := filters.BuildTree(opts.Components)
	c.mu.Lock()
	defer c.mu.Unlock()
	c.options = opts
	c.tree = tree
	c.loadedAt = time.Now()
}

// Options returns a copy of the current option sets.
func (c *Catalog) Options() model.FilterOptions {
	c.mu.RLock()
	defer c.mu.RUnlock()
	o := c.options
	return model.FilterOptions{
		Severities:         clone(o.Severities),
		Priorities:         clone(o.Priorities),
		Statuses:           clone(o.Statuses),
		Components:         clone(o.Components),
		OS:                 clone(o.OS),
		Milestones:         clone(o.Milestones),
		VulnerabilityTypes: append([]model.VulnerabilityType(nil), o.VulnerabilityTypes...),
	}
}

// Tree returns the component hierarchy of the current snapshot. The tree is rebuilt on
// every refresh and must be treated as read-only.
func (c *Catalog) Tree() *filters.TreeNode {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.tree
}

// LoadedAt reports when the current snapshot was installed.
func (c *Catalog) LoadedAt() time.Time {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.loadedAt
}

func dedupeTypes(types []model.VulnerabilityType) []model.VulnerabilityType {
	seen := make(map[string]bool, len(types))
	out := make([]model.VulnerabilityType, 0, len(types))
	for _, t := range types {
		if t.Type == "" || seen[t.Type] {
			continue
		}
		seen[t.Type] = true
		out = append(out, t)
	}
	return out
}

func clone(s []string) []string {
	if s == nil {
		return []string{}
	}
	return append([]string(nil), s...)
}
