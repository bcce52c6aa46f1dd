package services

import (
	"context"
	"time"
)

// catalogRefreshTimeout bounds one reload of the filter catalog.
const catalogRefreshTimeout = 30 * time.Second

// Refreshable is anything that can reload itself from the backend.
type Refreshable interface {
	Refresh(ctx context.Context) error
}

// CatalogRefresherWrapper implements issues.CatalogRefresher on top of the catalog, so
// Kafka-driven reloads and the REST refresh endpoint share one code path.
type CatalogRefresherWrapper struct {
	Catalog Refreshable
}

// RefreshCatalog reloads the catalog with a bounded deadline.
func (w *CatalogRefresherWrapper) RefreshCatalog(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, catalogRefreshTimeout)
	defer cancel()
	return w.Catalog.Refresh(ctx)
}
