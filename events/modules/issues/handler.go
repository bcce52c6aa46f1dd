package issues

import (
	"context"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"
)

// CatalogRefresher defines the interface for reloading the filter catalog.
type CatalogRefresher interface {
	RefreshCatalog(ctx context.Context) error
}

// HandleIssueEvent processes one issue event from Kafka. Events that do not affect the
// catalog are acknowledged and ignored.
func HandleIssueEvent(ctx context.Context, msg []byte, refresher CatalogRefresher, logger *zap.Logger) error {
	var event IssueEvent
	if err := json.Unmarshal(msg, &event); err != nil {
		return fmt.Errorf("failed to unmarshal IssueEvent: %w", err)
	}

	if event.EventType == "" {
		return fmt.Errorf("invalid event: missing event_type")
	}

	if !event.RefreshesCatalog() {
		logger.Debug("ignoring event", zap.String("event_type", event.EventType), zap.String("event_id", event.EventID))
		return nil
	}

	logger.Info("refreshing filter catalog",
		zap.String("event_type", event.EventType),
		zap.String("event_id", event.EventID),
		zap.Int64("issue_id", event.IssueID))

	if err := refresher.RefreshCatalog(ctx); err != nil {
		return fmt.Errorf("catalog refresh failed: %w", err)
	}
	return nil
}
