// internal/workers/cleanup_processor.go
package workers

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/hibiken/asynq"

	"github.com/ldessureault/chainstore-be/internal/adapters/db"
	"github.com/ldessureault/chainstore-be/internal/pkg/config"
)

// TypeCleanupOldData is the task type for the nightly database cleanup.
const TypeCleanupOldData = "maintenance:cleanup"

// CleanupProcessor prunes aged rows on a schedule.
type CleanupProcessor struct {
	db     *db.Database
	config *config.Config
	logger *slog.Logger
}

func NewCleanupProcessor(db *db.Database, config *config.Config, logger *slog.Logger) *CleanupProcessor {
	return &CleanupProcessor{
		db:     db,
		config: config,
		logger: logger.With(slog.String("processor", "cleanup")),
	}
}

// CleanupOldData removes settled replenishment requests that are past the
// retention window. Pending requests are never touched.
func (p *CleanupProcessor) CleanupOldData(ctx context.Context, t *asynq.Task) error {
	p.logger.InfoContext(ctx, "pruning settled replenishment requests")

	query := `DELETE FROM replenishment_request
		WHERE status IN ('approved', 'rejected')
		AND updated_at < NOW() - INTERVAL '90 days'`

	result, err := p.db.Exec(ctx, query)
	if err != nil {
		return fmt.Errorf("failed to cleanup replenishment requests: %w", err)
	}

	p.logger.InfoContext(ctx, "retention pruning complete",
		slog.Int64("rows_deleted", result.RowsAffected()))

	return nil
}
