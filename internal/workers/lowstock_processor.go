// internal/workers/lowstock_processor.go
package workers

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/hibiken/asynq"

	redis_a "github.com/ldessureault/chainstore-be/internal/adapters/redis_adapter"
	"github.com/ldessureault/chainstore-be/internal/core/ports"
	"github.com/ldessureault/chainstore-be/internal/core/services"
	"github.com/ldessureault/chainstore-be/internal/pkg/config"
)

// StockAlert is the cached record of a low-stock condition
type StockAlert struct {
	StoreID   int64     `json:"store_id"`
	ProductID int64     `json:"product_id"`
	Quantity  int       `json:"quantity"`
	Threshold int       `json:"threshold"`
	CheckedAt time.Time `json:"checked_at"`
}

// LowStockProcessor sweeps a store's stock levels after each sale and
// records alerts for products at or below the threshold.
type LowStockProcessor struct {
	stock  ports.StockRepository
	cache  ports.CacheRepository
	config *config.Config
	logger *slog.Logger
}

// NewLowStockProcessor creates a new low-stock processor
func NewLowStockProcessor(stock ports.StockRepository, cache ports.CacheRepository, cfg *config.Config, logger *slog.Logger) *LowStockProcessor {
	return &LowStockProcessor{
		stock:  stock,
		cache:  cache,
		config: cfg,
		logger: logger.With(slog.String("processor", "low_stock")),
	}
}

// HandleLowStockCheck processes stock:low_check tasks
func (p *LowStockProcessor) HandleLowStockCheck(ctx context.Context, t *asynq.Task) error {
	var payload services.LowStockCheckPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("failed to unmarshal payload: %w: %w", err, asynq.SkipRetry)
	}

	threshold := payload.Threshold
	if threshold <= 0 {
		threshold = p.config.Stock.LowStockThreshold
	}

	levels, err := p.stock.FindLow(ctx, payload.StoreID, threshold)
	if err != nil {
		return fmt.Errorf("failed to scan stock levels: %w", err)
	}

	if len(levels) == 0 {
		p.logger.DebugContext(ctx, "no low stock found",
			slog.Int64("store_id", payload.StoreID),
			slog.Int("threshold", threshold))
		return nil
	}

	now := time.Now()
	for _, level := range levels {
		alert := StockAlert{
			StoreID:   level.StoreID,
			ProductID: level.ProductID,
			Quantity:  level.Quantity,
			Threshold: threshold,
			CheckedAt: now,
		}

		key := redis_a.BuildKey(redis_a.PrefixAlert,
			strconv.FormatInt(level.StoreID, 10),
			strconv.FormatInt(level.ProductID, 10))

		if err := p.cache.SetWithTTL(ctx, key, alert, p.config.Stock.AlertTTL); err != nil {
			p.logger.WarnContext(ctx, "failed to record stock alert",
				slog.String("key", key),
				slog.String("error", err.Error()))
		}

		p.logger.WarnContext(ctx, "low stock detected",
			slog.Int64("store_id", level.StoreID),
			slog.Int64("product_id", level.ProductID),
			slog.Int("quantity", level.Quantity),
			slog.Int("threshold", threshold))
	}

	return nil
}
