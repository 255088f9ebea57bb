package workers_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/ldessureault/chainstore-be/internal/core/domain"
	"github.com/ldessureault/chainstore-be/internal/core/services"
	"github.com/ldessureault/chainstore-be/internal/workers"
	"github.com/ldessureault/chainstore-be/test/helpers"
	"github.com/ldessureault/chainstore-be/test/mocks"
)

func newLowStockProcessor(t *testing.T) (*workers.LowStockProcessor, *mocks.MockStockRepository, *mocks.MockCacheRepository) {
	t.Helper()
	ctrl := gomock.NewController(t)
	stockRepo := mocks.NewMockStockRepository(ctrl)
	cache := mocks.NewMockCacheRepository(ctrl)

	processor := workers.NewLowStockProcessor(stockRepo, cache, helpers.LoadTestConfig(), helpers.TestLogger())
	return processor, stockRepo, cache
}

func newLowStockTask(t *testing.T, storeID int64, threshold int) *asynq.Task {
	t.Helper()
	task, err := services.NewLowStockCheckTask(storeID, threshold)
	require.NoError(t, err)
	return task
}

func TestLowStockProcessor_HandleLowStockCheck(t *testing.T) {
	ctx := context.Background()

	t.Run("records_alert_per_low_product", func(t *testing.T) {
		processor, stockRepo, cache := newLowStockProcessor(t)

		levels := []*domain.StockLevel{
			{StoreID: 1, ProductID: 42, Quantity: 2},
			{StoreID: 1, ProductID: 7, Quantity: 0},
		}
		stockRepo.EXPECT().
			FindLow(gomock.Any(), int64(1), 3).
			Return(levels, nil)

		cache.EXPECT().
			SetWithTTL(gomock.Any(), "alert:1:42", gomock.Any(), 24*time.Hour).
			DoAndReturn(func(_ context.Context, _ string, value any, _ time.Duration) error {
				alert := value.(workers.StockAlert)
				assert.Equal(t, int64(42), alert.ProductID)
				assert.Equal(t, 2, alert.Quantity)
				assert.Equal(t, 3, alert.Threshold)
				return nil
			})
		cache.EXPECT().
			SetWithTTL(gomock.Any(), "alert:1:7", gomock.Any(), 24*time.Hour).
			Return(nil)

		err := processor.HandleLowStockCheck(ctx, newLowStockTask(t, 1, 3))
		require.NoError(t, err)
	})

	t.Run("falls_back_to_configured_threshold", func(t *testing.T) {
		processor, stockRepo, _ := newLowStockProcessor(t)

		stockRepo.EXPECT().
			FindLow(gomock.Any(), int64(1), 5).
			Return(nil, nil)

		err := processor.HandleLowStockCheck(ctx, newLowStockTask(t, 1, 0))
		require.NoError(t, err)
	})

	t.Run("no_alerts_when_stock_is_healthy", func(t *testing.T) {
		processor, stockRepo, _ := newLowStockProcessor(t)

		stockRepo.EXPECT().
			FindLow(gomock.Any(), int64(1), 3).
			Return([]*domain.StockLevel{}, nil)

		err := processor.HandleLowStockCheck(ctx, newLowStockTask(t, 1, 3))
		require.NoError(t, err)
	})

	t.Run("malformed_payload_skips_retry", func(t *testing.T) {
		processor, _, _ := newLowStockProcessor(t)

		task := asynq.NewTask(services.TypeLowStockCheck, []byte("not json"))
		err := processor.HandleLowStockCheck(ctx, task)
		require.Error(t, err)
		assert.ErrorIs(t, err, asynq.SkipRetry)
	})

	t.Run("scan_failure_is_retryable", func(t *testing.T) {
		processor, stockRepo, _ := newLowStockProcessor(t)

		stockRepo.EXPECT().
			FindLow(gomock.Any(), int64(1), 3).
			Return(nil, errors.New("connection refused"))

		err := processor.HandleLowStockCheck(ctx, newLowStockTask(t, 1, 3))
		require.Error(t, err)
		assert.NotErrorIs(t, err, asynq.SkipRetry)
	})

	t.Run("cache_failure_does_not_fail_task", func(t *testing.T) {
		processor, stockRepo, cache := newLowStockProcessor(t)

		stockRepo.EXPECT().
			FindLow(gomock.Any(), int64(1), 3).
			Return([]*domain.StockLevel{{StoreID: 1, ProductID: 42, Quantity: 1}}, nil)
		cache.EXPECT().
			SetWithTTL(gomock.Any(), "alert:1:42", gomock.Any(), 24*time.Hour).
			Return(errors.New("redis down"))

		err := processor.HandleLowStockCheck(ctx, newLowStockTask(t, 1, 3))
		require.NoError(t, err)
	})
}

func TestNewLowStockCheckTask(t *testing.T) {
	task, err := services.NewLowStockCheckTask(9, 4)
	require.NoError(t, err)
	assert.Equal(t, services.TypeLowStockCheck, task.Type())

	var payload services.LowStockCheckPayload
	require.NoError(t, json.Unmarshal(task.Payload(), &payload))
	assert.Equal(t, int64(9), payload.StoreID)
	assert.Equal(t, 4, payload.Threshold)
}
