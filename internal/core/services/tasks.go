// internal/core/services/tasks.go
package services

import (
	"encoding/json"
	"fmt"

	"github.com/hibiken/asynq"
)

// Task type names shared between enqueuers and the worker mux
const (
	TypeLowStockCheck = "stock:low_check"
)

// LowStockCheckPayload is the payload for low-stock check tasks
type LowStockCheckPayload struct {
	StoreID   int64 `json:"store_id"`
	Threshold int   `json:"threshold"`
}

// NewLowStockCheckTask builds the asynq task for a low-stock sweep of
// one store.
func NewLowStockCheckTask(storeID int64, threshold int) (*asynq.Task, error) {
	b, err := json.Marshal(LowStockCheckPayload{StoreID: storeID, Threshold: threshold})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal payload: %w", err)
	}
	return asynq.NewTask(TypeLowStockCheck, b), nil
}

// TaskEnqueuer is the slice of asynq.Client the services depend on
type TaskEnqueuer interface {
	Enqueue(task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}
