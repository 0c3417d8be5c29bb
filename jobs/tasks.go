package jobs

import (
	"context"
	"encoding/json"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskReportsWarmup pre-populates the report caches.
	TaskReportsWarmup = "reports:warmup"
	// TaskStockScan checks every product for negative available stock.
	TaskStockScan = "stock:scan"
)

// ReportsWarmupPayload configures a warmup run. An empty Reports slice warms
// every report.
type ReportsWarmupPayload struct {
	Reports []string `json:"reports,omitempty"`
}

// StockScanPayload configures a shortage scan.
type StockScanPayload struct {
	Threshold int64 `json:"threshold"`
}

// NewReportsWarmupTask constructs the warmup task.
func NewReportsWarmupTask(payload ReportsWarmupPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskReportsWarmup, data), nil
}

// NewStockScanTask constructs the shortage scan task.
func NewStockScanTask(payload StockScanPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskStockScan, data), nil
}

// EnqueueReportsWarmup submits a warmup job.
func (c *Client) EnqueueReportsWarmup(ctx context.Context, payload ReportsWarmupPayload) (*asynq.TaskInfo, error) {
	task, err := NewReportsWarmupTask(payload)
	if err != nil {
		return nil, err
	}
	return c.client.EnqueueContext(ctx, task, asynq.Queue(QueueDefault))
}

// EnqueueStockScan submits a shortage scan job.
func (c *Client) EnqueueStockScan(ctx context.Context, payload StockScanPayload) (*asynq.TaskInfo, error) {
	task, err := NewStockScanTask(payload)
	if err != nil {
		return nil, err
	}
	return c.client.EnqueueContext(ctx, task, asynq.Queue(QueueDefault))
}
