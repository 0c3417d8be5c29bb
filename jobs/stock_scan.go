package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"

	"github.com/hibiken/asynq"

	jobmetrics "github.com/caravel-dist/caravel-dist/internal/jobs"
	"github.com/caravel-dist/caravel-dist/internal/reports"
)

// StockScanJob walks the stock report and flags products whose available
// stock fell to or below the configured threshold. It only observes; no
// movement is ever written by a scan.
type StockScanJob struct {
	Reports *reports.Service
	Logger  *slog.Logger
	Metrics *jobmetrics.Metrics
}

func NewStockScanJob(reportsSvc *reports.Service, logger *slog.Logger, metrics *jobmetrics.Metrics) *StockScanJob {
	return &StockScanJob{Reports: reportsSvc, Logger: logger, Metrics: metrics}
}

// Handle processes shortage scan tasks.
func (j *StockScanJob) Handle(ctx context.Context, t *asynq.Task) error {
	if j == nil || j.Reports == nil {
		return errors.New("stock scan: handler not configured")
	}
	var payload StockScanPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}

	tracker := j.metrics().Track(TaskStockScan)
	err := j.scan(ctx, payload.Threshold)
	return tracker.End(err)
}

func (j *StockScanJob) scan(ctx context.Context, threshold int64) error {
	rows, err := j.Reports.StockLevels(ctx)
	if err != nil {
		return err
	}

	short := 0
	for _, row := range rows {
		if row.AvailableStock > threshold {
			continue
		}
		short++
		j.logger().Warn("stock shortage",
			slog.Int64("product_id", row.ProductID),
			slog.String("product", row.ProductName),
			slog.Int64("total", row.TotalStock),
			slog.Int64("reserved", row.ReservedStock),
			slog.Int64("available", row.AvailableStock),
		)
	}
	j.metrics().AddShortages(short)
	if short == 0 {
		j.logger().Info("stock scan clean", slog.Int("products", len(rows)))
	}
	return nil
}

func (j *StockScanJob) metrics() *jobmetrics.Metrics {
	if j.Metrics != nil {
		return j.Metrics
	}
	return defaultJobMetrics
}

func (j *StockScanJob) logger() *slog.Logger {
	if j.Logger != nil {
		return j.Logger
	}
	return slog.Default()
}
