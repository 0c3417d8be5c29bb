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

var defaultJobMetrics = jobmetrics.NewMetrics(nil)

// ReportsWarmupJob pre-populates the report caches so the first dashboard
// request after an invalidation does not pay the query cost.
type ReportsWarmupJob struct {
	Reports *reports.Service
	Logger  *slog.Logger
	Metrics *jobmetrics.Metrics
}

func NewReportsWarmupJob(reportsSvc *reports.Service, logger *slog.Logger, metrics *jobmetrics.Metrics) *ReportsWarmupJob {
	return &ReportsWarmupJob{Reports: reportsSvc, Logger: logger, Metrics: metrics}
}

// Handle processes warmup tasks.
func (j *ReportsWarmupJob) Handle(ctx context.Context, t *asynq.Task) error {
	if j == nil || j.Reports == nil {
		return errors.New("reports warmup: handler not configured")
	}
	var payload ReportsWarmupPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}

	tracker := j.metrics().Track(TaskReportsWarmup)
	err := j.warm(ctx, payload.Reports)
	return tracker.End(err)
}

func (j *ReportsWarmupJob) warm(ctx context.Context, names []string) error {
	wanted := func(name string) bool {
		if len(names) == 0 {
			return true
		}
		for _, n := range names {
			if n == name {
				return true
			}
		}
		return false
	}

	var firstErr error
	note := func(name string, err error) {
		if err == nil {
			return
		}
		j.logger().Warn("report warmup failed", slog.String("report", name), slog.Any("error", err))
		if firstErr == nil {
			firstErr = err
		}
	}

	if wanted("dashboard") {
		_, err := j.Reports.Dashboard(ctx)
		note("dashboard", err)
	}
	if wanted("customers") {
		_, err := j.Reports.CustomerRevenue(ctx)
		note("customers", err)
	}
	if wanted("stock") {
		_, err := j.Reports.StockLevels(ctx)
		note("stock", err)
	}
	return firstErr
}

func (j *ReportsWarmupJob) metrics() *jobmetrics.Metrics {
	if j.Metrics != nil {
		return j.Metrics
	}
	return defaultJobMetrics
}

func (j *ReportsWarmupJob) logger() *slog.Logger {
	if j.Logger != nil {
		return j.Logger
	}
	return slog.Default()
}
