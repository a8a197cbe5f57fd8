package jobs

import (
	"context"
	"fmt"

	"github.com/wonny/trendscore/internal/contracts"
	"github.com/wonny/trendscore/internal/pipeline"
	"github.com/wonny/trendscore/pkg/logger"
)

// Runner is the part of the pipeline the warm-up job drives
type Runner interface {
	Defaults() pipeline.RunParams
	Invalidate(ctx context.Context) (int, error)
	Run(ctx context.Context, params pipeline.RunParams) (*contracts.RankedTable, error)
}

// WarmupJob clears cached runs and recomputes the default ranking so the
// first request after the close is served from cache
// ⭐ SSOT: 캐시 워밍 스케줄은 이 Job에서만
type WarmupJob struct {
	runner   Runner
	schedule string
	logger   *logger.Logger
}

// NewWarmupJob creates a new warm-up job
func NewWarmupJob(runner Runner, schedule string, log *logger.Logger) *WarmupJob {
	return &WarmupJob{
		runner:   runner,
		schedule: schedule,
		logger:   log.WithComponent("warmup_job"),
	}
}

// Name returns the job name
func (j *WarmupJob) Name() string {
	return "ranking_warmup"
}

// Schedule returns the cron schedule (weekdays after the US close by default)
func (j *WarmupJob) Schedule() string {
	return j.schedule
}

// Run invalidates and re-runs the default parameters
func (j *WarmupJob) Run(ctx context.Context) error {
	j.logger.Info("Starting scheduled ranking warm-up")

	deleted, err := j.runner.Invalidate(ctx)
	if err != nil {
		return fmt.Errorf("invalidate: %w", err)
	}

	params := j.runner.Defaults()
	params.Refresh = true
	table, err := j.runner.Run(ctx, params)
	if err != nil {
		return fmt.Errorf("run %s: %w", params.Variant, err)
	}

	j.logger.WithFields(map[string]interface{}{
		"deleted":  deleted,
		"run_id":   table.RunID,
		"universe": table.Stats.UniverseSize,
		"rows":     len(table.Rows),
	}).Info("Ranking warm-up completed")

	return nil
}
