package jobs

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/trendscore/internal/contracts"
	"github.com/wonny/trendscore/internal/pipeline"
	"github.com/wonny/trendscore/pkg/logger"
)

type fakeRunner struct {
	invalidated int
	runs        []pipeline.RunParams
	runErr      error
}

func (r *fakeRunner) Defaults() pipeline.RunParams {
	return pipeline.RunParams{Variant: contracts.VariantMomentum, Window: 20, BatchSize: 100}
}

func (r *fakeRunner) Invalidate(_ context.Context) (int, error) {
	r.invalidated++
	return 2, nil
}

func (r *fakeRunner) Run(_ context.Context, params pipeline.RunParams) (*contracts.RankedTable, error) {
	r.runs = append(r.runs, params)
	if r.runErr != nil {
		return nil, r.runErr
	}
	return &contracts.RankedTable{RunID: "run-1"}, nil
}

func TestWarmupJob(t *testing.T) {
	runner := &fakeRunner{}
	job := NewWarmupJob(runner, "0 30 22 * * 1-5", logger.Nop())

	assert.Equal(t, "ranking_warmup", job.Name())
	assert.Equal(t, "0 30 22 * * 1-5", job.Schedule())

	require.NoError(t, job.Run(context.Background()))
	assert.Equal(t, 1, runner.invalidated)
	require.Len(t, runner.runs, 1)
	assert.True(t, runner.runs[0].Refresh)
	assert.Equal(t, contracts.VariantMomentum, runner.runs[0].Variant)
}

func TestWarmupJob_PropagatesRunError(t *testing.T) {
	runner := &fakeRunner{runErr: contracts.ErrNoPriceData}
	err := NewWarmupJob(runner, "@daily", logger.Nop()).Run(context.Background())

	require.Error(t, err)
	assert.True(t, errors.Is(err, contracts.ErrNoPriceData))
}

type countingCleaner struct{ n int }

func (c *countingCleaner) CleanStale() int { return c.n }

func TestCacheCleanupJob(t *testing.T) {
	job := NewCacheCleanupJob(&countingCleaner{n: 3}, logger.Nop())
	assert.Equal(t, "cache_cleanup", job.Name())
	assert.NoError(t, job.Run(context.Background()))
}
