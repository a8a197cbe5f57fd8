package jobs

import (
	"context"

	"github.com/wonny/trendscore/pkg/logger"
)

// StaleCleaner drops expired entries from an in-process cache
type StaleCleaner interface {
	CleanStale() int
}

// CacheCleanupJob evicts expired runs from the in-memory result cache.
// Not registered when Redis holds the cache; Redis expires keys itself.
type CacheCleanupJob struct {
	cache  StaleCleaner
	logger *logger.Logger
}

// NewCacheCleanupJob creates a new cache cleanup job
func NewCacheCleanupJob(cache StaleCleaner, log *logger.Logger) *CacheCleanupJob {
	return &CacheCleanupJob{
		cache:  cache,
		logger: log,
	}
}

// Name returns the job name
func (j *CacheCleanupJob) Name() string {
	return "cache_cleanup"
}

// Schedule returns the cron schedule (every 5 minutes)
func (j *CacheCleanupJob) Schedule() string {
	return "0 */5 * * * *"
}

// Run executes the cache cleanup
func (j *CacheCleanupJob) Run(_ context.Context) error {
	j.logger.Debug("Starting scheduled cache cleanup")

	count := j.cache.CleanStale()

	if count > 0 {
		j.logger.WithField("removed", count).Info("Cache cleanup completed")
	}

	return nil
}
