// Package job provides background job schedulers.
package job

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"social-search-service/internal/domain"
	"social-search-service/pkg/locker"
)

// retentionLockKey coordinates pruning across instances so only one runs
// per interval.
const retentionLockKey = "analytics:retention:lock"

// pruneTimeout bounds one prune pass.
const pruneTimeout = 2 * time.Minute

// RetentionScheduler periodically prunes expired search logs with
// distributed locking so only one instance executes each pass.
type RetentionScheduler struct {
	store     domain.SearchLogStore
	interval  time.Duration
	retention time.Duration
	logger    *zap.Logger
	locker    locker.DistributedLocker

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// RetentionConfig holds retention scheduler configuration.
type RetentionConfig struct {
	Interval  time.Duration
	Retention time.Duration
}

// NewRetentionScheduler creates a scheduler that prunes logs older than
// cfg.Retention every cfg.Interval.
func NewRetentionScheduler(
	store domain.SearchLogStore,
	cfg RetentionConfig,
	logger *zap.Logger,
	locker locker.DistributedLocker,
) *RetentionScheduler {
	return &RetentionScheduler{
		store:     store,
		interval:  cfg.Interval,
		retention: cfg.Retention,
		logger:    logger,
		locker:    locker,
	}
}

// Start begins the background prune job.
func (s *RetentionScheduler) Start() {
	s.ctx, s.cancel = context.WithCancel(context.Background())

	s.logger.Info("starting retention scheduler",
		zap.Duration("interval", s.interval),
		zap.Duration("retention", s.retention),
	)

	s.wg.Add(1)
	go s.run()
}

// Stop gracefully stops the scheduler.
func (s *RetentionScheduler) Stop() {
	s.logger.Info("stopping retention scheduler")
	s.cancel()
	s.wg.Wait()
	s.logger.Info("retention scheduler stopped")
}

func (s *RetentionScheduler) run() {
	defer s.wg.Done()

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-s.ctx.Done():
			return
		case <-ticker.C:
			s.executePrune()
		}
	}
}

// executePrune runs one prune pass under the distributed lock.
//
// Lock TTL = interval (cooldown model): a successful pass holds the lock
// for the full interval so other instances skip it; a failed pass releases
// the lock immediately so another instance can retry.
func (s *RetentionScheduler) executePrune() {
	acquired, err := s.locker.Acquire(s.ctx, retentionLockKey, s.interval)
	if err != nil {
		s.logger.Error("failed to acquire distributed lock", zap.Error(err))

		return
	}
	if !acquired {
		s.logger.Debug("another instance is pruning, skipping execution")

		return
	}

	ctx, cancel := context.WithTimeout(s.ctx, pruneTimeout)
	defer cancel()

	removed, err := s.store.Prune(ctx, s.retention)
	if err != nil {
		if relErr := s.locker.Release(s.ctx, retentionLockKey); relErr != nil {
			s.logger.Error("failed to release lock after prune error", zap.Error(relErr))
		}
		s.logger.Warn("search log prune failed, lock released for retry", zap.Error(err))

		return
	}

	s.logger.Info("search log prune completed, lock held for cooldown",
		zap.Int64("removed", removed),
		zap.Duration("cooldown", s.interval),
	)
}
