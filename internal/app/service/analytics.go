package service

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"social-search-service/internal/domain"
)

const defaultSinkBuffer = 256

// appendTimeout bounds each log write so a slow store cannot stall the
// drain loop indefinitely.
const appendTimeout = 5 * time.Second

// AnalyticsSink decouples search-log writes from the request path. Record
// never blocks and never fails the caller; logs queue onto a buffered
// channel and a single worker drains them to the store. When the buffer is
// full the log is dropped with a warning.
type AnalyticsSink struct {
	store  domain.SearchLogStore
	logger *zap.Logger

	queue chan *domain.SearchLog
	done  chan struct{}
	wg    sync.WaitGroup
	once  sync.Once
}

// NewAnalyticsSink starts the drain worker immediately. bufferSize <= 0
// falls back to a sane default.
func NewAnalyticsSink(store domain.SearchLogStore, logger *zap.Logger, bufferSize int) *AnalyticsSink {
	if bufferSize <= 0 {
		bufferSize = defaultSinkBuffer
	}
	s := &AnalyticsSink{
		store:  store,
		logger: logger,
		queue:  make(chan *domain.SearchLog, bufferSize),
		done:   make(chan struct{}),
	}
	s.wg.Add(1)
	go s.drain()
	return s
}

// Record enqueues one search log. It returns immediately in every case:
// buffer full or sink closed means the log is dropped.
func (s *AnalyticsSink) Record(log *domain.SearchLog) {
	select {
	case <-s.done:
		return
	default:
	}
	select {
	case s.queue <- log:
	default:
		s.logger.Warn("analytics buffer full, dropping search log",
			zap.Int64("requester_id", log.RequesterID))
	}
}

// Close stops accepting logs, flushes whatever is already queued, and
// waits for the worker to exit. Safe to call more than once.
func (s *AnalyticsSink) Close() {
	s.once.Do(func() {
		close(s.done)
	})
	s.wg.Wait()
}

func (s *AnalyticsSink) drain() {
	defer s.wg.Done()
	for {
		select {
		case log := <-s.queue:
			s.append(log)
		case <-s.done:
			// Flush the backlog, then exit.
			for {
				select {
				case log := <-s.queue:
					s.append(log)
				default:
					return
				}
			}
		}
	}
}

func (s *AnalyticsSink) append(log *domain.SearchLog) {
	ctx, cancel := context.WithTimeout(context.Background(), appendTimeout)
	defer cancel()

	if err := s.store.Append(ctx, log); err != nil {
		s.logger.Warn("search log write failed",
			zap.Int64("requester_id", log.RequesterID),
			zap.Error(err))
	}
}
