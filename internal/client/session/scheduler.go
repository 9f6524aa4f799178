package session

import (
	"context"
	"sync"
	"time"

	"github.com/levelquest/sessiongate/internal/logging"
)

// Default background periods.
const (
	DefaultRenewInterval = 50 * time.Minute
	DefaultSyncInterval  = 5 * time.Minute
)

// Scheduler owns the two recurring background jobs of an authenticated
// session: silent token renewal and profile re-sync. Both run off a single
// goroutine and a single context, so stopping one always stops the other.
type Scheduler struct {
	renewInterval time.Duration
	syncInterval  time.Duration

	renew func(context.Context)
	sync  func(context.Context)
	log   logging.Logger

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

func NewScheduler(renewInterval, syncInterval time.Duration, renew, sync func(context.Context), log logging.Logger) *Scheduler {
	if renewInterval <= 0 {
		renewInterval = DefaultRenewInterval
	}
	if syncInterval <= 0 {
		syncInterval = DefaultSyncInterval
	}
	return &Scheduler{
		renewInterval: renewInterval,
		syncInterval:  syncInterval,
		renew:         renew,
		sync:          sync,
		log:           log,
	}
}

// Start launches the timers. Starting a running scheduler is a no-op.
func (s *Scheduler) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	s.done = make(chan struct{})

	go s.run(ctx, s.done)
}

// Shutdown cancels both timers without waiting for the worker to exit.
// It is what a job itself must use when it ends the session, since waiting
// would deadlock on the job's own goroutine. Idempotent.
func (s *Scheduler) Shutdown() {
	s.mu.Lock()
	cancel := s.cancel
	s.cancel = nil
	s.mu.Unlock()

	if cancel != nil {
		cancel()
	}
}

// Stop cancels both timers and waits for the worker to exit, so no job is
// running after Stop returns. For teardown paths outside the scheduler's
// own jobs. Stopping an idle scheduler is a no-op.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	cancel := s.cancel
	done := s.done
	s.cancel = nil
	s.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	if done != nil {
		<-done
	}
}

func (s *Scheduler) run(ctx context.Context, done chan struct{}) {
	defer close(done)

	renewTicker := time.NewTicker(s.renewInterval)
	defer renewTicker.Stop()
	syncTicker := time.NewTicker(s.syncInterval)
	defer syncTicker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-renewTicker.C:
			s.log.Debug(ctx, "token renewal tick")
			s.renew(ctx)
		case <-syncTicker.C:
			s.log.Debug(ctx, "profile sync tick")
			s.sync(ctx)
		}
	}
}
