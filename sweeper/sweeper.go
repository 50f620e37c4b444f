// sweeper/sweeper.go
package sweeper

import (
	"context"
	"sync/atomic"
	"time"

	"uniloans/db"
	"uniloans/realtime"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Store is the slice of the repo the sweeper needs.
type Store interface {
	SweepOverdue(ctx context.Context) (*db.SweepResult, error)
}

// Sweeper periodically moves overdue active loans to pendiente and
// broadcasts the result. Runs are single-flight: a tick that fires
// while the previous run is still in progress is skipped, and a failed
// run is simply retried on the next tick.
type Sweeper struct {
	store    Store
	notifier realtime.Notifier
	log      *zap.Logger

	interval     time.Duration
	initialDelay time.Duration
	runTimeout   time.Duration

	cron    *cron.Cron
	kickoff *time.Timer
	running atomic.Bool
}

func New(store Store, notifier realtime.Notifier, log *zap.Logger, interval, initialDelay time.Duration) *Sweeper {
	if log == nil {
		log = zap.NewNop()
	}
	if notifier == nil {
		notifier = realtime.NopNotifier{}
	}
	if interval <= 0 {
		interval = time.Minute
	}
	return &Sweeper{
		store:        store,
		notifier:     notifier,
		log:          log,
		interval:     interval,
		initialDelay: initialDelay,
		runTimeout:   30 * time.Second,
	}
}

// Start schedules the periodic sweep plus one early run shortly after
// boot, so a restarted process catches up without waiting a full tick.
func (s *Sweeper) Start() {
	s.cron = cron.New()
	if _, err := s.cron.AddFunc("@every "+s.interval.String(), s.RunOnce); err != nil {
		s.log.Error("schedule sweep", zap.Error(err))
		return
	}
	s.kickoff = time.AfterFunc(s.initialDelay, s.RunOnce)
	s.cron.Start()
	s.log.Info("sweeper started",
		zap.Duration("interval", s.interval),
		zap.Duration("initialDelay", s.initialDelay))
}

func (s *Sweeper) Stop() {
	if s.kickoff != nil {
		s.kickoff.Stop()
	}
	if s.cron != nil {
		s.cron.Stop()
	}
	s.log.Info("sweeper stopped")
}

// RunOnce executes a single sweep unless one is already in flight.
func (s *Sweeper) RunOnce() {
	if !s.running.CompareAndSwap(false, true) {
		s.log.Warn("sweep still running, skipping tick")
		return
	}
	defer s.running.Store(false)

	ctx, cancel := context.WithTimeout(context.Background(), s.runTimeout)
	defer cancel()

	res, err := s.store.SweepOverdue(ctx)
	if err != nil {
		// transient store failure: next tick retries
		s.log.Error("sweep failed", zap.Error(err))
		return
	}
	if res.Updated == 0 {
		return
	}

	s.log.Info("loans marked overdue", zap.Int("count", res.Updated))
	s.notifier.Broadcast(realtime.EventLoansSwept, map[string]any{
		"tipo":                  "automatico",
		"prestamosActualizados": res.Updated,
		"detalles":              res.Details,
	})
}
