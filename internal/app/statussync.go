package app

import (
	"context"
	"log/slog"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/sony/gobreaker/v2"

	"github.com/zaidrahmann/sportz-websockets/internal/domain"
	"github.com/zaidrahmann/sportz-websockets/internal/metrics"
	"github.com/zaidrahmann/sportz-websockets/internal/platform/logging"
)

const DefaultStatusSyncInterval = 60 * time.Second

// StatusSyncScheduler periodically reconciles each active match's stored
// status with the status derived from its time window. Finished matches
// never re-enter the active set, so they are reconciled at most once.
type StatusSyncScheduler struct {
	matches     domain.MatchRepository
	broadcaster domain.Broadcaster
	clock       clockwork.Clock
	interval    time.Duration
	breaker     *gobreaker.CircuitBreaker[[]domain.Match]

	stopCh chan struct{}
	doneCh chan struct{}
}

func NewStatusSyncScheduler(matches domain.MatchRepository, broadcaster domain.Broadcaster, clock clockwork.Clock, interval time.Duration) *StatusSyncScheduler {
	if interval <= 0 {
		interval = DefaultStatusSyncInterval
	}

	breaker := gobreaker.NewCircuitBreaker[[]domain.Match](gobreaker.Settings{
		Name:    "status-sync-list-active",
		Timeout: 30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 3
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			slog.Warn("status sync breaker state change", "breaker", name, "from", from.String(), "to", to.String())
		},
	})

	return &StatusSyncScheduler{
		matches:     matches,
		broadcaster: broadcaster,
		clock:       clock,
		interval:    interval,
		breaker:     breaker,
		stopCh:      make(chan struct{}),
		doneCh:      make(chan struct{}),
	}
}

// Start runs the tick loop until ctx is cancelled or Stop is called.
func (s *StatusSyncScheduler) Start(ctx context.Context) {
	go s.run(ctx)
}

// Stop halts the loop and waits for an in-flight tick to finish.
func (s *StatusSyncScheduler) Stop() {
	close(s.stopCh)
	<-s.doneCh
}

func (s *StatusSyncScheduler) run(ctx context.Context) {
	defer close(s.doneCh)

	slog.Info("status sync scheduler started", "interval", s.interval)

	ticker := s.clock.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.Chan():
			s.tick(ctx)
		case <-ctx.Done():
			slog.Info("status sync scheduler stopped", "reason", "context cancelled")
			return
		case <-s.stopCh:
			slog.Info("status sync scheduler stopped", "reason", "stop requested")
			return
		}
	}
}

// tick reconciles one pass over the active set. Errors on a single
// match are logged and skipped so one bad row cannot stall the rest.
func (s *StatusSyncScheduler) tick(ctx context.Context) {
	metrics.StatusSyncTicksTotal.Inc()
	started := s.clock.Now()
	defer func() {
		metrics.StatusSyncTickDuration.Observe(s.clock.Since(started).Seconds())
	}()

	tickID := logging.NewRequestID()
	ctx = logging.WithRequestID(ctx, tickID)
	log := slog.With("request_id", tickID)

	active, err := s.breaker.Execute(func() ([]domain.Match, error) {
		return s.matches.ListActive(ctx)
	})
	if err != nil {
		metrics.StatusSyncErrorsTotal.Inc()
		log.Error("status sync: listing active matches failed", "error", err)
		return
	}

	now := s.clock.Now()
	transitions := 0

	for i := range active {
		match := &active[i]

		resolved, ok := domain.ResolveStatus(match.StartTime, match.EndTime, now)
		if !ok || resolved == match.Status {
			continue
		}

		updated, err := s.matches.UpdateStatus(ctx, match.ID, resolved)
		if err != nil {
			metrics.StatusSyncErrorsTotal.Inc()
			log.Error("status sync: persisting status failed",
				"match_id", match.ID,
				"from", match.Status,
				"to", resolved,
				"error", err)
			continue
		}

		metrics.StatusTransitionsTotal.WithLabelValues(string(resolved)).Inc()
		transitions++

		log.Info("match status transitioned",
			"match_id", updated.ID,
			"from", match.Status,
			"to", updated.Status)

		s.broadcaster.BroadcastGlobal(domain.StatusChangeEvent(*updated))
	}

	if transitions > 0 {
		log.Info("status sync tick complete", "active", len(active), "transitions", transitions)
	}
}
