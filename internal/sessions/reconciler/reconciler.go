// Package reconciler runs the daily sweep that closes every session
// still open at the configured wall-clock time. The sweep is a single
// bulk write; students who never badged out are stamped with the sweep
// time as their exit.
package reconciler

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"campusgate/internal/sessions/service"
	"campusgate/pkg/logger"
)

type Reconciler struct {
	sessions service.SessionService
	log      *logger.Logger
	at       clockTime
	loc      *time.Location

	started  atomic.Bool
	stopOnce sync.Once
	stop     chan struct{}
	done     chan struct{}
}

type clockTime struct {
	hour   int
	minute int
}

// New builds a reconciler firing daily at the given HH:MM wall-clock
// time in the given timezone name ("Local" for the host zone).
func New(sessions service.SessionService, log *logger.Logger, at string, timezone string) (*Reconciler, error) {
	var ct clockTime
	if _, err := fmt.Sscanf(at, "%d:%d", &ct.hour, &ct.minute); err != nil {
		return nil, fmt.Errorf("invalid auto-close time %q: %w", at, err)
	}
	if ct.hour < 0 || ct.hour > 23 || ct.minute < 0 || ct.minute > 59 {
		return nil, fmt.Errorf("auto-close time %q out of range", at)
	}

	loc, err := time.LoadLocation(timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid auto-close timezone %q: %w", timezone, err)
	}

	return &Reconciler{
		sessions: sessions,
		log:      log,
		at:       ct,
		loc:      loc,
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}, nil
}

// Start launches the daily loop. It returns immediately; the loop runs
// until Stop is called or the context is cancelled.
func (r *Reconciler) Start(ctx context.Context) {
	if !r.started.CompareAndSwap(false, true) {
		return
	}
	go r.run(ctx)
}

// Stop halts the loop and waits for it to drain. Safe to call more than
// once, and a no-op when the loop was never started.
func (r *Reconciler) Stop() {
	r.stopOnce.Do(func() {
		close(r.stop)
	})
	if !r.started.Load() {
		return
	}
	<-r.done
}

func (r *Reconciler) run(ctx context.Context) {
	defer close(r.done)

	for {
		next := r.nextFiring(time.Now().In(r.loc))
		r.log.Info("Auto-close sweep scheduled", "next_firing", next)

		timer := time.NewTimer(time.Until(next))
		select {
		case <-timer.C:
			r.sweep(ctx)
		case <-ctx.Done():
			timer.Stop()
			return
		case <-r.stop:
			timer.Stop()
			return
		}
	}
}

// sweep closes everything open. Errors are logged only; a failed sweep
// never affects the next firing.
func (r *Reconciler) sweep(ctx context.Context) {
	closed, err := r.sessions.CloseAllOpen(ctx)
	if err != nil {
		r.log.Error("Auto-close sweep failed", "error", err)
		return
	}
	r.log.Info("Auto-close sweep completed", "sessions_closed", closed)
}

// nextFiring returns the next occurrence of the configured wall-clock
// time strictly after now, in the reconciler's timezone.
func (r *Reconciler) nextFiring(now time.Time) time.Time {
	next := time.Date(now.Year(), now.Month(), now.Day(), r.at.hour, r.at.minute, 0, 0, r.loc)
	if !next.After(now) {
		next = next.AddDate(0, 0, 1)
	}
	return next
}
