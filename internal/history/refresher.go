package history

import (
	"context"
	"sync"

	"github.com/dermatch/dermatch-go/internal/domain"
	"github.com/dermatch/dermatch-go/internal/identity"
	apperrors "github.com/dermatch/dermatch-go/internal/pkg/errors"
	"github.com/dermatch/dermatch-go/internal/pkg/logger"
	"github.com/dermatch/dermatch-go/internal/signal"
)

// Refresher keeps a history list current by re-fetching whenever something
// signals that the server-side list changed. Triggers are level-triggered:
// any number of triggers while a fetch is in flight collapse into one
// follow-up fetch, and a trigger supersedes the in-flight fetch so a stale
// result is never delivered.
type Refresher struct {
	log        *logger.Logger
	manager    *Manager
	identityFn func() identity.Identity
	onResult   func([]domain.HistoryRecord)

	trigger chan struct{}

	mu        sync.Mutex
	cancelRun context.CancelFunc

	rootCancel context.CancelFunc
	done       chan struct{}
}

// NewRefresher starts the refresh loop. identityFn is consulted at fetch
// time so a login or logout between trigger and fetch is picked up.
// onResult receives every list that survives supersession, including empty
// ones.
func NewRefresher(log *logger.Logger, manager *Manager, identityFn func() identity.Identity, onResult func([]domain.HistoryRecord)) (*Refresher, error) {
	if log == nil {
		return nil, apperrors.New(apperrors.KindValidation, "logger required")
	}
	if manager == nil {
		return nil, apperrors.New(apperrors.KindValidation, "history manager required")
	}
	if identityFn == nil {
		return nil, apperrors.New(apperrors.KindValidation, "identity source required")
	}
	if onResult == nil {
		return nil, apperrors.New(apperrors.KindValidation, "result sink required")
	}
	root, rootCancel := context.WithCancel(context.Background())
	r := &Refresher{
		log:        log.With("component", "HistoryRefresher"),
		manager:    manager,
		identityFn: identityFn,
		onResult:   onResult,
		trigger:    make(chan struct{}, 1),
		rootCancel: rootCancel,
		done:       make(chan struct{}),
	}
	go r.loop(root)
	return r, nil
}

// Trigger requests a refresh. It never blocks: if a refresh is already
// pending the call is absorbed, and if one is in flight it is canceled so
// the follow-up fetch observes the newer state.
func (r *Refresher) Trigger() {
	r.cancelInFlight()
	select {
	case r.trigger <- struct{}{}:
	default:
	}
}

// BindBus wires the refresher to completion events. Returns an unsubscribe
// func.
func (r *Refresher) BindBus(bus *signal.Bus) func() {
	if bus == nil {
		return func() {}
	}
	return bus.Subscribe(func(signal.QuizCompleted) {
		r.Trigger()
	})
}

// Stop cancels any in-flight fetch and waits for the loop to exit. Safe to
// call once; Trigger after Stop is a no-op.
func (r *Refresher) Stop() {
	r.rootCancel()
	r.cancelInFlight()
	<-r.done
}

func (r *Refresher) loop(root context.Context) {
	defer close(r.done)
	for {
		select {
		case <-root.Done():
			return
		case <-r.trigger:
		}

		runCtx, cancel := context.WithCancel(root)
		r.setInFlight(cancel)

		records, err := r.manager.List(runCtx, r.identityFn())

		r.setInFlight(nil)
		superseded := runCtx.Err() != nil
		cancel()

		if superseded {
			// A newer trigger (or Stop) owns the next emission.
			continue
		}
		if err != nil {
			r.log.Warn("history refresh failed", "error", err)
			continue
		}
		r.onResult(records)
	}
}

func (r *Refresher) setInFlight(cancel context.CancelFunc) {
	r.mu.Lock()
	r.cancelRun = cancel
	r.mu.Unlock()
}

func (r *Refresher) cancelInFlight() {
	r.mu.Lock()
	cancel := r.cancelRun
	r.mu.Unlock()
	if cancel != nil {
		cancel()
	}
}
