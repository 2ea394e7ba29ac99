// Package sync sequences pull→merge→push attempts against the remote
// mirror and decides when they happen: process start, foreground regain,
// a recurring ticker, manual refresh, and after every local mutation.
//
// All attempts run on one worker goroutine. A trigger that arrives while an
// attempt is in flight parks in a size-1 channel, so at most one follow-up
// attempt is queued and two pulls can never overlap for the same sync code.
package sync

import (
	"context"
	"slices"
	"sync/atomic"
	"time"

	"github.com/pantrysync/restock/internal/client/merge"
	"github.com/pantrysync/restock/internal/client/mirror"
	"github.com/pantrysync/restock/internal/client/models"
	"github.com/pantrysync/restock/internal/logging"
)

// Store is the slice of the Item Store the orchestrator needs. UpdateItems
// must run fn and persist its result as one atomic cycle against all other
// writers of the collection.
type Store interface {
	Items(ctx context.Context) []models.Item
	UpdateItems(ctx context.Context, fn func(items []models.Item) ([]models.Item, bool)) ([]models.Item, error)
	SyncCode(ctx context.Context) string
}

// Mirror is the remote side of a sync attempt. *mirror.Client implements it.
type Mirror interface {
	Pull(ctx context.Context, code string) ([]models.Item, error)
	Push(ctx context.Context, code string, items []models.Item) bool
}

// Orchestrator owns the sync loop for one device.
type Orchestrator struct {
	store    Store
	mirror   Mirror
	logger   logging.Logger
	interval time.Duration

	trigger    chan struct{}
	foreground atomic.Bool
	state      atomic.Value // models.SyncState

	// onChange, when set, is invoked from the worker goroutine on every
	// state transition.
	onChange func(models.SyncState)
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithStateCallback registers a callback for sync-state transitions.
func WithStateCallback(fn func(models.SyncState)) Option {
	return func(o *Orchestrator) { o.onChange = fn }
}

// New builds an Orchestrator. interval is the background ticker period;
// zero selects 30s.
func New(store Store, mirror Mirror, logger logging.Logger, interval time.Duration, opts ...Option) *Orchestrator {
	if interval <= 0 {
		interval = 30 * time.Second
	}
	o := &Orchestrator{
		store:    store,
		mirror:   mirror,
		logger:   logger.With("module", "sync"),
		interval: interval,
		trigger:  make(chan struct{}, 1),
	}
	o.state.Store(models.SyncSynced)
	o.foreground.Store(true)
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// State returns the current user-visible sync state.
func (o *Orchestrator) State() models.SyncState {
	return o.state.Load().(models.SyncState)
}

// Notify requests a sync attempt. It never blocks: if an identical request
// is already queued, the trigger is dropped. Call it after every local
// mutation, after the sync code is set, and for manual refresh.
func (o *Orchestrator) Notify() {
	select {
	case o.trigger <- struct{}{}:
	default:
	}
}

// SetForeground records whether the app is foreground-visible. The ticker
// only fires while foreground, and regaining foreground triggers an
// immediate attempt, matching the behavior of a page visibility handler.
func (o *Orchestrator) SetForeground(visible bool) {
	was := o.foreground.Swap(visible)
	if visible && !was {
		o.Notify()
	}
}

// Run executes the sync loop until ctx is cancelled. One attempt runs at
// startup when a sync code is already configured.
func (o *Orchestrator) Run(ctx context.Context) {
	ticker := time.NewTicker(o.interval)
	defer ticker.Stop()

	if o.store.SyncCode(ctx) != "" {
		o.syncOnce(ctx)
	}

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if o.foreground.Load() {
				o.syncOnce(ctx)
			}
		case <-o.trigger:
			o.syncOnce(ctx)
		}
	}
}

func (o *Orchestrator) setState(s models.SyncState) {
	o.state.Store(s)
	if o.onChange != nil {
		o.onChange(s)
	}
}

// syncOnce performs one pull→merge→push attempt. It is only ever called
// from the Run goroutine (or directly in tests), which is what serializes
// attempts.
func (o *Orchestrator) syncOnce(ctx context.Context) {
	code := o.store.SyncCode(ctx)
	if code == "" {
		return
	}

	o.setState(models.SyncSyncing)

	remote, err := o.mirror.Pull(ctx, code)

	switch {
	case err == nil:
		// The local snapshot is read under the store's write lock after the
		// pull returns, so a mutation that landed while the pull was in
		// flight is part of the merge instead of being overwritten by it.
		// Persisting inside the same cycle means a crash here still leaves
		// the device with the merged state.
		var merged []models.Item
		if _, err := o.store.UpdateItems(ctx, func(local []models.Item) ([]models.Item, bool) {
			merged = merge.Merge(local, remote)
			return merged, true
		}); err != nil {
			o.logger.Error(ctx, "persisting merged collection", "error", err)
		}
		if !slices.Equal(merged, remote) {
			if !o.mirror.Push(ctx, code, merged) {
				o.logger.Warn(ctx, "push after merge failed", "code", code)
			}
		}
		o.setState(models.SyncSynced)

	case mirror.IsNotFound(err):
		// Namespace never pushed: seed the remote from local.
		if o.mirror.Push(ctx, code, o.store.Items(ctx)) {
			o.setState(models.SyncSynced)
		} else {
			o.setState(models.SyncError)
		}

	default:
		// Transport failure. Do not push: a flaky network must never let
		// a stale local snapshot clobber a healthy remote.
		o.logger.Warn(ctx, "pull failed", "error", err)
		o.setState(models.SyncError)
	}
}
