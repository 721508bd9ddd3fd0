// Package worker runs the console's background polling.
package worker

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"smartdeals/internal/domain"
	"smartdeals/internal/domain/entity"
	"smartdeals/internal/domain/value"
	"smartdeals/pkg/contextx"
	"smartdeals/pkg/errcodes"
	"smartdeals/pkg/logx"
)

var logger = contextx.LoggerFromContextOrDefault //nolint:gochecknoglobals

type poller interface {
	Poll(ctx context.Context) ([]entity.Deal, error)
}

// Refresher reloads deals and runs on an interval and sends every pending deal
// it has not seen before. The first successful poll only records what is
// already pending.
type Refresher struct {
	console  poller
	deals    chan<- entity.Deal
	interval time.Duration

	// Control fields
	mu         sync.Mutex
	cancelFunc context.CancelFunc
	isRunning  bool
	wg         sync.WaitGroup

	seenMu sync.Mutex
	seen   map[value.DealID]struct{}
	primed bool
}

func NewRefresher(console poller, deals chan<- entity.Deal, interval time.Duration) *Refresher {
	return &Refresher{
		console:  console,
		deals:    deals,
		interval: interval,
		seen:     make(map[value.DealID]struct{}),
	}
}

func (w *Refresher) Start(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.isRunning {
		return errors.New("refresher is already running")
	}

	runCtx, cancel := context.WithCancel(ctx)
	w.cancelFunc = cancel
	w.isRunning = true

	w.wg.Add(1)

	go func() {
		defer w.wg.Done()
		defer func() {
			w.mu.Lock()
			w.isRunning = false
			w.cancelFunc = nil
			w.mu.Unlock()
		}()

		if err := w.Run(runCtx); err != nil && !errors.Is(err, context.Canceled) {
			logger(ctx).Error("refresher stopped", logx.Error(err))
		}
	}()

	return nil
}

func (w *Refresher) Stop() {
	w.mu.Lock()

	if !w.isRunning {
		w.mu.Unlock()
		return
	}

	if w.cancelFunc != nil {
		w.cancelFunc()
	}
	w.mu.Unlock()

	w.wg.Wait()
}

func (w *Refresher) IsRunning() bool {
	w.mu.Lock()
	defer w.mu.Unlock()

	return w.isRunning
}

func (w *Refresher) Run(ctx context.Context) error {
	logger(ctx).Info("refresher started", slog.Duration("interval", w.interval))

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		if err := w.Tick(ctx); err != nil {
			return err
		}

		select {
		case <-ctx.Done():
			logger(ctx).Info("refresher stopped")
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// Tick polls once. Poll failures are logged, not returned; only a cancelled
// context stops the loop.
func (w *Refresher) Tick(ctx context.Context) error {
	pending, err := w.console.Poll(ctx)

	switch {
	case domain.HasCode(err, errcodes.AccessTokenExpired):
		logger(ctx).Debug("refresher idle: no session")
		return nil
	case err != nil:
		logger(ctx).Warn("poll failed", logx.Error(err))
	}

	fresh := w.fresh(pending, err == nil)

	// Without a notifier the refresher only keeps the panes current.
	if w.deals == nil {
		return nil
	}

	for _, deal := range fresh {
		select {
		case w.deals <- deal:
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	return nil
}

// fresh returns the deals not seen before and marks them seen. Nothing is
// returned until a poll has succeeded once.
func (w *Refresher) fresh(pending []entity.Deal, succeeded bool) []entity.Deal {
	w.seenMu.Lock()
	defer w.seenMu.Unlock()

	primed := w.primed
	w.primed = w.primed || succeeded

	var out []entity.Deal

	for _, deal := range pending {
		if _, ok := w.seen[deal.ID]; ok {
			continue
		}

		w.seen[deal.ID] = struct{}{}

		if primed {
			out = append(out, deal)
		}
	}

	return out
}

// Forget lets a deal be announced again, e.g. after its notification failed.
func (w *Refresher) Forget(id value.DealID) {
	w.seenMu.Lock()
	defer w.seenMu.Unlock()

	delete(w.seen, id)
}
