// Package datasync loads backend resources into the shared state.
package datasync

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"smartdeals/internal/domain/entity"
	"smartdeals/internal/state"
	"smartdeals/pkg/contextx"
	"smartdeals/pkg/logx"
)

var logger = contextx.LoggerFromContextOrDefault //nolint:gochecknoglobals

type fetcher interface {
	GetConfig(ctx context.Context) (entity.ScannerConfig, error)
	ListDeals(ctx context.Context, filter entity.DealFilter) ([]entity.Deal, error)
	ListRuns(ctx context.Context) ([]entity.Run, error)
}

// Event is sent to subscribers after a resource was published or failed.
type Event struct {
	Resource state.Resource
	Err      error
}

// Report holds the outcome of every resource a sync attempted.
type Report struct {
	Errors map[state.Resource]error
}

func (r Report) OK() bool {
	return r.Err() == nil
}

// Err joins the per-resource errors in load order.
func (r Report) Err() error {
	errs := make([]error, 0, len(r.Errors))

	for _, res := range state.Resources {
		if err := r.Errors[res]; err != nil {
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}

func (r Report) Failed(res state.Resource) bool {
	return r.Errors[res] != nil
}

type Syncer struct {
	client fetcher
	state  *state.State
	group  singleflight.Group

	mu          sync.RWMutex
	subscribers []func(Event)
}

func NewSyncer(client fetcher, st *state.State) *Syncer {
	return &Syncer{
		client: client,
		state:  st,
	}
}

func (s *Syncer) Subscribe(f func(Event)) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.subscribers = append(s.subscribers, f)
}

// LoadAll fetches config, deals and runs concurrently. A failed resource keeps
// its previous value and never blocks the others. Overlapping calls share one
// fetch; a caller whose ctx ends stops waiting without cancelling the others.
func (s *Syncer) LoadAll(ctx context.Context) Report {
	ch := s.group.DoChan("all", func() (any, error) {
		return s.fetch(context.WithoutCancel(ctx), state.Resources), nil
	})

	select {
	case res := <-ch:
		report, _ := res.Val.(Report)

		return report
	case <-ctx.Done():
		errs := make(map[state.Resource]error, len(state.Resources))
		for _, res := range state.Resources {
			errs[res] = fmt.Errorf("load %s: %w", res, ctx.Err())
		}

		return Report{Errors: errs}
	}
}

// ReloadContext returns the context for the reload that follows a mutation.
// Once ctx is done the reload still runs, bounded by the client's request
// timeout, so the state catches up with a change the backend may have applied.
func ReloadContext(ctx context.Context) context.Context {
	if ctx.Err() != nil {
		return context.WithoutCancel(ctx)
	}

	return ctx
}

// RefreshConfig, RefreshDeals, RefreshRuns and Refresh always start a new
// fetch. They follow mutations, so joining a fetch that began earlier would
// publish data from before the change.

func (s *Syncer) RefreshConfig(ctx context.Context) error {
	return s.fetch(ctx, []state.Resource{state.ResourceConfig}).Err()
}

func (s *Syncer) RefreshDeals(ctx context.Context) error {
	return s.fetch(ctx, []state.Resource{state.ResourceDeals}).Err()
}

func (s *Syncer) RefreshRuns(ctx context.Context) error {
	return s.fetch(ctx, []state.Resource{state.ResourceRuns}).Err()
}

// Refresh fetches the given resources concurrently.
func (s *Syncer) Refresh(ctx context.Context, resources ...state.Resource) Report {
	return s.fetch(ctx, resources)
}

func (s *Syncer) fetch(ctx context.Context, resources []state.Resource) Report {
	var (
		g    errgroup.Group
		mu   sync.Mutex
		errs = make(map[state.Resource]error, len(resources))
	)

	for _, res := range slices.Compact(slices.Clone(resources)) {
		g.Go(func() error {
			err := s.load(ctx, res)

			mu.Lock()
			errs[res] = err
			mu.Unlock()

			s.notify(Event{Resource: res, Err: err})

			return nil
		})
	}

	_ = g.Wait()

	return Report{Errors: errs}
}

func (s *Syncer) load(ctx context.Context, res state.Resource) error {
	var (
		err     error
		applied bool
	)

	switch res {
	case state.ResourceConfig:
		ticket := s.state.Config.Begin()

		var cfg entity.ScannerConfig
		if cfg, err = s.client.GetConfig(ctx); err == nil {
			_, applied = s.state.Config.PublishFrom(ticket, cfg)
			break
		}

		err = fmt.Errorf("client.GetConfig: %w", err)
		s.state.Config.FailFrom(ticket, err)
	case state.ResourceDeals:
		ticket := s.state.Deals.Begin()

		var deals []entity.Deal
		if deals, err = s.client.ListDeals(ctx, entity.DealFilter{}); err == nil {
			_, applied = s.state.Deals.PublishFrom(ticket, deals)
			break
		}

		err = fmt.Errorf("client.ListDeals: %w", err)
		s.state.Deals.FailFrom(ticket, err)
	case state.ResourceRuns:
		ticket := s.state.Runs.Begin()

		var runs []entity.Run
		if runs, err = s.client.ListRuns(ctx); err == nil {
			_, applied = s.state.Runs.PublishFrom(ticket, runs)
			break
		}

		err = fmt.Errorf("client.ListRuns: %w", err)
		s.state.Runs.FailFrom(ticket, err)
	default:
		return fmt.Errorf("unknown resource %q", res)
	}

	if err == nil {
		if !applied {
			logger(ctx).Debug("outdated result dropped", slog.String(logx.FieldResource, res.String()))
		}

		return nil
	}

	logger(ctx).Warn("sync failed", slog.String(logx.FieldResource, res.String()), logx.Error(err))

	return err
}

func (s *Syncer) notify(e Event) {
	s.mu.RLock()
	subscribers := slices.Clone(s.subscribers)
	s.mu.RUnlock()

	for _, f := range subscribers {
		f(e)
	}
}
