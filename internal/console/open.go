package console

import (
	"context"
	"fmt"
	"time"

	"smartdeals/internal/board"
	"smartdeals/internal/datasync"
	"smartdeals/internal/editor"
	"smartdeals/internal/history"
	"smartdeals/internal/infrastructure/backend"
	"smartdeals/internal/session"
	"smartdeals/internal/state"
)

type Options struct {
	Backend         backend.Options
	Storage         session.TokenStorage
	DuplicateWindow time.Duration
	Metrics         *Metrics
	Journal         Journal
	// Now defaults to time.Now.
	Now func() time.Time
}

// Open wires a console against the backend and restores the stored session.
// With a restored session the caller still has to Refresh.
func Open(ctx context.Context, opts Options) (*Console, error) {
	now := opts.Now
	if now == nil {
		now = time.Now
	}

	auth := backend.NewAuth(opts.Backend)
	sess := session.NewStore(opts.Storage, auth).WithClock(now)
	client := backend.NewClient(opts.Backend, sess)

	st := state.New(now)
	syncer := datasync.NewSyncer(client, st)

	c := New(
		sess,
		syncer,
		client,
		st,
		editor.New(client, syncer, st.Config),
		board.New(client, syncer, st.Deals, opts.DuplicateWindow),
		history.New(st.Runs),
	).WithClock(now).WithMetrics(opts.Metrics)

	if opts.Journal != nil {
		c = c.WithJournal(opts.Journal)
	}

	if err := sess.Restore(ctx); err != nil {
		return nil, fmt.Errorf("session.Restore: %w", err)
	}

	return c, nil
}
