// Package console composes the session, the resource panes and the operator
// actions behind one API shared by the terminal UI and the operator bot.
package console

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	"smartdeals/internal/board"
	"smartdeals/internal/datasync"
	"smartdeals/internal/domain"
	"smartdeals/internal/domain/entity"
	"smartdeals/internal/domain/value"
	"smartdeals/internal/editor"
	"smartdeals/internal/history"
	"smartdeals/internal/session"
	"smartdeals/internal/state"
	"smartdeals/pkg/contextx"
	"smartdeals/pkg/errcodes"
	"smartdeals/pkg/logx"
)

var logger = contextx.LoggerFromContextOrDefault //nolint:gochecknoglobals

// View is what the console shows: the login form or the dashboard panes.
type View string

const (
	ViewLoginRequired View = "login_required"
	ViewDashboard     View = "dashboard"
)

type scanner interface {
	RunScan(ctx context.Context) error
}

// Journal records every outcome; optional.
type Journal interface {
	Record(ctx context.Context, outcome entity.Outcome) error
}

type journalReader interface {
	List(ctx context.Context, limit int) ([]entity.Outcome, error)
}

type Console struct {
	session *session.Store
	syncer  *datasync.Syncer
	scanner scanner
	state   *state.State
	editor  *editor.Editor
	board   *board.Board
	history *history.History

	journal Journal
	metrics *Metrics
	now     func() time.Time

	mu          sync.RWMutex
	last        entity.Outcome
	subscribers []func(entity.Outcome)
}

func New(
	sess *session.Store,
	syncer *datasync.Syncer,
	scan scanner,
	st *state.State,
	ed *editor.Editor,
	b *board.Board,
	h *history.History,
) *Console {
	c := &Console{
		session: sess,
		syncer:  syncer,
		scanner: scan,
		state:   st,
		editor:  ed,
		board:   b,
		history: h,
		now:     time.Now,
	}

	syncer.Subscribe(func(e datasync.Event) {
		if e.Err != nil {
			c.metrics.syncFailed(e.Resource)
		}
	})

	return c
}

func (c *Console) WithJournal(j Journal) *Console {
	c.journal = j
	return c
}

func (c *Console) WithMetrics(m *Metrics) *Console {
	c.metrics = m
	return c
}

func (c *Console) WithClock(now func() time.Time) *Console {
	c.now = now
	return c
}

func (c *Console) Editor() *editor.Editor {
	return c.editor
}

func (c *Console) Board() *board.Board {
	return c.board
}

func (c *Console) History() *history.History {
	return c.history
}

func (c *Console) State() *state.State {
	return c.state
}

func (c *Console) SessionState() session.State {
	return c.session.State()
}

// Gate decides between the login form and the dashboard.
func (c *Console) Gate() View {
	if c.session.Authenticated() {
		return ViewDashboard
	}

	return ViewLoginRequired
}

// OnSessionChange registers f for session state transitions, e.g. a 401.
func (c *Console) OnSessionChange(f func(session.State)) {
	c.session.OnChange(f)
}

// OnSync registers f for every resource publish or failed load.
func (c *Console) OnSync(f func(datasync.Event)) {
	c.syncer.Subscribe(f)
}

// OnOutcome registers f to receive every action outcome.
func (c *Console) OnOutcome(f func(entity.Outcome)) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.subscribers = append(c.subscribers, f)
}

// LastOutcome is the most recent outcome, for a status line.
func (c *Console) LastOutcome() (entity.Outcome, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return c.last, c.last.Action != ""
}

// Login authenticates and then loads every resource. A failed load does not
// undo the login; it is reported as its own refresh outcome.
func (c *Console) Login(ctx context.Context, username, password string) error {
	err := c.session.Login(ctx, username, password)
	c.report(ctx, entity.ActionLogin, username, err)

	if err != nil {
		return fmt.Errorf("session.Login: %w", err)
	}

	_ = c.Refresh(ctx)

	return nil
}

func (c *Console) Logout(ctx context.Context) error {
	err := c.session.Logout(ctx)
	c.state.Reset()
	c.editor.Reset()
	c.report(ctx, entity.ActionLogout, "", err)

	if err != nil {
		return fmt.Errorf("session.Logout: %w", err)
	}

	return nil
}

// Refresh reloads config, deals and runs.
func (c *Console) Refresh(ctx context.Context) datasync.Report {
	if err := c.requireSession(); err != nil {
		c.report(ctx, entity.ActionRefresh, "", err)

		return datasync.Report{Errors: map[state.Resource]error{
			state.ResourceConfig: err,
			state.ResourceDeals:  err,
			state.ResourceRuns:   err,
		}}
	}

	report := c.syncer.LoadAll(ctx)
	c.report(ctx, entity.ActionRefresh, "", report.Err())

	return report
}

// RunScan triggers a backend scan and reloads runs and deals, also when the
// scan request failed.
func (c *Console) RunScan(ctx context.Context) error {
	err := c.mutate(ctx, func(ctx context.Context) error {
		scanErr := c.scanner.RunScan(ctx)

		reload := datasync.ReloadContext(ctx)
		if report := c.syncer.Refresh(reload, state.ResourceRuns, state.ResourceDeals); !report.OK() {
			logger(ctx).Warn("reload after scan failed", logx.Error(report.Err()))
		}

		if scanErr != nil {
			return fmt.Errorf("client.RunScan: %w", scanErr)
		}

		return nil
	})
	c.report(ctx, entity.ActionRunScan, "", err)

	return err
}

func (c *Console) SaveConfig(ctx context.Context) error {
	err := c.mutate(ctx, c.editor.Save)
	c.report(ctx, entity.ActionSaveConfig, "", err)

	return err
}

func (c *Console) Approve(ctx context.Context, id value.DealID) error {
	err := c.mutate(ctx, func(ctx context.Context) error {
		return c.board.Approve(ctx, id)
	})
	c.report(ctx, entity.ActionApprove, id.String(), err)

	return err
}

func (c *Console) Reject(ctx context.Context, id value.DealID) error {
	err := c.mutate(ctx, func(ctx context.Context) error {
		return c.board.Reject(ctx, id)
	})
	c.report(ctx, entity.ActionReject, id.String(), err)

	return err
}

// RecentActions reads the journal, newest first.
func (c *Console) RecentActions(ctx context.Context, limit int) ([]entity.Outcome, error) {
	reader, ok := c.journal.(journalReader)
	if !ok {
		return nil, domain.NewError(errcodes.NotFound, "action journal is not configured")
	}

	outcomes, err := reader.List(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("journal.List: %w", err)
	}

	return outcomes, nil
}

// Poll refreshes deals and runs without touching the config draft and
// returns the deals awaiting a decision. It does nothing while logged out.
func (c *Console) Poll(ctx context.Context) ([]entity.Deal, error) {
	if err := c.requireSession(); err != nil {
		return nil, err
	}

	if report := c.syncer.Refresh(ctx, state.ResourceDeals, state.ResourceRuns); !report.OK() {
		return c.board.Pending(), report.Err()
	}

	return c.board.Pending(), nil
}

func (c *Console) mutate(ctx context.Context, f func(context.Context) error) error {
	if err := c.requireSession(); err != nil {
		return err
	}

	return f(ctx)
}

func (c *Console) requireSession() error {
	if c.session.Authenticated() {
		return nil
	}

	return domain.NewError(errcodes.AccessTokenExpired, "login required")
}

func (c *Console) report(ctx context.Context, action entity.Action, target string, err error) {
	operator, _ := contextx.OperatorFromContext(ctx)

	outcome := entity.Outcome{
		Action:   action,
		Target:   target,
		Operator: operator.String(),
		Err:      err,
		At:       c.now(),
	}

	attrs := []any{
		slog.String(logx.FieldAction, action.String()),
		slog.String(logx.FieldOperator, outcome.Operator),
	}

	if target != "" {
		attrs = append(attrs, slog.String("target", target))
	}

	if err != nil {
		logger(ctx).Warn("action failed", append(attrs, logx.Error(err))...)
	} else {
		logger(ctx).Info("action done", attrs...)
	}

	c.metrics.observe(outcome)

	if c.journal != nil {
		if jerr := c.journal.Record(ctx, outcome); jerr != nil {
			logger(ctx).Error(
				"journal.Record",
				logx.Error(domain.WrapError(jerr, errcodes.JournalUnwritten, "record outcome")),
			)
		}
	}

	c.mu.Lock()
	c.last = outcome
	subscribers := slices.Clone(c.subscribers)
	c.mu.Unlock()

	for _, f := range subscribers {
		f(outcome)
	}
}
