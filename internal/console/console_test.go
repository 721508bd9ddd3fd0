package console_test

import (
	"context"
	"errors"
	"net/http"
	"slices"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"

	"smartdeals/internal/console"
	"smartdeals/internal/domain"
	"smartdeals/internal/domain/entity"
	"smartdeals/internal/domain/value"
	"smartdeals/internal/infrastructure/backend"
	"smartdeals/internal/session"
	"smartdeals/internal/state"
	"smartdeals/pkg/contextx"
	"smartdeals/pkg/errcodes"
	"smartdeals/pkg/rest"
	"smartdeals/pkg/tests"
)

type memStorage struct {
	mu    sync.Mutex
	token string
}

func (m *memStorage) Load(context.Context) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.token, nil
}

func (m *memStorage) Save(_ context.Context, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.token = token

	return nil
}

func (m *memStorage) Clear(context.Context) error {
	return m.Save(context.Background(), "")
}

type memJournal struct {
	mu       sync.Mutex
	outcomes []entity.Outcome
	err      error
}

func (j *memJournal) Record(_ context.Context, o entity.Outcome) error {
	j.mu.Lock()
	defer j.mu.Unlock()

	j.outcomes = append(j.outcomes, o)

	return j.err
}

func (j *memJournal) List(_ context.Context, limit int) ([]entity.Outcome, error) {
	j.mu.Lock()
	defer j.mu.Unlock()

	out := slices.Clone(j.outcomes)
	slices.Reverse(out)

	if len(out) > limit {
		out = out[:limit]
	}

	return out, nil
}

type fixture struct {
	console  *console.Console
	backend  *tests.Backend
	storage  *memStorage
	journal  *memJournal
	registry *prometheus.Registry
	outcomes chan entity.Outcome
}

func newFixture(t *testing.T) fixture {
	t.Helper()

	fake := tests.NewBackend(t)
	fake.AddDeal(rest.Deal{ID: 5, Title: "Fone", Status: "pending"})
	fake.AddDeal(rest.Deal{ID: 6, Title: "Mouse", Status: "approved"})

	f := fixture{
		backend:  fake,
		storage:  &memStorage{},
		journal:  &memJournal{},
		registry: prometheus.NewRegistry(),
		outcomes: make(chan entity.Outcome, 32),
	}

	c, err := console.Open(context.Background(), console.Options{
		Backend:         backend.Options{BaseURL: fake.URL(), RequestTimeout: 5 * time.Second},
		Storage:         f.storage,
		DuplicateWindow: time.Second,
		Metrics:         console.NewMetrics(f.registry),
		Journal:         f.journal,
	})
	require.NoError(t, err)

	c.OnOutcome(func(o entity.Outcome) { f.outcomes <- o })
	f.console = c

	return f
}

func (f fixture) login(t *testing.T) {
	t.Helper()

	require.NoError(t, f.console.Login(context.Background(), tests.DefaultUsername, tests.DefaultPassword))
	drain(f.outcomes)
}

func drain(ch chan entity.Outcome) []entity.Outcome {
	var out []entity.Outcome

	for {
		select {
		case o := <-ch:
			out = append(out, o)
		default:
			return out
		}
	}
}

func TestConsole_LoginPopulatesPanes(t *testing.T) {
	t.Parallel()

	rq := require.New(t)
	f := newFixture(t)
	f.backend.AddRun(rest.Run{ID: 1, Status: "finished"})

	rq.Equal(console.ViewLoginRequired, f.console.Gate())

	ctx := contextx.WithOperator(context.Background(), "tui")
	rq.NoError(f.console.Login(ctx, "admin", "admin123"))

	rq.Equal(console.ViewDashboard, f.console.Gate())
	rq.Equal(session.StateAuthenticated, f.console.SessionState())
	rq.Equal(f.backend.Token(), f.storage.token)

	rq.True(f.console.Editor().Ready())
	rq.Equal(value.ModeManual, f.console.Editor().Draft().Mode)
	rq.Len(f.console.Board().Deals(), 2)
	rq.Len(f.console.History().Lines(), 1)

	outcomes := drain(f.outcomes)
	rq.Len(outcomes, 2)
	rq.Equal(entity.ActionLogin, outcomes[0].Action)
	rq.Equal("tui", outcomes[0].Operator)
	rq.True(outcomes[0].OK())
	rq.Equal(entity.ActionRefresh, outcomes[1].Action)
	rq.True(outcomes[1].OK())

	rq.InDelta(1, actionCount(t, f.registry, "login", "ok"), 0)
}

// actionCount reads smartdeals_console_actions_total for one label pair.
func actionCount(t *testing.T, reg *prometheus.Registry, action, result string) float64 {
	t.Helper()

	families, err := reg.Gather()
	require.NoError(t, err)

	for _, family := range families {
		if family.GetName() != "smartdeals_console_actions_total" {
			continue
		}

		for _, m := range family.GetMetric() {
			labels := map[string]string{}
			for _, l := range m.GetLabel() {
				labels[l.GetName()] = l.GetValue()
			}

			if labels["action"] == action && labels["result"] == result {
				return m.GetCounter().GetValue()
			}
		}
	}

	return 0
}

func TestConsole_LoginRefused(t *testing.T) {
	t.Parallel()

	rq := require.New(t)
	f := newFixture(t)

	err := f.console.Login(context.Background(), "admin", "wrong")
	rq.Error(err)
	rq.True(domain.HasCode(err, errcodes.CredentialsMismatch))

	rq.Equal(console.ViewLoginRequired, f.console.Gate())
	rq.Empty(f.storage.token)
	rq.False(f.console.State().Config.Snapshot().Loaded)
	rq.False(f.console.State().Deals.Snapshot().Loaded)
	rq.Zero(f.backend.CallCount(http.MethodGet + " /config"))

	last, ok := f.console.LastOutcome()
	rq.True(ok)
	rq.Equal(entity.ActionLogin, last.Action)
	rq.False(last.OK())
}

func TestConsole_SaveConfigScenario(t *testing.T) {
	t.Parallel()

	rq := require.New(t)
	ctx := context.Background()
	f := newFixture(t)
	f.login(t)

	ed := f.console.Editor()
	ed.SetMode("AUTO")
	ed.SetApprovalThreshold(90)

	rq.NoError(f.console.SaveConfig(ctx))

	cfg := f.console.State().Config.Get()
	rq.Equal(value.ModeAuto, cfg.Mode)
	rq.InDelta(90, cfg.ApprovalThreshold, 0.001)
	rq.True(cfg.Equal(ed.Draft()))
	rq.Contains(cfg.Extra.Keys(), "blocked_words")

	rq.Equal(1, f.backend.CallCount(http.MethodGet+" /deals"))
	rq.Equal(1, f.backend.CallCount(http.MethodGet+" /runs"))
}

func TestConsole_ApproveScenario(t *testing.T) {
	t.Parallel()

	rq := require.New(t)
	ctx := context.Background()
	f := newFixture(t)
	f.login(t)

	rq.NoError(f.console.Approve(ctx, 5))

	deal, ok := f.console.Board().Find(5)
	rq.True(ok)
	rq.Equal(value.DealApproved, deal.Status)

	outcomes := drain(f.outcomes)
	rq.Len(outcomes, 1)
	rq.Equal(entity.ActionApprove, outcomes[0].Action)
	rq.Equal("5", outcomes[0].Target)

	err := f.console.Approve(ctx, 5)
	rq.True(domain.HasCode(err, errcodes.DuplicateAction))

	rq.NoError(f.console.Reject(ctx, 6))

	deal, _ = f.console.Board().Find(6)
	rq.Equal(value.DealRejected, deal.Status)
}

func TestConsole_RunScanScenario(t *testing.T) {
	t.Parallel()

	rq := require.New(t)
	ctx := context.Background()
	f := newFixture(t)
	f.login(t)

	rq.Empty(f.console.History().Runs())

	rq.NoError(f.console.RunScan(ctx))

	rq.Equal(1, f.backend.CallCount(http.MethodPost+" /scan/run"))
	rq.Len(f.console.History().Runs(), 1)
	rq.Equal(1, f.backend.CallCount(http.MethodGet+" /config"))
	rq.Equal(2, f.backend.CallCount(http.MethodGet+" /deals"))
}

func TestConsole_FailedScanStillReloads(t *testing.T) {
	t.Parallel()

	rq := require.New(t)
	ctx := context.Background()
	f := newFixture(t)
	f.login(t)

	f.backend.FailAfterApplying(http.MethodPost, "/scan/run", http.StatusGatewayTimeout, `{"detail":"gateway timeout"}`)

	rq.Error(f.console.RunScan(ctx))

	rq.Equal(2, f.backend.CallCount(http.MethodGet+" /runs"))
	rq.Equal(2, f.backend.CallCount(http.MethodGet+" /deals"))
	rq.Len(f.console.History().Runs(), 1)

	outcomes := drain(f.outcomes)
	rq.Len(outcomes, 1)
	rq.Equal(entity.ActionRunScan, outcomes[0].Action)
	rq.Error(outcomes[0].Err)
}

func TestConsole_FailedApproveStillReloads(t *testing.T) {
	t.Parallel()

	rq := require.New(t)
	ctx := context.Background()
	f := newFixture(t)
	f.login(t)

	f.backend.FailAfterApplying(http.MethodPost, "/deals/5/approve", http.StatusGatewayTimeout, `{"detail":"gateway timeout"}`)

	rq.Error(f.console.Approve(ctx, 5))
	rq.Equal(2, f.backend.CallCount(http.MethodGet+" /deals"))

	deal, ok := f.console.Board().Find(5)
	rq.True(ok)
	rq.Equal(value.DealApproved, deal.Status)
}

func TestConsole_UnauthorizedExpiresSession(t *testing.T) {
	t.Parallel()

	rq := require.New(t)
	ctx := context.Background()
	f := newFixture(t)
	f.login(t)

	changes := make(chan session.State, 4)
	f.console.OnSessionChange(func(s session.State) { changes <- s })

	f.backend.RevokeToken()

	report := f.console.Refresh(ctx)
	rq.False(report.OK())

	rq.Equal(session.StateExpired, <-changes)
	rq.Equal(console.ViewLoginRequired, f.console.Gate())
	rq.Empty(f.storage.token)

	err := f.console.Approve(ctx, 5)
	rq.True(domain.HasCode(err, errcodes.AccessTokenExpired))
	rq.Zero(f.backend.CallCount(http.MethodPost + " /deals/5/approve"))

	rq.Len(f.console.Board().Deals(), 2)
}

func TestConsole_Logout(t *testing.T) {
	t.Parallel()

	rq := require.New(t)
	f := newFixture(t)
	f.login(t)

	rq.NoError(f.console.Logout(context.Background()))

	rq.Equal(session.StateAnonymous, f.console.SessionState())
	rq.Equal(console.ViewLoginRequired, f.console.Gate())
	rq.Empty(f.storage.token)
	rq.False(f.console.State().Deals.Snapshot().Loaded)
	rq.False(f.console.Editor().Ready())
}

func TestConsole_RestoredSession(t *testing.T) {
	t.Parallel()

	rq := require.New(t)
	ctx := context.Background()

	fake := tests.NewBackend(t)
	storage := &memStorage{token: fake.Token()}

	c, err := console.Open(ctx, console.Options{
		Backend: backend.Options{BaseURL: fake.URL()},
		Storage: storage,
	})
	rq.NoError(err)

	rq.Equal(console.ViewDashboard, c.Gate())
	rq.True(c.Refresh(ctx).OK())
	rq.True(c.State().Config.Snapshot().Loaded)
}

func TestConsole_Poll(t *testing.T) {
	t.Parallel()

	rq := require.New(t)
	ctx := context.Background()
	f := newFixture(t)

	_, err := f.console.Poll(ctx)
	rq.True(domain.HasCode(err, errcodes.AccessTokenExpired))

	f.login(t)
	f.console.Editor().SetMode("AUTO")

	pending, err := f.console.Poll(ctx)
	rq.NoError(err)
	rq.Len(pending, 1)
	rq.Equal(value.DealID(5), pending[0].ID)

	rq.Equal(value.ModeAuto, f.console.Editor().Draft().Mode)
	rq.Equal(1, f.backend.CallCount(http.MethodGet+" /config"))
	rq.Empty(drain(f.outcomes))
}

func TestConsole_JournalAndMetrics(t *testing.T) {
	t.Parallel()

	rq := require.New(t)
	ctx := context.Background()
	f := newFixture(t)
	f.journal.err = errors.New("db down")
	f.login(t)

	f.backend.Fail(http.MethodGet, "/runs", http.StatusInternalServerError, `{}`)

	report := f.console.Refresh(ctx)
	rq.True(report.Failed(state.ResourceRuns))

	f.journal.mu.Lock()
	rq.Len(f.journal.outcomes, 3)
	rq.False(f.journal.outcomes[2].OK())
	f.journal.mu.Unlock()

	rq.InDelta(1, actionCount(t, f.registry, "refresh", "ok"), 0)
	rq.InDelta(1, actionCount(t, f.registry, "refresh", "error"), 0)
}

func TestConsole_RecentActions(t *testing.T) {
	t.Parallel()

	rq := require.New(t)
	ctx := context.Background()
	f := newFixture(t)
	f.login(t)

	rq.NoError(f.console.Approve(ctx, 5))

	outcomes, err := f.console.RecentActions(ctx, 2)
	rq.NoError(err)
	rq.Len(outcomes, 2)
	rq.Equal(entity.ActionApprove, outcomes[0].Action)
	rq.Equal(entity.ActionRefresh, outcomes[1].Action)

	bare, err := console.Open(ctx, console.Options{
		Backend: backend.Options{BaseURL: f.backend.URL()},
		Storage: &memStorage{},
	})
	rq.NoError(err)

	_, err = bare.RecentActions(ctx, 10)
	rq.True(domain.HasCode(err, errcodes.NotFound))
}
