package backend_test

import (
	"context"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/samber/lo"
	"github.com/stretchr/testify/require"

	"smartdeals/internal/domain"
	"smartdeals/internal/domain/entity"
	"smartdeals/internal/domain/value"
	"smartdeals/internal/infrastructure/backend"
	"smartdeals/pkg/errcodes"
	"smartdeals/pkg/rest"
	"smartdeals/pkg/tests"
)

type tokens struct {
	mu      sync.Mutex
	token   string
	expired int
}

func (t *tokens) BearerToken() string {
	t.mu.Lock()
	defer t.mu.Unlock()

	return t.token
}

func (t *tokens) Expire(_ context.Context, token string) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if token != t.token {
		return nil
	}

	t.token = ""
	t.expired++

	return nil
}

func newClient(t *testing.T) (*backend.Client, *tests.Backend, *tokens) {
	t.Helper()

	fake := tests.NewBackend(t)
	holder := &tokens{token: fake.Token()}

	return backend.NewClient(backend.Options{BaseURL: fake.URL(), RequestTimeout: time.Second}, holder), fake, holder
}

func TestAuth_Login(t *testing.T) {
	t.Parallel()

	fake := tests.NewBackend(t)
	auth := backend.NewAuth(backend.Options{BaseURL: fake.URL() + "/"})

	testCases := []struct {
		name     string
		username string
		password string
		want     string
	}{
		{
			name:     "valid credentials",
			username: tests.DefaultUsername,
			password: tests.DefaultPassword,
			want:     fake.Token(),
		},
		{
			name:     "wrong password",
			username: tests.DefaultUsername,
			password: "nope",
			want:     "",
		},
		{
			name:     "empty form",
			username: "",
			password: "",
			want:     "",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			rq := require.New(t)

			token, err := auth.Login(context.Background(), tc.username, tc.password)
			rq.NoError(err)
			rq.Equal(tc.want, token)
		})
	}
}

func TestAuth_LoginUnreachable(t *testing.T) {
	t.Parallel()

	rq := require.New(t)

	auth := backend.NewAuth(backend.Options{BaseURL: "http://127.0.0.1:1", RequestTimeout: time.Second})

	_, err := auth.Login(context.Background(), "admin", "admin123")
	rq.Error(err)
	rq.True(domain.HasCode(err, errcodes.BackendUnavailable))
}

func TestClient_GetConfig(t *testing.T) {
	t.Parallel()

	rq := require.New(t)
	client, _, _ := newClient(t)

	cfg, err := client.GetConfig(context.Background())
	rq.NoError(err)

	rq.Equal(value.ModeManual, cfg.Mode)
	rq.InDelta(80, cfg.ApprovalThreshold, 0.001)
	rq.Equal([]string{"RTX 5060", "Tênis New Balance"}, cfg.SeedKeywords)
	rq.Empty(cfg.Amazon.ManualLinks)
	rq.NotNil(cfg.Amazon.ManualLinks)
	rq.Equal(value.WhatsAppDraft, cfg.WhatsApp.Provider)
	rq.Contains(cfg.Extra.Keys(), "daily_post_limit")
	rq.Contains(cfg.Amazon.Extra.Keys(), "partner_tag")
}

func TestClient_PutConfigPreservesUnknownKeys(t *testing.T) {
	t.Parallel()

	rq := require.New(t)
	ctx := context.Background()
	client, fake, _ := newClient(t)

	cfg, err := client.GetConfig(ctx)
	rq.NoError(err)

	cfg.Mode = value.ModeAuto
	cfg.ApprovalThreshold = 90
	cfg.Amazon.ManualLinks = []string{"https://amzn.to/x"}

	rq.NoError(client.PutConfig(ctx, cfg))

	rq.JSONEq(`"AUTO"`, fake.ConfigMember("mode"))
	rq.JSONEq(`15`, fake.ConfigMember("daily_post_limit"))
	rq.JSONEq(`["gamer","moda","casa"]`, fake.ConfigMember("categories_allowed"))
	rq.JSONEq(
		`{"partner_tag":"","region":"BR","manual_links":["https://amzn.to/x"]}`,
		fake.ConfigMember("amazon"),
	)
	rq.JSONEq(
		`{"provider":"draft","phone_number_id":"","to_numbers":[]}`,
		fake.ConfigMember("whatsapp"),
	)

	reloaded, err := client.GetConfig(ctx)
	rq.NoError(err)
	rq.True(cfg.Equal(reloaded))
}

func TestClient_PutConfigRejected(t *testing.T) {
	t.Parallel()

	rq := require.New(t)
	ctx := context.Background()
	client, _, _ := newClient(t)

	cfg, err := client.GetConfig(ctx)
	rq.NoError(err)

	cfg.Mode = "SEMI"

	err = client.PutConfig(ctx, cfg)
	rq.Error(err)
	rq.True(domain.HasCode(err, errcodes.ValidationError))
}

func TestClient_ListDeals(t *testing.T) {
	t.Parallel()

	client, fake, _ := newClient(t)

	fake.AddDeal(rest.Deal{ID: 1, Source: "amazon", Title: "RTX 5060", Status: "pending_approval", Score: lo.ToPtr(91)})
	fake.AddDeal(rest.Deal{ID: 2, Source: "mercadolivre", Title: "Tênis", Status: "rejected", Score: lo.ToPtr(40)})
	fake.AddDeal(rest.Deal{ID: 3, Source: "amazon", Title: "Cadeira gamer", Status: "approved"})

	testCases := []struct {
		name   string
		filter entity.DealFilter
		want   []value.DealID
	}{
		{
			name: "no filter",
			want: []value.DealID{1, 2, 3},
		},
		{
			name:   "by status",
			filter: entity.DealFilter{Status: value.DealRejected},
			want:   []value.DealID{2},
		},
		{
			name:   "by source",
			filter: entity.DealFilter{Source: "amazon"},
			want:   []value.DealID{1, 3},
		},
		{
			name:   "by text",
			filter: entity.DealFilter{Query: "gamer"},
			want:   []value.DealID{3},
		},
		{
			name:   "by min score",
			filter: entity.DealFilter{MinScore: lo.ToPtr(50)},
			want:   []value.DealID{1},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			rq := require.New(t)

			deals, err := client.ListDeals(context.Background(), tc.filter)
			rq.NoError(err)
			rq.Equal(tc.want, lo.Map(deals, func(d entity.Deal, _ int) value.DealID { return d.ID }))
		})
	}
}

func TestClient_ApproveReject(t *testing.T) {
	t.Parallel()

	rq := require.New(t)
	ctx := context.Background()
	client, fake, _ := newClient(t)

	fake.AddDeal(rest.Deal{ID: 5, Title: "Fone", Status: "pending_approval"})
	fake.AddDeal(rest.Deal{ID: 6, Title: "Mouse", Status: "pending_approval"})

	rq.NoError(client.ApproveDeal(ctx, 5))
	rq.NoError(client.RejectDeal(ctx, 6))

	deals, err := client.ListDeals(ctx, entity.DealFilter{})
	rq.NoError(err)
	rq.Equal(value.DealApproved, deals[0].Status)
	rq.Equal(value.DealRejected, deals[1].Status)

	err = client.ApproveDeal(ctx, 404)
	rq.Error(err)
	rq.True(domain.HasCode(err, errcodes.NotFound))
	rq.Contains(err.Error(), "Deal não encontrado")
}

func TestClient_RunScan(t *testing.T) {
	t.Parallel()

	rq := require.New(t)
	ctx := context.Background()
	client, fake, _ := newClient(t)

	rq.NoError(client.RunScan(ctx))
	rq.NoError(client.RunScan(ctx))
	rq.Equal(2, fake.RunCount())

	runs, err := client.ListRuns(ctx)
	rq.NoError(err)
	rq.Len(runs, 2)
	rq.Equal(int64(2), runs[0].ID)
	rq.Equal("finished", runs[0].Status)
	rq.JSONEq(`{"new":0,"scored":0}`, string(runs[0].Stats))
	rq.False(runs[0].StartedAt.IsZero())
	rq.Equal(runs[0].StartedAt.Format(time.RFC3339Nano), runs[0].StartedAtText)
	rq.NotNil(runs[0].FinishedAt)
}

func TestClient_Unauthorized(t *testing.T) {
	t.Parallel()

	rq := require.New(t)
	ctx := context.Background()
	client, fake, holder := newClient(t)

	fake.RevokeToken()

	_, err := client.GetConfig(ctx)
	rq.Error(err)
	rq.True(domain.HasCode(err, errcodes.AccessTokenInvalid))
	rq.Equal(1, holder.expired)

	_, err = client.ListRuns(ctx)
	rq.Error(err)
	rq.True(domain.HasCode(err, errcodes.AccessTokenExpired))
	rq.Equal(0, fake.CallCount(http.MethodGet+" /runs"))
}

func TestClient_ErrorClassification(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name   string
		status int
		body   string
		code   string
	}{
		{
			name:   "invalid json",
			status: http.StatusOK,
			body:   `{"mode":`,
			code:   errcodes.InvalidResponse.String(),
		},
		{
			name:   "server error",
			status: http.StatusInternalServerError,
			body:   `{"detail":"boom"}`,
			code:   errcodes.InternalServerError.String(),
		},
		{
			name:   "validation",
			status: http.StatusUnprocessableEntity,
			body:   `{"detail":[{"msg":"field required"}]}`,
			code:   errcodes.ValidationError.String(),
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			rq := require.New(t)
			client, fake, _ := newClient(t)

			fake.Fail(http.MethodGet, "/config", tc.status, tc.body)

			_, err := client.GetConfig(context.Background())
			rq.Error(err)

			code, ok := domain.GetCode(err)
			rq.True(ok)
			rq.Equal(tc.code, code.String())
		})
	}
}

func TestClient_Timeout(t *testing.T) {
	t.Parallel()

	rq := require.New(t)

	fake := tests.NewBackend(t)
	client := backend.NewClient(
		backend.Options{BaseURL: fake.URL(), RequestTimeout: 50 * time.Millisecond},
		&tokens{token: fake.Token()},
	)

	release := fake.Hold(http.MethodGet, "/runs")
	defer release()

	_, err := client.ListRuns(context.Background())
	rq.Error(err)
	rq.True(domain.HasCode(err, errcodes.TimeoutExceeded))
}
