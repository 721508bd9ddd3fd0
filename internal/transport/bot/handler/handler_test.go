package handler

import (
	"context"
	"testing"
	"time"

	"github.com/samber/lo"
	"github.com/stretchr/testify/require"

	"smartdeals/internal/console"
	"smartdeals/internal/domain/entity"
	"smartdeals/internal/infrastructure/backend"
	"smartdeals/internal/session"
	"smartdeals/internal/transport/bot/view"
	"smartdeals/pkg/rest"
	"smartdeals/pkg/tests"
)

type nopStorage struct{}

func (nopStorage) Load(context.Context) (string, error) { return "", nil }

func (nopStorage) Save(context.Context, string) error { return nil }

func (nopStorage) Clear(context.Context) error { return nil }

type stubRefresher bool

func (r stubRefresher) IsRunning() bool { return bool(r) }

func newHandler(t *testing.T) (*Handler, *tests.Backend) {
	t.Helper()

	fake := tests.NewBackend(t)
	fake.AddDeal(rest.Deal{ID: 5, Title: "Fone <BT>", Status: "pending", Score: lo.ToPtr(90)})
	fake.AddDeal(rest.Deal{ID: 6, Title: "Mouse", Status: "posted"})

	c, err := console.Open(context.Background(), console.Options{
		Backend: backend.Options{BaseURL: fake.URL(), RequestTimeout: 5 * time.Second},
		Storage: nopStorage{},
	})
	require.NoError(t, err)

	return New(c, stubRefresher(true)), fake
}

func TestPayload(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		text  string
		want  string
		field string
		value string
	}{
		{text: "/deals", want: "", field: "", value: ""},
		{text: "/deals pending", want: "pending", field: "pending", value: ""},
		{text: "/set mode AUTO", want: "mode AUTO", field: "mode", value: "AUTO"},
		{text: "/set seed_keywords\nRTX 5060\nAirfryer", want: "seed_keywords\nRTX 5060\nAirfryer", field: "seed_keywords", value: "RTX 5060\nAirfryer"},
		{text: "  /approve   5  ", want: "5", field: "5", value: ""},
	}

	for _, tc := range testCases {
		t.Run(tc.text, func(t *testing.T) {
			rq := require.New(t)

			got := payload(tc.text)
			rq.Equal(tc.want, got)

			field, value := splitField(got)
			rq.Equal(tc.field, field)
			rq.Equal(tc.value, value)
		})
	}
}

func TestHandler_LoginFlow(t *testing.T) {
	t.Parallel()

	rq := require.New(t)
	ctx := operatorContext(context.Background(), 42)
	h, _ := newHandler(t)

	rq.Equal(view.LoginUsage, h.login(ctx, "admin").Text)
	rq.Contains(h.login(ctx, "admin wrong").Text, "Wrong username or password")
	rq.Equal(session.StateAnonymous, h.console.SessionState())

	rq.Contains(h.deals("").Text, "No deals")

	rq.Equal("✅ Signed in", h.login(ctx, "admin admin123").Text)
	rq.Equal(session.StateAuthenticated, h.console.SessionState())

	status := h.status().Text
	rq.Contains(status, "authenticated")
	rq.Contains(status, "🟢 running")
	rq.Contains(status, "✅ refresh")

	last, ok := h.console.LastOutcome()
	rq.True(ok)
	rq.Equal("telegram:42", last.Operator)

	rq.Equal("👋 Signed out", h.logout(ctx).Text)
	rq.Contains(h.scan(ctx).Text, "Session expired")
}

func TestHandler_Deals(t *testing.T) {
	t.Parallel()

	rq := require.New(t)
	ctx := context.Background()
	h, _ := newHandler(t)
	h.login(ctx, "admin admin123")

	all := h.deals("")
	rq.Contains(all.Text, "Fone &lt;BT&gt;")
	rq.Contains(all.Text, "Mouse")
	rq.NotNil(all.Keyboard)
	rq.Len(all.Keyboard.InlineKeyboard, 1)
	rq.Equal("deal_approve:5", all.Keyboard.InlineKeyboard[0][0].CallbackData)

	posted := h.deals("posted")
	rq.NotContains(posted.Text, "Fone")
	rq.Nil(posted.Keyboard)

	rq.Contains(h.decide(ctx, entity.ActionApprove, "abc").Text, "Usage: /approve")
	rq.Equal("✅ Deal 5 approved", h.decide(ctx, entity.ActionApprove, "5").Text)
	rq.Equal("🚫 Deal 6 rejected", h.decide(ctx, entity.ActionReject, "6").Text)
	rq.Contains(h.decide(ctx, entity.ActionApprove, "404").Text, "NotFound")

	deal, ok := h.console.Board().Find(5)
	rq.True(ok)
	rq.Equal("approved", deal.Status.String())
}

func TestHandler_ConfigEditing(t *testing.T) {
	t.Parallel()

	rq := require.New(t)
	ctx := context.Background()
	h, fake := newHandler(t)

	rq.Contains(h.config().Text, "not loaded")
	rq.Contains(h.set("mode AUTO").Text, "not loaded")

	h.login(ctx, "admin admin123")

	rq.Contains(h.set("").Text, "approval_threshold")
	rq.Contains(h.set("price_min 10").Text, "UnknownField")
	rq.Contains(h.set("approval_threshold 150").Text, "InvalidConfig")
	rq.Contains(h.set("approval_threshold 90").Text, "/save to apply")
	rq.Contains(h.set("mode AUTO").Text, "/save to apply")
	rq.Contains(h.set("seed_keywords RTX 5060\n\n Airfryer ").Text, "updated")
	rq.Contains(h.set("telegram.bot_token 123:abc").Text, "updated")

	cfg := h.config().Text
	rq.Contains(cfg, "unsaved")
	rq.Contains(cfg, "RTX 5060\nAirfryer")
	rq.Contains(cfg, "********")
	rq.NotContains(cfg, "123:abc")

	rq.Equal("💾 Config saved", h.save(ctx).Text)
	rq.JSONEq(`"AUTO"`, fake.ConfigMember("mode"))
	rq.JSONEq(`["RTX 5060","Airfryer"]`, fake.ConfigMember("seed_keywords"))
	rq.NotContains(h.config().Text, "unsaved")
}

func TestHandler_ScanAndRuns(t *testing.T) {
	t.Parallel()

	rq := require.New(t)
	ctx := context.Background()
	h, fake := newHandler(t)
	h.login(ctx, "admin admin123")

	reply := h.scan(ctx)
	rq.Contains(reply.Text, "Scan finished")
	rq.Contains(reply.Text, "finished - {\"new\":0,\"scored\":0}")
	rq.Equal(1, fake.RunCount())
}

func TestStripTags(t *testing.T) {
	t.Parallel()

	require.Equal(t, "❌ NotFound: x &lt; y", stripTags("❌ <code>NotFound</code>: x &lt; y"))
}

func TestHandler_JournalNotConfigured(t *testing.T) {
	t.Parallel()

	h, _ := newHandler(t)

	require.Contains(t, h.journal(context.Background()).Text, "action journal is not configured")
}
