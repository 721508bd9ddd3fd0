package rest_test

import (
	"testing"

	jsoniter "github.com/json-iterator/go"
	"github.com/stretchr/testify/require"

	"smartdeals/pkg/rest"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary //nolint:gochecknoglobals // skip

// Trimmed copy of the backend's default_config().
const backendConfig = `{
	"mode": "MANUAL",
	"approval_threshold": 70,
	"categories_allowed": ["gamer", "moda", "casa"],
	"price_min": 10,
	"seed_keywords": ["RTX 5060", "Tênis New Balance"],
	"mercadolivre": {"client_id": "", "client_secret": ""},
	"amazon": {"pa_api_access_key": "k", "region": "BR", "manual_links": []},
	"telegram": {"bot_token": "", "chat_id": ""},
	"whatsapp": {"provider": "draft", "phone_number_id": "", "to_numbers": ["5511999999999"]}
}`

func TestConfigKeepsUnknownMembers(t *testing.T) {
	rq := require.New(t)

	var cfg rest.Config

	rq.NoError(json.Unmarshal([]byte(backendConfig), &cfg))

	rq.Equal("MANUAL", cfg.Mode)
	rq.InDelta(70.0, cfg.ApprovalThreshold, 0)
	rq.Equal([]string{"RTX 5060", "Tênis New Balance"}, cfg.SeedKeywords)
	rq.Empty(cfg.Amazon.ManualLinks)
	rq.Equal("draft", cfg.WhatsApp.Provider)

	rq.Len(cfg.Extra, 3)
	rq.Contains(cfg.Extra, "categories_allowed")
	rq.Contains(cfg.Extra, "mercadolivre")
	rq.NotContains(cfg.Extra, "amazon")
	rq.Contains(cfg.Amazon.Extra, "pa_api_access_key")
	rq.Contains(cfg.WhatsApp.Extra, "to_numbers")
	rq.Nil(cfg.Telegram.Extra)

	cfg.Mode = "AUTO"
	cfg.Amazon.ManualLinks = []string{"https://amzn.to/x"}
	cfg.Telegram.ChatID = "-100123"

	b, err := json.Marshal(cfg)
	rq.NoError(err)

	var got, want map[string]any

	rq.NoError(json.Unmarshal(b, &got))
	rq.NoError(json.Unmarshal([]byte(backendConfig), &want))

	want["mode"] = "AUTO"
	want["amazon"].(map[string]any)["manual_links"] = []any{"https://amzn.to/x"}
	want["telegram"].(map[string]any)["chat_id"] = "-100123"

	rq.Equal(want, got)
}

func TestConfigKnownFieldsWinOverExtra(t *testing.T) {
	rq := require.New(t)

	cfg := rest.Config{
		Mode:  "AUTO",
		Extra: rest.RawFields{"mode": jsoniter.RawMessage(`"MANUAL"`), "cooldown_days": jsoniter.RawMessage(`7`)},
	}

	b, err := json.Marshal(cfg)
	rq.NoError(err)

	var got map[string]any

	rq.NoError(json.Unmarshal(b, &got))
	rq.Equal("AUTO", got["mode"])
	rq.EqualValues(7, got["cooldown_days"])
}

func TestConfigRejectsInvalidJSON(t *testing.T) {
	rq := require.New(t)

	var cfg rest.Config

	rq.Error(json.Unmarshal([]byte(`{"mode": 1}`), &cfg))
	rq.Error(json.Unmarshal([]byte(`[]`), &cfg))
}
