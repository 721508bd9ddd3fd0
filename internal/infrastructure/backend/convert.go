package backend

import (
	"bytes"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/samber/lo"

	"smartdeals/internal/domain/entity"
	"smartdeals/internal/domain/value"
	"smartdeals/pkg/rest"
)

// Python's isoformat() with and without a UTC offset.
var timestampLayouts = []string{ //nolint:gochecknoglobals
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999",
	"2006-01-02 15:04:05.999999",
}

func newDomainConfig(cfg rest.Config) entity.ScannerConfig {
	return entity.ScannerConfig{
		Mode:              value.Mode(cfg.Mode),
		ApprovalThreshold: cfg.ApprovalThreshold,
		SeedKeywords:      cfg.SeedKeywords,
		Amazon: entity.AmazonConfig{
			ManualLinks: cfg.Amazon.ManualLinks,
			Extra:       newDomainRawFields(cfg.Amazon.Extra),
		},
		Telegram: entity.TelegramConfig{
			BotToken: cfg.Telegram.BotToken,
			ChatID:   cfg.Telegram.ChatID,
			Extra:    newDomainRawFields(cfg.Telegram.Extra),
		},
		WhatsApp: entity.WhatsAppConfig{
			Provider: value.WhatsAppProvider(cfg.WhatsApp.Provider),
			Extra:    newDomainRawFields(cfg.WhatsApp.Extra),
		},
		Extra: newDomainRawFields(cfg.Extra),
	}
}

func newRESTConfig(cfg entity.ScannerConfig) rest.Config {
	return rest.Config{
		Mode:              cfg.Mode.String(),
		ApprovalThreshold: cfg.ApprovalThreshold,
		SeedKeywords:      nonNil(cfg.SeedKeywords),
		Amazon: rest.AmazonConfig{
			ManualLinks: nonNil(cfg.Amazon.ManualLinks),
			Extra:       newRESTRawFields(cfg.Amazon.Extra),
		},
		Telegram: rest.TelegramConfig{
			BotToken: cfg.Telegram.BotToken,
			ChatID:   cfg.Telegram.ChatID,
			Extra:    newRESTRawFields(cfg.Telegram.Extra),
		},
		WhatsApp: rest.WhatsAppConfig{
			Provider: cfg.WhatsApp.Provider.String(),
			Extra:    newRESTRawFields(cfg.WhatsApp.Extra),
		},
		Extra: newRESTRawFields(cfg.Extra),
	}
}

func newDomainRawFields(fields rest.RawFields) value.RawFields {
	if fields == nil {
		return nil
	}

	return lo.MapValues(fields, func(raw jsoniter.RawMessage, _ string) []byte {
		return []byte(raw)
	})
}

func newRESTRawFields(fields value.RawFields) rest.RawFields {
	if fields == nil {
		return nil
	}

	return lo.MapValues(fields, func(raw []byte, _ string) jsoniter.RawMessage {
		return jsoniter.RawMessage(raw)
	})
}

// nonNil keeps empty lists as [] on the wire; the backend iterates them.
func nonNil(items []string) []string {
	if items == nil {
		return []string{}
	}

	return items
}

func newDomainDeals(deals []rest.Deal) []entity.Deal {
	return lo.Map(deals, func(d rest.Deal, _ int) entity.Deal {
		return entity.Deal{
			ID:           value.DealID(d.ID),
			Source:       d.Source,
			ProductID:    d.ProductID,
			Title:        d.Title,
			URL:          d.URL,
			CurrentPrice: d.CurrentPrice,
			OldPrice:     d.OldPrice,
			Score:        d.Score,
			Verdict:      lo.FromPtr(d.Verdict),
			Reasons:      d.Reasons,
			Status:       value.DealStatus(d.Status),
			CreatedAt:    parseTimestamp(d.CreatedAt),
			PostedAt:     parseOptionalTimestamp(d.PostedAt),
		}
	})
}

func newDomainRuns(runs []rest.Run) []entity.Run {
	return lo.Map(runs, func(r rest.Run, _ int) entity.Run {
		return entity.Run{
			ID:            r.ID,
			StartedAt:     parseTimestamp(r.StartedAt),
			StartedAtText: r.StartedAt,
			FinishedAt:    parseOptionalTimestamp(r.FinishedAt),
			Status:        r.Status,
			Message:       lo.FromPtr(r.Message),
			Stats:         compactStats(r.Stats),
		}
	})
}

func compactStats(raw jsoniter.RawMessage) []byte {
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return []byte("{}")
	}

	return append([]byte(nil), raw...)
}

// parseTimestamp yields the zero time for values it cannot read; one odd
// timestamp must not hide the whole list.
func parseTimestamp(s string) time.Time {
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}

	return time.Time{}
}

func parseOptionalTimestamp(s *string) *time.Time {
	if s == nil || *s == "" {
		return nil
	}

	t := parseTimestamp(*s)
	if t.IsZero() {
		return nil
	}

	return &t
}
