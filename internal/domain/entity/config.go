package entity

import (
	"reflect"
	"slices"

	"smartdeals/internal/domain/value"
)

// ScannerConfig is the backend's singleton configuration as the console edits it.
// Members the console does not model travel in Extra at every level so that a
// save never drops them.
type ScannerConfig struct {
	Mode              value.Mode `validate:"oneof=MANUAL AUTO"`
	ApprovalThreshold float64    `validate:"gte=0,lte=100"`
	SeedKeywords      []string
	Amazon            AmazonConfig
	Telegram          TelegramConfig
	WhatsApp          WhatsAppConfig
	Extra             value.RawFields
}

type AmazonConfig struct {
	ManualLinks []string
	Extra       value.RawFields
}

type TelegramConfig struct {
	BotToken string
	ChatID   string
	Extra    value.RawFields
}

type WhatsAppConfig struct {
	Provider value.WhatsAppProvider `validate:"oneof=draft cloud_api"`
	Extra    value.RawFields
}

// Clone returns a deep copy; drafts must never share slices with a snapshot.
func (c ScannerConfig) Clone() ScannerConfig {
	return ScannerConfig{
		Mode:              c.Mode,
		ApprovalThreshold: c.ApprovalThreshold,
		SeedKeywords:      slices.Clone(c.SeedKeywords),
		Amazon: AmazonConfig{
			ManualLinks: slices.Clone(c.Amazon.ManualLinks),
			Extra:       c.Amazon.Extra.Clone(),
		},
		Telegram: TelegramConfig{
			BotToken: c.Telegram.BotToken,
			ChatID:   c.Telegram.ChatID,
			Extra:    c.Telegram.Extra.Clone(),
		},
		WhatsApp: WhatsAppConfig{
			Provider: c.WhatsApp.Provider,
			Extra:    c.WhatsApp.Extra.Clone(),
		},
		Extra: c.Extra.Clone(),
	}
}

func (c ScannerConfig) Equal(other ScannerConfig) bool {
	return reflect.DeepEqual(c.normalized(), other.normalized())
}

// normalized treats nil and empty lists alike.
func (c ScannerConfig) normalized() ScannerConfig {
	n := c.Clone()

	if len(n.SeedKeywords) == 0 {
		n.SeedKeywords = nil
	}

	if len(n.Amazon.ManualLinks) == 0 {
		n.Amazon.ManualLinks = nil
	}

	return n
}
