// Package editor keeps the operator's draft of the scanner configuration.
package editor

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	"smartdeals/internal/datasync"
	"smartdeals/internal/domain"
	"smartdeals/internal/domain/entity"
	"smartdeals/internal/domain/value"
	"smartdeals/internal/state"
	"smartdeals/pkg/contextx"
	"smartdeals/pkg/errcodes"
	"smartdeals/pkg/logx"
)

var (
	logger   = contextx.LoggerFromContextOrDefault                  //nolint:gochecknoglobals
	validate = validator.New(validator.WithRequiredStructEnabled()) //nolint:gochecknoglobals // skip
)

// Field names accepted by Set.
const (
	FieldMode              = "mode"
	FieldApprovalThreshold = "approval_threshold"
	FieldSeedKeywords      = "seed_keywords"
	FieldManualLinks       = "amazon.manual_links"
	FieldTelegramBotToken  = "telegram.bot_token"
	FieldTelegramChatID    = "telegram.chat_id"
	FieldWhatsAppProvider  = "whatsapp.provider"
)

// Fields lists what Set accepts, in display order.
var Fields = []string{ //nolint:gochecknoglobals
	FieldMode,
	FieldApprovalThreshold,
	FieldSeedKeywords,
	FieldManualLinks,
	FieldTelegramBotToken,
	FieldTelegramChatID,
	FieldWhatsAppProvider,
}

type configWriter interface {
	PutConfig(ctx context.Context, cfg entity.ScannerConfig) error
}

type configSyncer interface {
	Subscribe(f func(datasync.Event))
	RefreshConfig(ctx context.Context) error
}

// Editor holds a draft seeded from every successful config load. Edits touch
// one field and never drop siblings or unknown members.
type Editor struct {
	client configWriter
	syncer configSyncer
	config *state.Slice[entity.ScannerConfig]

	mu     sync.RWMutex
	base   entity.ScannerConfig
	draft  entity.ScannerConfig
	seeded bool
}

func New(client configWriter, syncer configSyncer, config *state.Slice[entity.ScannerConfig]) *Editor {
	e := &Editor{
		client: client,
		syncer: syncer,
		config: config,
	}

	syncer.Subscribe(e.onSync)

	if snap := config.Snapshot(); snap.Loaded {
		e.seed(snap.Value)
	}

	return e
}

func (e *Editor) onSync(event datasync.Event) {
	if event.Resource != state.ResourceConfig || event.Err != nil {
		return
	}

	e.seed(e.config.Get())
}

func (e *Editor) seed(cfg entity.ScannerConfig) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.base = cfg.Clone()
	e.draft = cfg.Clone()
	e.seeded = true
}

// Ready reports whether a config has been loaded yet.
func (e *Editor) Ready() bool {
	e.mu.RLock()
	defer e.mu.RUnlock()

	return e.seeded
}

// Draft returns a copy of the current draft.
func (e *Editor) Draft() entity.ScannerConfig {
	e.mu.RLock()
	defer e.mu.RUnlock()

	return e.draft.Clone()
}

// Dirty reports whether the draft differs from the last loaded config.
func (e *Editor) Dirty() bool {
	e.mu.RLock()
	defer e.mu.RUnlock()

	return !e.draft.Equal(e.base)
}

// Discard drops every edit.
func (e *Editor) Discard() {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.draft = e.base.Clone()
}

// Reset forgets the loaded config and the draft, e.g. after logout.
func (e *Editor) Reset() {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.base = entity.ScannerConfig{}
	e.draft = entity.ScannerConfig{}
	e.seeded = false
}

func (e *Editor) update(f func(*entity.ScannerConfig)) {
	e.mu.Lock()
	defer e.mu.Unlock()

	f(&e.draft)
}

func (e *Editor) SetMode(mode string) {
	e.update(func(c *entity.ScannerConfig) { c.Mode = value.Mode(strings.TrimSpace(mode)) })
}

func (e *Editor) SetApprovalThreshold(threshold float64) {
	e.update(func(c *entity.ScannerConfig) { c.ApprovalThreshold = threshold })
}

func (e *Editor) SetSeedKeywordsText(text string) {
	e.update(func(c *entity.ScannerConfig) { c.SeedKeywords = value.TextToLines(text) })
}

func (e *Editor) SetManualLinksText(text string) {
	e.update(func(c *entity.ScannerConfig) { c.Amazon.ManualLinks = value.TextToLines(text) })
}

func (e *Editor) SetTelegramBotToken(token string) {
	e.update(func(c *entity.ScannerConfig) { c.Telegram.BotToken = token })
}

func (e *Editor) SetTelegramChatID(chatID string) {
	e.update(func(c *entity.ScannerConfig) { c.Telegram.ChatID = chatID })
}

func (e *Editor) SetWhatsAppProvider(provider string) {
	e.update(func(c *entity.ScannerConfig) {
		c.WhatsApp.Provider = value.WhatsAppProvider(strings.TrimSpace(provider))
	})
}

// Set edits one field by name. List fields take one item per line.
func (e *Editor) Set(field, text string) error {
	switch field {
	case FieldMode:
		e.SetMode(text)
	case FieldApprovalThreshold:
		threshold, err := strconv.ParseFloat(strings.TrimSpace(text), 64)
		if err != nil {
			return domain.WrapError(err, errcodes.ValidationError, "approval_threshold must be a number")
		}

		e.SetApprovalThreshold(threshold)
	case FieldSeedKeywords:
		e.SetSeedKeywordsText(text)
	case FieldManualLinks:
		e.SetManualLinksText(text)
	case FieldTelegramBotToken:
		e.SetTelegramBotToken(strings.TrimSpace(text))
	case FieldTelegramChatID:
		e.SetTelegramChatID(strings.TrimSpace(text))
	case FieldWhatsAppProvider:
		e.SetWhatsAppProvider(text)
	default:
		return domain.NewError(errcodes.UnknownField, fmt.Sprintf("unknown field %q", field))
	}

	return nil
}

// Get renders one field the way Set accepts it.
func (e *Editor) Get(field string) (string, error) {
	d := e.Draft()

	switch field {
	case FieldMode:
		return d.Mode.String(), nil
	case FieldApprovalThreshold:
		return strconv.FormatFloat(d.ApprovalThreshold, 'f', -1, 64), nil
	case FieldSeedKeywords:
		return value.LinesToText(d.SeedKeywords), nil
	case FieldManualLinks:
		return value.LinesToText(d.Amazon.ManualLinks), nil
	case FieldTelegramBotToken:
		return d.Telegram.BotToken, nil
	case FieldTelegramChatID:
		return d.Telegram.ChatID, nil
	case FieldWhatsAppProvider:
		return d.WhatsApp.Provider.String(), nil
	default:
		return "", domain.NewError(errcodes.UnknownField, fmt.Sprintf("unknown field %q", field))
	}
}

func (e *Editor) Validate() error {
	draft := e.Draft()

	if err := validate.Struct(draft); err != nil {
		return domain.WrapError(err, errcodes.InvalidConfig, "invalid config")
	}

	return nil
}

// Save sends the whole draft, unknown members included, then reloads config.
// The reload runs even when the PUT failed; the draft survives a failed save.
func (e *Editor) Save(ctx context.Context) error {
	if !e.Ready() {
		return domain.NewError(errcodes.InvalidConfig, "config not loaded")
	}

	if err := e.Validate(); err != nil {
		return err
	}

	draft := e.Draft()

	putErr := e.client.PutConfig(ctx, draft)
	if putErr != nil {
		putErr = fmt.Errorf("client.PutConfig: %w", putErr)
	}

	if err := e.syncer.RefreshConfig(datasync.ReloadContext(ctx)); err != nil {
		logger(ctx).Warn(
			"config reload after save failed",
			slog.String(logx.FieldResource, state.ResourceConfig.String()),
			logx.Error(err),
		)
	}

	if putErr != nil {
		e.update(func(c *entity.ScannerConfig) { *c = draft })
		return putErr
	}

	return nil
}
