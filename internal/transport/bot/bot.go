// Package bot is the Telegram operator surface of the console.
package bot

import (
	"context"
	"fmt"

	"github.com/mymmrac/telego"
	th "github.com/mymmrac/telego/telegohandler"

	"smartdeals/internal/config"
	"smartdeals/internal/console"
	"smartdeals/internal/transport/bot/handler"
	"smartdeals/internal/worker"
	"smartdeals/pkg/contextx"
	"smartdeals/pkg/logx"
)

var logger = contextx.LoggerFromContextOrDefault //nolint:gochecknoglobals

const longPollingTimeout = 60

type Bot struct {
	bot     *telego.Bot
	adminID int64
	handler *handler.Handler
}

func New(cfg config.Bot, c *console.Console, refresher *worker.Refresher) (*Bot, error) {
	bot, err := telego.NewBot(cfg.Token)
	if err != nil {
		return nil, fmt.Errorf("telego.NewBot: %w", err)
	}

	return &Bot{
		bot:     bot,
		adminID: cfg.AdminID,
		handler: handler.New(c, refresher),
	}, nil
}

// API exposes the client so the notifier can share it.
func (b *Bot) API() *telego.Bot {
	return b.bot
}

func (b *Bot) Run(ctx context.Context) error {
	updates, err := b.bot.UpdatesViaLongPolling(ctx, &telego.GetUpdatesParams{
		Timeout: longPollingTimeout,
	})
	if err != nil {
		return fmt.Errorf("bot.UpdatesViaLongPolling: %w", err)
	}

	botHandler, err := th.NewBotHandler(b.bot, updates)
	if err != nil {
		return fmt.Errorf("th.NewBotHandler: %w", err)
	}

	b.handler.RegisterRoutes(botHandler, b.adminID)

	go func() {
		if err := botHandler.Start(); err != nil {
			logger(ctx).Error("botHandler.Start", logx.Error(err))
		}
	}()

	logger(ctx).Info("operator bot started")

	<-ctx.Done()

	if err := botHandler.Stop(); err != nil {
		logger(ctx).Error("botHandler.Stop", logx.Error(err))
	}

	logger(ctx).Info("operator bot stopped")

	return nil
}
