// Package notifier pushes newly pending deals to the operator chat.
package notifier

import (
	"context"
	"fmt"

	"github.com/mymmrac/telego"
	tu "github.com/mymmrac/telego/telegoutil"

	"smartdeals/internal/domain/entity"
	"smartdeals/internal/domain/value"
	"smartdeals/internal/transport/bot/view"
	"smartdeals/pkg/contextx"
	"smartdeals/pkg/logx"
)

var logger = contextx.LoggerFromContextOrDefault //nolint:gochecknoglobals

type sender interface {
	SendMessage(ctx context.Context, params *telego.SendMessageParams) (*telego.Message, error)
}

type TelegramBot struct {
	bot    sender
	chatID int64
	// onFailure is told which deal could not be announced.
	onFailure func(value.DealID)
}

func NewTelegramBot(bot sender, chatID int64) *TelegramBot {
	return &TelegramBot{
		bot:    bot,
		chatID: chatID,
	}
}

// OnFailure registers f for deals whose notification failed, so they can be retried.
func (b *TelegramBot) OnFailure(f func(value.DealID)) *TelegramBot {
	b.onFailure = f
	return b
}

// Run sends every deal from the channel until it closes or ctx is done.
func (b *TelegramBot) Run(ctx context.Context, deals <-chan entity.Deal) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case deal, ok := <-deals:
			if !ok {
				return nil
			}

			if err := b.SendDeal(ctx, deal); err != nil {
				logger(ctx).Error(
					"failed to send deal",
					logx.DealID(deal.ID),
					logx.Error(err),
				)

				if b.onFailure != nil {
					b.onFailure(deal.ID)
				}
			}
		}
	}
}

func (b *TelegramBot) SendDeal(ctx context.Context, deal entity.Deal) error {
	card := view.DealCard(deal)

	msg := tu.Message(tu.ID(b.chatID), "🆕 "+card.Text).WithParseMode(telego.ModeHTML)
	if card.Keyboard != nil {
		msg = msg.WithReplyMarkup(card.Keyboard)
	}

	if _, err := b.bot.SendMessage(ctx, msg); err != nil {
		return fmt.Errorf("bot.SendMessage: %w", err)
	}

	return nil
}

func (b *TelegramBot) SendText(ctx context.Context, text string) error {
	if _, err := b.bot.SendMessage(ctx, tu.Message(tu.ID(b.chatID), text)); err != nil {
		return fmt.Errorf("bot.SendMessage: %w", err)
	}

	return nil
}
