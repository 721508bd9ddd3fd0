package handler

import (
	"html"

	"github.com/mymmrac/telego"
	th "github.com/mymmrac/telego/telegohandler"
	tu "github.com/mymmrac/telego/telegoutil"

	"smartdeals/internal/transport/bot/view"
	"smartdeals/pkg/contextx"
	"smartdeals/pkg/logx"
)

var logger = contextx.LoggerFromContextOrDefault //nolint:gochecknoglobals

// OnDealCallback handles the approve/reject buttons under a deal card.
func (h *Handler) OnDealCallback(ctx *th.Context, query telego.CallbackQuery) error {
	action, id, err := view.ParseCallback(query.Data)
	if err != nil {
		_ = ctx.Bot().AnswerCallbackQuery(ctx, tu.CallbackQuery(query.ID).
			WithText("❌ Unknown button").WithShowAlert())

		return err
	}

	r := h.apply(operatorContext(ctx, query.From.ID), action, id)

	if err = ctx.Bot().AnswerCallbackQuery(ctx, tu.CallbackQuery(query.ID).
		WithText(html.UnescapeString(stripTags(r.Text)))); err != nil {
		logger(ctx).Warn("bot.AnswerCallbackQuery", logx.Error(err))
	}

	if query.Message == nil {
		return nil
	}

	// The buttons stay only while the decision failed.
	deal, ok := h.console.Board().Find(id)
	if !ok || deal.Status.AwaitsDecision() {
		return nil
	}

	card := view.DealCard(deal)

	if _, err = ctx.Bot().EditMessageText(ctx, &telego.EditMessageTextParams{
		ChatID:    tu.ID(query.Message.GetChat().ID),
		MessageID: query.Message.GetMessageID(),
		Text:      card.Text,
		ParseMode: telego.ModeHTML,
	}); err != nil {
		logger(ctx).Debug("bot.EditMessageText", logx.DealID(id), logx.Error(err))
	}

	return nil
}

// stripTags drops HTML tags; callback answers are plain text.
func stripTags(s string) string {
	out := make([]rune, 0, len(s))
	inTag := false

	for _, r := range s {
		switch {
		case r == '<':
			inTag = true
		case r == '>' && inTag:
			inTag = false
		case !inTag:
			out = append(out, r)
		}
	}

	return string(out)
}
