package handler

import (
	"context"
	"fmt"
	"strings"

	"github.com/mymmrac/telego"
	th "github.com/mymmrac/telego/telegohandler"

	"smartdeals/internal/domain/entity"
	"smartdeals/internal/domain/value"
	"smartdeals/internal/editor"
	"smartdeals/internal/state"
	"smartdeals/internal/transport/bot/view"
	"smartdeals/pkg/logx"
)

func (h *Handler) OnStart(ctx *th.Context, msg telego.Message) error {
	return h.reply(ctx, msg.Chat.ID, view.Reply{Text: view.StartMessage})
}

func (h *Handler) OnStatus(ctx *th.Context, msg telego.Message) error {
	return h.reply(ctx, msg.Chat.ID, h.status())
}

func (h *Handler) OnLogin(ctx *th.Context, msg telego.Message) error {
	// The credentials must not stay in the chat history.
	if err := ctx.Bot().DeleteMessage(ctx, &telego.DeleteMessageParams{
		ChatID:    telego.ChatID{ID: msg.Chat.ID},
		MessageID: msg.MessageID,
	}); err != nil {
		logger(ctx).Warn("bot.DeleteMessage", logx.Error(err))
	}

	return h.reply(ctx, msg.Chat.ID, h.login(operatorContext(ctx, senderID(msg)), payload(msg.Text)))
}

func (h *Handler) OnLogout(ctx *th.Context, msg telego.Message) error {
	return h.reply(ctx, msg.Chat.ID, h.logout(operatorContext(ctx, senderID(msg))))
}

func (h *Handler) OnRefresh(ctx *th.Context, msg telego.Message) error {
	return h.reply(ctx, msg.Chat.ID, h.refresh(operatorContext(ctx, senderID(msg))))
}

func (h *Handler) OnScan(ctx *th.Context, msg telego.Message) error {
	return h.reply(ctx, msg.Chat.ID, h.scan(operatorContext(ctx, senderID(msg))))
}

func (h *Handler) OnDeals(ctx *th.Context, msg telego.Message) error {
	return h.reply(ctx, msg.Chat.ID, h.deals(payload(msg.Text)))
}

func (h *Handler) OnRuns(ctx *th.Context, msg telego.Message) error {
	return h.reply(ctx, msg.Chat.ID, view.Runs(h.console.History().Lines()))
}

func (h *Handler) OnConfig(ctx *th.Context, msg telego.Message) error {
	return h.reply(ctx, msg.Chat.ID, h.config())
}

func (h *Handler) OnSet(ctx *th.Context, msg telego.Message) error {
	return h.reply(ctx, msg.Chat.ID, h.set(payload(msg.Text)))
}

func (h *Handler) OnSave(ctx *th.Context, msg telego.Message) error {
	return h.reply(ctx, msg.Chat.ID, h.save(operatorContext(ctx, senderID(msg))))
}

func (h *Handler) OnApprove(ctx *th.Context, msg telego.Message) error {
	return h.reply(ctx, msg.Chat.ID, h.decide(operatorContext(ctx, senderID(msg)), entity.ActionApprove, payload(msg.Text)))
}

func (h *Handler) OnReject(ctx *th.Context, msg telego.Message) error {
	return h.reply(ctx, msg.Chat.ID, h.decide(operatorContext(ctx, senderID(msg)), entity.ActionReject, payload(msg.Text)))
}

func (h *Handler) OnJournal(ctx *th.Context, msg telego.Message) error {
	return h.reply(ctx, msg.Chat.ID, h.journal(ctx))
}

func senderID(msg telego.Message) int64 {
	if msg.From == nil {
		return 0
	}

	return msg.From.ID
}

func (h *Handler) status() view.Reply {
	st := h.console.State()

	lines := []view.SyncLine{
		syncLine(state.ResourceConfig, st.Config.Snapshot()),
		syncLine(state.ResourceDeals, st.Deals.Snapshot()),
		syncLine(state.ResourceRuns, st.Runs.Snapshot()),
	}

	var last *entity.Outcome
	if o, ok := h.console.LastOutcome(); ok {
		last = &o
	}

	running := h.refresher != nil && h.refresher.IsRunning()

	return view.Reply{Text: view.Status(h.console.SessionState().String(), running, lines, last)}
}

func syncLine[T any](res state.Resource, snap state.Snapshot[T]) view.SyncLine {
	return view.SyncLine{Resource: res.String(), SyncedAt: snap.SyncedAt, Err: snap.Err}
}

func (h *Handler) login(ctx context.Context, args string) view.Reply {
	fields := strings.Fields(args)
	if len(fields) != 2 {
		return view.Reply{Text: view.LoginUsage}
	}

	if err := h.console.Login(ctx, fields[0], fields[1]); err != nil {
		return view.Reply{Text: view.Error(err)}
	}

	return view.Reply{Text: view.LoginOK}
}

func (h *Handler) logout(ctx context.Context) view.Reply {
	if err := h.console.Logout(ctx); err != nil {
		return view.Reply{Text: view.Error(err)}
	}

	return view.Reply{Text: view.LogoutOK}
}

func (h *Handler) refresh(ctx context.Context) view.Reply {
	h.console.Refresh(ctx)

	return h.status()
}

func (h *Handler) scan(ctx context.Context) view.Reply {
	if err := h.console.RunScan(ctx); err != nil {
		return view.Reply{Text: view.Error(err)}
	}

	lines := h.console.History().Lines()
	if len(lines) == 0 {
		return view.Reply{Text: view.ScanOK}
	}

	return view.Text("%s\n%s", view.ScanOK, lines[0])
}

func (h *Handler) deals(args string) view.Reply {
	filter := entity.DealFilter{Status: value.DealStatus(strings.TrimSpace(args))}

	return view.Deals(h.console.Board().Filter(filter))
}

func (h *Handler) config() view.Reply {
	ed := h.console.Editor()
	if !ed.Ready() {
		return view.Reply{Text: view.NotLoaded}
	}

	fields := make([]view.Field, 0, len(editor.Fields))

	for _, name := range editor.Fields {
		v, err := ed.Get(name)
		if err != nil {
			continue
		}

		if name == editor.FieldTelegramBotToken && v != "" {
			v = "********"
		}

		fields = append(fields, view.Field{Name: name, Value: v})
	}

	return view.Config(fields, ed.Dirty())
}

func (h *Handler) set(args string) view.Reply {
	field, text := splitField(args)
	if field == "" {
		return view.Text("%s\n\n%s", view.SetUsage, strings.Join(editor.Fields, ", "))
	}

	ed := h.console.Editor()
	if !ed.Ready() {
		return view.Reply{Text: view.NotLoaded}
	}

	if err := ed.Set(field, text); err != nil {
		return view.Reply{Text: view.Error(err)}
	}

	if err := ed.Validate(); err != nil {
		return view.Text("✏️ %s updated, but %s", field, view.Error(err))
	}

	return view.Text("✏️ %s updated, /save to apply", field)
}

func (h *Handler) save(ctx context.Context) view.Reply {
	if err := h.console.SaveConfig(ctx); err != nil {
		return view.Reply{Text: view.Error(err)}
	}

	return view.Reply{Text: view.SaveOK}
}

func (h *Handler) decide(ctx context.Context, action entity.Action, args string) view.Reply {
	id, err := value.ParseDealID(args)
	if err != nil {
		return view.Text(view.DecideUsage, action)
	}

	return h.apply(ctx, action, id)
}

func (h *Handler) apply(ctx context.Context, action entity.Action, id value.DealID) view.Reply {
	var err error

	switch action {
	case entity.ActionApprove:
		err = h.console.Approve(ctx, id)
	case entity.ActionReject:
		err = h.console.Reject(ctx, id)
	default:
		return view.Text("❌ unsupported action %s", action)
	}

	if err != nil {
		return view.Reply{Text: view.Error(err)}
	}

	if action == entity.ActionApprove {
		return view.Text(view.ApprovedText, id)
	}

	return view.Text(view.RejectedText, id)
}

func (h *Handler) reply(ctx *th.Context, chatID int64, r view.Reply) error {
	params := &telego.SendMessageParams{
		ChatID:    telego.ChatID{ID: chatID},
		Text:      r.Text,
		ParseMode: telego.ModeHTML,
	}

	if r.Keyboard != nil {
		params.ReplyMarkup = r.Keyboard
	}

	if _, err := ctx.Bot().SendMessage(ctx, params); err != nil {
		return fmt.Errorf("bot.SendMessage: %w", err)
	}

	return nil
}

func (h *Handler) journal(ctx context.Context) view.Reply {
	outcomes, err := h.console.RecentActions(ctx, journalLimit)
	if err != nil {
		return view.Reply{Text: view.Error(err)}
	}

	return view.Journal(outcomes)
}
