// Package view renders operator bot replies as Telegram HTML.
package view

import (
	"errors"
	"fmt"
	"html"
	"strings"
	"time"

	"github.com/mymmrac/telego"
	tu "github.com/mymmrac/telego/telegoutil"

	"smartdeals/internal/domain"
	"smartdeals/internal/domain/entity"
	"smartdeals/internal/domain/value"
	"smartdeals/pkg/errcodes"
)

const (
	CallbackApprove = "deal_approve:"
	CallbackReject  = "deal_reject:"

	// MaxDeals bounds a /deals reply below Telegram's message size limit.
	MaxDeals = 20
)

// Reply is one message to send.
type Reply struct {
	Text     string
	Keyboard *telego.InlineKeyboardMarkup
}

func Text(format string, args ...any) Reply {
	return Reply{Text: fmt.Sprintf(format, args...)}
}

const StartMessage = `🛒 <b>SmartDeals console</b>

/login <code>user</code> <code>password</code> - sign in
/logout - sign out
/status - session and sync state
/refresh - reload config, deals and runs
/scan - run the scanner now
/deals [status] - list deals
/approve <code>id</code>, /reject <code>id</code> - decide a deal
/runs - scanner history
/config - show the config draft
/set <code>field</code> <code>value</code> - edit the draft (lists: one item per line)
/save - send the draft to the backend
/journal - latest operator actions`

const (
	LoginUsage   = "❌ Usage: /login <code>user</code> <code>password</code>"
	SetUsage     = "❌ Usage: /set <code>field</code> <code>value</code>"
	DecideUsage  = "❌ Usage: /%s <code>id</code>"
	LoginOK      = "✅ Signed in"
	LogoutOK     = "👋 Signed out"
	ScanOK       = "🚀 Scan finished"
	SaveOK       = "💾 Config saved"
	NoDeals      = "📭 No deals"
	NoRuns       = "📭 No runs yet"
	NoActions    = "📭 No actions recorded"
	NotLoaded    = "⏳ Config not loaded yet, try /refresh"
	ApprovedText = "✅ Deal %s approved"
	RejectedText = "🚫 Deal %s rejected"
)

// Error renders err for the operator. Known codes get a short hint.
func Error(err error) string {
	code, _ := domain.GetCode(err)

	switch {
	case domain.HasCode(err, errcodes.CredentialsMismatch):
		return "❌ Wrong username or password"
	case domain.HasCode(err, errcodes.AccessTokenExpired), domain.HasCode(err, errcodes.AccessTokenInvalid):
		return "🔒 Session expired, /login again"
	case domain.HasCode(err, errcodes.DuplicateAction):
		return "⏳ Already sent, wait a moment"
	case domain.HasCode(err, errcodes.BackendUnavailable), domain.HasCode(err, errcodes.TimeoutExceeded):
		return "📡 Backend unreachable: " + html.EscapeString(err.Error())
	case code != "":
		return fmt.Sprintf("❌ <code>%s</code>: %s", code, html.EscapeString(err.Error()))
	default:
		return "❌ " + html.EscapeString(err.Error())
	}
}

// Outcome renders one action result for a status line.
func Outcome(o entity.Outcome) string {
	target := ""
	if o.Target != "" {
		target = " " + html.EscapeString(o.Target)
	}

	if o.OK() {
		return fmt.Sprintf("✅ %s%s at %s", o.Action, target, o.At.Format(time.TimeOnly))
	}

	return fmt.Sprintf("❌ %s%s at %s: %s", o.Action, target, o.At.Format(time.TimeOnly), html.EscapeString(o.Err.Error()))
}

// SyncLine describes one resource for /status.
type SyncLine struct {
	Resource string
	SyncedAt time.Time
	Err      error
}

func Status(sessionState string, refreshing bool, lines []SyncLine, last *entity.Outcome) string {
	var sb strings.Builder

	sb.WriteString("📊 <b>Status</b>\n\n")
	fmt.Fprintf(&sb, "🔑 <b>Session:</b> %s\n", sessionState)

	refresher := "🔴 stopped"
	if refreshing {
		refresher = "🟢 running"
	}

	fmt.Fprintf(&sb, "🔄 <b>Refresher:</b> %s\n\n", refresher)

	for _, l := range lines {
		synced := "never"
		if !l.SyncedAt.IsZero() {
			synced = l.SyncedAt.Format(time.DateTime)
		}

		fmt.Fprintf(&sb, "• <b>%s</b>: %s", l.Resource, synced)

		if l.Err != nil {
			fmt.Fprintf(&sb, " ⚠️ %s", html.EscapeString(l.Err.Error()))
		}

		sb.WriteString("\n")
	}

	if last != nil {
		sb.WriteString("\n" + Outcome(*last))
	}

	return sb.String()
}

// DealCard is a single deal with approve/reject buttons while it awaits a decision.
func DealCard(d entity.Deal) Reply {
	var sb strings.Builder

	fmt.Fprintf(&sb, "🔥 <b>%s</b>\n\n", html.EscapeString(d.Title))
	fmt.Fprintf(&sb, "🆔 <code>%s</code> · %s\n", d.ID, html.EscapeString(d.Source))
	fmt.Fprintf(&sb, "💰 <b>R$ %.2f</b>", d.CurrentPrice)

	if d.OldPrice != nil {
		fmt.Fprintf(&sb, " <s>R$ %.2f</s>", *d.OldPrice)
	}

	sb.WriteString("\n")

	if d.Score != nil {
		fmt.Fprintf(&sb, "📈 Score %d", *d.Score)

		if d.Verdict != "" {
			fmt.Fprintf(&sb, " · %s", html.EscapeString(d.Verdict))
		}

		sb.WriteString("\n")
	}

	for _, reason := range d.Reasons {
		fmt.Fprintf(&sb, "  – %s\n", html.EscapeString(reason))
	}

	fmt.Fprintf(&sb, "📌 %s\n", d.Status)

	if d.URL != "" {
		fmt.Fprintf(&sb, "🔗 <a href=\"%s\">Open</a>", html.EscapeString(d.URL))
	}

	reply := Reply{Text: strings.TrimRight(sb.String(), "\n")}

	if d.Status.AwaitsDecision() {
		reply.Keyboard = DealKeyboard(d.ID)
	}

	return reply
}

func DealKeyboard(id value.DealID) *telego.InlineKeyboardMarkup {
	return tu.InlineKeyboard(
		tu.InlineKeyboardRow(
			tu.InlineKeyboardButton("✅ Approve").WithCallbackData(CallbackApprove+id.String()),
			tu.InlineKeyboardButton("🚫 Reject").WithCallbackData(CallbackReject+id.String()),
		),
	)
}

// Deals lists up to MaxDeals deals; pending ones get a button row each.
func Deals(deals []entity.Deal) Reply {
	if len(deals) == 0 {
		return Reply{Text: NoDeals}
	}

	var (
		sb   strings.Builder
		rows [][]telego.InlineKeyboardButton
	)

	fmt.Fprintf(&sb, "🛍 <b>Deals</b> (%d)\n\n", len(deals))

	for i, d := range deals {
		if i == MaxDeals {
			fmt.Fprintf(&sb, "\n… %d more", len(deals)-MaxDeals)
			break
		}

		score := "-"
		if d.Score != nil {
			score = fmt.Sprint(*d.Score)
		}

		fmt.Fprintf(&sb, "<code>%s</code> %s · R$ %.2f · %s · %s\n",
			d.ID, html.EscapeString(d.Title), d.CurrentPrice, score, d.Status)

		if d.Status.AwaitsDecision() {
			rows = append(rows, tu.InlineKeyboardRow(
				tu.InlineKeyboardButton("✅ "+d.ID.String()).WithCallbackData(CallbackApprove+d.ID.String()),
				tu.InlineKeyboardButton("🚫 "+d.ID.String()).WithCallbackData(CallbackReject+d.ID.String()),
			))
		}
	}

	reply := Reply{Text: strings.TrimRight(sb.String(), "\n")}

	if len(rows) > 0 {
		reply.Keyboard = tu.InlineKeyboard(rows...)
	}

	return reply
}

func Runs(lines []string) Reply {
	if len(lines) == 0 {
		return Reply{Text: NoRuns}
	}

	escaped := make([]string, 0, len(lines))
	for _, l := range lines {
		escaped = append(escaped, "• "+html.EscapeString(l))
	}

	return Reply{Text: "🕘 <b>Runs</b>\n\n" + strings.Join(escaped, "\n")}
}

// Field is one config draft member for /config.
type Field struct {
	Name  string
	Value string
}

func Config(fields []Field, dirty bool) Reply {
	var sb strings.Builder

	sb.WriteString("⚙️ <b>Config draft</b>")

	if dirty {
		sb.WriteString(" ✏️ <i>unsaved</i>")
	}

	sb.WriteString("\n\n")

	for _, f := range fields {
		v := f.Value
		if v == "" {
			v = "-"
		}

		fmt.Fprintf(&sb, "<b>%s</b>\n<code>%s</code>\n", f.Name, html.EscapeString(v))
	}

	return Reply{Text: strings.TrimRight(sb.String(), "\n")}
}

// ParseCallback reads "deal_approve:<id>" or "deal_reject:<id>".
func ParseCallback(data string) (entity.Action, value.DealID, error) {
	var (
		action entity.Action
		rest   string
	)

	switch {
	case strings.HasPrefix(data, CallbackApprove):
		action, rest = entity.ActionApprove, strings.TrimPrefix(data, CallbackApprove)
	case strings.HasPrefix(data, CallbackReject):
		action, rest = entity.ActionReject, strings.TrimPrefix(data, CallbackReject)
	default:
		return "", 0, errors.New("unknown callback " + data)
	}

	id, err := value.ParseDealID(rest)
	if err != nil {
		return "", 0, domain.WrapError(err, errcodes.InvalidDealID, "callback "+data)
	}

	return action, id, nil
}

// Journal renders recorded actions with who issued them.
func Journal(outcomes []entity.Outcome) Reply {
	if len(outcomes) == 0 {
		return Reply{Text: NoActions}
	}

	var sb strings.Builder

	sb.WriteString("📜 <b>Journal</b>\n\n")

	for _, o := range outcomes {
		sb.WriteString(Outcome(o))

		if o.Operator != "" {
			fmt.Fprintf(&sb, " <i>by %s</i>", html.EscapeString(o.Operator))
		}

		sb.WriteString("\n")
	}

	return Reply{Text: sb.String()}
}
