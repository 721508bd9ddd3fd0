package tui

import (
	"fmt"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"smartdeals/internal/board"
	"smartdeals/internal/domain/entity"
	"smartdeals/internal/domain/value"
)

type command int

const (
	commandNone command = iota
	commandRefresh
	commandScan
	commandQuit
	commandLogout
	commandApprove
	commandReject
	commandFocusConfig
	commandFocusDeals
	commandFocusRuns
)

// commandFor maps a dashboard key to a command. Keys are case sensitive:
// L logs out, l does nothing.
func commandFor(r rune) command {
	switch r {
	case 'u':
		return commandRefresh
	case 's':
		return commandScan
	case 'q':
		return commandQuit
	case 'L':
		return commandLogout
	case 'a':
		return commandApprove
	case 'r':
		return commandReject
	case 'c':
		return commandFocusConfig
	case 'd':
		return commandFocusDeals
	case 'h':
		return commandFocusRuns
	default:
		return commandNone
	}
}

var dealHeaders = []string{"ID", "Source", "Title", "Price", "Score", "Status"} //nolint:gochecknoglobals

func dealCells(r board.Row) []string {
	return []string{r.ID, r.Source, r.Title, r.Price, r.Score, r.Status}
}

func statusColor(s value.DealStatus) tcell.Color {
	switch {
	case s == value.DealApproved || s == value.DealPosted:
		return tcell.ColorGreen
	case s == value.DealRejected:
		return tcell.ColorRed
	case s.AwaitsDecision():
		return tcell.ColorYellow
	default:
		return tview.Styles.PrimaryTextColor
	}
}

// paneTitle shows the row count and the last successful sync. A failed
// refresh keeps the old rows and marks them stale.
func paneTitle(name string, count int, syncedAt time.Time, err error) string {
	title := fmt.Sprintf(" %s (%d)", name, count)

	if !syncedAt.IsZero() {
		title += " synced " + syncedAt.Format(time.TimeOnly)
	}

	if err != nil {
		title += " [red]stale[-]"
	}

	return title + " "
}

func outcomeLine(o entity.Outcome) string {
	target := ""
	if o.Target != "" {
		target = " " + tview.Escape(o.Target)
	}

	at := o.At.Format(time.TimeOnly)

	if o.OK() {
		return fmt.Sprintf("[green]✔ %s%s[-] %s", o.Action, target, at)
	}

	return fmt.Sprintf("[red]✘ %s%s: %s[-] %s", o.Action, target, tview.Escape(o.Err.Error()), at)
}

const helpLine = "[::b]u[::-] refresh  [::b]s[::-] scan  [::b]a[::-]/[::b]r[::-] approve/reject  " +
	"[::b]c[::-]/[::b]d[::-]/[::b]h[::-] config/deals/runs  [::b]L[::-] logout  [::b]q[::-] quit"
