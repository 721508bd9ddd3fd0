package tui

import (
	"strings"

	"github.com/rivo/tview"

	"smartdeals/internal/domain/entity"
	"smartdeals/internal/history"
	"smartdeals/internal/state"
)

type runsView struct {
	text    *tview.TextView
	runs    *state.Slice[[]entity.Run]
	history *history.History
}

func newRunsView(runs *state.Slice[[]entity.Run], h *history.History) *runsView {
	text := tview.NewTextView().
		SetDynamicColors(true).
		SetScrollable(true).
		SetWrap(false)

	text.SetBorder(true)

	v := &runsView{text: text, runs: runs, history: h}
	v.Update()

	return v
}

func (v *runsView) Widget() tview.Primitive {
	return v.text
}

func (v *runsView) Update() {
	snap := v.runs.Snapshot()

	lines := v.history.Lines()
	for i := range lines {
		lines[i] = tview.Escape(lines[i])
	}

	v.text.SetText(strings.Join(lines, "\n"))
	v.text.ScrollToBeginning()
	v.text.SetTitle(paneTitle("Runs", len(snap.Value), snap.SyncedAt, snap.Err))
}
