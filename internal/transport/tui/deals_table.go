package tui

import (
	"github.com/rivo/tview"

	"smartdeals/internal/board"
	"smartdeals/internal/domain/entity"
	"smartdeals/internal/domain/value"
	"smartdeals/internal/state"
)

// dealsView is the deal table. Row 0 is the header.
type dealsView struct {
	table *tview.Table
	deals *state.Slice[[]entity.Deal]
	ids   []value.DealID
}

func newDealsView(deals *state.Slice[[]entity.Deal]) *dealsView {
	table := tview.NewTable().
		SetBorders(false).
		SetSelectable(true, false).
		SetFixed(1, 0)

	table.SetBorder(true)

	v := &dealsView{table: table, deals: deals}
	v.Update()

	return v
}

func (v *dealsView) Widget() tview.Primitive {
	return v.table
}

// Update redraws from the deals slice and keeps the selected deal selected.
func (v *dealsView) Update() {
	selected, hadSelection := v.Selected()

	snap := v.deals.Snapshot()

	v.table.Clear()

	for col, header := range dealHeaders {
		v.table.SetCell(0, col, tview.NewTableCell(header).
			SetTextColor(tview.Styles.SecondaryTextColor).
			SetSelectable(false))
	}

	v.ids = v.ids[:0]
	selectRow := 1

	for i, d := range snap.Value {
		row := i + 1

		for col, text := range dealCells(board.NewRow(d)) {
			cell := tview.NewTableCell(tview.Escape(text)).SetTextColor(statusColor(d.Status))
			if col == 2 {
				cell.SetExpansion(1).SetMaxWidth(60)
			}

			v.table.SetCell(row, col, cell)
		}

		v.ids = append(v.ids, d.ID)

		if hadSelection && d.ID == selected {
			selectRow = row
		}
	}

	if len(v.ids) > 0 {
		v.table.Select(selectRow, 0)
	}

	v.table.SetTitle(paneTitle("Deals", len(snap.Value), snap.SyncedAt, snap.Err))
}

// Selected is the deal under the cursor.
func (v *dealsView) Selected() (value.DealID, bool) {
	row, _ := v.table.GetSelection()
	if row < 1 || row > len(v.ids) {
		return 0, false
	}

	return v.ids[row-1], true
}
