package tui

import (
	"errors"
	"testing"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/stretchr/testify/require"

	"smartdeals/internal/board"
	"smartdeals/internal/domain/entity"
	"smartdeals/internal/domain/value"
)

func TestCommandFor(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		key  rune
		want command
	}{
		{key: 'u', want: commandRefresh},
		{key: 's', want: commandScan},
		{key: 'q', want: commandQuit},
		{key: 'L', want: commandLogout},
		{key: 'l', want: commandNone},
		{key: 'a', want: commandApprove},
		{key: 'r', want: commandReject},
		{key: 'd', want: commandFocusDeals},
		{key: 'x', want: commandNone},
	}

	for _, tc := range testCases {
		t.Run(string(tc.key), func(t *testing.T) {
			t.Parallel()

			require.Equal(t, tc.want, commandFor(tc.key))
		})
	}
}

func TestPaneTitle(t *testing.T) {
	t.Parallel()

	synced := time.Date(2026, 5, 1, 12, 30, 5, 0, time.UTC)

	testCases := []struct {
		name     string
		count    int
		syncedAt time.Time
		err      error
		want     string
	}{
		{name: "never synced", want: " Deals (0) "},
		{name: "synced", count: 3, syncedAt: synced, want: " Deals (3) synced 12:30:05 "},
		{
			name:     "stale after failure",
			count:    3,
			syncedAt: synced,
			err:      errors.New("boom"),
			want:     " Deals (3) synced 12:30:05 [red]stale[-] ",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			require.Equal(t, tc.want, paneTitle("Deals", tc.count, tc.syncedAt, tc.err))
		})
	}
}

func TestOutcomeLine(t *testing.T) {
	t.Parallel()

	rq := require.New(t)
	at := time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)

	rq.Equal(
		"[green]✔ approve 5[-] 09:00:00",
		outcomeLine(entity.Outcome{Action: entity.ActionApprove, Target: "5", At: at}),
	)

	rq.Equal(
		"[red]✘ save_config: bad [mode[]: x[-] 09:00:00",
		outcomeLine(entity.Outcome{Action: entity.ActionSaveConfig, Err: errors.New("bad [mode]: x"), At: at}),
	)
}

func TestDealCells(t *testing.T) {
	t.Parallel()

	rq := require.New(t)
	score := 87

	row := board.NewRow(entity.Deal{
		ID:           5,
		Source:       "amazon",
		Title:        "Fone",
		CurrentPrice: 99.9,
		Score:        &score,
		Status:       value.DealPendingApproval,
	})

	cells := dealCells(row)
	rq.Len(cells, len(dealHeaders))
	rq.Equal([]string{"5", "amazon", "Fone", "99.90", "87", "pending_approval"}, cells)
}

func TestStatusColor(t *testing.T) {
	t.Parallel()

	rq := require.New(t)

	rq.Equal(tcell.ColorGreen, statusColor(value.DealApproved))
	rq.Equal(tcell.ColorGreen, statusColor(value.DealPosted))
	rq.Equal(tcell.ColorRed, statusColor(value.DealRejected))
	rq.Equal(tcell.ColorYellow, statusColor(value.DealPending))
}
