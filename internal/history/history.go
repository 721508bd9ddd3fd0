// Package history renders past scanner runs. It never mutates anything.
package history

import (
	"bytes"
	stdjson "encoding/json"
	"strings"

	"github.com/samber/lo"

	"smartdeals/internal/domain/entity"
	"smartdeals/internal/state"
)

// TimeLayout matches the backend's naive ISO timestamps.
const TimeLayout = "2006-01-02T15:04:05.999999"

type History struct {
	runs *state.Slice[[]entity.Run]
}

func New(runs *state.Slice[[]entity.Run]) *History {
	return &History{runs: runs}
}

// Runs returns the runs newest first, as the backend orders them.
func (h *History) Runs() []entity.Run {
	return h.runs.Get()
}

// Lines renders "<started_at> - <status> - <stats>" per run.
func (h *History) Lines() []string {
	return lo.Map(h.Runs(), func(r entity.Run, _ int) string {
		return Line(r)
	})
}

// Line shows started_at as the backend sent it, offset included.
func Line(r entity.Run) string {
	started := r.StartedAtText
	if started == "" && !r.StartedAt.IsZero() {
		started = r.StartedAt.Format(TimeLayout)
	}

	if started == "" {
		started = "-"
	}

	return strings.Join([]string{started, r.Status, compact(r.Stats)}, " - ")
}

// compact keeps member order, unlike a decode and re-encode through a map.
func compact(stats []byte) string {
	if len(stats) == 0 {
		return "{}"
	}

	var buf bytes.Buffer

	if err := stdjson.Compact(&buf, stats); err != nil {
		return string(stats)
	}

	return buf.String()
}
