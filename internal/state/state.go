package state

import (
	"time"

	"smartdeals/internal/domain/entity"
)

type Resource string

const (
	ResourceConfig Resource = "config"
	ResourceDeals  Resource = "deals"
	ResourceRuns   Resource = "runs"
)

func (r Resource) String() string {
	return string(r)
}

// Resources lists every resource in load order.
var Resources = []Resource{ResourceConfig, ResourceDeals, ResourceRuns} //nolint:gochecknoglobals

// State is the shared view the panes render from.
type State struct {
	Config *Slice[entity.ScannerConfig]
	Deals  *Slice[[]entity.Deal]
	Runs   *Slice[[]entity.Run]
}

func New(now func() time.Time) *State {
	return &State{
		Config: NewSlice[entity.ScannerConfig](now),
		Deals:  NewSlice[[]entity.Deal](now),
		Runs:   NewSlice[[]entity.Run](now),
	}
}

func (s *State) Reset() {
	s.Config.Reset()
	s.Deals.Reset()
	s.Runs.Reset()
}
