package entity

import (
	"time"

	"smartdeals/internal/domain/value"
)

// Deal is a candidate offer awaiting an operator decision. Status transitions
// happen on the backend only.
type Deal struct {
	ID           value.DealID
	Source       string
	ProductID    string
	Title        string
	URL          string
	CurrentPrice float64
	OldPrice     *float64
	Score        *int
	Verdict      string
	Reasons      []string
	Status       value.DealStatus
	CreatedAt    time.Time
	PostedAt     *time.Time
}

// DealFilter mirrors the query parameters GET /deals accepts.
type DealFilter struct {
	Status   value.DealStatus
	Source   string
	Query    string
	MinScore *int
}
