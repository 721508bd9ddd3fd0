package value

import (
	"fmt"
	"strconv"
	"strings"
)

type DealID int64

func (id DealID) String() string {
	return strconv.FormatInt(int64(id), 10)
}

func ParseDealID(s string) (DealID, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("strconv.ParseInt: %w", err)
	}

	if id <= 0 {
		return 0, fmt.Errorf("deal id %d: must be positive", id)
	}

	return DealID(id), nil
}

// DealStatus is owned by the backend. The console only reads it.
type DealStatus string

const (
	DealNew             DealStatus = "new"
	DealScored          DealStatus = "scored"
	DealPending         DealStatus = "pending"
	DealPendingApproval DealStatus = "pending_approval"
	DealApproved        DealStatus = "approved"
	DealRejected        DealStatus = "rejected"
	DealPosted          DealStatus = "posted"
)

func (s DealStatus) String() string {
	return string(s)
}

// AwaitsDecision reports whether an operator still has to approve or reject.
func (s DealStatus) AwaitsDecision() bool {
	switch s {
	case DealPending, DealPendingApproval, DealScored, DealNew:
		return true
	default:
		return false
	}
}

func (s DealStatus) IsTerminal() bool {
	switch s {
	case DealApproved, DealRejected, DealPosted:
		return true
	default:
		return false
	}
}
