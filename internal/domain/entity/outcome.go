package entity

import "time"

type Action string

const (
	ActionLogin      Action = "login"
	ActionLogout     Action = "logout"
	ActionRefresh    Action = "refresh"
	ActionSaveConfig Action = "save_config"
	ActionRunScan    Action = "run_scan"
	ActionApprove    Action = "approve"
	ActionReject     Action = "reject"
)

func (a Action) String() string {
	return string(a)
}

// Outcome reports how one operator action ended.
type Outcome struct {
	Action   Action
	Target   string
	Operator string
	Err      error
	At       time.Time
}

func (o Outcome) OK() bool {
	return o.Err == nil
}
