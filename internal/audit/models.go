package audit

import "time"

// Event is emitted from domain logic to capture costume access decisions.
// Reason carries the internal cause of a denial and never leaves the process.
type Event struct {
	Timestamp time.Time
	CostumeID string
	Action    Action
	Decision  Decision
	Reason    Reason
	RequestID string
	SessionID string
}

type Action string

const (
	ActionCostumeLookup  Action = "costume_lookup"
	ActionCostumeRemoval Action = "costume_removal"
)

type Decision string

const (
	DecisionGranted Decision = "granted"
	DecisionDenied  Decision = "denied"
)

type Reason string

const (
	ReasonVerified      Reason = "owner_verified"
	ReasonUnknownID     Reason = "unknown_id"
	ReasonOwnerMismatch Reason = "owner_mismatch"
)
