package models

import (
	dErrors "costumedesk/pkg/domain-errors"
)

// Owner is the person a costume is rented to.
type Owner struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

// Record is one rentable costume. Age bounds are inclusive and descriptive
// only; nothing enforces them against a caller.
type Record struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Category string `json:"type"`
	MinAge   int    `json:"min_age"`
	MaxAge   int    `json:"max_age"`
	Owner    Owner  `json:"owner"`
}

// NewRecord validates the construction invariants of a costume record.
func NewRecord(id, name, category string, minAge, maxAge int, owner Owner) (*Record, error) {
	if id == "" {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "costume id cannot be empty")
	}
	if minAge < 0 {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "costume min age cannot be negative")
	}
	if minAge > maxAge {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "costume min age must not exceed max age")
	}
	return &Record{
		ID:       id,
		Name:     name,
		Category: category,
		MinAge:   minAge,
		MaxAge:   maxAge,
		Owner:    owner,
	}, nil
}

// Clone returns an independent copy. Records are only ever handed out as copies.
func (r *Record) Clone() *Record {
	if r == nil {
		return nil
	}
	c := *r
	return &c
}

// Claim is the caller-supplied identity triple that must match a record
// before it is disclosed or removed.
type Claim struct {
	ID             string
	OwnerFirstName string
	OwnerLastName  string
}
