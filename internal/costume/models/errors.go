package models

import (
	"errors"
	"fmt"

	dErrors "costumedesk/pkg/domain-errors"
)

// ErrCostumeNotFound matches every RecordNotFound error via errors.Is.
var ErrCostumeNotFound = errors.New("costume not found")

// NotFoundError is the only failure a caller sees for a lookup or removal.
// It is returned both for unknown ids and for owner mismatches.
type NotFoundError struct {
	ID string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("Costume %s not found", e.ID)
}

func (e *NotFoundError) Is(target error) bool {
	return target == ErrCostumeNotFound
}

// RecordNotFound builds the outward not-found error for id.
func RecordNotFound(id string) error {
	nf := &NotFoundError{ID: id}
	return &dErrors.Error{Code: dErrors.CodeNotFound, Message: nf.Error(), Err: nf}
}
