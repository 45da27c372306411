package handler

import (
	dErrors "costumedesk/pkg/domain-errors"
	"costumedesk/pkg/validation"
)

// OwnerClaimRequest names the owner of the costume in the URL. Names are
// passed through untrimmed; matching is case-insensitive only.
type OwnerClaimRequest struct {
	OwnerFirstName string `json:"owner_first_name" validate:"max=100"`
	OwnerLastName  string `json:"owner_last_name" validate:"max=100"`
}

func (r *OwnerClaimRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request is required")
	}
	return validation.Validate(r)
}
