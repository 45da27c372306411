// Package identity decides whether a caller's claim matches a costume record.
package identity

import (
	"strings"

	"costumedesk/internal/costume/models"
)

// Verify reports whether claim identifies record: the id must match exactly
// and both owner names must match under Unicode simple case folding. Names
// are not trimmed. A nil record never matches.
func Verify(claim models.Claim, record *models.Record) bool {
	if record == nil {
		return false
	}
	return claim.ID == record.ID &&
		strings.EqualFold(claim.OwnerFirstName, record.Owner.FirstName) &&
		strings.EqualFold(claim.OwnerLastName, record.Owner.LastName)
}
