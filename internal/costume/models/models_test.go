package models

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "costumedesk/pkg/domain-errors"
)

func TestNewRecord(t *testing.T) {
	owner := Owner{FirstName: "Jane", LastName: "Doe"}

	t.Run("valid record", func(t *testing.T) {
		r, err := NewRecord("C-100", "Vampire Cape", "classic", 5, 99, owner)
		require.NoError(t, err)
		assert.Equal(t, "Vampire Cape", r.Name)
		assert.Equal(t, "classic", r.Category)
		assert.Equal(t, owner, r.Owner)
	})

	t.Run("equal bounds are allowed", func(t *testing.T) {
		_, err := NewRecord("C-1", "Tiny Pumpkin", "seasonal", 3, 3, owner)
		assert.NoError(t, err)
	})

	tests := []struct {
		name           string
		id             string
		minAge, maxAge int
	}{
		{"empty id", "", 1, 2},
		{"negative min age", "C-1", -1, 2},
		{"min above max", "C-1", 12, 8},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewRecord(tt.id, "x", "y", tt.minAge, tt.maxAge, owner)
			assert.True(t, dErrors.HasCode(err, dErrors.CodeInvariantViolation))
		})
	}
}

func TestClone(t *testing.T) {
	r, err := NewRecord("C-100", "Vampire Cape", "classic", 5, 99, Owner{"Jane", "Doe"})
	require.NoError(t, err)

	c := r.Clone()
	c.Owner.FirstName = "Mallory"
	assert.Equal(t, "Jane", r.Owner.FirstName)

	var nilRecord *Record
	assert.Nil(t, nilRecord.Clone())
}

func TestRecordNotFound(t *testing.T) {
	err := RecordNotFound("C-100")

	assert.EqualError(t, err, "Costume C-100 not found")
	assert.ErrorIs(t, err, ErrCostumeNotFound)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeNotFound))

	var nf *NotFoundError
	require.True(t, errors.As(fmt.Errorf("tool: %w", err), &nf))
	assert.Equal(t, "C-100", nf.ID)
}
