package domainerrors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/suite"
)

// DomainErrorsSuite covers the primitives every service and handler relies on:
// wrapping keeps the original code and errors.Is matches by code.
type DomainErrorsSuite struct {
	suite.Suite
}

func TestDomainErrorsSuite(t *testing.T) {
	suite.Run(t, new(DomainErrorsSuite))
}

func (s *DomainErrorsSuite) TestErrorString() {
	s.Run("message wins over code", func() {
		err := &Error{Code: CodeNotFound, Message: "costume C-100 not found"}
		s.Equal("costume C-100 not found", err.Error())
	})

	s.Run("falls back to code", func() {
		err := &Error{Code: CodeUnavailable}
		s.Equal("unavailable", err.Error())
	})
}

func (s *DomainErrorsSuite) TestIsMatchesByCode() {
	a := &Error{Code: CodeNotFound, Message: "costume A not found"}
	b := &Error{Code: CodeNotFound, Message: "costume B not found"}
	s.True(a.Is(b))
	s.False(a.Is(&Error{Code: CodeInternal}))
	s.False(a.Is(errors.New("not_found")))

	wrapped := &Error{Code: CodeInternal, Message: "outer", Err: a}
	s.True(errors.Is(wrapped, &Error{Code: CodeNotFound}))
}

func (s *DomainErrorsSuite) TestWrap() {
	s.Run("keeps the code of a wrapped domain error", func() {
		wrapped := Wrap(New(CodeNotFound, "missing"), CodeInternal, "lookup failed")

		var domainErr *Error
		s.Require().True(errors.As(wrapped, &domainErr))
		s.Equal(CodeNotFound, domainErr.Code)
		s.Equal("lookup failed", domainErr.Message)
	})

	s.Run("applies the given code to plain errors", func() {
		root := errors.New("dial tcp: connection refused")
		wrapped := Wrap(root, CodeUnavailable, "model unavailable")

		s.True(HasCode(wrapped, CodeUnavailable))
		s.ErrorIs(wrapped, root)
	})

	s.Run("works through fmt wrapping", func() {
		err := fmt.Errorf("tool call: %w", New(CodeInvalidInput, "id must be a string"))
		s.True(HasCode(err, CodeInvalidInput))
	})
}

func (s *DomainErrorsSuite) TestHasCode() {
	s.False(HasCode(nil, CodeNotFound))
	s.False(HasCode(errors.New("plain"), CodeNotFound))
	s.True(HasCode(New(CodeConflict, "dup"), CodeConflict))
}

func (s *DomainErrorsSuite) TestCodeOf() {
	s.Equal(CodeTimeout, CodeOf(New(CodeTimeout, "slow")))
	s.Equal(CodeInternal, CodeOf(errors.New("boom")))
	s.Equal(CodeNotFound, CodeOf(fmt.Errorf("ctx: %w", New(CodeNotFound, "gone"))))
}
