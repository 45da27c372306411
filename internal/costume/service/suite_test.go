package service

//go:generate mockgen -source=service.go -destination=mocks/mocks.go -package=mocks Store,AuditPublisher

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"costumedesk/internal/audit"
	"costumedesk/internal/costume/models"
	"costumedesk/internal/costume/service/mocks"
	dErrors "costumedesk/pkg/domain-errors"
	"costumedesk/pkg/platform/sentinel"
)

// ServiceSuite drives the service against mocked collaborators to pin down
// error translation and audit emission.
type ServiceSuite struct {
	suite.Suite
	ctrl               *gomock.Controller
	mockStore          *mocks.MockStore
	mockAuditPublisher *mocks.MockAuditPublisher
	service            *Service
	ctx                context.Context
}

func (s *ServiceSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.mockStore = mocks.NewMockStore(s.ctrl)
	s.mockAuditPublisher = mocks.NewMockAuditPublisher(s.ctrl)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	s.service = New(s.mockStore,
		WithLogger(logger),
		WithAuditPublisher(s.mockAuditPublisher),
	)
	s.ctx = context.Background()
}

func (s *ServiceSuite) TearDownTest() {
	s.ctrl.Finish()
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) janeDoe() *models.Record {
	r, err := models.NewRecord("C-100", "Vampire Cape", "classic", 5, 99, models.Owner{FirstName: "Jane", LastName: "Doe"})
	s.Require().NoError(err)
	return r
}

func auditEvent(action audit.Action, decision audit.Decision, reason audit.Reason) gomock.Matcher {
	return gomock.Cond(func(e audit.Event) bool {
		return e.CostumeID == "C-100" && e.Action == action && e.Decision == decision && e.Reason == reason
	})
}

func (s *ServiceSuite) TestGetCostumeDetails() {
	s.Run("granted lookup is audited", func() {
		s.mockStore.EXPECT().FindByID(gomock.Any(), "C-100").Return(s.janeDoe(), nil)
		s.mockAuditPublisher.EXPECT().Emit(gomock.Any(),
			auditEvent(audit.ActionCostumeLookup, audit.DecisionGranted, audit.ReasonVerified)).Return(nil)

		rec, err := s.service.GetCostumeDetails(s.ctx, "C-100", "jane", "DOE")
		s.Require().NoError(err)
		s.Equal("Vampire Cape", rec.Name)
	})

	s.Run("unknown id is denied with its internal reason", func() {
		s.mockStore.EXPECT().FindByID(gomock.Any(), "C-100").Return(nil, sentinel.ErrNotFound)
		s.mockAuditPublisher.EXPECT().Emit(gomock.Any(),
			auditEvent(audit.ActionCostumeLookup, audit.DecisionDenied, audit.ReasonUnknownID)).Return(nil)

		_, err := s.service.GetCostumeDetails(s.ctx, "C-100", "Jane", "Doe")
		s.ErrorIs(err, models.ErrCostumeNotFound)
	})

	s.Run("owner mismatch is denied with its internal reason", func() {
		s.mockStore.EXPECT().FindByID(gomock.Any(), "C-100").Return(s.janeDoe(), nil)
		s.mockAuditPublisher.EXPECT().Emit(gomock.Any(),
			auditEvent(audit.ActionCostumeLookup, audit.DecisionDenied, audit.ReasonOwnerMismatch)).Return(nil)

		_, err := s.service.GetCostumeDetails(s.ctx, "C-100", "John", "Doe")
		s.ErrorIs(err, models.ErrCostumeNotFound)
	})

	s.Run("store failure is internal and not audited", func() {
		s.mockStore.EXPECT().FindByID(gomock.Any(), "C-100").Return(nil, errors.New("boom"))

		_, err := s.service.GetCostumeDetails(s.ctx, "C-100", "Jane", "Doe")
		s.True(dErrors.HasCode(err, dErrors.CodeInternal))
		s.NotErrorIs(err, models.ErrCostumeNotFound)
	})

	s.Run("audit failure does not fail the lookup", func() {
		s.mockStore.EXPECT().FindByID(gomock.Any(), "C-100").Return(s.janeDoe(), nil)
		s.mockAuditPublisher.EXPECT().Emit(gomock.Any(), gomock.Any()).Return(errors.New("audit down"))

		_, err := s.service.GetCostumeDetails(s.ctx, "C-100", "Jane", "Doe")
		s.NoError(err)
	})
}

func (s *ServiceSuite) TestRemoveCostume() {
	s.Run("verified removal deletes and audits", func() {
		s.mockStore.EXPECT().FindByID(gomock.Any(), "C-100").Return(s.janeDoe(), nil)
		s.mockStore.EXPECT().Delete(gomock.Any(), "C-100").Return(nil)
		s.mockAuditPublisher.EXPECT().Emit(gomock.Any(),
			auditEvent(audit.ActionCostumeRemoval, audit.DecisionGranted, audit.ReasonVerified)).Return(nil)

		s.NoError(s.service.RemoveCostume(s.ctx, "C-100", "Jane", "Doe"))
	})

	s.Run("mismatch never reaches delete", func() {
		s.mockStore.EXPECT().FindByID(gomock.Any(), "C-100").Return(s.janeDoe(), nil)
		s.mockAuditPublisher.EXPECT().Emit(gomock.Any(),
			auditEvent(audit.ActionCostumeRemoval, audit.DecisionDenied, audit.ReasonOwnerMismatch)).Return(nil)

		err := s.service.RemoveCostume(s.ctx, "C-100", "Jane", "Smith")
		s.ErrorIs(err, models.ErrCostumeNotFound)
	})

	s.Run("record vanishing before delete is not found", func() {
		s.mockStore.EXPECT().FindByID(gomock.Any(), "C-100").Return(s.janeDoe(), nil)
		s.mockStore.EXPECT().Delete(gomock.Any(), "C-100").Return(sentinel.ErrNotFound)

		err := s.service.RemoveCostume(s.ctx, "C-100", "Jane", "Doe")
		s.ErrorIs(err, models.ErrCostumeNotFound)
	})

	s.Run("delete failure is internal", func() {
		s.mockStore.EXPECT().FindByID(gomock.Any(), "C-100").Return(s.janeDoe(), nil)
		s.mockStore.EXPECT().Delete(gomock.Any(), "C-100").Return(errors.New("disk"))

		err := s.service.RemoveCostume(s.ctx, "C-100", "Jane", "Doe")
		s.True(dErrors.HasCode(err, dErrors.CodeInternal))
	})
}
