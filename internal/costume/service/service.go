package service

import (
	"context"
	"errors"
	"log/slog"

	"costumedesk/internal/audit"
	"costumedesk/internal/costume/identity"
	"costumedesk/internal/costume/models"
	"costumedesk/internal/platform/metrics"
	"costumedesk/internal/platform/privacy"
	dErrors "costumedesk/pkg/domain-errors"
	"costumedesk/pkg/platform/sentinel"
	keyedsync "costumedesk/pkg/platform/sync"
	"costumedesk/pkg/requestcontext"
)

// Store is the persistence contract for costume records.
type Store interface {
	FindByID(ctx context.Context, id string) (*models.Record, error)
	Delete(ctx context.Context, id string) error
}

type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

// Service discloses and removes costume records only for callers whose claim
// matches the stored owner. Every failure is reported as RecordNotFound.
type Service struct {
	store          Store
	locks          *keyedsync.ShardedMutex
	logger         *slog.Logger
	auditPublisher AuditPublisher
	metrics        *metrics.Metrics
}

type Option func(s *Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithAuditPublisher(publisher AuditPublisher) Option {
	return func(s *Service) {
		s.auditPublisher = publisher
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

func New(store Store, opts ...Option) *Service {
	s := &Service{
		store: store,
		locks: keyedsync.NewShardedMutex(0),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// GetCostumeDetails returns a copy of the record identified by the claim.
func (s *Service) GetCostumeDetails(ctx context.Context, id, ownerFirstName, ownerLastName string) (*models.Record, error) {
	claim := models.Claim{ID: id, OwnerFirstName: ownerFirstName, OwnerLastName: ownerLastName}

	var found *models.Record
	err := s.locks.WithLock(id, func() error {
		rec, err := s.authorize(ctx, audit.ActionCostumeLookup, claim)
		if err != nil {
			return err
		}
		found = rec
		return nil
	})
	if err != nil {
		s.countLookup(outcomeOf(err))
		return nil, err
	}

	s.countLookup(metrics.OutcomeSuccess)
	s.emitAudit(ctx, audit.ActionCostumeLookup, id, audit.DecisionGranted, audit.ReasonVerified)
	return found, nil
}

// RemoveCostume deletes the record identified by the claim. Lookup, verify
// and delete run under the per-id lock, so concurrent removals of one
// costume succeed exactly once.
func (s *Service) RemoveCostume(ctx context.Context, id, ownerFirstName, ownerLastName string) error {
	claim := models.Claim{ID: id, OwnerFirstName: ownerFirstName, OwnerLastName: ownerLastName}

	err := s.locks.WithLock(id, func() error {
		if _, err := s.authorize(ctx, audit.ActionCostumeRemoval, claim); err != nil {
			return err
		}
		if err := s.store.Delete(ctx, id); err != nil {
			if errors.Is(err, sentinel.ErrNotFound) {
				return models.RecordNotFound(id)
			}
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to remove costume")
		}
		return nil
	})
	if err != nil {
		s.countRemoval(outcomeOf(err))
		return err
	}

	s.countRemoval(metrics.OutcomeSuccess)
	s.emitAudit(ctx, audit.ActionCostumeRemoval, id, audit.DecisionGranted, audit.ReasonVerified)
	if s.logger != nil {
		s.logger.InfoContext(ctx, "costume removed",
			"costume_id", id,
			"request_id", requestcontext.RequestID(ctx),
		)
	}
	return nil
}

// authorize must run under the lock for claim.ID. The reason for a denial is
// logged and audited here and then collapsed into RecordNotFound.
func (s *Service) authorize(ctx context.Context, action audit.Action, claim models.Claim) (*models.Record, error) {
	rec, err := s.store.FindByID(ctx, claim.ID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			s.deny(ctx, action, claim, audit.ReasonUnknownID)
			return nil, models.RecordNotFound(claim.ID)
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load costume")
	}
	if !identity.Verify(claim, rec) {
		s.deny(ctx, action, claim, audit.ReasonOwnerMismatch)
		return nil, models.RecordNotFound(claim.ID)
	}
	return rec, nil
}

func (s *Service) deny(ctx context.Context, action audit.Action, claim models.Claim, reason audit.Reason) {
	if s.logger != nil {
		s.logger.WarnContext(ctx, "costume access denied",
			"action", action,
			"costume_id", claim.ID,
			"reason", reason,
			"owner_first_name", privacy.MaskName(claim.OwnerFirstName),
			"owner_last_name", privacy.MaskName(claim.OwnerLastName),
			"request_id", requestcontext.RequestID(ctx),
		)
	}
	s.emitAudit(ctx, action, claim.ID, audit.DecisionDenied, reason)
}

func (s *Service) emitAudit(ctx context.Context, action audit.Action, id string, decision audit.Decision, reason audit.Reason) {
	if s.auditPublisher == nil {
		return
	}
	err := s.auditPublisher.Emit(ctx, audit.Event{
		CostumeID: id,
		Action:    action,
		Decision:  decision,
		Reason:    reason,
		RequestID: requestcontext.RequestID(ctx),
		SessionID: requestcontext.SessionID(ctx),
	})
	if err != nil && s.logger != nil {
		s.logger.ErrorContext(ctx, "failed to emit audit event",
			"error", err,
			"action", action,
			"costume_id", id,
		)
	}
}

func outcomeOf(err error) string {
	if errors.Is(err, models.ErrCostumeNotFound) {
		return metrics.OutcomeNotFound
	}
	return metrics.OutcomeError
}

func (s *Service) countLookup(outcome string) {
	if s.metrics != nil {
		s.metrics.IncrementCostumeLookup(outcome)
	}
}

func (s *Service) countRemoval(outcome string) {
	if s.metrics != nil {
		s.metrics.IncrementCostumeRemoval(outcome)
	}
}
