package app

import (
	"context"
	"fmt"

	"conduit-api/internal/model"
	"conduit-api/internal/repository"
)

// AuditService persists auth events straight into the event repository and
// serves the audit trail to admins. It is the publisher used when no broker
// is configured.
type AuditService struct {
	events repository.EventRepository
}

func NewAuditService(events repository.EventRepository) *AuditService {
	return &AuditService{events: events}
}

func (s *AuditService) Publish(ctx context.Context, event model.AuthEvent) error {
	if err := s.events.Create(ctx, &event); err != nil {
		return fmt.Errorf("store auth event failed: %w", err)
	}
	return nil
}

func (s *AuditService) List(ctx context.Context, email string, limit int) ([]model.AuthEvent, error) {
	if email == "" {
		return nil, ErrInvalidInput
	}
	return s.events.ListByEmail(ctx, email, limit)
}
