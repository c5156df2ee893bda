package shared

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	domain "github.com/rentalcore/backend/internal/domain/shared"
)

// AuditEntryResponse is one line of an entity's audit trail
type AuditEntryResponse struct {
	ID         uuid.UUID `json:"id"`
	EntityType string    `json:"entity_type"`
	EntityID   uuid.UUID `json:"entity_id"`
	Actor      string    `json:"actor"`
	Event      string    `json:"event"`
	Detail     string    `json:"detail,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
	Text       string    `json:"text"`
}

// AuditService reads the audit log
type AuditService struct {
	repo domain.AuditRepository
}

// NewAuditService creates an AuditService
func NewAuditService(repo domain.AuditRepository) *AuditService {
	return &AuditService{repo: repo}
}

// ListForEntity returns the entries of one entity in the order they were written
func (s *AuditService) ListForEntity(ctx context.Context, entityType string, entityID uuid.UUID) ([]AuditEntryResponse, error) {
	entityType = strings.ToUpper(strings.TrimSpace(entityType))
	if entityType == "" {
		return nil, domain.NewValidationError("INVALID_ENTITY_TYPE", "Entity type is required")
	}
	entries, err := s.repo.FindByEntity(ctx, entityType, entityID)
	if err != nil {
		return nil, err
	}
	out := make([]AuditEntryResponse, len(entries))
	for i, e := range entries {
		out[i] = AuditEntryResponse{
			ID:         e.ID,
			EntityType: e.EntityType,
			EntityID:   e.EntityID,
			Actor:      e.Actor,
			Event:      e.Event,
			Detail:     e.Detail,
			OccurredAt: e.OccurredAt,
			Text:       e.Render(),
		}
	}
	return out, nil
}
