package postgres

import (
	"context"

	"github.com/google/uuid"

	"github.com/iho/gosettle/internal/domain"
	"github.com/iho/gosettle/internal/infrastructure/postgres/queries"
)

// AuditRepository implements usecase.AuditSink. Records are written
// through the pool, outside the payment's unit of work.
type AuditRepository struct {
	queries *queries.Queries
}

// NewAuditRepository creates a new audit repository.
func NewAuditRepository(db queries.DBTX) *AuditRepository {
	return &AuditRepository{queries: queries.New(db)}
}

// Record inserts a new audit log entry.
func (r *AuditRepository) Record(ctx context.Context, log *domain.AuditLog) error {
	if log.ID == "" {
		log.ID = uuid.New().String()
	}

	before, err := marshalJSON(log.BeforeState)
	if err != nil {
		return err
	}
	after, err := marshalJSON(log.AfterState)
	if err != nil {
		return err
	}

	return r.queries.CreateAuditLog(ctx, queries.CreateAuditLogParams{
		ID:           log.ID,
		Actor:        log.Actor,
		Action:       log.Action,
		ResourceType: log.ResourceType,
		ResourceID:   log.ResourceID,
		RequestID:    log.RequestID,
		BeforeState:  before,
		AfterState:   after,
		Status:       log.Status,
		ErrorMessage: log.ErrorMessage,
		CreatedAt:    timeToPgTimestamptz(log.CreatedAt),
	})
}

// GetByResourceID retrieves all audit logs for a specific resource.
func (r *AuditRepository) GetByResourceID(ctx context.Context, resourceType, resourceID string) ([]*domain.AuditLog, error) {
	rows, err := r.queries.GetAuditLogsByResource(ctx, queries.GetAuditLogsByResourceParams{
		ResourceType: resourceType,
		ResourceID:   resourceID,
	})
	if err != nil {
		return nil, err
	}

	logs := make([]*domain.AuditLog, 0, len(rows))
	for _, row := range rows {
		logs = append(logs, &domain.AuditLog{
			ID:           row.ID,
			Actor:        row.Actor,
			Action:       row.Action,
			ResourceType: row.ResourceType,
			ResourceID:   row.ResourceID,
			RequestID:    row.RequestID,
			BeforeState:  unmarshalJSON(row.BeforeState),
			AfterState:   unmarshalJSON(row.AfterState),
			Status:       row.Status,
			ErrorMessage: row.ErrorMessage,
			CreatedAt:    row.CreatedAt.Time,
		})
	}

	return logs, nil
}
