package memory

import (
	"context"

	"github.com/iho/gosettle/internal/domain"
)

// AuditRepository implements usecase.AuditSink. Records are written
// immediately and survive a rolled back unit of work.
type AuditRepository struct {
	store *Store
}

// NewAuditRepository creates a new AuditRepository.
func NewAuditRepository(store *Store) *AuditRepository {
	return &AuditRepository{store: store}
}

// Record stores an audit log.
func (r *AuditRepository) Record(ctx context.Context, log *domain.AuditLog) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	r.store.audit = append(r.store.audit, *log)
	return nil
}

// GetByResourceID returns the audit logs of one resource in write order.
func (r *AuditRepository) GetByResourceID(ctx context.Context, resourceType, resourceID string) ([]*domain.AuditLog, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	var logs []*domain.AuditLog
	for _, l := range r.store.audit {
		if l.ResourceType == resourceType && l.ResourceID == resourceID {
			l := l
			logs = append(logs, &l)
		}
	}
	return logs, nil
}
