package usecase

import (
	"context"
	"time"

	"github.com/iho/gosettle/internal/domain"
)

// AuditHandler writes an audit record for every requested payment.
type AuditHandler struct {
	sink  AuditSink
	idGen IDGenerator
	now   func() time.Time
}

// NewAuditHandler creates a new AuditHandler.
func NewAuditHandler(sink AuditSink, idGen IDGenerator) *AuditHandler {
	return &AuditHandler{
		sink:  sink,
		idGen: idGen,
		now:   func() time.Time { return time.Now().UTC() },
	}
}

func (h *AuditHandler) Handle(ctx context.Context, _ Transaction, event domain.Event) error {
	entry := &domain.AuditLog{
		ID:           h.idGen.Generate(),
		Actor:        actorOf(event),
		Action:       event.EventType(),
		ResourceType: domain.AggregateTypeTransaction,
		ResourceID:   event.AggregateID(),
		AfterState:   domain.MarshalState(event),
		Status:       string(domain.AuditStatusSuccess),
		CreatedAt:    h.now(),
	}

	if err := h.sink.Record(ctx, entry); err != nil {
		return &domain.BestEffortError{Handler: "audit", Err: err}
	}
	return nil
}

func actorOf(event domain.Event) string {
	if req, ok := event.(*domain.PaymentRequested); ok {
		return req.SenderAccountID
	}
	return ""
}
