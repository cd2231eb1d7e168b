package usecase

import (
	"context"
	"sync"

	"github.com/iho/gosettle/internal/domain"
)

type deliveryLogKey struct{}

// deliveryLog remembers which best-effort handlers already delivered an
// event. It outlives a single attempt of a retried unit of work, so side
// effects that are not rolled back with it run once.
type deliveryLog struct {
	mu   sync.Mutex
	done map[string]struct{}
}

// WithDeliveryLog returns a context that tracks best-effort deliveries
// across every attempt made with it.
func WithDeliveryLog(ctx context.Context) context.Context {
	return context.WithValue(ctx, deliveryLogKey{}, &deliveryLog{done: make(map[string]struct{})})
}

// Delivered reports whether handler already delivered event under ctx.
// It is always false for a context without a delivery log.
func Delivered(ctx context.Context, handler string, event domain.Event) bool {
	log, ok := ctx.Value(deliveryLogKey{}).(*deliveryLog)
	if !ok {
		return false
	}

	log.mu.Lock()
	defer log.mu.Unlock()
	_, done := log.done[deliveryKey(handler, event)]
	return done
}

// MarkDelivered records a successful delivery. It is a no-op for a
// context without a delivery log.
func MarkDelivered(ctx context.Context, handler string, event domain.Event) {
	log, ok := ctx.Value(deliveryLogKey{}).(*deliveryLog)
	if !ok {
		return
	}

	log.mu.Lock()
	defer log.mu.Unlock()
	log.done[deliveryKey(handler, event)] = struct{}{}
}

func deliveryKey(handler string, event domain.Event) string {
	return handler + "|" + event.EventType() + "|" + event.AggregateID()
}
