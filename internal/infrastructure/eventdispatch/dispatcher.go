// Package eventdispatch delivers domain events to the handlers registered
// for them, inside the caller's unit of work.
package eventdispatch

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/iho/gosettle/internal/domain"
	"github.com/iho/gosettle/internal/infrastructure/metrics"
	"github.com/iho/gosettle/internal/usecase"
)

// Policy decides what a handler failure does to the unit of work.
type Policy int

const (
	// Fatal failures abort the unit of work.
	Fatal Policy = iota
	// BestEffort failures are logged and counted only.
	BestEffort
)

func (p Policy) String() string {
	if p == Fatal {
		return "fatal"
	}
	return "best_effort"
}

// DefaultBestEffortTimeout bounds a best-effort handler.
const DefaultBestEffortTimeout = 5 * time.Second

// Registration binds a handler to an event type.
type Registration struct {
	Name    string
	Handler usecase.EventHandler
	Policy  Policy
}

// Registry maps event types to their handlers in registration order.
// It is built once at startup and read-only afterwards.
type Registry struct {
	handlers map[string][]Registration
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{handlers: make(map[string][]Registration)}
}

// Register adds a handler for eventType.
func (r *Registry) Register(eventType string, reg Registration) *Registry {
	r.handlers[eventType] = append(r.handlers[eventType], reg)
	return r
}

// Handlers returns the registrations for eventType.
func (r *Registry) Handlers(eventType string) []Registration {
	return r.handlers[eventType]
}

// Config holds dispatcher configuration.
type Config struct {
	Registry          *Registry
	Logger            zerolog.Logger
	Metrics           *metrics.Metrics
	BestEffortTimeout time.Duration
}

// Dispatcher implements usecase.EventDispatcher.
type Dispatcher struct {
	registry *Registry
	logger   zerolog.Logger
	metrics  *metrics.Metrics
	timeout  time.Duration
}

// New creates a new Dispatcher.
func New(cfg Config) *Dispatcher {
	if cfg.Registry == nil {
		cfg.Registry = NewRegistry()
	}
	if cfg.BestEffortTimeout <= 0 {
		cfg.BestEffortTimeout = DefaultBestEffortTimeout
	}
	return &Dispatcher{
		registry: cfg.Registry,
		logger:   cfg.Logger,
		metrics:  cfg.Metrics,
		timeout:  cfg.BestEffortTimeout,
	}
}

// Dispatch runs the handlers of each event concurrently and waits for all
// of them. It returns a *usecase.HandlerError for the first fatal failure;
// events after it are not dispatched.
func (d *Dispatcher) Dispatch(ctx context.Context, tx usecase.Transaction, events []domain.Event) error {
	for _, event := range events {
		if err := d.dispatch(ctx, tx, event); err != nil {
			return err
		}
	}
	return nil
}

func (d *Dispatcher) dispatch(ctx context.Context, tx usecase.Transaction, event domain.Event) error {
	regs := d.registry.Handlers(event.EventType())
	if len(regs) == 0 {
		d.logger.Debug().Str("event_type", event.EventType()).Msg("no handlers registered")
		return nil
	}

	var g errgroup.Group
	for _, reg := range regs {
		g.Go(func() error {
			if reg.Policy == BestEffort {
				d.runBestEffort(ctx, tx, reg, event)
				return nil
			}
			return d.runFatal(ctx, tx, reg, event)
		})
	}

	return g.Wait()
}

func (d *Dispatcher) runFatal(ctx context.Context, tx usecase.Transaction, reg Registration, event domain.Event) error {
	start := time.Now()
	err := invoke(ctx, tx, reg, event)
	d.metrics.ObserveHandler(reg.Name, time.Since(start))

	if err == nil {
		return nil
	}

	d.metrics.HandlerFailed(reg.Name, reg.Policy.String())
	d.logger.Error().Err(err).
		Str("handler", reg.Name).
		Str("event_type", event.EventType()).
		Str("aggregate_id", event.AggregateID()).
		Msg("fatal event handler failed")

	return &usecase.HandlerError{Handler: reg.Name, EventType: event.EventType(), Err: err}
}

// runBestEffort waits for the handler at most until its timeout. A handler
// that ignores its context keeps running but no longer blocks dispatch.
// Deliveries already recorded in the context's delivery log are skipped.
func (d *Dispatcher) runBestEffort(ctx context.Context, tx usecase.Transaction, reg Registration, event domain.Event) {
	if usecase.Delivered(ctx, reg.Name, event) {
		d.logger.Debug().
			Str("handler", reg.Name).
			Str("aggregate_id", event.AggregateID()).
			Msg("event already delivered")
		return
	}

	ctx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	start := time.Now()
	done := make(chan error, 1)
	go func() {
		done <- invoke(ctx, tx, reg, event)
	}()

	var err error
	select {
	case err = <-done:
	case <-ctx.Done():
		err = fmt.Errorf("handler timed out: %w", ctx.Err())
	}
	d.metrics.ObserveHandler(reg.Name, time.Since(start))

	if err == nil {
		usecase.MarkDelivered(ctx, reg.Name, event)
		return
	}

	d.metrics.HandlerFailed(reg.Name, reg.Policy.String())
	d.logger.Warn().Err(err).
		Str("handler", reg.Name).
		Str("event_type", event.EventType()).
		Str("aggregate_id", event.AggregateID()).
		Msg("best-effort event handler failed")
}

// invoke converts a handler panic into an error.
func invoke(ctx context.Context, tx usecase.Transaction, reg Registration, event domain.Event) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("handler panicked: %v", r)
		}
	}()
	return reg.Handler.Handle(ctx, tx, event)
}
