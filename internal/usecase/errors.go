package usecase

import "fmt"

// HandlerError reports a fatal event handler failure. It aborts the unit
// of work the event was dispatched in.
type HandlerError struct {
	Handler   string
	EventType string
	Err       error
}

func (e *HandlerError) Error() string {
	return fmt.Sprintf("handler %s failed on %s: %v", e.Handler, e.EventType, e.Err)
}

func (e *HandlerError) Unwrap() error { return e.Err }
