package audit

import (
	"net"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"
)

// EventBuilder provides a fluent API for constructing audit events.
//
//	event := audit.NewEventBuilder(r).
//		ForFilter(id.String()).
//		WithAction(audit.ActionCreated).
//		WithAfterState(audit.FilterState(f)).
//		Build()
type EventBuilder struct {
	event Event
}

// NewEventBuilder starts an event from the request's ID and client details.
func NewEventBuilder(r *http.Request) *EventBuilder {
	return &EventBuilder{
		event: Event{
			RequestID: middleware.GetReqID(r.Context()),
			IPAddress: clientIP(r),
			UserAgent: r.UserAgent(),
			Status:    StatusSuccess,
		},
	}
}

func (b *EventBuilder) ForFilter(id string) *EventBuilder {
	b.event.FilterID = id
	return b
}

func (b *EventBuilder) WithAction(action string) *EventBuilder {
	b.event.Action = action
	return b
}

func (b *EventBuilder) WithBeforeState(state map[string]any) *EventBuilder {
	b.event.BeforeState = state
	return b
}

func (b *EventBuilder) WithAfterState(state map[string]any) *EventBuilder {
	b.event.AfterState = state
	return b
}

// Failure marks the event failed with msg.
func (b *EventBuilder) Failure(msg string) *EventBuilder {
	b.event.Status = StatusFailure
	b.event.ErrorMessage = msg
	return b
}

func (b *EventBuilder) Build() Event {
	return b.event
}

// clientIP strips the port from RemoteAddr, which RealIP has already
// rewritten when proxy headers are present.
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
