package audit

import (
	"context"
	"sync"

	"github.com/rs/zerolog"
)

// LogSink writes events as structured log lines.
type LogSink struct {
	log zerolog.Logger
}

// NewLogSink creates a sink that logs through log.
func NewLogSink(log zerolog.Logger) *LogSink {
	return &LogSink{log: log.With().Str("component", "audit").Logger()}
}

func (s *LogSink) Write(_ context.Context, event Event) error {
	e := s.log.Info()
	if event.Status == StatusFailure {
		e = s.log.Warn()
	}
	e = e.Time("occurred_at", event.OccurredAt).
		Str("request_id", event.RequestID).
		Str("ip", event.IPAddress).
		Str("action", event.Action).
		Str("status", event.Status)
	if event.FilterID != "" {
		e = e.Str("filter_id", event.FilterID)
	}
	if event.Changes != nil {
		e = e.Interface("changes", event.Changes)
	}
	if event.ErrorMessage != "" {
		e = e.Str("error", event.ErrorMessage)
	}
	e.Msg("audit event")
	return nil
}

// MemorySink keeps events in memory.
type MemorySink struct {
	mu     sync.Mutex
	events []Event
}

func (s *MemorySink) Write(_ context.Context, event Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, event)
	return nil
}

// Events returns a copy of the recorded events.
func (s *MemorySink) Events() []Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Event(nil), s.events...)
}
