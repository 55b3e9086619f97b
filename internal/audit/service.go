// Package audit records administrative changes to saved filters.
package audit

import (
	"context"
	"encoding/json"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/TimurManjosov/ledgerrules/internal/store"
)

// Action constants for audit logging
const (
	ActionCreated    = "created"
	ActionUpdated    = "updated"
	ActionDeleted    = "deleted"
	ActionAuthFailed = "auth_failed"
)

// Status constants for audit logging
const (
	StatusSuccess = "success"
	StatusFailure = "failure"
)

// Event is one audited change.
type Event struct {
	OccurredAt   time.Time      `json:"occurred_at"`
	RequestID    string         `json:"request_id"`
	IPAddress    string         `json:"ip_address"`
	UserAgent    string         `json:"user_agent"`
	Action       string         `json:"action"`
	FilterID     string         `json:"filter_id,omitempty"`
	BeforeState  map[string]any `json:"before_state,omitempty"`
	AfterState   map[string]any `json:"after_state,omitempty"`
	Changes      map[string]any `json:"changes,omitempty"`
	Status       string         `json:"status"`
	ErrorMessage string         `json:"error_message,omitempty"`
}

// Sink persists audit events.
type Sink interface {
	Write(ctx context.Context, event Event) error
}

// Clock interface for testable time operations
type Clock interface {
	Now() time.Time
}

// SystemClock implements Clock using time.Now()
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }

// Service queues events and writes them to a Sink from a background worker.
// Log never blocks; events are dropped when the queue is full.
type Service struct {
	sink    Sink
	clock   Clock
	log     zerolog.Logger
	queue   chan Event
	stopCh  chan struct{}
	done    chan struct{}
	closed  int32
	dropped atomic.Int64
	mu      sync.RWMutex
}

// NewService starts a service with a queue of queueSize events. A nil clock
// uses the system clock.
func NewService(sink Sink, clock Clock, log zerolog.Logger, queueSize int) *Service {
	if clock == nil {
		clock = SystemClock{}
	}
	s := &Service{
		sink:   sink,
		clock:  clock,
		log:    log,
		queue:  make(chan Event, queueSize),
		stopCh: make(chan struct{}),
		done:   make(chan struct{}),
	}
	go s.worker()
	return s
}

func (s *Service) worker() {
	defer close(s.done)
	for {
		select {
		case event := <-s.queue:
			s.write(event)
		case <-s.stopCh:
			for {
				select {
				case event := <-s.queue:
					s.write(event)
				default:
					return
				}
			}
		}
	}
}

func (s *Service) write(event Event) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.sink.Write(ctx, event); err != nil {
		s.log.Error().Err(err).Str("action", event.Action).Msg("audit: failed to write event")
	}
}

// Log queues event. OccurredAt and Changes are filled when empty.
func (s *Service) Log(event Event) {
	if s == nil {
		return
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if atomic.LoadInt32(&s.closed) == 1 {
		return
	}

	if event.OccurredAt.IsZero() {
		event.OccurredAt = s.clock.Now()
	}
	if event.Changes == nil {
		event.Changes = ComputeChanges(event.BeforeState, event.AfterState)
	}

	select {
	case s.queue <- event:
	default:
		s.dropped.Add(1)
		s.log.Warn().Str("action", event.Action).Str("filter_id", event.FilterID).Msg("audit: queue full, dropping event")
	}
}

// Dropped reports how many events were discarded because the queue was full.
func (s *Service) Dropped() int64 {
	return s.dropped.Load()
}

// Close stops accepting events and waits until queued events are written.
// It is safe to call more than once.
func (s *Service) Close() error {
	s.mu.Lock()
	first := atomic.CompareAndSwapInt32(&s.closed, 0, 1)
	s.mu.Unlock()
	if first {
		close(s.stopCh)
	}
	<-s.done
	return nil
}

// FilterState is the audited snapshot of a filter.
func FilterState(f *store.Filter) map[string]any {
	if f == nil {
		return nil
	}
	conditions, _ := json.Marshal(f.Conditions)
	return map[string]any{
		"name":         f.Name,
		"conditionsOp": string(f.ConditionsOp),
		"conditions":   string(conditions),
	}
}

// ComputeChanges returns before/after pairs for every key whose value
// differs, or nil when nothing changed.
func ComputeChanges(before, after map[string]any) map[string]any {
	if before == nil && after == nil {
		return nil
	}

	changes := make(map[string]any)
	for key, afterVal := range after {
		beforeVal, existed := before[key]
		beforeJSON, _ := json.Marshal(beforeVal)
		afterJSON, _ := json.Marshal(afterVal)
		if !existed || string(beforeJSON) != string(afterJSON) {
			changes[key] = map[string]any{"before": beforeVal, "after": afterVal}
		}
	}
	for key, beforeVal := range before {
		if _, exists := after[key]; !exists {
			changes[key] = map[string]any{"before": beforeVal, "after": nil}
		}
	}

	if len(changes) == 0 {
		return nil
	}
	return changes
}
