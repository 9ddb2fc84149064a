package audit

import (
	"context"
	"sync"
)

// MemoryRecorder is an in-memory Store, used in tests and single-shot runs
// that do not persist their audit trail.
type MemoryRecorder struct {
	mu     sync.Mutex
	events []*Event
}

// NewMemoryRecorder creates an empty in-memory recorder.
func NewMemoryRecorder() *MemoryRecorder {
	return &MemoryRecorder{}
}

// Record appends the event.
func (r *MemoryRecorder) Record(ctx context.Context, event *Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
	return nil
}

// GetEvents returns events matching the filter, oldest first.
func (r *MemoryRecorder) GetEvents(ctx context.Context, filter Filter) ([]*Event, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*Event
	for _, e := range r.events {
		if filter.RunID != "" && e.RunID != filter.RunID {
			continue
		}
		if filter.Type != "" && e.Type != filter.Type {
			continue
		}
		if filter.Phase != "" && e.Phase != filter.Phase {
			continue
		}
		if filter.Severity != "" && e.Severity != filter.Severity {
			continue
		}
		if !filter.AfterTime.IsZero() && !e.Timestamp.After(filter.AfterTime) {
			continue
		}
		if !filter.BeforeTime.IsZero() && !e.Timestamp.Before(filter.BeforeTime) {
			continue
		}
		out = append(out, e)
		if filter.Limit > 0 && len(out) >= filter.Limit {
			break
		}
	}
	return out, nil
}

// GetRecentEvents returns the newest events up to limit, newest first.
func (r *MemoryRecorder) GetRecentEvents(ctx context.Context, limit int) ([]*Event, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := len(r.events)
	if limit <= 0 || limit > n {
		limit = n
	}
	out := make([]*Event, 0, limit)
	for i := n - 1; i >= n-limit; i-- {
		out = append(out, r.events[i])
	}
	return out, nil
}

// Len returns the number of recorded events.
func (r *MemoryRecorder) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.events)
}
