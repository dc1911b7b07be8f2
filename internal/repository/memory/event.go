package memory

import (
	"context"
	"sync"

	"conduit-api/internal/model"
)

type EventRepository struct {
	mu     sync.RWMutex
	events []model.AuthEvent
}

func NewEventRepository() *EventRepository {
	return &EventRepository{}
}

func (r *EventRepository) Create(_ context.Context, event *model.AuthEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.events = append(r.events, *event)
	return nil
}

// ListByEmail returns the newest events first.
func (r *EventRepository) ListByEmail(_ context.Context, email string, limit int) ([]model.AuthEvent, error) {
	if limit <= 0 || limit > 200 {
		limit = 100
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]model.AuthEvent, 0)
	for i := len(r.events) - 1; i >= 0 && len(out) < limit; i-- {
		if r.events[i].Email == email {
			out = append(out, r.events[i])
		}
	}
	return out, nil
}
