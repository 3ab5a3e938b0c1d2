// Package events publishes catalogue change notifications.
package events

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"

	"storefront/models"
)

const (
	EventProductCreated = "product_created"
)

// ProductEvent is the message body published for catalogue changes.
type ProductEvent struct {
	EventID     string         `json:"event_id"`
	EventType   string         `json:"event_type"`
	Timestamp   time.Time      `json:"timestamp"`
	ProductID   string         `json:"product_id"`
	ProductData models.Product `json:"product_data"`
}

func NewProductEvent(eventType string, p models.Product) ProductEvent {
	return ProductEvent{
		EventID:     uuid.NewString(),
		EventType:   eventType,
		Timestamp:   time.Now().UTC(),
		ProductID:   p.ID,
		ProductData: p,
	}
}

func (e *ProductEvent) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

type Publisher interface {
	Publish(ctx context.Context, ev ProductEvent) error
	Close() error
}

// Nop drops every event. It is used when no broker is configured.
type Nop struct{}

func (Nop) Publish(context.Context, ProductEvent) error { return nil }
func (Nop) Close() error                                { return nil }

// Recorder keeps published events in memory.
type Recorder struct {
	mu     sync.Mutex
	events []ProductEvent
}

func (r *Recorder) Publish(_ context.Context, ev ProductEvent) error {
	r.mu.Lock()
	r.events = append(r.events, ev)
	r.mu.Unlock()
	return nil
}

func (r *Recorder) Close() error { return nil }

func (r *Recorder) Events() []ProductEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]ProductEvent(nil), r.events...)
}
