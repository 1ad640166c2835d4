// Package events carries the explicit "raw good cost updated" message from
// the purchase order processor to its consumers, replacing the original's
// implicit live-subscription diffing with a direct publish.
package events

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/zap"

	"github.com/prepflow/backoffice/internal/domain/models"
)

// Publisher is the narrow interface services use to announce cost changes.
type Publisher interface {
	Publish(ctx context.Context, ev models.CostChanged) error
}

// Subscriber consumes a cost-change event. Returning an error does not stop
// delivery to other subscribers.
type Subscriber func(ctx context.Context, ev models.CostChanged) error

// Bus dispatches cost-change events synchronously, in subscription order.
// Delivery is best effort: every subscriber runs, and their errors are
// joined into the Publish result.
type Bus struct {
	mu          sync.RWMutex
	subscribers []Subscriber
	logger      *zap.Logger
}

// NewBus creates an empty bus.
func NewBus(logger *zap.Logger) *Bus {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Bus{logger: logger}
}

// Subscribe registers a consumer for every subsequent publish.
func (b *Bus) Subscribe(fn Subscriber) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.subscribers = append(b.subscribers, fn)
}

// Publish delivers the event to every subscriber.
func (b *Bus) Publish(ctx context.Context, ev models.CostChanged) error {
	b.mu.RLock()
	subs := make([]Subscriber, len(b.subscribers))
	copy(subs, b.subscribers)
	b.mu.RUnlock()

	var errs []error
	for _, fn := range subs {
		if err := fn(ctx, ev); err != nil {
			b.logger.Error("cost change subscriber failed",
				zap.String("rawGood", ev.Name),
				zap.Float64("newCost", ev.NewCost),
				zap.Error(err))
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
