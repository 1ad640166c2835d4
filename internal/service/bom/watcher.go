package bom

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/prepflow/backoffice/internal/domain/models"
	"github.com/prepflow/backoffice/internal/events"
	"github.com/prepflow/backoffice/internal/repository/docstore"
)

// Watcher turns raw-good writes arriving through the store's live
// subscription into cost-change events. It exists for deployments where
// another writer shares the database; the in-process write path publishes
// its events directly. The previous snapshot per good is explicit state
// owned here, fed through the pure CostDiff.
type Watcher struct {
	store  docstore.Store
	bus    events.Publisher
	logger *zap.Logger

	mu   sync.Mutex
	prev map[string]models.RawGood
}

// NewWatcher wires a watcher over the raw goods collection.
func NewWatcher(store docstore.Store, bus events.Publisher, logger *zap.Logger) *Watcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Watcher{
		store:  store,
		bus:    bus,
		logger: logger,
		prev:   make(map[string]models.RawGood),
	}
}

// Start subscribes to raw-good changes until stop is called or ctx ends.
// The first sighting of a good only seeds the snapshot; diffs begin with
// the second.
func (w *Watcher) Start(ctx context.Context) (func(), error) {
	return w.store.Watch(ctx, models.CollectionRawGoods, nil, func(change docstore.Change) {
		w.handle(ctx, change)
	})
}

func (w *Watcher) handle(ctx context.Context, change docstore.Change) {
	var good models.RawGood
	if err := change.Decode(&good); err != nil {
		w.logger.Error("decode raw good change", zap.String("id", change.ID), zap.Error(err))
		return
	}
	if good.ID == "" {
		good.ID = change.ID
	}

	w.mu.Lock()
	prev, seen := w.prev[change.ID]
	w.prev[change.ID] = good
	w.mu.Unlock()

	if !seen {
		return
	}
	ev, changed := CostDiff(prev, good)
	if !changed {
		return
	}

	w.logger.Info("raw good cost change observed",
		zap.String("name", ev.Name),
		zap.Float64("previousCost", ev.PreviousCost),
		zap.Float64("newCost", ev.NewCost))
	if err := w.bus.Publish(ctx, ev); err != nil {
		w.logger.Error("publish observed cost change", zap.String("name", ev.Name), zap.Error(err))
	}
}
