package bom

import (
	"context"
	"testing"

	"github.com/prepflow/backoffice/internal/domain/models"
	"github.com/prepflow/backoffice/internal/repository/docstore"
)

type recordingBus struct {
	events []models.CostChanged
}

func (r *recordingBus) Publish(ctx context.Context, ev models.CostChanged) error {
	r.events = append(r.events, ev)
	return nil
}

func TestWatcherPublishesObservedCostChanges(t *testing.T) {
	ctx := context.Background()
	store := docstore.NewMemoryStore()
	bus := &recordingBus{}
	w := NewWatcher(store, bus, nil)

	stop, err := w.Start(ctx)
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer stop()

	id, err := store.Create(ctx, models.CollectionRawGoods, models.RawGood{
		OwnerID:                 "owner1",
		Name:                    "Flour",
		LastCostOfUnitOfMeasure: 0.0015,
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	// The first sighting only seeds the snapshot.
	if len(bus.events) != 0 {
		t.Fatalf("events after create = %d, want 0", len(bus.events))
	}

	// A quantity-only write is not a cost change.
	if err := store.Update(ctx, models.CollectionRawGoods, id, map[string]any{"qtyOnHand": 500.0}); err != nil {
		t.Fatalf("Update: %v", err)
	}
	if len(bus.events) != 0 {
		t.Fatalf("events after quantity update = %d, want 0", len(bus.events))
	}

	if err := store.Update(ctx, models.CollectionRawGoods, id, map[string]any{"lastCostOfUnitOfMeasure": 0.002}); err != nil {
		t.Fatalf("Update: %v", err)
	}
	if len(bus.events) != 1 {
		t.Fatalf("events after cost update = %d, want 1", len(bus.events))
	}
	ev := bus.events[0]
	if ev.PreviousCost != 0.0015 || ev.NewCost != 0.002 || ev.Name != "Flour" {
		t.Errorf("event = %+v", ev)
	}
}
