package inventory

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/prepflow/backoffice/internal/domain/models"
	"github.com/prepflow/backoffice/internal/repository/docstore"
)

// recorder captures published cost-change events.
type recorder struct {
	events []models.CostChanged
}

func (r *recorder) Publish(ctx context.Context, ev models.CostChanged) error {
	r.events = append(r.events, ev)
	return nil
}

func newTestService(t *testing.T) (*Service, *docstore.MemoryStore, *recorder) {
	t.Helper()
	store := docstore.NewMemoryStore()
	rec := &recorder{}
	return NewService(store, rec, false, nil), store, rec
}

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestCreateRawGoodConvertsToBase(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	good, err := svc.CreateRawGood(ctx, "owner1", RawGoodInput{
		Name:          "Flour",
		UnitOfMeasure: models.UnitKilograms,
		PurchaseUnit:  models.PurchaseBag,
		QtyOnHand:     2,
		CostOfUnit:    15,
		PurchUnitQty:  10,
	})
	if err != nil {
		t.Fatalf("CreateRawGood: %v", err)
	}
	if good.QtyOnHand != 2000 {
		t.Errorf("QtyOnHand = %v, want 2000 base units", good.QtyOnHand)
	}
	if good.PurchUnitQty != 10000 {
		t.Errorf("PurchUnitQty = %v, want 10000 base units", good.PurchUnitQty)
	}
	if !almostEqual(good.LastCostOfUnitOfMeasure, 0.0015) {
		t.Errorf("LastCostOfUnitOfMeasure = %v, want 0.0015", good.LastCostOfUnitOfMeasure)
	}
}

func TestCreateRawGoodZeroPackSize(t *testing.T) {
	svc, _, _ := newTestService(t)

	good, err := svc.CreateRawGood(context.Background(), "owner1", RawGoodInput{
		Name:          "Mystery",
		UnitOfMeasure: models.UnitCount,
		CostOfUnit:    10,
		PurchUnitQty:  0,
	})
	if err != nil {
		t.Fatalf("CreateRawGood: %v", err)
	}
	if good.LastCostOfUnitOfMeasure != 0 {
		t.Errorf("cost per base unit = %v, want 0 on zero pack size", good.LastCostOfUnitOfMeasure)
	}
}

func TestCreateRawGoodDuplicateName(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	if _, err := svc.CreateRawGood(ctx, "owner1", RawGoodInput{Name: "Flour", UnitOfMeasure: models.UnitKilograms}); err != nil {
		t.Fatalf("CreateRawGood: %v", err)
	}
	if _, err := svc.CreateRawGood(ctx, "owner1", RawGoodInput{Name: "flour", UnitOfMeasure: models.UnitKilograms}); !errors.Is(err, ErrDuplicateName) {
		t.Errorf("case-folded duplicate = %v, want ErrDuplicateName", err)
	}

	// A different owner may reuse the name.
	if _, err := svc.CreateRawGood(ctx, "owner2", RawGoodInput{Name: "Flour", UnitOfMeasure: models.UnitKilograms}); err != nil {
		t.Errorf("same name under another owner = %v", err)
	}
}

func TestGetRawGoodOwnerScoped(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	good, err := svc.CreateRawGood(ctx, "owner1", RawGoodInput{Name: "Flour", UnitOfMeasure: models.UnitKilograms})
	if err != nil {
		t.Fatalf("CreateRawGood: %v", err)
	}
	if _, err := svc.GetRawGood(ctx, "owner2", good.ID); !errors.Is(err, docstore.ErrNotFound) {
		t.Errorf("cross-owner Get = %v, want ErrNotFound", err)
	}
}

func TestUpdateRawGoodCostChangeWritesHistoryAndPublishes(t *testing.T) {
	svc, _, rec := newTestService(t)
	ctx := context.Background()

	good, err := svc.CreateRawGood(ctx, "owner1", RawGoodInput{
		Name:          "Flour",
		UnitOfMeasure: models.UnitKilograms,
		CostOfUnit:    15,
		PurchUnitQty:  10,
	})
	if err != nil {
		t.Fatalf("CreateRawGood: %v", err)
	}

	updated, err := svc.UpdateRawGood(ctx, "owner1", good.ID, RawGoodInput{
		Name:          "Flour",
		UnitOfMeasure: models.UnitKilograms,
		CostOfUnit:    20,
		PurchUnitQty:  10,
	})
	if err != nil {
		t.Fatalf("UpdateRawGood: %v", err)
	}
	if !almostEqual(updated.LastCostOfUnitOfMeasure, 0.002) {
		t.Errorf("LastCostOfUnitOfMeasure = %v, want 0.002", updated.LastCostOfUnitOfMeasure)
	}

	history, err := svc.History(ctx, "owner1", good.ID)
	if err != nil {
		t.Fatalf("History: %v", err)
	}
	if len(history) != 1 {
		t.Fatalf("history rows = %d, want 1", len(history))
	}
	if !almostEqual(history[0].LastCostOfUnitOfMeasure, 0.0015) {
		t.Errorf("history cost = %v, want the pre-update 0.0015", history[0].LastCostOfUnitOfMeasure)
	}

	if len(rec.events) != 1 {
		t.Fatalf("events = %d, want 1", len(rec.events))
	}
	ev := rec.events[0]
	if !almostEqual(ev.PreviousCost, 0.0015) || !almostEqual(ev.NewCost, 0.002) {
		t.Errorf("event = %+v", ev)
	}
}

func TestUpdateRawGoodNoCostChangeNoEvent(t *testing.T) {
	svc, _, rec := newTestService(t)
	ctx := context.Background()

	good, err := svc.CreateRawGood(ctx, "owner1", RawGoodInput{
		Name:          "Flour",
		UnitOfMeasure: models.UnitKilograms,
		CostOfUnit:    15,
		PurchUnitQty:  10,
	})
	if err != nil {
		t.Fatalf("CreateRawGood: %v", err)
	}

	if _, err := svc.UpdateRawGood(ctx, "owner1", good.ID, RawGoodInput{
		Name:          "Bread Flour",
		UnitOfMeasure: models.UnitKilograms,
		CostOfUnit:    15,
		PurchUnitQty:  10,
	}); err != nil {
		t.Fatalf("UpdateRawGood: %v", err)
	}

	if len(rec.events) != 0 {
		t.Errorf("rename without cost change published %d events", len(rec.events))
	}
	history, err := svc.History(ctx, "owner1", good.ID)
	if err != nil {
		t.Fatalf("History: %v", err)
	}
	if len(history) != 0 {
		t.Errorf("rename without cost change wrote %d history rows", len(history))
	}
}
