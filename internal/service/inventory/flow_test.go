package inventory

import (
	"context"
	"testing"

	"github.com/prepflow/backoffice/internal/domain/models"
	"github.com/prepflow/backoffice/internal/events"
	"github.com/prepflow/backoffice/internal/repository/docstore"
	bomsvc "github.com/prepflow/backoffice/internal/service/bom"
)

// A purchase at a new cost flows through the bus into BOM propagation and
// reprices the assemblies using the good.
func TestCommitOrderPropagatesIntoAssemblies(t *testing.T) {
	ctx := context.Background()
	store := docstore.NewMemoryStore()
	bus := events.NewBus(nil)
	inventorySvc := NewService(store, bus, false, nil)
	bomSvc := bomsvc.NewService(store, nil)
	bus.Subscribe(bomSvc.Propagate)

	if _, err := inventorySvc.CreateRawGood(ctx, "owner1", RawGoodInput{
		Name:          "Flour",
		UnitOfMeasure: models.UnitKilograms,
		PurchaseUnit:  models.PurchaseBag,
		PurchUnitQty:  10,
		CostOfUnit:    15,
	}); err != nil {
		t.Fatalf("CreateRawGood: %v", err)
	}

	dough, err := bomSvc.CreateAssembly(ctx, "owner1", bomsvc.AssemblyInput{
		FinishedProductName: "Dough",
		SalesPrice:          5,
		Items: []bomsvc.AssemblyItemInput{
			{Name: "Flour", ItemType: models.ItemTypeRawGoods, Quantity: 200, UnitOfMeasure: models.UnitGrams},
		},
	})
	if err != nil {
		t.Fatalf("CreateAssembly: %v", err)
	}
	if !almostEqual(dough.TotalCost, 0.3) {
		t.Fatalf("initial TotalCost = %v, want 0.3", dough.TotalCost)
	}

	// A bag at 20 moves the last cost to 0.002 per gram; the commit itself
	// drives the repricing, no separate trigger.
	if _, err := inventorySvc.CommitOrder(ctx, "owner1", OrderHeader{}, []OrderLine{{
		Product:       "Flour",
		Quantity:      1,
		PurchUnitQty:  10,
		CostOfUnit:    20,
		UnitOfMeasure: models.UnitKilograms,
		PurchaseUnit:  models.PurchaseBag,
	}}); err != nil {
		t.Fatalf("CommitOrder: %v", err)
	}

	after, err := bomSvc.GetAssembly(ctx, "owner1", dough.ID)
	if err != nil {
		t.Fatalf("GetAssembly: %v", err)
	}
	if !almostEqual(after.AssemblyItems[0].PurchaseCost, 0.002) {
		t.Errorf("line cost = %v, want 0.002", after.AssemblyItems[0].PurchaseCost)
	}
	if !almostEqual(after.TotalCost, 0.4) {
		t.Errorf("TotalCost = %v, want 0.4", after.TotalCost)
	}
	if !almostEqual(after.ProfitPerItem, 4.6) {
		t.Errorf("ProfitPerItem = %v, want 4.6", after.ProfitPerItem)
	}
}
