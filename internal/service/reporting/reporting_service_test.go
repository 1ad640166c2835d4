package reporting

import (
	"context"
	"math"
	"sort"
	"testing"
	"time"

	"github.com/prepflow/backoffice/internal/domain/models"
	"github.com/prepflow/backoffice/internal/repository/docstore"
)

// fakeSheets records appended rows per range.
type fakeSheets struct {
	appended map[string][][]interface{}
}

func (f *fakeSheets) AppendRows(ctx context.Context, sheetRange string, rows [][]interface{}) error {
	if f.appended == nil {
		f.appended = make(map[string][][]interface{})
	}
	f.appended[sheetRange] = append(f.appended[sheetRange], rows...)
	return nil
}

func (f *fakeSheets) ReadRange(ctx context.Context, sheetRange string) ([][]interface{}, error) {
	return f.appended[sheetRange], nil
}

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func seedLedger(t *testing.T, store *docstore.MemoryStore) (flourID, eggID string) {
	t.Helper()
	ctx := context.Background()

	flourID, err := store.Create(ctx, models.CollectionRawGoods, models.RawGood{
		OwnerID:                    "owner1",
		Name:                       "Flour",
		UnitOfMeasure:              models.UnitKilograms,
		QtyOnHand:                  20000,
		AverageCostOfUnitOfMeasure: 0.0015,
	})
	if err != nil {
		t.Fatalf("seed flour: %v", err)
	}
	eggID, err = store.Create(ctx, models.CollectionRawGoods, models.RawGood{
		OwnerID:                    "owner1",
		Name:                       "Eggs",
		UnitOfMeasure:              models.UnitCount,
		QtyOnHand:                  30,
		AverageCostOfUnitOfMeasure: 0.4,
	})
	if err != nil {
		t.Fatalf("seed eggs: %v", err)
	}
	return flourID, eggID
}

func TestValuationSummary(t *testing.T) {
	store := docstore.NewMemoryStore()
	svc := NewService(store, nil, nil)
	seedLedger(t, store)

	snapshot, err := svc.ValuationSummary(context.Background(), "owner1")
	if err != nil {
		t.Fatalf("ValuationSummary: %v", err)
	}
	if len(snapshot.Lines) != 2 {
		t.Fatalf("lines = %d, want 2", len(snapshot.Lines))
	}

	eggs, flour := snapshot.Lines[0], snapshot.Lines[1]
	if eggs.Name != "Eggs" || flour.Name != "Flour" {
		t.Fatalf("line order = %s, %s", eggs.Name, flour.Name)
	}
	// Flour: 20000 g at 0.0015 per gram, reported as 20 kg.
	if !almostEqual(flour.QtyOnHand, 20) {
		t.Errorf("flour QtyOnHand = %v, want 20", flour.QtyOnHand)
	}
	if !almostEqual(flour.Value, 30) {
		t.Errorf("flour Value = %v, want 30", flour.Value)
	}
	if !almostEqual(eggs.Value, 12) {
		t.Errorf("eggs Value = %v, want 12", eggs.Value)
	}
	if !almostEqual(snapshot.TotalValue, 42) {
		t.Errorf("TotalValue = %v, want 42", snapshot.TotalValue)
	}
}

func TestSaveValuationSnapshotPersistsAndExports(t *testing.T) {
	store := docstore.NewMemoryStore()
	sheets := &fakeSheets{}
	svc := NewService(store, sheets, nil)
	seedLedger(t, store)
	ctx := context.Background()

	snapshot, err := svc.SaveValuationSnapshot(ctx, "owner1")
	if err != nil {
		t.Fatalf("SaveValuationSnapshot: %v", err)
	}
	if snapshot.ID == "" {
		t.Error("snapshot not assigned an id")
	}

	var stored []models.ValuationSnapshot
	if err := store.Find(ctx, models.CollectionValuationSnapshots, docstore.Filter{"ownerId": "owner1"}, nil, &stored); err != nil {
		t.Fatalf("Find: %v", err)
	}
	if len(stored) != 1 {
		t.Fatalf("stored snapshots = %d, want 1", len(stored))
	}
	if !almostEqual(stored[0].TotalValue, 42) {
		t.Errorf("stored TotalValue = %v, want 42", stored[0].TotalValue)
	}

	rows := sheets.appended[valuationSheetRange]
	if len(rows) != 2 {
		t.Fatalf("exported rows = %d, want 2", len(rows))
	}
	if rows[1][2] != "Flour" {
		t.Errorf("row = %v", rows[1])
	}
}

func TestVarianceValuesDifferencesAtAverageCost(t *testing.T) {
	store := docstore.NewMemoryStore()
	svc := NewService(store, nil, nil)
	flourID, eggID := seedLedger(t, store)
	ctx := context.Background()

	countID, err := store.Create(ctx, models.CollectionStockCounts, models.StockCountEntry{
		OwnerID: "owner1",
		Date:    time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
		Items: []models.StockCountItem{
			{RawGoodID: flourID, Name: "Flour", Difference: -1.5, UnitOfMeasure: models.UnitKilograms},
			{RawGoodID: eggID, Name: "Eggs", Difference: -6, UnitOfMeasure: models.UnitCount},
		},
	})
	if err != nil {
		t.Fatalf("seed count: %v", err)
	}

	report, err := svc.Variance(ctx, "owner1", countID)
	if err != nil {
		t.Fatalf("Variance: %v", err)
	}
	if len(report.Lines) != 2 {
		t.Fatalf("lines = %d, want 2", len(report.Lines))
	}
	// -1.5 kg is -1500 g at 0.0015 per gram.
	if !almostEqual(report.Lines[0].VarianceValue, -2.25) {
		t.Errorf("flour variance = %v, want -2.25", report.Lines[0].VarianceValue)
	}
	if !almostEqual(report.Lines[1].VarianceValue, -2.4) {
		t.Errorf("eggs variance = %v, want -2.4", report.Lines[1].VarianceValue)
	}
	if !almostEqual(report.TotalVariance, -4.65) {
		t.Errorf("TotalVariance = %v, want -4.65", report.TotalVariance)
	}
}

func TestExportVariance(t *testing.T) {
	store := docstore.NewMemoryStore()
	sheets := &fakeSheets{}
	svc := NewService(store, sheets, nil)
	flourID, _ := seedLedger(t, store)
	ctx := context.Background()

	countID, err := store.Create(ctx, models.CollectionStockCounts, models.StockCountEntry{
		OwnerID: "owner1",
		Date:    time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
		Items: []models.StockCountItem{
			{RawGoodID: flourID, Name: "Flour", Difference: -1.5, UnitOfMeasure: models.UnitKilograms},
		},
	})
	if err != nil {
		t.Fatalf("seed count: %v", err)
	}

	if err := svc.ExportVariance(ctx, "owner1", countID); err != nil {
		t.Fatalf("ExportVariance: %v", err)
	}
	rows := sheets.appended[varianceSheetRange]
	if len(rows) != 1 {
		t.Fatalf("exported rows = %d, want 1", len(rows))
	}
	if rows[0][2] != "Flour" || rows[0][3] != "-1.50 kg" {
		t.Errorf("row = %v", rows[0])
	}
}

func TestOwners(t *testing.T) {
	store := docstore.NewMemoryStore()
	svc := NewService(store, nil, nil)
	ctx := context.Background()

	for _, owner := range []string{"owner1", "owner2", "owner1"} {
		if _, err := store.Create(ctx, models.CollectionRawGoods, models.RawGood{OwnerID: owner, Name: "x" + owner}); err != nil {
			t.Fatalf("Create: %v", err)
		}
	}

	owners, err := svc.Owners(ctx)
	if err != nil {
		t.Fatalf("Owners: %v", err)
	}
	sort.Strings(owners)
	if len(owners) != 2 || owners[0] != "owner1" || owners[1] != "owner2" {
		t.Errorf("owners = %v", owners)
	}
}
