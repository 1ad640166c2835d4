package models

import (
	"testing"
	"time"
)

func TestRecost(t *testing.T) {
	tests := []struct {
		name           string
		salesPrice     float64
		items          []BOMAssemblyItem
		wantTotal      float64
		wantProfit     float64
		wantProfitPerc float64
	}{
		{
			name:       "two lines",
			salesPrice: 10,
			items: []BOMAssemblyItem{
				{ItemType: ItemTypeRawGoods, Quantity: 500, PurchaseCost: 0.0015},
				{ItemType: ItemTypeOtherCosts, Quantity: 1, PurchaseCost: 0.25},
			},
			wantTotal:      1.0,
			wantProfit:     9.0,
			wantProfitPerc: 90,
		},
		{
			name:           "no lines",
			salesPrice:     5,
			wantTotal:      0,
			wantProfit:     5,
			wantProfitPerc: 100,
		},
		{
			name:       "zero sales price yields zero percentage",
			salesPrice: 0,
			items: []BOMAssemblyItem{
				{ItemType: ItemTypeRawGoods, Quantity: 2, PurchaseCost: 3},
			},
			wantTotal:      6,
			wantProfit:     -6,
			wantProfitPerc: 0,
		},
		{
			name:       "negative sales price yields zero percentage",
			salesPrice: -1,
			items: []BOMAssemblyItem{
				{ItemType: ItemTypeRawGoods, Quantity: 1, PurchaseCost: 1},
			},
			wantTotal:      1,
			wantProfit:     -2,
			wantProfitPerc: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			asm := BOMAssembly{SalesPrice: tt.salesPrice, AssemblyItems: tt.items}
			asm.Recost()

			if asm.TotalCost != tt.wantTotal {
				t.Errorf("TotalCost = %v, want %v", asm.TotalCost, tt.wantTotal)
			}
			if asm.ProfitPerItem != tt.wantProfit {
				t.Errorf("ProfitPerItem = %v, want %v", asm.ProfitPerItem, tt.wantProfit)
			}
			if asm.ProfitPercentagePerItem != tt.wantProfitPerc {
				t.Errorf("ProfitPercentagePerItem = %v, want %v", asm.ProfitPercentagePerItem, tt.wantProfitPerc)
			}
			for _, item := range asm.AssemblyItems {
				if item.TotalCost != item.Quantity*item.PurchaseCost {
					t.Errorf("line %s TotalCost = %v, want %v", item.Name, item.TotalCost, item.Quantity*item.PurchaseCost)
				}
			}
		})
	}
}

func TestAssemblySnapshotTimestamp(t *testing.T) {
	now := time.Now()
	created := now.Add(-48 * time.Hour)

	t.Run("keeps existing timestamp", func(t *testing.T) {
		asm := BOMAssembly{ID: "a1", Timestamp: created}
		snap := asm.Snapshot(now)
		if !snap.Timestamp.Equal(created) {
			t.Errorf("Timestamp = %v, want original %v", snap.Timestamp, created)
		}
		if snap.AssemblyID != "a1" {
			t.Errorf("AssemblyID = %q, want a1", snap.AssemblyID)
		}
	})

	t.Run("stamps now when unset", func(t *testing.T) {
		asm := BOMAssembly{ID: "a2"}
		snap := asm.Snapshot(now)
		if !snap.Timestamp.Equal(now) {
			t.Errorf("Timestamp = %v, want %v", snap.Timestamp, now)
		}
	})

	t.Run("items are copied, not shared", func(t *testing.T) {
		asm := BOMAssembly{
			AssemblyItems: []BOMAssemblyItem{{Name: "Flour", PurchaseCost: 1}},
		}
		snap := asm.Snapshot(now)
		asm.AssemblyItems[0].PurchaseCost = 2
		if snap.AssemblyItems[0].PurchaseCost != 1 {
			t.Error("snapshot items mutated through the live assembly")
		}
	})
}
