package models

import "time"

// BOMItemType classifies a line of a bill-of-materials recipe.
type BOMItemType string

const (
	ItemTypeRawGoods        BOMItemType = "Raw Goods"
	ItemTypeOtherCosts      BOMItemType = "Other Costs"
	ItemTypeFinishedProduct BOMItemType = "Finished Product"
)

// BOMAssemblyItem is one line of a recipe. PurchaseCost snapshots the unit
// cost at the time the line was created or last propagated to; TotalCost is
// Quantity * PurchaseCost.
type BOMAssemblyItem struct {
	Name          string        `bson:"name" json:"name"`
	ItemType      BOMItemType   `bson:"itemType" json:"itemType"`
	Quantity      float64       `bson:"quantity" json:"quantity"`
	UnitOfMeasure UnitOfMeasure `bson:"unitOfMeasure" json:"unitOfMeasure"`
	PurchaseCost  float64       `bson:"purchaseCost" json:"purchaseCost"`
	TotalCost     float64       `bson:"totalCost" json:"totalCost"`
}

// BOMAssembly is a finished-product recipe with derived costing. TotalCost
// is the sum of line totals; the profit fields derive from SalesPrice.
// Finished-Product lines may reference other assemblies by name.
type BOMAssembly struct {
	ID                      string            `bson:"_id,omitempty" json:"id"`
	OwnerID                 string            `bson:"ownerId" json:"ownerId"`
	FinishedProductName     string            `bson:"finishedProductName" json:"finishedProductName"`
	ArticleNumber           string            `bson:"articleNumber" json:"articleNumber"`
	Date                    time.Time         `bson:"date" json:"date"`
	SalesDescription        string            `bson:"salesDescription" json:"salesDescription"`
	SalesPrice              float64           `bson:"salesPrice" json:"salesPrice"`
	TotalCost               float64           `bson:"totalCost" json:"totalCost"`
	ProfitPerItem           float64           `bson:"profitPerItem" json:"profitPerItem"`
	ProfitPercentagePerItem float64           `bson:"profitPercentagePerItem" json:"profitPercentagePerItem"`
	AssemblyItems           []BOMAssemblyItem `bson:"assemblyItems" json:"assemblyItems"`
	Timestamp               time.Time         `bson:"timestamp" json:"timestamp"`
}

// Recost recomputes every line total and the assembly's derived cost and
// profit fields in place.
func (a *BOMAssembly) Recost() {
	var total float64
	for i := range a.AssemblyItems {
		item := &a.AssemblyItems[i]
		item.TotalCost = item.Quantity * item.PurchaseCost
		total += item.TotalCost
	}
	a.TotalCost = total
	a.ProfitPerItem = a.SalesPrice - a.TotalCost
	if a.SalesPrice > 0 {
		a.ProfitPercentagePerItem = a.ProfitPerItem / a.SalesPrice * 100
	} else {
		a.ProfitPercentagePerItem = 0
	}
}

// BOMAssemblyHistory is the pre-update copy of an assembly, written before
// every cost-affecting overwrite. Timestamp keeps the assembly's original
// timestamp when one was set, otherwise the moment the snapshot was taken.
type BOMAssemblyHistory struct {
	ID                      string            `bson:"_id,omitempty" json:"id"`
	OwnerID                 string            `bson:"ownerId" json:"ownerId"`
	AssemblyID              string            `bson:"assemblyId" json:"assemblyId"`
	FinishedProductName     string            `bson:"finishedProductName" json:"finishedProductName"`
	SalesPrice              float64           `bson:"salesPrice" json:"salesPrice"`
	TotalCost               float64           `bson:"totalCost" json:"totalCost"`
	ProfitPerItem           float64           `bson:"profitPerItem" json:"profitPerItem"`
	ProfitPercentagePerItem float64           `bson:"profitPercentagePerItem" json:"profitPercentagePerItem"`
	AssemblyItems           []BOMAssemblyItem `bson:"assemblyItems" json:"assemblyItems"`
	Timestamp               time.Time         `bson:"timestamp" json:"timestamp"`
}

// Snapshot captures the assembly's current state as a history row.
func (a BOMAssembly) Snapshot(at time.Time) BOMAssemblyHistory {
	ts := a.Timestamp
	if ts.IsZero() {
		ts = at
	}
	items := make([]BOMAssemblyItem, len(a.AssemblyItems))
	copy(items, a.AssemblyItems)
	return BOMAssemblyHistory{
		OwnerID:                 a.OwnerID,
		AssemblyID:              a.ID,
		FinishedProductName:     a.FinishedProductName,
		SalesPrice:              a.SalesPrice,
		TotalCost:               a.TotalCost,
		ProfitPerItem:           a.ProfitPerItem,
		ProfitPercentagePerItem: a.ProfitPercentagePerItem,
		AssemblyItems:           items,
		Timestamp:               ts,
	}
}
