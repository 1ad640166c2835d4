package models

import "time"

// Collection names in the document store. Field names follow the stored
// documents, so bson and json tags must stay identical for anything that is
// filtered or sorted on.
const (
	CollectionRawGoods           = "rawGoods"
	CollectionRawGoodsHistory    = "rawGoodsHistory"
	CollectionPurchaseOrders     = "purchaseOrders"
	CollectionBOMAssemblies      = "bomAssemblies"
	CollectionBOMHistory         = "bomAssembliesHistory"
	CollectionStockCounts        = "stockCounts"
	CollectionValuationSnapshots = "valuationSnapshots"
)

// RawGood is the ledger record of one inventory item. QtyOnHand,
// PurchUnitQty and the per-unit-of-measure costs are kept in the base unit;
// only Purchase Order commits, reversals, stock counts and direct edits
// mutate it.
type RawGood struct {
	ID            string        `bson:"_id,omitempty" json:"id"`
	OwnerID       string        `bson:"ownerId" json:"ownerId"`
	Name          string        `bson:"name" json:"name"`
	UnitOfMeasure UnitOfMeasure `bson:"unitOfMeasure" json:"unitOfMeasure"`
	PurchaseUnit  PurchaseUnit  `bson:"purchaseUnit" json:"purchaseUnit"`

	// QtyOnHand is held in base units (grams / milliliters / count).
	QtyOnHand float64 `bson:"qtyOnHand" json:"qtyOnHand"`

	// CostOfUnit is the price paid per purchase unit in the most recent
	// transaction; PurchUnitQty is how many base units one purchase unit
	// contains, already converted to base.
	CostOfUnit   float64 `bson:"costOfUnit" json:"costOfUnit"`
	PurchUnitQty float64 `bson:"purchUnitQty" json:"purchUnitQty"`

	// AverageCostOfUnitOfMeasure is the moving weighted-average cost per
	// base unit. The last-cost pair retains the most recent transaction's
	// unit costs for display and reversal.
	AverageCostOfUnitOfMeasure float64 `bson:"averageCostOfUnitOfMeasure" json:"averageCostOfUnitOfMeasure"`
	LastCostOfUnit             float64 `bson:"lastCostOfUnit" json:"lastCostOfUnit"`
	LastCostOfUnitOfMeasure    float64 `bson:"lastCostOfUnitOfMeasure" json:"lastCostOfUnitOfMeasure"`

	Date time.Time `bson:"date" json:"date"`
}

// RawGoodHistory is an append-only snapshot of a raw good taken just before
// a cost-affecting update. It is never read back into live computation.
type RawGoodHistory struct {
	ID                         string    `bson:"_id,omitempty" json:"id"`
	OwnerID                    string    `bson:"ownerId" json:"ownerId"`
	RawGoodID                  string    `bson:"rawGoodId" json:"rawGoodId"`
	Name                       string    `bson:"name" json:"name"`
	QtyOnHand                  float64   `bson:"qtyOnHand" json:"qtyOnHand"`
	AverageCostOfUnitOfMeasure float64   `bson:"averageCostOfUnitOfMeasure" json:"averageCostOfUnitOfMeasure"`
	LastCostOfUnit             float64   `bson:"lastCostOfUnit" json:"lastCostOfUnit"`
	LastCostOfUnitOfMeasure    float64   `bson:"lastCostOfUnitOfMeasure" json:"lastCostOfUnitOfMeasure"`
	Timestamp                  time.Time `bson:"timestamp" json:"timestamp"`
}

// Snapshot captures the good's current state as a history row.
func (g RawGood) Snapshot(at time.Time) RawGoodHistory {
	return RawGoodHistory{
		OwnerID:                    g.OwnerID,
		RawGoodID:                  g.ID,
		Name:                       g.Name,
		QtyOnHand:                  g.QtyOnHand,
		AverageCostOfUnitOfMeasure: g.AverageCostOfUnitOfMeasure,
		LastCostOfUnit:             g.LastCostOfUnit,
		LastCostOfUnitOfMeasure:    g.LastCostOfUnitOfMeasure,
		Timestamp:                  at,
	}
}
