package models

import "time"

// StockCountItem is one counted raw good inside a stock count. All
// quantities are in the good's display unit; Difference is counted minus the
// pre-count quantity on hand.
type StockCountItem struct {
	RawGoodID       string        `bson:"rawGoodId" json:"rawGoodId"`
	Name            string        `bson:"name" json:"name"`
	CountedQuantity float64       `bson:"countedQuantity" json:"countedQuantity"`
	QtyOnHand       float64       `bson:"qtyOnHand" json:"qtyOnHand"`
	Difference      float64       `bson:"difference" json:"difference"`
	UnitOfMeasure   UnitOfMeasure `bson:"unitOfMeasure" json:"unitOfMeasure"`
}

// StockCountEntry records one full physical count. It is written atomically
// with the quantity overwrites of every counted raw good and never mutated
// afterwards; deleting it does not reverse the overwrite.
type StockCountEntry struct {
	ID      string           `bson:"_id,omitempty" json:"id"`
	OwnerID string           `bson:"ownerId" json:"ownerId"`
	Date    time.Time        `bson:"date" json:"date"`
	Items   []StockCountItem `bson:"items" json:"items"`
}
