package models

import "time"

// PurchaseOrder is one product line of a committed order. A multi-line order
// becomes one document per line, all sharing the header fields.
//
// PurchUnitQty is kept as entered, in the line's display unit; callers
// convert through ToBase before using it in arithmetic. CostOfUnitOfMeasure
// is derived as CostOfUnit / ToBase(PurchUnitQty, UnitOfMeasure), zero when
// the divisor is zero.
type PurchaseOrder struct {
	ID            string        `bson:"_id,omitempty" json:"id"`
	OwnerID       string        `bson:"ownerId" json:"ownerId"`
	Date          time.Time     `bson:"date" json:"date"`
	InvoiceNumber string        `bson:"invoiceNumber" json:"invoiceNumber"`
	Supplier      string        `bson:"supplier" json:"supplier"`
	Product       string        `bson:"product" json:"product"`
	Quantity      float64       `bson:"quantity" json:"quantity"`
	PurchUnitQty  float64       `bson:"purchUnitQty" json:"purchUnitQty"`
	UnitOfMeasure UnitOfMeasure `bson:"unitOfMeasure" json:"unitOfMeasure"`
	PurchaseUnit  PurchaseUnit  `bson:"purchaseUnit" json:"purchaseUnit"`

	CostOfUnit          float64 `bson:"costOfUnit" json:"costOfUnit"`
	CostOfUnitOfMeasure float64 `bson:"costOfUnitOfMeasure" json:"costOfUnitOfMeasure"`
	TotalCost           float64 `bson:"totalCost" json:"totalCost"`
}

// BaseQuantity is the purchased amount expressed in base units.
func (p PurchaseOrder) BaseQuantity() float64 {
	return p.Quantity * ToBase(p.PurchUnitQty, p.UnitOfMeasure)
}
