package models

import "time"

// ValuationLine values one raw good at its moving-average cost. QtyOnHand is
// in the display unit for reporting.
type ValuationLine struct {
	RawGoodID     string        `bson:"rawGoodId" json:"rawGoodId"`
	Name          string        `bson:"name" json:"name"`
	QtyOnHand     float64       `bson:"qtyOnHand" json:"qtyOnHand"`
	UnitOfMeasure UnitOfMeasure `bson:"unitOfMeasure" json:"unitOfMeasure"`
	AverageCost   float64       `bson:"averageCost" json:"averageCost"`
	Value         float64       `bson:"value" json:"value"`
}

// ValuationSnapshot is the nightly inventory valuation written by the
// scheduler, one document per owner per run.
type ValuationSnapshot struct {
	ID         string          `bson:"_id,omitempty" json:"id"`
	OwnerID    string          `bson:"ownerId" json:"ownerId"`
	Date       time.Time       `bson:"date" json:"date"`
	Lines      []ValuationLine `bson:"lines" json:"lines"`
	TotalValue float64         `bson:"totalValue" json:"totalValue"`
	CreatedAt  time.Time       `bson:"createdAt" json:"createdAt"`
}

// VarianceLine values one stock count difference at the good's average cost.
type VarianceLine struct {
	RawGoodID     string        `json:"rawGoodId"`
	Name          string        `json:"name"`
	Difference    float64       `json:"difference"`
	UnitOfMeasure UnitOfMeasure `json:"unitOfMeasure"`
	AverageCost   float64       `json:"averageCost"`
	VarianceValue float64       `json:"varianceValue"`
}

// VarianceReport is the valued review of one stock count.
type VarianceReport struct {
	StockCountID  string         `json:"stockCountId"`
	Date          time.Time      `json:"date"`
	Lines         []VarianceLine `json:"lines"`
	TotalVariance float64        `json:"totalVariance"`
}
