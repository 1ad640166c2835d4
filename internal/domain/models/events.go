package models

// CostChanged announces that a raw good's last per-base-unit cost moved. It
// is published by the purchase order processor (and by direct ledger edits)
// and consumed by the BOM cost propagation engine and the outbound webhook
// notifier.
type CostChanged struct {
	OwnerID      string  `json:"ownerId"`
	RawGoodID    string  `json:"rawGoodId"`
	Name         string  `json:"name"`
	PreviousCost float64 `json:"previousCost"`
	NewCost      float64 `json:"newCost"`
}
