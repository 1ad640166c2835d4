package models

// UnitOfMeasure is the display unit of a raw good. Quantities are stored in
// the base unit (grams, milliliters, or count) regardless of display unit.
type UnitOfMeasure string

const (
	UnitGrams       UnitOfMeasure = "Grams"
	UnitKilograms   UnitOfMeasure = "Kilograms"
	UnitMilliliters UnitOfMeasure = "Milliliters"
	UnitLiters      UnitOfMeasure = "Liters"
	UnitCount       UnitOfMeasure = "Count"
)

// PurchaseUnit is the unit a raw good is bought in.
type PurchaseUnit string

const (
	PurchaseBag    PurchaseUnit = "Bag"
	PurchaseCarton PurchaseUnit = "Carton"
	PurchaseBottle PurchaseUnit = "Bottle"
	PurchaseBox    PurchaseUnit = "Box"
	PurchaseEach   PurchaseUnit = "Each"
	PurchaseTub    PurchaseUnit = "Tub"
	PurchasePacket PurchaseUnit = "Packet"
	PurchaseStick  PurchaseUnit = "Stick"
)

func (u UnitOfMeasure) multiplier() float64 {
	switch u {
	case UnitKilograms, UnitLiters:
		return 1000
	default:
		// Grams, Milliliters and Count are their own base. Unrecognized
		// units pass through unchanged.
		return 1
	}
}

// ToBase converts a quantity in the display unit to the base unit.
func ToBase(quantity float64, unit UnitOfMeasure) float64 {
	return quantity * unit.multiplier()
}

// FromBase converts a base-unit quantity back to the display unit.
func FromBase(quantity float64, unit UnitOfMeasure) float64 {
	return quantity / unit.multiplier()
}

// Suffix returns the short label shown next to quantities.
func (u UnitOfMeasure) Suffix() string {
	switch u {
	case UnitGrams:
		return "gr"
	case UnitKilograms:
		return "kg"
	case UnitMilliliters:
		return "ml"
	case UnitLiters:
		return "lt"
	case UnitCount:
		return "cnt"
	default:
		return ""
	}
}
