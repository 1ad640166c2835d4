package inventory

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/prepflow/backoffice/internal/domain/models"
	"github.com/prepflow/backoffice/internal/repository/docstore"
)

// ErrDuplicateProduct rejects an order carrying the same product on more
// than one line.
var ErrDuplicateProduct = errors.New("inventory: product already present in this order")

// ErrEmptyOrder rejects a commit without lines.
var ErrEmptyOrder = errors.New("inventory: order has no lines")

// OrderHeader carries the fields shared by every line of a multi-line order.
type OrderHeader struct {
	Date          time.Time `json:"date"`
	Supplier      string    `json:"supplier"`
	InvoiceNumber string    `json:"invoiceNumber"`
}

// OrderLine is one product entry of an order as submitted. Quantity is in
// purchase units and PurchUnitQty in the display unit.
type OrderLine struct {
	Product       string               `json:"product" binding:"required"`
	Quantity      float64              `json:"quantity"`
	PurchUnitQty  float64              `json:"purchUnitQty"`
	CostOfUnit    float64              `json:"costOfUnit"`
	UnitOfMeasure models.UnitOfMeasure `json:"unitOfMeasure"`
	PurchaseUnit  models.PurchaseUnit  `json:"purchaseUnit"`
}

// CommitOrder persists every line as a purchase order document and folds it
// into the referenced raw good: quantity on hand grows by the purchased base
// quantity and the average cost re-blends with the new purchase. A missing
// raw good skips that line's ledger update; the remaining lines still
// commit (best effort, no cross-document transaction).
func (s *Service) CommitOrder(ctx context.Context, owner string, header OrderHeader, lines []OrderLine) ([]models.PurchaseOrder, error) {
	if len(lines) == 0 {
		return nil, ErrEmptyOrder
	}
	seen := make(map[string]bool, len(lines))
	for _, line := range lines {
		if seen[line.Product] {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateProduct, line.Product)
		}
		seen[line.Product] = true
	}

	date := header.Date
	if date.IsZero() {
		date = time.Now()
	}

	var committed []models.PurchaseOrder
	var errs []error
	for _, line := range lines {
		purchUnitQtyBase := models.ToBase(line.PurchUnitQty, line.UnitOfMeasure)
		order := models.PurchaseOrder{
			OwnerID:             owner,
			Date:                date,
			InvoiceNumber:       header.InvoiceNumber,
			Supplier:            header.Supplier,
			Product:             line.Product,
			Quantity:            line.Quantity,
			PurchUnitQty:        line.PurchUnitQty,
			UnitOfMeasure:       line.UnitOfMeasure,
			PurchaseUnit:        line.PurchaseUnit,
			CostOfUnit:          line.CostOfUnit,
			CostOfUnitOfMeasure: safeDivide(line.CostOfUnit, purchUnitQtyBase),
			TotalCost:           line.Quantity * line.CostOfUnit,
		}

		id, err := s.store.Create(ctx, models.CollectionPurchaseOrders, order)
		if err != nil {
			errs = append(errs, fmt.Errorf("persist order line %s: %w", line.Product, err))
			continue
		}
		order.ID = id
		committed = append(committed, order)

		if err := s.applyPurchase(ctx, owner, order); err != nil {
			errs = append(errs, err)
		}
	}
	return committed, errors.Join(errs...)
}

// applyPurchase folds one committed line into its raw good's ledger record.
func (s *Service) applyPurchase(ctx context.Context, owner string, order models.PurchaseOrder) error {
	good, err := s.findByName(ctx, owner, order.Product)
	if errors.Is(err, docstore.ErrNotFound) {
		s.logger.Warn("raw good not found for order line, ledger not updated",
			zap.String("product", order.Product))
		return nil
	}
	if err != nil {
		return fmt.Errorf("look up raw good %s: %w", order.Product, err)
	}

	purchasedBase := order.BaseQuantity()
	totalQuantity := good.QtyOnHand + purchasedBase
	currentValue := good.QtyOnHand * good.AverageCostOfUnitOfMeasure
	purchaseValue := purchasedBase * order.CostOfUnitOfMeasure
	newAverage := safeDivide(currentValue+purchaseValue, totalQuantity)

	if _, err := s.store.Create(ctx, models.CollectionRawGoodsHistory, good.Snapshot(time.Now())); err != nil {
		return fmt.Errorf("snapshot raw good history for %s: %w", good.Name, err)
	}

	previousCost := good.LastCostOfUnitOfMeasure
	good.QtyOnHand = totalQuantity
	good.AverageCostOfUnitOfMeasure = newAverage
	good.LastCostOfUnit = order.CostOfUnit
	good.LastCostOfUnitOfMeasure = order.CostOfUnitOfMeasure
	good.Date = time.Now()

	fields := map[string]any{
		"qtyOnHand":                  good.QtyOnHand,
		"averageCostOfUnitOfMeasure": good.AverageCostOfUnitOfMeasure,
		"lastCostOfUnit":             good.LastCostOfUnit,
		"lastCostOfUnitOfMeasure":    good.LastCostOfUnitOfMeasure,
		"date":                       good.Date,
	}
	if err := s.store.Update(ctx, models.CollectionRawGoods, good.ID, fields); err != nil {
		return fmt.Errorf("update raw good %s: %w", good.Name, err)
	}

	if good.LastCostOfUnitOfMeasure != previousCost {
		return s.publishCostChange(ctx, good, previousCost)
	}
	return nil
}

// DeleteOrder removes one purchase order line and reverses its effect on
// the raw good: the purchased base quantity is subtracted and the average
// cost recomputed from scratch over the remaining lines of that product,
// not algebraically un-applied, to avoid drift from repeated reversal.
func (s *Service) DeleteOrder(ctx context.Context, owner, id string) error {
	order, err := s.GetOrder(ctx, owner, id)
	if err != nil {
		return err
	}

	if err := s.store.Delete(ctx, models.CollectionPurchaseOrders, id); err != nil {
		return fmt.Errorf("delete purchase order: %w", err)
	}

	good, err := s.findByName(ctx, owner, order.Product)
	if errors.Is(err, docstore.ErrNotFound) {
		s.logger.Warn("raw good not found for reversal",
			zap.String("product", order.Product))
		return nil
	}
	if err != nil {
		return fmt.Errorf("look up raw good %s: %w", order.Product, err)
	}

	newQuantity := good.QtyOnHand - order.BaseQuantity()
	if s.clampNegative && newQuantity < 0 {
		newQuantity = 0
	}

	remaining, err := s.ordersForProduct(ctx, owner, order.Product)
	if err != nil {
		return err
	}

	var totalValue, totalQuantity float64
	for _, line := range remaining {
		base := line.BaseQuantity()
		totalValue += base * line.CostOfUnitOfMeasure
		totalQuantity += base
	}
	newAverage := safeDivide(totalValue, totalQuantity)

	var lastCostOfUnit, lastCostPerBase float64
	if len(remaining) > 0 {
		lastCostOfUnit = remaining[0].CostOfUnit
		lastCostPerBase = remaining[0].CostOfUnitOfMeasure
	}

	if _, err := s.store.Create(ctx, models.CollectionRawGoodsHistory, good.Snapshot(time.Now())); err != nil {
		return fmt.Errorf("snapshot raw good history for %s: %w", good.Name, err)
	}

	previousCost := good.LastCostOfUnitOfMeasure
	good.QtyOnHand = newQuantity
	good.AverageCostOfUnitOfMeasure = newAverage
	good.LastCostOfUnit = lastCostOfUnit
	good.LastCostOfUnitOfMeasure = lastCostPerBase
	good.Date = time.Now()

	fields := map[string]any{
		"qtyOnHand":                  good.QtyOnHand,
		"averageCostOfUnitOfMeasure": good.AverageCostOfUnitOfMeasure,
		"lastCostOfUnit":             good.LastCostOfUnit,
		"lastCostOfUnitOfMeasure":    good.LastCostOfUnitOfMeasure,
		"date":                       good.Date,
	}
	if err := s.store.Update(ctx, models.CollectionRawGoods, good.ID, fields); err != nil {
		return fmt.Errorf("update raw good %s: %w", good.Name, err)
	}

	if good.LastCostOfUnitOfMeasure != previousCost {
		return s.publishCostChange(ctx, good, previousCost)
	}
	return nil
}

// GetOrder loads one purchase order line, owner-scoped.
func (s *Service) GetOrder(ctx context.Context, owner, id string) (models.PurchaseOrder, error) {
	var order models.PurchaseOrder
	if err := s.store.Get(ctx, models.CollectionPurchaseOrders, id, &order); err != nil {
		return models.PurchaseOrder{}, err
	}
	if order.OwnerID != owner {
		return models.PurchaseOrder{}, docstore.ErrNotFound
	}
	return order, nil
}

// ListOrders returns the owner's purchase order lines, newest first.
func (s *Service) ListOrders(ctx context.Context, owner string) ([]models.PurchaseOrder, error) {
	var orders []models.PurchaseOrder
	err := s.store.Find(ctx, models.CollectionPurchaseOrders,
		docstore.Filter{"ownerId": owner},
		&docstore.FindOptions{SortField: "date", SortDesc: true},
		&orders)
	if err != nil {
		return nil, fmt.Errorf("list purchase orders: %w", err)
	}
	return orders, nil
}

func (s *Service) ordersForProduct(ctx context.Context, owner, product string) ([]models.PurchaseOrder, error) {
	var orders []models.PurchaseOrder
	err := s.store.Find(ctx, models.CollectionPurchaseOrders,
		docstore.Filter{"ownerId": owner, "product": product},
		&docstore.FindOptions{SortField: "date", SortDesc: true},
		&orders)
	if err != nil {
		return nil, fmt.Errorf("list purchase orders for %s: %w", product, err)
	}
	return orders, nil
}
