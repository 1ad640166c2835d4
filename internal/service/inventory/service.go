// Package inventory owns the raw-good ledger and the purchase order
// processor. All quantity and per-unit-of-measure cost arithmetic happens in
// base units; display conversion is applied only at the edges.
package inventory

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/prepflow/backoffice/internal/domain/models"
	"github.com/prepflow/backoffice/internal/events"
	"github.com/prepflow/backoffice/internal/repository/docstore"
)

// ErrDuplicateName rejects creating or renaming a raw good to a name another
// good of the same owner already uses.
var ErrDuplicateName = errors.New("inventory: raw good name already exists")

// Service mutates the raw-good ledger. Cost-affecting writes snapshot the
// prior state to history first and publish a cost-change event when the
// last per-base-unit cost moved.
type Service struct {
	store         docstore.Store
	bus           events.Publisher
	clampNegative bool
	logger        *zap.Logger
}

// NewService wires the ledger service. clampNegative selects whether
// reversals may drive the quantity on hand below zero.
func NewService(store docstore.Store, bus events.Publisher, clampNegative bool, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{store: store, bus: bus, clampNegative: clampNegative, logger: logger}
}

// RawGoodInput carries the user-entered fields of a raw good. Quantities are
// in the display unit; the service converts to base on write.
type RawGoodInput struct {
	Name          string               `json:"name" binding:"required"`
	UnitOfMeasure models.UnitOfMeasure `json:"unitOfMeasure" binding:"required"`
	PurchaseUnit  models.PurchaseUnit  `json:"purchaseUnit"`
	QtyOnHand     float64              `json:"qtyOnHand"`
	CostOfUnit    float64              `json:"costOfUnit"`
	PurchUnitQty  float64              `json:"purchUnitQty"`
}

// CreateRawGood adds a ledger record, rejecting duplicate names per owner.
func (s *Service) CreateRawGood(ctx context.Context, owner string, input RawGoodInput) (models.RawGood, error) {
	if err := s.checkNameFree(ctx, owner, input.Name, ""); err != nil {
		return models.RawGood{}, err
	}

	purchUnitQtyBase := models.ToBase(input.PurchUnitQty, input.UnitOfMeasure)
	costPerBase := safeDivide(input.CostOfUnit, purchUnitQtyBase)

	good := models.RawGood{
		OwnerID:                    owner,
		Name:                       input.Name,
		UnitOfMeasure:              input.UnitOfMeasure,
		PurchaseUnit:               input.PurchaseUnit,
		QtyOnHand:                  models.ToBase(input.QtyOnHand, input.UnitOfMeasure),
		CostOfUnit:                 input.CostOfUnit,
		PurchUnitQty:               purchUnitQtyBase,
		AverageCostOfUnitOfMeasure: costPerBase,
		LastCostOfUnit:             input.CostOfUnit,
		LastCostOfUnitOfMeasure:    costPerBase,
		Date:                       time.Now(),
	}

	id, err := s.store.Create(ctx, models.CollectionRawGoods, good)
	if err != nil {
		return models.RawGood{}, fmt.Errorf("create raw good: %w", err)
	}
	good.ID = id

	s.logger.Info("raw good created", zap.String("name", good.Name), zap.String("id", id))
	return good, nil
}

// UpdateRawGood edits a ledger record directly. A change to the last
// per-base-unit cost behaves like any other cost change: history is written
// first and the event published afterwards.
func (s *Service) UpdateRawGood(ctx context.Context, owner, id string, input RawGoodInput) (models.RawGood, error) {
	good, err := s.GetRawGood(ctx, owner, id)
	if err != nil {
		return models.RawGood{}, err
	}

	if !strings.EqualFold(good.Name, input.Name) {
		if err := s.checkNameFree(ctx, owner, input.Name, id); err != nil {
			return models.RawGood{}, err
		}
	}

	purchUnitQtyBase := models.ToBase(input.PurchUnitQty, input.UnitOfMeasure)
	costPerBase := safeDivide(input.CostOfUnit, purchUnitQtyBase)
	costChanged := costPerBase != good.LastCostOfUnitOfMeasure

	if costChanged {
		if _, err := s.store.Create(ctx, models.CollectionRawGoodsHistory, good.Snapshot(time.Now())); err != nil {
			return models.RawGood{}, fmt.Errorf("snapshot raw good history: %w", err)
		}
	}

	previousCost := good.LastCostOfUnitOfMeasure
	good.Name = input.Name
	good.UnitOfMeasure = input.UnitOfMeasure
	good.PurchaseUnit = input.PurchaseUnit
	good.QtyOnHand = models.ToBase(input.QtyOnHand, input.UnitOfMeasure)
	good.CostOfUnit = input.CostOfUnit
	good.PurchUnitQty = purchUnitQtyBase
	good.LastCostOfUnit = input.CostOfUnit
	good.LastCostOfUnitOfMeasure = costPerBase
	good.Date = time.Now()

	fields := map[string]any{
		"name":                    good.Name,
		"unitOfMeasure":           good.UnitOfMeasure,
		"purchaseUnit":            good.PurchaseUnit,
		"qtyOnHand":               good.QtyOnHand,
		"costOfUnit":              good.CostOfUnit,
		"purchUnitQty":            good.PurchUnitQty,
		"lastCostOfUnit":          good.LastCostOfUnit,
		"lastCostOfUnitOfMeasure": good.LastCostOfUnitOfMeasure,
		"date":                    good.Date,
	}
	if err := s.store.Update(ctx, models.CollectionRawGoods, id, fields); err != nil {
		return models.RawGood{}, fmt.Errorf("update raw good: %w", err)
	}

	if costChanged {
		if err := s.publishCostChange(ctx, good, previousCost); err != nil {
			return good, err
		}
	}
	return good, nil
}

// DeleteRawGood removes the ledger record. History rows persist on their
// own.
func (s *Service) DeleteRawGood(ctx context.Context, owner, id string) error {
	if _, err := s.GetRawGood(ctx, owner, id); err != nil {
		return err
	}
	if err := s.store.Delete(ctx, models.CollectionRawGoods, id); err != nil {
		return fmt.Errorf("delete raw good: %w", err)
	}
	return nil
}

// GetRawGood loads one ledger record, owner-scoped.
func (s *Service) GetRawGood(ctx context.Context, owner, id string) (models.RawGood, error) {
	var good models.RawGood
	if err := s.store.Get(ctx, models.CollectionRawGoods, id, &good); err != nil {
		return models.RawGood{}, err
	}
	if good.OwnerID != owner {
		return models.RawGood{}, docstore.ErrNotFound
	}
	return good, nil
}

// ListRawGoods returns the owner's ledger, ordered by name.
func (s *Service) ListRawGoods(ctx context.Context, owner string) ([]models.RawGood, error) {
	var goods []models.RawGood
	err := s.store.Find(ctx, models.CollectionRawGoods,
		docstore.Filter{"ownerId": owner},
		&docstore.FindOptions{SortField: "name"},
		&goods)
	if err != nil {
		return nil, fmt.Errorf("list raw goods: %w", err)
	}
	return goods, nil
}

// History returns the good's audit snapshots, oldest first.
func (s *Service) History(ctx context.Context, owner, goodID string) ([]models.RawGoodHistory, error) {
	var rows []models.RawGoodHistory
	err := s.store.Find(ctx, models.CollectionRawGoodsHistory,
		docstore.Filter{"ownerId": owner, "rawGoodId": goodID},
		&docstore.FindOptions{SortField: "timestamp"},
		&rows)
	if err != nil {
		return nil, fmt.Errorf("load raw good history: %w", err)
	}
	return rows, nil
}

func (s *Service) checkNameFree(ctx context.Context, owner, name, exceptID string) error {
	goods, err := s.ListRawGoods(ctx, owner)
	if err != nil {
		return err
	}
	for _, g := range goods {
		if g.ID != exceptID && strings.EqualFold(g.Name, name) {
			return ErrDuplicateName
		}
	}
	return nil
}

func (s *Service) findByName(ctx context.Context, owner, name string) (models.RawGood, error) {
	var goods []models.RawGood
	err := s.store.Find(ctx, models.CollectionRawGoods,
		docstore.Filter{"ownerId": owner, "name": name},
		&docstore.FindOptions{Limit: 1},
		&goods)
	if err != nil {
		return models.RawGood{}, err
	}
	if len(goods) == 0 {
		return models.RawGood{}, docstore.ErrNotFound
	}
	return goods[0], nil
}

func (s *Service) publishCostChange(ctx context.Context, good models.RawGood, previousCost float64) error {
	if s.bus == nil {
		return nil
	}
	ev := models.CostChanged{
		OwnerID:      good.OwnerID,
		RawGoodID:    good.ID,
		Name:         good.Name,
		PreviousCost: previousCost,
		NewCost:      good.LastCostOfUnitOfMeasure,
	}
	if err := s.bus.Publish(ctx, ev); err != nil {
		return fmt.Errorf("propagate cost change for %s: %w", good.Name, err)
	}
	return nil
}

// safeDivide defuses division by zero to zero, per the costing rules.
func safeDivide(numerator, divisor float64) float64 {
	if divisor == 0 {
		return 0
	}
	return numerator / divisor
}
