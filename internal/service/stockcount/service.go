// Package stockcount reconciles physical counts against the raw-good
// ledger. The count entry and every quantity overwrite commit in one atomic
// batch; validation failures abort before anything is written.
package stockcount

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/prepflow/backoffice/internal/domain/models"
	"github.com/prepflow/backoffice/internal/repository/docstore"
)

// ErrInvalidCount rejects a commit containing a missing or non-numeric
// counted value. Nothing is written when it is returned.
var ErrInvalidCount = errors.New("stockcount: counted quantities must all be numeric")

// Service commits and reads stock counts.
type Service struct {
	store  docstore.Store
	logger *zap.Logger
}

// NewService wires the reconciler.
func NewService(store docstore.Store, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{store: store, logger: logger}
}

// Commit records a full physical count. counts maps raw good id to the
// counted quantity as entered, in the good's display unit. Every raw good
// of the owner must have a numeric value; otherwise the whole commit is
// rejected. On success the entry document and all qtyOnHand overwrites are
// applied in one batch, and the average cost basis is left untouched.
func (s *Service) Commit(ctx context.Context, owner string, counts map[string]string) (models.StockCountEntry, error) {
	var goods []models.RawGood
	err := s.store.Find(ctx, models.CollectionRawGoods,
		docstore.Filter{"ownerId": owner},
		&docstore.FindOptions{SortField: "name"},
		&goods)
	if err != nil {
		return models.StockCountEntry{}, fmt.Errorf("load raw goods: %w", err)
	}
	if len(goods) == 0 {
		return models.StockCountEntry{}, fmt.Errorf("stockcount: no raw goods to count")
	}

	// Validate every input before touching the store.
	counted := make(map[string]float64, len(goods))
	for _, good := range goods {
		raw, ok := counts[good.ID]
		if !ok {
			return models.StockCountEntry{}, fmt.Errorf("%w: missing count for %s", ErrInvalidCount, good.Name)
		}
		value, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return models.StockCountEntry{}, fmt.Errorf("%w: %s=%q", ErrInvalidCount, good.Name, raw)
		}
		counted[good.ID] = value
	}

	entry := models.StockCountEntry{
		OwnerID: owner,
		Date:    time.Now(),
		Items:   make([]models.StockCountItem, 0, len(goods)),
	}
	ops := make([]docstore.Operation, 0, len(goods)+1)

	for _, good := range goods {
		input := counted[good.ID]
		countedBase := models.ToBase(input, good.UnitOfMeasure)
		differenceBase := countedBase - good.QtyOnHand

		entry.Items = append(entry.Items, models.StockCountItem{
			RawGoodID:       good.ID,
			Name:            good.Name,
			CountedQuantity: input,
			QtyOnHand:       models.FromBase(good.QtyOnHand, good.UnitOfMeasure),
			Difference:      models.FromBase(differenceBase, good.UnitOfMeasure),
			UnitOfMeasure:   good.UnitOfMeasure,
		})
		ops = append(ops, docstore.Operation{
			Kind:       docstore.OpUpdate,
			Collection: models.CollectionRawGoods,
			ID:         good.ID,
			Fields:     map[string]any{"qtyOnHand": countedBase, "date": entry.Date},
		})
	}
	ops = append(ops, docstore.Operation{
		Kind:       docstore.OpCreate,
		Collection: models.CollectionStockCounts,
		Doc:        entry,
	})

	if err := s.store.BatchWrite(ctx, ops); err != nil {
		return models.StockCountEntry{}, fmt.Errorf("commit stock count: %w", err)
	}

	s.logger.Info("stock count committed",
		zap.Int("items", len(entry.Items)))
	return entry, nil
}

// Get loads one stock count, owner-scoped.
func (s *Service) Get(ctx context.Context, owner, id string) (models.StockCountEntry, error) {
	var entry models.StockCountEntry
	if err := s.store.Get(ctx, models.CollectionStockCounts, id, &entry); err != nil {
		return models.StockCountEntry{}, err
	}
	if entry.OwnerID != owner {
		return models.StockCountEntry{}, docstore.ErrNotFound
	}
	return entry, nil
}

// List returns the owner's stock counts, newest first.
func (s *Service) List(ctx context.Context, owner string) ([]models.StockCountEntry, error) {
	var entries []models.StockCountEntry
	err := s.store.Find(ctx, models.CollectionStockCounts,
		docstore.Filter{"ownerId": owner},
		&docstore.FindOptions{SortField: "date", SortDesc: true},
		&entries)
	if err != nil {
		return nil, fmt.Errorf("list stock counts: %w", err)
	}
	return entries, nil
}

// Delete removes a stock count record. The quantity overwrite it performed
// is not reversed.
func (s *Service) Delete(ctx context.Context, owner, id string) error {
	if _, err := s.Get(ctx, owner, id); err != nil {
		return err
	}
	if err := s.store.Delete(ctx, models.CollectionStockCounts, id); err != nil {
		return fmt.Errorf("delete stock count: %w", err)
	}
	return nil
}
