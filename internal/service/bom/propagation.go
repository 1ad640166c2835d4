package bom

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/prepflow/backoffice/internal/domain/models"
)

// CostDiff compares two snapshots of a raw good and reports whether its
// last per-base-unit cost moved. Pure; the caller owns the previous
// snapshot.
func CostDiff(prev, curr models.RawGood) (models.CostChanged, bool) {
	if prev.LastCostOfUnitOfMeasure == curr.LastCostOfUnitOfMeasure {
		return models.CostChanged{}, false
	}
	return models.CostChanged{
		OwnerID:      curr.OwnerID,
		RawGoodID:    curr.ID,
		Name:         curr.Name,
		PreviousCost: prev.LastCostOfUnitOfMeasure,
		NewCost:      curr.LastCostOfUnitOfMeasure,
	}, true
}

// Propagate pushes a raw-good cost change into every assembly of the owner
// that references it, then cascades through finished-product references.
//
// Propagation is best effort across assemblies: a failing read or write is
// logged, the remaining assemblies are still processed, and the joined
// errors are returned. Already-applied assemblies (lines carrying the new
// cost) are skipped, so re-delivery of the same event is harmless.
func (s *Service) Propagate(ctx context.Context, ev models.CostChanged) error {
	assemblies, err := s.ListAssemblies(ctx, ev.OwnerID)
	if err != nil {
		return fmt.Errorf("load assemblies for propagation: %w", err)
	}

	var errs []error
	for _, asm := range assemblies {
		if !linesNeedCost(asm.AssemblyItems, models.ItemTypeRawGoods, ev.Name, ev.NewCost) {
			continue
		}
		path := map[string]bool{asm.ID: true}
		if err := s.repriceAndCascade(ctx, asm, models.ItemTypeRawGoods, ev.Name, ev.NewCost, path); err != nil {
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		s.logger.Error("cost propagation completed with failures",
			zap.String("rawGood", ev.Name),
			zap.Int("failures", len(errs)))
	}
	return errors.Join(errs...)
}

// repriceAndCascade snapshots the assembly to history, rewrites the matching
// lines at the new cost, and follows finished-product references to the
// assemblies depending on this one. path is the set of assembly ids on the
// current recursion stack; meeting one again means a reference cycle.
//
// The assembly is re-read first: the caller's copy may predate a cascade
// that already touched this assembly, and writing the stale lines back would
// revert it.
func (s *Service) repriceAndCascade(ctx context.Context, asm models.BOMAssembly, itemType models.BOMItemType, name string, cost float64, path map[string]bool) error {
	fresh, err := s.GetAssembly(ctx, asm.OwnerID, asm.ID)
	if err != nil {
		return fmt.Errorf("reload assembly %s: %w", asm.FinishedProductName, err)
	}
	asm = fresh

	if _, err := s.store.Create(ctx, models.CollectionBOMHistory, asm.Snapshot(time.Now())); err != nil {
		return fmt.Errorf("snapshot assembly %s: %w", asm.FinishedProductName, err)
	}

	for i := range asm.AssemblyItems {
		item := &asm.AssemblyItems[i]
		if item.ItemType == itemType && item.Name == name {
			item.PurchaseCost = cost
		}
	}
	asm.Recost()
	asm.Timestamp = time.Now()
	asm.Date = time.Now()

	if err := s.writeAssembly(ctx, asm); err != nil {
		return err
	}
	s.logger.Info("assembly repriced",
		zap.String("assembly", asm.FinishedProductName),
		zap.Float64("totalCost", asm.TotalCost))

	return s.cascade(ctx, asm, path)
}

// cascade reprices every assembly holding a finished-product line that
// references asm, propagating the updated total cost upward.
func (s *Service) cascade(ctx context.Context, asm models.BOMAssembly, path map[string]bool) error {
	dependents, err := s.ListAssemblies(ctx, asm.OwnerID)
	if err != nil {
		return fmt.Errorf("load dependents of %s: %w", asm.FinishedProductName, err)
	}

	var errs []error
	for _, dep := range dependents {
		if !linesNeedCost(dep.AssemblyItems, models.ItemTypeFinishedProduct, asm.FinishedProductName, asm.TotalCost) {
			continue
		}
		if path[dep.ID] {
			errs = append(errs, fmt.Errorf("%w: %s -> %s", ErrCycle, asm.FinishedProductName, dep.FinishedProductName))
			continue
		}
		path[dep.ID] = true
		if err := s.repriceAndCascade(ctx, dep, models.ItemTypeFinishedProduct, asm.FinishedProductName, asm.TotalCost, path); err != nil {
			errs = append(errs, err)
		}
		delete(path, dep.ID)
	}
	return errors.Join(errs...)
}

// linesNeedCost reports whether any line of the given type and name does not
// already carry the target cost.
func linesNeedCost(items []models.BOMAssemblyItem, itemType models.BOMItemType, name string, cost float64) bool {
	for _, item := range items {
		if item.ItemType == itemType && item.Name == name && item.PurchaseCost != cost {
			return true
		}
	}
	return false
}
