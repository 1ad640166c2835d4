// Package bom owns bill-of-materials assemblies and the cost propagation
// engine that keeps their derived costs in line with the raw-good ledger.
package bom

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/prepflow/backoffice/internal/domain/models"
	"github.com/prepflow/backoffice/internal/repository/docstore"
)

// Service manages assemblies. Every cost-affecting overwrite is preceded by
// a history snapshot.
type Service struct {
	store  docstore.Store
	logger *zap.Logger
}

// NewService wires the assembly service.
func NewService(store docstore.Store, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{store: store, logger: logger}
}

// AssemblyItemInput is one submitted recipe line. PurchaseCost is only
// honored for Other Costs lines; Raw Goods and Finished Product lines take
// their cost from the referenced record.
type AssemblyItemInput struct {
	Name          string               `json:"name" binding:"required"`
	ItemType      models.BOMItemType   `json:"itemType" binding:"required"`
	Quantity      float64              `json:"quantity"`
	UnitOfMeasure models.UnitOfMeasure `json:"unitOfMeasure"`
	PurchaseCost  float64              `json:"purchaseCost"`
}

// AssemblyInput carries the user-entered fields of an assembly.
type AssemblyInput struct {
	FinishedProductName string              `json:"finishedProductName" binding:"required"`
	ArticleNumber       string              `json:"articleNumber"`
	Date                time.Time           `json:"date"`
	SalesDescription    string              `json:"salesDescription"`
	SalesPrice          float64             `json:"salesPrice"`
	Items               []AssemblyItemInput `json:"assemblyItems"`
}

// CreateAssembly resolves line costs, derives totals and persists the
// assembly. Timestamp records the creation instant.
func (s *Service) CreateAssembly(ctx context.Context, owner string, input AssemblyInput) (models.BOMAssembly, error) {
	asm := models.BOMAssembly{
		OwnerID:             owner,
		FinishedProductName: input.FinishedProductName,
		ArticleNumber:       input.ArticleNumber,
		Date:                input.Date,
		SalesDescription:    input.SalesDescription,
		SalesPrice:          input.SalesPrice,
		Timestamp:           time.Now(),
	}
	if asm.Date.IsZero() {
		asm.Date = time.Now()
	}

	items, err := s.resolveItems(ctx, owner, input.Items)
	if err != nil {
		return models.BOMAssembly{}, err
	}
	asm.AssemblyItems = items
	asm.Recost()

	id, err := s.store.Create(ctx, models.CollectionBOMAssemblies, asm)
	if err != nil {
		return models.BOMAssembly{}, fmt.Errorf("create assembly: %w", err)
	}
	asm.ID = id

	s.logger.Info("assembly created",
		zap.String("name", asm.FinishedProductName),
		zap.Float64("totalCost", asm.TotalCost))
	return asm, nil
}

// UpdateAssembly overwrites an assembly after copying its prior state to
// history. Derived fields are recomputed and the timestamp refreshed.
func (s *Service) UpdateAssembly(ctx context.Context, owner, id string, input AssemblyInput) (models.BOMAssembly, error) {
	asm, err := s.GetAssembly(ctx, owner, id)
	if err != nil {
		return models.BOMAssembly{}, err
	}

	if _, err := s.store.Create(ctx, models.CollectionBOMHistory, asm.Snapshot(time.Now())); err != nil {
		return models.BOMAssembly{}, fmt.Errorf("snapshot assembly history: %w", err)
	}

	asm.FinishedProductName = input.FinishedProductName
	asm.ArticleNumber = input.ArticleNumber
	asm.SalesDescription = input.SalesDescription
	asm.SalesPrice = input.SalesPrice
	if !input.Date.IsZero() {
		asm.Date = input.Date
	}

	items, err := s.resolveItems(ctx, owner, input.Items)
	if err != nil {
		return models.BOMAssembly{}, err
	}
	asm.AssemblyItems = items
	asm.Recost()
	asm.Timestamp = time.Now()

	if err := s.writeAssembly(ctx, asm); err != nil {
		return models.BOMAssembly{}, err
	}
	return asm, nil
}

// DeleteAssembly removes the assembly; its history rows persist.
func (s *Service) DeleteAssembly(ctx context.Context, owner, id string) error {
	if _, err := s.GetAssembly(ctx, owner, id); err != nil {
		return err
	}
	if err := s.store.Delete(ctx, models.CollectionBOMAssemblies, id); err != nil {
		return fmt.Errorf("delete assembly: %w", err)
	}
	return nil
}

// GetAssembly loads one assembly, owner-scoped.
func (s *Service) GetAssembly(ctx context.Context, owner, id string) (models.BOMAssembly, error) {
	var asm models.BOMAssembly
	if err := s.store.Get(ctx, models.CollectionBOMAssemblies, id, &asm); err != nil {
		return models.BOMAssembly{}, err
	}
	if asm.OwnerID != owner {
		return models.BOMAssembly{}, docstore.ErrNotFound
	}
	return asm, nil
}

// ListAssemblies returns the owner's assemblies ordered by product name.
func (s *Service) ListAssemblies(ctx context.Context, owner string) ([]models.BOMAssembly, error) {
	var assemblies []models.BOMAssembly
	err := s.store.Find(ctx, models.CollectionBOMAssemblies,
		docstore.Filter{"ownerId": owner},
		&docstore.FindOptions{SortField: "finishedProductName"},
		&assemblies)
	if err != nil {
		return nil, fmt.Errorf("list assemblies: %w", err)
	}
	return assemblies, nil
}

// History returns the assembly's audit snapshots, oldest first.
func (s *Service) History(ctx context.Context, owner, assemblyID string) ([]models.BOMAssemblyHistory, error) {
	var rows []models.BOMAssemblyHistory
	err := s.store.Find(ctx, models.CollectionBOMHistory,
		docstore.Filter{"ownerId": owner, "assemblyId": assemblyID},
		&docstore.FindOptions{SortField: "timestamp"},
		&rows)
	if err != nil {
		return nil, fmt.Errorf("load assembly history: %w", err)
	}
	return rows, nil
}

// resolveItems snapshots the current unit cost into each line: raw-good
// lines take the good's last per-base-unit cost, finished-product lines the
// referenced assembly's total cost, other-cost lines keep the submitted
// value.
func (s *Service) resolveItems(ctx context.Context, owner string, inputs []AssemblyItemInput) ([]models.BOMAssemblyItem, error) {
	items := make([]models.BOMAssemblyItem, 0, len(inputs))
	for _, in := range inputs {
		item := models.BOMAssemblyItem{
			Name:          in.Name,
			ItemType:      in.ItemType,
			Quantity:      in.Quantity,
			UnitOfMeasure: in.UnitOfMeasure,
			PurchaseCost:  in.PurchaseCost,
		}

		switch in.ItemType {
		case models.ItemTypeRawGoods:
			var goods []models.RawGood
			err := s.store.Find(ctx, models.CollectionRawGoods,
				docstore.Filter{"ownerId": owner, "name": in.Name},
				&docstore.FindOptions{Limit: 1},
				&goods)
			if err != nil {
				return nil, fmt.Errorf("resolve raw good %s: %w", in.Name, err)
			}
			if len(goods) > 0 {
				item.PurchaseCost = goods[0].LastCostOfUnitOfMeasure
			} else {
				s.logger.Warn("raw good not found for assembly line, keeping submitted cost",
					zap.String("name", in.Name))
			}
		case models.ItemTypeFinishedProduct:
			var refs []models.BOMAssembly
			err := s.store.Find(ctx, models.CollectionBOMAssemblies,
				docstore.Filter{"ownerId": owner, "finishedProductName": in.Name},
				&docstore.FindOptions{Limit: 1},
				&refs)
			if err != nil {
				return nil, fmt.Errorf("resolve assembly %s: %w", in.Name, err)
			}
			if len(refs) > 0 {
				item.PurchaseCost = refs[0].TotalCost
			} else {
				s.logger.Warn("referenced assembly not found for line, keeping submitted cost",
					zap.String("name", in.Name))
			}
		}

		item.TotalCost = item.Quantity * item.PurchaseCost
		items = append(items, item)
	}
	return items, nil
}

func (s *Service) writeAssembly(ctx context.Context, asm models.BOMAssembly) error {
	fields := map[string]any{
		"finishedProductName":     asm.FinishedProductName,
		"articleNumber":           asm.ArticleNumber,
		"date":                    asm.Date,
		"salesDescription":        asm.SalesDescription,
		"salesPrice":              asm.SalesPrice,
		"totalCost":               asm.TotalCost,
		"profitPerItem":           asm.ProfitPerItem,
		"profitPercentagePerItem": asm.ProfitPercentagePerItem,
		"assemblyItems":           asm.AssemblyItems,
		"timestamp":               asm.Timestamp,
	}
	if err := s.store.Update(ctx, models.CollectionBOMAssemblies, asm.ID, fields); err != nil {
		return fmt.Errorf("write assembly %s: %w", asm.FinishedProductName, err)
	}
	return nil
}

// ErrCycle reports a finished-product reference loop between assemblies.
var ErrCycle = errors.New("bom: assembly reference cycle detected")
