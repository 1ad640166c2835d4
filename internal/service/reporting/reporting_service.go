// Package reporting derives valuation and variance views from the ledger
// and optionally exports them to a spreadsheet.
package reporting

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/prepflow/backoffice/internal/domain/models"
	"github.com/prepflow/backoffice/internal/repository/docstore"
	repo "github.com/prepflow/backoffice/internal/repository/sheets"
)

const (
	dateLayout          = "2006-01-02"
	valuationSheetRange = "Valuation!A:F"
	varianceSheetRange  = "Variance!A:F"
)

// Service exposes inventory analytics. The sheets repository is optional;
// exports are skipped when it is nil.
type Service struct {
	store  docstore.Store
	sheets repo.Repository
	logger *zap.Logger
}

// NewService wires a new reporting service instance.
func NewService(store docstore.Store, sheets repo.Repository, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{store: store, sheets: sheets, logger: logger}
}

// ValuationSummary values every raw good of the owner at its moving-average
// cost. Quantities are reported in display units; values are computed on
// base quantities.
func (s *Service) ValuationSummary(ctx context.Context, owner string) (models.ValuationSnapshot, error) {
	var goods []models.RawGood
	err := s.store.Find(ctx, models.CollectionRawGoods,
		docstore.Filter{"ownerId": owner},
		&docstore.FindOptions{SortField: "name"},
		&goods)
	if err != nil {
		return models.ValuationSnapshot{}, fmt.Errorf("load raw goods: %w", err)
	}

	snapshot := models.ValuationSnapshot{
		OwnerID:   owner,
		Date:      time.Now(),
		CreatedAt: time.Now(),
		Lines:     make([]models.ValuationLine, 0, len(goods)),
	}
	for _, good := range goods {
		value := good.QtyOnHand * good.AverageCostOfUnitOfMeasure
		snapshot.Lines = append(snapshot.Lines, models.ValuationLine{
			RawGoodID:     good.ID,
			Name:          good.Name,
			QtyOnHand:     models.FromBase(good.QtyOnHand, good.UnitOfMeasure),
			UnitOfMeasure: good.UnitOfMeasure,
			AverageCost:   good.AverageCostOfUnitOfMeasure,
			Value:         value,
		})
		snapshot.TotalValue += value
	}
	return snapshot, nil
}

// SaveValuationSnapshot computes and persists the owner's valuation, then
// appends it to the configured spreadsheet.
func (s *Service) SaveValuationSnapshot(ctx context.Context, owner string) (models.ValuationSnapshot, error) {
	snapshot, err := s.ValuationSummary(ctx, owner)
	if err != nil {
		return models.ValuationSnapshot{}, err
	}

	id, err := s.store.Create(ctx, models.CollectionValuationSnapshots, snapshot)
	if err != nil {
		return models.ValuationSnapshot{}, fmt.Errorf("persist valuation snapshot: %w", err)
	}
	snapshot.ID = id

	if s.sheets != nil {
		rows := make([][]interface{}, 0, len(snapshot.Lines))
		day := snapshot.Date.Format(dateLayout)
		for _, line := range snapshot.Lines {
			rows = append(rows, []interface{}{
				day, owner, line.Name,
				fmt.Sprintf("%.2f %s", line.QtyOnHand, line.UnitOfMeasure.Suffix()),
				line.AverageCost, line.Value,
			})
		}
		if err := s.sheets.AppendRows(ctx, valuationSheetRange, rows); err != nil {
			s.logger.Error("valuation sheet export failed", zap.String("owner", owner), zap.Error(err))
		}
	}
	return snapshot, nil
}

// Variance values the differences of one stock count at each good's current
// average cost.
func (s *Service) Variance(ctx context.Context, owner, stockCountID string) (models.VarianceReport, error) {
	var entry models.StockCountEntry
	if err := s.store.Get(ctx, models.CollectionStockCounts, stockCountID, &entry); err != nil {
		return models.VarianceReport{}, err
	}
	if entry.OwnerID != owner {
		return models.VarianceReport{}, docstore.ErrNotFound
	}

	var goods []models.RawGood
	err := s.store.Find(ctx, models.CollectionRawGoods,
		docstore.Filter{"ownerId": owner}, nil, &goods)
	if err != nil {
		return models.VarianceReport{}, fmt.Errorf("load raw goods: %w", err)
	}
	averages := make(map[string]float64, len(goods))
	for _, good := range goods {
		averages[good.ID] = good.AverageCostOfUnitOfMeasure
	}

	report := models.VarianceReport{
		StockCountID: stockCountID,
		Date:         entry.Date,
		Lines:        make([]models.VarianceLine, 0, len(entry.Items)),
	}
	for _, item := range entry.Items {
		avg := averages[item.RawGoodID]
		value := models.ToBase(item.Difference, item.UnitOfMeasure) * avg
		report.Lines = append(report.Lines, models.VarianceLine{
			RawGoodID:     item.RawGoodID,
			Name:          item.Name,
			Difference:    item.Difference,
			UnitOfMeasure: item.UnitOfMeasure,
			AverageCost:   avg,
			VarianceValue: value,
		})
		report.TotalVariance += value
	}
	return report, nil
}

// ExportVariance appends a stock count's valued variances to the
// spreadsheet. No-op without a configured sheets repository.
func (s *Service) ExportVariance(ctx context.Context, owner, stockCountID string) error {
	if s.sheets == nil {
		return nil
	}
	report, err := s.Variance(ctx, owner, stockCountID)
	if err != nil {
		return err
	}

	rows := make([][]interface{}, 0, len(report.Lines))
	day := report.Date.Format(dateLayout)
	for _, line := range report.Lines {
		rows = append(rows, []interface{}{
			day, owner, line.Name,
			fmt.Sprintf("%.2f %s", line.Difference, line.UnitOfMeasure.Suffix()),
			line.AverageCost, line.VarianceValue,
		})
	}
	if err := s.sheets.AppendRows(ctx, varianceSheetRange, rows); err != nil {
		return fmt.Errorf("export variance for count %s: %w", stockCountID, err)
	}
	return nil
}

// Owners lists every owner id present in the raw goods collection. The
// scheduler uses it to snapshot each tenant.
func (s *Service) Owners(ctx context.Context) ([]string, error) {
	var goods []models.RawGood
	if err := s.store.Find(ctx, models.CollectionRawGoods, nil, nil, &goods); err != nil {
		return nil, fmt.Errorf("load raw goods: %w", err)
	}
	seen := make(map[string]bool)
	var owners []string
	for _, good := range goods {
		if !seen[good.OwnerID] {
			seen[good.OwnerID] = true
			owners = append(owners, good.OwnerID)
		}
	}
	return owners, nil
}
