package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/prepflow/backoffice/internal/service/reporting"
)

// ReportsHandler exposes valuation and variance reports.
type ReportsHandler struct {
	svc    *reporting.Service
	logger *zap.Logger
}

// NewReportsHandler constructs the HTTP handler adapter.
func NewReportsHandler(svc *reporting.Service, logger *zap.Logger) *ReportsHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReportsHandler{svc: svc, logger: logger}
}

// Valuation returns the owner's current inventory valuation.
func (h *ReportsHandler) Valuation(c *gin.Context) {
	snapshot, err := h.svc.ValuationSummary(c.Request.Context(), owner(c))
	if err != nil {
		h.logger.Error("valuation report failed", zap.Error(err))
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, snapshot)
}

// Variance returns a stock count's differences valued at average cost.
func (h *ReportsHandler) Variance(c *gin.Context) {
	report, err := h.svc.Variance(c.Request.Context(), owner(c), c.Param("id"))
	if err != nil {
		h.logger.Error("variance report failed", zap.String("id", c.Param("id")), zap.Error(err))
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}

// ExportVariance appends the valued variances of a stock count to the
// configured spreadsheet.
func (h *ReportsHandler) ExportVariance(c *gin.Context) {
	id := c.Param("id")
	if err := h.svc.ExportVariance(c.Request.Context(), owner(c), id); err != nil {
		h.logger.Error("variance export failed", zap.String("id", id), zap.Error(err))
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "exported"})
}
