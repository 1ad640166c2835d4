package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/prepflow/backoffice/internal/service/stockcount"
)

// StockCountsHandler exposes stock count commit and review.
type StockCountsHandler struct {
	svc    *stockcount.Service
	logger *zap.Logger
}

// NewStockCountsHandler constructs the HTTP handler adapter.
func NewStockCountsHandler(svc *stockcount.Service, logger *zap.Logger) *StockCountsHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StockCountsHandler{svc: svc, logger: logger}
}

type commitCountRequest struct {
	// Counts maps raw good id to the counted quantity as typed, in the
	// good's display unit. Values stay strings so a bad entry rejects the
	// whole commit instead of silently becoming zero.
	Counts map[string]string `json:"counts" binding:"required"`
}

// Commit records a full physical count and overwrites quantities on hand.
func (h *StockCountsHandler) Commit(c *gin.Context) {
	var req commitCountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid stock count payload", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	entry, err := h.svc.Commit(c.Request.Context(), owner(c), req.Counts)
	if err != nil {
		h.logger.Error("stock count commit failed", zap.Error(err))
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, entry)
}

// List returns the owner's stock counts, newest first.
func (h *StockCountsHandler) List(c *gin.Context) {
	entries, err := h.svc.List(c.Request.Context(), owner(c))
	if err != nil {
		h.logger.Error("failed listing stock counts", zap.Error(err))
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, entries)
}

// Get returns one stock count.
func (h *StockCountsHandler) Get(c *gin.Context) {
	entry, err := h.svc.Get(c.Request.Context(), owner(c), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, entry)
}

// Delete removes a stock count record without reversing its overwrite.
func (h *StockCountsHandler) Delete(c *gin.Context) {
	if err := h.svc.Delete(c.Request.Context(), owner(c), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
