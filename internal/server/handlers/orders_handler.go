package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/prepflow/backoffice/internal/service/inventory"
)

// OrdersHandler exposes purchase order commit, listing and reversal.
type OrdersHandler struct {
	svc    *inventory.Service
	logger *zap.Logger
}

// NewOrdersHandler constructs the HTTP handler adapter.
func NewOrdersHandler(svc *inventory.Service, logger *zap.Logger) *OrdersHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &OrdersHandler{svc: svc, logger: logger}
}

type commitOrderRequest struct {
	inventory.OrderHeader
	Lines []inventory.OrderLine `json:"lines" binding:"required"`
}

// Commit processes a multi-line purchase order and updates the ledger.
func (h *OrdersHandler) Commit(c *gin.Context) {
	var req commitOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid order payload", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	orders, err := h.svc.CommitOrder(c.Request.Context(), owner(c), req.OrderHeader, req.Lines)
	if err != nil && len(orders) == 0 {
		h.logger.Error("order commit failed", zap.Error(err))
		respondError(c, err)
		return
	}
	if err != nil {
		// No cross-document rollback: the caller must review. Every line
		// persisting with only the ledger update or propagation failing is a
		// different situation than lines missing from the order.
		if len(orders) == len(req.Lines) {
			h.logger.Error("order committed, cost updates failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "order committed, cost updates incomplete", "orders": orders})
			return
		}
		h.logger.Error("order commit partially failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "order partially committed", "orders": orders})
		return
	}
	c.JSON(http.StatusCreated, orders)
}

// List returns the owner's purchase order lines, newest first.
func (h *OrdersHandler) List(c *gin.Context) {
	orders, err := h.svc.ListOrders(c.Request.Context(), owner(c))
	if err != nil {
		h.logger.Error("failed listing orders", zap.Error(err))
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, orders)
}

// Delete removes one order line and reverses its inventory effect.
func (h *OrdersHandler) Delete(c *gin.Context) {
	if err := h.svc.DeleteOrder(c.Request.Context(), owner(c), c.Param("id")); err != nil {
		h.logger.Error("order reversal failed", zap.String("id", c.Param("id")), zap.Error(err))
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
