package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/prepflow/backoffice/internal/service/inventory"
)

// RawGoodsHandler exposes the raw-good ledger over HTTP.
type RawGoodsHandler struct {
	svc    *inventory.Service
	logger *zap.Logger
}

// NewRawGoodsHandler constructs the HTTP handler adapter.
func NewRawGoodsHandler(svc *inventory.Service, logger *zap.Logger) *RawGoodsHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RawGoodsHandler{svc: svc, logger: logger}
}

// List returns the owner's raw goods.
func (h *RawGoodsHandler) List(c *gin.Context) {
	goods, err := h.svc.ListRawGoods(c.Request.Context(), owner(c))
	if err != nil {
		h.logger.Error("failed listing raw goods", zap.Error(err))
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, goods)
}

// Get returns one raw good.
func (h *RawGoodsHandler) Get(c *gin.Context) {
	good, err := h.svc.GetRawGood(c.Request.Context(), owner(c), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, good)
}

// Create adds a raw good, rejecting duplicate names.
func (h *RawGoodsHandler) Create(c *gin.Context) {
	var input inventory.RawGoodInput
	if err := c.ShouldBindJSON(&input); err != nil {
		h.logger.Warn("invalid raw good payload", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	good, err := h.svc.CreateRawGood(c.Request.Context(), owner(c), input)
	if err != nil {
		h.logger.Error("failed creating raw good", zap.String("name", input.Name), zap.Error(err))
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, good)
}

// Update edits a raw good; a cost change triggers propagation.
func (h *RawGoodsHandler) Update(c *gin.Context) {
	var input inventory.RawGoodInput
	if err := c.ShouldBindJSON(&input); err != nil {
		h.logger.Warn("invalid raw good payload", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	good, err := h.svc.UpdateRawGood(c.Request.Context(), owner(c), c.Param("id"), input)
	if err != nil {
		h.logger.Error("failed updating raw good", zap.String("id", c.Param("id")), zap.Error(err))
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, good)
}

// Delete removes a raw good; its history rows persist.
func (h *RawGoodsHandler) Delete(c *gin.Context) {
	if err := h.svc.DeleteRawGood(c.Request.Context(), owner(c), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// History returns the good's audit snapshots for trend review.
func (h *RawGoodsHandler) History(c *gin.Context) {
	rows, err := h.svc.History(c.Request.Context(), owner(c), c.Param("id"))
	if err != nil {
		h.logger.Error("failed loading raw good history", zap.Error(err))
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, rows)
}
