package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/prepflow/backoffice/internal/service/bom"
)

// BOMHandler exposes bill-of-materials assemblies over HTTP.
type BOMHandler struct {
	svc    *bom.Service
	logger *zap.Logger
}

// NewBOMHandler constructs the HTTP handler adapter.
func NewBOMHandler(svc *bom.Service, logger *zap.Logger) *BOMHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &BOMHandler{svc: svc, logger: logger}
}

// List returns the owner's assemblies.
func (h *BOMHandler) List(c *gin.Context) {
	assemblies, err := h.svc.ListAssemblies(c.Request.Context(), owner(c))
	if err != nil {
		h.logger.Error("failed listing assemblies", zap.Error(err))
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, assemblies)
}

// Get returns one assembly.
func (h *BOMHandler) Get(c *gin.Context) {
	asm, err := h.svc.GetAssembly(c.Request.Context(), owner(c), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, asm)
}

// Create adds an assembly with derived costing.
func (h *BOMHandler) Create(c *gin.Context) {
	var input bom.AssemblyInput
	if err := c.ShouldBindJSON(&input); err != nil {
		h.logger.Warn("invalid assembly payload", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	asm, err := h.svc.CreateAssembly(c.Request.Context(), owner(c), input)
	if err != nil {
		h.logger.Error("failed creating assembly", zap.String("name", input.FinishedProductName), zap.Error(err))
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, asm)
}

// Update overwrites an assembly after snapshotting its prior state.
func (h *BOMHandler) Update(c *gin.Context) {
	var input bom.AssemblyInput
	if err := c.ShouldBindJSON(&input); err != nil {
		h.logger.Warn("invalid assembly payload", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	asm, err := h.svc.UpdateAssembly(c.Request.Context(), owner(c), c.Param("id"), input)
	if err != nil {
		h.logger.Error("failed updating assembly", zap.String("id", c.Param("id")), zap.Error(err))
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, asm)
}

// Delete removes an assembly; its history rows persist.
func (h *BOMHandler) Delete(c *gin.Context) {
	if err := h.svc.DeleteAssembly(c.Request.Context(), owner(c), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// History returns the assembly's audit snapshots for trend review.
func (h *BOMHandler) History(c *gin.Context) {
	rows, err := h.svc.History(c.Request.Context(), owner(c), c.Param("id"))
	if err != nil {
		h.logger.Error("failed loading assembly history", zap.Error(err))
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, rows)
}
