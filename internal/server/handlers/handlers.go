// Package handlers adapts the core services to the HTTP surface. Every
// route is owner-scoped through the X-Owner-ID header set by the router
// middleware.
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/prepflow/backoffice/internal/repository/docstore"
	"github.com/prepflow/backoffice/internal/service/inventory"
	"github.com/prepflow/backoffice/internal/service/stockcount"
)

// OwnerKey is the gin context key carrying the tenant id.
const OwnerKey = "owner"

func owner(c *gin.Context) string {
	return c.GetString(OwnerKey)
}

// respondError maps service errors onto HTTP statuses: validation errors
// are user-correctable, not-found is 404, anything else is a store failure.
func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, inventory.ErrDuplicateName),
		errors.Is(err, inventory.ErrDuplicateProduct):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, inventory.ErrEmptyOrder),
		errors.Is(err, stockcount.ErrInvalidCount):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, docstore.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "operation failed"})
	}
}
