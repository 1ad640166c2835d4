package router

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/prepflow/backoffice/internal/server/handlers"
)

// Handlers bundles the route adapters wired by New.
type Handlers struct {
	RawGoods    *handlers.RawGoodsHandler
	Orders      *handlers.OrdersHandler
	BOM         *handlers.BOMHandler
	StockCounts *handlers.StockCountsHandler
	Reports     *handlers.ReportsHandler
}

// New wires the Gin engine with required routes and middlewares.
func New(h Handlers, logger *zap.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(zapLoggerMiddleware(logger))

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	api := r.Group("/api")
	api.Use(ownerMiddleware())
	{
		api.GET("/raw-goods", h.RawGoods.List)
		api.POST("/raw-goods", h.RawGoods.Create)
		api.GET("/raw-goods/:id", h.RawGoods.Get)
		api.PUT("/raw-goods/:id", h.RawGoods.Update)
		api.DELETE("/raw-goods/:id", h.RawGoods.Delete)
		api.GET("/raw-goods/:id/history", h.RawGoods.History)

		api.POST("/purchase-orders", h.Orders.Commit)
		api.GET("/purchase-orders", h.Orders.List)
		api.DELETE("/purchase-orders/:id", h.Orders.Delete)

		api.GET("/bom-assemblies", h.BOM.List)
		api.POST("/bom-assemblies", h.BOM.Create)
		api.GET("/bom-assemblies/:id", h.BOM.Get)
		api.PUT("/bom-assemblies/:id", h.BOM.Update)
		api.DELETE("/bom-assemblies/:id", h.BOM.Delete)
		api.GET("/bom-assemblies/:id/history", h.BOM.History)

		api.POST("/stock-counts", h.StockCounts.Commit)
		api.GET("/stock-counts", h.StockCounts.List)
		api.GET("/stock-counts/:id", h.StockCounts.Get)
		api.DELETE("/stock-counts/:id", h.StockCounts.Delete)

		api.GET("/reports/valuation", h.Reports.Valuation)
		api.GET("/reports/variance/:id", h.Reports.Variance)
		api.POST("/reports/variance/:id/export", h.Reports.ExportVariance)
	}

	if logger != nil {
		logger.Info("router initialized")
	}

	return r
}

// ownerMiddleware scopes every API request to the tenant named by the
// X-Owner-ID header. Authentication happens upstream; the core only needs
// the scoping id.
func ownerMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		ownerID := c.GetHeader("X-Owner-ID")
		if ownerID == "" {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "X-Owner-ID header is required"})
			return
		}
		c.Set(handlers.OwnerKey, ownerID)
		c.Next()
	}
}

func zapLoggerMiddleware(logger *zap.Logger) gin.HandlerFunc {
	if logger == nil {
		logger = zap.NewNop()
	}

	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		logger.Info("request completed",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("duration", time.Since(start)),
			zap.String("client_ip", c.ClientIP()))
	}
}
