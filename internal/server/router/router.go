package router

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/mamadbah2/dairycoop/internal/server/handlers"
)

// RequestIDHeader carries the request ID in both directions.
const RequestIDHeader = "X-Request-ID"

// Handlers groups the HTTP adapters mounted on the engine.
type Handlers struct {
	Dairy   *handlers.DairyHandler
	Reports *handlers.ReportHandler
	Webhook *handlers.WebhookHandler
}

// New wires the Gin engine with required routes and middlewares.
func New(h Handlers, logger *zap.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(requestIDMiddleware())
	r.Use(zapLoggerMiddleware(logger))

	milkIn := r.Group("/milk-in")
	milkIn.POST("", h.Dairy.CreateMilkIn)
	milkIn.GET("", h.Dairy.ListMilkIn)
	milkIn.GET("/:id", h.Dairy.GetMilkIn)
	milkIn.DELETE("/:id", h.Dairy.DeleteMilkIn)

	milkOut := r.Group("/milk-out")
	milkOut.POST("", h.Dairy.CreateSale)
	milkOut.GET("", h.Dairy.ListSales)
	milkOut.GET("/:id", h.Dairy.GetSale)
	milkOut.DELETE("/:id", h.Dairy.DeleteSale)

	spoilt := r.Group("/milk-spoilt")
	spoilt.POST("", h.Dairy.CreateSpoilage)
	spoilt.GET("", h.Dairy.ListSpoilage)
	spoilt.GET("/:id", h.Dairy.GetSpoilage)
	spoilt.DELETE("/:id", h.Dairy.DeleteSpoilage)

	r.GET("/customers", h.Dairy.ListCustomers)

	cows := r.Group("/cows")
	cows.POST("", h.Dairy.CreateCow)
	cows.GET("", h.Dairy.ListCows)
	cows.GET("/milk-eligibility", h.Dairy.BulkEligibility)
	cows.GET("/:cowId", h.Dairy.GetCow)
	cows.PUT("/:cowId", h.Dairy.UpdateCow)
	cows.POST("/:cowId/archive", h.Dairy.ArchiveCow)
	cows.GET("/:cowId/milk-eligibility", h.Dairy.CowEligibility)
	cows.GET("/:cowId/health-details", h.Dairy.HealthDetails)

	members := r.Group("/members")
	members.POST("", h.Dairy.CreateMember)
	members.GET("", h.Dairy.ListMembers)
	members.GET("/:memberId", h.Dairy.GetMember)
	members.POST("/:memberId/archive", h.Dairy.ArchiveMember)

	r.GET("/inventory", h.Reports.Inventory)
	summary := r.Group("/summary")
	summary.GET("/stock", h.Reports.StockSummary)
	summary.GET("/earnings", h.Reports.EarningsSummary)
	summary.GET("/cows", h.Reports.CowSummary)
	summary.GET("/members", h.Reports.MemberSummary)

	if h.Webhook != nil {
		r.GET("/webhook", h.Webhook.Verify)
		r.POST("/webhook", h.Webhook.Receive)
		r.POST("/send-message", h.Webhook.SendMessage)
	}

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	if logger != nil {
		logger.Info("router initialized", zap.Int("routes", len(r.Routes())))
	}

	return r
}

// requestIDMiddleware reuses an incoming X-Request-ID or assigns a new UUID.
func requestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(RequestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(handlers.RequestIDKey, id)
		c.Header(RequestIDHeader, id)
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

		status := c.Writer.Status()
		fields := []zap.Field{
			zap.String("request_id", handlers.RequestID(c)),
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", status),
			zap.Duration("duration", time.Since(start)),
			zap.String("client_ip", c.ClientIP()),
		}

		switch {
		case status >= 500:
			logger.Error("request completed", fields...)
		case status >= 400:
			logger.Warn("request completed", fields...)
		default:
			logger.Info("request completed", fields...)
		}
	}
}
