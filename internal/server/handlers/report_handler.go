package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mamadbah2/dairycoop/internal/domain/models"
)

// ReportingService computes the summary views.
type ReportingService interface {
	StockSummary(ctx context.Context, date time.Time) (models.StockSummary, error)
	EarningsSummary(ctx context.Context, date time.Time) (models.EarningsSummary, error)
	CowSummary(ctx context.Context) (models.CowSummary, error)
	MemberSummary(ctx context.Context) (models.MemberSummary, error)
}

// InventoryService reports the ledger totals.
type InventoryService interface {
	Totals(ctx context.Context) (models.InventoryTotals, error)
}

// Clock answers what today's date is for the cooperative.
type Clock interface {
	Today() time.Time
}

// ReportHandler exposes inventory and summary endpoints.
type ReportHandler struct {
	reports   ReportingService
	inventory InventoryService
	clock     Clock
	logger    *zap.Logger
}

// NewReportHandler constructs the HTTP handler adapter.
func NewReportHandler(reports ReportingService, inventory InventoryService, clock Clock, logger *zap.Logger) *ReportHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReportHandler{reports: reports, inventory: inventory, clock: clock, logger: logger}
}

func (h *ReportHandler) Inventory(c *gin.Context) {
	totals, err := h.inventory.Totals(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, totals)
}

// StockSummary reports stock and period sales around ?date=, today by default.
func (h *ReportHandler) StockSummary(c *gin.Context) {
	date, ok := h.referenceDate(c)
	if !ok {
		return
	}
	summary, err := h.reports.StockSummary(c.Request.Context(), date)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}

func (h *ReportHandler) EarningsSummary(c *gin.Context) {
	date, ok := h.referenceDate(c)
	if !ok {
		return
	}
	summary, err := h.reports.EarningsSummary(c.Request.Context(), date)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}

func (h *ReportHandler) CowSummary(c *gin.Context) {
	summary, err := h.reports.CowSummary(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}

func (h *ReportHandler) MemberSummary(c *gin.Context) {
	summary, err := h.reports.MemberSummary(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}

func (h *ReportHandler) referenceDate(c *gin.Context) (time.Time, bool) {
	date, set, err := queryDate(c, "date")
	if err != nil {
		respondError(c, h.logger, err)
		return time.Time{}, false
	}
	if !set {
		date = h.clock.Today()
	}
	return date, true
}
