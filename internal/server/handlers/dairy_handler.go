package handlers

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mamadbah2/dairycoop/internal/domain/models"
	"github.com/mamadbah2/dairycoop/internal/repository"
	"github.com/mamadbah2/dairycoop/internal/service/dairy"
)

// DairyService is the use-case surface served over HTTP.
type DairyService interface {
	RecordMilkIn(ctx context.Context, in dairy.MilkInInput) (*models.MilkInEntry, error)
	GetMilkIn(ctx context.Context, entryID string) (*models.MilkInEntry, error)
	ListMilkIn(ctx context.Context, filter repository.MilkInFilter) ([]models.MilkInEntry, error)
	DeleteMilkIn(ctx context.Context, entryID string) error

	RecordSale(ctx context.Context, in dairy.SaleInput) (*models.MilkOutEntry, error)
	GetSale(ctx context.Context, saleID string) (*models.MilkOutEntry, error)
	ListSales(ctx context.Context, rng repository.DateRange) ([]models.MilkOutEntry, error)
	DeleteSale(ctx context.Context, saleID string) error
	ListCustomers(ctx context.Context) ([]models.Customer, error)

	RecordSpoilage(ctx context.Context, in dairy.SpoilageInput) (*models.MilkSpoiltEntry, error)
	GetSpoilage(ctx context.Context, spoiltID string) (*models.MilkSpoiltEntry, error)
	ListSpoilage(ctx context.Context, rng repository.DateRange) ([]models.MilkSpoiltEntry, error)
	DeleteSpoilage(ctx context.Context, spoiltID string) error

	AddCow(ctx context.Context, in dairy.CowInput) (*models.Cow, error)
	UpdateCow(ctx context.Context, cowID string, in dairy.CowInput) (*models.Cow, error)
	GetCow(ctx context.Context, cowID string) (*models.CowWithStats, error)
	ListCows(ctx context.Context, filter repository.CowFilter) ([]models.CowWithStats, error)
	ArchiveCow(ctx context.Context, cowID string, in dairy.ArchiveInput) (*models.Cow, error)

	AddMember(ctx context.Context, in dairy.MemberInput) (*models.Member, error)
	GetMember(ctx context.Context, memberID string) (*models.MemberWithStats, error)
	ListMembers(ctx context.Context, activeOnly bool) ([]models.MemberWithStats, error)
	ArchiveMember(ctx context.Context, memberID string, in dairy.ArchiveInput) (*models.Member, int, error)

	CheckEligibility(ctx context.Context, cowID, date string) (*models.CowEligibility, error)
	BulkEligibility(ctx context.Context, filter repository.CowFilter) (*models.BulkEligibility, error)
	HealthDetails(ctx context.Context, cowID string) (*models.CowHealthDetails, error)
}

// DairyHandler exposes milk, herd and eligibility endpoints.
type DairyHandler struct {
	svc    DairyService
	logger *zap.Logger
}

// NewDairyHandler constructs the HTTP handler adapter.
func NewDairyHandler(svc DairyService, logger *zap.Logger) *DairyHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DairyHandler{svc: svc, logger: logger}
}

// ArchiveMemberResponse reports the member and how many cows the archive cascaded to.
type ArchiveMemberResponse struct {
	Member       *models.Member `json:"member"`
	ArchivedCows int            `json:"archivedCows"`
}

// ===============================
// MILK IN
// ===============================

func (h *DairyHandler) CreateMilkIn(c *gin.Context) {
	var in dairy.MilkInInput
	if !h.bind(c, &in) {
		return
	}
	entry, err := h.svc.RecordMilkIn(c.Request.Context(), in)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, entry)
}

func (h *DairyHandler) ListMilkIn(c *gin.Context) {
	rng, ok := h.dateRange(c)
	if !ok {
		return
	}
	entries, err := h.svc.ListMilkIn(c.Request.Context(), repository.MilkInFilter{CowID: c.Query("cowId"), Range: rng})
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, entries)
}

func (h *DairyHandler) GetMilkIn(c *gin.Context) {
	entry, err := h.svc.GetMilkIn(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, entry)
}

func (h *DairyHandler) DeleteMilkIn(c *gin.Context) {
	if err := h.svc.DeleteMilkIn(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ===============================
// MILK OUT
// ===============================

func (h *DairyHandler) CreateSale(c *gin.Context) {
	var in dairy.SaleInput
	if !h.bind(c, &in) {
		return
	}
	entry, err := h.svc.RecordSale(c.Request.Context(), in)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, entry)
}

func (h *DairyHandler) ListSales(c *gin.Context) {
	rng, ok := h.dateRange(c)
	if !ok {
		return
	}
	entries, err := h.svc.ListSales(c.Request.Context(), rng)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, entries)
}

func (h *DairyHandler) GetSale(c *gin.Context) {
	entry, err := h.svc.GetSale(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, entry)
}

func (h *DairyHandler) DeleteSale(c *gin.Context) {
	if err := h.svc.DeleteSale(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *DairyHandler) ListCustomers(c *gin.Context) {
	customers, err := h.svc.ListCustomers(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, customers)
}

// ===============================
// SPOILAGE
// ===============================

func (h *DairyHandler) CreateSpoilage(c *gin.Context) {
	var in dairy.SpoilageInput
	if !h.bind(c, &in) {
		return
	}
	entry, err := h.svc.RecordSpoilage(c.Request.Context(), in)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, entry)
}

func (h *DairyHandler) ListSpoilage(c *gin.Context) {
	rng, ok := h.dateRange(c)
	if !ok {
		return
	}
	entries, err := h.svc.ListSpoilage(c.Request.Context(), rng)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, entries)
}

func (h *DairyHandler) GetSpoilage(c *gin.Context) {
	entry, err := h.svc.GetSpoilage(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, entry)
}

func (h *DairyHandler) DeleteSpoilage(c *gin.Context) {
	if err := h.svc.DeleteSpoilage(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ===============================
// COWS
// ===============================

func (h *DairyHandler) CreateCow(c *gin.Context) {
	var in dairy.CowInput
	if !h.bind(c, &in) {
		return
	}
	cow, err := h.svc.AddCow(c.Request.Context(), in)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, cow)
}

func (h *DairyHandler) UpdateCow(c *gin.Context) {
	var in dairy.CowInput
	if !h.bind(c, &in) {
		return
	}
	cow, err := h.svc.UpdateCow(c.Request.Context(), c.Param("cowId"), in)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, cow)
}

// ListCows lists active cows unless activeOnly=false is given.
func (h *DairyHandler) ListCows(c *gin.Context) {
	filter, ok := h.cowFilter(c)
	if !ok {
		return
	}
	cows, err := h.svc.ListCows(c.Request.Context(), filter)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, cows)
}

func (h *DairyHandler) GetCow(c *gin.Context) {
	cow, err := h.svc.GetCow(c.Request.Context(), c.Param("cowId"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, cow)
}

func (h *DairyHandler) ArchiveCow(c *gin.Context) {
	var in dairy.ArchiveInput
	if !h.bind(c, &in) {
		return
	}
	cow, err := h.svc.ArchiveCow(c.Request.Context(), c.Param("cowId"), in)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, cow)
}

func (h *DairyHandler) CowEligibility(c *gin.Context) {
	result, err := h.svc.CheckEligibility(c.Request.Context(), c.Param("cowId"), c.Query("date"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *DairyHandler) BulkEligibility(c *gin.Context) {
	filter, ok := h.cowFilter(c)
	if !ok {
		return
	}
	result, err := h.svc.BulkEligibility(c.Request.Context(), filter)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *DairyHandler) HealthDetails(c *gin.Context) {
	details, err := h.svc.HealthDetails(c.Request.Context(), c.Param("cowId"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, details)
}

// ===============================
// MEMBERS
// ===============================

func (h *DairyHandler) CreateMember(c *gin.Context) {
	var in dairy.MemberInput
	if !h.bind(c, &in) {
		return
	}
	member, err := h.svc.AddMember(c.Request.Context(), in)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, member)
}

func (h *DairyHandler) ListMembers(c *gin.Context) {
	activeOnly, ok := h.boolQuery(c, "activeOnly", false)
	if !ok {
		return
	}
	members, err := h.svc.ListMembers(c.Request.Context(), activeOnly)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, members)
}

func (h *DairyHandler) GetMember(c *gin.Context) {
	member, err := h.svc.GetMember(c.Request.Context(), c.Param("memberId"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, member)
}

func (h *DairyHandler) ArchiveMember(c *gin.Context) {
	var in dairy.ArchiveInput
	if !h.bind(c, &in) {
		return
	}
	member, archived, err := h.svc.ArchiveMember(c.Request.Context(), c.Param("memberId"), in)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, ArchiveMemberResponse{Member: member, ArchivedCows: archived})
}

func (h *DairyHandler) bind(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		h.logger.Warn("invalid request body", zap.String("path", c.FullPath()), zap.Error(err))
		badRequest(c, "invalid request body")
		return false
	}
	return true
}

func (h *DairyHandler) dateRange(c *gin.Context) (repository.DateRange, bool) {
	from, _, err := queryDate(c, "from")
	if err != nil {
		respondError(c, h.logger, err)
		return repository.DateRange{}, false
	}
	to, _, err := queryDate(c, "to")
	if err != nil {
		respondError(c, h.logger, err)
		return repository.DateRange{}, false
	}
	if !from.IsZero() && !to.IsZero() && to.Before(from) {
		badRequest(c, "to must not be before from")
		return repository.DateRange{}, false
	}
	return repository.DateRange{From: from, To: to}, true
}

func (h *DairyHandler) cowFilter(c *gin.Context) (repository.CowFilter, bool) {
	activeOnly, ok := h.boolQuery(c, "activeOnly", true)
	if !ok {
		return repository.CowFilter{}, false
	}
	return repository.CowFilter{OwnerID: c.Query("ownerId"), ActiveOnly: activeOnly}, true
}

func (h *DairyHandler) boolQuery(c *gin.Context, key string, fallback bool) (bool, bool) {
	raw := c.Query(key)
	if raw == "" {
		return fallback, true
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		badRequest(c, key+" must be true or false")
		return false, false
	}
	return v, true
}
