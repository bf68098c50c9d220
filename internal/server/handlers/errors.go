package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mamadbah2/dairycoop/internal/domain/calendar"
	"github.com/mamadbah2/dairycoop/internal/domain/models"
)

// NotEligibleResponse is the 400 body for a milk-in blocked by health rules.
type NotEligibleResponse struct {
	Error        string   `json:"error"`
	CowID        string   `json:"cowId"`
	CowName      string   `json:"cowName"`
	HealthStatus string   `json:"healthStatus"`
	BlockedUntil *string  `json:"blockedUntil"`
	Suggestions  []string `json:"suggestions"`
}

var notEligibleSuggestions = []string{
	"Wait until the health restriction period ends",
	"Select another cow",
}

// respondError maps domain errors onto status codes. Anything unrecognised is a 500 and is
// logged with the request ID; its message is not exposed.
func respondError(c *gin.Context, logger *zap.Logger, err error) {
	var ineligible *models.IneligibleError

	switch {
	case errors.As(err, &ineligible):
		c.JSON(http.StatusBadRequest, NotEligibleResponse{
			Error:        ineligible.Error(),
			CowID:        ineligible.CowID,
			CowName:      ineligible.CowName,
			HealthStatus: string(ineligible.HealthStatus),
			BlockedUntil: calendar.FormatPtr(ineligible.BlockedUntil()),
			Suggestions:  notEligibleSuggestions,
		})
	case errors.Is(err, models.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, models.ErrDuplicateID):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case models.IsClientError(err):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		logger.Error("request failed",
			zap.String("request_id", RequestID(c)),
			zap.String("path", c.FullPath()),
			zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}

func badRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, gin.H{"error": message})
}

// RequestIDKey is the gin context key holding the request ID.
const RequestIDKey = "request_id"

// RequestID returns the ID assigned by the router middleware, if any.
func RequestID(c *gin.Context) string {
	if v, ok := c.Get(RequestIDKey); ok {
		if id, ok := v.(string); ok {
			return id
		}
	}
	return ""
}

// queryDate reads an optional YYYY-MM-DD query parameter.
func queryDate(c *gin.Context, key string) (time.Time, bool, error) {
	raw := c.Query(key)
	if raw == "" {
		return time.Time{}, false, nil
	}
	d, err := calendar.Parse(raw)
	if err != nil {
		return time.Time{}, false, models.NewValidationError(key, "must be a date in YYYY-MM-DD format")
	}
	return d, true, nil
}
