package http

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/yanqian/property-valuator/internal/domain/nqs"
	"github.com/yanqian/property-valuator/internal/domain/valuation"
	apperrors "github.com/yanqian/property-valuator/pkg/errors"
)

// Handler wires the HTTP transport to domain services.
type Handler struct {
	valuationSvc valuation.Service
	nqsSvc       nqs.Service
	logger       *slog.Logger
}

// NewHandler constructs the root HTTP handler.
func NewHandler(valuationSvc valuation.Service, nqsSvc nqs.Service, logger *slog.Logger) *Handler {
	return &Handler{
		valuationSvc: valuationSvc,
		nqsSvc:       nqsSvc,
		logger:       logger.With("component", "http.handler"),
	}
}

// scoreRequest is the body of the standalone neighborhood score endpoint.
type scoreRequest struct {
	City     string         `json:"city" binding:"required"`
	District string         `json:"district"`
	Lat      *float64       `json:"lat" binding:"omitempty,gte=-90,lte=90"`
	Lon      *float64       `json:"lon" binding:"omitempty,gte=-180,lte=180"`
	Extras   map[string]any `json:"extras"`
}

// Evaluate prices the posted attribute map.
func (h *Handler) Evaluate(c *gin.Context) {
	var attrs valuation.Attributes
	if err := c.ShouldBindJSON(&attrs); err != nil {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", errMessage(err), err))
		return
	}

	result := h.valuationSvc.Evaluate(c.Request.Context(), attrs)
	if result.Invalid() {
		abortWithError(c, apperrors.Wrap(apperrors.CodeInvalidInput, result.Message, nil))
		return
	}

	c.JSON(http.StatusOK, result)
}

// Stats summarizes the recorded evaluation history.
func (h *Handler) Stats(c *gin.Context) {
	stats, err := h.valuationSvc.Stats(c.Request.Context())
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

// ScoreNeighborhood returns the neighborhood quality score for a location.
func (h *Handler) ScoreNeighborhood(c *gin.Context) {
	var req scoreRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", errMessage(err), err))
		return
	}
	if (req.Lat == nil) != (req.Lon == nil) {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", "lat and lon must be provided together", nil))
		return
	}

	domainReq := nqs.Request{
		City:     strings.TrimSpace(req.City),
		District: strings.TrimSpace(req.District),
		Extras:   req.Extras,
	}
	if req.Lat != nil {
		domainReq.Coordinates = &nqs.Coordinates{Lat: *req.Lat, Lon: *req.Lon}
	}

	c.JSON(http.StatusOK, h.nqsSvc.Score(c.Request.Context(), domainReq))
}

// Health reports liveness.
func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func errMessage(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
