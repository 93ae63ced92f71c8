package http

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"fleet-alert-service/internal/http/middleware"
	"fleet-alert-service/internal/model"
	"fleet-alert-service/internal/repository"
	"fleet-alert-service/internal/service"
)

type Handler struct {
	registry  *service.GeofenceRegistry
	detector  *service.Detector
	alerts    *service.AlertManager
	eventRepo *repository.EventRepository
	log       zerolog.Logger
}

// NewHandler wires the API surface. eventRepo may be nil when the archive is
// disabled; the history endpoint then serves an empty list.
func NewHandler(
	registry *service.GeofenceRegistry,
	detector *service.Detector,
	alerts *service.AlertManager,
	eventRepo *repository.EventRepository,
	log zerolog.Logger,
) *Handler {
	return &Handler{
		registry:  registry,
		detector:  detector,
		alerts:    alerts,
		eventRepo: eventRepo,
		log:       log,
	}
}

func (h *Handler) Register(r *gin.Engine, authMiddleware gin.HandlerFunc) {
	protected := r.Group("/")
	protected.Use(authMiddleware)

	telemetry := protected.Group("/telemetry")
	{
		telemetry.POST("/positions", h.ingestPosition)
	}

	alerts := protected.Group("/alerts")
	{
		alerts.GET("", h.listAlerts)
		alerts.GET("/unacknowledged", h.listUnacknowledged)
		alerts.GET("/history", h.listEventHistory)
		alerts.PUT("/:id/acknowledge", h.acknowledgeAlert)
		alerts.DELETE("", h.clearAlerts)
	}

	geofences := protected.Group("/geofences")
	{
		geofences.GET("", h.listGeofences)
		geofences.POST("", h.setGeofences)
	}

	protected.GET("/vehicles", h.listVehicles)
}

type positionRequest struct {
	VehicleID string     `json:"vehicle_id" binding:"required"`
	Position  [2]float64 `json:"position"`
	Timestamp *int64     `json:"timestamp"`
}

func (h *Handler) ingestPosition(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, errorResponse("missing principal"))
		return
	}
	if !principal.CanIngest() {
		c.JSON(http.StatusForbidden, errorResponse("permission denied"))
		return
	}

	var req positionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse(err.Error()))
		return
	}

	ts := time.Now()
	if req.Timestamp != nil {
		ts = time.Unix(*req.Timestamp, 0)
	}

	events, err := h.detector.DetectVehicleEvents(req.VehicleID, req.Position, ts)
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse(err.Error()))
		return
	}

	h.alerts.Ingest(events)
	if h.eventRepo != nil && len(events) > 0 {
		if err := h.eventRepo.Store(c.Request.Context(), events); err != nil {
			h.log.Error().Err(err).Msg("failed to archive geofence events")
		}
	}

	c.JSON(http.StatusOK, successResponse(events))
}

func (h *Handler) listAlerts(c *gin.Context) {
	c.JSON(http.StatusOK, successResponse(h.alerts.List()))
}

func (h *Handler) listUnacknowledged(c *gin.Context) {
	c.JSON(http.StatusOK, successResponse(h.alerts.ListUnacknowledged()))
}

func (h *Handler) acknowledgeAlert(c *gin.Context) {
	id := strings.TrimSpace(c.Param("id"))
	if id == "" {
		c.JSON(http.StatusBadRequest, errorResponse("invalid alert id"))
		return
	}

	// unknown ids are a no-op: the alert may have been cleared already
	h.alerts.Acknowledge(id)
	c.JSON(http.StatusOK, successResponse(gin.H{"message": "alert acknowledged"}))
}

func (h *Handler) clearAlerts(c *gin.Context) {
	h.alerts.ClearAll()
	c.Status(http.StatusNoContent)
}

func (h *Handler) listEventHistory(c *gin.Context) {
	if h.eventRepo == nil {
		c.JSON(http.StatusOK, successResponse([]model.EventRecord{}))
		return
	}

	filter := repository.EventListFilter{}

	if vehicleID := strings.TrimSpace(c.Query("vehicle_id")); vehicleID != "" {
		filter.VehicleID = &vehicleID
	}
	if geofenceID := strings.TrimSpace(c.Query("geofence_id")); geofenceID != "" {
		filter.GeofenceID = &geofenceID
	}
	if raw := c.Query("from"); raw != "" {
		t, err := parseTime(raw)
		if err == nil {
			filter.From = &t
		}
	}
	if raw := c.Query("to"); raw != "" {
		t, err := parseTime(raw)
		if err == nil {
			filter.To = &t
		}
	}
	if raw := c.Query("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil {
			filter.Limit = n
		}
	}

	records, err := h.eventRepo.List(c.Request.Context(), filter)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, successResponse(records))
}

func (h *Handler) listGeofences(c *gin.Context) {
	c.JSON(http.StatusOK, successResponse(h.registry.Active()))
}

func (h *Handler) listVehicles(c *gin.Context) {
	c.JSON(http.StatusOK, successResponse(h.detector.Vehicles()))
}

func (h *Handler) setGeofences(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, errorResponse("missing principal"))
		return
	}
	if !principal.IsAdmin() && !principal.IsDispatcher() {
		c.JSON(http.StatusForbidden, errorResponse("permission denied"))
		return
	}

	var req []model.Geofence
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse(err.Error()))
		return
	}

	warnings := h.registry.SetGeofences(req)
	messages := make([]string, 0, len(warnings))
	for _, w := range warnings {
		messages = append(messages, w.Error())
	}

	c.JSON(http.StatusOK, successResponse(gin.H{
		"registered": len(req) - len(warnings),
		"dropped":    messages,
	}))
}

func (h *Handler) handleError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrPermissionDenied):
		c.JSON(http.StatusForbidden, errorResponse(err.Error()))
	case errors.Is(err, service.ErrNotFound):
		c.JSON(http.StatusNotFound, errorResponse(err.Error()))
	case errors.Is(err, service.ErrInvalidInput):
		c.JSON(http.StatusBadRequest, errorResponse(err.Error()))
	case errors.Is(err, service.ErrConflict):
		c.JSON(http.StatusConflict, errorResponse(err.Error()))
	default:
		h.log.Error().Err(err).Msg("handler error")
		c.JSON(http.StatusInternalServerError, errorResponse("internal error"))
	}
}

func successResponse(data interface{}) gin.H {
	return gin.H{
		"data": data,
	}
}

func errorResponse(message string) gin.H {
	return gin.H{
		"error": message,
	}
}

func parseTime(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	layouts := []string{
		time.RFC3339,
		"2006-01-02",
		"2006-01-02T15:04:05",
	}
	for _, layout := range layouts {
		if parsed, err := time.Parse(layout, raw); err == nil {
			return parsed, nil
		}
	}
	return time.Time{}, errors.New("invalid time format")
}
