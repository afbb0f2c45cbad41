package catalog

import (
	"encoding/json"
	"net/http"
	"strconv"

	"labbooking/internal/middleware"
	"labbooking/internal/pkg/response"
	"labbooking/internal/pkg/validator"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes mounts catalog routes on an authenticated group. Writes
// additionally require the admin role.
func (h *Handler) RegisterRoutes(protected *gin.RouterGroup) {
	admin := middleware.AdminOnly()

	labs := protected.Group("/labs")
	{
		labs.GET("", h.ListLabs)
		labs.POST("", admin, h.CreateLab)
		labs.DELETE("/:id", admin, h.DeleteLab)
		labs.GET("/:id/instruments", h.ListLabInstruments)
	}

	instruments := protected.Group("/instruments")
	{
		instruments.GET("", h.ListInstruments)
		instruments.POST("", admin, h.CreateInstrument)
		instruments.PUT("/:id", admin, h.UpdateInstrument)
		instruments.DELETE("/:id", admin, h.DeleteInstrument)
	}
}

/* ---------- LAB HANDLERS ---------- */

// CreateLab handles POST /api/v1/labs
func (h *Handler) CreateLab(c *gin.Context) {
	var req CreateLabRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithDetails(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body", validator.Fields(err))
		return
	}

	lab, err := h.service.CreateLab(c.Request.Context(), req)
	if err != nil {
		response.FromError(c, err)
		return
	}

	response.Success(c, http.StatusCreated, gin.H{"lab": lab})
}

// ListLabs handles GET /api/v1/labs
func (h *Handler) ListLabs(c *gin.Context) {
	labs, err := h.service.ListLabs(c.Request.Context())
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"labs": labs})
}

// ListLabInstruments handles GET /api/v1/labs/:id/instruments
func (h *Handler) ListLabInstruments(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	items, err := h.service.ListLabInstruments(c.Request.Context(), id)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"instruments": items})
}

// DeleteLab handles DELETE /api/v1/labs/:id
func (h *Handler) DeleteLab(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	if err := h.service.DeleteLab(c.Request.Context(), id); err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"message": "Lab deleted"})
}

/* ---------- INSTRUMENT HANDLERS ---------- */

// CreateInstrument handles POST /api/v1/instruments
func (h *Handler) CreateInstrument(c *gin.Context) {
	var req CreateInstrumentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithDetails(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body", validator.Fields(err))
		return
	}

	inst, err := h.service.CreateInstrument(c.Request.Context(), req)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, gin.H{"instrument": inst})
}

// ListInstruments handles GET /api/v1/instruments
func (h *Handler) ListInstruments(c *gin.Context) {
	items, err := h.service.ListInstruments(c.Request.Context())
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"instruments": items})
}

// UpdateInstrument handles PUT /api/v1/instruments/:id
func (h *Handler) UpdateInstrument(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	var raw map[string]json.RawMessage
	if err := c.ShouldBindJSON(&raw); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}

	patch, err := ParseInstrumentPatch(raw)
	if err != nil {
		response.FromError(c, err)
		return
	}

	inst, err := h.service.UpdateInstrument(c.Request.Context(), id, patch)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"instrument": inst})
}

// DeleteInstrument handles DELETE /api/v1/instruments/:id
func (h *Handler) DeleteInstrument(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	if err := h.service.DeleteInstrument(c.Request.Context(), id); err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"message": "Instrument deleted"})
}

func parseID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid id")
		return 0, false
	}
	return id, true
}
