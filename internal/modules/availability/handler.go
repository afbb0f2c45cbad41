package availability

import (
	"net/http"

	"labbooking/internal/pkg/response"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(protected *gin.RouterGroup) {
	protected.GET("/availability", h.GetAvailability)
}

type availabilityQuery struct {
	LabName        string `form:"lab_name" binding:"required"`
	InstrumentName string `form:"instrument_name" binding:"required"`
}

// GetAvailability handles GET /api/v1/availability?lab_name=&instrument_name=
func (h *Handler) GetAvailability(c *gin.Context) {
	var q availabilityQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "lab_name and instrument_name are required")
		return
	}

	slots, err := h.service.GetAvailability(c.Request.Context(), q.LabName, q.InstrumentName)
	if err != nil {
		response.FromError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"lab_name":        q.LabName,
		"instrument_name": q.InstrumentName,
		"slots":           slots,
	})
}
