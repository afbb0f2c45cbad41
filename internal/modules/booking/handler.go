package booking

import (
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

func (h *Handler) RegisterRoutes(protected *gin.RouterGroup) {
	bookings := protected.Group("/bookings")
	{
		bookings.POST("", h.CreateBooking)
		bookings.GET("/me", h.ListMine)
		bookings.GET("", h.ListAll)
	}

	approving := protected.Group("/approving")
	{
		approving.GET("/to-approve", h.ListToApprove)
		approving.GET("/to_approve", h.ListToApprove)
		approving.PUT("/:id/decision", h.Decide)
	}
}

// CreateBooking handles POST /api/v1/bookings
func (h *Handler) CreateBooking(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, "UNAUTHORIZED", "Authentication required")
		return
	}

	var req CreateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithDetails(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body", validator.Fields(err))
		return
	}

	b, err := h.service.CreateBooking(c.Request.Context(), user, req)
	if err != nil {
		response.FromError(c, err)
		return
	}

	response.Success(c, http.StatusCreated, gin.H{"booking": b})
}

// ListMine handles GET /api/v1/bookings/me?lab_name=&instrument_name=&limit=&offset=
func (h *Handler) ListMine(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, "UNAUTHORIZED", "Authentication required")
		return
	}

	page, ok := parsePage(c)
	if !ok {
		return
	}

	items, err := h.service.ListMine(c.Request.Context(), user, MineFilter{
		LabName:        c.Query("lab_name"),
		InstrumentName: c.Query("instrument_name"),
	}, page)
	if err != nil {
		response.FromError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"bookings": items})
}

// ListAll handles GET /api/v1/bookings?user_id=&instrument_id=&limit=&offset=
func (h *Handler) ListAll(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, "UNAUTHORIZED", "Authentication required")
		return
	}

	// Role gate runs before query parsing so non-admins always see 403.
	if !user.IsAdmin() {
		response.FromError(c, ErrAdminOnly)
		return
	}

	page, ok := parsePage(c)
	if !ok {
		return
	}

	var f AllFilter
	if f.UserID, ok = queryID(c, "user_id"); !ok {
		return
	}
	if f.InstrumentID, ok = queryID(c, "instrument_id"); !ok {
		return
	}

	items, err := h.service.ListAll(c.Request.Context(), user, f, page)
	if err != nil {
		response.FromError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"bookings": items})
}

// ListToApprove handles GET /api/v1/approving/to-approve
func (h *Handler) ListToApprove(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, "UNAUTHORIZED", "Authentication required")
		return
	}

	items, err := h.service.ListToApprove(c.Request.Context(), user)
	if err != nil {
		response.FromError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"bookings": items})
}

// Decide handles PUT /api/v1/approving/:id/decision
func (h *Handler) Decide(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, "UNAUTHORIZED", "Authentication required")
		return
	}

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid booking id")
		return
	}

	// A malformed body leaves Status empty; the service reports it as a
	// validation error only after the existence and approver checks.
	var req DecisionRequest
	_ = c.ShouldBindJSON(&req)

	b, err := h.service.Decide(c.Request.Context(), user, id, req.Status)
	if err != nil {
		response.FromError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"booking": b})
}

// parsePage reads limit/offset (and "skip" as an alias of offset).
func parsePage(c *gin.Context) (PageRequest, bool) {
	var p PageRequest
	for _, key := range []string{"limit", "offset", "skip"} {
		raw, present := c.GetQuery(key)
		if !present {
			continue
		}
		v, err := strconv.Atoi(raw)
		if err != nil {
			response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", key+" must be an integer")
			return PageRequest{}, false
		}
		if key == "limit" {
			p.Limit = &v
		} else {
			p.Offset = &v
		}
	}
	return p, true
}

func queryID(c *gin.Context, key string) (int64, bool) {
	raw := c.Query(key)
	if raw == "" {
		return 0, true
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || v <= 0 {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", key+" must be a positive integer")
		return 0, false
	}
	return v, true
}
