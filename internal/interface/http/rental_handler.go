package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/rentivu/internal/application"
	"github.com/oksasatya/rentivu/internal/domain/entity"
	"github.com/oksasatya/rentivu/pkg/response"
	"github.com/oksasatya/rentivu/pkg/validation"
)

type RentalHandler struct {
	Rentals *application.RentalService
	Ledger  *application.ReservationService
	Booking *application.BookingService
	Auth    *application.AuthService
	Logger  *logrus.Logger
}

func NewRentalHandler(rentals *application.RentalService, ledger *application.ReservationService, booking *application.BookingService, auth *application.AuthService, logger *logrus.Logger) *RentalHandler {
	return &RentalHandler{Rentals: rentals, Ledger: ledger, Booking: booking, Auth: auth, Logger: logger}
}

type searchQuery struct {
	Q        string   `form:"q"`
	Type     string   `form:"type" binding:"omitempty,oneof=apartment house office"`
	PriceMax *float64 `form:"priceMax" binding:"omitempty,gte=0"`
	Location string   `form:"location"`
	Sort     string   `form:"sort" binding:"omitempty,oneof=price_asc price_desc"`
	Page     string   `form:"page"`
}

type bookRequest struct {
	UserName string `json:"userName" binding:"omitempty,max=120"`
	Datetime string `json:"datetime" binding:"required"`
}

// List GET /api/rentals
func (h *RentalHandler) List(c *gin.Context) {
	var q searchQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid query", validation.ToDetails(err))
		return
	}
	// a non-numeric page behaves like page 1
	page, _ := strconv.Atoi(q.Page)

	res, err := h.Rentals.Search(c.Request.Context(), application.RentalFilter{
		Query:    q.Q,
		Type:     entity.RentalType(q.Type),
		PriceMax: q.PriceMax,
		Location: q.Location,
		Sort:     q.Sort,
		Page:     page,
	})
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, res.Items, "rentals", gin.H{
		"page":       res.Page,
		"pageSize":   res.PageSize,
		"totalPages": res.TotalPages,
		"total":      res.Total,
	})
}

// Locations GET /api/locations
func (h *RentalHandler) Locations(c *gin.Context) {
	cities, err := h.Rentals.Cities(c.Request.Context())
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, cities, "locations", nil)
}

// Get GET /api/rentals/:id
func (h *RentalHandler) Get(c *gin.Context) {
	r, err := h.Rentals.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, r, "rental", nil)
}

// Reservations GET /api/rentals/:id/reservations
func (h *RentalHandler) Reservations(c *gin.Context) {
	id := c.Param("id")
	if _, err := h.Rentals.Get(c.Request.Context(), id); err != nil {
		writeError(c, h.Logger, err)
		return
	}
	list := h.Ledger.ListFor(c.Request.Context(), id)
	response.Success(c, http.StatusOK, list, "reservations", gin.H{"total": len(list)})
}

// Book POST /api/rentals/:id/reservations
// Without userName the reservation is made for the logged-in user.
func (h *RentalHandler) Book(c *gin.Context) {
	var req bookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	ctx := c.Request.Context()

	name := strings.TrimSpace(req.UserName)
	if name == "" {
		state := h.Auth.State(ctx)
		if !state.Authenticated() {
			response.Error[any](c, http.StatusBadRequest, "invalid payload", map[string]string{
				"userName": "is required when nobody is logged in",
			})
			return
		}
		name = state.CurrentUser.FullName
	}

	res, err := h.Booking.Book(ctx, application.BookingInput{
		RentalID: c.Param("id"),
		UserName: name,
		Datetime: strings.TrimSpace(req.Datetime),
	})
	if err != nil {
		metrics.Add(metricReservationsDenied, 1)
		writeError(c, h.Logger, err)
		return
	}
	metrics.Add(metricReservations, 1)
	response.Success(c, http.StatusCreated, res, "reservation created", nil)
}
