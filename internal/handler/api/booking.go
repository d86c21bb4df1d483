package api

import (
	"context"
	"net/http"

	reqdto "treatment-booking/internal/handler/dto/request"
	resdto "treatment-booking/internal/handler/dto/response"
	"treatment-booking/internal/handler/httperr"
	"treatment-booking/internal/handler/middleware"
	"treatment-booking/internal/usecase/commands"
	"treatment-booking/internal/usecase/queries"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type BookingHandler struct {
	cmds commands.BookingCommands
	q    queries.BookingQueries
}

func NewBookingHandler(cmds commands.BookingCommands, q queries.BookingQueries) *BookingHandler {
	return &BookingHandler{cmds: cmds, q: q}
}

// @Summary Create booking
// @Description Create a pending booking. Catalog prices are frozen into the booking at this point.
// @Tags bookings
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body reqdto.CreateBookingRequest true "Create booking request"
// @Success 201 {object} resdto.BookingResponse
// @Failure 400 {object} httperr.Response
// @Failure 422 {object} httperr.Response
// @Router /api/bookings [post]
func (h *BookingHandler) Create(c *gin.Context) {
	var req reqdto.CreateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid request", nil)
		return
	}
	view, err := h.cmds.Create(c.Request.Context(), req.ToInput(), middleware.SubjectPtr(c))
	if err != nil {
		httperr.Abort(c, err)
		return
	}
	h.render(c, http.StatusCreated, view)
}

// @Summary Get booking
// @Description Get a booking by ID
// @Tags bookings
// @Produce json
// @Security BearerAuth
// @Param id path string true "Booking ID"
// @Success 200 {object} resdto.BookingResponse
// @Failure 400 {object} httperr.Response
// @Failure 404 {object} httperr.Response
// @Router /api/bookings/{id} [get]
func (h *BookingHandler) Get(c *gin.Context) {
	id, ok := bookingID(c)
	if !ok {
		return
	}
	view, err := h.q.GetByID(c.Request.Context(), id)
	if err != nil {
		httperr.Abort(c, err)
		return
	}
	h.render(c, http.StatusOK, view)
}

// @Summary List bookings
// @Description Keyset-paginated listing. q (name prefix) takes precedence over from/to.
// @Tags bookings
// @Produce json
// @Security BearerAuth
// @Param status query []string false "Status filter, repeated or comma separated" collectionFormat(multi)
// @Param q query string false "Case-insensitive contact name prefix"
// @Param from query string false "Created at or after (RFC 3339)"
// @Param to query string false "Created at or before (RFC 3339)"
// @Param sortBy query string false "createdAt|updatedAt|arrivalAt|name|status"
// @Param direction query string false "asc|desc"
// @Param pageSize query int false "Page size (default 20, max 100)"
// @Param pageToken query string false "Token from the previous page"
// @Success 200 {object} resdto.BookingListResponse
// @Failure 400 {object} httperr.Response
// @Router /api/bookings [get]
func (h *BookingHandler) List(c *gin.Context) {
	var q reqdto.ListBookingsQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid query", nil)
		return
	}
	result, err := h.q.List(c.Request.Context(), q.ToParams())
	if err != nil {
		httperr.Abort(c, err)
		return
	}
	res, err := resdto.FromListResult(result)
	if err != nil {
		httperr.AbortWithError(c, http.StatusInternalServerError, err, "Internal server error", nil)
		return
	}
	c.JSON(http.StatusOK, res)
}

// @Summary Update booking details
// @Description Partially update arrival time, contact, note or items. Items are replaced wholesale.
// @Tags bookings
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Booking ID"
// @Param request body reqdto.UpdateBookingRequest true "Update booking request"
// @Success 200 {object} resdto.BookingResponse
// @Failure 400 {object} httperr.Response
// @Failure 404 {object} httperr.Response
// @Failure 409 {object} httperr.Response
// @Router /api/bookings/{id} [patch]
func (h *BookingHandler) Update(c *gin.Context) {
	id, ok := bookingID(c)
	if !ok {
		return
	}
	var req reqdto.UpdateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid request", nil)
		return
	}
	view, err := h.cmds.UpdateDetails(c.Request.Context(), id, req.ToInput())
	if err != nil {
		httperr.Abort(c, err)
		return
	}
	h.render(c, http.StatusOK, view)
}

// @Summary Confirm booking
// @Tags bookings
// @Produce json
// @Security BearerAuth
// @Param id path string true "Booking ID"
// @Success 200 {object} resdto.BookingResponse
// @Failure 404 {object} httperr.Response
// @Failure 409 {object} httperr.Response
// @Router /api/bookings/{id}/confirm [post]
func (h *BookingHandler) Confirm(c *gin.Context) {
	h.transition(c, h.cmds.Confirm)
}

// @Summary Cancel booking
// @Tags bookings
// @Produce json
// @Security BearerAuth
// @Param id path string true "Booking ID"
// @Success 200 {object} resdto.BookingResponse
// @Failure 404 {object} httperr.Response
// @Router /api/bookings/{id}/cancel [post]
func (h *BookingHandler) Cancel(c *gin.Context) {
	h.transition(c, h.cmds.Cancel)
}

func (h *BookingHandler) transition(c *gin.Context, run func(ctx context.Context, id uuid.UUID) (*queries.BookingView, error)) {
	id, ok := bookingID(c)
	if !ok {
		return
	}
	view, err := run(c.Request.Context(), id)
	if err != nil {
		httperr.Abort(c, err)
		return
	}
	h.render(c, http.StatusOK, view)
}

func (h *BookingHandler) render(c *gin.Context, status int, view *queries.BookingView) {
	res, err := resdto.FromBookingView(view)
	if err != nil {
		httperr.AbortWithError(c, http.StatusInternalServerError, err, "Internal server error", nil)
		return
	}
	c.JSON(status, res)
}

func bookingID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid id", nil)
		return uuid.Nil, false
	}
	return id, true
}
