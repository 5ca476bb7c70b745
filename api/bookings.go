package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Domenick1991/eventbooking/internal/domain"
	"github.com/Domenick1991/eventbooking/internal/service/booking"
)

type BookingHandler struct {
	service booking.BookingUseCase
}

type createBookingRequest struct {
	EventID int64  `json:"event_id" binding:"required"`
	Tickets int    `json:"tickets"`
	Tier    string `json:"tier"`
}

type updateStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

type bookingResponse struct {
	ID           int64  `json:"id"`
	EventID      int64  `json:"event_id"`
	UserID       int64  `json:"user_id"`
	Tickets      int    `json:"tickets"`
	Tier         string `json:"tier"`
	TotalAmount  int64  `json:"total_amount"`
	TicketNumber string `json:"ticket_number"`
	Status       string `json:"status"`
	CreatedAt    string `json:"created_at"`
}

func toBookingResponse(b *domain.Booking) bookingResponse {
	return bookingResponse{
		ID:           b.ID,
		EventID:      b.EventID,
		UserID:       b.UserID,
		Tickets:      b.Tickets,
		Tier:         string(b.Tier),
		TotalAmount:  b.TotalAmount,
		TicketNumber: b.TicketNumber,
		Status:       string(b.Status),
		CreatedAt:    b.CreatedAt.Format(time.RFC3339),
	}
}

func toBookingResponses(bookings []domain.Booking) []bookingResponse {
	out := make([]bookingResponse, 0, len(bookings))
	for i := range bookings {
		out = append(out, toBookingResponse(&bookings[i]))
	}
	return out
}

func NewBookingHandler(service booking.BookingUseCase) *BookingHandler {
	return &BookingHandler{service: service}
}

func (h *BookingHandler) Register(router *gin.RouterGroup) {
	router.POST("", h.create)
	router.GET("", h.listMine)
	router.GET("/:id", h.get)
	router.DELETE("/:id", h.cancel)
	router.PUT("/:id/status", h.updateStatus)
}

func (h *BookingHandler) create(c *gin.Context) {
	var req createBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	created, err := h.service.CreateBooking(c.Request.Context(), booking.CreateBookingInput{
		EventID: req.EventID,
		UserID:  sessionFrom(c).UserID,
		Tickets: req.Tickets,
		Tier:    req.Tier,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toBookingResponse(created))
}

func (h *BookingHandler) listMine(c *gin.Context) {
	bookings, err := h.service.ListUserBookings(c.Request.Context(), sessionFrom(c).UserID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toBookingResponses(bookings))
}

func (h *BookingHandler) get(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	found, err := h.service.GetBooking(c.Request.Context(), sessionFrom(c), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toBookingResponse(found))
}

func (h *BookingHandler) cancel(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	cancelled, err := h.service.CancelBooking(c.Request.Context(), sessionFrom(c), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toBookingResponse(cancelled))
}

func (h *BookingHandler) updateStatus(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req updateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	status, err := domain.ParseBookingStatus(req.Status)
	if err != nil {
		writeError(c, err)
		return
	}

	updated, err := h.service.UpdatePaymentStatus(c.Request.Context(), sessionFrom(c), id, status)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toBookingResponse(updated))
}

func pathID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		badRequest(c, "invalid id")
		return 0, false
	}
	return id, true
}
