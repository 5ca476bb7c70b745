package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Domenick1991/eventbooking/internal/domain"
	"github.com/Domenick1991/eventbooking/internal/service/booking"
	"github.com/Domenick1991/eventbooking/internal/service/events"
)

type EventHandler struct {
	events   events.EventUseCase
	bookings booking.BookingUseCase
}

type eventResponse struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Venue       string `json:"venue"`
	OrganizerID int64  `json:"organizer_id"`
	Capacity    int    `json:"capacity"`
	Available   int    `json:"available"`
	PricingType string `json:"pricing_type"`
	FlatPrice   int64  `json:"flat_price,omitempty"`
	VVIPPrice   int64  `json:"vvip_price,omitempty"`
	VIPPrice    int64  `json:"vip_price,omitempty"`
	CasualPrice int64  `json:"casual_price,omitempty"`
	StartsAt    string `json:"starts_at"`
	Status      string `json:"status"`
}

type availabilityResponse struct {
	EventID   int64 `json:"event_id"`
	Available int   `json:"available"`
}

func toEventResponse(e *domain.Event) eventResponse {
	return eventResponse{
		ID:          e.ID,
		Name:        e.Name,
		Venue:       e.Venue,
		OrganizerID: e.OrganizerID,
		Capacity:    e.Capacity,
		Available:   e.Available(),
		PricingType: string(e.PricingType),
		FlatPrice:   e.FlatPrice,
		VVIPPrice:   e.VVIPPrice,
		VIPPrice:    e.VIPPrice,
		CasualPrice: e.CasualPrice,
		StartsAt:    e.StartsAt.Format(time.RFC3339),
		Status:      string(e.Status),
	}
}

func NewEventHandler(events events.EventUseCase, bookings booking.BookingUseCase) *EventHandler {
	return &EventHandler{events: events, bookings: bookings}
}

// RegisterPublic adds the catalog routes that need no session.
func (h *EventHandler) RegisterPublic(router *gin.RouterGroup) {
	router.GET("", h.list)
	router.GET("/:id", h.get)
	router.GET("/:id/availability", h.availability)
}

func (h *EventHandler) Register(router *gin.RouterGroup) {
	router.POST("", h.create)
	router.PUT("/:id", h.update)
	router.DELETE("/:id", h.delete)
	router.GET("/:id/bookings", h.bookingsOf)
}

func (h *EventHandler) list(c *gin.Context) {
	list, err := h.events.ListEvents(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	out := make([]eventResponse, 0, len(list))
	for i := range list {
		out = append(out, toEventResponse(&list[i]))
	}
	c.JSON(http.StatusOK, out)
}

func (h *EventHandler) get(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	event, err := h.events.GetEvent(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toEventResponse(event))
}

func (h *EventHandler) availability(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	available, err := h.bookings.GetAvailableCapacity(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, availabilityResponse{EventID: id, Available: available})
}

func (h *EventHandler) create(c *gin.Context) {
	var input events.EventInput
	if err := c.ShouldBindJSON(&input); err != nil {
		badRequest(c, err.Error())
		return
	}
	created, err := h.events.CreateEvent(c.Request.Context(), sessionFrom(c), input)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toEventResponse(created))
}

func (h *EventHandler) update(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var input events.EventInput
	if err := c.ShouldBindJSON(&input); err != nil {
		badRequest(c, err.Error())
		return
	}
	updated, err := h.events.UpdateEvent(c.Request.Context(), sessionFrom(c), id, input)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toEventResponse(updated))
}

func (h *EventHandler) delete(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := h.events.DeleteEvent(c.Request.Context(), sessionFrom(c), id); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *EventHandler) bookingsOf(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	list, err := h.bookings.ListEventBookings(c.Request.Context(), sessionFrom(c), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toBookingResponses(list))
}
