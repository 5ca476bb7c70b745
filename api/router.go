package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Domenick1991/eventbooking/internal/service/booking"
	"github.com/Domenick1991/eventbooking/internal/service/events"
)

func NewRouter(log *zap.Logger, tokens SessionParser, bookings booking.BookingUseCase, eventSvc events.EventUseCase) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), RequestID(), Logger(log))

	health := func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	}
	router.GET("/health", health)

	v1 := router.Group("/api/v1")
	v1.GET("/health", health)

	eventHandler := NewEventHandler(eventSvc, bookings)
	eventHandler.RegisterPublic(v1.Group("/events"))

	authed := v1.Group("", Authenticate(tokens))
	NewBookingHandler(bookings).Register(authed.Group("/bookings"))
	eventHandler.Register(authed.Group("/events"))

	return router
}
