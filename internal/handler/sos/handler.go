package sos

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/raksha-app/sos-api/internal/handler"
	"github.com/raksha-app/sos-api/internal/model"
	"github.com/raksha-app/sos-api/internal/service/device"
	"github.com/raksha-app/sos-api/internal/service/notification"
	"github.com/raksha-app/sos-api/internal/service/sos"
)

type Handler struct {
	service  sos.Service
	devices  device.Service
	notifier notification.Service
}

func NewHandler(service sos.Service, devices device.Service, notifier notification.Service) *Handler {
	return &Handler{
		service:  service,
		devices:  devices,
		notifier: notifier,
	}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	group := r.Group("/sos")
	{
		group.POST("/trigger", h.Trigger)
		group.GET("/active", h.Active)
		group.GET("/events/:id", h.Get)
		group.POST("/events/:id/resolve", h.Resolve)
		group.POST("/events/:id/cancel", h.Cancel)
		group.POST("/events/:id/location", h.UpdateLocation)
		group.GET("/events/:id/locations", h.LocationHistory)
		group.POST("/events/:id/notify", h.Notify)
		group.GET("/events/:id/notifications", h.Notifications)
	}
}

func (h *Handler) Trigger(c *gin.Context) {
	var req model.TriggerSOSRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}

	event, err := h.service.Trigger(c.Request.Context(), req.DeviceID, req.Lat, req.Lng, req.TriggerType)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, handler.NewSuccessResponse(event))
}

func (h *Handler) Active(c *gin.Context) {
	deviceID := c.Query("device_id")
	if deviceID == "" {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("device_id is required"))
		return
	}

	events, err := h.service.ActiveEvents(c.Request.Context(), deviceID)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(events))
}

func (h *Handler) Get(c *gin.Context) {
	id, ok := h.eventID(c)
	if !ok {
		return
	}

	event, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(event))
}

func (h *Handler) Resolve(c *gin.Context) {
	id, ok := h.eventID(c)
	if !ok {
		return
	}

	event, err := h.service.Resolve(c.Request.Context(), id)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(event))
}

func (h *Handler) Cancel(c *gin.Context) {
	id, ok := h.eventID(c)
	if !ok {
		return
	}

	event, err := h.service.Cancel(c.Request.Context(), id)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(event))
}

func (h *Handler) UpdateLocation(c *gin.Context) {
	id, ok := h.eventID(c)
	if !ok {
		return
	}

	var req model.UpdateLocationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}

	point, err := h.service.UpdateLocation(c.Request.Context(), id, req.DeviceID, req.Lat, req.Lng, req.Accuracy)
	if err != nil {
		c.Error(err)
		return
	}

	// A nil point means the event is gone or no longer active; the
	// update is silently dropped.
	c.JSON(http.StatusOK, handler.NewSuccessResponse(point))
}

func (h *Handler) LocationHistory(c *gin.Context) {
	id, ok := h.eventID(c)
	if !ok {
		return
	}

	points, err := h.service.LocationHistory(c.Request.Context(), id)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(points))
}

func (h *Handler) Notify(c *gin.Context) {
	id, ok := h.eventID(c)
	if !ok {
		return
	}

	event, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		c.Error(err)
		return
	}

	dev, err := h.devices.GetFresh(c.Request.Context(), event.DeviceID)
	if err != nil {
		c.Error(err)
		return
	}

	results, err := h.notifier.NotifyAllContacts(c.Request.Context(), event, dev.Name, mapLink(event, dev))
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(gin.H{
		"event":   event,
		"results": results,
	}))
}

func (h *Handler) Notifications(c *gin.Context) {
	id, ok := h.eventID(c)
	if !ok {
		return
	}

	if _, err := h.service.Get(c.Request.Context(), id); err != nil {
		c.Error(err)
		return
	}

	list, err := h.notifier.ListForEvent(c.Request.Context(), id)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(list))
}

func (h *Handler) eventID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid event ID"))
		return uuid.Nil, false
	}
	return id, true
}

// mapLink builds the map URL shared with contacts, preferring the
// device's freshest known position over the trigger coordinates.
func mapLink(event *model.SOSEvent, dev *model.Device) string {
	lat, lng := event.InitialLat.String(), event.InitialLng.String()
	if dev.LastLat != nil && dev.LastLng != nil {
		lat, lng = dev.LastLat.String(), dev.LastLng.String()
	}
	return fmt.Sprintf("https://www.google.com/maps?q=%s,%s", lat, lng)
}
