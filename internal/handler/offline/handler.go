package offline

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/raksha-app/sos-api/internal/handler"
	"github.com/raksha-app/sos-api/internal/model"
	"github.com/raksha-app/sos-api/internal/service/sos"
)

type Handler struct {
	service sos.Service
}

func NewHandler(service sos.Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	group := r.Group("/offline")
	{
		group.POST("/queue", h.Queue)
		group.GET("/pending", h.Pending)
		group.POST("/:queueID/synced", h.MarkSynced)
		group.POST("/sync", h.Sync)
	}
}

func (h *Handler) Queue(c *gin.Context) {
	var req model.QueueOfflineSOSRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}

	item, err := h.service.QueueOffline(c.Request.Context(), req.DeviceID, req.Lat, req.Lng)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, handler.NewSuccessResponse(item))
}

func (h *Handler) Pending(c *gin.Context) {
	deviceID := c.Query("device_id")
	if deviceID == "" {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("device_id is required"))
		return
	}

	items, err := h.service.PendingOffline(c.Request.Context(), deviceID)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(items))
}

func (h *Handler) MarkSynced(c *gin.Context) {
	queueID, err := uuid.Parse(c.Param("queueID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid queue ID"))
		return
	}

	var req struct {
		EventID string `json:"event_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}
	eventID, err := uuid.Parse(req.EventID)
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid event ID"))
		return
	}

	item, err := h.service.MarkSynced(c.Request.Context(), queueID, eventID)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(item))
}

func (h *Handler) Sync(c *gin.Context) {
	var req struct {
		DeviceID string `json:"device_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}

	items, err := h.service.SyncOffline(c.Request.Context(), req.DeviceID)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(items))
}
