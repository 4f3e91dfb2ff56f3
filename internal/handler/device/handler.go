package device

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/raksha-app/sos-api/internal/handler"
	"github.com/raksha-app/sos-api/internal/model"
	"github.com/raksha-app/sos-api/internal/service/device"
)

type Handler struct {
	service device.Service
}

func NewHandler(service device.Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	devices := r.Group("/devices")
	{
		devices.POST("", h.Register)
		devices.GET("/:deviceID", h.Get)
		devices.PATCH("/:deviceID", h.Update)
	}
}

func (h *Handler) Register(c *gin.Context) {
	var req model.RegisterDeviceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}

	device, err := h.service.Register(c.Request.Context(), &req)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(device))
}

func (h *Handler) Get(c *gin.Context) {
	device, err := h.service.Get(c.Request.Context(), c.Param("deviceID"))
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(device))
}

func (h *Handler) Update(c *gin.Context) {
	var req model.UpdateDeviceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}

	device, err := h.service.Update(c.Request.Context(), c.Param("deviceID"), &req)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(device))
}
