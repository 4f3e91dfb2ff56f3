package contact

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/raksha-app/sos-api/internal/handler"
	"github.com/raksha-app/sos-api/internal/model"
	"github.com/raksha-app/sos-api/internal/service/contact"
)

type Handler struct {
	service contact.Service
}

func NewHandler(service contact.Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	r.POST("/devices/:deviceID/contacts", h.Add)
	r.GET("/devices/:deviceID/contacts", h.List)

	contacts := r.Group("/contacts")
	{
		contacts.PATCH("/:id", h.Update)
		contacts.DELETE("/:id", h.Delete)
	}
}

func (h *Handler) Add(c *gin.Context) {
	var req model.AddContactRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}

	contact, err := h.service.Add(c.Request.Context(), c.Param("deviceID"), &req)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, handler.NewSuccessResponse(contact))
}

func (h *Handler) List(c *gin.Context) {
	contacts, err := h.service.List(c.Request.Context(), c.Param("deviceID"))
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(contacts))
}

func (h *Handler) Update(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid contact ID"))
		return
	}

	var req model.UpdateContactRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}

	contact, err := h.service.Update(c.Request.Context(), id, &req)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(contact))
}

func (h *Handler) Delete(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid contact ID"))
		return
	}

	if err := h.service.Delete(c.Request.Context(), id); err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(gin.H{"success": true}))
}
