package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/sokoni/eventpos-api/internal/application/service"
	"github.com/sokoni/eventpos-api/internal/presentation/http/dto/request"
	"github.com/sokoni/eventpos-api/internal/presentation/http/dto/response"
)

// EventHandler handles event endpoints
type EventHandler struct {
	eventService *service.EventService
}

// NewEventHandler creates a new event handler
func NewEventHandler(eventService *service.EventService) *EventHandler {
	return &EventHandler{eventService: eventService}
}

// Create handles POST /events
func (h *EventHandler) Create(c *gin.Context) {
	var req request.CreateEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	event, err := h.eventService.CreateEvent(c.Request.Context(), &service.CreateEventInput{
		Name:     req.Name,
		StartsAt: req.StartsAt,
		EndsAt:   req.EndsAt,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, "Event created successfully", event)
}

// Get handles GET /events/:id
func (h *EventHandler) Get(c *gin.Context) {
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}

	event, err := h.eventService.GetEvent(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Event retrieved successfully", event)
}

// List handles GET /events
func (h *EventHandler) List(c *gin.Context) {
	params := parsePagination(c)

	result, err := h.eventService.ListEvents(c.Request.Context(), params)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.SuccessWithPagination(c, 200, "Events retrieved successfully", result)
}

// UpdateStatus handles PATCH /events/:id/status
func (h *EventHandler) UpdateStatus(c *gin.Context) {
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}

	var req request.UpdateEventStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	event, err := h.eventService.UpdateEventStatus(c.Request.Context(), id, req.Status)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Event status updated", event)
}

// OrderingQR handles GET /events/:id/qr and serves the ordering QR as PNG
func (h *EventHandler) OrderingQR(c *gin.Context) {
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}

	size := 0
	if raw := c.Query("size"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			response.BadRequest(c, "Invalid QR size")
			return
		}
		size = parsed
	}

	png, err := h.eventService.OrderingQR(c.Request.Context(), id, size)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.Data(200, "image/png", png)
}
