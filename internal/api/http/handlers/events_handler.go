package handlers

import (
	"net/http"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/calendar-service/internal/api/dto"
	"github.com/spec-kit/calendar-service/internal/domain"
	"github.com/spec-kit/calendar-service/internal/service"
	"github.com/spec-kit/calendar-service/pkg/util"
)

// EventsHandler manages event endpoints.
type EventsHandler struct {
	service *service.EventService
}

// NewEventsHandler constructs handler.
func NewEventsHandler(eventService *service.EventService) *EventsHandler {
	return &EventsHandler{service: eventService}
}

// ListEvents GET /events.
func (h *EventsHandler) ListEvents(c *fiber.Ctx) error {
	eventList, err := h.service.ListEvents(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(dto.NewEventResponses(eventList))
}

// CreateEvent POST /events.
func (h *EventsHandler) CreateEvent(c *fiber.Ctx) error {
	var req dto.CreateEventRequest
	if err := c.BodyParser(&req); err != nil {
		return util.NewValidationError("invalid payload", nil)
	}
	if req.Title == "" {
		return util.NewValidationError("title required", nil)
	}

	input := service.EventCreateInput{
		Title:       req.Title,
		Description: req.Description,
		Status:      domain.EventStatus(req.Status),
		StartTime:   req.StartTime,
		EndTime:     req.EndTime,
		InviteeIDs:  req.Invitees,
	}
	event, err := h.service.CreateEvent(c.UserContext(), input)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(dto.NewEventResponse(event))
}

// GetEvent GET /events/:id.
func (h *EventsHandler) GetEvent(c *fiber.Ctx) error {
	id, err := parseID(c.Params("id"))
	if err != nil {
		return err
	}
	event, err := h.service.GetEvent(c.UserContext(), id)
	if err != nil {
		return err
	}
	return c.JSON(dto.NewEventResponse(event))
}

// DeleteEvent DELETE /events/delete/:id.
func (h *EventsHandler) DeleteEvent(c *fiber.Ctx) error {
	id, err := parseID(c.Params("id"))
	if err != nil {
		return err
	}
	if err := h.service.DeleteEvent(c.UserContext(), id); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"deleted": id})
}

// MergeAll POST /events/mergeAll/:userId.
func (h *EventsHandler) MergeAll(c *fiber.Ctx) error {
	userID, err := parseID(c.Params("userId"))
	if err != nil {
		return err
	}
	merged, err := h.service.MergeAll(c.UserContext(), userID)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(dto.NewEventResponses(merged))
}

func parseID(raw string) (int64, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, util.NewValidationError("invalid id", map[string]any{"id": raw})
	}
	return id, nil
}
