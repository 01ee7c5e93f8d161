package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/blackenaxe/icom/internal/api/dto"
	"github.com/blackenaxe/icom/internal/service"
)

// UpdatesHandler edits individual work order updates.
type UpdatesHandler struct {
	updates *service.UpdateService
}

// NewUpdatesHandler constructs handler.
func NewUpdatesHandler(updates *service.UpdateService) *UpdatesHandler {
	return &UpdatesHandler{updates: updates}
}

// Edit handles PUT /api/updates/:id.
func (h *UpdatesHandler) Edit(c *fiber.Ctx) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}
	id, err := idParam(c, "id")
	if err != nil {
		return err
	}
	var req dto.UpdateRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}

	update, err := h.updates.EditUpdate(c.UserContext(), user, id, req.Description)
	if err != nil {
		return err
	}
	return c.JSON(dto.NewUpdateResponse(update))
}
