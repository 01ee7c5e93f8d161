package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/blackenaxe/icom/internal/api/dto"
	"github.com/blackenaxe/icom/internal/service"
)

// NotificationsHandler exposes the caller's inbox.
type NotificationsHandler struct {
	notifications *service.NotificationService
}

// NewNotificationsHandler constructs handler.
func NewNotificationsHandler(notifications *service.NotificationService) *NotificationsHandler {
	return &NotificationsHandler{notifications: notifications}
}

// List handles GET /api/notifications.
func (h *NotificationsHandler) List(c *fiber.Ctx) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}
	list, err := h.notifications.ListForUser(c.UserContext(), user.ID)
	if err != nil {
		return err
	}
	return c.JSON(dto.NewNotificationList(list))
}

// MarkRead handles PUT /api/notifications/:id/read.
func (h *NotificationsHandler) MarkRead(c *fiber.Ctx) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}
	id, err := idParam(c, "id")
	if err != nil {
		return err
	}
	n, err := h.notifications.MarkRead(c.UserContext(), user.ID, id)
	if err != nil {
		return err
	}
	return c.JSON(dto.NewNotificationResponse(n))
}
