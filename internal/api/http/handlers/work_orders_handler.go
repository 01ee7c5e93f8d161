package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/blackenaxe/icom/internal/api/dto"
	"github.com/blackenaxe/icom/internal/service"
)

// WorkOrdersHandler exposes work order CRUD and the per-order update log.
type WorkOrdersHandler struct {
	workOrders *service.WorkOrderService
	updates    *service.UpdateService
}

// NewWorkOrdersHandler constructs handler.
func NewWorkOrdersHandler(workOrders *service.WorkOrderService, updates *service.UpdateService) *WorkOrdersHandler {
	return &WorkOrdersHandler{workOrders: workOrders, updates: updates}
}

// List handles GET /api/workorders.
func (h *WorkOrdersHandler) List(c *fiber.Ctx) error {
	orders, err := h.workOrders.List(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(dto.NewWorkOrderList(orders))
}

// Get handles GET /api/workorders/:id.
func (h *WorkOrdersHandler) Get(c *fiber.Ctx) error {
	id, err := idParam(c, "id")
	if err != nil {
		return err
	}
	order, err := h.workOrders.Get(c.UserContext(), id)
	if err != nil {
		return err
	}
	return c.JSON(dto.NewWorkOrderResponse(order))
}

// Create handles POST /api/workorders.
func (h *WorkOrdersHandler) Create(c *fiber.Ctx) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}
	var req dto.CreateWorkOrderRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}

	order, err := h.workOrders.Create(c.UserContext(), user, req.Input())
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(dto.NewWorkOrderResponse(order))
}

// Update handles PUT /api/workorders/:id.
func (h *WorkOrdersHandler) Update(c *fiber.Ctx) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}
	id, err := idParam(c, "id")
	if err != nil {
		return err
	}
	var req dto.UpdateWorkOrderRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}

	order, err := h.workOrders.Update(c.UserContext(), user, id, req.Patch())
	if err != nil {
		return err
	}
	return c.JSON(dto.NewWorkOrderResponse(order))
}

// Delete handles DELETE /api/workorders/:id.
func (h *WorkOrdersHandler) Delete(c *fiber.Ctx) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}
	id, err := idParam(c, "id")
	if err != nil {
		return err
	}
	if err := h.workOrders.Delete(c.UserContext(), user, id); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}

// ListUpdates handles GET /api/workorders/:id/updates.
func (h *WorkOrdersHandler) ListUpdates(c *fiber.Ctx) error {
	id, err := idParam(c, "id")
	if err != nil {
		return err
	}
	updates, err := h.updates.ListUpdates(c.UserContext(), id)
	if err != nil {
		return err
	}
	return c.JSON(dto.NewUpdateList(updates))
}

// AddUpdate handles POST /api/workorders/:id/updates.
func (h *WorkOrdersHandler) AddUpdate(c *fiber.Ctx) error {
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

	update, err := h.updates.AddUpdate(c.UserContext(), user, id, req.Description)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(dto.NewUpdateResponse(update))
}
