package handlers

import (
	"errors"
	"log"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"kirana/internal/middleware"
	"kirana/internal/models"
	"kirana/internal/repositories"
	"kirana/internal/services"
)

// OrderHandler handles HTTP requests for orders, including the admin
// console's listing and confirmation.
type OrderHandler struct {
	orderService *services.OrderService
	validate     *validator.Validate
}

// NewOrderHandler creates a new OrderHandler.
func NewOrderHandler(orderService *services.OrderService) *OrderHandler {
	return &OrderHandler{
		orderService: orderService,
		validate:     validator.New(),
	}
}

// RegisterRoutes registers customer order routes on the protected group and
// the admin listing/confirmation on the admin group.
func (h *OrderHandler) RegisterRoutes(protected fiber.Router, admin fiber.Router) {
	protected.Post("/orders", h.HandlePlaceOrder)
	protected.Get("/orders", h.HandleListOrders)
	protected.Put("/orders/:id", h.HandleUpdateOrder)
	protected.Delete("/orders/:id", h.HandleDeleteOrder)
	admin.Get("/orders", h.HandleListAllOrders)
	admin.Patch("/orders/:id/confirm", h.HandleConfirmOrder)
}

// OrderRequest carries the submitted lines and claimed grand total for
// placing or editing an order.
type OrderRequest struct {
	Items      []models.Line `json:"items" validate:"required,min=1,max=100,dive"`
	GrandTotal float64       `json:"grand_total" validate:"gte=0"`
}

// HandlePlaceOrder creates a new Pending order from the request lines.
func (h *OrderHandler) HandlePlaceOrder(c *fiber.Ctx) error {
	var req OrderRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequestBody(c, err)
	}
	if err := h.validate.Struct(req); err != nil {
		return validationError(c, err)
	}

	user := middleware.CurrentUser(c)
	order, err := h.orderService.PlaceOrder(user, req.Items, req.GrandTotal)
	if err != nil {
		log.Printf("Error placing order for user %s: %v", user.ID, err)
		return h.orderError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(order)
}

// HandleListOrders returns the caller's orders, newest first.
func (h *OrderHandler) HandleListOrders(c *fiber.Ctx) error {
	user := middleware.CurrentUser(c)
	orders, err := h.orderService.ListUserOrders(user.ID)
	if err != nil {
		log.Printf("Error listing orders for user %s: %v", user.ID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not retrieve orders",
			"error":   err.Error(),
		})
	}
	if orders == nil {
		orders = []models.Order{}
	}
	return c.JSON(orders)
}

// HandleUpdateOrder replaces an order's items and total (the edit-order
// flow), resetting its status to Pending.
func (h *OrderHandler) HandleUpdateOrder(c *fiber.Ctx) error {
	var req OrderRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequestBody(c, err)
	}
	if err := h.validate.Struct(req); err != nil {
		return validationError(c, err)
	}

	user := middleware.CurrentUser(c)
	order, err := h.orderService.UpdateOrder(user, c.Params("id"), req.Items, req.GrandTotal)
	if err != nil {
		log.Printf("Error updating order %s: %v", c.Params("id"), err)
		return h.orderError(c, err)
	}
	return c.JSON(order)
}

// HandleDeleteOrder deletes an order owned by the caller (or any order for
// an admin).
func (h *OrderHandler) HandleDeleteOrder(c *fiber.Ctx) error {
	user := middleware.CurrentUser(c)
	if err := h.orderService.DeleteOrder(user, c.Params("id")); err != nil {
		log.Printf("Error deleting order %s: %v", c.Params("id"), err)
		return h.orderError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Order deleted"})
}

// HandleListAllOrders returns every order for the admin console.
func (h *OrderHandler) HandleListAllOrders(c *fiber.Ctx) error {
	orders, err := h.orderService.ListAllOrders()
	if err != nil {
		log.Printf("Error listing all orders: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not retrieve orders",
			"error":   err.Error(),
		})
	}
	if orders == nil {
		orders = []models.Order{}
	}
	return c.JSON(orders)
}

// HandleConfirmOrder moves an order to Order Confirmed.
func (h *OrderHandler) HandleConfirmOrder(c *fiber.Ctx) error {
	order, err := h.orderService.ConfirmOrder(c.Params("id"))
	if err != nil {
		log.Printf("Error confirming order %s: %v", c.Params("id"), err)
		return h.orderError(c, err)
	}
	return c.JSON(order)
}

// orderError maps order service errors to HTTP responses.
func (h *OrderHandler) orderError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, repositories.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"message": "Order not found",
		})
	case errors.Is(err, services.ErrNotAllowed):
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"message": "Not authorized",
		})
	case errors.Is(err, services.ErrEmptyOrder),
		errors.Is(err, services.ErrBadQuantity),
		errors.Is(err, services.ErrTooManyLines):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid order contents",
			"error":   err.Error(),
		})
	}
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"message": "Order operation failed",
		"error":   err.Error(),
	})
}
