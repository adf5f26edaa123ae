package handlers

import (
	"errors"
	"log"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"kirana/internal/middleware"
	"kirana/internal/models"
	"kirana/internal/services"
)

// CartHandler handles HTTP requests for the per-user cart.
type CartHandler struct {
	cartService *services.CartService
	validate    *validator.Validate
}

// NewCartHandler creates a new CartHandler.
func NewCartHandler(cartService *services.CartService) *CartHandler {
	return &CartHandler{
		cartService: cartService,
		validate:    validator.New(),
	}
}

// RegisterRoutes registers the cart routes; all of them require a session.
func (h *CartHandler) RegisterRoutes(protected fiber.Router) {
	protected.Get("/cart", h.HandleGetCart)
	protected.Put("/cart", h.HandleReplaceCart)
	protected.Delete("/cart", h.HandleClearCart)
}

// HandleGetCart returns the user's persisted cart, or the empty shape when
// nothing has been saved yet.
func (h *CartHandler) HandleGetCart(c *fiber.Ctx) error {
	user := middleware.CurrentUser(c)
	cart, err := h.cartService.GetCart(user.ID)
	if err != nil {
		log.Printf("Error getting cart for user %s: %v", user.ID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not retrieve cart",
			"error":   err.Error(),
		})
	}
	if cart == nil {
		return c.JSON(fiber.Map{
			"cart_id":    nil,
			"user_id":    user.ID,
			"items":      []models.Line{},
			"updated_at": nil,
		})
	}
	return c.JSON(cart)
}

// CartUpdateRequest carries the full replacement line list.
type CartUpdateRequest struct {
	Items []models.Line `json:"items" validate:"max=100,dive"`
}

// HandleReplaceCart overwrites the user's cart wholesale.
func (h *CartHandler) HandleReplaceCart(c *fiber.Ctx) error {
	var req CartUpdateRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequestBody(c, err)
	}
	if err := h.validate.Struct(req); err != nil {
		return validationError(c, err)
	}

	user := middleware.CurrentUser(c)
	cart, err := h.cartService.ReplaceCart(user.ID, req.Items)
	if err != nil {
		log.Printf("Error replacing cart for user %s: %v", user.ID, err)
		if errors.Is(err, services.ErrTooManyLines) || errors.Is(err, services.ErrBadQuantity) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"message": "Invalid cart contents",
				"error":   err.Error(),
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not save cart",
			"error":   err.Error(),
		})
	}
	return c.JSON(cart)
}

// HandleClearCart drops the user's cart.
func (h *CartHandler) HandleClearCart(c *fiber.Ctx) error {
	user := middleware.CurrentUser(c)
	if err := h.cartService.ClearCart(user.ID); err != nil {
		log.Printf("Error clearing cart for user %s: %v", user.ID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not clear cart",
			"error":   err.Error(),
		})
	}
	return c.JSON(fiber.Map{"message": "Cart cleared"})
}
