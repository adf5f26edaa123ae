package handlers

import (
	"errors"
	"log"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"kirana/internal/models"
	"kirana/internal/repositories"
	"kirana/internal/services"
)

// ItemHandler handles HTTP requests for catalog items.
type ItemHandler struct {
	catalogService *services.CatalogService
	validate       *validator.Validate
}

// NewItemHandler creates a new ItemHandler.
func NewItemHandler(catalogService *services.CatalogService) *ItemHandler {
	return &ItemHandler{
		catalogService: catalogService,
		validate:       validator.New(),
	}
}

// RegisterPublicRoutes registers the storefront listing and seed routes.
// It must be called before the session middleware is mounted on the API
// group.
func (h *ItemHandler) RegisterPublicRoutes(public fiber.Router) {
	public.Get("/items", h.HandleListItems)
	public.Post("/seed-items", h.HandleSeedItems)
}

// RegisterAdminRoutes registers the item CRUD on the admin group.
func (h *ItemHandler) RegisterAdminRoutes(admin fiber.Router) {
	admin.Post("/items", h.HandleCreateItem)
	admin.Put("/items/:id", h.HandleUpdateItem)
	admin.Delete("/items/:id", h.HandleDeleteItem)
}

// HandleListItems returns a page of catalog items.
func (h *ItemHandler) HandleListItems(c *fiber.Ctx) error {
	page := c.QueryInt("page", 1)
	limit := c.QueryInt("limit", 100)

	items, err := h.catalogService.ListItems(c.Context(), page, limit)
	if err != nil {
		log.Printf("Error listing items: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Failed to fetch items",
		})
	}
	if items == nil {
		items = []models.Item{}
	}
	return c.JSON(items)
}

// ItemRequest carries the mutable fields of an item for create and update.
type ItemRequest struct {
	Name     string  `json:"name" validate:"required,min=1,max=200"`
	Rate     float64 `json:"rate" validate:"required,gt=0,lte=1000000"`
	ImageURL string  `json:"image_url" validate:"required,min=1"`
	Category string  `json:"category" validate:"required,min=1,max=100"`
}

// HandleCreateItem creates a catalog item.
func (h *ItemHandler) HandleCreateItem(c *fiber.Ctx) error {
	var req ItemRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequestBody(c, err)
	}
	if err := h.validate.Struct(req); err != nil {
		return validationError(c, err)
	}

	item := &models.Item{
		Name:     req.Name,
		Rate:     req.Rate,
		ImageURL: req.ImageURL,
		Category: req.Category,
	}
	if err := h.catalogService.CreateItem(c.Context(), item); err != nil {
		log.Printf("Error creating item: %v", err)
		if errors.Is(err, services.ErrBadImageURL) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"message": "Invalid image URL format",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not create item",
			"error":   err.Error(),
		})
	}
	return c.Status(fiber.StatusCreated).JSON(item)
}

// HandleUpdateItem updates an existing catalog item.
func (h *ItemHandler) HandleUpdateItem(c *fiber.Ctx) error {
	var req ItemRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequestBody(c, err)
	}
	if err := h.validate.Struct(req); err != nil {
		return validationError(c, err)
	}

	updated := &models.Item{
		Name:     req.Name,
		Rate:     req.Rate,
		ImageURL: req.ImageURL,
		Category: req.Category,
	}
	item, err := h.catalogService.UpdateItem(c.Context(), c.Params("id"), updated)
	if err != nil {
		log.Printf("Error updating item %s: %v", c.Params("id"), err)
		switch {
		case errors.Is(err, services.ErrBadImageURL):
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"message": "Invalid image URL format",
			})
		case errors.Is(err, repositories.ErrNotFound):
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"message": "Item not found",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not update item",
			"error":   err.Error(),
		})
	}
	return c.JSON(item)
}

// HandleDeleteItem deletes a catalog item.
func (h *ItemHandler) HandleDeleteItem(c *fiber.Ctx) error {
	if err := h.catalogService.DeleteItem(c.Context(), c.Params("id")); err != nil {
		log.Printf("Error deleting item %s: %v", c.Params("id"), err)
		if errors.Is(err, repositories.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"message": "Item not found",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not delete item",
			"error":   err.Error(),
		})
	}
	return c.JSON(fiber.Map{"message": "Item deleted"})
}

// HandleSeedItems loads the starter catalog when the store is empty.
func (h *ItemHandler) HandleSeedItems(c *fiber.Ctx) error {
	message, err := h.catalogService.SeedSampleData(c.Context())
	if err != nil {
		log.Printf("Error seeding items: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Failed to seed items",
		})
	}
	return c.JSON(fiber.Map{"message": message})
}
