package handlers

import (
	"errors"
	"log"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"kirana/internal/repositories"
	"kirana/internal/services"
)

// CategoryHandler handles HTTP requests for categories.
type CategoryHandler struct {
	catalogService *services.CatalogService
	validate       *validator.Validate
}

// NewCategoryHandler creates a new CategoryHandler.
func NewCategoryHandler(catalogService *services.CatalogService) *CategoryHandler {
	return &CategoryHandler{
		catalogService: catalogService,
		validate:       validator.New(),
	}
}

// RegisterPublicRoutes registers the storefront filter listing. It must be
// called before the session middleware is mounted on the API group.
func (h *CategoryHandler) RegisterPublicRoutes(public fiber.Router) {
	public.Get("/categories", h.HandleListCategoryNames)
}

// RegisterAdminRoutes registers the category CRUD on the admin group.
func (h *CategoryHandler) RegisterAdminRoutes(admin fiber.Router) {
	admin.Get("/categories", h.HandleListCategories)
	admin.Post("/categories", h.HandleCreateCategory)
	admin.Delete("/categories/:id", h.HandleDeleteCategory)
}

// HandleListCategoryNames returns the storefront filter list ("All" plus
// sorted category names).
func (h *CategoryHandler) HandleListCategoryNames(c *fiber.Ctx) error {
	names, err := h.catalogService.ListCategoryNames(c.Context())
	if err != nil {
		log.Printf("Error listing category names: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Failed to fetch categories",
		})
	}
	return c.JSON(names)
}

// HandleListCategories returns full category records for the admin console.
func (h *CategoryHandler) HandleListCategories(c *fiber.Ctx) error {
	categories, err := h.catalogService.ListCategories()
	if err != nil {
		log.Printf("Error listing categories: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Failed to fetch categories",
		})
	}
	return c.JSON(categories)
}

// CategoryRequest carries a new category name.
type CategoryRequest struct {
	Name string `json:"name" validate:"required,min=1,max=100"`
}

// HandleCreateCategory creates a non-default category.
func (h *CategoryHandler) HandleCreateCategory(c *fiber.Ctx) error {
	var req CategoryRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequestBody(c, err)
	}
	if err := h.validate.Struct(req); err != nil {
		return validationError(c, err)
	}

	category, err := h.catalogService.CreateCategory(c.Context(), req.Name)
	if err != nil {
		log.Printf("Error creating category %q: %v", req.Name, err)
		switch {
		case errors.Is(err, services.ErrDuplicate):
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"message": "Category already exists",
			})
		case errors.Is(err, services.ErrBadCategoryName):
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"message": "Category name contains invalid characters",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not create category",
			"error":   err.Error(),
		})
	}
	return c.Status(fiber.StatusCreated).JSON(category)
}

// HandleDeleteCategory deletes a category, enforcing the default and in-use
// guards.
func (h *CategoryHandler) HandleDeleteCategory(c *fiber.Ctx) error {
	if err := h.catalogService.DeleteCategory(c.Context(), c.Params("id")); err != nil {
		log.Printf("Error deleting category %s: %v", c.Params("id"), err)
		switch {
		case errors.Is(err, repositories.ErrNotFound):
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"message": "Category not found",
			})
		case errors.Is(err, services.ErrDefaultCategory):
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"message": "Cannot delete default categories",
			})
		case errors.Is(err, services.ErrCategoryInUse):
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"message": "Cannot delete category. " + err.Error(),
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not delete category",
			"error":   err.Error(),
		})
	}
	return c.JSON(fiber.Map{"message": "Category deleted successfully"})
}
