package handlers

import (
	"errors"
	"log"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"kirana/internal/middleware"
	"kirana/internal/repositories"
	"kirana/internal/services"
)

// RoleHandler handles admin role grants and revocations.
type RoleHandler struct {
	authService *services.AuthService
	validate    *validator.Validate
}

// NewRoleHandler creates a new RoleHandler.
func NewRoleHandler(authService *services.AuthService) *RoleHandler {
	return &RoleHandler{
		authService: authService,
		validate:    validator.New(),
	}
}

// RegisterRoutes registers the role routes on the admin group.
func (h *RoleHandler) RegisterRoutes(admin fiber.Router) {
	admin.Get("/roles", h.HandleListAdmins)
	admin.Post("/roles", h.HandleGrantAdmin)
	admin.Delete("/roles/:user_id", h.HandleRevokeAdmin)
}

// adminSummary is the trimmed user shape returned by the roles listing.
type adminSummary struct {
	UserID string `json:"user_id"`
	Name   string `json:"name"`
	Email  string `json:"email"`
}

// HandleListAdmins lists all admin accounts.
func (h *RoleHandler) HandleListAdmins(c *fiber.Ctx) error {
	admins, err := h.authService.ListAdmins()
	if err != nil {
		log.Printf("Error listing admins: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not retrieve admins",
			"error":   err.Error(),
		})
	}

	summaries := make([]adminSummary, 0, len(admins))
	for _, admin := range admins {
		summaries = append(summaries, adminSummary{UserID: admin.ID, Name: admin.Name, Email: admin.Email})
	}
	return c.JSON(summaries)
}

// RoleRequest carries the email of the user to promote.
type RoleRequest struct {
	Email string `json:"email" validate:"required,email"`
}

// HandleGrantAdmin promotes a registered user to admin by email.
func (h *RoleHandler) HandleGrantAdmin(c *fiber.Ctx) error {
	var req RoleRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequestBody(c, err)
	}
	if err := h.validate.Struct(req); err != nil {
		return validationError(c, err)
	}

	if err := h.authService.GrantAdmin(req.Email); err != nil {
		log.Printf("Error granting admin to %s: %v", req.Email, err)
		switch {
		case errors.Is(err, repositories.ErrNotFound):
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"message": "User not found. They must log in to the app at least once before they can be made an admin.",
			})
		case errors.Is(err, services.ErrAlreadyAdmin):
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"message": "User is already an admin.",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not grant admin role",
			"error":   err.Error(),
		})
	}
	return c.JSON(fiber.Map{"message": "Admin added successfully"})
}

// HandleRevokeAdmin removes the admin role from a user.
func (h *RoleHandler) HandleRevokeAdmin(c *fiber.Ctx) error {
	actor := middleware.CurrentUser(c)
	if err := h.authService.RevokeAdmin(actor, c.Params("user_id")); err != nil {
		log.Printf("Error revoking admin from %s: %v", c.Params("user_id"), err)
		switch {
		case errors.Is(err, repositories.ErrNotFound):
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"message": "User not found",
			})
		case errors.Is(err, services.ErrSuperAdmin):
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"message": "Cannot revoke permissions from the Super Admin.",
			})
		case errors.Is(err, services.ErrRevokeSelf):
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"message": "You cannot revoke your own admin permissions.",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not revoke admin role",
			"error":   err.Error(),
		})
	}
	return c.JSON(fiber.Map{"message": "Admin revoked successfully"})
}
