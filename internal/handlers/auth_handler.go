package handlers

import (
	"errors"
	"log"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"kirana/internal/middleware"
	"kirana/internal/services"
)

// AuthHandler handles HTTP requests for sign-in, sessions, and profiles.
type AuthHandler struct {
	authService   *services.AuthService
	validate      *validator.Validate
	secureCookies bool
}

// NewAuthHandler creates a new AuthHandler. secureCookies should be true
// everywhere except plain-HTTP local development.
func NewAuthHandler(authService *services.AuthService, secureCookies bool) *AuthHandler {
	return &AuthHandler{
		authService:   authService,
		validate:      validator.New(),
		secureCookies: secureCookies,
	}
}

// RegisterPublicRoutes registers the sign-in endpoint. It must be called
// before the session middleware is mounted on the API group.
func (h *AuthHandler) RegisterPublicRoutes(public fiber.Router) {
	public.Post("/auth/session", h.HandleCreateSession)
}

// RegisterProtectedRoutes registers the session-scoped auth routes.
func (h *AuthHandler) RegisterProtectedRoutes(protected fiber.Router) {
	protected.Get("/auth/me", h.HandleMe)
	protected.Post("/auth/logout", h.HandleLogout)
	protected.Get("/user/profile", h.HandleMe)
	protected.Put("/user/profile", h.HandleUpdateProfile)
}

// SessionRequest carries the Google ID token obtained by the SPA.
type SessionRequest struct {
	IDToken string `json:"id_token" validate:"required"`
}

// HandleCreateSession exchanges a Google ID token for a session cookie.
func (h *AuthHandler) HandleCreateSession(c *fiber.Ctx) error {
	var req SessionRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequestBody(c, err)
	}
	if err := h.validate.Struct(req); err != nil {
		return validationError(c, err)
	}

	user, session, err := h.authService.CreateSession(req.IDToken)
	if err != nil {
		log.Printf("Error creating session: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Authentication failed",
			"error":   err.Error(),
		})
	}

	c.Cookie(&fiber.Cookie{
		Name:     middleware.SessionCookie,
		Value:    session.Token,
		Path:     "/",
		MaxAge:   int(h.authService.SessionTTL().Seconds()),
		HTTPOnly: true,
		Secure:   h.secureCookies,
		SameSite: fiber.CookieSameSiteNoneMode,
	})

	return c.JSON(fiber.Map{
		"user":          user,
		"session_token": session.Token,
	})
}

// HandleMe returns the authenticated user.
func (h *AuthHandler) HandleMe(c *fiber.Ctx) error {
	return c.JSON(middleware.CurrentUser(c))
}

// HandleLogout deletes the session and clears the cookie.
func (h *AuthHandler) HandleLogout(c *fiber.Ctx) error {
	if token := c.Cookies(middleware.SessionCookie); token != "" {
		if err := h.authService.Logout(token); err != nil {
			log.Printf("Error deleting session on logout: %v", err)
		}
	}

	c.Cookie(&fiber.Cookie{
		Name:     middleware.SessionCookie,
		Value:    "",
		Path:     "/",
		Expires:  time.Now().Add(-time.Hour),
		HTTPOnly: true,
		Secure:   h.secureCookies,
		SameSite: fiber.CookieSameSiteNoneMode,
	})
	return c.JSON(fiber.Map{"message": "Logged out"})
}

// ProfileUpdateRequest carries the contact fields required for checkout.
type ProfileUpdateRequest struct {
	PhoneNumber string `json:"phone_number" validate:"required,min=7,max=20"`
	HomeAddress string `json:"home_address" validate:"required,min=5,max=1000"`
	Geolocation string `json:"geolocation" validate:"max=500"`
}

// HandleUpdateProfile updates the user's phone, address, and geolocation.
func (h *AuthHandler) HandleUpdateProfile(c *fiber.Ctx) error {
	var req ProfileUpdateRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequestBody(c, err)
	}
	if err := h.validate.Struct(req); err != nil {
		return validationError(c, err)
	}

	user := middleware.CurrentUser(c)
	updated, err := h.authService.UpdateProfile(user.ID, req.PhoneNumber, req.HomeAddress, req.Geolocation)
	if err != nil {
		log.Printf("Error updating profile for user %s: %v", user.ID, err)
		if errors.Is(err, services.ErrInvalidPhone) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"message": "Invalid phone number format",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not update profile",
			"error":   err.Error(),
		})
	}
	return c.JSON(updated)
}
