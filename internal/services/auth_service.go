package services

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"kirana/internal/models"
	"kirana/internal/repositories"
)

// AuthService handles Google sign-in, session lifecycle, profile updates,
// and admin role management.
type AuthService struct {
	userRepo    repositories.UserRepository
	sessionRepo repositories.SessionRepository
	verifier    TokenVerifier
	superAdmins map[string]bool
	sessionTTL  time.Duration
}

// NewAuthService creates a new AuthService. superAdminEmails are accounts
// that are always admins and whose admin role can never be revoked.
func NewAuthService(userRepo repositories.UserRepository, sessionRepo repositories.SessionRepository, verifier TokenVerifier, superAdminEmails []string) *AuthService {
	supers := make(map[string]bool, len(superAdminEmails))
	for _, email := range superAdminEmails {
		email = strings.ToLower(strings.TrimSpace(email))
		if email != "" {
			supers[email] = true
		}
	}
	return &AuthService{
		userRepo:    userRepo,
		sessionRepo: sessionRepo,
		verifier:    verifier,
		superAdmins: supers,
		sessionTTL:  7 * 24 * time.Hour,
	}
}

// SessionTTL returns how long a new session remains valid.
func (s *AuthService) SessionTTL() time.Duration {
	return s.sessionTTL
}

// IsSuperAdmin reports whether email belongs to the super-admin list.
func (s *AuthService) IsSuperAdmin(email string) bool {
	return s.superAdmins[strings.ToLower(email)]
}

// CreateSession verifies a Google ID token, upserts the user it identifies,
// and opens a new login session. Name and picture are refreshed from Google
// on every sign-in; the admin flag is never downgraded here.
func (s *AuthService) CreateSession(idToken string) (*models.User, *models.Session, error) {
	claims, err := s.verifier.Verify(idToken)
	if err != nil {
		return nil, nil, fmt.Errorf("authentication failed: %w", err)
	}

	user, err := s.userRepo.GetByEmail(claims.Email)
	switch {
	case errors.Is(err, repositories.ErrNotFound):
		user = &models.User{
			Email:     claims.Email,
			Name:      sanitizeString(claims.Name, maxStringLength),
			Picture:   claims.Picture,
			IsAdmin:   s.IsSuperAdmin(claims.Email),
			CreatedAt: time.Now().UTC(),
		}
		if err := s.userRepo.Create(user); err != nil {
			return nil, nil, fmt.Errorf("failed to create user: %w", err)
		}
	case err != nil:
		return nil, nil, fmt.Errorf("failed to look up user: %w", err)
	default:
		user.Name = sanitizeString(claims.Name, maxStringLength)
		user.Picture = claims.Picture
		user.IsAdmin = user.IsAdmin || s.IsSuperAdmin(claims.Email)
		if err := s.userRepo.Update(user); err != nil {
			return nil, nil, fmt.Errorf("failed to refresh user: %w", err)
		}
	}

	session := &models.Session{
		Token:     models.NewSessionToken(),
		UserID:    user.ID,
		ExpiresAt: time.Now().UTC().Add(s.sessionTTL),
		CreatedAt: time.Now().UTC(),
	}
	if err := s.sessionRepo.Create(session); err != nil {
		return nil, nil, fmt.Errorf("failed to create session: %w", err)
	}
	return user, session, nil
}

// GetUserBySession resolves a session token to its user. Expired sessions
// are deleted on sight.
func (s *AuthService) GetUserBySession(token string) (*models.User, error) {
	session, err := s.sessionRepo.GetByToken(token)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrInvalidSession
		}
		return nil, fmt.Errorf("failed to look up session: %w", err)
	}

	if session.Expired() {
		_ = s.sessionRepo.Delete(token)
		return nil, ErrSessionExpired
	}

	user, err := s.userRepo.GetByID(session.UserID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrInvalidSession
		}
		return nil, fmt.Errorf("failed to look up session user: %w", err)
	}
	return user, nil
}

// Logout deletes a session. Unknown tokens are ignored.
func (s *AuthService) Logout(token string) error {
	return s.sessionRepo.Delete(token)
}

// DeleteExpiredSessions purges sessions past their expiry.
func (s *AuthService) DeleteExpiredSessions() error {
	return s.sessionRepo.DeleteExpired()
}

// UpdateProfile sets the contact fields required before an order can be
// placed.
func (s *AuthService) UpdateProfile(userID, phone, address, geolocation string) (*models.User, error) {
	phone = sanitizeString(phone, 20)
	if !validPhone(phone) {
		return nil, ErrInvalidPhone
	}

	user, err := s.userRepo.GetByID(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}

	user.PhoneNumber = phone
	user.HomeAddress = sanitizeString(address, maxAddressLength)
	user.Geolocation = sanitizeString(geolocation, maxStringLength)
	if err := s.userRepo.Update(user); err != nil {
		return nil, fmt.Errorf("failed to update profile: %w", err)
	}
	return user, nil
}

// ListAdmins returns all users holding the admin role.
func (s *AuthService) ListAdmins() ([]models.User, error) {
	return s.userRepo.ListAdmins()
}

// GrantAdmin makes the user registered under email an admin. The user must
// have signed in at least once.
func (s *AuthService) GrantAdmin(email string) error {
	user, err := s.userRepo.GetByEmail(email)
	if err != nil {
		return fmt.Errorf("failed to look up user %s: %w", email, err)
	}
	if user.IsAdmin {
		return ErrAlreadyAdmin
	}
	return s.userRepo.SetAdmin(user.ID, true)
}

// RevokeAdmin removes the admin role from targetID. Super admins and the
// acting admin themselves are protected.
func (s *AuthService) RevokeAdmin(actor *models.User, targetID string) error {
	target, err := s.userRepo.GetByID(targetID)
	if err != nil {
		return fmt.Errorf("failed to look up user %s: %w", targetID, err)
	}
	if s.IsSuperAdmin(target.Email) {
		return ErrSuperAdmin
	}
	if target.ID == actor.ID {
		return ErrRevokeSelf
	}
	return s.userRepo.SetAdmin(target.ID, false)
}
