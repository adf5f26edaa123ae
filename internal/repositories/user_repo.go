package repositories

import "kirana/internal/models"

// UserRepository defines the interface for user data access.
type UserRepository interface {
	Create(user *models.User) error
	Update(user *models.User) error
	GetByID(id string) (*models.User, error)
	GetByEmail(email string) (*models.User, error)
	ListAdmins() ([]models.User, error)
	SetAdmin(id string, admin bool) error
}

// SessionRepository defines the interface for login session data access.
type SessionRepository interface {
	Create(session *models.Session) error
	GetByToken(token string) (*models.Session, error)
	Delete(token string) error
	DeleteExpired() error
}
