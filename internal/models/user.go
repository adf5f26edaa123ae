package models

import "time"

// User represents a customer or admin account. Accounts are created on first
// Google sign-in; there is no password, authentication is session-based.
type User struct {
	ID          string    `json:"user_id" gorm:"column:user_id;primaryKey;type:varchar(50)"`
	Email       string    `json:"email" gorm:"uniqueIndex;type:varchar(255)" validate:"required,email"`
	Name        string    `json:"name" validate:"max=500"`
	Picture     string    `json:"picture"`
	PhoneNumber string    `json:"phone_number"`
	HomeAddress string    `json:"home_address"`
	Geolocation string    `json:"geolocation"` // free-text "lat, lng"
	IsAdmin     bool      `json:"is_admin"`
	CreatedAt   time.Time `json:"created_at"`
}

// Session is a server-side login session, referenced by the session_token
// cookie (or a Bearer token for non-browser clients).
type Session struct {
	Token     string    `json:"session_token" gorm:"column:session_token;primaryKey;type:varchar(100)"`
	UserID    string    `json:"user_id" gorm:"index;type:varchar(50)"`
	ExpiresAt time.Time `json:"expires_at"`
	CreatedAt time.Time `json:"created_at"`
}

// Expired reports whether the session is past its expiry.
func (s *Session) Expired() bool {
	return time.Now().After(s.ExpiresAt)
}
