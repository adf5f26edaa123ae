package services

import "errors"

// Sentinel errors handlers branch on to pick a status code. They are wrapped
// with context at the point of failure; use errors.Is to test.
var (
	ErrInvalidSession  = errors.New("invalid session")
	ErrSessionExpired  = errors.New("session expired")
	ErrInvalidPhone    = errors.New("invalid phone number format")
	ErrBadImageURL     = errors.New("invalid image URL format")
	ErrBadCategoryName = errors.New("category name contains invalid characters")
	ErrDuplicate       = errors.New("already exists")
	ErrDefaultCategory = errors.New("cannot delete default categories")
	ErrCategoryInUse   = errors.New("category has items assigned")
	ErrAlreadyAdmin    = errors.New("user is already an admin")
	ErrSuperAdmin      = errors.New("cannot revoke permissions from the super admin")
	ErrRevokeSelf      = errors.New("cannot revoke your own admin permissions")
	ErrEmptyOrder      = errors.New("order must contain at least one item")
	ErrTooManyLines    = errors.New("too many lines")
	ErrBadQuantity     = errors.New("quantity must be positive")
	ErrNotAllowed      = errors.New("not authorized")
)
