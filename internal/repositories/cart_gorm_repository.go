package repositories

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"kirana/internal/models"
)

// GORMCartRepository is a GORM implementation of CartRepository.
type GORMCartRepository struct {
	db *gorm.DB
}

// NewGORMCartRepository creates a new instance of GORMCartRepository.
func NewGORMCartRepository(db *gorm.DB) *GORMCartRepository {
	return &GORMCartRepository{db: db}
}

// GetByUserID retrieves a user's cart.
func (r *GORMCartRepository) GetByUserID(userID string) (*models.Cart, error) {
	var cart models.Cart
	if err := r.db.First(&cart, "user_id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("cart for user %s: %w", userID, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get cart for user %s: %w", userID, err)
	}
	return &cart, nil
}

// Upsert replaces the user's cart wholesale, creating it on first save.
// Two concurrent saves do not merge; the later one wins.
func (r *GORMCartRepository) Upsert(cart *models.Cart) error {
	cart.UpdatedAt = time.Now().UTC()

	var existing models.Cart
	err := r.db.First(&existing, "user_id = ?", cart.UserID).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		if cart.ID == "" {
			cart.ID = models.NewID("cart")
		}
		if err := r.db.Create(cart).Error; err != nil {
			return fmt.Errorf("failed to create cart: %w", err)
		}
	case err != nil:
		return fmt.Errorf("failed to look up cart: %w", err)
	default:
		cart.ID = existing.ID
		if err := r.db.Save(cart).Error; err != nil {
			return fmt.Errorf("failed to update cart: %w", err)
		}
	}
	return nil
}

// DeleteByUserID drops a user's cart. Deleting a missing cart is not an
// error; clearing must be idempotent.
func (r *GORMCartRepository) DeleteByUserID(userID string) error {
	if err := r.db.Delete(&models.Cart{}, "user_id = ?", userID).Error; err != nil {
		return fmt.Errorf("failed to delete cart for user %s: %w", userID, err)
	}
	return nil
}
