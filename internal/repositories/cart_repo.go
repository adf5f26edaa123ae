package repositories

import "kirana/internal/models"

// CartRepository defines the interface for cart data access. Carts are keyed
// by user; saves replace the stored line list wholesale.
type CartRepository interface {
	GetByUserID(userID string) (*models.Cart, error)
	Upsert(cart *models.Cart) error
	DeleteByUserID(userID string) error
}

// OrderRepository defines the interface for order data access.
type OrderRepository interface {
	Create(order *models.Order) error
	GetByID(id string) (*models.Order, error)
	GetByUserID(userID string) ([]models.Order, error)
	GetAll() ([]models.Order, error)
	Update(order *models.Order) error
	UpdateStatus(id, status string) error
	Delete(id string) error
}
