package services

import (
	"errors"
	"fmt"

	"kirana/internal/models"
	"kirana/internal/repositories"
)

// CartService handles the server side of cart reconciliation: wholesale
// replace-style saves with no merging, so the most recent save from any
// session wins.
type CartService struct {
	cartRepo repositories.CartRepository
}

// NewCartService creates a new CartService.
func NewCartService(cartRepo repositories.CartRepository) *CartService {
	return &CartService{cartRepo: cartRepo}
}

// GetCart returns the user's cart, or nil when none has been saved yet.
func (s *CartService) GetCart(userID string) (*models.Cart, error) {
	cart, err := s.cartRepo.GetByUserID(userID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return cart, nil
}

// ReplaceCart overwrites the user's cart with lines, normalizing each line
// total. An empty list is a valid save; it just empties the cart.
func (s *CartService) ReplaceCart(userID string, lines []models.Line) (*models.Cart, error) {
	if len(lines) > models.MaxLinesPerCart {
		return nil, fmt.Errorf("cart has %d lines, limit is %d: %w", len(lines), models.MaxLinesPerCart, ErrTooManyLines)
	}

	normalized := make([]models.Line, len(lines))
	for i, line := range lines {
		if line.Quantity <= 0 {
			return nil, fmt.Errorf("line %s: %w", line.ItemID, ErrBadQuantity)
		}
		line.ItemName = sanitizeString(line.ItemName, 200)
		line.NormalizeTotal()
		normalized[i] = line
	}

	cart := &models.Cart{UserID: userID, Items: normalized}
	if err := s.cartRepo.Upsert(cart); err != nil {
		return nil, err
	}
	return cart, nil
}

// ClearCart drops the user's cart document.
func (s *CartService) ClearCart(userID string) error {
	return s.cartRepo.DeleteByUserID(userID)
}
