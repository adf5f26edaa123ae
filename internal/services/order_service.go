package services

import (
	"fmt"
	"log"
	"math"
	"time"

	"kirana/internal/models"
	"kirana/internal/repositories"
	"kirana/pkg/rabbitmq"
)

// EventPublisher publishes order lifecycle events to the broker. A nil
// publisher disables events without disabling orders.
type EventPublisher interface {
	PublishOrderEvent(event string, payload interface{}) error
}

// OrderService handles order placement, editing, and status transitions.
type OrderService struct {
	orderRepo repositories.OrderRepository
	publisher EventPublisher
}

// NewOrderService creates a new OrderService.
func NewOrderService(orderRepo repositories.OrderRepository, publisher EventPublisher) *OrderService {
	return &OrderService{
		orderRepo: orderRepo,
		publisher: publisher,
	}
}

// PlaceOrder creates a Pending order from the submitted lines. Line totals
// and the grand total are recomputed when they drift; the user's name,
// email, phone, and address are copied onto the order so later profile
// edits never change a placed order.
func (s *OrderService) PlaceOrder(user *models.User, lines []models.Line, grandTotal float64) (*models.Order, error) {
	normalized, total, err := s.normalizeLines(lines, grandTotal)
	if err != nil {
		return nil, err
	}

	order := &models.Order{
		UserID:      user.ID,
		Items:       normalized,
		GrandTotal:  total,
		Status:      models.StatusPending,
		UserName:    user.Name,
		UserEmail:   user.Email,
		UserPhone:   user.PhoneNumber,
		UserAddress: user.HomeAddress,
		CreatedAt:   time.Now().UTC(),
	}
	if err := s.orderRepo.Create(order); err != nil {
		return nil, fmt.Errorf("failed to create order: %w", err)
	}

	s.publish(rabbitmq.EventOrderCreated, order)
	return order, nil
}

// ListUserOrders returns the user's orders, newest first.
func (s *OrderService) ListUserOrders(userID string) ([]models.Order, error) {
	return s.orderRepo.GetByUserID(userID)
}

// ListAllOrders returns every order, newest first.
func (s *OrderService) ListAllOrders() ([]models.Order, error) {
	return s.orderRepo.GetAll()
}

// GetOrder retrieves an order, enforcing that only the owner or an admin
// may see it.
func (s *OrderService) GetOrder(actor *models.User, orderID string) (*models.Order, error) {
	order, err := s.orderRepo.GetByID(orderID)
	if err != nil {
		return nil, err
	}
	if order.UserID != actor.ID && !actor.IsAdmin {
		return nil, ErrNotAllowed
	}
	return order, nil
}

// UpdateOrder replaces the items and grand total of an existing order and
// resets its status to Pending. Only the owner or an admin may edit.
func (s *OrderService) UpdateOrder(actor *models.User, orderID string, lines []models.Line, grandTotal float64) (*models.Order, error) {
	order, err := s.GetOrder(actor, orderID)
	if err != nil {
		return nil, err
	}

	normalized, total, err := s.normalizeLines(lines, grandTotal)
	if err != nil {
		return nil, err
	}

	order.Items = normalized
	order.GrandTotal = total
	order.Status = models.StatusPending
	if err := s.orderRepo.Update(order); err != nil {
		return nil, fmt.Errorf("failed to update order: %w", err)
	}
	return order, nil
}

// DeleteOrder removes an order. Only the owner or an admin may delete.
func (s *OrderService) DeleteOrder(actor *models.User, orderID string) error {
	if _, err := s.GetOrder(actor, orderID); err != nil {
		return err
	}
	return s.orderRepo.Delete(orderID)
}

// ConfirmOrder moves an order to Order Confirmed and publishes the
// confirmation event.
func (s *OrderService) ConfirmOrder(orderID string) (*models.Order, error) {
	if err := s.orderRepo.UpdateStatus(orderID, models.StatusConfirmed); err != nil {
		return nil, err
	}
	order, err := s.orderRepo.GetByID(orderID)
	if err != nil {
		return nil, err
	}
	s.publish(rabbitmq.EventOrderConfirmed, order)
	return order, nil
}

func (s *OrderService) normalizeLines(lines []models.Line, grandTotal float64) ([]models.Line, float64, error) {
	if len(lines) == 0 {
		return nil, 0, ErrEmptyOrder
	}
	if len(lines) > models.MaxLinesPerOrder {
		return nil, 0, fmt.Errorf("order has %d lines, limit is %d: %w", len(lines), models.MaxLinesPerOrder, ErrTooManyLines)
	}

	normalized := make([]models.Line, len(lines))
	for i, line := range lines {
		if line.Quantity <= 0 || line.Quantity > models.MaxQuantity {
			return nil, 0, fmt.Errorf("line %s has quantity %v: %w", line.ItemID, line.Quantity, ErrBadQuantity)
		}
		line.ItemName = sanitizeString(line.ItemName, 200)
		line.NormalizeTotal()
		normalized[i] = line
	}

	expected := models.SumLineTotals(normalized)
	if math.Abs(grandTotal-expected) > 0.01 {
		grandTotal = expected
	}
	return normalized, models.Round2(grandTotal), nil
}

func (s *OrderService) publish(event string, order *models.Order) {
	if s.publisher == nil {
		return
	}
	payload := map[string]interface{}{
		"order_id":    order.ID,
		"user_id":     order.UserID,
		"status":      order.Status,
		"grand_total": order.GrandTotal,
	}
	if err := s.publisher.PublishOrderEvent(event, payload); err != nil {
		log.Printf("Warning: failed to publish %s for order %s: %v", event, order.ID, err)
	}
}
