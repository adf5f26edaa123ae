package services_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"kirana/internal/models"
	"kirana/internal/services"
	"kirana/pkg/rabbitmq"
)

// MockOrderRepository is a mock implementation of repositories.OrderRepository
type MockOrderRepository struct {
	mock.Mock
}

func (m *MockOrderRepository) Create(order *models.Order) error {
	args := m.Called(order)
	return args.Error(0)
}

func (m *MockOrderRepository) GetByID(id string) (*models.Order, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Order), args.Error(1)
}

func (m *MockOrderRepository) GetByUserID(userID string) ([]models.Order, error) {
	args := m.Called(userID)
	return args.Get(0).([]models.Order), args.Error(1)
}

func (m *MockOrderRepository) GetAll() ([]models.Order, error) {
	args := m.Called()
	return args.Get(0).([]models.Order), args.Error(1)
}

func (m *MockOrderRepository) Update(order *models.Order) error {
	args := m.Called(order)
	return args.Error(0)
}

func (m *MockOrderRepository) UpdateStatus(id, status string) error {
	args := m.Called(id, status)
	return args.Error(0)
}

func (m *MockOrderRepository) Delete(id string) error {
	args := m.Called(id)
	return args.Error(0)
}

// MockEventPublisher is a mock implementation of services.EventPublisher
type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) PublishOrderEvent(event string, payload interface{}) error {
	args := m.Called(event, payload)
	return args.Error(0)
}

func sampleShopper() *models.User {
	return &models.User{
		ID:          "user_shopper00001",
		Name:        "Shopper",
		Email:       "shopper@example.com",
		PhoneNumber: "+91 98765 43210",
		HomeAddress: "12 Market Road, Kochi",
	}
}

func TestOrderService_PlaceOrder(t *testing.T) {
	orderRepo := new(MockOrderRepository)
	publisher := new(MockEventPublisher)
	orderService := services.NewOrderService(orderRepo, publisher)

	orderRepo.On("Create", mock.AnythingOfType("*models.Order")).Return(nil).Once()
	publisher.On("PublishOrderEvent", rabbitmq.EventOrderCreated, mock.Anything).Return(nil).Once()

	user := sampleShopper()
	order, err := orderService.PlaceOrder(user, []models.Line{
		{ItemID: "item_1", ItemName: "Toor Dal (1kg)", Rate: 150, Quantity: 2, Total: 300},
		{ItemID: "item_2", ItemName: "Turmeric Powder (200g)", Rate: 80, Quantity: 1, Total: 80},
	}, 380)
	assert.NoError(t, err)
	assert.Equal(t, models.StatusPending, order.Status)
	assert.Equal(t, 380.0, order.GrandTotal)
	assert.Equal(t, user.PhoneNumber, order.UserPhone, "contact details are snapshotted onto the order")
	orderRepo.AssertExpectations(t)
	publisher.AssertExpectations(t)
}

func TestOrderService_PlaceOrder_RecomputesDriftedTotals(t *testing.T) {
	orderRepo := new(MockOrderRepository)
	orderService := services.NewOrderService(orderRepo, nil)

	orderRepo.On("Create", mock.AnythingOfType("*models.Order")).Return(nil).Once()

	order, err := orderService.PlaceOrder(sampleShopper(), []models.Line{
		{ItemID: "item_1", Rate: 150, Quantity: 2, Total: 9999}, // client lied
	}, 1)
	assert.NoError(t, err)
	assert.Equal(t, 300.0, order.Items[0].Total)
	assert.Equal(t, 300.0, order.GrandTotal)
}

func TestOrderService_PlaceOrder_Rejections(t *testing.T) {
	orderService := services.NewOrderService(new(MockOrderRepository), nil)
	user := sampleShopper()

	_, err := orderService.PlaceOrder(user, nil, 0)
	assert.ErrorIs(t, err, services.ErrEmptyOrder)

	_, err = orderService.PlaceOrder(user, []models.Line{
		{ItemID: "item_1", Rate: 10, Quantity: 0},
	}, 0)
	assert.ErrorIs(t, err, services.ErrBadQuantity)

	_, err = orderService.PlaceOrder(user, []models.Line{
		{ItemID: "item_1", Rate: 10, Quantity: models.MaxQuantity + 1},
	}, 0)
	assert.ErrorIs(t, err, services.ErrBadQuantity)
}

func TestOrderService_PlaceOrder_NilPublisher(t *testing.T) {
	orderRepo := new(MockOrderRepository)
	orderService := services.NewOrderService(orderRepo, nil)

	orderRepo.On("Create", mock.AnythingOfType("*models.Order")).Return(nil).Once()

	_, err := orderService.PlaceOrder(sampleShopper(), []models.Line{
		{ItemID: "item_1", Rate: 10, Quantity: 1, Total: 10},
	}, 10)
	assert.NoError(t, err, "orders work without a broker")
}

func TestOrderService_GetOrder_Ownership(t *testing.T) {
	orderRepo := new(MockOrderRepository)
	orderService := services.NewOrderService(orderRepo, nil)

	stored := &models.Order{ID: "order_abc123def456", UserID: "user_owner"}
	orderRepo.On("GetByID", "order_abc123def456").Return(stored, nil).Times(3)

	// Owner sees it.
	_, err := orderService.GetOrder(&models.User{ID: "user_owner"}, "order_abc123def456")
	assert.NoError(t, err)

	// Admin sees it.
	_, err = orderService.GetOrder(&models.User{ID: "user_admin", IsAdmin: true}, "order_abc123def456")
	assert.NoError(t, err)

	// Anyone else does not.
	_, err = orderService.GetOrder(&models.User{ID: "user_stranger"}, "order_abc123def456")
	assert.ErrorIs(t, err, services.ErrNotAllowed)
	orderRepo.AssertExpectations(t)
}

func TestOrderService_UpdateOrder_ResetsStatus(t *testing.T) {
	orderRepo := new(MockOrderRepository)
	orderService := services.NewOrderService(orderRepo, nil)

	stored := &models.Order{ID: "order_1", UserID: "user_owner", Status: models.StatusConfirmed}
	orderRepo.On("GetByID", "order_1").Return(stored, nil).Once()
	orderRepo.On("Update", mock.AnythingOfType("*models.Order")).Return(nil).Once()

	order, err := orderService.UpdateOrder(&models.User{ID: "user_owner"}, "order_1", []models.Line{
		{ItemID: "item_1", Rate: 80, Quantity: 3, Total: 240},
	}, 240)
	assert.NoError(t, err)
	assert.Equal(t, models.StatusPending, order.Status, "editing a confirmed order sends it back for review")
	assert.Equal(t, 240.0, order.GrandTotal)
	orderRepo.AssertExpectations(t)
}

func TestOrderService_ConfirmOrder(t *testing.T) {
	orderRepo := new(MockOrderRepository)
	publisher := new(MockEventPublisher)
	orderService := services.NewOrderService(orderRepo, publisher)

	confirmed := &models.Order{ID: "order_1", UserID: "user_owner", Status: models.StatusConfirmed}
	orderRepo.On("UpdateStatus", "order_1", models.StatusConfirmed).Return(nil).Once()
	orderRepo.On("GetByID", "order_1").Return(confirmed, nil).Once()
	publisher.On("PublishOrderEvent", rabbitmq.EventOrderConfirmed, mock.Anything).Return(nil).Once()

	order, err := orderService.ConfirmOrder("order_1")
	assert.NoError(t, err)
	assert.Equal(t, models.StatusConfirmed, order.Status)
	orderRepo.AssertExpectations(t)
	publisher.AssertExpectations(t)
}

func TestOrderService_DeleteOrder(t *testing.T) {
	orderRepo := new(MockOrderRepository)
	orderService := services.NewOrderService(orderRepo, nil)

	stored := &models.Order{ID: "order_1", UserID: "user_owner"}
	orderRepo.On("GetByID", "order_1").Return(stored, nil).Twice()
	orderRepo.On("Delete", "order_1").Return(nil).Once()

	assert.NoError(t, orderService.DeleteOrder(&models.User{ID: "user_owner"}, "order_1"))

	err := orderService.DeleteOrder(&models.User{ID: "user_stranger"}, "order_1")
	assert.ErrorIs(t, err, services.ErrNotAllowed)
	orderRepo.AssertExpectations(t)
}
