package services_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"kirana/internal/models"
	"kirana/internal/services"
	"kirana/pkg/cache"
)

// MockItemRepository is a mock implementation of repositories.ItemRepository
type MockItemRepository struct {
	mock.Mock
}

func (m *MockItemRepository) GetPage(offset, limit int) ([]models.Item, error) {
	args := m.Called(offset, limit)
	return args.Get(0).([]models.Item), args.Error(1)
}

func (m *MockItemRepository) GetByID(id string) (*models.Item, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Item), args.Error(1)
}

func (m *MockItemRepository) Create(item *models.Item) error {
	args := m.Called(item)
	return args.Error(0)
}

func (m *MockItemRepository) Update(item *models.Item) error {
	args := m.Called(item)
	return args.Error(0)
}

func (m *MockItemRepository) Delete(id string) error {
	args := m.Called(id)
	return args.Error(0)
}

func (m *MockItemRepository) Count() (int64, error) {
	args := m.Called()
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockItemRepository) CountByCategory(category string) (int64, error) {
	args := m.Called(category)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockItemRepository) DistinctCategories() ([]string, error) {
	args := m.Called()
	return args.Get(0).([]string), args.Error(1)
}

// MockCategoryRepository is a mock implementation of repositories.CategoryRepository
type MockCategoryRepository struct {
	mock.Mock
}

func (m *MockCategoryRepository) GetAll() ([]models.Category, error) {
	args := m.Called()
	return args.Get(0).([]models.Category), args.Error(1)
}

func (m *MockCategoryRepository) GetByID(id string) (*models.Category, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Category), args.Error(1)
}

func (m *MockCategoryRepository) GetByName(name string) (*models.Category, error) {
	args := m.Called(name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Category), args.Error(1)
}

func (m *MockCategoryRepository) Create(category *models.Category) error {
	args := m.Called(category)
	return args.Error(0)
}

func (m *MockCategoryRepository) Delete(id string) error {
	args := m.Called(id)
	return args.Error(0)
}

func newCatalogFixture() (*MockItemRepository, *MockCategoryRepository, *services.CatalogService) {
	itemRepo := new(MockItemRepository)
	categoryRepo := new(MockCategoryRepository)
	return itemRepo, categoryRepo, services.NewCatalogService(itemRepo, categoryRepo, cache.NewMemory())
}

func TestCatalogService_ListItems_CachesPages(t *testing.T) {
	itemRepo, _, catalogService := newCatalogFixture()
	ctx := context.Background()

	page := []models.Item{{ID: "item_aaa111bbb222", Name: "Toor Dal (1kg)", Rate: 150}}
	itemRepo.On("GetPage", 0, 10).Return(page, nil).Once()

	items, err := catalogService.ListItems(ctx, 1, 10)
	assert.NoError(t, err)
	assert.Len(t, items, 1)

	// Second call must come from cache, not the repository.
	items, err = catalogService.ListItems(ctx, 1, 10)
	assert.NoError(t, err)
	assert.Equal(t, "Toor Dal (1kg)", items[0].Name)
	itemRepo.AssertNumberOfCalls(t, "GetPage", 1)
}

func TestCatalogService_ListItems_ClampsPagination(t *testing.T) {
	itemRepo, _, catalogService := newCatalogFixture()

	itemRepo.On("GetPage", 0, 10).Return([]models.Item{}, nil).Once()
	_, err := catalogService.ListItems(context.Background(), -3, 0)
	assert.NoError(t, err)

	itemRepo.On("GetPage", 500, 500).Return([]models.Item{}, nil).Once()
	_, err = catalogService.ListItems(context.Background(), 2, 9999)
	assert.NoError(t, err)
	itemRepo.AssertExpectations(t)
}

func TestCatalogService_ListCategoryNames(t *testing.T) {
	_, categoryRepo, catalogService := newCatalogFixture()

	categoryRepo.On("GetAll").Return([]models.Category{
		{Name: "Spices"}, {Name: "Pulses"}, {Name: "Rice"},
	}, nil).Once()

	names, err := catalogService.ListCategoryNames(context.Background())
	assert.NoError(t, err)
	assert.Equal(t, []string{"All", "Pulses", "Rice", "Spices"}, names)
}

func TestCatalogService_ListCategoryNames_FallsBackToItems(t *testing.T) {
	itemRepo, categoryRepo, catalogService := newCatalogFixture()

	categoryRepo.On("GetAll").Return([]models.Category{}, nil).Once()
	itemRepo.On("DistinctCategories").Return([]string{"Snacks", "Dairy"}, nil).Once()

	names, err := catalogService.ListCategoryNames(context.Background())
	assert.NoError(t, err)
	assert.Equal(t, []string{"All", "Dairy", "Snacks"}, names)
}

func TestCatalogService_CreateItem(t *testing.T) {
	itemRepo, _, catalogService := newCatalogFixture()

	itemRepo.On("Create", mock.AnythingOfType("*models.Item")).Return(nil).Once()
	err := catalogService.CreateItem(context.Background(), &models.Item{
		Name: "Moong Dal (500g)", Rate: 85, Category: "Pulses",
		ImageURL: "https://example.com/moong.png",
	})
	assert.NoError(t, err)

	// javascript: URLs never reach the repository
	err = catalogService.CreateItem(context.Background(), &models.Item{
		Name: "Bad", Rate: 1, ImageURL: "javascript:alert(1)",
	})
	assert.ErrorIs(t, err, services.ErrBadImageURL)
	itemRepo.AssertExpectations(t)
}

func TestCatalogService_CreateItem_InvalidatesListCache(t *testing.T) {
	itemRepo, _, catalogService := newCatalogFixture()
	ctx := context.Background()

	itemRepo.On("GetPage", 0, 10).Return([]models.Item{}, nil).Twice()
	itemRepo.On("Create", mock.AnythingOfType("*models.Item")).Return(nil).Once()

	_, err := catalogService.ListItems(ctx, 1, 10)
	assert.NoError(t, err)

	err = catalogService.CreateItem(ctx, &models.Item{Name: "Jeera", Rate: 60, ImageURL: "https://example.com/j.png"})
	assert.NoError(t, err)

	// Cache was cleared, so the repository is hit again.
	_, err = catalogService.ListItems(ctx, 1, 10)
	assert.NoError(t, err)
	itemRepo.AssertExpectations(t)
}

func TestCatalogService_CreateCategory(t *testing.T) {
	_, categoryRepo, catalogService := newCatalogFixture()
	ctx := context.Background()

	categoryRepo.On("GetByName", "Organic").Return(nil, notFoundErr("category")).Once()
	categoryRepo.On("Create", mock.AnythingOfType("*models.Category")).Return(nil).Once()

	category, err := catalogService.CreateCategory(ctx, "  Organic ")
	assert.NoError(t, err)
	assert.Equal(t, "Organic", category.Name)
	assert.False(t, category.IsDefault)

	// Duplicate names are rejected case-insensitively by GetByName.
	categoryRepo.On("GetByName", "organic").Return(&models.Category{Name: "Organic"}, nil).Once()
	_, err = catalogService.CreateCategory(ctx, "organic")
	assert.ErrorIs(t, err, services.ErrDuplicate)

	// Names outside the allowed character set are rejected.
	_, err = catalogService.CreateCategory(ctx, "<script>")
	assert.ErrorIs(t, err, services.ErrBadCategoryName)
	categoryRepo.AssertExpectations(t)
}

func TestCatalogService_DeleteCategory(t *testing.T) {
	itemRepo, categoryRepo, catalogService := newCatalogFixture()
	ctx := context.Background()

	// Default categories are protected.
	categoryRepo.On("GetByID", "category_default00001").Return(&models.Category{ID: "category_default00001", Name: "Pulses", IsDefault: true}, nil).Once()
	err := catalogService.DeleteCategory(ctx, "category_default00001")
	assert.ErrorIs(t, err, services.ErrDefaultCategory)

	// Categories with items assigned are protected.
	categoryRepo.On("GetByID", "category_inuse000001").Return(&models.Category{ID: "category_inuse000001", Name: "Snacks"}, nil).Once()
	itemRepo.On("CountByCategory", "Snacks").Return(int64(4), nil).Once()
	err = catalogService.DeleteCategory(ctx, "category_inuse000001")
	assert.ErrorIs(t, err, services.ErrCategoryInUse)

	// Empty non-default categories go away.
	categoryRepo.On("GetByID", "category_empty000001").Return(&models.Category{ID: "category_empty000001", Name: "Seasonal"}, nil).Once()
	itemRepo.On("CountByCategory", "Seasonal").Return(int64(0), nil).Once()
	categoryRepo.On("Delete", "category_empty000001").Return(nil).Once()
	assert.NoError(t, catalogService.DeleteCategory(ctx, "category_empty000001"))
	categoryRepo.AssertExpectations(t)
	itemRepo.AssertExpectations(t)
}

func TestCatalogService_SeedSampleData(t *testing.T) {
	itemRepo, categoryRepo, catalogService := newCatalogFixture()
	ctx := context.Background()

	itemRepo.On("Count").Return(int64(0), nil).Once()
	itemRepo.On("Create", mock.AnythingOfType("*models.Item")).Return(nil).Times(3)
	categoryRepo.On("GetByName", mock.AnythingOfType("string")).Return(nil, notFoundErr("category")).Times(3)
	categoryRepo.On("Create", mock.AnythingOfType("*models.Category")).Return(nil).Times(3)

	message, err := catalogService.SeedSampleData(ctx)
	assert.NoError(t, err)
	assert.Contains(t, message, "seeded 3 items")

	// A non-empty catalog is left alone.
	itemRepo.On("Count").Return(int64(3), nil).Once()
	message, err = catalogService.SeedSampleData(ctx)
	assert.NoError(t, err)
	assert.Contains(t, message, "Skipping seed")
	itemRepo.AssertExpectations(t)
	categoryRepo.AssertExpectations(t)
}
