package repositories

import "kirana/internal/models"

// ItemRepository defines the interface for catalog item data access.
type ItemRepository interface {
	GetPage(offset, limit int) ([]models.Item, error)
	GetByID(id string) (*models.Item, error)
	Create(item *models.Item) error
	Update(item *models.Item) error
	Delete(id string) error
	Count() (int64, error)
	CountByCategory(category string) (int64, error)
	DistinctCategories() ([]string, error)
}

// CategoryRepository defines the interface for category data access.
type CategoryRepository interface {
	GetAll() ([]models.Category, error)
	GetByID(id string) (*models.Category, error)
	GetByName(name string) (*models.Category, error)
	Create(category *models.Category) error
	Delete(id string) error
}
