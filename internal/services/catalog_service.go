package services

import (
	"context"
	"fmt"
	"log"
	"sort"
	"time"

	"kirana/internal/models"
	"kirana/internal/repositories"
	"kirana/pkg/cache"
)

const catalogCacheTTL = 5 * time.Minute

// CatalogService handles items and categories: public listings with a
// read-through cache, and the admin CRUD that invalidates it.
type CatalogService struct {
	itemRepo     repositories.ItemRepository
	categoryRepo repositories.CategoryRepository
	cache        cache.Cache
}

// NewCatalogService creates a new CatalogService.
func NewCatalogService(itemRepo repositories.ItemRepository, categoryRepo repositories.CategoryRepository, c cache.Cache) *CatalogService {
	return &CatalogService{
		itemRepo:     itemRepo,
		categoryRepo: categoryRepo,
		cache:        c,
	}
}

// ListItems returns a page of catalog items. Page numbers start at 1; limit
// is clamped to [1, 500]. Results are cached per page.
func (s *CatalogService) ListItems(ctx context.Context, page, limit int) ([]models.Item, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 10
	}
	if limit > 500 {
		limit = 500
	}

	cacheKey := fmt.Sprintf("items_page_%d_limit_%d", page, limit)
	var items []models.Item
	if hit, err := s.cache.Get(ctx, cacheKey, &items); err == nil && hit {
		return items, nil
	}

	items, err := s.itemRepo.GetPage((page-1)*limit, limit)
	if err != nil {
		return nil, err
	}
	if err := s.cache.Set(ctx, cacheKey, items, catalogCacheTTL); err != nil {
		log.Printf("Failed to cache %s: %v", cacheKey, err)
	}
	return items, nil
}

// ListCategoryNames returns the storefront category filter list: "All"
// followed by sorted category names. When no categories exist yet the
// distinct categories on items are used instead.
func (s *CatalogService) ListCategoryNames(ctx context.Context) ([]string, error) {
	const cacheKey = "categories_list"
	var names []string
	if hit, err := s.cache.Get(ctx, cacheKey, &names); err == nil && hit {
		return names, nil
	}

	categories, err := s.categoryRepo.GetAll()
	if err != nil {
		return nil, err
	}
	names = names[:0]
	for _, c := range categories {
		names = append(names, c.Name)
	}
	if len(names) == 0 {
		names, err = s.itemRepo.DistinctCategories()
		if err != nil {
			return nil, err
		}
	}
	sort.Strings(names)
	result := append([]string{"All"}, names...)

	if err := s.cache.Set(ctx, cacheKey, result, catalogCacheTTL); err != nil {
		log.Printf("Failed to cache %s: %v", cacheKey, err)
	}
	return result, nil
}

// CreateItem creates a catalog item and invalidates the cache.
func (s *CatalogService) CreateItem(ctx context.Context, item *models.Item) error {
	if !validImageURL(item.ImageURL) {
		return ErrBadImageURL
	}
	item.Name = sanitizeString(item.Name, 200)
	item.Category = sanitizeString(item.Category, 100)
	if err := s.itemRepo.Create(item); err != nil {
		return err
	}
	s.clearCache(ctx)
	return nil
}

// UpdateItem replaces an item's mutable fields and invalidates the cache.
func (s *CatalogService) UpdateItem(ctx context.Context, id string, updated *models.Item) (*models.Item, error) {
	if !validImageURL(updated.ImageURL) {
		return nil, ErrBadImageURL
	}

	item, err := s.itemRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	item.Name = sanitizeString(updated.Name, 200)
	item.Rate = updated.Rate
	item.ImageURL = updated.ImageURL
	item.Category = sanitizeString(updated.Category, 100)
	if err := s.itemRepo.Update(item); err != nil {
		return nil, err
	}
	s.clearCache(ctx)
	return item, nil
}

// DeleteItem deletes an item and invalidates the cache.
func (s *CatalogService) DeleteItem(ctx context.Context, id string) error {
	if err := s.itemRepo.Delete(id); err != nil {
		return err
	}
	s.clearCache(ctx)
	return nil
}

// ListCategories returns full category records for the admin console.
func (s *CatalogService) ListCategories() ([]models.Category, error) {
	return s.categoryRepo.GetAll()
}

// CreateCategory creates a non-default category. Names are sanitized and
// must be unique case-insensitively.
func (s *CatalogService) CreateCategory(ctx context.Context, name string) (*models.Category, error) {
	name = sanitizeString(name, 100)
	if !categoryNameRegex.MatchString(name) {
		return nil, ErrBadCategoryName
	}

	if _, err := s.categoryRepo.GetByName(name); err == nil {
		return nil, fmt.Errorf("category %q: %w", name, ErrDuplicate)
	}

	category := &models.Category{Name: name}
	if err := s.categoryRepo.Create(category); err != nil {
		return nil, err
	}
	s.clearCache(ctx)
	return category, nil
}

// DeleteCategory deletes a category unless it is a default one or still has
// items assigned.
func (s *CatalogService) DeleteCategory(ctx context.Context, id string) error {
	category, err := s.categoryRepo.GetByID(id)
	if err != nil {
		return err
	}
	if category.IsDefault {
		return ErrDefaultCategory
	}

	count, err := s.itemRepo.CountByCategory(category.Name)
	if err != nil {
		return err
	}
	if count > 0 {
		return fmt.Errorf("%d items are using this category: %w", count, ErrCategoryInUse)
	}

	if err := s.categoryRepo.Delete(id); err != nil {
		return err
	}
	s.clearCache(ctx)
	return nil
}

// SeedSampleData loads a small starter catalog when the item table is
// empty, plus the default categories. Safe to call repeatedly.
func (s *CatalogService) SeedSampleData(ctx context.Context) (string, error) {
	count, err := s.itemRepo.Count()
	if err != nil {
		return "", err
	}
	if count > 0 {
		return fmt.Sprintf("Items already exist (%d items). Skipping seed.", count), nil
	}

	sampleItems := []models.Item{
		{Name: "Toor Dal (1kg)", Rate: 150.00, Category: "Pulses", ImageURL: "https://images.unsplash.com/photo-1585996340258-c90e51a42c15?w=400"},
		{Name: "Basmati Rice (5kg)", Rate: 450.00, Category: "Rice", ImageURL: "https://images.unsplash.com/photo-1586201375761-83865001e31c?w=400"},
		{Name: "Turmeric Powder (200g)", Rate: 80.00, Category: "Spices", ImageURL: "https://images.unsplash.com/photo-1615485500704-8e990f9900f7?w=400"},
	}
	for i := range sampleItems {
		if err := s.itemRepo.Create(&sampleItems[i]); err != nil {
			return "", fmt.Errorf("failed to seed item %s: %w", sampleItems[i].Name, err)
		}
	}

	defaultCategories := []string{"Pulses", "Rice", "Spices"}
	for _, name := range defaultCategories {
		if _, err := s.categoryRepo.GetByName(name); err == nil {
			continue
		}
		if err := s.categoryRepo.Create(&models.Category{Name: name, IsDefault: true}); err != nil {
			return "", fmt.Errorf("failed to seed category %s: %w", name, err)
		}
	}

	s.clearCache(ctx)
	return fmt.Sprintf("Successfully seeded %d items and %d categories", len(sampleItems), len(defaultCategories)), nil
}

func (s *CatalogService) clearCache(ctx context.Context) {
	if err := s.cache.Clear(ctx); err != nil {
		log.Printf("Failed to clear catalog cache: %v", err)
	}
}
