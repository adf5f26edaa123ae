package models

import "time"

// Item is a catalog product. Customers never mutate items; only admin CRUD
// does, and placed orders keep their own snapshot of the values.
type Item struct {
	ID        string    `json:"item_id" gorm:"column:item_id;primaryKey;type:varchar(50)" validate:"omitempty,max=50"`
	Name      string    `json:"name" gorm:"index;type:varchar(200)" validate:"required,min=1,max=200"`
	Rate      float64   `json:"rate" validate:"required,gt=0,lte=1000000"`
	ImageURL  string    `json:"image_url" validate:"required,min=1"`
	Category  string    `json:"category" gorm:"index;type:varchar(100)" validate:"required,min=1,max=100"`
	CreatedAt time.Time `json:"created_at"`
}

// Category groups items by name. Default categories ship with the store and
// cannot be deleted; neither can a category that still has items assigned.
type Category struct {
	ID        string    `json:"category_id" gorm:"column:category_id;primaryKey;type:varchar(50)"`
	Name      string    `json:"name" gorm:"uniqueIndex;type:varchar(100)" validate:"required,min=1,max=100"`
	IsDefault bool      `json:"is_default"`
	CreatedAt time.Time `json:"created_at"`
}
