package models

import "time"

// Cart is the server-persisted cart, one per user. Saves replace the whole
// line list; there is no partial update, so concurrent sessions are last
// write wins.
type Cart struct {
	ID        string    `json:"cart_id" gorm:"column:cart_id;primaryKey;type:varchar(50)"`
	UserID    string    `json:"user_id" gorm:"uniqueIndex;type:varchar(50)"`
	Items     []Line    `json:"items" gorm:"serializer:json"`
	UpdatedAt time.Time `json:"updated_at"`
}
