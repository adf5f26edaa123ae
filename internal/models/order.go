package models

import "time"

// Order statuses. Orders start Pending and are confirmed by an admin.
const (
	StatusPending   = "Pending"
	StatusConfirmed = "Order Confirmed"
)

// Order is a placed order. Items and the user contact fields are a
// point-in-time snapshot taken at submission; later item or profile edits
// never flow back into it.
type Order struct {
	ID          string    `json:"order_id" gorm:"column:order_id;primaryKey;type:varchar(50)"`
	UserID      string    `json:"user_id" gorm:"index;type:varchar(50)"`
	Items       []Line    `json:"items" gorm:"serializer:json"`
	GrandTotal  float64   `json:"grand_total"`
	Status      string    `json:"status"`
	UserName    string    `json:"user_name"`
	UserEmail   string    `json:"user_email"`
	UserPhone   string    `json:"user_phone"`
	UserAddress string    `json:"user_address"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
