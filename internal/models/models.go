package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// Product represents a product in the catalog
type Product struct {
	ID            int64     `db:"id" json:"id"`
	Title         string    `db:"title" json:"title"`
	Description   string    `db:"description" json:"description"`
	Price         float64   `db:"price" json:"price"`
	SalePrice     *float64  `db:"sale_price" json:"sale_price,omitempty"`
	ImageURL      string    `db:"image_url" json:"image_url"`
	CategoryID    int64     `db:"category_id" json:"category_id"`
	IsNew         bool      `db:"is_new" json:"is_new"`
	IsOnSale      bool      `db:"is_on_sale" json:"is_on_sale"`
	StockQuantity int       `db:"stock_quantity" json:"stock_quantity"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time `db:"updated_at" json:"updated_at"`
}

// Deal is a time-bounded percentage discount attached to one product.
// DiscountPrice is derived from the product price and recomputed on every save.
type Deal struct {
	ID                 int64     `db:"id" json:"id"`
	ProductID          int64     `db:"product_id" json:"product_id"`
	DiscountPercentage int       `db:"discount_percentage" json:"discount_percentage"`
	DiscountPrice      float64   `db:"discount_price" json:"discount_price"`
	StartDate          time.Time `db:"start_date" json:"start_date"`
	EndDate            time.Time `db:"end_date" json:"end_date"`
	IsActive           bool      `db:"is_active" json:"is_active"`
	CreatedAt          time.Time `db:"created_at" json:"created_at"`
	UpdatedAt          time.Time `db:"updated_at" json:"updated_at"`
}

// Deal statuses derived from (is_active, now, start_date, end_date)
const (
	DealStatusInactive  = "inactive"
	DealStatusScheduled = "scheduled"
	DealStatusActive    = "active"
	DealStatusExpired   = "expired"
)

// DerivedStatus reports the presentational status of the deal at the given
// time. It is never stored; is_active is the admin intent flag only.
func (d *Deal) DerivedStatus(now time.Time) string {
	if !d.IsActive {
		return DealStatusInactive
	}
	if now.After(d.EndDate) {
		return DealStatusExpired
	}
	if now.Before(d.StartDate) {
		return DealStatusScheduled
	}
	return DealStatusActive
}

// ComputeDiscountPrice calculates the discounted price for a product price
// and whole-number percentage in [0, 100].
func ComputeDiscountPrice(price float64, percentage int) float64 {
	return price * (1 - float64(percentage)/100)
}

// DeliveryInfo is the structured delivery block stored on an order.
type DeliveryInfo struct {
	Phone   string `json:"phone"`
	Region  string `json:"region"`
	Address string `json:"address"`
	Name    string `json:"name"`
}

// Value implements driver.Valuer for JSONB storage
func (d DeliveryInfo) Value() (driver.Value, error) {
	return json.Marshal(d)
}

// Scan implements sql.Scanner for JSONB retrieval
func (d *DeliveryInfo) Scan(src interface{}) error {
	switch v := src.(type) {
	case []byte:
		return json.Unmarshal(v, d)
	case string:
		return json.Unmarshal([]byte(v), d)
	case nil:
		*d = DeliveryInfo{}
		return nil
	}
	return fmt.Errorf("unsupported type for DeliveryInfo: %T", src)
}

// ItemSnapshot is one purchased line as recorded at checkout time. It is
// intentionally decoupled from the live product row.
type ItemSnapshot struct {
	ProductID int64   `json:"product_id"`
	Title     string  `json:"title"`
	Quantity  int     `json:"quantity"`
	Price     float64 `json:"price"`
	ImageURL  string  `json:"image_url"`
}

// ItemsData is the denormalized item snapshot stored on the order row,
// redundant with order_items and kept for resilience against row loss.
type ItemsData []ItemSnapshot

// Value implements driver.Valuer for JSONB storage
func (i ItemsData) Value() (driver.Value, error) {
	if i == nil {
		return json.Marshal([]ItemSnapshot{})
	}
	return json.Marshal(i)
}

// Scan implements sql.Scanner for JSONB retrieval
func (i *ItemsData) Scan(src interface{}) error {
	switch v := src.(type) {
	case []byte:
		return json.Unmarshal(v, i)
	case string:
		return json.Unmarshal([]byte(v), i)
	case nil:
		*i = nil
		return nil
	}
	return fmt.Errorf("unsupported type for ItemsData: %T", src)
}

// Order represents a customer order
type Order struct {
	ID              int64        `db:"id" json:"id"`
	UserID          *int64       `db:"user_id" json:"user_id,omitempty"`
	Amount          float64      `db:"amount" json:"amount"`
	Status          string       `db:"status" json:"status"`
	DeliveryInfo    DeliveryInfo `db:"delivery_info" json:"delivery_info"`
	ItemsData       ItemsData    `db:"items_data" json:"items_data"`
	UserOrderNumber int          `db:"user_order_number" json:"user_order_number"`
	CreatedAt       time.Time    `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time    `db:"updated_at" json:"updated_at"`
}

// OrderItem is a line item snapshot owned by exactly one order
type OrderItem struct {
	ID        int64   `db:"id" json:"id"`
	OrderID   int64   `db:"order_id" json:"order_id"`
	ProductID int64   `db:"product_id" json:"product_id"`
	Title     string  `db:"title" json:"title"`
	Quantity  int     `db:"quantity" json:"quantity"`
	Price     float64 `db:"price" json:"price"`
	ImageURL  string  `db:"image_url" json:"image_url"`
}

// Order statuses
const (
	OrderStatusPending   = "pending"
	OrderStatusAccepted  = "accepted"
	OrderStatusRefused   = "refused"
	OrderStatusShipped   = "shipped"
	OrderStatusDelivered = "delivered"
)

var orderStatuses = map[string]bool{
	OrderStatusPending:   true,
	OrderStatusAccepted:  true,
	OrderStatusRefused:   true,
	OrderStatusShipped:   true,
	OrderStatusDelivered: true,
}

// IsValidOrderStatus reports whether s is one of the five known statuses.
// Transitions between known statuses are otherwise unconstrained.
func IsValidOrderStatus(s string) bool {
	return orderStatuses[s]
}

// Notification types
const (
	NotificationTypeOrderStatus = "ORDER_STATUS"
	NotificationTypeSystem      = "SYSTEM"
	NotificationTypePromotion   = "PROMOTION"
)

// Notification is an in-app message owned by a user. OrderID is a loose
// back-reference, not a foreign key: the order may be deleted independently.
type Notification struct {
	ID        int64     `db:"id" json:"id"`
	UserID    int64     `db:"user_id" json:"user_id"`
	Title     string    `db:"title" json:"title"`
	Message   string    `db:"message" json:"message"`
	OrderID   *int64    `db:"order_id" json:"order_id,omitempty"`
	IsRead    bool      `db:"is_read" json:"is_read"`
	Type      string    `db:"notification_type" json:"notification_type"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// DeviceToken is a push delivery token registered for a user,
// unique per (user_id, token)
type DeviceToken struct {
	ID        int64     `db:"id" json:"id"`
	UserID    int64     `db:"user_id" json:"user_id"`
	Token     string    `db:"token" json:"token"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}
