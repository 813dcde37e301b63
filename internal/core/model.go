package core

import (
	"time"

	"github.com/shopspring/decimal"
)

// MaxMRP is the upper bound accepted for a product's maximum retail price.
var MaxMRP = decimal.NewFromInt(10_000_000)

// Client represents a brand owner whose products are sold through the store.
// Names are unique and stored lowercased.
type Client struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// Product is a catalog entry. Barcode is unique and immutable after creation;
// barcodes are case-sensitive identifiers, everything else is a lowercased label.
type Product struct {
	ID         int64           `json:"id"`
	ClientID   int64           `json:"client_id"`
	ClientName string          `json:"client_name"` // joined from clients
	Barcode    string          `json:"barcode"`
	Name       string          `json:"name"`
	Category   string          `json:"category"`
	MRP        decimal.Decimal `json:"mrp"`
	ImageURL   string          `json:"image_url,omitempty"`
	CreatedAt  time.Time       `json:"created_at"`
}

// Inventory is the stock ledger record: one non-negative counter per product.
// Rows are created lazily the first time a product's stock is touched.
type Inventory struct {
	ProductID int64     `json:"product_id"`
	Quantity  int64     `json:"quantity"`
	UpdatedAt time.Time `json:"updated_at"`
}

// StockLevel is a read view of an inventory row joined with its product.
type StockLevel struct {
	ProductID int64           `json:"product_id"`
	Barcode   string          `json:"barcode"`
	Name      string          `json:"name"`
	Quantity  int64           `json:"quantity"`
	MRP       decimal.Decimal `json:"mrp"`
	Value     decimal.Decimal `json:"value"` // Quantity × MRP
}

// OrderStatus is the order lifecycle state.
//
//	CREATED → INVOICED → CANCELLED
//	CREATED → CANCELLED
//
// CANCELLED is terminal. Item mutation is permitted only while CREATED.
type OrderStatus string

const (
	OrderCreated   OrderStatus = "CREATED"
	OrderInvoiced  OrderStatus = "INVOICED"
	OrderCancelled OrderStatus = "CANCELLED"
)

// orderTransitions is the explicit set of permitted status changes.
// Anything not listed here is an invalid transition.
var orderTransitions = map[OrderStatus]map[OrderStatus]bool{
	OrderCreated: {
		OrderInvoiced:  true,
		OrderCancelled: true,
	},
	OrderInvoiced: {
		OrderCancelled: true,
	},
	OrderCancelled: {},
}

// Valid reports whether s is a known order status.
func (s OrderStatus) Valid() bool {
	_, ok := orderTransitions[s]
	return ok
}

// CanTransitionTo reports whether the status change s → next is permitted.
func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	return orderTransitions[s][next]
}

// AllowsItemMutation reports whether order items may be added, updated or
// removed while the order is in status s.
func (s OrderStatus) AllowsItemMutation() bool {
	return s == OrderCreated
}

// Order is an order header with its items. TotalAmount is derived:
// it always equals Σ(item.Quantity × item.SellingPrice) and is recomputed
// inside the same transaction as any item mutation.
type Order struct {
	ID            int64           `json:"id"`
	Status        OrderStatus     `json:"status"`
	CustomerName  string          `json:"customer_name,omitempty"`
	CustomerPhone string          `json:"customer_phone,omitempty"`
	TotalAmount   decimal.Decimal `json:"total_amount"`
	Items         []OrderItem     `json:"items"`
	CreatedAt     time.Time       `json:"created_at"`
}

// OrderItem is one line on an order. Quantity and SellingPrice are positive.
type OrderItem struct {
	ID           int64           `json:"id"`
	OrderID      int64           `json:"order_id"`
	ProductID    int64           `json:"product_id"`
	Barcode      string          `json:"barcode"`      // joined from products
	ProductName  string          `json:"product_name"` // joined from products
	Quantity     int64           `json:"quantity"`
	SellingPrice decimal.Decimal `json:"selling_price"`
}

// OrderItemInput is one requested line when creating an order or adding an item.
type OrderItemInput struct {
	Barcode      string
	Quantity     int64
	SellingPrice decimal.Decimal
}

// OrderFilter selects orders for ListOrders. Nil fields are unbounded.
// From is inclusive, To is exclusive.
type OrderFilter struct {
	ID     *int64
	Status *OrderStatus
	From   *time.Time
	To     *time.Time
	Limit  int
	Offset int
}

// User is an operator account. Mutating endpoints require the supervisor role.
type User struct {
	ID           int64     `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	Role         string    `json:"role"` // "operator" or "supervisor"
	CreatedAt    time.Time `json:"created_at"`
}

const RoleSupervisor = "supervisor"
