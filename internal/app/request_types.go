package app

import (
	"io"

	"pos-backoffice/internal/core"
)

// CreateOrderRequest is the input to CreateOrder.
type CreateOrderRequest struct {
	CustomerName  string
	CustomerPhone string
	Items         []core.OrderItemInput
}

// UpdateOrderStatusRequest is the input to UpdateOrderStatus. Customer fields
// are optional; empty strings leave the stored values untouched.
type UpdateOrderStatusRequest struct {
	OrderID       int64
	Status        core.OrderStatus
	CustomerName  string
	CustomerPhone string
}

// UploadRequest is the file intake: a readable byte stream plus the declared
// filename and size.
type UploadRequest struct {
	Filename string
	Size     int64
	Content  io.Reader
}
