package core

import "fmt"

// ValidationError is malformed or policy-violating input. The message is
// surfaced verbatim to the caller.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

// Validationf builds a ValidationError from a format string.
func Validationf(format string, args ...any) error {
	return &ValidationError{Msg: fmt.Sprintf(format, args...)}
}

// NotFoundError means a referenced entity is absent.
type NotFoundError struct {
	Entity string // "product", "client", "order", "order item"
	Ref    string // barcode, name, or id rendered as text
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Entity, e.Ref)
}

// InsufficientStockError is returned when a decrement would drive a product's
// quantity on hand below zero. The ledger is left unchanged.
type InsufficientStockError struct {
	ProductID int64
	Available int64
	Requested int64
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for product %d: available %d, requested %d",
		e.ProductID, e.Available, e.Requested)
}

// InvalidTransitionError is returned when an order status change is not in
// the transition table. No mutation is performed.
type InvalidTransitionError struct {
	From OrderStatus
	To   OrderStatus
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("invalid order status transition %s → %s", e.From, e.To)
}

// OrderLockedError is returned when an item mutation is attempted on an order
// whose status no longer allows it.
type OrderLockedError struct {
	OrderID int64
	Status  OrderStatus
}

func (e *OrderLockedError) Error() string {
	return fmt.Sprintf("order %d is %s: items can no longer be modified", e.OrderID, e.Status)
}
