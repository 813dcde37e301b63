package core_test

import (
	"context"
	"errors"
	"testing"

	"pos-backoffice/internal/core"

	"github.com/shopspring/decimal"
)

func TestOrderService_CreateOrderComputesTotal(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()

	stock := core.NewStockService(pool)
	orders := core.NewOrderService(pool, stock)
	ctx := context.Background()

	if err := stock.SetAbsolute(ctx, 1, 10); err != nil {
		t.Fatalf("failed to seed stock: %v", err)
	}
	if err := stock.SetAbsolute(ctx, 2, 10); err != nil {
		t.Fatalf("failed to seed stock: %v", err)
	}

	order, err := orders.CreateOrder(ctx, "alice", "9999", []core.OrderItemInput{
		{Barcode: "ABC-123", Quantity: 2, SellingPrice: decimal.NewFromInt(35)},
		{Barcode: "XYZ-999", Quantity: 3, SellingPrice: decimal.NewFromInt(20)},
	})
	if err != nil {
		t.Fatalf("failed to create order: %v", err)
	}

	if order.Status != core.OrderCreated {
		t.Errorf("expected status CREATED, got %s", order.Status)
	}
	if len(order.Items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(order.Items))
	}
	// 2×35 + 3×20 = 130
	if !order.TotalAmount.Equal(decimal.NewFromInt(130)) {
		t.Errorf("expected total 130, got %s", order.TotalAmount)
	}

	qty, _ := stock.GetQuantity(ctx, 1)
	if qty != 8 {
		t.Errorf("expected stock 8 after order, got %d", qty)
	}
	qty, _ = stock.GetQuantity(ctx, 2)
	if qty != 7 {
		t.Errorf("expected stock 7 after order, got %d", qty)
	}
}

func TestOrderService_CreateOrderAllOrNothing(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()

	stock := core.NewStockService(pool)
	orders := core.NewOrderService(pool, stock)
	ctx := context.Background()

	if err := stock.SetAbsolute(ctx, 1, 5); err != nil {
		t.Fatalf("failed to seed stock: %v", err)
	}

	// Two lines for the same product, 3+3 against stock 5: the second line
	// must see the first line's decrement and fail the whole order.
	_, err := orders.CreateOrder(ctx, "", "", []core.OrderItemInput{
		{Barcode: "ABC-123", Quantity: 3, SellingPrice: decimal.NewFromInt(35)},
		{Barcode: "ABC-123", Quantity: 3, SellingPrice: decimal.NewFromInt(35)},
	})
	var insufficientErr *core.InsufficientStockError
	if !errors.As(err, &insufficientErr) {
		t.Fatalf("expected InsufficientStockError, got %v", err)
	}

	// Rollback restores the first line's decrement too.
	qty, _ := stock.GetQuantity(ctx, 1)
	if qty != 5 {
		t.Errorf("expected stock 5 after rolled-back order, got %d", qty)
	}

	list, err := orders.ListOrders(ctx, core.OrderFilter{})
	if err != nil {
		t.Fatalf("failed to list orders: %v", err)
	}
	if len(list) != 0 {
		t.Errorf("expected no orders persisted, got %d", len(list))
	}
}

func TestOrderService_CreateOrderUnknownBarcode(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()

	stock := core.NewStockService(pool)
	orders := core.NewOrderService(pool, stock)
	ctx := context.Background()

	_, err := orders.CreateOrder(ctx, "", "", []core.OrderItemInput{
		{Barcode: "NOPE-000", Quantity: 1, SellingPrice: decimal.NewFromInt(10)},
	})
	var notFoundErr *core.NotFoundError
	if !errors.As(err, &notFoundErr) {
		t.Fatalf("expected NotFoundError, got %v", err)
	}
}

func TestOrderService_UpdateItemInsufficientStockLeavesOrderUnchanged(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()

	stock := core.NewStockService(pool)
	orders := core.NewOrderService(pool, stock)
	ctx := context.Background()

	if err := stock.SetAbsolute(ctx, 1, 3); err != nil {
		t.Fatalf("failed to seed stock: %v", err)
	}

	order, err := orders.CreateOrder(ctx, "", "", []core.OrderItemInput{
		{Barcode: "ABC-123", Quantity: 2, SellingPrice: decimal.NewFromInt(35)},
	})
	if err != nil {
		t.Fatalf("failed to create order: %v", err)
	}

	// Growing 2 → 5 needs 3 more units but only 1 remains.
	_, err = orders.UpdateOrderItem(ctx, order.ID, order.Items[0].ID, 5, decimal.NewFromInt(35))
	var insufficientErr *core.InsufficientStockError
	if !errors.As(err, &insufficientErr) {
		t.Fatalf("expected InsufficientStockError, got %v", err)
	}

	// Order and ledger untouched.
	got, err := orders.GetOrder(ctx, order.ID)
	if err != nil {
		t.Fatalf("failed to refetch order: %v", err)
	}
	if got.Items[0].Quantity != 2 {
		t.Errorf("expected item quantity 2, got %d", got.Items[0].Quantity)
	}
	if !got.TotalAmount.Equal(decimal.NewFromInt(70)) {
		t.Errorf("expected total 70, got %s", got.TotalAmount)
	}
	qty, _ := stock.GetQuantity(ctx, 1)
	if qty != 1 {
		t.Errorf("expected stock 1, got %d", qty)
	}
}

func TestOrderService_ShrinkItemRestoresStock(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()

	stock := core.NewStockService(pool)
	orders := core.NewOrderService(pool, stock)
	ctx := context.Background()

	if err := stock.SetAbsolute(ctx, 1, 10); err != nil {
		t.Fatalf("failed to seed stock: %v", err)
	}

	order, err := orders.CreateOrder(ctx, "", "", []core.OrderItemInput{
		{Barcode: "ABC-123", Quantity: 6, SellingPrice: decimal.NewFromInt(30)},
	})
	if err != nil {
		t.Fatalf("failed to create order: %v", err)
	}

	updated, err := orders.UpdateOrderItem(ctx, order.ID, order.Items[0].ID, 2, decimal.NewFromInt(30))
	if err != nil {
		t.Fatalf("failed to shrink item: %v", err)
	}
	if !updated.TotalAmount.Equal(decimal.NewFromInt(60)) {
		t.Errorf("expected total 60, got %s", updated.TotalAmount)
	}

	qty, _ := stock.GetQuantity(ctx, 1)
	if qty != 8 {
		t.Errorf("expected stock 8 after shrinking 6 to 2, got %d", qty)
	}
}

func TestOrderService_RemoveOnlyItem(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()

	stock := core.NewStockService(pool)
	orders := core.NewOrderService(pool, stock)
	ctx := context.Background()

	if err := stock.SetAbsolute(ctx, 1, 5); err != nil {
		t.Fatalf("failed to seed stock: %v", err)
	}

	order, err := orders.CreateOrder(ctx, "", "", []core.OrderItemInput{
		{Barcode: "ABC-123", Quantity: 4, SellingPrice: decimal.NewFromInt(35)},
	})
	if err != nil {
		t.Fatalf("failed to create order: %v", err)
	}

	// Removing the only item is legal: the order survives with zero items.
	updated, err := orders.RemoveOrderItem(ctx, order.ID, order.Items[0].ID)
	if err != nil {
		t.Fatalf("failed to remove item: %v", err)
	}
	if len(updated.Items) != 0 {
		t.Errorf("expected 0 items, got %d", len(updated.Items))
	}
	if !updated.TotalAmount.IsZero() {
		t.Errorf("expected total 0, got %s", updated.TotalAmount)
	}
	if updated.Status != core.OrderCreated {
		t.Errorf("expected order to stay CREATED, got %s", updated.Status)
	}

	qty, _ := stock.GetQuantity(ctx, 1)
	if qty != 5 {
		t.Errorf("expected stock restored to 5, got %d", qty)
	}
}

func TestOrderService_InvalidTransition(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()

	stock := core.NewStockService(pool)
	orders := core.NewOrderService(pool, stock)
	ctx := context.Background()

	if err := stock.SetAbsolute(ctx, 1, 5); err != nil {
		t.Fatalf("failed to seed stock: %v", err)
	}
	order, err := orders.CreateOrder(ctx, "", "", []core.OrderItemInput{
		{Barcode: "ABC-123", Quantity: 1, SellingPrice: decimal.NewFromInt(35)},
	})
	if err != nil {
		t.Fatalf("failed to create order: %v", err)
	}

	if _, err := orders.UpdateOrderStatus(ctx, order.ID, core.OrderCancelled, "", ""); err != nil {
		t.Fatalf("failed to cancel order: %v", err)
	}

	// CANCELLED is terminal.
	_, err = orders.UpdateOrderStatus(ctx, order.ID, core.OrderInvoiced, "", "")
	var transitionErr *core.InvalidTransitionError
	if !errors.As(err, &transitionErr) {
		t.Fatalf("expected InvalidTransitionError, got %v", err)
	}
}

func TestOrderService_ItemMutationLockedAfterInvoicing(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()

	stock := core.NewStockService(pool)
	orders := core.NewOrderService(pool, stock)
	ctx := context.Background()

	if err := stock.SetAbsolute(ctx, 1, 5); err != nil {
		t.Fatalf("failed to seed stock: %v", err)
	}
	order, err := orders.CreateOrder(ctx, "", "", []core.OrderItemInput{
		{Barcode: "ABC-123", Quantity: 1, SellingPrice: decimal.NewFromInt(35)},
	})
	if err != nil {
		t.Fatalf("failed to create order: %v", err)
	}
	if _, err := orders.UpdateOrderStatus(ctx, order.ID, core.OrderInvoiced, "bob", ""); err != nil {
		t.Fatalf("failed to invoice order: %v", err)
	}

	var lockedErr *core.OrderLockedError

	_, err = orders.AddOrderItem(ctx, order.ID, core.OrderItemInput{
		Barcode: "XYZ-999", Quantity: 1, SellingPrice: decimal.NewFromInt(20),
	})
	if !errors.As(err, &lockedErr) {
		t.Errorf("expected OrderLockedError on add, got %v", err)
	}

	_, err = orders.UpdateOrderItem(ctx, order.ID, order.Items[0].ID, 2, decimal.NewFromInt(35))
	if !errors.As(err, &lockedErr) {
		t.Errorf("expected OrderLockedError on update, got %v", err)
	}

	_, err = orders.RemoveOrderItem(ctx, order.ID, order.Items[0].ID)
	if !errors.As(err, &lockedErr) {
		t.Errorf("expected OrderLockedError on remove, got %v", err)
	}
}

func TestOrderService_CancellationRestoresStock(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()

	stock := core.NewStockService(pool)
	orders := core.NewOrderService(pool, stock)
	ctx := context.Background()

	if err := stock.SetAbsolute(ctx, 1, 10); err != nil {
		t.Fatalf("failed to seed stock: %v", err)
	}
	if err := stock.SetAbsolute(ctx, 2, 10); err != nil {
		t.Fatalf("failed to seed stock: %v", err)
	}

	order, err := orders.CreateOrder(ctx, "", "", []core.OrderItemInput{
		{Barcode: "ABC-123", Quantity: 4, SellingPrice: decimal.NewFromInt(35)},
		{Barcode: "XYZ-999", Quantity: 2, SellingPrice: decimal.NewFromInt(20)},
	})
	if err != nil {
		t.Fatalf("failed to create order: %v", err)
	}

	// Cancel after invoicing: both items return to the ledger.
	if _, err := orders.UpdateOrderStatus(ctx, order.ID, core.OrderInvoiced, "", ""); err != nil {
		t.Fatalf("failed to invoice order: %v", err)
	}
	cancelled, err := orders.UpdateOrderStatus(ctx, order.ID, core.OrderCancelled, "", "")
	if err != nil {
		t.Fatalf("failed to cancel order: %v", err)
	}
	if cancelled.Status != core.OrderCancelled {
		t.Errorf("expected status CANCELLED, got %s", cancelled.Status)
	}

	qty, _ := stock.GetQuantity(ctx, 1)
	if qty != 10 {
		t.Errorf("expected stock 10 restored, got %d", qty)
	}
	qty, _ = stock.GetQuantity(ctx, 2)
	if qty != 10 {
		t.Errorf("expected stock 10 restored, got %d", qty)
	}
}

func TestOrderService_ListOrdersFilterByStatus(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()

	stock := core.NewStockService(pool)
	orders := core.NewOrderService(pool, stock)
	ctx := context.Background()

	if err := stock.SetAbsolute(ctx, 1, 10); err != nil {
		t.Fatalf("failed to seed stock: %v", err)
	}

	first, err := orders.CreateOrder(ctx, "", "", []core.OrderItemInput{
		{Barcode: "ABC-123", Quantity: 1, SellingPrice: decimal.NewFromInt(35)},
	})
	if err != nil {
		t.Fatalf("failed to create order: %v", err)
	}
	if _, err := orders.CreateOrder(ctx, "", "", []core.OrderItemInput{
		{Barcode: "ABC-123", Quantity: 1, SellingPrice: decimal.NewFromInt(35)},
	}); err != nil {
		t.Fatalf("failed to create order: %v", err)
	}
	if _, err := orders.UpdateOrderStatus(ctx, first.ID, core.OrderInvoiced, "", ""); err != nil {
		t.Fatalf("failed to invoice order: %v", err)
	}

	status := core.OrderInvoiced
	list, err := orders.ListOrders(ctx, core.OrderFilter{Status: &status})
	if err != nil {
		t.Fatalf("failed to list orders: %v", err)
	}
	if len(list) != 1 {
		t.Fatalf("expected 1 invoiced order, got %d", len(list))
	}
	if list[0].ID != first.ID {
		t.Errorf("expected order %d, got %d", first.ID, list[0].ID)
	}
}
