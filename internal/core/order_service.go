package core

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// OrderService owns the Order + OrderItem aggregate. Every mutation keeps the
// stock ledger and the derived order total consistent inside one transaction:
// partial application is never observable.
type OrderService interface {
	// CreateOrder validates every requested line against the catalog and the
	// stock ledger, then persists the order, its items, and the stock
	// decrements all-or-nothing. A failing line fails the whole order.
	CreateOrder(ctx context.Context, customerName, customerPhone string, items []OrderItemInput) (*Order, error)
	// AddOrderItem appends a line to a CREATED order, deducting stock and
	// recomputing the total.
	AddOrderItem(ctx context.Context, orderID int64, item OrderItemInput) (*Order, error)
	// UpdateOrderItem changes a line's quantity and selling price. The stock
	// delta (new − old quantity) is applied to the ledger; if it would drive
	// stock negative the order and ledger are left unchanged.
	UpdateOrderItem(ctx context.Context, orderID, itemID int64, quantity int64, sellingPrice decimal.Decimal) (*Order, error)
	// RemoveOrderItem deletes a line and restores its quantity to the ledger.
	// An order may legally reach zero items; it is not auto-cancelled.
	RemoveOrderItem(ctx context.Context, orderID, itemID int64) (*Order, error)
	// UpdateOrderStatus applies a transition from the transition table and,
	// when cancelling, restores every item's quantity to the ledger.
	UpdateOrderStatus(ctx context.Context, orderID int64, newStatus OrderStatus, customerName, customerPhone string) (*Order, error)

	GetOrder(ctx context.Context, orderID int64) (*Order, error)
	ListOrders(ctx context.Context, filter OrderFilter) ([]Order, error)
}

type orderService struct {
	pool  *pgxpool.Pool
	stock StockService
}

func NewOrderService(pool *pgxpool.Pool, stock StockService) OrderService {
	return &orderService{pool: pool, stock: stock}
}

// validateItemInput checks the fields of a requested order line.
func validateItemInput(in OrderItemInput) error {
	if in.Barcode == "" {
		return Validationf("barcode must not be empty")
	}
	if in.Quantity <= 0 {
		return Validationf("quantity must be positive, got %d", in.Quantity)
	}
	if !in.SellingPrice.IsPositive() {
		return Validationf("selling price must be positive, got %s", in.SellingPrice)
	}
	return nil
}

func (s *orderService) CreateOrder(ctx context.Context, customerName, customerPhone string, items []OrderItemInput) (*Order, error) {
	if len(items) == 0 {
		return nil, Validationf("order must have at least one item")
	}
	for i, in := range items {
		if err := validateItemInput(in); err != nil {
			return nil, fmt.Errorf("item %d: %w", i+1, err)
		}
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var total decimal.Decimal
	type resolvedItem struct {
		productID    int64
		quantity     int64
		sellingPrice decimal.Decimal
	}
	resolved := make([]resolvedItem, 0, len(items))

	for i, in := range items {
		var productID int64
		err = tx.QueryRow(ctx, "SELECT id FROM products WHERE barcode = $1", in.Barcode).Scan(&productID)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return nil, fmt.Errorf("item %d: %w", i+1, &NotFoundError{Entity: "product", Ref: in.Barcode})
			}
			return nil, fmt.Errorf("item %d: failed to resolve product: %w", i+1, err)
		}

		// Deduct stock inside this TX. Lines referencing the same product see
		// each other's decrements, so any rollback undoes them all.
		if _, err := s.stock.AdjustTx(ctx, tx, productID, -in.Quantity); err != nil {
			return nil, err
		}

		total = total.Add(in.SellingPrice.Mul(decimal.NewFromInt(in.Quantity)))
		resolved = append(resolved, resolvedItem{
			productID:    productID,
			quantity:     in.Quantity,
			sellingPrice: in.SellingPrice,
		})
	}

	var orderID int64
	err = tx.QueryRow(ctx, `
		INSERT INTO orders (status, customer_name, customer_phone, total_amount)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`, OrderCreated, customerName, customerPhone, total).Scan(&orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to insert order: %w", err)
	}

	for i, ri := range resolved {
		_, err = tx.Exec(ctx, `
			INSERT INTO order_items (order_id, product_id, quantity, selling_price)
			VALUES ($1, $2, $3, $4)
		`, orderID, ri.productID, ri.quantity, ri.sellingPrice)
		if err != nil {
			return nil, fmt.Errorf("failed to insert order item %d: %w", i+1, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit order creation: %w", err)
	}

	return s.GetOrder(ctx, orderID)
}

// lockOrderForItemMutation locks the order row and verifies items may still
// be changed in its current status.
func lockOrderForItemMutation(ctx context.Context, tx pgx.Tx, orderID int64) (OrderStatus, error) {
	var status OrderStatus
	err := tx.QueryRow(ctx,
		"SELECT status FROM orders WHERE id = $1 FOR UPDATE", orderID,
	).Scan(&status)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", &NotFoundError{Entity: "order", Ref: strconv.FormatInt(orderID, 10)}
		}
		return "", fmt.Errorf("failed to fetch order %d: %w", orderID, err)
	}
	if !status.AllowsItemMutation() {
		return "", &OrderLockedError{OrderID: orderID, Status: status}
	}
	return status, nil
}

// recomputeTotalTx re-derives total_amount from the order's items. Runs inside
// the same TX as the item mutation so the invariant is never observably broken.
func recomputeTotalTx(ctx context.Context, tx pgx.Tx, orderID int64) error {
	_, err := tx.Exec(ctx, `
		UPDATE orders
		SET total_amount = (
			SELECT COALESCE(SUM(quantity * selling_price), 0)
			FROM order_items
			WHERE order_id = $1
		)
		WHERE id = $1
	`, orderID)
	if err != nil {
		return fmt.Errorf("failed to recompute total for order %d: %w", orderID, err)
	}
	return nil
}

func (s *orderService) AddOrderItem(ctx context.Context, orderID int64, item OrderItemInput) (*Order, error) {
	if err := validateItemInput(item); err != nil {
		return nil, err
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := lockOrderForItemMutation(ctx, tx, orderID); err != nil {
		return nil, err
	}

	var productID int64
	err = tx.QueryRow(ctx, "SELECT id FROM products WHERE barcode = $1", item.Barcode).Scan(&productID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, &NotFoundError{Entity: "product", Ref: item.Barcode}
		}
		return nil, fmt.Errorf("failed to resolve product: %w", err)
	}

	if _, err := s.stock.AdjustTx(ctx, tx, productID, -item.Quantity); err != nil {
		return nil, err
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO order_items (order_id, product_id, quantity, selling_price)
		VALUES ($1, $2, $3, $4)
	`, orderID, productID, item.Quantity, item.SellingPrice)
	if err != nil {
		return nil, fmt.Errorf("failed to insert order item: %w", err)
	}

	if err := recomputeTotalTx(ctx, tx, orderID); err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit item addition: %w", err)
	}

	return s.GetOrder(ctx, orderID)
}

func (s *orderService) UpdateOrderItem(ctx context.Context, orderID, itemID int64, quantity int64, sellingPrice decimal.Decimal) (*Order, error) {
	if quantity <= 0 {
		return nil, Validationf("quantity must be positive, got %d", quantity)
	}
	if !sellingPrice.IsPositive() {
		return nil, Validationf("selling price must be positive, got %s", sellingPrice)
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := lockOrderForItemMutation(ctx, tx, orderID); err != nil {
		return nil, err
	}

	var productID, oldQty int64
	err = tx.QueryRow(ctx,
		"SELECT product_id, quantity FROM order_items WHERE id = $1 AND order_id = $2",
		itemID, orderID,
	).Scan(&productID, &oldQty)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, &NotFoundError{Entity: "order item", Ref: strconv.FormatInt(itemID, 10)}
		}
		return nil, fmt.Errorf("failed to fetch order item %d: %w", itemID, err)
	}

	// Stock delta: growing the line consumes stock, shrinking it restores.
	delta := quantity - oldQty
	if _, err := s.stock.AdjustTx(ctx, tx, productID, -delta); err != nil {
		return nil, err
	}

	_, err = tx.Exec(ctx,
		"UPDATE order_items SET quantity = $1, selling_price = $2 WHERE id = $3",
		quantity, sellingPrice, itemID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to update order item %d: %w", itemID, err)
	}

	if err := recomputeTotalTx(ctx, tx, orderID); err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit item update: %w", err)
	}

	return s.GetOrder(ctx, orderID)
}

func (s *orderService) RemoveOrderItem(ctx context.Context, orderID, itemID int64) (*Order, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := lockOrderForItemMutation(ctx, tx, orderID); err != nil {
		return nil, err
	}

	var productID, qty int64
	err = tx.QueryRow(ctx,
		"SELECT product_id, quantity FROM order_items WHERE id = $1 AND order_id = $2",
		itemID, orderID,
	).Scan(&productID, &qty)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, &NotFoundError{Entity: "order item", Ref: strconv.FormatInt(itemID, 10)}
		}
		return nil, fmt.Errorf("failed to fetch order item %d: %w", itemID, err)
	}

	if _, err := s.stock.AdjustTx(ctx, tx, productID, qty); err != nil {
		return nil, err
	}

	if _, err = tx.Exec(ctx, "DELETE FROM order_items WHERE id = $1", itemID); err != nil {
		return nil, fmt.Errorf("failed to delete order item %d: %w", itemID, err)
	}

	if err := recomputeTotalTx(ctx, tx, orderID); err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit item removal: %w", err)
	}

	return s.GetOrder(ctx, orderID)
}

func (s *orderService) UpdateOrderStatus(ctx context.Context, orderID int64, newStatus OrderStatus, customerName, customerPhone string) (*Order, error) {
	if !newStatus.Valid() {
		return nil, Validationf("unknown order status %q", string(newStatus))
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var current OrderStatus
	err = tx.QueryRow(ctx,
		"SELECT status FROM orders WHERE id = $1 FOR UPDATE", orderID,
	).Scan(&current)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, &NotFoundError{Entity: "order", Ref: strconv.FormatInt(orderID, 10)}
		}
		return nil, fmt.Errorf("failed to fetch order %d: %w", orderID, err)
	}
	if !current.CanTransitionTo(newStatus) {
		return nil, &InvalidTransitionError{From: current, To: newStatus}
	}

	// Cancellation hands every item's quantity back to the ledger; stock was
	// committed at creation time.
	if newStatus == OrderCancelled {
		rows, err := tx.Query(ctx,
			"SELECT product_id, quantity FROM order_items WHERE order_id = $1", orderID,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch items for cancellation: %w", err)
		}
		type restore struct{ productID, qty int64 }
		var restores []restore
		for rows.Next() {
			var r restore
			if err := rows.Scan(&r.productID, &r.qty); err != nil {
				rows.Close()
				return nil, fmt.Errorf("failed to scan order item: %w", err)
			}
			restores = append(restores, r)
		}
		rows.Close()
		if err := rows.Err(); err != nil {
			return nil, fmt.Errorf("error iterating order items: %w", err)
		}
		for _, r := range restores {
			if _, err := s.stock.AdjustTx(ctx, tx, r.productID, r.qty); err != nil {
				return nil, err
			}
		}
	}

	_, err = tx.Exec(ctx, `
		UPDATE orders
		SET status = $1,
		    customer_name  = COALESCE(NULLIF($2, ''), customer_name),
		    customer_phone = COALESCE(NULLIF($3, ''), customer_phone)
		WHERE id = $4
	`, newStatus, customerName, customerPhone, orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to update order %d status: %w", orderID, err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit status update: %w", err)
	}

	return s.GetOrder(ctx, orderID)
}

// ── Queries ──────────────────────────────────────────────────────────────────

func (s *orderService) GetOrder(ctx context.Context, orderID int64) (*Order, error) {
	var o Order
	err := s.pool.QueryRow(ctx, `
		SELECT id, status, customer_name, customer_phone, total_amount, created_at
		FROM orders
		WHERE id = $1
	`, orderID).Scan(&o.ID, &o.Status, &o.CustomerName, &o.CustomerPhone, &o.TotalAmount, &o.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, &NotFoundError{Entity: "order", Ref: strconv.FormatInt(orderID, 10)}
		}
		return nil, fmt.Errorf("failed to fetch order %d: %w", orderID, err)
	}

	items, err := fetchOrderItems(ctx, s.pool, o.ID)
	if err != nil {
		return nil, err
	}
	o.Items = items
	return &o, nil
}

func (s *orderService) ListOrders(ctx context.Context, filter OrderFilter) ([]Order, error) {
	query := `
		SELECT id, status, customer_name, customer_phone, total_amount, created_at
		FROM orders
		WHERE 1=1
	`
	var args []any
	arg := func(v any) string {
		args = append(args, v)
		return "$" + strconv.Itoa(len(args))
	}

	if filter.ID != nil {
		query += " AND id = " + arg(*filter.ID)
	}
	if filter.Status != nil {
		query += " AND status = " + arg(*filter.Status)
	}
	if filter.From != nil {
		query += " AND created_at >= " + arg(*filter.From)
	}
	if filter.To != nil {
		query += " AND created_at < " + arg(*filter.To)
	}
	query += " ORDER BY id DESC"

	limit := filter.Limit
	if limit <= 0 {
		limit = 50
	}
	query += " LIMIT " + arg(limit)
	if filter.Offset > 0 {
		query += " OFFSET " + arg(filter.Offset)
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query orders: %w", err)
	}
	defer rows.Close()

	var orders []Order
	for rows.Next() {
		var o Order
		if err := rows.Scan(&o.ID, &o.Status, &o.CustomerName, &o.CustomerPhone, &o.TotalAmount, &o.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan order: %w", err)
		}
		orders = append(orders, o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating orders: %w", err)
	}

	for i := range orders {
		items, err := fetchOrderItems(ctx, s.pool, orders[i].ID)
		if err != nil {
			return nil, err
		}
		orders[i].Items = items
	}
	return orders, nil
}

// pgxRowQuerier is satisfied by both *pgxpool.Pool and pgx.Tx.
type pgxRowQuerier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// fetchOrderItems returns an order's items joined with product barcode/name.
func fetchOrderItems(ctx context.Context, q pgxRowQuerier, orderID int64) ([]OrderItem, error) {
	rows, err := q.Query(ctx, `
		SELECT oi.id, oi.order_id, oi.product_id, p.barcode, p.name, oi.quantity, oi.selling_price
		FROM order_items oi
		JOIN products p ON p.id = oi.product_id
		WHERE oi.order_id = $1
		ORDER BY oi.id
	`, orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to query order items: %w", err)
	}
	defer rows.Close()

	var items []OrderItem
	for rows.Next() {
		var it OrderItem
		if err := rows.Scan(&it.ID, &it.OrderID, &it.ProductID, &it.Barcode, &it.ProductName, &it.Quantity, &it.SellingPrice); err != nil {
			return nil, fmt.Errorf("failed to scan order item: %w", err)
		}
		items = append(items, it)
	}
	return items, nil
}
