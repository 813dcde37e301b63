package core

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// StockService is the stock ledger: one non-negative quantity-on-hand counter
// per product, with atomic adjustment. Concurrent adjustments to the same
// product serialize on a row-level lock, so two simultaneous decrements can
// never both consume the last unit.
type StockService interface {
	// Adjust applies delta to a product's quantity in its own transaction and
	// returns the new quantity. The inventory row is created at zero if absent.
	Adjust(ctx context.Context, productID int64, delta int64) (int64, error)
	// SetAbsolute replaces a product's quantity. qty must be >= 0 (validated
	// by the caller before invocation).
	SetAbsolute(ctx context.Context, productID int64, qty int64) error
	// GetQuantity returns a product's quantity on hand; zero if no row exists.
	GetQuantity(ctx context.Context, productID int64) (int64, error)
	// GetStockLevels returns every inventory row joined with its product.
	GetStockLevels(ctx context.Context) ([]StockLevel, error)

	// TX-scoped variants: work within a caller-provided transaction.
	// Used by OrderService to keep ledger changes atomic with order mutations.

	AdjustTx(ctx context.Context, tx pgx.Tx, productID int64, delta int64) (int64, error)
	SetAbsoluteTx(ctx context.Context, tx pgx.Tx, productID int64, qty int64) error
}

type stockService struct {
	pool *pgxpool.Pool
}

func NewStockService(pool *pgxpool.Pool) StockService {
	return &stockService{pool: pool}
}

func (s *stockService) Adjust(ctx context.Context, productID int64, delta int64) (int64, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	qty, err := s.AdjustTx(ctx, tx, productID, delta)
	if err != nil {
		return 0, err
	}
	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("failed to commit stock adjustment: %w", err)
	}
	return qty, nil
}

// AdjustTx locks the product's inventory row (creating it at zero first if
// needed), applies delta, and rejects results below zero.
func (s *stockService) AdjustTx(ctx context.Context, tx pgx.Tx, productID int64, delta int64) (int64, error) {
	oldQty, err := lockInventoryRow(ctx, tx, productID)
	if err != nil {
		return 0, err
	}

	newQty := oldQty + delta
	if newQty < 0 {
		return 0, &InsufficientStockError{ProductID: productID, Available: oldQty, Requested: -delta}
	}

	_, err = tx.Exec(ctx,
		"UPDATE inventory SET quantity = $1, updated_at = NOW() WHERE product_id = $2",
		newQty, productID,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to update inventory for product %d: %w", productID, err)
	}
	return newQty, nil
}

func (s *stockService) SetAbsolute(ctx context.Context, productID int64, qty int64) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := s.SetAbsoluteTx(ctx, tx, productID, qty); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit stock update: %w", err)
	}
	return nil
}

func (s *stockService) SetAbsoluteTx(ctx context.Context, tx pgx.Tx, productID int64, qty int64) error {
	if _, err := lockInventoryRow(ctx, tx, productID); err != nil {
		return err
	}
	_, err := tx.Exec(ctx,
		"UPDATE inventory SET quantity = $1, updated_at = NOW() WHERE product_id = $2",
		qty, productID,
	)
	if err != nil {
		return fmt.Errorf("failed to set inventory for product %d: %w", productID, err)
	}
	return nil
}

// lockInventoryRow upserts the inventory row for productID at zero and takes a
// row-level lock, returning the current quantity. All adjustments to one
// product serialize here.
func lockInventoryRow(ctx context.Context, tx pgx.Tx, productID int64) (int64, error) {
	_, err := tx.Exec(ctx, `
		INSERT INTO inventory (product_id, quantity)
		VALUES ($1, 0)
		ON CONFLICT (product_id) DO NOTHING
	`, productID)
	if err != nil {
		return 0, fmt.Errorf("failed to upsert inventory row for product %d: %w", productID, err)
	}

	var qty int64
	err = tx.QueryRow(ctx,
		"SELECT quantity FROM inventory WHERE product_id = $1 FOR UPDATE",
		productID,
	).Scan(&qty)
	if err != nil {
		return 0, fmt.Errorf("failed to lock inventory row for product %d: %w", productID, err)
	}
	return qty, nil
}

func (s *stockService) GetQuantity(ctx context.Context, productID int64) (int64, error) {
	var qty int64
	err := s.pool.QueryRow(ctx,
		"SELECT quantity FROM inventory WHERE product_id = $1", productID,
	).Scan(&qty)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, nil
		}
		return 0, fmt.Errorf("failed to fetch quantity for product %d: %w", productID, err)
	}
	return qty, nil
}

func (s *stockService) GetStockLevels(ctx context.Context) ([]StockLevel, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT p.id, p.barcode, p.name, i.quantity, p.mrp
		FROM inventory i
		JOIN products p ON p.id = i.product_id
		ORDER BY p.barcode
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query stock levels: %w", err)
	}
	defer rows.Close()

	var levels []StockLevel
	for rows.Next() {
		var sl StockLevel
		if err := rows.Scan(&sl.ProductID, &sl.Barcode, &sl.Name, &sl.Quantity, &sl.MRP); err != nil {
			return nil, fmt.Errorf("failed to scan stock level: %w", err)
		}
		sl.Value = sl.MRP.Mul(decimal.NewFromInt(sl.Quantity))
		levels = append(levels, sl)
	}
	return levels, nil
}
