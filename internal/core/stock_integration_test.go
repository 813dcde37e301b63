package core_test

import (
	"context"
	"errors"
	"os"
	"sync"
	"testing"

	"pos-backoffice/internal/core"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
)

func setupTestDB(t *testing.T) *pgxpool.Pool {
	_ = godotenv.Load("../../.env")

	// Use a dedicated TEST database to avoid wiping the live app database.
	// Set TEST_DATABASE_URL in your .env or environment to run integration tests.
	dbURL := os.Getenv("TEST_DATABASE_URL")
	if dbURL == "" {
		t.Skip("TEST_DATABASE_URL not set — skipping integration test to protect live database")
	}

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, dbURL)
	if err != nil {
		t.Fatalf("Failed to connect to test database: %v", err)
	}

	// Clean and seed test DB
	_, err = pool.Exec(ctx, `
		TRUNCATE TABLE order_items, orders, inventory, products, clients, users CASCADE;

		INSERT INTO clients (id, name) VALUES (1, 'acme');

		INSERT INTO products (id, client_id, barcode, name, category, mrp) VALUES
		(1, 1, 'ABC-123', 'cola 500ml', 'beverages', 40.00),
		(2, 1, 'XYZ-999', 'chips 90g', 'snacks', 25.00),
		(3, 1, 'DEF-456', 'soap bar', 'personal care', 55.00);

		SELECT setval('clients_id_seq', 1000);
		SELECT setval('products_id_seq', 1000);
	`)
	if err != nil {
		t.Fatalf("Failed to seed test database: %v", err)
	}

	return pool
}

func TestStockService_AdjustFloorsAtZero(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()

	stock := core.NewStockService(pool)
	ctx := context.Background()

	if err := stock.SetAbsolute(ctx, 1, 3); err != nil {
		t.Fatalf("failed to set stock: %v", err)
	}

	_, err := stock.Adjust(ctx, 1, -5)
	if err == nil {
		t.Fatal("expected insufficient stock error, got nil")
	}
	var insufficientErr *core.InsufficientStockError
	if !errors.As(err, &insufficientErr) {
		t.Fatalf("expected InsufficientStockError, got %v", err)
	}
	if insufficientErr.Available != 3 || insufficientErr.Requested != 5 {
		t.Errorf("expected available=3 requested=5, got %+v", insufficientErr)
	}

	// Failed decrement must leave the ledger unchanged.
	qty, err := stock.GetQuantity(ctx, 1)
	if err != nil {
		t.Fatalf("failed to read quantity: %v", err)
	}
	if qty != 3 {
		t.Errorf("expected quantity 3 after rejected decrement, got %d", qty)
	}
}

func TestStockService_LazyRowCreation(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()

	stock := core.NewStockService(pool)
	ctx := context.Background()

	// No inventory row exists yet: quantity reads as zero.
	qty, err := stock.GetQuantity(ctx, 2)
	if err != nil {
		t.Fatalf("failed to read quantity: %v", err)
	}
	if qty != 0 {
		t.Errorf("expected 0 for untouched product, got %d", qty)
	}

	// First adjustment creates the row.
	newQty, err := stock.Adjust(ctx, 2, 7)
	if err != nil {
		t.Fatalf("failed to adjust: %v", err)
	}
	if newQty != 7 {
		t.Errorf("expected 7 after first adjustment, got %d", newQty)
	}
}

func TestStockService_ConcurrentDecrementOfLastUnit(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()

	stock := core.NewStockService(pool)
	ctx := context.Background()

	if err := stock.SetAbsolute(ctx, 1, 1); err != nil {
		t.Fatalf("failed to set stock: %v", err)
	}

	// Two concurrent decrements race for the last unit. Exactly one may win.
	var wg sync.WaitGroup
	errCh := make(chan error, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := stock.Adjust(ctx, 1, -1)
			errCh <- err
		}()
	}
	wg.Wait()
	close(errCh)

	var successes, failures int
	for err := range errCh {
		if err == nil {
			successes++
			continue
		}
		var insufficientErr *core.InsufficientStockError
		if !errors.As(err, &insufficientErr) {
			t.Fatalf("unexpected error kind: %v", err)
		}
		failures++
	}
	if successes != 1 || failures != 1 {
		t.Errorf("expected exactly one winner, got %d successes and %d failures", successes, failures)
	}

	qty, err := stock.GetQuantity(ctx, 1)
	if err != nil {
		t.Fatalf("failed to read quantity: %v", err)
	}
	if qty != 0 {
		t.Errorf("expected quantity 0 after the race, got %d", qty)
	}
}

func TestStockService_GetStockLevels(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()

	stock := core.NewStockService(pool)
	ctx := context.Background()

	if err := stock.SetAbsolute(ctx, 1, 4); err != nil {
		t.Fatalf("failed to set stock: %v", err)
	}
	if err := stock.SetAbsolute(ctx, 2, 0); err != nil {
		t.Fatalf("failed to set stock: %v", err)
	}

	levels, err := stock.GetStockLevels(ctx)
	if err != nil {
		t.Fatalf("failed to fetch stock levels: %v", err)
	}
	if len(levels) != 2 {
		t.Fatalf("expected 2 stock levels, got %d", len(levels))
	}

	// Ordered by barcode: ABC-123 before XYZ-999.
	if levels[0].Barcode != "ABC-123" || levels[0].Quantity != 4 {
		t.Errorf("unexpected first level: %+v", levels[0])
	}
	// Value = quantity × MRP
	if !levels[0].Value.Equal(decimal.NewFromInt(160)) {
		t.Errorf("expected value 160, got %s", levels[0].Value)
	}
}
