package ingest

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"pos-backoffice/internal/core"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var inventoryHeader = []string{"barcode", "quantity"}

// InventoryImporter sets absolute stock quantities from an inventory upload.
// Each applied row replaces the product's quantity on hand; the ledger row is
// created lazily if the product has never held stock.
type InventoryImporter struct {
	pool  *pgxpool.Pool
	stock core.StockService
}

func NewInventoryImporter(pool *pgxpool.Pool, stock core.StockService) *InventoryImporter {
	return &InventoryImporter{pool: pool, stock: stock}
}

func (imp *InventoryImporter) Header() []string { return inventoryHeader }

func (imp *InventoryImporter) Apply(ctx context.Context, row CandidateRow) (RowOutcome, error) {
	reject := func(reason string) (RowOutcome, error) {
		return RowOutcome{Row: row.Row, Raw: row.Raw, Reason: reason}, nil
	}

	barcode := row.Fields[0]
	if barcode == "" {
		return reject("barcode must not be empty")
	}

	// Field validity first, reference resolution second: a row with a bad
	// quantity and an unknown barcode is rejected for the quantity.
	qty, err := strconv.ParseInt(row.Fields[1], 10, 64)
	if err != nil {
		return reject(fmt.Sprintf("invalid quantity %q", row.Fields[1]))
	}
	if qty < 0 {
		return reject("quantity must be non-negative")
	}

	var productID int64
	err = imp.pool.QueryRow(ctx, "SELECT id FROM products WHERE barcode = $1", barcode).Scan(&productID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return reject(fmt.Sprintf("unknown barcode %q", barcode))
		}
		return RowOutcome{}, fmt.Errorf("failed to resolve barcode %q: %w", barcode, err)
	}

	if err := imp.stock.SetAbsolute(ctx, productID, qty); err != nil {
		return RowOutcome{}, fmt.Errorf("failed to set stock for %q: %w", barcode, err)
	}

	return RowOutcome{Row: row.Row, Raw: row.Raw, Success: true}, nil
}
