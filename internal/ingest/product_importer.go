package ingest

import (
	"context"
	"errors"
	"fmt"

	"pos-backoffice/internal/core"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

var productHeader = []string{"barcode", "client", "name", "category", "mrp"}

// ProductImporter inserts catalog rows from a product upload. Rows are
// insert-only: an existing barcode — whether pre-existing or created by an
// earlier row in the same file — rejects the row.
type ProductImporter struct {
	pool *pgxpool.Pool
}

func NewProductImporter(pool *pgxpool.Pool) *ProductImporter {
	return &ProductImporter{pool: pool}
}

func (imp *ProductImporter) Header() []string { return productHeader }

func (imp *ProductImporter) Apply(ctx context.Context, row CandidateRow) (RowOutcome, error) {
	reject := func(reason string) (RowOutcome, error) {
		return RowOutcome{Row: row.Row, Raw: row.Raw, Reason: reason}, nil
	}

	barcode, clientName, name, category := row.Fields[0], row.Fields[1], row.Fields[2], row.Fields[3]

	// Field validity first, reference resolution second.
	if barcode == "" {
		return reject("barcode must not be empty")
	}
	if name == "" {
		return reject("name must not be empty")
	}
	mrp, err := decimal.NewFromString(row.Fields[4])
	if err != nil {
		return reject(fmt.Sprintf("invalid mrp %q", row.Fields[4]))
	}
	if !mrp.IsPositive() {
		return reject("mrp must be positive")
	}
	if mrp.GreaterThan(core.MaxMRP) {
		return reject(fmt.Sprintf("mrp must not exceed %s", core.MaxMRP))
	}

	var clientID int64
	err = imp.pool.QueryRow(ctx, "SELECT id FROM clients WHERE name = $1", clientName).Scan(&clientID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return reject(fmt.Sprintf("unknown client %q", clientName))
		}
		return RowOutcome{}, fmt.Errorf("failed to resolve client %q: %w", clientName, err)
	}

	// The conflict target makes duplicates a per-row rejection rather than a
	// race: rows applied earlier in this batch are already visible here.
	tag, err := imp.pool.Exec(ctx, `
		INSERT INTO products (client_id, barcode, name, category, mrp, image_url)
		VALUES ($1, $2, $3, $4, $5, '')
		ON CONFLICT (barcode) DO NOTHING
	`, clientID, barcode, name, category, mrp)
	if err != nil {
		return RowOutcome{}, fmt.Errorf("failed to insert product %q: %w", barcode, err)
	}
	if tag.RowsAffected() == 0 {
		return reject(fmt.Sprintf("duplicate barcode %q", barcode))
	}

	return RowOutcome{Row: row.Row, Raw: row.Raw, Success: true}, nil
}
