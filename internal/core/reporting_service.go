package core

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// LowStockThreshold is the fixed policy constant below which a product counts
// as low stock in the inventory report.
const LowStockThreshold = 10

// ── Report types ──────────────────────────────────────────────────────────────

// DailySales is one day's invoiced revenue.
type DailySales struct {
	Date       string // YYYY-MM-DD
	OrderCount int64
	ItemsSold  int64
	Revenue    decimal.Decimal
}

// SalesReport aggregates invoiced orders over a date range.
// Only INVOICED orders contribute; CREATED and CANCELLED orders are excluded.
type SalesReport struct {
	From       string
	To         string
	OrderCount int64
	ItemsSold  int64
	Revenue    decimal.Decimal
	Days       []DailySales
}

// ProductSales is one product's performance over a date range.
type ProductSales struct {
	Barcode   string
	Name      string
	UnitsSold int64
	Revenue   decimal.Decimal
}

// ProductPerformanceReport ranks products by invoiced revenue.
type ProductPerformanceReport struct {
	From     string
	To       string
	Products []ProductSales
}

// InventoryReport values stock on hand at MRP and counts low/out-of-stock
// products against LowStockThreshold.
type InventoryReport struct {
	ProductCount int64
	TotalUnits   int64
	TotalValue   decimal.Decimal
	LowStock     int64 // 0 < quantity < LowStockThreshold
	OutOfStock   int64
	Lines        []StockLevel
}

// ── Interface ─────────────────────────────────────────────────────────────────

// ReportingService provides read-only aggregation over persisted data.
// It never mutates state. from/to are YYYY-MM-DD; from is inclusive, to is
// exclusive; empty string means unbounded.
type ReportingService interface {
	GetSalesReport(ctx context.Context, from, to string) (*SalesReport, error)
	GetProductPerformance(ctx context.Context, from, to string) (*ProductPerformanceReport, error)
	GetInventoryReport(ctx context.Context) (*InventoryReport, error)
}

type reportingService struct {
	pool *pgxpool.Pool
}

func NewReportingService(pool *pgxpool.Pool) ReportingService {
	return &reportingService{pool: pool}
}

// dateBounds appends optional date-range conditions on orders.created_at.
func dateBounds(from, to string, args []any) (string, []any) {
	cond := ""
	if from != "" {
		args = append(args, from)
		cond += fmt.Sprintf(" AND o.created_at >= $%d::date", len(args))
	}
	if to != "" {
		args = append(args, to)
		cond += fmt.Sprintf(" AND o.created_at < $%d::date", len(args))
	}
	return cond, args
}

func (s *reportingService) GetSalesReport(ctx context.Context, from, to string) (*SalesReport, error) {
	report := &SalesReport{From: from, To: to}

	cond, args := dateBounds(from, to, nil)
	rows, err := s.pool.Query(ctx, `
		SELECT o.created_at::date::text,
		       COUNT(DISTINCT o.id),
		       COALESCE(SUM(oi.quantity), 0),
		       COALESCE(SUM(oi.quantity * oi.selling_price), 0)
		FROM orders o
		JOIN order_items oi ON oi.order_id = o.id
		WHERE o.status = 'INVOICED'`+cond+`
		GROUP BY o.created_at::date
		ORDER BY o.created_at::date
	`, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query sales report: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var d DailySales
		if err := rows.Scan(&d.Date, &d.OrderCount, &d.ItemsSold, &d.Revenue); err != nil {
			return nil, fmt.Errorf("failed to scan sales day: %w", err)
		}
		report.Days = append(report.Days, d)
		report.OrderCount += d.OrderCount
		report.ItemsSold += d.ItemsSold
		report.Revenue = report.Revenue.Add(d.Revenue)
	}
	return report, nil
}

func (s *reportingService) GetProductPerformance(ctx context.Context, from, to string) (*ProductPerformanceReport, error) {
	report := &ProductPerformanceReport{From: from, To: to}

	cond, args := dateBounds(from, to, nil)
	rows, err := s.pool.Query(ctx, `
		SELECT p.barcode, p.name,
		       COALESCE(SUM(oi.quantity), 0),
		       COALESCE(SUM(oi.quantity * oi.selling_price), 0)
		FROM orders o
		JOIN order_items oi ON oi.order_id = o.id
		JOIN products p ON p.id = oi.product_id
		WHERE o.status = 'INVOICED'`+cond+`
		GROUP BY p.barcode, p.name
		ORDER BY SUM(oi.quantity * oi.selling_price) DESC, p.barcode
	`, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query product performance: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var ps ProductSales
		if err := rows.Scan(&ps.Barcode, &ps.Name, &ps.UnitsSold, &ps.Revenue); err != nil {
			return nil, fmt.Errorf("failed to scan product sales: %w", err)
		}
		report.Products = append(report.Products, ps)
	}
	return report, nil
}

func (s *reportingService) GetInventoryReport(ctx context.Context) (*InventoryReport, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT p.id, p.barcode, p.name, COALESCE(i.quantity, 0), p.mrp
		FROM products p
		LEFT JOIN inventory i ON i.product_id = p.id
		ORDER BY p.barcode
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query inventory report: %w", err)
	}
	defer rows.Close()

	report := &InventoryReport{}
	for rows.Next() {
		var sl StockLevel
		if err := rows.Scan(&sl.ProductID, &sl.Barcode, &sl.Name, &sl.Quantity, &sl.MRP); err != nil {
			return nil, fmt.Errorf("failed to scan inventory line: %w", err)
		}
		sl.Value = sl.MRP.Mul(decimal.NewFromInt(sl.Quantity))

		report.ProductCount++
		report.TotalUnits += sl.Quantity
		report.TotalValue = report.TotalValue.Add(sl.Value)
		switch {
		case sl.Quantity == 0:
			report.OutOfStock++
		case sl.Quantity < LowStockThreshold:
			report.LowStock++
		}
		report.Lines = append(report.Lines, sl)
	}
	return report, nil
}
