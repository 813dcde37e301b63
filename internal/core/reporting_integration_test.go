package core_test

import (
	"context"
	"strings"
	"testing"

	"pos-backoffice/internal/core"

	"github.com/shopspring/decimal"
)

func TestReportingService_SalesReportCountsOnlyInvoiced(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()

	stock := core.NewStockService(pool)
	orders := core.NewOrderService(pool, stock)
	reporting := core.NewReportingService(pool)
	ctx := context.Background()

	if err := stock.SetAbsolute(ctx, 1, 100); err != nil {
		t.Fatalf("failed to seed stock: %v", err)
	}

	// One invoiced, one left created, one cancelled.
	invoiced, err := orders.CreateOrder(ctx, "", "", []core.OrderItemInput{
		{Barcode: "ABC-123", Quantity: 2, SellingPrice: decimal.NewFromInt(35)},
	})
	if err != nil {
		t.Fatalf("failed to create order: %v", err)
	}
	if _, err := orders.UpdateOrderStatus(ctx, invoiced.ID, core.OrderInvoiced, "", ""); err != nil {
		t.Fatalf("failed to invoice: %v", err)
	}

	if _, err := orders.CreateOrder(ctx, "", "", []core.OrderItemInput{
		{Barcode: "ABC-123", Quantity: 1, SellingPrice: decimal.NewFromInt(35)},
	}); err != nil {
		t.Fatalf("failed to create order: %v", err)
	}

	cancelled, err := orders.CreateOrder(ctx, "", "", []core.OrderItemInput{
		{Barcode: "ABC-123", Quantity: 4, SellingPrice: decimal.NewFromInt(35)},
	})
	if err != nil {
		t.Fatalf("failed to create order: %v", err)
	}
	if _, err := orders.UpdateOrderStatus(ctx, cancelled.ID, core.OrderCancelled, "", ""); err != nil {
		t.Fatalf("failed to cancel: %v", err)
	}

	report, err := reporting.GetSalesReport(ctx, "", "")
	if err != nil {
		t.Fatalf("failed to build sales report: %v", err)
	}

	if report.OrderCount != 1 {
		t.Errorf("expected 1 invoiced order in report, got %d", report.OrderCount)
	}
	if report.ItemsSold != 2 {
		t.Errorf("expected 2 items sold, got %d", report.ItemsSold)
	}
	if !report.Revenue.Equal(decimal.NewFromInt(70)) {
		t.Errorf("expected revenue 70, got %s", report.Revenue)
	}
	if len(report.Days) != 1 {
		t.Errorf("expected a single sales day, got %d", len(report.Days))
	}
}

func TestReportingService_SalesReportDateBounds(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()

	stock := core.NewStockService(pool)
	orders := core.NewOrderService(pool, stock)
	reporting := core.NewReportingService(pool)
	ctx := context.Background()

	if err := stock.SetAbsolute(ctx, 1, 100); err != nil {
		t.Fatalf("failed to seed stock: %v", err)
	}
	order, err := orders.CreateOrder(ctx, "", "", []core.OrderItemInput{
		{Barcode: "ABC-123", Quantity: 1, SellingPrice: decimal.NewFromInt(35)},
	})
	if err != nil {
		t.Fatalf("failed to create order: %v", err)
	}
	if _, err := orders.UpdateOrderStatus(ctx, order.ID, core.OrderInvoiced, "", ""); err != nil {
		t.Fatalf("failed to invoice: %v", err)
	}

	// A window entirely in the past excludes today's order: to is exclusive.
	report, err := reporting.GetSalesReport(ctx, "2000-01-01", "2000-02-01")
	if err != nil {
		t.Fatalf("failed to build sales report: %v", err)
	}
	if report.OrderCount != 0 {
		t.Errorf("expected empty report for past window, got %d orders", report.OrderCount)
	}

	report, err = reporting.GetSalesReport(ctx, "2000-01-01", "")
	if err != nil {
		t.Fatalf("failed to build sales report: %v", err)
	}
	if report.OrderCount != 1 {
		t.Errorf("expected 1 order in open-ended window, got %d", report.OrderCount)
	}
}

func TestReportingService_ProductPerformanceRanksByRevenue(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()

	stock := core.NewStockService(pool)
	orders := core.NewOrderService(pool, stock)
	reporting := core.NewReportingService(pool)
	ctx := context.Background()

	for id := int64(1); id <= 2; id++ {
		if err := stock.SetAbsolute(ctx, id, 100); err != nil {
			t.Fatalf("failed to seed stock: %v", err)
		}
	}

	order, err := orders.CreateOrder(ctx, "", "", []core.OrderItemInput{
		{Barcode: "ABC-123", Quantity: 1, SellingPrice: decimal.NewFromInt(35)},
		{Barcode: "XYZ-999", Quantity: 10, SellingPrice: decimal.NewFromInt(20)},
	})
	if err != nil {
		t.Fatalf("failed to create order: %v", err)
	}
	if _, err := orders.UpdateOrderStatus(ctx, order.ID, core.OrderInvoiced, "", ""); err != nil {
		t.Fatalf("failed to invoice: %v", err)
	}

	report, err := reporting.GetProductPerformance(ctx, "", "")
	if err != nil {
		t.Fatalf("failed to build performance report: %v", err)
	}
	if len(report.Products) != 2 {
		t.Fatalf("expected 2 products, got %d", len(report.Products))
	}
	// XYZ-999 earned 200, ABC-123 earned 35: revenue order, not barcode order.
	if report.Products[0].Barcode != "XYZ-999" {
		t.Errorf("expected XYZ-999 ranked first, got %s", report.Products[0].Barcode)
	}
	if report.Products[0].UnitsSold != 10 {
		t.Errorf("expected 10 units, got %d", report.Products[0].UnitsSold)
	}
}

func TestReportingService_InventoryReportClassifiesStock(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()

	stock := core.NewStockService(pool)
	reporting := core.NewReportingService(pool)
	ctx := context.Background()

	// Product 1: healthy. Product 2: low. Product 3: never stocked.
	if err := stock.SetAbsolute(ctx, 1, 50); err != nil {
		t.Fatalf("failed to seed stock: %v", err)
	}
	if err := stock.SetAbsolute(ctx, 2, 3); err != nil {
		t.Fatalf("failed to seed stock: %v", err)
	}

	report, err := reporting.GetInventoryReport(ctx)
	if err != nil {
		t.Fatalf("failed to build inventory report: %v", err)
	}

	if report.ProductCount != 3 {
		t.Errorf("expected 3 products, got %d", report.ProductCount)
	}
	if report.TotalUnits != 53 {
		t.Errorf("expected 53 total units, got %d", report.TotalUnits)
	}
	// 50×40 + 3×25 + 0×55 = 2075
	if !report.TotalValue.Equal(decimal.NewFromInt(2075)) {
		t.Errorf("expected total value 2075, got %s", report.TotalValue)
	}
	if report.LowStock != 1 {
		t.Errorf("expected 1 low-stock product, got %d", report.LowStock)
	}
	if report.OutOfStock != 1 {
		t.Errorf("expected 1 out-of-stock product, got %d", report.OutOfStock)
	}
}

func TestInventoryReport_WriteTSV(t *testing.T) {
	report := &core.InventoryReport{
		ProductCount: 2,
		TotalUnits:   53,
		TotalValue:   decimal.NewFromInt(2075),
		LowStock:     1,
		OutOfStock:   0,
		Lines: []core.StockLevel{
			{Barcode: "ABC-123", Name: "cola 500ml", Quantity: 50, MRP: decimal.NewFromInt(40), Value: decimal.NewFromInt(2000)},
			{Barcode: "XYZ-999", Name: "chips 90g", Quantity: 3, MRP: decimal.NewFromInt(25), Value: decimal.NewFromInt(75)},
		},
	}

	var sb strings.Builder
	if err := report.WriteTSV(&sb); err != nil {
		t.Fatalf("failed to write report: %v", err)
	}
	out := sb.String()

	if !strings.Contains(out, "\t") {
		t.Fatal("expected tab-separated output")
	}
	for _, want := range []string{"ABC-123", "XYZ-999", "2075", "53"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected report to contain %q\n%s", want, out)
		}
	}
	// Two sections: summary block, blank line, detail block.
	if !strings.Contains(out, "\n\n") {
		t.Error("expected a blank line between summary and detail sections")
	}
}
