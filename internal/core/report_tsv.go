package core

import (
	"encoding/csv"
	"io"
	"strconv"
)

// Report documents share a fixed two-section layout: a summary block, one
// blank line, then a detail table with its own header row.

func newTSVWriter(w io.Writer) *csv.Writer {
	cw := csv.NewWriter(w)
	cw.Comma = '\t'
	return cw
}

func formatInt(n int64) string { return strconv.FormatInt(n, 10) }

// WriteTSV renders the sales report.
func (r *SalesReport) WriteTSV(w io.Writer) error {
	cw := newTSVWriter(w)
	summary := [][]string{
		{"from", r.From},
		{"to", r.To},
		{"orders", formatInt(r.OrderCount)},
		{"items sold", formatInt(r.ItemsSold)},
		{"revenue", r.Revenue.StringFixed(2)},
		{},
		{"date", "orders", "items sold", "revenue"},
	}
	for _, rec := range summary {
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	for _, d := range r.Days {
		if err := cw.Write([]string{d.Date, formatInt(d.OrderCount), formatInt(d.ItemsSold), d.Revenue.StringFixed(2)}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteTSV renders the per-product performance report.
func (r *ProductPerformanceReport) WriteTSV(w io.Writer) error {
	cw := newTSVWriter(w)
	summary := [][]string{
		{"from", r.From},
		{"to", r.To},
		{"products sold", formatInt(int64(len(r.Products)))},
		{},
		{"barcode", "name", "units sold", "revenue"},
	}
	for _, rec := range summary {
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	for _, p := range r.Products {
		if err := cw.Write([]string{p.Barcode, p.Name, formatInt(p.UnitsSold), p.Revenue.StringFixed(2)}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteTSV renders the inventory valuation report.
func (r *InventoryReport) WriteTSV(w io.Writer) error {
	cw := newTSVWriter(w)
	summary := [][]string{
		{"products", formatInt(r.ProductCount)},
		{"total units", formatInt(r.TotalUnits)},
		{"total value", r.TotalValue.StringFixed(2)},
		{"low stock", formatInt(r.LowStock)},
		{"out of stock", formatInt(r.OutOfStock)},
		{},
		{"barcode", "name", "quantity", "mrp", "value"},
	}
	for _, rec := range summary {
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	for _, l := range r.Lines {
		if err := cw.Write([]string{l.Barcode, l.Name, formatInt(l.Quantity), l.MRP.StringFixed(2), l.Value.StringFixed(2)}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
