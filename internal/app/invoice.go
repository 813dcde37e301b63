package app

import (
	"bytes"
	"context"
	"fmt"
	"text/tabwriter"

	"pos-backoffice/internal/core"

	"github.com/shopspring/decimal"
)

// TextInvoiceRenderer renders an order as a plain-text invoice document.
// It stands in for heavier renderers (PDF, XSLT) behind the same interface.
type TextInvoiceRenderer struct{}

func NewTextInvoiceRenderer() *TextInvoiceRenderer { return &TextInvoiceRenderer{} }

func (r *TextInvoiceRenderer) Render(_ context.Context, order *core.Order) ([]byte, error) {
	var buf bytes.Buffer

	fmt.Fprintf(&buf, "INVOICE — order %d\n", order.ID)
	fmt.Fprintf(&buf, "date: %s\n", order.CreatedAt.Format("2006-01-02"))
	if order.CustomerName != "" {
		fmt.Fprintf(&buf, "customer: %s", order.CustomerName)
		if order.CustomerPhone != "" {
			fmt.Fprintf(&buf, " (%s)", order.CustomerPhone)
		}
		fmt.Fprintln(&buf)
	}
	fmt.Fprintln(&buf)

	tw := tabwriter.NewWriter(&buf, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "barcode\tproduct\tqty\tprice\tamount")
	for _, it := range order.Items {
		amount := it.SellingPrice.Mul(decimal.NewFromInt(it.Quantity))
		fmt.Fprintf(tw, "%s\t%s\t%d\t%s\t%s\n",
			it.Barcode, it.ProductName, it.Quantity, it.SellingPrice.StringFixed(2), amount.StringFixed(2))
	}
	if err := tw.Flush(); err != nil {
		return nil, err
	}

	fmt.Fprintf(&buf, "\ntotal: %s\n", order.TotalAmount.StringFixed(2))
	return buf.Bytes(), nil
}
