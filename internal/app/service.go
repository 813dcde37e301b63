package app

import (
	"context"

	"pos-backoffice/internal/core"

	"github.com/shopspring/decimal"
)

// InvoiceRenderer turns an order and its resolved items into a downloadable
// document. The app layer decides when to call it and what to pass; rendering
// mechanics live behind this interface.
type InvoiceRenderer interface {
	Render(ctx context.Context, order *core.Order) ([]byte, error)
}

// ApplicationService is the single interface all adapters call. It decouples
// presentation from business logic; implementations contain no display logic.
type ApplicationService interface {
	// Authenticate verifies operator credentials.
	Authenticate(ctx context.Context, username, password string) (*core.User, error)

	// Master data
	ListClients(ctx context.Context) (*ClientListResult, error)
	CreateClient(ctx context.Context, name string) (*core.Client, error)
	ListProducts(ctx context.Context, limit, offset int) (*ProductListResult, error)
	CreateProduct(ctx context.Context, in core.ProductInput) (*core.Product, error)
	UpdateProduct(ctx context.Context, productID int64, in core.ProductInput) (*core.Product, error)

	// Orders
	CreateOrder(ctx context.Context, req CreateOrderRequest) (*OrderResult, error)
	GetOrder(ctx context.Context, orderID int64) (*OrderResult, error)
	ListOrders(ctx context.Context, filter core.OrderFilter) (*OrderListResult, error)
	AddOrderItem(ctx context.Context, orderID int64, item core.OrderItemInput) (*OrderResult, error)
	UpdateOrderItem(ctx context.Context, orderID, itemID, quantity int64, sellingPrice decimal.Decimal) (*OrderResult, error)
	RemoveOrderItem(ctx context.Context, orderID, itemID int64) (*OrderResult, error)
	UpdateOrderStatus(ctx context.Context, req UpdateOrderStatusRequest) (*OrderResult, error)
	// InvoiceOrder transitions the order to INVOICED and renders its invoice
	// document. Calling it again on an INVOICED order re-renders the document
	// without a state change.
	InvoiceOrder(ctx context.Context, orderID int64) (*InvoiceResult, error)

	// Stock
	GetStockLevels(ctx context.Context) (*StockResult, error)
	AdjustStock(ctx context.Context, barcode string, delta int64) (int64, error)

	// Uploads. The response to an upload is always a report artifact, never a
	// bare count.
	ImportProducts(ctx context.Context, req UploadRequest) (*UploadResult, error)
	ImportInventory(ctx context.Context, req UploadRequest) (*UploadResult, error)

	// Reports, rendered as two-section TSV documents.
	SalesReportTSV(ctx context.Context, from, to string) ([]byte, error)
	ProductPerformanceTSV(ctx context.Context, from, to string) ([]byte, error)
	InventoryReportTSV(ctx context.Context) ([]byte, error)

	// Assistant
	InterpretStockNote(ctx context.Context, note string) (*AssistantResult, error)
	// ApplyStockProposal applies a confirmed proposal atomically: either every
	// adjustment commits or none does.
	ApplyStockProposal(ctx context.Context, p core.StockProposal) (*StockApplyResult, error)
}
