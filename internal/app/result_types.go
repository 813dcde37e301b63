package app

import "pos-backoffice/internal/core"

// ClientListResult is returned by ListClients.
type ClientListResult struct {
	Clients []core.Client
}

// ProductListResult is returned by ListProducts.
type ProductListResult struct {
	Products []core.Product
	Limit    int
	Offset   int
}

// OrderResult is returned by order operations.
type OrderResult struct {
	Order *core.Order
}

// OrderListResult is returned by ListOrders.
type OrderListResult struct {
	Orders []core.Order
	Limit  int
	Offset int
}

// InvoiceResult is returned by InvoiceOrder.
type InvoiceResult struct {
	Order    *core.Order
	Document []byte
	Filename string
}

// StockResult is returned by GetStockLevels.
type StockResult struct {
	Levels []core.StockLevel
}

// UploadResult is returned by the import operations. Report is the full TSV
// outcome artifact; ReportName is deterministic per import kind.
type UploadResult struct {
	ReportName string
	Report     []byte
	Applied    int
	Rejected   int
	Structural int
}

// AssistantResult is returned by InterpretStockNote.
type AssistantResult struct {
	Proposal        *core.StockProposal
	Clarification   string
	IsClarification bool
}

// StockApplyResult maps each adjusted barcode to its new quantity on hand.
type StockApplyResult struct {
	Quantities map[string]int64
}
