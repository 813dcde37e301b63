package app

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"pos-backoffice/internal/ai"
	"pos-backoffice/internal/core"
	"pos-backoffice/internal/ingest"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

type appService struct {
	pool      *pgxpool.Pool
	users     core.UserService
	catalog   core.CatalogService
	orders    core.OrderService
	stock     core.StockService
	reporting core.ReportingService
	renderer  InvoiceRenderer
	agent     *ai.Agent
}

// NewAppService constructs an appService that satisfies ApplicationService.
func NewAppService(
	pool *pgxpool.Pool,
	users core.UserService,
	catalog core.CatalogService,
	orders core.OrderService,
	stock core.StockService,
	reporting core.ReportingService,
	renderer InvoiceRenderer,
	agent *ai.Agent,
) ApplicationService {
	return &appService{
		pool:      pool,
		users:     users,
		catalog:   catalog,
		orders:    orders,
		stock:     stock,
		reporting: reporting,
		renderer:  renderer,
		agent:     agent,
	}
}

func (s *appService) Authenticate(ctx context.Context, username, password string) (*core.User, error) {
	return s.users.Authenticate(ctx, username, password)
}

// ── Master data ──────────────────────────────────────────────────────────────

func (s *appService) ListClients(ctx context.Context) (*ClientListResult, error) {
	clients, err := s.catalog.GetClients(ctx)
	if err != nil {
		return nil, err
	}
	return &ClientListResult{Clients: clients}, nil
}

func (s *appService) CreateClient(ctx context.Context, name string) (*core.Client, error) {
	return s.catalog.CreateClient(ctx, name)
}

func (s *appService) ListProducts(ctx context.Context, limit, offset int) (*ProductListResult, error) {
	products, err := s.catalog.GetProducts(ctx, limit, offset)
	if err != nil {
		return nil, err
	}
	return &ProductListResult{Products: products, Limit: limit, Offset: offset}, nil
}

func (s *appService) CreateProduct(ctx context.Context, in core.ProductInput) (*core.Product, error) {
	return s.catalog.CreateProduct(ctx, in)
}

func (s *appService) UpdateProduct(ctx context.Context, productID int64, in core.ProductInput) (*core.Product, error) {
	return s.catalog.UpdateProduct(ctx, productID, in)
}

// ── Orders ───────────────────────────────────────────────────────────────────

func (s *appService) CreateOrder(ctx context.Context, req CreateOrderRequest) (*OrderResult, error) {
	order, err := s.orders.CreateOrder(ctx, req.CustomerName, req.CustomerPhone, req.Items)
	if err != nil {
		return nil, err
	}
	return &OrderResult{Order: order}, nil
}

func (s *appService) GetOrder(ctx context.Context, orderID int64) (*OrderResult, error) {
	order, err := s.orders.GetOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	return &OrderResult{Order: order}, nil
}

func (s *appService) ListOrders(ctx context.Context, filter core.OrderFilter) (*OrderListResult, error) {
	orders, err := s.orders.ListOrders(ctx, filter)
	if err != nil {
		return nil, err
	}
	return &OrderListResult{Orders: orders, Limit: filter.Limit, Offset: filter.Offset}, nil
}

func (s *appService) AddOrderItem(ctx context.Context, orderID int64, item core.OrderItemInput) (*OrderResult, error) {
	order, err := s.orders.AddOrderItem(ctx, orderID, item)
	if err != nil {
		return nil, err
	}
	return &OrderResult{Order: order}, nil
}

func (s *appService) UpdateOrderItem(ctx context.Context, orderID, itemID, quantity int64, sellingPrice decimal.Decimal) (*OrderResult, error) {
	order, err := s.orders.UpdateOrderItem(ctx, orderID, itemID, quantity, sellingPrice)
	if err != nil {
		return nil, err
	}
	return &OrderResult{Order: order}, nil
}

func (s *appService) RemoveOrderItem(ctx context.Context, orderID, itemID int64) (*OrderResult, error) {
	order, err := s.orders.RemoveOrderItem(ctx, orderID, itemID)
	if err != nil {
		return nil, err
	}
	return &OrderResult{Order: order}, nil
}

func (s *appService) UpdateOrderStatus(ctx context.Context, req UpdateOrderStatusRequest) (*OrderResult, error) {
	order, err := s.orders.UpdateOrderStatus(ctx, req.OrderID, req.Status, req.CustomerName, req.CustomerPhone)
	if err != nil {
		return nil, err
	}
	return &OrderResult{Order: order}, nil
}

func (s *appService) InvoiceOrder(ctx context.Context, orderID int64) (*InvoiceResult, error) {
	order, err := s.orders.GetOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.Status != core.OrderInvoiced {
		order, err = s.orders.UpdateOrderStatus(ctx, orderID, core.OrderInvoiced, "", "")
		if err != nil {
			return nil, err
		}
	}

	doc, err := s.renderer.Render(ctx, order)
	if err != nil {
		return nil, fmt.Errorf("failed to render invoice for order %d: %w", orderID, err)
	}
	return &InvoiceResult{
		Order:    order,
		Document: doc,
		Filename: fmt.Sprintf("invoice-%d.txt", orderID),
	}, nil
}

// ── Stock ────────────────────────────────────────────────────────────────────

func (s *appService) GetStockLevels(ctx context.Context) (*StockResult, error) {
	levels, err := s.stock.GetStockLevels(ctx)
	if err != nil {
		return nil, err
	}
	return &StockResult{Levels: levels}, nil
}

func (s *appService) AdjustStock(ctx context.Context, barcode string, delta int64) (int64, error) {
	product, err := s.catalog.GetProductByBarcode(ctx, barcode)
	if err != nil {
		return 0, err
	}
	return s.stock.Adjust(ctx, product.ID, delta)
}

// ── Uploads ──────────────────────────────────────────────────────────────────

func (s *appService) ImportProducts(ctx context.Context, req UploadRequest) (*UploadResult, error) {
	return s.runImport(ctx, req, ingest.NewProductImporter(s.pool), "product-upload-report.tsv")
}

func (s *appService) ImportInventory(ctx context.Context, req UploadRequest) (*UploadResult, error) {
	return s.runImport(ctx, req, ingest.NewInventoryImporter(s.pool, s.stock), "inventory-upload-report.tsv")
}

func (s *appService) runImport(ctx context.Context, req UploadRequest, imp ingest.RowImporter, reportName string) (*UploadResult, error) {
	res, err := ingest.Run(ctx, req.Content, req.Filename, req.Size, imp)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := ingest.WriteReport(&buf, res); err != nil {
		return nil, fmt.Errorf("failed to write upload report: %w", err)
	}
	return &UploadResult{
		ReportName: reportName,
		Report:     buf.Bytes(),
		Applied:    res.Applied,
		Rejected:   res.Rejected,
		Structural: len(res.StructuralErrors),
	}, nil
}

// ── Reports ──────────────────────────────────────────────────────────────────

func (s *appService) SalesReportTSV(ctx context.Context, from, to string) ([]byte, error) {
	report, err := s.reporting.GetSalesReport(ctx, from, to)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := report.WriteTSV(&buf); err != nil {
		return nil, fmt.Errorf("failed to render sales report: %w", err)
	}
	return buf.Bytes(), nil
}

func (s *appService) ProductPerformanceTSV(ctx context.Context, from, to string) ([]byte, error) {
	report, err := s.reporting.GetProductPerformance(ctx, from, to)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := report.WriteTSV(&buf); err != nil {
		return nil, fmt.Errorf("failed to render product performance report: %w", err)
	}
	return buf.Bytes(), nil
}

func (s *appService) InventoryReportTSV(ctx context.Context) ([]byte, error) {
	report, err := s.reporting.GetInventoryReport(ctx)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := report.WriteTSV(&buf); err != nil {
		return nil, fmt.Errorf("failed to render inventory report: %w", err)
	}
	return buf.Bytes(), nil
}

// ── Assistant ────────────────────────────────────────────────────────────────

// stockCatalog renders the product listing handed to the assistant: one line
// per product with its exact barcode and quantity on hand.
func stockCatalog(lines []core.StockLevel) string {
	var sb strings.Builder
	for _, l := range lines {
		fmt.Fprintf(&sb, "%s\t%s\ton hand: %d\n", l.Barcode, l.Name, l.Quantity)
	}
	return sb.String()
}

func (s *appService) InterpretStockNote(ctx context.Context, note string) (*AssistantResult, error) {
	if strings.TrimSpace(note) == "" {
		return nil, core.Validationf("note must not be empty")
	}

	// The inventory report reads products LEFT JOIN inventory, so products
	// that never held stock are still listed (at zero) and the assistant can
	// propose their first receipt.
	report, err := s.reporting.GetInventoryReport(ctx)
	if err != nil {
		return nil, err
	}

	resp, err := s.agent.InterpretStockNote(ctx, note, stockCatalog(report.Lines))
	if err != nil {
		return nil, err
	}
	if resp.IsClarificationRequest {
		return &AssistantResult{IsClarification: true, Clarification: resp.Clarification.Message}, nil
	}
	return &AssistantResult{Proposal: resp.Proposal}, nil
}

func (s *appService) ApplyStockProposal(ctx context.Context, p core.StockProposal) (*StockApplyResult, error) {
	p.Normalize()
	if err := p.Validate(); err != nil {
		return nil, core.Validationf("invalid proposal: %v", err)
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	quantities := make(map[string]int64, len(p.Adjustments))
	for _, a := range p.Adjustments {
		product, err := s.catalog.GetProductByBarcode(ctx, a.Barcode)
		if err != nil {
			return nil, err
		}
		qty, err := s.stock.AdjustTx(ctx, tx, product.ID, a.Delta)
		if err != nil {
			return nil, err
		}
		quantities[a.Barcode] = qty
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit stock proposal: %w", err)
	}
	return &StockApplyResult{Quantities: quantities}, nil
}
