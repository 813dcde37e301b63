package web

import (
	"net/http"

	"pos-backoffice/internal/app"
	"pos-backoffice/internal/ingest"

	"github.com/go-chi/chi/v5"
)

// Config carries the adapter's explicit configuration; nothing is read from
// the environment inside this package.
type Config struct {
	JWTSecret      string
	AllowedOrigins string
}

// Handler holds the ApplicationService and the chi router.
type Handler struct {
	svc       app.ApplicationService
	jwtSecret string
}

// NewHandler creates and wires the chi router with all routes.
func NewHandler(svc app.ApplicationService, cfg Config) http.Handler {
	h := &Handler{svc: svc, jwtSecret: cfg.JWTSecret}

	r := chi.NewRouter()
	r.Use(RequestID)
	r.Use(Logger)
	r.Use(Recoverer)
	r.Use(CORS(cfg.AllowedOrigins))
	// Upload size ceiling plus headroom for multipart framing.
	r.Use(RequestBodyLimit(ingest.MaxFileSize + 64*1024))

	// ── Public ────────────────────────────────────────────────────────────────
	r.Get("/api/health", h.health)
	r.Post("/api/auth/login", h.login)
	r.Post("/api/auth/logout", h.logout)

	// ── Authenticated reads ───────────────────────────────────────────────────
	r.Group(func(r chi.Router) {
		r.Use(h.RequireAuth)

		r.Get("/api/clients", h.listClients)
		r.Get("/api/products", h.listProducts)
		r.Get("/api/stock", h.stockLevels)
		r.Get("/api/orders", h.listOrders)
		r.Get("/api/orders/{orderID}", h.getOrder)
		r.Get("/api/orders/{orderID}/invoice", h.invoiceDocument)
		r.Get("/api/reports/sales", h.salesReport)
		r.Get("/api/reports/products", h.productPerformanceReport)
		r.Get("/api/reports/inventory", h.inventoryReport)
	})

	// ── Supervisor-only mutations ─────────────────────────────────────────────
	r.Group(func(r chi.Router) {
		r.Use(h.RequireAuth)
		r.Use(h.RequireSupervisor)

		r.Post("/api/clients", h.createClient)
		r.Post("/api/products", h.createProduct)
		r.Put("/api/products/{productID}", h.updateProduct)

		r.Post("/api/orders", h.createOrder)
		r.Post("/api/orders/{orderID}/items", h.addOrderItem)
		r.Put("/api/orders/{orderID}/items/{itemID}", h.updateOrderItem)
		r.Delete("/api/orders/{orderID}/items/{itemID}", h.removeOrderItem)
		r.Post("/api/orders/{orderID}/status", h.updateOrderStatus)
		r.Post("/api/orders/{orderID}/invoice", h.invoiceOrder)

		r.Post("/api/stock/adjust", h.adjustStock)
		r.Post("/api/upload/products", h.uploadProducts)
		r.Post("/api/upload/inventory", h.uploadInventory)

		r.Post("/api/assistant/stock", h.interpretStockNote)
		r.Post("/api/assistant/stock/apply", h.applyStockProposal)
	})

	return r
}

func (h *Handler) health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, map[string]string{"status": "ok"})
}
