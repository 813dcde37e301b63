package core

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// ProductInput carries the authored fields of a product. Barcode is fixed at
// creation; update requests carrying a different barcode are rejected.
type ProductInput struct {
	Barcode    string
	ClientName string
	Name       string
	Category   string
	MRP        decimal.Decimal
	ImageURL   string
}

// CatalogService manages the Product and Client master data.
type CatalogService interface {
	CreateClient(ctx context.Context, name string) (*Client, error)
	GetClients(ctx context.Context) ([]Client, error)
	GetClientByName(ctx context.Context, name string) (*Client, error)

	CreateProduct(ctx context.Context, in ProductInput) (*Product, error)
	UpdateProduct(ctx context.Context, productID int64, in ProductInput) (*Product, error)
	GetProduct(ctx context.Context, productID int64) (*Product, error)
	GetProductByBarcode(ctx context.Context, barcode string) (*Product, error)
	GetProducts(ctx context.Context, limit, offset int) ([]Product, error)
}

type catalogService struct {
	pool *pgxpool.Pool
}

func NewCatalogService(pool *pgxpool.Pool) CatalogService {
	return &catalogService{pool: pool}
}

func (s *catalogService) CreateClient(ctx context.Context, name string) (*Client, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		return nil, Validationf("client name must not be empty")
	}

	var exists bool
	if err := s.pool.QueryRow(ctx,
		"SELECT EXISTS (SELECT 1 FROM clients WHERE name = $1)", name,
	).Scan(&exists); err != nil {
		return nil, fmt.Errorf("failed to check client name: %w", err)
	}
	if exists {
		return nil, Validationf("client %q already exists", name)
	}

	var c Client
	err := s.pool.QueryRow(ctx,
		"INSERT INTO clients (name) VALUES ($1) RETURNING id, name, created_at", name,
	).Scan(&c.ID, &c.Name, &c.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create client: %w", err)
	}
	return &c, nil
}

func (s *catalogService) GetClients(ctx context.Context) ([]Client, error) {
	rows, err := s.pool.Query(ctx, "SELECT id, name, created_at FROM clients ORDER BY name")
	if err != nil {
		return nil, fmt.Errorf("failed to query clients: %w", err)
	}
	defer rows.Close()

	var clients []Client
	for rows.Next() {
		var c Client
		if err := rows.Scan(&c.ID, &c.Name, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan client: %w", err)
		}
		clients = append(clients, c)
	}
	return clients, nil
}

func (s *catalogService) GetClientByName(ctx context.Context, name string) (*Client, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	var c Client
	err := s.pool.QueryRow(ctx,
		"SELECT id, name, created_at FROM clients WHERE name = $1", name,
	).Scan(&c.ID, &c.Name, &c.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, &NotFoundError{Entity: "client", Ref: name}
		}
		return nil, fmt.Errorf("failed to fetch client %s: %w", name, err)
	}
	return &c, nil
}

// validateProductInput checks field-level rules shared by create and update.
func validateProductInput(in *ProductInput) error {
	in.Barcode = strings.TrimSpace(in.Barcode)
	in.Name = strings.ToLower(strings.TrimSpace(in.Name))
	in.Category = strings.ToLower(strings.TrimSpace(in.Category))
	in.ClientName = strings.ToLower(strings.TrimSpace(in.ClientName))
	in.ImageURL = strings.TrimSpace(in.ImageURL)

	if in.Barcode == "" {
		return Validationf("barcode must not be empty")
	}
	if in.Name == "" {
		return Validationf("product name must not be empty")
	}
	if !in.MRP.IsPositive() {
		return Validationf("mrp must be positive, got %s", in.MRP)
	}
	if in.MRP.GreaterThan(MaxMRP) {
		return Validationf("mrp must not exceed %s, got %s", MaxMRP, in.MRP)
	}
	return nil
}

func (s *catalogService) CreateProduct(ctx context.Context, in ProductInput) (*Product, error) {
	if err := validateProductInput(&in); err != nil {
		return nil, err
	}

	client, err := s.GetClientByName(ctx, in.ClientName)
	if err != nil {
		return nil, err
	}

	var exists bool
	if err := s.pool.QueryRow(ctx,
		"SELECT EXISTS (SELECT 1 FROM products WHERE barcode = $1)", in.Barcode,
	).Scan(&exists); err != nil {
		return nil, fmt.Errorf("failed to check barcode: %w", err)
	}
	if exists {
		return nil, Validationf("barcode %q already exists", in.Barcode)
	}

	var id int64
	err = s.pool.QueryRow(ctx, `
		INSERT INTO products (client_id, barcode, name, category, mrp, image_url)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`, client.ID, in.Barcode, in.Name, in.Category, in.MRP, in.ImageURL).Scan(&id)
	if err != nil {
		return nil, fmt.Errorf("failed to create product: %w", err)
	}
	return s.GetProduct(ctx, id)
}

func (s *catalogService) UpdateProduct(ctx context.Context, productID int64, in ProductInput) (*Product, error) {
	current, err := s.GetProduct(ctx, productID)
	if err != nil {
		return nil, err
	}

	if in.Barcode == "" {
		in.Barcode = current.Barcode
	}
	if err := validateProductInput(&in); err != nil {
		return nil, err
	}
	// Barcodes are immutable once a product exists: downstream identifiers
	// (uploads, order lines) reference them.
	if in.Barcode != current.Barcode {
		return nil, Validationf("barcode cannot be changed (product %d is %q)", productID, current.Barcode)
	}

	client, err := s.GetClientByName(ctx, in.ClientName)
	if err != nil {
		return nil, err
	}

	_, err = s.pool.Exec(ctx, `
		UPDATE products
		SET client_id = $1, name = $2, category = $3, mrp = $4, image_url = $5
		WHERE id = $6
	`, client.ID, in.Name, in.Category, in.MRP, in.ImageURL, productID)
	if err != nil {
		return nil, fmt.Errorf("failed to update product %d: %w", productID, err)
	}
	return s.GetProduct(ctx, productID)
}

const productSelect = `
	SELECT p.id, p.client_id, c.name, p.barcode, p.name, p.category, p.mrp, p.image_url, p.created_at
	FROM products p
	JOIN clients c ON c.id = p.client_id
`

func scanProduct(row pgx.Row) (*Product, error) {
	var p Product
	err := row.Scan(&p.ID, &p.ClientID, &p.ClientName, &p.Barcode, &p.Name, &p.Category, &p.MRP, &p.ImageURL, &p.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *catalogService) GetProduct(ctx context.Context, productID int64) (*Product, error) {
	p, err := scanProduct(s.pool.QueryRow(ctx, productSelect+" WHERE p.id = $1", productID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, &NotFoundError{Entity: "product", Ref: strconv.FormatInt(productID, 10)}
		}
		return nil, fmt.Errorf("failed to fetch product %d: %w", productID, err)
	}
	return p, nil
}

func (s *catalogService) GetProductByBarcode(ctx context.Context, barcode string) (*Product, error) {
	p, err := scanProduct(s.pool.QueryRow(ctx, productSelect+" WHERE p.barcode = $1", barcode))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, &NotFoundError{Entity: "product", Ref: barcode}
		}
		return nil, fmt.Errorf("failed to fetch product %s: %w", barcode, err)
	}
	return p, nil
}

func (s *catalogService) GetProducts(ctx context.Context, limit, offset int) ([]Product, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.pool.Query(ctx, productSelect+" ORDER BY p.barcode LIMIT $1 OFFSET $2", limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to query products: %w", err)
	}
	defer rows.Close()

	var products []Product
	for rows.Next() {
		var p Product
		if err := rows.Scan(&p.ID, &p.ClientID, &p.ClientName, &p.Barcode, &p.Name, &p.Category, &p.MRP, &p.ImageURL, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		products = append(products, p)
	}
	return products, nil
}
