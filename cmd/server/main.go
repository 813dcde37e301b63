package main

import (
	"context"
	"log"
	"net/http"
	"os"

	webAdapter "pos-backoffice/internal/adapters/web"
	"pos-backoffice/internal/ai"
	"pos-backoffice/internal/app"
	"pos-backoffice/internal/core"
	"pos-backoffice/internal/db"

	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load()

	ctx := context.Background()
	pool, err := db.NewPool(ctx, os.Getenv("DATABASE_URL"))
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer pool.Close()

	userService := core.NewUserService(pool)
	catalogService := core.NewCatalogService(pool)
	stockService := core.NewStockService(pool)
	orderService := core.NewOrderService(pool, stockService)
	reportingService := core.NewReportingService(pool)

	apiKey := os.Getenv("OPENAI_API_KEY")
	if apiKey == "" {
		log.Println("Warning: OPENAI_API_KEY is not set")
	}
	agent := ai.NewAgent(apiKey)

	svc := app.NewAppService(pool, userService, catalogService, orderService, stockService, reportingService, app.NewTextInvoiceRenderer(), agent)

	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		log.Fatal("JWT_SECRET is not set")
	}

	port := os.Getenv("SERVER_PORT")
	if port == "" {
		port = "8080"
	}

	handler := webAdapter.NewHandler(svc, webAdapter.Config{
		JWTSecret:      jwtSecret,
		AllowedOrigins: os.Getenv("ALLOWED_ORIGINS"),
	})

	log.Printf("server starting on :%s", port)
	if err := http.ListenAndServe(":"+port, handler); err != nil {
		log.Fatalf("server: %v", err)
	}
}
