package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"go-sheet-sales/internal/handler"
	"go-sheet-sales/internal/rowstore"
	"go-sheet-sales/internal/service"
	"go-sheet-sales/internal/ws"
	"go-sheet-sales/pkg/database"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/joho/godotenv"
)

func main() {
	// 1. Load Env
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found")
	}

	// 2. Row store backend
	store := buildStore()
	inventorySheet := getenv("INVENTORY_SHEET_NAME", service.DefaultInventorySheetName)
	if _, err := store.FindOrCreate(inventorySheet, service.InventoryHeader); err != nil {
		log.Fatal("Failed to prepare inventory sheet: ", err)
	}

	// 3. WebSocket Hub
	wsHub := ws.NewHub()
	go wsHub.Run()

	// 4. Dependency Injection (Wiring Layers)
	mode := service.Mode(getenv("RECORD_MODE", string(service.ModeMerge)))
	recorder := service.NewSaleRecorder(store, wsHub, mode, inventorySheet)
	catalog := service.NewCatalogService(store, inventorySheet)
	salesReader := service.NewSalesReader(store)
	actionHandler := handler.NewActionHandler(recorder, catalog, salesReader)

	// 5. Setup Fiber
	app := fiber.New(fiber.Config{
		AppName: "Sheet Sales API v1.0",
	})

	// Middleware
	app.Use(logger.New())  // Logging request
	app.Use(recover.New()) // Panic recovery
	app.Use(cors.New())    // CORS

	// 6. Routes. One endpoint, action-dispatched, GET and POST alike.
	app.Get("/api", actionHandler.Handle)
	app.Post("/api", actionHandler.Handle)

	app.Get("/healthz", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	// WebSocket Route
	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return c.SendStatus(fiber.StatusUpgradeRequired)
	})
	app.Get("/ws", websocket.New(func(c *websocket.Conn) {
		wsHub.Add(c)
		defer wsHub.Remove(c)

		for {
			// Keep alive loop
			if _, _, err := c.ReadMessage(); err != nil {
				break
			}
		}
	}))

	// 7. Graceful Shutdown
	go func() {
		port := getenv("PORT", "3000")
		if err := app.Listen(":" + port); err != nil {
			log.Panic(err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")
	if err := app.Shutdown(); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	log.Println("Server exited")
}

// buildStore picks the backing store from STORE_BACKEND.
func buildStore() rowstore.Store {
	switch backend := getenv("STORE_BACKEND", "memory"); backend {
	case "memory":
		log.Println("Using in-memory row store (data is not persisted)")
		return rowstore.NewMemoryStore()

	case "postgres":
		db := database.ConnectDB()
		store, err := rowstore.NewGormStore(db)
		if err != nil {
			log.Fatal("Failed to init postgres row store: ", err)
		}
		return store

	case "sheets":
		store, err := rowstore.NewSheetsStore(
			context.Background(),
			os.Getenv("SHEETS_SPREADSHEET_ID"),
			os.Getenv("SHEETS_CREDENTIALS_FILE"),
		)
		if err != nil {
			log.Fatal("Failed to init sheets row store: ", err)
		}
		return store

	default:
		log.Fatalf("Unknown STORE_BACKEND: %q", backend)
		return nil
	}
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
