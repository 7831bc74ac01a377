package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"time"

	"hostel-backend/internal/cache"
	"hostel-backend/internal/config"
	"hostel-backend/internal/database"
	"hostel-backend/internal/db"
	"hostel-backend/internal/handlers"
	"hostel-backend/internal/health"
	h "hostel-backend/internal/http"
	"hostel-backend/internal/middleware"
	"hostel-backend/internal/repositories"
	"hostel-backend/internal/services"
)

func main() {
	port := flag.Int("port", 0, "Server port (overrides config)")
	flag.Parse()

	// Load configuration
	cfg := config.Load()
	if *port != 0 {
		cfg.Server.Port = *port
	}

	// Connect to PostgreSQL
	pool := db.Connect(cfg)
	defer pool.Close()

	// Initialize Redis cache (optional - graceful fallback if unavailable)
	if err := cache.Init(); err != nil {
		log.Printf("[Redis] Cache unavailable: %v (layout and availability reads go to Postgres)", err)
	} else {
		log.Println("[Redis] Cache connected successfully")
	}

	// Run database migrations
	// This automatically creates all required tables on startup
	log.Println("Running database migrations...")
	migrator := database.NewMigrator(pool)
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := migrator.RunMigrations(ctx); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	// Initialize health checker
	healthChecker := health.NewHealthChecker(pool)

	// Initialize repositories
	bedRepo := repositories.NewPostgresBedRepository(pool)
	roomRepo := repositories.NewPostgresRoomRepository(pool)
	layoutRepo := repositories.NewPostgresLayoutRepository(pool)

	// Initialize services
	resolver := services.NewIdentifierResolver(bedRepo)
	occupancyService := services.NewOccupancyService(bedRepo, roomRepo)
	bedService := services.NewBedService(bedRepo, roomRepo, occupancyService)
	layoutSyncService := services.NewLayoutSyncService(bedRepo, roomRepo, layoutRepo, resolver, occupancyService)
	bulkService := services.NewBulkService(bedRepo, bedService, occupancyService)
	migrationService := services.NewLayoutMigrationService(roomRepo, layoutRepo, bedRepo, resolver, layoutSyncService)

	// Initialize handlers
	bedHandler := handlers.NewBedHandler(bedService)
	bulkHandler := handlers.NewBulkHandler(bulkService)
	roomHandler := handlers.NewRoomHandler(bedService, occupancyService)
	layoutHandler := handlers.NewLayoutHandler(layoutSyncService, migrationService)
	healthHandler := handlers.NewHealthHandler(healthChecker)

	// Build router and middleware chain
	corsMiddleware := middleware.NewCORS(cfg)
	router := h.NewRouter(bedHandler, bulkHandler, roomHandler, layoutHandler, healthHandler)
	handler := middleware.PanicRecovery(middleware.MetricsMiddleware(corsMiddleware(router)))

	// Start server
	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	log.Printf("Server running on %s", addr)
	if err := http.ListenAndServe(addr, handler); err != nil {
		log.Fatalf("Server failed to start: %v", err)
	}
}
