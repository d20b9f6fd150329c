package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"cabletv-backend/internal/auth"
	"cabletv-backend/internal/cache"
	"cabletv-backend/internal/config"
	"cabletv-backend/internal/database"
	"cabletv-backend/internal/db"
	"cabletv-backend/internal/handlers"
	"cabletv-backend/internal/health"
	h "cabletv-backend/internal/http"
	"cabletv-backend/internal/middleware"
	"cabletv-backend/internal/monitoring"
	"cabletv-backend/internal/repositories"
	"cabletv-backend/internal/services"
	"cabletv-backend/internal/store"
	"cabletv-backend/internal/store/memory"
	"cabletv-backend/migrations"
)

func main() {
	port := flag.Int("port", 0, "Server port (overrides config)")
	monitoringPort := flag.Int("monitoring-port", 9090, "Monitoring dashboard port")
	flag.Parse()

	cfg := config.Load()
	if *port != 0 {
		cfg.Server.Port = *port
	}

	// Select the backend once at startup. There is no runtime fallback: a
	// postgres deployment that cannot reach its database fails fast.
	var backend *store.Backend
	var pool *pgxpool.Pool
	switch cfg.Backend.Driver {
	case "postgres":
		pool = db.Connect(cfg)
		defer pool.Close()

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		migrator := database.NewMigrator(pool, migrations.FS, ".")
		if err := migrator.RunMigrations(ctx); err != nil {
			cancel()
			log.Fatalf("Failed to run migrations: %v", err)
		}
		cancel()

		backend = repositories.NewBackend(pool)
	case "memory":
		log.Println("Using in-memory backend (data is not persisted)")
		backend = memory.New().Backend()
	default:
		log.Fatalf("Unknown backend driver %q (want postgres or memory)", cfg.Backend.Driver)
	}

	// Redis cache is optional; the catalog falls back to the store.
	if err := cache.Init(); err != nil {
		log.Printf("[Redis] Cache unavailable: %v (package catalog served from store)", err)
	} else {
		log.Println("[Redis] Cache connected successfully")
	}

	healthChecker := health.NewHealthChecker(pool)

	// Ops dashboard runs on its own port in the background.
	go monitoring.NewMonitoringServer(pool, *monitoringPort).Start()

	jwtManager := auth.NewJWTManager(cfg)

	// Services
	userService := services.NewUserService(backend.Users, jwtManager)
	customerService := services.NewCustomerService(backend.Customers)
	subscriptionService := services.NewSubscriptionService(backend.Subscriptions, backend.Packages)
	packageService := services.NewPackageService(backend.Packages)
	reconcileService := services.NewReconcileService(backend.Customers, backend.Bills, backend.Payments)
	billingService := services.NewBillingService(backend.Customers, backend.Bills,
		subscriptionService, packageService, reconcileService)
	paymentService := services.NewPaymentService(backend.Customers, backend.Bills,
		backend.Payments, reconcileService)
	settingService := services.NewSystemSettingService(backend.Settings)
	autoBillingService := services.NewAutoBillingService(backend.Settings, billingService)
	razorpayService := services.NewRazorpayService(cfg.Razorpay.KeyID, cfg.Razorpay.KeySecret,
		cfg.Razorpay.WebhookSecret, backend.Settings, paymentService)

	autoBillingService.Start()
	defer autoBillingService.Stop()

	// Handlers
	authHandler := handlers.NewAuthHandler(userService)
	customerHandler := handlers.NewCustomerHandler(customerService)
	subscriptionHandler := handlers.NewSubscriptionHandler(subscriptionService)
	packageHandler := handlers.NewPackageHandler(packageService)
	billHandler := handlers.NewBillHandler(billingService)
	paymentHandler := handlers.NewPaymentHandler(paymentService, customerService, cfg.Operator.Name)
	reconcileHandler := handlers.NewReconcileHandler(reconcileService, customerService)
	systemSettingHandler := handlers.NewSystemSettingHandler(settingService, autoBillingService)
	razorpayHandler := handlers.NewRazorpayHandler(razorpayService)
	healthHandler := handlers.NewHealthHandler(healthChecker)

	authMiddleware := middleware.NewAuthMiddleware(jwtManager, backend.Users)
	corsMiddleware := middleware.NewCORS(cfg)

	router := h.NewRouter(authHandler, customerHandler, subscriptionHandler,
		packageHandler, billHandler, paymentHandler, reconcileHandler,
		systemSettingHandler, razorpayHandler, healthHandler, authMiddleware)

	handler := middleware.PanicRecovery(middleware.MetricsMiddleware(corsMiddleware(router)))

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	log.Printf("Server running on %s (backend: %s)", addr, cfg.Backend.Driver)
	if err := http.ListenAndServe(addr, handler); err != nil {
		log.Fatalf("Server failed to start: %v", err)
	}
}
