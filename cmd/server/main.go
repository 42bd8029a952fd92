package main

import (
	"context"
	"database/sql"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/newrelic/go-agent/v3/newrelic"
	"github.com/redis/go-redis/v9"

	"github.com/davidnguyen27/sep490-PVSM-sub003/internal/app"
	"github.com/davidnguyen27/sep490-PVSM-sub003/internal/config"
	"github.com/davidnguyen27/sep490-PVSM-sub003/internal/geo"
	"github.com/davidnguyen27/sep490-PVSM-sub003/internal/handler"
	internalRedis "github.com/davidnguyen27/sep490-PVSM-sub003/internal/redis"
	"github.com/davidnguyen27/sep490-PVSM-sub003/internal/repository/postgres"
	"github.com/davidnguyen27/sep490-PVSM-sub003/internal/service"
)

func main() {
	// Load configuration.
	cfg := config.Load()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Initialize New Relic FIRST (before database so we can instrument DB).
	var nrApp *newrelic.Application
	var err error
	if cfg.NewRelic.Enabled && cfg.NewRelic.LicenseKey != "" {
		nrApp, err = newrelic.NewApplication(
			newrelic.ConfigAppName(cfg.NewRelic.AppName),
			newrelic.ConfigLicense(cfg.NewRelic.LicenseKey),
			newrelic.ConfigDistributedTracerEnabled(true),
			newrelic.ConfigAppLogForwardingEnabled(true),
		)
		if err != nil {
			log.Printf("failed to initialize New Relic: %v", err)
		} else {
			log.Printf("New Relic enabled: app=%s (with DB instrumentation)", cfg.NewRelic.AppName)
		}
	}

	// Initialize database with New Relic instrumentation.
	db, err := app.NewDatabase(ctx, cfg.Database, nrApp)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}
	defer db.Close()
	log.Println("Connected to PostgreSQL")

	// Initialize Redis with New Relic instrumentation.
	redisClient, err := app.NewRedisClient(ctx, cfg.Redis, nrApp)
	if err != nil {
		log.Fatalf("failed to connect to redis: %v", err)
	}
	defer redisClient.Close()
	log.Println("Connected to Redis")

	// Wire dependencies.
	server, geocoder, branchStore := wireServer(db, redisClient, nrApp, cfg)

	// Load clinic branch origins. Failures degrade quotes to zero transport
	// fee rather than blocking startup.
	go loadBranches(geocoder, branchStore, cfg.Clinic.BranchAddresses)

	// Start server in goroutine.
	go func() {
		log.Printf("Starting server on port %s", cfg.Server.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	// Graceful shutdown.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("server forced to shutdown: %v", err)
	}

	log.Println("Server exited")
}

// wireServer wires all dependencies and returns the HTTP server plus the
// pieces main needs for branch bootstrap.
func wireServer(db *sql.DB, redisClient *redis.Client, nrApp *newrelic.Application, cfg *config.Config) (*http.Server, *geo.Geocoder, *internalRedis.BranchStore) {
	// Initialize Redis stores.
	geocodeCache := internalRedis.NewGeocodeCache(redisClient)
	branchStore := internalRedis.NewBranchStore(redisClient)
	lockStore := internalRedis.NewLockStore(redisClient)

	// Initialize external geo clients.
	geocoder := geo.NewGeocoder(cfg.Geo.GeocodeURL, cfg.Geo.Country, cfg.Geo.Timeout, geocodeCache)
	routeEstimator := geo.NewRouteEstimator(cfg.Geo.RouteURL, cfg.Geo.Timeout)

	// Initialize repositories.
	paymentRepo := postgres.NewPaymentRepository(db)

	// Initialize services.
	notificationService := service.NewNotificationService()
	pricingService := service.NewPricingService(geocoder, routeEstimator, branchStore)

	var checkout service.CheckoutProvider
	if cfg.Checkout.URL != "" {
		checkout = service.NewHTTPCheckoutProvider(cfg.Checkout.URL, cfg.Checkout.ReturnURL, cfg.Geo.Timeout)
	} else {
		log.Println("No checkout gateway configured, using stub provider")
		checkout = service.NewStubCheckoutProvider(cfg.Checkout.ReturnURL)
	}
	paymentService := service.NewPaymentService(paymentRepo, lockStore, checkout, notificationService)

	// Initialize handlers.
	quoteHandler := handler.NewQuoteHandler(pricingService)
	paymentHandler := handler.NewPaymentHandler(paymentService)

	// Create router.
	router := app.NewRouter(app.RouterDeps{
		QuoteHandler:   quoteHandler,
		PaymentHandler: paymentHandler,
		RedisClient:    redisClient,
		NewRelicApp:    nrApp,
	})

	// Create HTTP server.
	return &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}, geocoder, branchStore
}

// loadBranches geocodes the configured branch addresses and loads them into
// the branch geo store.
func loadBranches(geocoder *geo.Geocoder, branches *internalRedis.BranchStore, addresses []string) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	loaded := 0
	for _, address := range addresses {
		coords, err := geocoder.Resolve(ctx, address)
		if err != nil {
			log.Printf("could not geocode branch %q: %v", address, err)
			continue
		}
		if err := branches.AddBranch(ctx, address, coords); err != nil {
			log.Printf("could not store branch %q: %v", address, err)
			continue
		}
		loaded++
	}
	log.Printf("Loaded %d/%d clinic branches", loaded, len(addresses))
}
