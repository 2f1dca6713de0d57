package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/fortuna/wicket/internal/api/rest"
	"github.com/fortuna/wicket/internal/api/websocket"
	"github.com/fortuna/wicket/internal/config"
	"github.com/fortuna/wicket/internal/enrich"
	"github.com/fortuna/wicket/internal/ingest"
	"github.com/fortuna/wicket/internal/livestore"
	"github.com/fortuna/wicket/internal/provider/cricketdata"
	"github.com/fortuna/wicket/internal/publisher"
	"github.com/fortuna/wicket/internal/scheduler"
	"github.com/fortuna/wicket/internal/store"
	"github.com/fortuna/wicket/internal/store/repository"
	"github.com/fortuna/wicket/internal/transition"
)

const (
	serviceName    = "wicket"
	serviceVersion = "1.0.0"
)

func main() {
	// .env is optional; real deployments set the environment directly
	_ = godotenv.Load()

	log.Printf("Starting %s v%s - Cricket Live Match Service", serviceName, serviceVersion)

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize database connection
	db, err := store.NewDatabase(cfg.DatabaseDSN)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	log.Println("✓ Connected to database")

	// Run migrations
	if err := db.RunMigrations(); err != nil {
		log.Fatalf("Failed to run database migrations: %v", err)
	}
	log.Println("✓ Database migrations applied")

	// Initialize live store (Redis) with retry logic
	var live *livestore.Store
	maxRetries := 30
	retryDelay := 2 * time.Second

	log.Println("Connecting to Redis...")
	for i := 0; i < maxRetries; i++ {
		live, err = livestore.New(cfg.RedisURL)
		if err == nil {
			break
		}

		if i < maxRetries-1 {
			log.Printf("Redis connection attempt %d/%d failed: %v (retrying in %v)", i+1, maxRetries, err, retryDelay)
			time.Sleep(retryDelay)
		} else {
			log.Fatalf("Failed to connect to Redis after %d attempts: %v", maxRetries, err)
		}
	}
	defer live.Close()

	log.Println("✓ Connected to Redis")

	// Publisher shares the live store's Redis connection
	pub := publisher.NewRedisStreamPublisher(live.Client())
	log.Println("✓ Redis stream publisher initialized")

	// Provider client
	provider := cricketdata.NewClient(cfg.ProviderBaseURL, cfg.ProviderAPIKey, cfg.ProviderRPM)

	// Completed store with player-name enrichment
	resolver := enrich.NewPlayerResolver(provider)
	completed := repository.NewCompletedRepository(db, resolver)

	// Ingestion and transition services
	ingester := ingest.NewLiveIngester(provider, live, completed, pub)
	engine := transition.New(provider, live, transition.NewRepositoryStore(completed), pub)

	// Scheduler
	schedulerConfig := &scheduler.Config{
		SweepInterval:       cfg.SweepInterval,
		LiveRefreshInterval: cfg.LiveRefreshInterval,
		CatalogSyncInterval: cfg.CatalogSyncInterval,
		EnableSweep:         cfg.EnableSweep,
		EnableLiveRefresh:   cfg.EnableLiveRefresh,
		EnableCatalogSync:   cfg.EnableCatalogSync,
	}

	sched := scheduler.NewOrchestrator(ingester, engine, schedulerConfig)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go sched.Start(ctx)

	log.Println("✓ Scheduler started")

	// REST API server
	restServer := rest.NewServer(cfg.RESTPort, db, live, completed, sched)
	go func() {
		log.Printf("Starting REST API server on port %s", cfg.RESTPort)
		if err := restServer.Start(); err != nil {
			log.Printf("REST server error: %v", err)
		}
	}()

	log.Printf("✓ REST API server listening on :%s", cfg.RESTPort)

	// WebSocket server
	wsServer := websocket.NewServer(live.Client())
	go func() {
		log.Printf("Starting WebSocket server on port %s", cfg.WSPort)
		if err := wsServer.Start(ctx, cfg.WSPort); err != nil {
			log.Printf("WebSocket server error: %v", err)
		}
	}()

	log.Printf("✓ WebSocket server listening on :%s", cfg.WSPort)
	log.Printf("✓ %s v%s started successfully", serviceName, serviceVersion)
	log.Printf("  REST API: http://0.0.0.0:%s", cfg.RESTPort)
	log.Printf("  WebSocket: ws://0.0.0.0:%s", cfg.WSPort)

	// Wait for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	log.Println("Shutting down gracefully...")

	cancel()
	sched.Stop()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := restServer.Shutdown(shutdownCtx); err != nil {
		log.Printf("REST API server shutdown error: %v", err)
	}
	if err := wsServer.Shutdown(shutdownCtx); err != nil {
		log.Printf("WebSocket server shutdown error: %v", err)
	}

	log.Println("Stopped")
}
