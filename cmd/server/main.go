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

	"github.com/luminaphoto/lumina/internal/api"
	"github.com/luminaphoto/lumina/internal/config"
	"github.com/luminaphoto/lumina/internal/handler"
	"github.com/luminaphoto/lumina/internal/infrastructure/kafka"
	"github.com/luminaphoto/lumina/internal/infrastructure/observability"
	"github.com/luminaphoto/lumina/internal/infrastructure/payment"
	"github.com/luminaphoto/lumina/internal/infrastructure/redis"
	"github.com/luminaphoto/lumina/internal/media"
	core "github.com/luminaphoto/lumina/internal/repository/postgres"
	service "github.com/luminaphoto/lumina/internal/services"
	_ "github.com/lib/pq"
)

func main() {
	cfg := config.Load()

	shutdown := observability.Setup("lumina")
	defer shutdown(context.Background())

	db, err := sql.Open("postgres", cfg.PostgresDSN)
	if err != nil {
		log.Fatalf("Failed to connect to Postgres: %v", err)
	}
	defer db.Close()
	if err := core.RunMigrations(db, cfg.MigrationsPath); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	userRepo := core.NewPostgresUserRepository(db)
	eventRepo := core.NewPostgresEventRepository(db)
	photoRepo := core.NewPostgresPhotoRepository(db)
	cartRepo := core.NewPostgresCartRepository(db)
	sessionRepo := core.NewPostgresCheckoutSessionRepository(db)
	transactionRepo := core.NewPostgresTransactionRepository(db)
	purchaseRepo := core.NewPostgresPurchaseRepository(db)

	redisClient := redis.NewClient(cfg.RedisAddr)
	kafkaProducer := kafka.NewProducer(cfg.KafkaBrokers)
	defer kafkaProducer.Close()

	provider := payment.NewStripeProvider(cfg.StripeAPIKey, cfg.StripeWebhookSecret, cfg.ProviderTimeout)
	urls := media.NewURLBuilder(cfg.CDNBaseURL)

	authSvc := service.NewAuthService(userRepo, redisClient, kafkaProducer, cfg.JWTSecret)
	checkoutSvc := service.NewCheckoutService(cartRepo, photoRepo, sessionRepo, transactionRepo, purchaseRepo, provider, kafkaProducer, urls, cfg.ProviderTimeout)
	catalogSvc := service.NewCatalogService(eventRepo, photoRepo, checkoutSvc, redisClient, urls)
	cartSvc := service.NewCartService(cartRepo, photoRepo, purchaseRepo, urls)
	statsSvc := service.NewStatsService(userRepo, eventRepo, photoRepo, purchaseRepo, transactionRepo, redisClient)

	// Revenue projection fed by completed payments.
	paymentsConsumer := kafka.NewConsumer(cfg.KafkaBrokers, "payments", "lumina-stats", redisClient)
	go paymentsConsumer.Consume(context.Background())
	defer paymentsConsumer.Close()

	h := handler.NewHandler(authSvc, catalogSvc, cartSvc, checkoutSvc, statsSvc)
	router := api.SetupRouter(h, redisClient, cfg.JWTSecret)

	server := &http.Server{
		Addr:    cfg.ListenAddr,
		Handler: router,
	}
	go func() {
		log.Printf("Starting server on %s", cfg.ListenAddr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.Fatalf("Server shutdown failed: %v", err)
	}
	log.Println("Server stopped")
}
