package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/unalone/unalone-api/internal/config"
	jwtinfra "github.com/unalone/unalone-api/internal/infrastructure/jwt"
	"github.com/unalone/unalone-api/internal/infrastructure/otpstore"
	"github.com/unalone/unalone-api/internal/infrastructure/postgres"
	s3infra "github.com/unalone/unalone-api/internal/infrastructure/s3"
	"github.com/unalone/unalone-api/internal/infrastructure/smtp"
	transporthttp "github.com/unalone/unalone-api/internal/transport/http"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, reading from environment")
	}

	cfg := config.Load()
	ctx := context.Background()

	db, err := postgres.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("postgres: %v", err)
	}
	defer db.Close()
	if err := postgres.RunMigrations(ctx, db); err != nil {
		log.Fatalf("migrations: %v", err)
	}

	jwtProvider, err := jwtinfra.NewProvider(cfg)
	if err != nil {
		log.Fatalf("jwt provider: %v", err)
	}

	// OTP store: Redis when configured, in-process map otherwise.
	var otpStore otpstore.Store
	if cfg.RedisAddr != "" {
		client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPassword})
		if err := client.Ping(ctx).Err(); err != nil {
			log.Fatalf("redis: %v", err)
		}
		otpStore = otpstore.NewRedisStore(client)
	} else {
		log.Println("REDIS_ADDR not set, using in-process OTP store (single instance only)")
		otpStore = otpstore.NewMemoryStore()
	}

	s3Client, err := s3infra.NewClient(cfg)
	if err != nil {
		log.Fatalf("s3: %v", err)
	}
	s3Store := s3infra.NewStore(s3Client, cfg.S3BucketName)

	mailer := smtp.NewMailer(cfg)

	deps := &transporthttp.Deps{
		UserRepo:    postgres.NewUserRepo(db),
		SessionRepo: postgres.NewSessionRepo(db),
		PlanRepo:    postgres.NewPlanRepo(db),
		OTPStore:    otpStore,
		Mailer:      mailer,
		S3Store:     s3Store,
		JWTProvider: jwtProvider,
	}

	router := transporthttp.NewRouter(cfg, deps)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.AppPort),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("Server starting on :%s (env=%s)", cfg.AppPort, cfg.AppEnv)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("forced shutdown: %v", err)
	}
	log.Println("Server stopped")
}
