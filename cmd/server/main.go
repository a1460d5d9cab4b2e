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

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/consultport/backend/internal/config"
	delivery "github.com/consultport/backend/internal/delivery/http"
	"github.com/consultport/backend/internal/middleware"
	"github.com/consultport/backend/internal/repository/postgres"
	"github.com/consultport/backend/internal/usecase"
	"github.com/consultport/backend/pkg/oauth"
	"github.com/consultport/backend/pkg/tracker"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Println("Consultant Portal Backend Starting...")

	// Load configuration
	cfg := config.Load()
	log.Printf("Server configured on port %s", cfg.Server.Port)

	if cfg.Tracker.ClientID == "" || cfg.Tracker.ClientSecret == "" {
		log.Println("WARNING: tracker client credentials not configured; token exchanges will fail")
	}

	// Connect to PostgreSQL with retry
	var pool *pgxpool.Pool
	for attempt := 1; attempt <= 5; attempt++ {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		var err error
		pool, err = pgxpool.New(ctx, cfg.Database.URL)
		if err == nil {
			if pingErr := pool.Ping(ctx); pingErr == nil {
				cancel()
				log.Println("Connected to PostgreSQL")
				break
			} else {
				pool.Close()
				log.Printf("Attempt %d: Failed to ping database: %v", attempt, pingErr)
			}
		} else {
			log.Printf("Attempt %d: Failed to connect to database: %v", attempt, err)
		}
		cancel()
		if attempt == 5 {
			log.Fatalf("Could not connect to database after 5 attempts")
		}
		time.Sleep(time.Duration(attempt) * 2 * time.Second)
	}
	defer pool.Close()

	// Initialize repositories
	userRepo := postgres.NewUserRepository(pool)
	tokenRepo := postgres.NewRefreshTokenRepository(pool)
	providerTokenRepo := postgres.NewProviderTokenRepository(pool)

	// Initialize tracker clients
	oauthClient := oauth.NewClient(oauth.Config{
		ClientID:     cfg.Tracker.ClientID,
		ClientSecret: cfg.Tracker.ClientSecret,
		AuthURL:      cfg.Tracker.AuthURL,
		TokenURL:     cfg.Tracker.TokenURL,
		RedirectURL:  cfg.Tracker.RedirectURL,
	})
	trackerAPI := tracker.NewClient(cfg.Tracker.APIBaseURL)

	// Initialize usecases
	authUsecase := usecase.NewAuthUsecase(userRepo, tokenRepo, &cfg.JWT)
	trackerUsecase := usecase.NewTrackerUsecase(oauthClient, trackerAPI, providerTokenRepo)

	// Initialize HTTP handler and middleware
	handler := delivery.NewHandler(authUsecase, trackerUsecase, userRepo)
	authMiddleware := middleware.NewAuthMiddleware(authUsecase)

	// Create router
	router := delivery.NewRouter(handler, authMiddleware, cfg.CORS.AllowedOrigins)

	// Create HTTP server
	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	// Start server in goroutine
	go func() {
		log.Printf("Server starting on port %s", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	fmt.Println()
	log.Println("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server stopped gracefully")
}
