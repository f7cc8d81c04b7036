package cmd

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"pinshare-backend/internal/config"
	"pinshare-backend/internal/handlers"
	"pinshare-backend/internal/middleware"
	"pinshare-backend/internal/repository"
	"pinshare-backend/internal/services"
	"pinshare-backend/internal/storage"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func Run() {
	// Load configuration
	cfg, err := config.Load("config.yaml")
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	// Setup logger
	setupLogger(cfg.Log.Level)

	// Connect to database
	db, err := pgxpool.New(context.Background(), cfg.Database.DSN())
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer db.Close()

	// Test database connection
	if err := db.Ping(context.Background()); err != nil {
		log.Fatal().Err(err).Msg("Failed to ping database")
	}
	log.Info().Msg("Database connection established")

	// Initialize object storage
	imageStorage, err := storage.NewS3Storage(
		context.Background(),
		cfg.S3.Region,
		cfg.S3.Bucket,
		cfg.S3.AccessKey,
		cfg.S3.SecretKey,
		cfg.S3.Endpoint,
		cfg.S3.PublicBaseURL,
	)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create S3 storage")
	}

	// Initialize repositories
	userRepo := repository.NewUserRepository(db)
	pinRepo := repository.NewPinRepository(db)
	relationRepo := repository.NewRelationRepository(db)

	// Initialize services
	authService := services.NewAuthService(userRepo, cfg.JWT.Secret)
	pinService := services.NewPinService(pinRepo, relationRepo, imageStorage)
	userService := services.NewUserService(userRepo, relationRepo)
	wsHub := services.NewWSHub()

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(authService)
	pinHandler := handlers.NewPinHandler(pinService, wsHub)
	userHandler := handlers.NewUserHandler(userService, pinService, wsHub)
	wsHandler := handlers.NewWebSocketHandler(wsHub, authService)
	healthHandler := handlers.NewHealthHandler(db)

	// Setup router
	r := chi.NewRouter()

	// Middleware
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.Logger)
	r.Use(chiMiddleware.Recoverer)
	r.Use(corsMiddleware)

	// Routes
	r.Route("/api", func(r chi.Router) {
		r.Get("/health", healthHandler.Health)

		// Public routes
		r.Post("/auth/signup", authHandler.Signup)
		r.Post("/auth/login", authHandler.Login)

		// Public reads; a valid token fills the viewer's liked/saved flags.
		r.Group(func(r chi.Router) {
			r.Use(middleware.OptionalAuth(authService))
			r.Get("/pins", pinHandler.List)
			r.Get("/pins/{id}", pinHandler.Get)
			r.Get("/users/{id}", userHandler.GetProfile)
			r.Get("/users/{id}/pins", userHandler.ListPins)
		})

		// Protected routes
		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(authService))
			r.Get("/auth/me", authHandler.Me)
			r.Post("/pins", pinHandler.Create)
			r.Post("/pins/{id}/like", pinHandler.ToggleLike)
			r.Post("/pins/{id}/save", pinHandler.ToggleSave)
			r.Delete("/pins/{id}", pinHandler.Delete)
			r.Get("/users/{id}/saved", userHandler.ListSaved)
			r.Post("/users/{id}/follow", userHandler.ToggleFollow)
		})
	})

	// WebSocket route
	r.Get("/ws", wsHandler.HandleWebSocket)

	// Create HTTP server
	srv := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.Info().
			Str("host", cfg.Server.Host).
			Int("port", cfg.Server.Port).
			Msg("Starting server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server failed to start")
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exited")
}

// setupLogger configures zerolog logger
func setupLogger(level string) {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	switch level {
	case "debug":
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	case "info":
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	case "warn":
		zerolog.SetGlobalLevel(zerolog.WarnLevel)
	case "error":
		zerolog.SetGlobalLevel(zerolog.ErrorLevel)
	default:
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}
}

// corsMiddleware handles CORS
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Authorization, Content-Type")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}
