// @title Task Manager Backend API
// @version 1.0
// @description Multi-tenant task management API with bearer-token authentication

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @host localhost:8080
// @BasePath /
// @schemes http https

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/cors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	_ "TASKMANAGER_BACK-END/docs" // This is required for swagger
	"TASKMANAGER_BACK-END/internal/config"
	"TASKMANAGER_BACK-END/internal/handlers"
	"TASKMANAGER_BACK-END/internal/middleware"
	"TASKMANAGER_BACK-END/internal/repository"
	"TASKMANAGER_BACK-END/internal/routes"
)

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("load config")
	}

	// pgxpool setup (simple protocol survives PgBouncer in front of the pool)
	poolCfg, err := pgxpool.ParseConfig(cfg.GetDSN())
	if err != nil {
		log.Fatal().Err(err).Msg("parse dsn")
	}
	poolCfg.ConnConfig.DefaultQueryExecMode = pgx.QueryExecModeSimpleProtocol
	poolCfg.ConnConfig.RuntimeParams["application_name"] = "taskmanager-backend"
	poolCfg.MaxConns = cfg.Database.MaxConns
	poolCfg.MinConns = cfg.Database.MinConns
	poolCfg.MaxConnLifetime = cfg.Database.MaxLifetime

	pool, err := pgxpool.NewWithConfig(context.Background(), poolCfg)
	if err != nil {
		log.Fatal().Err(err).Msg("connect")
	}
	defer pool.Close()

	{
		ctx, cancel := context.WithTimeout(context.Background(), cfg.Database.ConnTimeout)
		defer cancel()
		if err := pool.Ping(ctx); err != nil {
			log.Fatal().Err(err).Msg("ping")
		}
	}

	// Stores
	userRepo := repository.NewUserRepository(pool)
	taskRepo := repository.NewTaskRepository(pool)

	// Handlers
	authHandler := handlers.NewAuthHandler(userRepo, &cfg.JWT)
	tasksHandler := handlers.NewTasksHandler(taskRepo)
	healthHandler := handlers.NewHealthHandler(pool)

	var googleAuthHandler *handlers.GoogleAuthHandler
	if cfg.IsGoogleOAuthConfigured() {
		googleAuthHandler = handlers.NewGoogleAuthHandler(userRepo, &cfg.GoogleOAuth, &cfg.JWT)
	}

	mux := http.NewServeMux()
	routes.SetupRoutes(mux, authHandler, tasksHandler, healthHandler, googleAuthHandler, userRepo, &cfg.JWT)

	// CORS + request logging around the mux
	c := cors.New(cors.Options{
		AllowedOrigins:   cfg.CORS.AllowedOrigins,
		AllowedMethods:   cfg.CORS.AllowedMethods,
		AllowedHeaders:   cfg.CORS.AllowedHeaders,
		AllowCredentials: cfg.CORS.AllowCredentials,
	})
	handler := c.Handler(middleware.RequestLogger(mux))

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           handler,
		ReadHeaderTimeout: cfg.Server.ReadTimeout,
		WriteTimeout:      cfg.Server.WriteTimeout,
		IdleTimeout:       cfg.Server.IdleTimeout,
	}

	go func() {
		log.Info().Str("port", cfg.Server.Port).Msg("HTTP server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("ListenAndServe")
		}
	}()

	// Wait for SIGINT, then drain
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt)
	<-quit
	log.Info().Msg("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server shutdown")
	}
	log.Info().Msg("server stopped")
}
