package routes

import (
	"net/http"

	httpSwagger "github.com/swaggo/http-swagger"

	"TASKMANAGER_BACK-END/internal/config"
	"TASKMANAGER_BACK-END/internal/handlers"
	"TASKMANAGER_BACK-END/internal/middleware"
)

// SetupRoutes configures all application routes on the given mux.
// googleAuthHandler may be nil when Google OAuth is not configured.
func SetupRoutes(
	mux *http.ServeMux,
	authHandler *handlers.AuthHandler,
	tasksHandler *handlers.TasksHandler,
	healthHandler *handlers.HealthHandler,
	googleAuthHandler *handlers.GoogleAuthHandler,
	users middleware.UserFinder,
	jwtCfg *config.JWTConfig,
) {
	// Health check routes
	mux.HandleFunc("/api/health", healthHandler.Health)
	mux.HandleFunc("/healthz", healthHandler.Health)
	mux.HandleFunc("/livez", healthHandler.LivenessCheck)
	mux.HandleFunc("/readyz", healthHandler.ReadinessCheck)

	// Authentication routes
	mux.HandleFunc("/api/auth/register", authHandler.Register)
	mux.HandleFunc("/api/auth/login", authHandler.Login)
	mux.HandleFunc("/api/auth/me", middleware.AuthMiddleware(authHandler.Me, jwtCfg, users))

	if googleAuthHandler != nil {
		mux.HandleFunc("/api/auth/google/login", googleAuthHandler.GoogleLogin)
		mux.HandleFunc("/api/auth/google/callback", googleAuthHandler.GoogleCallback)
	}

	// Task routes (all owner-scoped, all behind the bearer middleware)
	mux.HandleFunc("/api/tasks", middleware.AuthMiddleware(tasksHandler.Tasks, jwtCfg, users))
	mux.HandleFunc("/api/tasks/", middleware.AuthMiddleware(tasksHandler.TaskByID, jwtCfg, users))

	// Swagger documentation
	mux.Handle("/swagger/", httpSwagger.WrapHandler)

	// Root route
	mux.HandleFunc("/", rootHandler)
}

func rootHandler(w http.ResponseWriter, r *http.Request) {
	w.Write([]byte("Task manager backend is running."))
}
