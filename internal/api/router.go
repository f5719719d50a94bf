package api

import (
	"net"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/calleja/taskforge/internal/api/handler"
	customMiddleware "github.com/calleja/taskforge/internal/api/middleware"
	"github.com/calleja/taskforge/internal/config"
	"github.com/calleja/taskforge/internal/repository/postgres"
	"github.com/calleja/taskforge/internal/repository/redis"
	"github.com/calleja/taskforge/internal/security"
	"github.com/calleja/taskforge/internal/service"
)

// NewRouter creates and configures the HTTP router
func NewRouter(cfg *config.Config, db *postgres.DB, redisClient *redis.Client) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(customMiddleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(cfg.Server.MiddlewareTimeout))

	// CORS
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	tokens := security.NewTokenCodec(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)

	// Repositories
	tenantRepo := postgres.NewTenantRepository(db)
	userRepo := postgres.NewUserRepository(db)
	projectRepo := postgres.NewProjectRepository(db)
	taskRepo := postgres.NewTaskRepository(db)
	auditRepo := postgres.NewAuditRepository(db)

	// Services
	audit := service.NewAuditRecorder(auditRepo)
	authService := service.NewAuthService(userRepo, tenantRepo, tokens, audit)
	tenantService := service.NewTenantService(tenantRepo, audit)
	userService := service.NewUserService(userRepo, audit)
	projectService := service.NewProjectService(projectRepo, audit)
	taskService := service.NewTaskService(taskRepo, projectRepo, userRepo, audit)

	// Handlers
	authHandler := handler.NewAuthHandler(authService, tenantService)
	tenantHandler := handler.NewTenantHandler(tenantService)
	userHandler := handler.NewUserHandler(userService)
	projectHandler := handler.NewProjectHandler(projectService)
	taskHandler := handler.NewTaskHandler(taskService)

	// Middleware
	authMiddleware := customMiddleware.NewAuthMiddleware(tokens)
	loginLimiter := redis.NewLoginLimiter(redisClient, cfg.Auth.LoginRatePerMinute, cfg.Auth.LoginRateBurst)
	loginLimit := customMiddleware.NewRateLimitMiddleware(loginLimiter, func(r *http.Request) string {
		host, _, err := net.SplitHostPort(r.RemoteAddr)
		if err != nil {
			return r.RemoteAddr
		}
		return host
	})

	r.Route("/api/v1", func(r chi.Router) {
		// Health check
		r.Get("/health", handler.HealthCheck)
		r.Get("/ready", handler.ReadyCheck(db))

		// Auth routes (public)
		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", authHandler.Register)
			r.With(loginLimit.Limit).Post("/login", authHandler.Login)
		})

		// Protected routes
		r.Group(func(r chi.Router) {
			r.Use(authMiddleware.Authenticate)

			r.Post("/auth/logout", authHandler.Logout)

			r.Route("/tenants", func(r chi.Router) {
				r.Get("/", tenantHandler.List)

				r.Route("/{tenantID}", func(r chi.Router) {
					r.Get("/", tenantHandler.Get)
					r.Patch("/", tenantHandler.Update)
					r.Get("/stats", tenantHandler.Stats)

					r.Route("/users", func(r chi.Router) {
						r.Get("/", userHandler.List)
						r.Post("/", userHandler.Create)
					})

					r.Route("/projects", func(r chi.Router) {
						r.Get("/", projectHandler.List)
						r.Post("/", projectHandler.Create)
					})
				})
			})

			r.Route("/users/{userID}", func(r chi.Router) {
				r.Patch("/", userHandler.Update)
				r.Delete("/", userHandler.Delete)
			})

			r.Route("/projects/{projectID}", func(r chi.Router) {
				r.Get("/", projectHandler.Get)
				r.Patch("/", projectHandler.Update)
				r.Delete("/", projectHandler.Delete)

				r.Route("/tasks", func(r chi.Router) {
					r.Get("/", taskHandler.List)
					r.Post("/", taskHandler.Create)
				})
			})

			r.Route("/tasks/{taskID}", func(r chi.Router) {
				r.Get("/", taskHandler.Get)
				r.Patch("/", taskHandler.Update)
				r.Patch("/status", taskHandler.UpdateStatus)
			})
		})
	})

	return r
}
