package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"

	"github.com/auric/jewelry-be/internal/api/handlers"
	"github.com/auric/jewelry-be/internal/auth"
	"github.com/auric/jewelry-be/internal/config"
	"github.com/auric/jewelry-be/internal/models"
	"github.com/auric/jewelry-be/internal/services"
	"github.com/auric/jewelry-be/internal/uploads"
)

// NewRouter creates and configures a new Chi router. Route groups decide
// the upload category and the role set; neither is ever derived from
// request content.
func NewRouter(
	cfg *config.Config,
	authMW *auth.Middleware,
	tokens *auth.TokenManager,
	files *uploads.Store,
	userService services.UserServiceProvider,
	productService services.ProductServiceProvider,
	designService services.DesignServiceProvider,
) *chi.Mux {
	r := chi.NewRouter()

	// Basic middleware stack
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{cfg.CORSOrigin},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(userService, tokens)
	productHandler := handlers.NewProductHandler(productService, files)
	designHandler := handlers.NewDesignHandler(designService, files)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok","timestamp":"` + time.Now().UTC().Format(time.RFC3339) + `"}`))
	})

	// Stored uploads are served statically under /uploads
	r.Handle("/uploads/*", http.StripPrefix("/uploads/", http.FileServer(http.Dir(cfg.UploadDir))))

	r.Route("/api", func(r chi.Router) {
		r.Use(httprate.LimitByIP(cfg.RateLimitMax, cfg.RateLimitWindow))

		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", authHandler.Register)
			r.Post("/login", authHandler.Login)
			r.With(authMW.Authenticate).Get("/me", authHandler.Me)
		})

		r.Route("/products", func(r chi.Router) {
			// Public routes
			r.Get("/", productHandler.GetAll)
			r.Get("/categories/list", productHandler.GetCategories)
			r.Get("/{id}", productHandler.Get)

			// Admin routes
			r.Group(func(r chi.Router) {
				r.Use(authMW.Authenticate)
				r.Use(authMW.RequireRoles(models.RoleAdmin))
				r.Post("/", productHandler.Create)
				r.Put("/{id}", productHandler.Update)
				r.Delete("/{id}", productHandler.Delete)
			})
		})

		r.Route("/designs", func(r chi.Router) {
			r.Use(authMW.Authenticate)

			// User routes
			r.Post("/", designHandler.Create)
			r.Get("/", designHandler.GetMine)
			r.Get("/{id}", designHandler.Get)

			// Admin routes
			r.With(authMW.RequireRoles(models.RoleAdmin)).Get("/admin/all", designHandler.GetAll)
			r.With(authMW.RequireRoles(models.RoleAdmin)).Put("/{id}/status", designHandler.UpdateStatus)
		})
	})

	return r
}
