package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/nvaldr/shopstack-be/internal/api/handlers"
	"github.com/nvaldr/shopstack-be/internal/auth"
	"github.com/nvaldr/shopstack-be/internal/config"
	"github.com/nvaldr/shopstack-be/internal/services"
)

// NewRouter creates and configures a new Chi router.
func NewRouter(cfg *config.Config, userService services.UserServiceProvider, shopService services.ShopServiceProvider) *chi.Mux {
	r := chi.NewRouter()

	// Basic middleware stack
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Shop subdomain resolution runs on every request.
	r.Use(SubdomainMiddleware(shopService, cfg.BaseDomain))

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(userService, cfg.CookieDomain, cfg.IsProduction())
	userHandler := handlers.NewUserHandler(userService)
	shopHandler := handlers.NewShopHandler(shopService)

	r.Get("/", rootHandler)

	r.Route("/auth", func(r chi.Router) {
		r.Post("/signup", authHandler.Signup)
		r.Post("/login", authHandler.Login)
		r.Post("/logout", authHandler.Logout)
	})

	r.Route("/users", func(r chi.Router) {
		r.Use(auth.JWTMiddleware())
		r.Get("/me", userHandler.GetMe)
	})

	r.Route("/shops", func(r chi.Router) {
		r.Get("/by-name/{name}", shopHandler.GetByName)
		r.Get("/{id}", shopHandler.Get)
	})

	return r
}

// rootHandler serves the shop-scoped view when the request arrived on a shop
// subdomain, and a plain service banner otherwise.
func rootHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	if shop, ok := ShopFromContext(r.Context()); ok {
		json.NewEncoder(w).Encode(map[string]any{
			"message":  "This is " + shop.Name + " shop",
			"shopName": shop.Name,
			"shop":     shop,
		})
		return
	}

	json.NewEncoder(w).Encode(map[string]string{"message": "Shopstack API"})
}
