package router

import (
	"encoding/json"
	"net/http"

	"autolot/internal/handler"
	"autolot/internal/middleware"
)

// Config bundles the handlers and cross-cutting pieces the router wires
// together
type Config struct {
	Cars      *handler.CarHandler
	Orders    *handler.OrderHandler
	Auth      *handler.AuthHandler
	Admin     *handler.AdminHandler
	UploadDir string
	Health    func() error
}

// New assembles the full route table. Everything under /api/v1/admin/
// is gated behind an admin session.
func New(cfg Config) http.Handler {
	mux := http.NewServeMux()

	// Public catalog
	mux.HandleFunc("GET /api/v1/cars", cfg.Cars.SearchCars)
	mux.HandleFunc("GET /api/v1/cars/filters", cfg.Cars.FilterOptions)
	mux.HandleFunc("GET /api/v1/cars/{id}", cfg.Cars.GetCar)

	// Orders
	mux.HandleFunc("POST /api/v1/orders", cfg.Orders.CreateOrder)
	mux.HandleFunc("GET /api/v1/orders/{id}", cfg.Orders.GetOrder)
	mux.HandleFunc("POST /api/v1/orders/{id}/cancel", cfg.Orders.CancelOrder)

	// Accounts
	mux.HandleFunc("POST /api/v1/auth/register", cfg.Auth.Register)
	mux.HandleFunc("POST /api/v1/auth/login", cfg.Auth.Login)
	mux.HandleFunc("POST /api/v1/auth/logout", cfg.Auth.Logout)
	mux.Handle("GET /api/v1/auth/me", middleware.RequireAuth(http.HandlerFunc(cfg.Auth.Me)))

	// Admin
	admin := http.NewServeMux()
	admin.HandleFunc("GET /api/v1/admin/dashboard", cfg.Admin.Dashboard)
	admin.HandleFunc("GET /api/v1/admin/cars", cfg.Admin.ListCars)
	admin.HandleFunc("POST /api/v1/admin/cars", cfg.Admin.CreateCar)
	admin.HandleFunc("POST /api/v1/admin/uploads", cfg.Admin.UploadImages)
	admin.HandleFunc("GET /api/v1/admin/cars/{id}", cfg.Cars.GetCar)
	admin.HandleFunc("PUT /api/v1/admin/cars/{id}", cfg.Admin.UpdateCar)
	admin.HandleFunc("DELETE /api/v1/admin/cars/{id}", cfg.Admin.DeleteCar)
	admin.HandleFunc("PATCH /api/v1/admin/cars/{id}/availability", cfg.Admin.SetCarAvailability)
	admin.HandleFunc("GET /api/v1/admin/orders", cfg.Admin.ListOrders)
	admin.HandleFunc("GET /api/v1/admin/orders/{id}", cfg.Admin.GetOrder)
	admin.HandleFunc("PATCH /api/v1/admin/orders/{id}/status", cfg.Admin.UpdateOrderStatus)
	admin.HandleFunc("GET /api/v1/admin/users", cfg.Admin.ListUsers)
	admin.HandleFunc("DELETE /api/v1/admin/users/{id}", cfg.Admin.DeleteUser)
	mux.Handle("/api/v1/admin/", middleware.RequireAdmin(admin))

	// Uploaded car images
	mux.Handle("GET /uploads/", http.StripPrefix("/uploads/", http.FileServer(http.Dir(cfg.UploadDir))))

	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		if cfg.Health != nil {
			if err := cfg.Health(); err != nil {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusServiceUnavailable)
				json.NewEncoder(w).Encode(map[string]string{"status": "unhealthy"})
				return
			}
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
	})

	return mux
}
