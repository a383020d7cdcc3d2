package handler

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"
	service "github.com/luminaphoto/lumina/internal/services"
)

type Handler struct {
	auth     service.AuthService
	catalog  service.CatalogService
	cart     service.CartService
	checkout service.CheckoutService
	stats    service.StatsService
}

func NewHandler(
	auth service.AuthService,
	catalog service.CatalogService,
	cart service.CartService,
	checkout service.CheckoutService,
	stats service.StatsService,
) *Handler {
	return &Handler{
		auth:     auth,
		catalog:  catalog,
		cart:     cart,
		checkout: checkout,
		stats:    stats,
	}
}

type errorResponse struct {
	Error string `json:"error"`
}

func (h *Handler) writeError(w http.ResponseWriter, status int, err error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(errorResponse{Error: err.Error()})
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func (h *Handler) RegisterPublicRoutes(r *mux.Router) {
	r.HandleFunc("/register", h.Register).Methods("POST")
	r.HandleFunc("/login", h.Login).Methods("POST")
	r.HandleFunc("/events", h.ListEvents).Methods("GET")
	r.HandleFunc("/events/{id}", h.GetEvent).Methods("GET")
	r.HandleFunc("/webhook/stripe", h.StripeWebhook).Methods("POST")
	r.HandleFunc("/health", h.Health).Methods("GET")
}

func (h *Handler) RegisterProtectedRoutes(r *mux.Router) {
	r.HandleFunc("/auth/me", h.Me).Methods("GET")
	r.HandleFunc("/auth/logout", h.Logout).Methods("POST")
	r.HandleFunc("/events/{id}/photos", h.ListEventPhotos).Methods("GET")
	r.HandleFunc("/photos/{id}", h.GetPhoto).Methods("GET")
	r.HandleFunc("/photos/{id}/url/{resolution}", h.PhotoURL).Methods("GET")
	r.HandleFunc("/cart", h.GetCart).Methods("GET")
	r.HandleFunc("/cart/add", h.AddToCart).Methods("POST")
	r.HandleFunc("/cart/remove/{photo_id}", h.RemoveFromCart).Methods("DELETE")
	r.HandleFunc("/checkout", h.Checkout).Methods("POST")
	r.HandleFunc("/checkout/status/{session_id}", h.CheckoutStatus).Methods("GET")
	r.HandleFunc("/purchases", h.ListPurchases).Methods("GET")
}

func (h *Handler) RegisterAdminRoutes(r *mux.Router) {
	r.HandleFunc("/admin/events", h.ListAllEvents).Methods("GET")
	r.HandleFunc("/events", h.CreateEvent).Methods("POST")
	r.HandleFunc("/events/{id}", h.UpdateEvent).Methods("PUT")
	r.HandleFunc("/events/{id}", h.DeleteEvent).Methods("DELETE")
	r.HandleFunc("/photos", h.AddPhoto).Methods("POST")
	r.HandleFunc("/admin/users/{id}/role", h.SetUserRole).Methods("PUT")
	r.HandleFunc("/admin/stats", h.AdminStats).Methods("GET")
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
