// Package http exposes the gateway over HTTP: the provider callback
// endpoint, the shopper wait endpoint and the admin retrieval endpoint,
// as framework-agnostic net/http handlers. The pkg/gin and pkg/echo
// adapters mount the same handlers on their routers.
package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"

	swishpay "github.com/commercekit/swishpay"
)

// Handler serves the gateway's HTTP surface.
type Handler struct {
	gw  *swishpay.Gateway
	log *slog.Logger

	// deferred callback goroutines, drained on shutdown
	wg sync.WaitGroup
}

// NewHandler wraps a gateway.
func NewHandler(gw *swishpay.Gateway, log *slog.Logger) *Handler {
	if log == nil {
		log = slog.Default()
	}
	return &Handler{gw: gw, log: log}
}

// Mux returns a ServeMux with all gateway routes mounted.
func (h *Handler) Mux() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /swish/callback", h.Callback)
	mux.HandleFunc("GET /swish/wait", h.Wait)
	mux.HandleFunc("POST /swish/admin/retrieve", h.Retrieve)
	return mux
}

// Drain blocks until all deferred callback processing has finished.
// Called on graceful shutdown so acknowledged notifications are not lost.
func (h *Handler) Drain() {
	h.wg.Wait()
}

// Wait serves the shopper's wait-page poll. The tracking key arrives as the
// "key" query parameter.
func (h *Handler) Wait(w http.ResponseWriter, r *http.Request) {
	key := r.URL.Query().Get("key")
	if key == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "key parameter is required"})
		return
	}
	writeJSON(w, http.StatusOK, h.gw.WaitForPayment(r.Context(), key))
}

// Retrieve triggers a manual transaction retrieval for an order.
func (h *Handler) Retrieve(w http.ResponseWriter, r *http.Request) {
	orderID := r.URL.Query().Get("order_id")
	if orderID == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "order_id parameter is required"})
		return
	}
	if err := h.gw.RetrieveTransaction(context.WithoutCancel(r.Context()), orderID); err != nil {
		writeJSON(w, http.StatusBadGateway, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "retrieved"})
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}
