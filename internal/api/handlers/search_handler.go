package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/estavel/ingesta/internal/services"
)

type SearchHandler struct {
	svc    *services.SearchService
	logger *slog.Logger
}

func NewSearchHandler(svc *services.SearchService, logger *slog.Logger) *SearchHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &SearchHandler{svc: svc, logger: logger.With("handler", "search")}
}

type searchRequest struct {
	Query string `json:"query"`
	Limit int    `json:"limit,omitempty"`
}

func (h *SearchHandler) Search(w http.ResponseWriter, r *http.Request) {
	var req searchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if req.Query == "" {
		http.Error(w, "query required", http.StatusBadRequest)
		return
	}

	results, err := h.svc.Search(r.Context(), req.Query, req.Limit)
	if err != nil {
		h.logger.Error("search failed", "err", err)
		http.Error(w, "search failed", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(results)
}

// Healthz is the liveness probe.
func Healthz(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}
