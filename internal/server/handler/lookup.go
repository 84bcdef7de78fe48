package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/Widell98/MarketMind-sub004/internal/domain"
)

// LookupService defines what the lookup handler requires from the service
// layer.
type LookupService interface {
	Fetch(ctx context.Context, intent, subject, query string) (domain.LookupResult, error)
}

// LookupHandler serves the persisted lookup-cache endpoint.
type LookupHandler struct {
	lookup LookupService
	logger *slog.Logger
}

// NewLookupHandler creates a LookupHandler with the given service and logger.
func NewLookupHandler(lookup LookupService, logger *slog.Logger) *LookupHandler {
	return &LookupHandler{
		lookup: lookup,
		logger: logger,
	}
}

// lookupResponse wraps the opaque cached payload with cache metadata.
type lookupResponse struct {
	Payload   json.RawMessage `json:"payload"`
	FetchedAt time.Time       `json:"fetchedAt"`
	CacheHit  bool            `json:"cacheHit"`
	Warning   string          `json:"warning,omitempty"`
}

// Lookup resolves a query through the persisted response cache.
// GET /api/lookup?intent=search&subject=markets&q=election
func (h *LookupHandler) Lookup(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	intent := q.Get("intent")
	subject := q.Get("subject")
	query := q.Get("q")
	if query == "" {
		writeError(w, http.StatusBadRequest, "missing query parameter q")
		return
	}

	res, err := h.lookup.Fetch(r.Context(), intent, subject, query)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "handler: lookup failed",
			slog.String("intent", intent),
			slog.String("subject", subject),
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusBadGateway, "upstream provider unavailable and no cached data")
		return
	}

	status := http.StatusOK
	if res.Degraded {
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, lookupResponse{
		Payload:   res.Payload,
		FetchedAt: res.FetchedAt,
		CacheHit:  res.CacheHit,
		Warning:   res.Warning,
	})
}
