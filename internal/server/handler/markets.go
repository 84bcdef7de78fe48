package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/Widell98/MarketMind-sub004/internal/domain"
)

// MarketQuerier defines what the markets handler requires from the service
// layer. It is declared locally so the handler package does not depend on the
// concrete service implementation.
type MarketQuerier interface {
	Query(ctx context.Context, spec domain.FilterSpec) (domain.QueryResult, error)
}

// MarketsHandler serves the cached-markets endpoints.
type MarketsHandler struct {
	gateway MarketQuerier
	logger  *slog.Logger
}

// NewMarketsHandler creates a MarketsHandler with the given service and logger.
func NewMarketsHandler(gateway MarketQuerier, logger *slog.Logger) *MarketsHandler {
	return &MarketsHandler{
		gateway: gateway,
		logger:  logger,
	}
}

// marketsResponse is the envelope for both market endpoints. Warning is only
// present on degraded stale-fallback responses.
type marketsResponse struct {
	Markets   []domain.Market `json:"markets"`
	FetchedAt time.Time       `json:"fetchedAt"`
	CacheHit  bool            `json:"cacheHit"`
	Warning   string          `json:"warning,omitempty"`
}

// ListMarkets returns cached markets filtered by query parameters.
// GET /api/markets?categories=a,b&minLiquidity=100&limit=50
func (h *MarketsHandler) ListMarkets(w http.ResponseWriter, r *http.Request) {
	h.respond(w, r, parseFilterSpec(r))
}

// QueryMarkets returns cached markets filtered by a FilterSpec JSON body.
// An unparseable body is one of the two hard-failure cases and yields 400.
// POST /api/markets/query
func (h *MarketsHandler) QueryMarkets(w http.ResponseWriter, r *http.Request) {
	var spec domain.FilterSpec
	if err := json.NewDecoder(r.Body).Decode(&spec); err != nil {
		writeError(w, http.StatusBadRequest, "invalid filter body")
		return
	}
	h.respond(w, r, spec)
}

func (h *MarketsHandler) respond(w http.ResponseWriter, r *http.Request, spec domain.FilterSpec) {
	res, err := h.gateway.Query(r.Context(), spec)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "handler: market query failed",
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusBadGateway, "upstream provider unavailable and no cached data")
		return
	}

	status := http.StatusOK
	if res.Degraded {
		// Stale fallback: full body, non-200 status so clients can tell.
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, marketsResponse{
		Markets:   res.Markets,
		FetchedAt: res.FetchedAt,
		CacheHit:  res.CacheHit,
		Warning:   res.Warning,
	})
}
