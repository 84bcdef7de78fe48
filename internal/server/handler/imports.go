package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/Widell98/MarketMind-sub004/internal/columns"
	"github.com/Widell98/MarketMind-sub004/internal/ingest"
)

// ImportsHandler serves the tabular import endpoints: pasted portfolio and
// instrument-listing rows run through the column inference engine.
type ImportsHandler struct {
	engine *columns.Engine
	logger *slog.Logger
}

// NewImportsHandler creates an ImportsHandler with the given engine and logger.
func NewImportsHandler(engine *columns.Engine, logger *slog.Logger) *ImportsHandler {
	return &ImportsHandler{
		engine: engine,
		logger: logger,
	}
}

// importRequest is the shared request body for both import endpoints.
type importRequest struct {
	Rows [][]string `json:"rows"`
}

// ImportPortfolio parses pasted portfolio rows (with a change column).
// POST /api/imports/portfolio
func (h *ImportsHandler) ImportPortfolio(w http.ResponseWriter, r *http.Request) {
	var req importRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid import body")
		return
	}

	holdings, report := ingest.ParsePortfolio(h.engine, req.Rows)
	h.logImport(r, "portfolio", len(req.Rows), len(report.Warnings))

	writeJSON(w, http.StatusOK, map[string]any{
		"holdings": holdings,
		"report":   report,
	})
}

// ImportListing parses pasted instrument-listing rows (no change column).
// POST /api/imports/listing
func (h *ImportsHandler) ImportListing(w http.ResponseWriter, r *http.Request) {
	var req importRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid import body")
		return
	}

	listings, report := ingest.ParseListing(h.engine, req.Rows)
	h.logImport(r, "listing", len(req.Rows), len(report.Warnings))

	writeJSON(w, http.StatusOK, map[string]any{
		"listings": listings,
		"report":   report,
	})
}

func (h *ImportsHandler) logImport(r *http.Request, kind string, rows, warnings int) {
	h.logger.InfoContext(r.Context(), "handler: import parsed",
		slog.String("kind", kind),
		slog.Int("rows", rows),
		slog.Int("warnings", warnings),
	)
}
