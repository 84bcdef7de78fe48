package handler

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/Widell98/MarketMind-sub004/internal/domain"
)

// writeJSON marshals v as JSON and writes it to the response with the given
// HTTP status code. If marshaling fails, it falls back to a plain-text 500.
func writeJSON(w http.ResponseWriter, status int, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		http.Error(w, `{"error":"internal server error"}`, http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	w.Write(data)
}

// writeError sends a JSON-formatted error response.
func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// parseFilterSpec extracts a FilterSpec from query parameters. Fields that
// fail to parse are left at their zero value rather than rejecting the
// request.
func parseFilterSpec(r *http.Request) domain.FilterSpec {
	q := r.URL.Query()

	var spec domain.FilterSpec
	spec.Categories = splitCSV(q.Get("categories"))
	spec.MarketIDs = splitCSV(q.Get("ids"))

	if v := q.Get("minLiquidity"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			spec.MinLiquidity = f
		}
	}
	if v := q.Get("minVolume24h"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			spec.MinVolume24h = f
		}
	}
	if v := q.Get("closingAfter"); v != "" {
		if t, err := time.Parse(time.RFC3339, v); err == nil {
			spec.ClosingAfter = &t
		}
	}
	if v := q.Get("closingBefore"); v != "" {
		if t, err := time.Parse(time.RFC3339, v); err == nil {
			spec.ClosingBefore = &t
		}
	}
	if v := q.Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			spec.Limit = n
		}
	}

	return spec
}

func splitCSV(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	cleaned := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			cleaned = append(cleaned, p)
		}
	}
	if len(cleaned) == 0 {
		return nil
	}
	return cleaned
}
