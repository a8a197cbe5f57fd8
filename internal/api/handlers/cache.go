package handlers

import (
	"net/http"

	"github.com/wonny/trendscore/pkg/logger"
)

// CacheHandler exposes cache invalidation
type CacheHandler struct {
	runner Runner
	logger *logger.Logger
}

// NewCacheHandler creates a new cache handler
func NewCacheHandler(runner Runner, log *logger.Logger) *CacheHandler {
	return &CacheHandler{
		runner: runner,
		logger: log,
	}
}

// Invalidate clears cached runs; with rerun=true it recomputes the default ranking
// POST /api/cache/invalidate?rerun=true
func (h *CacheHandler) Invalidate(w http.ResponseWriter, r *http.Request) {
	rerun, err := boolParam(r.URL.Query(), "rerun")
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	deleted, err := h.runner.Invalidate(r.Context())
	if err != nil {
		h.logger.WithError(err).Error("Cache invalidation failed")
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	resp := map[string]interface{}{
		"deleted": deleted,
	}

	if rerun {
		params := h.runner.Defaults()
		params.Refresh = true
		table, err := h.runner.Run(r.Context(), params)
		if err != nil {
			respondError(w, statusFor(err), err.Error())
			return
		}
		resp["run_id"] = table.RunID
		resp["rows"] = len(table.Rows)
	}

	respondJSON(w, http.StatusOK, resp)
}
