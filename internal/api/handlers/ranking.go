package handlers

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/wonny/trendscore/internal/contracts"
	"github.com/wonny/trendscore/pkg/logger"
)

// RankingHandler handles ranking-related API endpoints
// ⭐ SSOT: 랭킹 API 핸들러는 이 구조체에서만
type RankingHandler struct {
	runner Runner
	logger *logger.Logger
}

// NewRankingHandler creates a new ranking handler
func NewRankingHandler(runner Runner, log *logger.Logger) *RankingHandler {
	return &RankingHandler{
		runner: runner,
		logger: log,
	}
}

// RankingResponse is a ranked table after display filters
type RankingResponse struct {
	RunID       string                `json:"run_id"`
	Variant     contracts.Variant     `json:"variant"`
	GeneratedAt time.Time             `json:"generated_at"`
	Stats       contracts.RunStats    `json:"stats"`
	Total       int                   `json:"total"` // ranked rows before display filters
	Count       int                   `json:"count"`
	Rows        []contracts.RankedRow `json:"rows"`
}

// GetRanking returns the ranked table
// GET /api/ranking?variant=&window=&batch_size=&symbols=&refresh=&min_score=&trend_only=&max_ret_1m=&max_ret_3m=&sort=&order=&limit=
func (h *RankingHandler) GetRanking(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	params, err := parseRunParams(q)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	filter, err := parseDisplayFilter(q)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	table, err := h.runner.Run(r.Context(), params)
	if err != nil {
		h.logger.WithError(err).Warn("Ranking run failed")
		respondError(w, statusFor(err), err.Error())
		return
	}

	rows := filter.Apply(table.Rows)
	respondJSON(w, http.StatusOK, RankingResponse{
		RunID:       table.RunID,
		Variant:     table.Variant,
		GeneratedAt: table.GeneratedAt,
		Stats:       table.Stats,
		Total:       len(table.Rows),
		Count:       len(rows),
		Rows:        rows,
	})
}

// GetDetail returns score components and recent bars for one symbol
// GET /api/ranking/{symbol}?variant=&window=&batch_size=
func (h *RankingHandler) GetDetail(w http.ResponseWriter, r *http.Request) {
	symbol := mux.Vars(r)["symbol"]

	params, err := parseRunParams(r.URL.Query())
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	detail, err := h.runner.Detail(r.Context(), params, symbol)
	if err != nil {
		h.logger.WithError(err).WithField("symbol", symbol).Debug("Detail lookup failed")
		respondError(w, statusFor(err), err.Error())
		return
	}

	respondJSON(w, http.StatusOK, detail)
}
