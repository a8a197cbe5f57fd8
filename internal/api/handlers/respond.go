package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/wonny/trendscore/internal/contracts"
	"github.com/wonny/trendscore/internal/pipeline"
)

// Runner is the pipeline surface the handlers need
type Runner interface {
	Defaults() pipeline.RunParams
	Run(ctx context.Context, params pipeline.RunParams) (*contracts.RankedTable, error)
	Detail(ctx context.Context, params pipeline.RunParams, symbol string) (*pipeline.Detail, error)
	Invalidate(ctx context.Context) (int, error)
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{
		"error": message,
	})
}

// statusFor maps pipeline errors to HTTP status codes
func statusFor(err error) int {
	switch {
	case errors.Is(err, contracts.ErrEmptyUniverse), errors.Is(err, contracts.ErrNoPriceData):
		return http.StatusUnprocessableEntity
	case errors.Is(err, contracts.ErrSymbolNotFound):
		return http.StatusNotFound
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}
