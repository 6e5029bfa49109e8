package api

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/emberforge-labs/asset-ledger/internal/types"
)

// errorResponse is the JSON body of every rejected request.
type errorResponse struct {
	ErrorCode string `json:"error_code"`
	Message   string `json:"message"`
}

func writeJSON(ctx context.Context, w http.ResponseWriter, statusCode int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Ctx(ctx).Error().Err(err).Msg("Failed to encode response body")
	}
}

func writeError(ctx context.Context, w http.ResponseWriter, err *types.Error) {
	log.Ctx(ctx).Warn().
		Err(err.Err).
		Str("errorCode", err.ErrorCode.String()).
		Msg("Request rejected")
	writeJSON(ctx, w, err.StatusCode, errorResponse{
		ErrorCode: err.ErrorCode.String(),
		Message:   err.Error(),
	})
}
