package handler

import (
	"encoding/json"
	"net/http"

	"github.com/jaaberaziz-code/gitolink-sub001/pkg/core/domain"
	"github.com/jaaberaziz-code/gitolink-sub001/pkg/logger"
)

type errorBody struct {
	Error *domain.Error `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// statusFor maps an error kind to the HTTP status the API reports.
func statusFor(kind domain.ErrorKind) int {
	switch kind {
	case domain.KindAuthentication:
		return http.StatusUnauthorized
	case domain.KindNotFound:
		return http.StatusNotFound
	case domain.KindValidation:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// writeError renders err as {"error": {"kind", "message", "field"}}. Storage
// causes are logged and never sent to the client.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	appErr := domain.AsError(err)
	if appErr.Kind == domain.KindStorage {
		logger.Error().Err(err).Str("path", r.URL.Path).Msg("request failed")
		appErr = &domain.Error{Kind: domain.KindStorage, Message: appErr.Message}
	}
	writeJSON(w, statusFor(appErr.Kind), errorBody{Error: appErr})
}
