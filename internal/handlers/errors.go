package handlers

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	apperrors "nodeacademy/internal/errors"
	"nodeacademy/internal/logger"
)

type errorResponse struct {
	Message string `json:"message"`
	Code    string `json:"code"`
}

// handleError renders err as {"message","code"}. Anything that is not an
// AppError becomes a 500 and its details stay in the log.
func handleError(w http.ResponseWriter, r *http.Request, err error) {
	log := logger.FromContext(r.Context())

	appErr, ok := apperrors.As(err)
	if !ok {
		appErr = apperrors.NewInternalError(err)
	}

	switch {
	case appErr.Status >= 500:
		log.Error("server error", zap.String("code", appErr.Code), zap.Error(appErr))
	case appErr.Status >= 400:
		log.Warn("client error", zap.String("code", appErr.Code), zap.String("message", appErr.Message))
	default:
		log.Debug("error", zap.Error(appErr))
	}

	respondWithError(w, appErr.Status, appErr.Code, appErr.Message)
}

func respondWithError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, errorResponse{Message: message, Code: code})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if body == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(body); err != nil {
		logger.Default().Warn("failed to encode response", zap.Error(err))
	}
}

// decodeJSON reads a single JSON object from the request body into dst
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return apperrors.NewBadRequestError(msgInvalidJSON)
	}
	return nil
}
