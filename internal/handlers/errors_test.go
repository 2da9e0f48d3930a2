package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	apperrors "nodeacademy/internal/errors"
	"nodeacademy/internal/logger"
)

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) errorResponse {
	t.Helper()
	var body errorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestHandleError_AppError(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/lessons/99", nil)

	handleError(rec, req, apperrors.NewNotFoundError("lesson", 99))

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	body := decodeError(t, rec)
	assert.Equal(t, apperrors.ErrCodeNotFound, body.Code)
	assert.Equal(t, "lesson not found: 99", body.Message)
}

func TestHandleError_UnknownErrorIsInternal(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req = req.WithContext(logger.NewContext(req.Context(), zap.New(core)))
	rec := httptest.NewRecorder()

	handleError(rec, req, errors.New("connection reset"))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	body := decodeError(t, rec)
	assert.Equal(t, apperrors.ErrCodeInternal, body.Code)
	assert.NotContains(t, body.Message, "connection reset")

	entries := logs.FilterLevelExact(zapcore.ErrorLevel).All()
	require.Len(t, entries, 1)
	assert.Equal(t, "server error", entries[0].Message)
}

func TestHandleError_ClientErrorLogsWarn(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	req := httptest.NewRequest(http.MethodPost, "/", nil)
	req = req.WithContext(logger.NewContext(req.Context(), zap.New(core)))

	handleError(httptest.NewRecorder(), req, apperrors.NewConflictError("taken"))

	assert.Equal(t, 1, logs.FilterLevelExact(zapcore.WarnLevel).Len())
}

func TestDecodeJSON_RejectsMalformedBody(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader("{not json"))
	var dst struct{ Score int }

	err := decodeJSON(httptest.NewRecorder(), req, &dst)
	appErr, ok := apperrors.As(err)
	require.True(t, ok)
	assert.Equal(t, http.StatusBadRequest, appErr.Status)
}
