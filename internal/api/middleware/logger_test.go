package middleware

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStructuredLogger(t *testing.T) {
	logBuffer := new(bytes.Buffer)
	testLogger := slog.New(slog.NewJSONHandler(logBuffer, nil))

	mockResponseBody := "Hello from next handler!"
	nextHandler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(5 * time.Millisecond)
		w.WriteHeader(http.StatusAccepted)
		_, _ = w.Write([]byte(mockResponseBody))
	})

	req := httptest.NewRequest(http.MethodGet, "/analysis/history?page=1", nil)
	req.RemoteAddr = "192.0.2.1:12345"
	req.Header.Set("User-Agent", "TestAgent/1.0")

	ctx := context.WithValue(req.Context(), middleware.RequestIDKey, "test-request-id-123")
	ctx = WithPrincipal(ctx, Principal{Role: RoleStudent, ID: 7})
	req = req.WithContext(ctx)

	rr := httptest.NewRecorder()
	StructuredLogger(testLogger)(nextHandler).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusAccepted, rr.Code)
	assert.Equal(t, mockResponseBody, rr.Body.String())

	var logEntry map[string]interface{}
	require.NoError(t, json.Unmarshal(logBuffer.Bytes(), &logEntry), "Failed to unmarshal log output")

	assert.Equal(t, "INFO", logEntry["level"])
	assert.Equal(t, "Served request", logEntry["msg"])
	assert.Equal(t, http.MethodGet, logEntry["method"])
	assert.Equal(t, "/analysis/history", logEntry["path"])
	assert.Equal(t, "192.0.2.1:12345", logEntry["remote_addr"])
	assert.Equal(t, "TestAgent/1.0", logEntry["user_agent"])
	assert.EqualValues(t, http.StatusAccepted, logEntry["status"])
	assert.EqualValues(t, len(mockResponseBody), logEntry["bytes_written"])
	assert.Equal(t, "test-request-id-123", logEntry["request_id"])
	assert.Equal(t, "student", logEntry["principal_role"])
	assert.GreaterOrEqual(t, logEntry["latency_ms"].(float64), 5.0)
}

func TestStructuredLogger_LevelFollowsStatus(t *testing.T) {
	tests := []struct {
		status int
		level  string
	}{
		{http.StatusOK, "INFO"},
		{http.StatusConflict, "WARN"},
		{http.StatusInternalServerError, "ERROR"},
	}

	for _, tt := range tests {
		t.Run(http.StatusText(tt.status), func(t *testing.T) {
			logBuffer := new(bytes.Buffer)
			testLogger := slog.New(slog.NewJSONHandler(logBuffer, nil))

			next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
			})
			StructuredLogger(testLogger)(next).ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/loan-requests", nil))

			var logEntry map[string]interface{}
			require.NoError(t, json.Unmarshal(logBuffer.Bytes(), &logEntry))
			assert.Equal(t, tt.level, logEntry["level"])
		})
	}
}
