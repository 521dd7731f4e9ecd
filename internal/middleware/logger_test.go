package middleware

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func captureDefault(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	prev := slog.Default()
	slog.SetDefault(slog.New(slog.NewJSONHandler(&buf, nil)))
	t.Cleanup(func() { slog.SetDefault(prev) })
	return &buf
}

func TestLogger_InjectsRequestID(t *testing.T) {
	buf := captureDefault(t)

	e := echo.New()
	e.Use(echomw.RequestID(), Logger)
	e.GET("/", func(c echo.Context) error {
		FromContext(c.Request().Context()).Info("inside handler")
		return c.NoContent(http.StatusOK)
	})

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "inside handler", entry["msg"])
	assert.Equal(t, rec.Header().Get(echo.HeaderXRequestID), entry["request_id"])
	assert.NotEmpty(t, entry["request_id"])
}

func TestFromContext_Default(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	assert.Same(t, slog.Default(), FromContext(req.Context()))
}

func TestRequestLog(t *testing.T) {
	buf := captureDefault(t)

	e := echo.New()
	e.Use(echomw.RequestID(), Logger, RequestLog())
	e.GET("/ok", func(c echo.Context) error { return c.String(http.StatusOK, "ok") })
	e.GET("/fail", func(c echo.Context) error { return errors.New("boom") })

	e.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/ok", nil))
	e.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/fail", nil))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)

	var ok, fail map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &ok))
	require.NoError(t, json.Unmarshal([]byte(lines[1]), &fail))

	assert.Equal(t, "Request handled", ok["msg"])
	assert.Equal(t, "/ok", ok["uri"])
	assert.Equal(t, float64(http.StatusOK), ok["status"])

	assert.Equal(t, "Request failed", fail["msg"])
	assert.Equal(t, "ERROR", fail["level"])
	assert.Equal(t, float64(http.StatusInternalServerError), fail["status"])
	assert.Contains(t, fail["error"], "boom")
}
