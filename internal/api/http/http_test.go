package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/raksha-safety/raksha-backend/internal/apperr"
)

type pingerFunc func(ctx context.Context) error

func (f pingerFunc) Ping(ctx context.Context) error { return f(ctx) }

func serve(r *gin.Engine, method, path string) (*httptest.ResponseRecorder, map[string]any) {
	req := httptest.NewRequest(method, path, nil)
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)

	var body map[string]any
	_ = json.Unmarshal(rr.Body.Bytes(), &body)
	return rr, body
}

func TestHealthCheck(t *testing.T) {
	gin.SetMode(gin.TestMode)

	t.Run("store up", func(t *testing.T) {
		router := gin.New()
		NewHealthHandler("test-service", "1.0.0", pingerFunc(func(context.Context) error { return nil })).
			RegisterRoutes(router)

		rr, _ := serve(router, http.MethodGet, "/api/health")
		require.Equal(t, http.StatusOK, rr.Code)

		var response HealthResponse
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &response))
		assert.Equal(t, "healthy", response.Status)
		assert.Equal(t, "test-service", response.Service)
		assert.Equal(t, "1.0.0", response.Version)
		assert.Equal(t, "up", response.Store)
		assert.False(t, response.Timestamp.IsZero())
	})

	t.Run("store down", func(t *testing.T) {
		router := gin.New()
		NewHealthHandler("test-service", "1.0.0", pingerFunc(func(context.Context) error { return errors.New("down") })).
			RegisterRoutes(router)

		rr, body := serve(router, http.MethodGet, "/api/health")
		require.Equal(t, http.StatusOK, rr.Code)
		assert.Equal(t, "degraded", body["status"])
		assert.Equal(t, "down", body["store"])
	})

	t.Run("no store", func(t *testing.T) {
		router := gin.New()
		NewHealthHandler("test-service", "1.0.0", nil).RegisterRoutes(router)

		_, body := serve(router, http.MethodGet, "/healthz")
		assert.Equal(t, "disabled", body["store"])
	})
}

func TestRootHandler(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.GET("/", RootHandler("0.4.0"))

	rr, body := serve(router, http.MethodGet, "/")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "0.4.0", body["version"])
	assert.Equal(t, "running", body["status"])
	assert.Contains(t, body["endpoints"], "trigger_sos")
}

func TestWriteError(t *testing.T) {
	gin.SetMode(gin.TestMode)

	cases := []struct {
		name   string
		err    error
		status int
		body   map[string]any
	}{
		{
			name:   "map details merged",
			err:    apperr.Validation("Missing required fields").WithDetails(map[string]any{"required": []string{"email"}}),
			status: http.StatusBadRequest,
			body:   map[string]any{"error": "Missing required fields", "required": []any{"email"}},
		},
		{
			name:   "string details nested",
			err:    apperr.New(apperr.KindInvalidCredential, "Invalid token").WithDetails("expired"),
			status: http.StatusUnauthorized,
			body:   map[string]any{"error": "Invalid token", "details": "expired"},
		},
		{
			name:   "details cannot override error",
			err:    apperr.NotFound("SOS not found").WithDetails(gin.H{"error": "other", "id": "x"}),
			status: http.StatusNotFound,
			body:   map[string]any{"error": "SOS not found", "id": "x"},
		},
		{
			name:   "plain error becomes 500 with message",
			err:    errors.New("connection refused"),
			status: http.StatusInternalServerError,
			body:   map[string]any{"error": "connection refused"},
		},
		{
			name:   "forbidden",
			err:    apperr.Forbidden("Unauthorized access"),
			status: http.StatusForbidden,
			body:   map[string]any{"error": "Unauthorized access"},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			router := gin.New()
			router.GET("/", func(c *gin.Context) { WriteError(c, tc.err) })

			rr, body := serve(router, http.MethodGet, "/")
			assert.Equal(t, tc.status, rr.Code)
			assert.Equal(t, tc.body, body)
		})
	}
}

func TestNotFoundAndRecovery(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(Recovery())
	router.NoRoute(NotFound)
	router.GET("/boom", func(c *gin.Context) { panic("kaboom") })

	rr, body := serve(router, http.MethodGet, "/nope")
	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.Equal(t, "Endpoint not found", body["error"])

	rr, body = serve(router, http.MethodGet, "/boom")
	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.Equal(t, "Internal server error", body["error"])
}
