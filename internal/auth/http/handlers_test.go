package http

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/raksha-safety/raksha-backend/internal/auth/authtest"
	"github.com/raksha-safety/raksha-backend/internal/auth/service"
	"github.com/raksha-safety/raksha-backend/internal/outbound"
	"github.com/raksha-safety/raksha-backend/internal/storage/redisstore"
)

func setupRouter(t *testing.T) *gin.Engine {
	gin.SetMode(gin.TestMode)

	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	svc := service.NewAuthService(authtest.NewFake(), redisstore.New(client).Users(), outbound.NewPolicy(time.Second))
	r := gin.New()
	New(svc).Register(r.Group("/api/auth"))
	return r
}

func postJSON(r *gin.Engine, path string, body string) (*httptest.ResponseRecorder, map[string]any) {
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)

	var out map[string]any
	_ = json.Unmarshal(rr.Body.Bytes(), &out)
	return rr, out
}

func TestRegisterUser(t *testing.T) {
	r := setupRouter(t)

	t.Run("created", func(t *testing.T) {
		rr, body := postJSON(r, "/api/auth/register",
			`{"email":"asha@example.com","password":"secret123","name":"Asha","phone":"+919800000000"}`)
		require.Equal(t, http.StatusCreated, rr.Code)
		assert.Equal(t, true, body["success"])
		assert.Equal(t, "User registered successfully", body["message"])
		assert.NotEmpty(t, body["user_id"])
		assert.NotEmpty(t, body["token"])
		assert.Equal(t, map[string]any{
			"email": "asha@example.com", "name": "Asha", "phone": "+919800000000",
		}, body["user"])
	})

	t.Run("missing fields", func(t *testing.T) {
		rr, body := postJSON(r, "/api/auth/register", `{"email":"x@example.com"}`)
		assert.Equal(t, http.StatusBadRequest, rr.Code)
		assert.Equal(t, "Missing required fields", body["error"])
		assert.Equal(t, []any{"email", "password", "name", "phone"}, body["required"])
	})

	t.Run("malformed body", func(t *testing.T) {
		rr, body := postJSON(r, "/api/auth/register", `not json`)
		assert.Equal(t, http.StatusBadRequest, rr.Code)
		assert.Equal(t, "Missing required fields", body["error"])
	})

	t.Run("duplicate email", func(t *testing.T) {
		rr, body := postJSON(r, "/api/auth/register",
			`{"email":"asha@example.com","password":"secret123","name":"Asha","phone":"+919811111111"}`)
		assert.Equal(t, http.StatusBadRequest, rr.Code)
		assert.Equal(t, "Email already exists", body["error"])
	})
}

func TestLogin(t *testing.T) {
	r := setupRouter(t)
	rr, _ := postJSON(r, "/api/auth/register",
		`{"email":"asha@example.com","password":"secret123","name":"Asha","phone":"+919800000000"}`)
	require.Equal(t, http.StatusCreated, rr.Code)

	t.Run("ok", func(t *testing.T) {
		rr, body := postJSON(r, "/api/auth/login", `{"email":"asha@example.com","password":"secret123"}`)
		require.Equal(t, http.StatusOK, rr.Code)
		assert.Equal(t, "Login successful", body["message"])
		user, ok := body["user"].(map[string]any)
		require.True(t, ok)
		assert.Equal(t, "Asha", user["name"])
	})

	t.Run("missing password", func(t *testing.T) {
		rr, body := postJSON(r, "/api/auth/login", `{"email":"asha@example.com"}`)
		assert.Equal(t, http.StatusBadRequest, rr.Code)
		assert.Equal(t, "Email and password required", body["error"])
	})

	t.Run("unknown user", func(t *testing.T) {
		rr, body := postJSON(r, "/api/auth/login", `{"email":"nobody@example.com","password":"x"}`)
		assert.Equal(t, http.StatusNotFound, rr.Code)
		assert.Equal(t, "User not found", body["error"])
	})
}
