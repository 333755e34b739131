package http

import (
	"bytes"
	"context"
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

	"github.com/raksha-safety/raksha-backend/internal/auth"
	"github.com/raksha-safety/raksha-backend/internal/auth/authtest"
	"github.com/raksha-safety/raksha-backend/internal/outbound"
	"github.com/raksha-safety/raksha-backend/internal/storage/redisstore"
	"github.com/raksha-safety/raksha-backend/internal/users/domain"
	"github.com/raksha-safety/raksha-backend/internal/users/service"
)

const testUID = "uid-1"

func setupRouter(t *testing.T) *gin.Engine {
	gin.SetMode(gin.TestMode)

	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	users := redisstore.New(client).Users()
	require.NoError(t, users.Create(context.Background(), &domain.User{
		ID:      testUID,
		Profile: domain.Profile{Name: "Asha", Email: "asha@example.com", Phone: "1", CreatedAt: time.Now().UTC()},
	}))

	svc := service.NewProfileService(users, authtest.NewFake(), outbound.NewPolicy(time.Second))

	r := gin.New()
	g := r.Group("/api/user", func(c *gin.Context) {
		auth.SetUserFirebaseUID(c, c.GetHeader("X-Test-Uid"))
		c.Next()
	})
	New(svc).Register(g)
	return r
}

func do(r *gin.Engine, method, path, uid, body string) (*httptest.ResponseRecorder, map[string]any) {
	var buf *bytes.Buffer
	if body != "" {
		buf = bytes.NewBufferString(body)
	} else {
		buf = &bytes.Buffer{}
	}
	req := httptest.NewRequest(method, path, buf)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Test-Uid", uid)
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)

	var out map[string]any
	_ = json.Unmarshal(rr.Body.Bytes(), &out)
	return rr, out
}

func TestGetProfile(t *testing.T) {
	r := setupRouter(t)

	rr, body := do(r, http.MethodGet, "/api/user/profile", testUID, "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, testUID, body["user_id"])
	data := body["data"].(map[string]any)
	assert.Equal(t, "Asha", data["profile"].(map[string]any)["name"])

	rr, body = do(r, http.MethodGet, "/api/user/profile", "ghost", "")
	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.Equal(t, "User not found", body["error"])
}

func TestUpdateProfile(t *testing.T) {
	r := setupRouter(t)

	rr, body := do(r, http.MethodPut, "/api/user/profile", testUID,
		`{"address":"12 MG Road","email":"evil@example.com","role":"admin"}`)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "Profile updated successfully", body["message"])

	profile := body["profile"].(map[string]any)
	assert.Equal(t, "12 MG Road", profile["address"])
	assert.Equal(t, "asha@example.com", profile["email"])
	assert.NotContains(t, profile, "role")
	assert.NotEmpty(t, profile["updated_at"])

	rr, body = do(r, http.MethodPut, "/api/user/profile", "ghost", `{"name":"x"}`)
	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.Equal(t, "User profile not found", body["error"])
}

func TestContacts(t *testing.T) {
	r := setupRouter(t)

	t.Run("empty list", func(t *testing.T) {
		rr, body := do(r, http.MethodGet, "/api/user/contacts", testUID, "")
		require.Equal(t, http.StatusOK, rr.Code)
		assert.Equal(t, []any{}, body["contacts"])
		assert.Equal(t, float64(0), body["count"])
	})

	t.Run("replace", func(t *testing.T) {
		rr, body := do(r, http.MethodPut, "/api/user/contacts", testUID,
			`{"contacts":[{"name":"Mom","phone":"+919876543210","relation":"Mother"}]}`)
		require.Equal(t, http.StatusOK, rr.Code)
		assert.Equal(t, "Emergency contacts updated successfully", body["message"])
		assert.Equal(t, float64(1), body["count"])

		rr, body = do(r, http.MethodGet, "/api/user/contacts", testUID, "")
		require.Equal(t, http.StatusOK, rr.Code)
		assert.Equal(t, float64(1), body["count"])
	})

	t.Run("not an array", func(t *testing.T) {
		rr, body := do(r, http.MethodPut, "/api/user/contacts", testUID, `{"contacts":{"name":"x"}}`)
		assert.Equal(t, http.StatusBadRequest, rr.Code)
		assert.Equal(t, "Contacts must be an array", body["error"])
	})

	t.Run("missing phone", func(t *testing.T) {
		rr, body := do(r, http.MethodPut, "/api/user/contacts", testUID,
			`{"contacts":[{"name":"A","phone":"1"},{"name":"B"}]}`)
		assert.Equal(t, http.StatusBadRequest, rr.Code)
		assert.Equal(t, "Each contact must have 'name' and 'phone'", body["error"])
		assert.Equal(t, float64(1), body["index"])
		assert.Equal(t, "phone", body["field"])

		rr, body = do(r, http.MethodGet, "/api/user/contacts", testUID, "")
		require.Equal(t, http.StatusOK, rr.Code)
		assert.Equal(t, float64(1), body["count"], "rejected write leaves the old list")
	})

	t.Run("element not an object", func(t *testing.T) {
		rr, body := do(r, http.MethodPut, "/api/user/contacts", testUID, `{"contacts":["Mom"]}`)
		assert.Equal(t, http.StatusBadRequest, rr.Code)
		assert.Equal(t, "Each contact must have 'name' and 'phone'", body["error"])
		assert.Equal(t, float64(0), body["index"])
	})

	t.Run("absent contacts clears list", func(t *testing.T) {
		rr, body := do(r, http.MethodPut, "/api/user/contacts", testUID, `{}`)
		require.Equal(t, http.StatusOK, rr.Code)
		assert.Equal(t, float64(0), body["count"])
	})
}
