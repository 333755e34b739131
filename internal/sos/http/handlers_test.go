package http

import (
	"bytes"
	"encoding/json"
	"io"
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
	"github.com/raksha-safety/raksha-backend/internal/outbound"
	"github.com/raksha-safety/raksha-backend/internal/sos/service"
	"github.com/raksha-safety/raksha-backend/internal/storage/redisstore"
)

func setupRouter(t *testing.T) *gin.Engine {
	gin.SetMode(gin.TestMode)

	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	store := redisstore.New(client)
	svc := service.NewSOSService(store.SOS(), store.Users(), nil, outbound.NewPolicy(time.Second))

	r := gin.New()
	g := r.Group("/api/sos", func(c *gin.Context) {
		auth.SetUserFirebaseUID(c, c.GetHeader("X-Test-Uid"))
		c.Next()
	})
	New(svc).Register(g)
	return r
}

func do(r *gin.Engine, method, path, uid string, body io.Reader) (*httptest.ResponseRecorder, map[string]any) {
	req := httptest.NewRequest(method, path, body)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("X-Test-Uid", uid)
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)

	var out map[string]any
	_ = json.Unmarshal(rr.Body.Bytes(), &out)
	return rr, out
}

func jsonBody(s string) io.Reader { return bytes.NewBufferString(s) }

func TestTrigger(t *testing.T) {
	r := setupRouter(t)

	t.Run("with location", func(t *testing.T) {
		rr, body := do(r, http.MethodPost, "/api/sos/trigger", "u1",
			jsonBody(`{"location":{"latitude":28.6139,"longitude":77.2090},"trigger_type":"voice"}`))
		require.Equal(t, http.StatusOK, rr.Code)
		assert.Equal(t, true, body["success"])
		assert.Equal(t, "SOS triggered successfully", body["message"])
		assert.Equal(t, "https://www.google.com/maps?q=28.6139,77.209", body["location_url"])
		assert.Regexp(t, `^SOS_[0-9a-f]{12}_\d+$`, body["sos_id"])
		assert.Equal(t, []any{}, body["emergency_contacts"])
		assert.Contains(t, body["alert_message"], "User needs help immediately!")
		assert.NotEmpty(t, body["timestamp"])
	})

	t.Run("empty body", func(t *testing.T) {
		rr, body := do(r, http.MethodPost, "/api/sos/trigger", "u1", nil)
		require.Equal(t, http.StatusOK, rr.Code)
		assert.Equal(t, "https://www.google.com/maps?q=0,0", body["location_url"])
	})

	t.Run("empty json body", func(t *testing.T) {
		rr, body := do(r, http.MethodPost, "/api/sos/trigger", "u1", jsonBody(""))
		require.Equal(t, http.StatusOK, rr.Code)
		assert.Equal(t, "https://www.google.com/maps?q=0,0", body["location_url"])
	})

	t.Run("malformed body", func(t *testing.T) {
		rr, body := do(r, http.MethodPost, "/api/sos/trigger", "u1", jsonBody(`{"location":"here"}`))
		assert.Equal(t, http.StatusBadRequest, rr.Code)
		assert.Equal(t, "Invalid request body", body["error"])
	})
}

func TestGetDeactivateHistory(t *testing.T) {
	r := setupRouter(t)

	rr, body := do(r, http.MethodPost, "/api/sos/trigger", "owner", jsonBody(`{}`))
	require.Equal(t, http.StatusOK, rr.Code)
	id := body["sos_id"].(string)

	t.Run("details", func(t *testing.T) {
		rr, body := do(r, http.MethodGet, "/api/sos/"+id, "owner", nil)
		require.Equal(t, http.StatusOK, rr.Code)
		assert.Equal(t, id, body["sos_id"])
		data := body["data"].(map[string]any)
		assert.Equal(t, "active", data["status"])
		assert.Equal(t, "owner", data["user_id"])
	})

	t.Run("details forbidden and missing", func(t *testing.T) {
		rr, body := do(r, http.MethodGet, "/api/sos/"+id, "intruder", nil)
		assert.Equal(t, http.StatusForbidden, rr.Code)
		assert.Equal(t, "Unauthorized access", body["error"])

		rr, body = do(r, http.MethodGet, "/api/sos/SOS_000000000000_1", "owner", nil)
		assert.Equal(t, http.StatusNotFound, rr.Code)
		assert.Equal(t, "SOS not found", body["error"])
	})

	t.Run("deactivate", func(t *testing.T) {
		rr, body := do(r, http.MethodPost, "/api/sos/deactivate", "owner", jsonBody(`{}`))
		assert.Equal(t, http.StatusBadRequest, rr.Code)
		assert.Equal(t, "sos_id is required", body["error"])

		rr, _ = do(r, http.MethodPost, "/api/sos/deactivate", "intruder", jsonBody(`{"sos_id":"`+id+`"}`))
		assert.Equal(t, http.StatusForbidden, rr.Code)

		rr, body = do(r, http.MethodPost, "/api/sos/deactivate", "owner", jsonBody(`{"sos_id":"`+id+`"}`))
		require.Equal(t, http.StatusOK, rr.Code)
		assert.Equal(t, "SOS deactivated successfully", body["message"])
		assert.Equal(t, id, body["sos_id"])
	})

	t.Run("history", func(t *testing.T) {
		rr, body := do(r, http.MethodGet, "/api/sos/history", "owner", nil)
		require.Equal(t, http.StatusOK, rr.Code)
		assert.Equal(t, float64(1), body["count"])
		entry := body["history"].([]any)[0].(map[string]any)
		assert.Equal(t, id, entry["sos_id"])
		assert.Equal(t, "deactivated", entry["status"])

		rr, body = do(r, http.MethodGet, "/api/sos/history", "someone-else", nil)
		require.Equal(t, http.StatusOK, rr.Code)
		assert.Equal(t, []any{}, body["history"])
		assert.Equal(t, float64(0), body["count"])
	})

	t.Run("history limit validation", func(t *testing.T) {
		for _, q := range []string{"abc", "0", "501"} {
			rr, _ := do(r, http.MethodGet, "/api/sos/history?limit="+q, "owner", nil)
			assert.Equal(t, http.StatusBadRequest, rr.Code, "limit=%s", q)
		}
		rr, _ := do(r, http.MethodGet, "/api/sos/history?limit=1", "owner", nil)
		assert.Equal(t, http.StatusOK, rr.Code)
	})

	t.Run("empty limit uses default", func(t *testing.T) {
		for _, q := range []string{"?limit=", "?limit=%20"} {
			rr, body := do(r, http.MethodGet, "/api/sos/history"+q, "owner", nil)
			require.Equal(t, http.StatusOK, rr.Code, q)
			assert.Equal(t, float64(1), body["count"], q)
		}
	})
}
