package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
}

func hit(h http.Handler, ip string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/api/resources", nil)
	req.Header.Set("X-Forwarded-For", ip)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func hitAs(h http.Handler, sid string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/api/resources", nil)
	req = req.WithContext(SetSessionForTest(req.Context(), sid, nil))
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func TestRateLimit_InMemory(t *testing.T) {
	h := RateLimit(nil, 2, time.Minute)(okHandler())

	assert.Equal(t, http.StatusNoContent, hit(h, "203.0.113.7").Code)
	assert.Equal(t, http.StatusNoContent, hit(h, "203.0.113.7").Code)

	rr := hit(h, "203.0.113.7")
	require.Equal(t, http.StatusTooManyRequests, rr.Code)
	assert.Equal(t, "60", rr.Header().Get("Retry-After"))
	assert.Contains(t, rr.Body.String(), `"code":"rate_limited"`)

	assert.Equal(t, http.StatusNoContent, hit(h, "198.51.100.1").Code, "other clients are unaffected")
}

func TestRateLimit_Redis(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	h := RateLimit(rdb, 2, time.Minute)(okHandler())

	assert.Equal(t, http.StatusNoContent, hit(h, "203.0.113.7").Code)
	assert.Equal(t, http.StatusNoContent, hit(h, "203.0.113.7").Code)
	assert.Equal(t, http.StatusTooManyRequests, hit(h, "203.0.113.7").Code)
	assert.True(t, mr.Exists("hxadmin:rl:ip:203.0.113.7"))

	assert.Equal(t, http.StatusNoContent, hit(h, "198.51.100.1").Code)
}

func TestRateLimit_RedisDownFailsOpen(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: -1})
	t.Cleanup(func() { _ = rdb.Close() })
	mr.Close()

	h := RateLimit(rdb, 1, time.Minute)(okHandler())
	for i := 0; i < 3; i++ {
		assert.Equal(t, http.StatusNoContent, hit(h, "203.0.113.7").Code)
	}
}

func TestRateLimit_Disabled(t *testing.T) {
	h := RateLimit(nil, 0, time.Minute)(okHandler())
	for i := 0; i < 5; i++ {
		assert.Equal(t, http.StatusNoContent, hit(h, "203.0.113.7").Code)
	}
}

func TestRateLimit_KeyedBySession(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	h := RateLimit(rdb, 1, time.Minute)(okHandler())

	assert.Equal(t, http.StatusNoContent, hitAs(h, "sid-a").Code)
	assert.Equal(t, http.StatusTooManyRequests, hitAs(h, "sid-a").Code)
	assert.Equal(t, http.StatusNoContent, hitAs(h, "sid-b").Code)
	assert.True(t, mr.Exists("hxadmin:rl:session:sid-a"))
}

func TestKeyByIP(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "192.0.2.10:5123"
	assert.Equal(t, "ip:192.0.2.10", KeyByIP(req))

	req.Header.Set("X-Forwarded-For", "203.0.113.7, 10.0.0.1")
	assert.Equal(t, "ip:203.0.113.7", KeyByIP(req))
}
