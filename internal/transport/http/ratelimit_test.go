package http

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func rateLimited(t *testing.T, rl *RateLimiter, host, remoteAddr string) int {
	t.Helper()
	handler := RateLimitMiddleware(rl)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	req := httptest.NewRequest(http.MethodGet, "http://"+host+"/api/programs", nil)
	req.Host = host
	req.RemoteAddr = remoteAddr
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec.Code
}

func TestRateLimiter_Throttles(t *testing.T) {
	rl := NewRateLimiter(1, 2)

	assert.Equal(t, http.StatusOK, rateLimited(t, rl, "quisqueya.campushaiti.org", "203.0.113.7:1234"))
	assert.Equal(t, http.StatusOK, rateLimited(t, rl, "quisqueya.campushaiti.org", "203.0.113.7:1234"))
	assert.Equal(t, http.StatusTooManyRequests, rateLimited(t, rl, "quisqueya.campushaiti.org", "203.0.113.7:1234"))
}

func TestRateLimiter_TenantsDoNotShareBuckets(t *testing.T) {
	rl := NewRateLimiter(1, 1)

	assert.Equal(t, http.StatusOK, rateLimited(t, rl, "quisqueya.campushaiti.org", "203.0.113.7:1234"))
	assert.Equal(t, http.StatusTooManyRequests, rateLimited(t, rl, "quisqueya.campushaiti.org", "203.0.113.7:1234"))

	// Same client, different school: fresh bucket.
	assert.Equal(t, http.StatusOK, rateLimited(t, rl, "inaghei.campushaiti.org", "203.0.113.7:1234"))
}

func TestGetClientIP(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "http://campushaiti.org/", nil)
	req.RemoteAddr = "203.0.113.7:1234"
	assert.Equal(t, "203.0.113.7", getClientIP(req))

	req.Header.Set("X-Forwarded-For", "198.51.100.9, 10.0.0.1")
	assert.Equal(t, "198.51.100.9", getClientIP(req))
}
