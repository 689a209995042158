package httpx_test

import (
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/actionprice/auth/pkg/httpx"
	"github.com/stretchr/testify/require"
)

var okHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
})

func requestFrom(ip string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/", nil)
	req.RemoteAddr = ip + ":12345"
	return req
}

func serve(h http.Handler, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestIPKeyExtractor(t *testing.T) {
	t.Run("extracts from RemoteAddr", func(t *testing.T) {
		require.Equal(t, "192.168.1.1", httpx.IPKeyExtractor(requestFrom("192.168.1.1")))
	})

	t.Run("prefers X-Forwarded-For", func(t *testing.T) {
		req := requestFrom("192.168.1.1")
		req.Header.Set("X-Forwarded-For", "203.0.113.1, 192.168.1.1")
		require.Equal(t, "203.0.113.1", httpx.IPKeyExtractor(req))
	})

	t.Run("uses X-Real-IP if X-Forwarded-For absent", func(t *testing.T) {
		req := requestFrom("192.168.1.1")
		req.Header.Set("X-Real-IP", "203.0.113.2")
		require.Equal(t, "203.0.113.2", httpx.IPKeyExtractor(req))
	})
}

func TestBodyFieldKeyExtractor(t *testing.T) {
	extract := httpx.BodyFieldKeyExtractor("username")

	t.Run("json body is restored", func(t *testing.T) {
		body := `{"username":"alice","password":"pw"}`
		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")

		require.Equal(t, "alice", extract(req))

		got, err := io.ReadAll(req.Body)
		require.NoError(t, err)
		require.Equal(t, body, string(got))
	})

	t.Run("form body", func(t *testing.T) {
		form := url.Values{"username": {"bob"}}
		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

		require.Equal(t, "bob", extract(req))
		require.NoError(t, req.ParseForm())
		require.Equal(t, "bob", req.PostForm.Get("username"))
	})

	t.Run("query fallback", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/?username=carol", nil)
		require.Equal(t, "carol", extract(req))
	})

	t.Run("missing", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"other":1}`))
		require.Equal(t, "", extract(req))
	})
}

func TestCompositeKeyExtractor(t *testing.T) {
	extractor := httpx.CompositeKeyExtractor(":", httpx.UserIDKeyExtractor, httpx.IPKeyExtractor)

	req := requestFrom("192.168.1.1")
	require.Equal(t, "192.168.1.1", extractor(req), "empty keys are skipped")

	req = req.WithContext(httpx.WithUserID(req.Context(), "alice"))
	require.Equal(t, "alice:192.168.1.1", extractor(req))
}

func TestRateLimitMiddleware(t *testing.T) {
	t.Run("blocks requests over limit", func(t *testing.T) {
		config := httpx.RateLimitConfig{RequestsPerWindow: 3, Window: time.Minute, Burst: 3}
		h := httpx.RateLimitMiddleware(config, httpx.IPKeyExtractor)(okHandler)

		for i := range 3 {
			require.Equal(t, http.StatusOK, serve(h, requestFrom("192.168.1.1")).Code, "request %d", i+1)
		}

		rec := serve(h, requestFrom("192.168.1.1"))
		require.Equal(t, http.StatusTooManyRequests, rec.Code)
		require.NotEmpty(t, rec.Header().Get("Retry-After"))
		require.Equal(t, "3", rec.Header().Get("X-RateLimit-Limit"))
		require.Equal(t, "1m0s", rec.Header().Get("X-RateLimit-Window"))
		require.Equal(t, "no-store", rec.Header().Get("Cache-Control"))
		require.Contains(t, rec.Body.String(), "rate_limit_exceeded")
	})

	t.Run("different keys are tracked separately", func(t *testing.T) {
		config := httpx.RateLimitConfig{RequestsPerWindow: 1, Window: time.Minute, Burst: 1}
		h := httpx.RateLimitByIP(config)(okHandler)

		require.Equal(t, http.StatusOK, serve(h, requestFrom("10.0.0.1")).Code)
		require.Equal(t, http.StatusTooManyRequests, serve(h, requestFrom("10.0.0.1")).Code)
		require.Equal(t, http.StatusOK, serve(h, requestFrom("10.0.0.2")).Code)
	})

	t.Run("allows request when key extractor returns empty", func(t *testing.T) {
		config := httpx.RateLimitConfig{RequestsPerWindow: 1, Window: time.Minute, Burst: 1}
		h := httpx.RateLimitMiddleware(config, func(*http.Request) string { return "" })(okHandler)

		for range 3 {
			require.Equal(t, http.StatusOK, serve(h, requestFrom("10.0.0.1")).Code)
		}
	})

	t.Run("on limited callback", func(t *testing.T) {
		var hits atomic.Int32
		config := httpx.RateLimitConfig{RequestsPerWindow: 1, Window: time.Minute, Burst: 1}
		h := httpx.RateLimitByIP(config, httpx.WithOnLimited(func(*http.Request) { hits.Add(1) }))(okHandler)

		serve(h, requestFrom("10.0.0.1"))
		serve(h, requestFrom("10.0.0.1"))
		serve(h, requestFrom("10.0.0.1"))
		require.EqualValues(t, 2, hits.Load())
	})
}

func TestRateLimitByIPAndBodyField(t *testing.T) {
	config := httpx.RateLimitConfig{RequestsPerWindow: 2, Window: time.Minute, Burst: 2}

	var seen []string
	h := httpx.RateLimitByIPAndBodyField(config, "username")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		seen = append(seen, string(b))
	}))

	login := func(user string) int {
		req := httptest.NewRequest(http.MethodPost, "/api/user/login",
			strings.NewReader(`{"username":"`+user+`","password":"x"}`))
		req.Header.Set("Content-Type", "application/json")
		req.RemoteAddr = "192.168.1.1:1"
		return serve(h, req).Code
	}

	require.Equal(t, http.StatusOK, login("alice"))
	require.Equal(t, http.StatusOK, login("alice"))
	require.Equal(t, http.StatusTooManyRequests, login("alice"))
	require.Equal(t, http.StatusOK, login("bob"))

	require.Len(t, seen, 3)
	require.Contains(t, seen[0], `"alice"`, "handler still sees the body")
}

func TestRateLimitProfiles(t *testing.T) {
	for name, config := range map[string]httpx.RateLimitConfig{
		"strict":   httpx.StrictLimit,
		"moderate": httpx.ModerateLimit,
		"lenient":  httpx.LenientLimit,
	} {
		t.Run(name, func(t *testing.T) {
			require.Positive(t, config.RequestsPerWindow)
			require.Positive(t, config.Window)
			require.Positive(t, config.Burst)
		})
	}

	require.Less(t, httpx.StrictLimit.RequestsPerWindow, httpx.ModerateLimit.RequestsPerWindow)
	require.Less(t, httpx.ModerateLimit.RequestsPerWindow, httpx.LenientLimit.RequestsPerWindow)
}

func TestParseRateLimitFromEnv(t *testing.T) {
	def := httpx.RateLimitConfig{RequestsPerWindow: 10, Window: time.Minute, Burst: 10}

	t.Run("no env uses defaults", func(t *testing.T) {
		require.Equal(t, def, httpx.ParseRateLimitFromEnv("TEST", def))
	})

	t.Run("overrides", func(t *testing.T) {
		t.Setenv("RATELIMIT_TEST_REQUESTS", "200")
		t.Setenv("RATELIMIT_TEST_WINDOW_SEC", "30")
		t.Setenv("RATELIMIT_TEST_BURST", "250")

		got := httpx.ParseRateLimitFromEnv("TEST", def)
		require.Equal(t, httpx.RateLimitConfig{RequestsPerWindow: 200, Window: 30 * time.Second, Burst: 250}, got)
	})

	t.Run("invalid values use defaults", func(t *testing.T) {
		t.Setenv("RATELIMIT_TEST_REQUESTS", "invalid")
		t.Setenv("RATELIMIT_TEST_WINDOW_SEC", "-10")
		t.Setenv("RATELIMIT_TEST_BURST", "0")

		require.Equal(t, def, httpx.ParseRateLimitFromEnv("TEST", def))
	})
}

func BenchmarkRateLimitMiddleware(b *testing.B) {
	config := httpx.RateLimitConfig{RequestsPerWindow: 1000000, Window: time.Minute, Burst: 1000}
	h := httpx.RateLimitByIP(config)(okHandler)
	req := requestFrom("192.168.1.1")

	for b.Loop() {
		h.ServeHTTP(httptest.NewRecorder(), req)
	}
}
