package middleware

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/jobboard-api/internal/handler"
	apperrors "github.com/jwalitptl/jobboard-api/pkg/errors"
	"github.com/jwalitptl/jobboard-api/pkg/logger"
	"github.com/jwalitptl/jobboard-api/pkg/metrics"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type stubLimiter struct {
	allowed bool
	err     error
	keys    []string
}

func (s *stubLimiter) Allow(_ context.Context, key string) (bool, error) {
	s.keys = append(s.keys, key)
	return s.allowed, s.err
}

func decode(t *testing.T, w *httptest.ResponseRecorder) handler.Response {
	t.Helper()
	var resp handler.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func TestRequestID(t *testing.T) {
	var buf bytes.Buffer
	base := logger.NewLogger(&logger.Config{Level: logger.DebugLevel, Output: &buf})

	r := gin.New()
	r.Use(RequestID(base))
	r.GET("/", func(c *gin.Context) {
		logger.FromContext(c.Request.Context(), nil).Info("handled")
		c.String(http.StatusOK, c.GetString(ContextRequestID))
	})

	t.Run("generated", func(t *testing.T) {
		buf.Reset()
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

		rid := w.Header().Get(HeaderXRequestID)
		assert.Len(t, rid, 36)
		assert.Equal(t, rid, w.Body.String())
		assert.Contains(t, buf.String(), rid)
	})

	t.Run("propagated", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set(HeaderXRequestID, "abc-123")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		assert.Equal(t, "abc-123", w.Header().Get(HeaderXRequestID))
	})

	t.Run("oversized header replaced", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set(HeaderXRequestID, strings.Repeat("x", maxRequestIDLen+1))
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		assert.Len(t, w.Header().Get(HeaderXRequestID), 36)
	})
}

func TestRecovery(t *testing.T) {
	r := gin.New()
	r.Use(RequestID(nil), Recovery())
	r.GET("/panic", func(c *gin.Context) {
		panic("boom")
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/panic", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	resp := decode(t, w)
	assert.Equal(t, "error", resp.Status)
	assert.Equal(t, "internal server error", resp.Message)
	assert.Equal(t, w.Header().Get(HeaderXRequestID), resp.RequestID)
}

func TestErrorHandler(t *testing.T) {
	r := gin.New()
	r.Use(ErrorHandler())
	r.GET("/bad", func(c *gin.Context) {
		_ = c.Error(apperrors.NewBadRequest("bad input", nil))
	})
	r.GET("/plain", func(c *gin.Context) {
		_ = c.Error(errors.New("db exploded"))
	})
	r.GET("/written", func(c *gin.Context) {
		handler.RespondWithError(c, apperrors.NewUnprocessable("too weak", nil), gin.H{"score": 10})
	})

	t.Run("app error", func(t *testing.T) {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/bad", nil))
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "bad input", decode(t, w).Message)
	})

	t.Run("internal details hidden", func(t *testing.T) {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/plain", nil))
		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.NotContains(t, w.Body.String(), "db exploded")
	})

	t.Run("response not written twice", func(t *testing.T) {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/written", nil))
		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

		resp := decode(t, w)
		assert.Equal(t, "too weak", resp.Message)
		assert.NotNil(t, resp.Data)
	})
}

func TestCache(t *testing.T) {
	r := gin.New()
	r.GET("/public", Cache(DefaultCacheConfig()), func(c *gin.Context) { c.Status(http.StatusOK) })
	r.POST("/secret", Cache(DefaultCacheConfig()), NoStore(), func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/public", nil))
	assert.Equal(t, "public, max-age=300", w.Header().Get("Cache-Control"))
	assert.Equal(t, "Accept, Origin", w.Header().Get("Vary"))

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/secret", nil))
	assert.Equal(t, "no-store, max-age=0", w.Header().Get("Cache-Control"))
	assert.Equal(t, "no-cache", w.Header().Get("Pragma"))
}

func TestSecurityHeaders(t *testing.T) {
	r := gin.New()
	r.Use(SecurityHeaders(DefaultSecurityConfig()))
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, "max-age=31536000; includeSubDomains", w.Header().Get("Strict-Transport-Security"))
	assert.Equal(t, "DENY", w.Header().Get("X-Frame-Options"))
	assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "no-referrer", w.Header().Get("Referrer-Policy"))
	assert.Equal(t, "default-src 'none'; frame-ancestors 'none'", w.Header().Get("Content-Security-Policy"))
}

func TestSizeLimit(t *testing.T) {
	r := gin.New()
	r.POST("/", SizeLimit(SizeLimitConfig{MaxBodySize: 16, MaxHeaderSize: 1024, ErrorMessage: "too big"}), func(c *gin.Context) {
		body, err := io.ReadAll(c.Request.Body)
		if err != nil {
			c.Status(http.StatusBadRequest)
			return
		}
		c.String(http.StatusOK, string(body))
	})

	t.Run("within limit", func(t *testing.T) {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"password":""}`)))
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("declared length too large", func(t *testing.T) {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/", strings.NewReader(strings.Repeat("a", 17))))
		assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
		assert.Contains(t, decode(t, w).Message, "too big")
	})

	t.Run("unknown length capped", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(strings.Repeat("a", 64)))
		req.ContentLength = -1
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("headers too large", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/", nil)
		req.Header.Set("X-Padding", strings.Repeat("p", 2048))
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
	})
}

func TestRateLimit(t *testing.T) {
	newEngine := func(l *stubLimiter, m *metrics.Metrics) *gin.Engine {
		r := gin.New()
		r.Use(ErrorHandler())
		r.GET("/limited", NewRateLimiter(l, m).RateLimit(), func(c *gin.Context) { c.Status(http.StatusOK) })
		return r
	}

	t.Run("allowed", func(t *testing.T) {
		l := &stubLimiter{allowed: true}
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/limited", nil)
		req.RemoteAddr = "203.0.113.7:5555"
		newEngine(l, metrics.New("test")).ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, []string{"203.0.113.7"}, l.keys)
	})

	t.Run("rejected", func(t *testing.T) {
		m := metrics.New("test")
		w := httptest.NewRecorder()
		newEngine(&stubLimiter{allowed: false}, m).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/limited", nil))

		assert.Equal(t, http.StatusTooManyRequests, w.Code)
		assert.Equal(t, "1", w.Header().Get("Retry-After"))
		assert.Equal(t, "rate limit exceeded", decode(t, w).Message)
		assert.Equal(t, float64(1), testutil.ToFloat64(m.RateLimited.WithLabelValues("/limited")))
	})

	t.Run("backend failure fails open", func(t *testing.T) {
		m := metrics.New("test")
		w := httptest.NewRecorder()
		newEngine(&stubLimiter{allowed: true, err: errors.New("redis down")}, m).
			ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/limited", nil))

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, float64(1), testutil.ToFloat64(m.LimiterFailure))
	})
}

type levelRequest struct {
	Password *string `json:"password" binding:"required"`
	MinLevel string  `json:"min_level" binding:"omitempty,strength_level"`
}

func TestValidation(t *testing.T) {
	config := DefaultValidationConfig()
	require.NoError(t, RegisterValidators(config))

	r := gin.New()
	r.Use(ErrorHandler(), Validation(config))
	r.POST("/", func(c *gin.Context) {
		var req levelRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			_ = c.Error(apperrors.NewBadRequest("invalid request", err))
			return
		}
		c.Status(http.StatusNoContent)
	})

	tests := []struct {
		name       string
		body       string
		wantStatus int
		wantField  string
		wantMsg    string
	}{
		{"valid", `{"password":"x","min_level":"strong"}`, http.StatusNoContent, "", ""},
		{"empty password allowed", `{"password":""}`, http.StatusNoContent, "", ""},
		{"label accepted", `{"password":"x","min_level":"Very Strong"}`, http.StatusNoContent, "", ""},
		{"missing password", `{}`, http.StatusBadRequest, "password", "Field is required"},
		{"unknown level", `{"password":"x","min_level":"ultra"}`, http.StatusBadRequest, "min_level", "Must be one of weak, medium, strong, very_strong"},
		{"malformed json", `{"password":`, http.StatusBadRequest, "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(tt.body))
			req.Header.Set("Content-Type", "application/json")
			r.ServeHTTP(w, req)

			assert.Equal(t, tt.wantStatus, w.Code)
			if tt.wantField == "" {
				return
			}

			var resp struct {
				Message string            `json:"message"`
				Data    []ValidationError `json:"data"`
			}
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			assert.Equal(t, "validation failed", resp.Message)
			require.Len(t, resp.Data, 1)
			assert.Equal(t, tt.wantField, resp.Data[0].Field)
			assert.Equal(t, tt.wantMsg, resp.Data[0].Message)
		})
	}
}

func TestMetrics(t *testing.T) {
	m := metrics.New("test")
	r := gin.New()
	r.Use(Metrics(m))
	r.GET("/ok", func(c *gin.Context) { c.Status(http.StatusOK) })

	for i := 0; i < 2; i++ {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/ok", nil))
	}
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/missing", nil))

	assert.Equal(t, float64(2), testutil.ToFloat64(m.RequestTotal.WithLabelValues("GET", "/ok", "200")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.ErrorTotal.WithLabelValues("GET", "unmatched", "client")))
}

func TestMetricsNilIsNoop(t *testing.T) {
	r := gin.New()
	r.Use(Metrics(nil))
	r.GET("/ok", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	assert.NotPanics(t, func() {
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ok", nil))
	})
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestCORS(t *testing.T) {
	r := gin.New()
	r.Use(CORS(CORSConfig{
		AllowOrigins: []string{"https://jobs.example.com"},
		AllowMethods: []string{"GET", "POST"},
		AllowHeaders: []string{"Content-Type"},
	}))
	r.POST("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodOptions, "/", nil)
	req.Header.Set("Origin", "https://jobs.example.com")
	req.Header.Set("Access-Control-Request-Method", "POST")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "https://jobs.example.com", w.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodPost, "/", nil)
	req.Header.Set("Origin", "https://evil.example.com")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusForbidden, w.Code)
}
