package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newEngine(mw ...gin.HandlerFunc) *gin.Engine {
	r := gin.New()
	r.Use(mw...)
	r.GET("/ping", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"ok": true}) })
	r.POST("/echo", func(c *gin.Context) {
		var body map[string]any
		if err := c.ShouldBindJSON(&body); err != nil {
			c.JSON(http.StatusBadRequest, errorBody(err.Error()))
			return
		}
		c.JSON(http.StatusOK, body)
	})
	r.GET("/panic", func(c *gin.Context) { panic("boom") })
	return r
}

func TestRequestID(t *testing.T) {
	r := newEngine(RequestID())

	tests := []struct {
		name   string
		header http.Header
		want   string
	}{
		{"caller id reused", http.Header{HeaderXRequestID: {"abc-123"}}, "abc-123"},
		{"caller id trimmed", http.Header{HeaderXRequestID: {"  req:42.a_b "}}, "req:42.a_b"},
		{
			"traceparent fallback",
			http.Header{"Traceparent": {"00-4BF92F3577B34DA6A3CE929D0E0E4736-00f067aa0ba902b7-01"}},
			"4bf92f3577b34da6a3ce929d0e0e4736",
		},
		{
			"unsafe caller id replaced by trace id",
			http.Header{
				HeaderXRequestID: {"abc\r\nSet-Cookie: x"},
				"Traceparent":    {"00-4bf92f3577b34da6a3ce929d0e0e4736-00f067aa0ba902b7-01"},
			},
			"4bf92f3577b34da6a3ce929d0e0e4736",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/ping", nil)
			for k, v := range tt.header {
				req.Header.Set(k, v[0])
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)
			assert.Equal(t, tt.want, w.Header().Get(HeaderXRequestID))
		})
	}

	generated := []http.Header{
		nil,
		{HeaderXRequestID: {strings.Repeat("a", maxRequestIDLength+1)}},
		{HeaderXRequestID: {"<script>"}},
		{"Traceparent": {"00-00000000000000000000000000000000-00f067aa0ba902b7-01"}},
		{"Traceparent": {"00-not-hex-01"}},
	}
	for _, header := range generated {
		req := httptest.NewRequest(http.MethodGet, "/ping", nil)
		for k, v := range header {
			req.Header.Set(k, v[0])
		}
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		_, err := uuid.Parse(w.Header().Get(HeaderXRequestID))
		assert.NoError(t, err, header)
	}
}

func TestRecovery(t *testing.T) {
	r := newEngine(RequestID(), Recovery())

	req := httptest.NewRequest(http.MethodGet, "/panic", nil)
	req.Header.Set(HeaderXRequestID, "abc-123")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"success":false,"message":"Internal server error","requestId":"abc-123"}`, w.Body.String())

	bare := newEngine(Recovery())
	w = httptest.NewRecorder()
	bare.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/panic", nil))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"success":false,"message":"Internal server error"}`, w.Body.String())
}

func TestCORS(t *testing.T) {
	cfg := CORSConfig{
		AllowOrigins:        []string{"http://localhost:3000", "https://clinic.example.com"},
		AllowVercelPreviews: true,
	}

	tests := []struct {
		origin  string
		allowed bool
	}{
		{"http://localhost:3000", true},
		{"https://clinic.example.com", true},
		{"https://dental-form-git-main.vercel.app", true},
		{"http://dental-form.vercel.app", false},
		{"https://evil.vercel.app.attacker.com", false},
		{"https://attacker.com", false},
	}

	for _, tt := range tests {
		t.Run(tt.origin, func(t *testing.T) {
			assert.Equal(t, tt.allowed, cfg.AllowOrigin(tt.origin))
		})
	}

	r := newEngine(CORS(cfg))

	req := httptest.NewRequest(http.MethodOptions, "/echo", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "http://localhost:3000", w.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set("Origin", "https://attacker.com")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))

	t.Run("previews disabled", func(t *testing.T) {
		cfg := CORSConfig{AllowOrigins: []string{"http://localhost:3000"}}
		assert.False(t, cfg.AllowOrigin("https://dental-form.vercel.app"))
	})
}

func TestRateLimit(t *testing.T) {
	r := newEngine(NewRateLimiter(RateLimiterConfig{Rate: 1, Burst: 2}).RateLimit())

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))
		codes = append(codes, w.Code)
	}
	assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)

	// another client has its own bucket
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.RemoteAddr = "10.0.0.2:4000"
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestSizeLimit(t *testing.T) {
	r := newEngine(SizeLimit(SizeLimitConfig{MaxBodySize: 16, MaxHeaderSize: 1 << 14}))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/echo", strings.NewReader(`{"signature":"AAAAAAAAAAAAAAAAAAAA"}`)))
	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/echo", strings.NewReader(`{"a":1}`)))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestSecurityHeaders(t *testing.T) {
	r := newEngine(SecurityHeaders(DefaultSecurityConfig()))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))
	assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "DENY", w.Header().Get("X-Frame-Options"))
	assert.Contains(t, w.Header().Get("Strict-Transport-Security"), "max-age=31536000")
}

func TestTimeout(t *testing.T) {
	r := gin.New()
	r.Use(Timeout(TimeoutConfig{Duration: 10 * time.Millisecond}))
	r.GET("/slow", func(c *gin.Context) {
		<-c.Request.Context().Done()
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/slow", nil))
	assert.Equal(t, http.StatusGatewayTimeout, w.Code)
}

func signToken(t *testing.T, secret string, method jwt.SigningMethod, exp time.Time) string {
	t.Helper()
	tok := jwt.NewWithClaims(method, jwt.RegisteredClaims{
		Subject:   "front-desk",
		ExpiresAt: jwt.NewNumericDate(exp),
	})
	s, err := tok.SignedString([]byte(secret))
	require.NoError(t, err)
	return s
}

func TestAdminAuth(t *testing.T) {
	r := gin.New()
	r.GET("/admin", AdminAuth([]byte("s3cret")), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"sub": c.GetString(ContextAdminSubject)})
	})

	do := func(header string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/admin", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w
	}

	future := time.Now().Add(time.Hour)

	assert.Equal(t, http.StatusUnauthorized, do("").Code)
	assert.Equal(t, http.StatusUnauthorized, do("Token abc").Code)
	assert.Equal(t, http.StatusUnauthorized, do("Bearer "+signToken(t, "wrong", jwt.SigningMethodHS256, future)).Code)
	assert.Equal(t, http.StatusUnauthorized, do("Bearer "+signToken(t, "s3cret", jwt.SigningMethodHS512, future)).Code)
	assert.Equal(t, http.StatusUnauthorized, do("Bearer "+signToken(t, "s3cret", jwt.SigningMethodHS256, time.Now().Add(-time.Minute))).Code)

	w := do("Bearer " + signToken(t, "s3cret", jwt.SigningMethodHS256, future))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"sub":"front-desk"}`, w.Body.String())
}

func TestFieldErrors(t *testing.T) {
	RegisterJSONFieldNames()

	type payload struct {
		FormData *struct{} `json:"formData" binding:"required"`
	}
	r := gin.New()
	var got []ValidationError
	r.POST("/bind", func(c *gin.Context) {
		var p payload
		got = FieldErrors(c.ShouldBindJSON(&p))
		c.Status(http.StatusNoContent)
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/bind", strings.NewReader(`{}`)))
	require.Len(t, got, 1)
	assert.Equal(t, ValidationError{Field: "formData", Message: "Field is required"}, got[0])
}
