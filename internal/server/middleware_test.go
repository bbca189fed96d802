package server

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"modelpicker/internal/config"
	"modelpicker/internal/core"
	applog "modelpicker/internal/log"

	"github.com/gin-gonic/gin"
)

func newTestServerForMiddleware(adminKeys []string) *Server {
	gin.SetMode(gin.TestMode)
	keyMap := make(map[string]bool)
	for _, k := range adminKeys {
		keyMap[k] = true
	}
	return &Server{
		validAdminKeys: keyMap,
		config:         config.ServerConfig{Logger: &core.NopLogger{}},
	}
}

func runAdminAuth(s *Server, headers map[string]string) (*httptest.ResponseRecorder, *gin.Context) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/api/stats", nil)
	for k, v := range headers {
		c.Request.Header.Set(k, v)
	}
	s.authenticateAdmin(c)
	return w, c
}

func TestAuthenticateAdmin_ValidBearerToken(t *testing.T) {
	s := newTestServerForMiddleware([]string{"test-key-1", "test-key-2"})
	w, c := runAdminAuth(s, map[string]string{"Authorization": "Bearer test-key-1"})
	if w.Code != http.StatusOK {
		t.Errorf("valid bearer token should pass, got status %d", w.Code)
	}
	if c.IsAborted() {
		t.Error("valid bearer token should not abort")
	}
}

func TestAuthenticateAdmin_ValidXAPIKey(t *testing.T) {
	s := newTestServerForMiddleware([]string{"test-key-1"})
	w, c := runAdminAuth(s, map[string]string{"x-api-key": "test-key-1"})
	if w.Code != http.StatusOK || c.IsAborted() {
		t.Errorf("valid x-api-key should pass, got status %d", w.Code)
	}
}

func TestAuthenticateAdmin_Rejections(t *testing.T) {
	tests := []struct {
		name    string
		keys    []string
		headers map[string]string
		status  int
		code    string
	}{
		{"invalid key", []string{"valid-key"}, map[string]string{"Authorization": "Bearer wrong-key"}, http.StatusForbidden, core.ErrorCodeForbidden},
		{"missing key", []string{"valid-key"}, nil, http.StatusUnauthorized, core.ErrorCodeUnauthorized},
		{"no keys configured", nil, map[string]string{"x-api-key": "anything"}, http.StatusServiceUnavailable, core.ErrorCodeServiceUnavailable},
		{"x-api-key takes precedence", []string{"valid-key"}, map[string]string{"x-api-key": "invalid-key", "Authorization": "Bearer valid-key"}, http.StatusForbidden, core.ErrorCodeForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, c := runAdminAuth(newTestServerForMiddleware(tt.keys), tt.headers)
			if w.Code != tt.status {
				t.Errorf("status = %d, want %d", w.Code, tt.status)
			}
			if !c.IsAborted() {
				t.Error("rejected request should abort")
			}
			if !strings.Contains(w.Body.String(), `"code":"`+tt.code+`"`) {
				t.Errorf("body = %s", w.Body.String())
			}
		})
	}
}

func TestAuthenticateAdmin_LogsRejectedKeyMasked(t *testing.T) {
	tests := []struct {
		name    string
		headers map[string]string
		source  string
	}{
		{"x-api-key", map[string]string{"x-api-key": "sk-wrong-0123456789"}, "(x-api-key)"},
		{"bearer", map[string]string{"Authorization": "Bearer sk-wrong-0123456789"}, "(Bearer)"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			s := newTestServerForMiddleware([]string{"valid-key"})
			s.config.Logger = applog.NewAppLoggerWithConfig(&buf, false)

			w, _ := runAdminAuth(s, tt.headers)
			if w.Code != http.StatusForbidden {
				t.Fatalf("status = %d, want 403", w.Code)
			}
			logged := buf.String()
			if !strings.Contains(logged, "Rejected admin key sk-w***6789 "+tt.source) {
				t.Errorf("expected masked key in log, got %q", logged)
			}
			if strings.Contains(logged, "sk-wrong-0123456789") {
				t.Errorf("raw key leaked into log: %q", logged)
			}
		})
	}
}

func TestCorsMiddleware_SetsHeaders(t *testing.T) {
	s := newTestServerForMiddleware(nil)
	s.config.CORSAllowOrigin = "https://app.example.com"
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/api/versions", nil)
	s.corsMiddleware()(c)
	if origin := w.Header().Get("Access-Control-Allow-Origin"); origin != "https://app.example.com" {
		t.Errorf("unexpected Access-Control-Allow-Origin %q", origin)
	}
	if methods := w.Header().Get("Access-Control-Allow-Methods"); methods != "GET, OPTIONS" {
		t.Errorf("unexpected Access-Control-Allow-Methods %q", methods)
	}
}

func TestCorsMiddleware_DefaultOrigin(t *testing.T) {
	s := newTestServerForMiddleware(nil)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	s.corsMiddleware()(c)
	if origin := w.Header().Get("Access-Control-Allow-Origin"); origin != "*" {
		t.Errorf("expected '*', got %q", origin)
	}
}

func TestCorsMiddleware_OptionsRequest(t *testing.T) {
	s := newTestServerForMiddleware(nil)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodOptions, "/api/v1/latest/coding", nil)
	s.corsMiddleware()(c)
	if w.Code != http.StatusNoContent {
		t.Errorf("OPTIONS should return 204, got %d", w.Code)
	}
	if !c.IsAborted() {
		t.Error("OPTIONS should abort (skip handler)")
	}
}

func TestRequestIDMiddleware(t *testing.T) {
	s := newTestServerForMiddleware(nil)
	tests := []struct {
		name     string
		incoming string
		keep     bool
	}{
		{"generated when absent", "", false},
		{"echoed when sane", "abc-123", true},
		{"replaced when too long", strings.Repeat("x", core.RequestIDHeaderMaxLen+1), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.incoming != "" {
				c.Request.Header.Set(core.HeaderXRequestID, tt.incoming)
			}
			s.requestIDMiddleware()(c)

			got := w.Header().Get(core.HeaderXRequestID)
			if got == "" || got != c.GetString(core.GinContextRequestID) {
				t.Fatalf("header %q and context %q should match", got, c.GetString(core.GinContextRequestID))
			}
			if (got == tt.incoming) != tt.keep {
				t.Errorf("request ID = %q, keep incoming = %v", got, tt.keep)
			}
		})
	}
}

func TestRateLimiter_Allow(t *testing.T) {
	rl := newRateLimiter(2)
	defer rl.stop()

	if !rl.allow("10.0.0.1") || !rl.allow("10.0.0.1") {
		t.Fatal("first two requests should pass")
	}
	if rl.allow("10.0.0.1") {
		t.Error("third request in the window should be refused")
	}
	if !rl.allow("10.0.0.2") {
		t.Error("other clients are counted separately")
	}

	rl.mu.Lock()
	rl.visitors["10.0.0.1"].windowStart = time.Now().Add(-2 * time.Minute)
	rl.mu.Unlock()
	if !rl.allow("10.0.0.1") {
		t.Error("a new window should reset the count")
	}
}

func TestRateLimiter_StopIsIdempotent(t *testing.T) {
	rl := newRateLimiter(1)
	rl.stop()
	rl.stop()
}

func TestUnsupportedVersion(t *testing.T) {
	tests := []struct {
		path    string
		version string
		ok      bool
	}{
		{"/api/v2/latest/coding", "v2", true},
		{"/api/v10", "v10", true},
		{"/api/v1/latest/nothing/else", "", false},
		{"/api/stats2", "", false},
		{"/other/v2", "", false},
	}
	for _, tt := range tests {
		version, ok := unsupportedVersion(tt.path)
		if version != tt.version || ok != tt.ok {
			t.Errorf("unsupportedVersion(%q) = %q, %v", tt.path, version, ok)
		}
	}
}

func TestSelectionCacheControl(t *testing.T) {
	if selectionCacheControl("latest") != core.CacheControlLatest {
		t.Error("latest should use the short-lived policy")
	}
	if selectionCacheControl("2025-02-10") != core.CacheControlPinned {
		t.Error("a literal date should be immutable")
	}
}
