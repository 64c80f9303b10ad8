package server

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"
)

func TestAdminAuth(t *testing.T) {
	tests := []struct {
		name           string
		username       string
		password       string
		token          string
		reqUsername    string
		reqPassword    string
		reqToken       string
		expectedStatus int
	}{
		{
			name:           "no auth configured - allows request",
			expectedStatus: http.StatusOK,
		},
		{
			name:           "valid basic auth",
			username:       "admin",
			password:       "secret123",
			reqUsername:    "admin",
			reqPassword:    "secret123",
			expectedStatus: http.StatusOK,
		},
		{
			name:           "invalid basic auth username",
			username:       "admin",
			password:       "secret123",
			reqUsername:    "wrong",
			reqPassword:    "secret123",
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "invalid basic auth password",
			username:       "admin",
			password:       "secret123",
			reqUsername:    "admin",
			reqPassword:    "wrong",
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "valid token auth",
			token:          "test-token-12345",
			reqToken:       "test-token-12345",
			expectedStatus: http.StatusOK,
		},
		{
			name:           "invalid token auth",
			token:          "test-token-12345",
			reqToken:       "wrong-token",
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "token auth wins over bad basic credentials",
			username:       "admin",
			password:       "secret123",
			token:          "test-token-12345",
			reqToken:       "test-token-12345",
			reqUsername:    "wrong",
			reqPassword:    "wrong",
			expectedStatus: http.StatusOK,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &authConfig{
				adminUsername: tt.username,
				adminPassword: tt.password,
				adminToken:    tt.token,
				enabled:       (tt.username != "" && tt.password != "") || tt.token != "",
			}

			handler := adminAuth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusOK)
			}), cfg)

			req := httptest.NewRequest(http.MethodPost, "/sync/hardreset", nil)
			if tt.reqUsername != "" || tt.reqPassword != "" {
				req.SetBasicAuth(tt.reqUsername, tt.reqPassword)
			}
			if tt.reqToken != "" {
				req.Header.Set("X-Admin-Token", tt.reqToken)
			}

			rr := httptest.NewRecorder()
			handler.ServeHTTP(rr, req)

			if rr.Code != tt.expectedStatus {
				t.Errorf("expected status %d, got %d", tt.expectedStatus, rr.Code)
			}
			if tt.expectedStatus == http.StatusUnauthorized {
				if auth := rr.Header().Get("WWW-Authenticate"); auth == "" {
					t.Error("expected WWW-Authenticate header on 401 response")
				}
			}
		})
	}
}

func TestRateLimiterWindow(t *testing.T) {
	cfg := &rateLimiterConfig{
		enabled:       true,
		requestsPerIP: 3,
		window:        100 * time.Millisecond,
	}
	limiter := newIPRateLimiter(context.Background(), cfg)

	for i := 0; i < 3; i++ {
		if !limiter.allow("192.168.1.1") {
			t.Errorf("request %d should be allowed", i+1)
		}
	}
	if limiter.allow("192.168.1.1") {
		t.Error("request 4 should be denied (rate limit exceeded)")
	}

	// The window expires and requests flow again.
	time.Sleep(150 * time.Millisecond)
	if !limiter.allow("192.168.1.1") {
		t.Error("request after window expiry should be allowed")
	}
}

func TestRateLimiterPerIP(t *testing.T) {
	cfg := &rateLimiterConfig{
		enabled:       true,
		requestsPerIP: 2,
		window:        1 * time.Second,
	}
	limiter := newIPRateLimiter(context.Background(), cfg)

	for _, ip := range []string{"192.168.1.1", "192.168.1.2"} {
		if !limiter.allow(ip) || !limiter.allow(ip) {
			t.Errorf("first two requests from %s should be allowed", ip)
		}
	}
	for _, ip := range []string{"192.168.1.1", "192.168.1.2"} {
		if limiter.allow(ip) {
			t.Errorf("third request from %s should be denied", ip)
		}
	}
}

func TestRateLimiterDisabled(t *testing.T) {
	cfg := &rateLimiterConfig{
		enabled:       false,
		requestsPerIP: 1,
		window:        1 * time.Second,
	}
	limiter := newIPRateLimiter(context.Background(), cfg)

	for i := 0; i < 100; i++ {
		if !limiter.allow("192.168.1.1") {
			t.Errorf("request %d should be allowed when rate limiter is disabled", i+1)
		}
	}
}

// TestRateLimitMiddlewareClientIP covers IP extraction: direct RemoteAddr,
// X-Forwarded-For (first entry wins), and v4/v6 with and without ports.
func TestRateLimitMiddlewareClientIP(t *testing.T) {
	tests := []struct {
		name       string
		remoteAddr string
		forwarded  string
	}{
		{"ipv4 remote addr", "192.168.1.1:12345", ""},
		{"forwarded chain uses client ip", "10.0.0.1:12345", "203.0.113.1, 10.0.0.2"},
		{"ipv6 remote addr with port", "[2001:db8::1]:12345", ""},
		{"forwarded ipv6 without port", "127.0.0.1:8080", "2001:db8::42"},
		{"forwarded ipv4 without port", "10.0.0.1:8080", "192.0.2.1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &rateLimiterConfig{
				enabled:       true,
				requestsPerIP: 2,
				window:        1 * time.Second,
			}
			limiter := newIPRateLimiter(context.Background(), cfg)
			handler := rateLimitMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusOK)
			}), limiter)

			do := func() *httptest.ResponseRecorder {
				req := httptest.NewRequest(http.MethodPost, "/sync/refresh", nil)
				req.RemoteAddr = tt.remoteAddr
				if tt.forwarded != "" {
					req.Header.Set("X-Forwarded-For", tt.forwarded)
				}
				rr := httptest.NewRecorder()
				handler.ServeHTTP(rr, req)
				return rr
			}

			for i := 0; i < 2; i++ {
				if rr := do(); rr.Code != http.StatusOK {
					t.Errorf("request %d: expected 200, got %d", i+1, rr.Code)
				}
			}
			rr := do()
			if rr.Code != http.StatusTooManyRequests {
				t.Errorf("request 3: expected 429, got %d", rr.Code)
			}
			if retryAfter := rr.Header().Get("Retry-After"); retryAfter == "" {
				t.Error("expected Retry-After header on 429 response")
			}
		})
	}
}

func TestCORSConfig(t *testing.T) {
	tests := []struct {
		name              string
		permissive        bool
		allowedOrigins    []string
		requestOrigin     string
		expectAllowOrigin string
		expectCredentials bool
	}{
		{
			name:              "permissive mode allows all origins",
			permissive:        true,
			requestOrigin:     "https://overlay.example.com",
			expectAllowOrigin: "*",
		},
		{
			name:              "restricted mode with matching origin",
			permissive:        false,
			allowedOrigins:    []string{"https://stw222.tv", "https://overlay.stw222.tv"},
			requestOrigin:     "https://stw222.tv",
			expectAllowOrigin: "https://stw222.tv",
			expectCredentials: true,
		},
		{
			name:              "restricted mode with non-matching origin",
			permissive:        false,
			allowedOrigins:    []string{"https://stw222.tv"},
			requestOrigin:     "https://evil.com",
			expectAllowOrigin: "",
		},
		{
			name:              "wildcard subdomain matching",
			permissive:        false,
			allowedOrigins:    []string{"*.stw222.tv"},
			requestOrigin:     "https://overlay.stw222.tv",
			expectAllowOrigin: "https://overlay.stw222.tv",
			expectCredentials: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &corsConfig{
				permissive:     tt.permissive,
				allowedOrigins: tt.allowedOrigins,
			}

			handler := withCORSConfig(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusOK)
			}), cfg)

			req := httptest.NewRequest(http.MethodGet, "/schedule", nil)
			if tt.requestOrigin != "" {
				req.Header.Set("Origin", tt.requestOrigin)
			}
			rr := httptest.NewRecorder()
			handler.ServeHTTP(rr, req)

			allowOrigin := rr.Header().Get("Access-Control-Allow-Origin")
			if allowOrigin != tt.expectAllowOrigin {
				t.Errorf("expected Allow-Origin %q, got %q", tt.expectAllowOrigin, allowOrigin)
			}
			if tt.expectCredentials {
				if creds := rr.Header().Get("Access-Control-Allow-Credentials"); creds != "true" {
					t.Error("expected Allow-Credentials: true for restricted mode")
				}
			}
		})
	}
}

func TestCORSPreflightRequest(t *testing.T) {
	cfg := &corsConfig{permissive: true}

	handler := withCORSConfig(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("handler should not be called for OPTIONS request")
	}), cfg)

	req := httptest.NewRequest(http.MethodOptions, "/schedule", nil)
	req.Header.Set("Origin", "https://overlay.stw222.tv")
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusNoContent {
		t.Errorf("expected 204 for OPTIONS, got %d", rr.Code)
	}
	if allowMethods := rr.Header().Get("Access-Control-Allow-Methods"); allowMethods == "" {
		t.Error("expected Allow-Methods header on OPTIONS response")
	}
}

func TestLoadAuthConfig(t *testing.T) {
	tests := []struct {
		name        string
		envVars     map[string]string
		wantEnabled bool
	}{
		{
			name:        "no auth configured",
			envVars:     map[string]string{},
			wantEnabled: false,
		},
		{
			name: "basic auth only",
			envVars: map[string]string{
				"ADMIN_USERNAME": "admin",
				"ADMIN_PASSWORD": "secret",
			},
			wantEnabled: true,
		},
		{
			name: "token auth only",
			envVars: map[string]string{
				"ADMIN_TOKEN": "test-token",
			},
			wantEnabled: true,
		},
		{
			name: "username without password is not enough",
			envVars: map[string]string{
				"ADMIN_USERNAME": "admin",
			},
			wantEnabled: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			os.Unsetenv("ADMIN_USERNAME")
			os.Unsetenv("ADMIN_PASSWORD")
			os.Unsetenv("ADMIN_TOKEN")
			for k, v := range tt.envVars {
				t.Setenv(k, v)
			}

			cfg := loadAuthConfig()
			if cfg.enabled != tt.wantEnabled {
				t.Errorf("expected enabled=%v, got %v", tt.wantEnabled, cfg.enabled)
			}
		})
	}
}

func TestIsOriginAllowed(t *testing.T) {
	tests := []struct {
		name           string
		origin         string
		allowedOrigins []string
		want           bool
	}{
		{
			name:           "exact match",
			origin:         "https://stw222.tv",
			allowedOrigins: []string{"https://stw222.tv", "https://other.com"},
			want:           true,
		},
		{
			name:           "no match",
			origin:         "https://evil.com",
			allowedOrigins: []string{"https://stw222.tv"},
			want:           false,
		},
		{
			name:           "wildcard subdomain match",
			origin:         "https://overlay.stw222.tv",
			allowedOrigins: []string{"*.stw222.tv"},
			want:           true,
		},
		{
			name:           "wildcard subdomain deeper match",
			origin:         "https://api.v2.stw222.tv",
			allowedOrigins: []string{"*.stw222.tv"},
			want:           true,
		},
		{
			name:           "http vs https mismatch",
			origin:         "http://stw222.tv",
			allowedOrigins: []string{"https://stw222.tv"},
			want:           false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := isOriginAllowed(tt.origin, tt.allowedOrigins)
			if got != tt.want {
				t.Errorf("isOriginAllowed(%q, %v) = %v, want %v", tt.origin, tt.allowedOrigins, got, tt.want)
			}
		})
	}
}
