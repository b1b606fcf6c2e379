package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

// dashboardHosts mirrors a deployment serving the SPA from its own host plus
// the local dev server.
var dashboardHosts = []string{"app.findash.local", "localhost:5173"}

func TestCORS(t *testing.T) {
	tests := []struct {
		name         string
		hosts        []string
		method       string
		target       string
		origin       string
		wantStatus   int
		wantNext     bool
		wantOrigin   string
		wantCreds    bool
		wantExposeCD bool
	}{
		{
			name:   "dashboard login",
			hosts:  dashboardHosts,
			method: http.MethodPost, target: "/api/auth/login",
			origin:     "https://app.findash.local",
			wantStatus: http.StatusOK, wantNext: true,
			wantOrigin: "https://app.findash.local", wantCreds: true, wantExposeCD: true,
		},
		{
			name:   "export download exposes filename header",
			hosts:  dashboardHosts,
			method: http.MethodGet, target: "/api/export/transactions?format=csv",
			origin:     "http://localhost:5173",
			wantStatus: http.StatusOK, wantNext: true,
			wantOrigin: "http://localhost:5173", wantCreds: true, wantExposeCD: true,
		},
		{
			name:   "foreign site cannot log in",
			hosts:  dashboardHosts,
			method: http.MethodPost, target: "/api/auth/login",
			origin:     "https://phish.example",
			wantStatus: http.StatusForbidden,
		},
		{
			name:   "opaque origin rejected",
			hosts:  dashboardHosts,
			method: http.MethodPost, target: "/api/auth/register",
			origin:     "null",
			wantStatus: http.StatusForbidden,
		},
		{
			name:   "same-origin call without Origin",
			hosts:  dashboardHosts,
			method: http.MethodGet, target: "/api/dashboard/metrics",
			wantStatus: http.StatusOK, wantNext: true, wantExposeCD: true,
		},
		{
			name:   "open deployment",
			method: http.MethodGet, target: "/api/reports/monthly",
			origin:     "https://anything.example",
			wantStatus: http.StatusOK, wantNext: true,
			wantOrigin: "*", wantExposeCD: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			called := false
			handler := CORS(tt.hosts)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				called = true
			}))

			req := httptest.NewRequest(tt.method, tt.target, nil)
			if tt.origin != "" {
				req.Header.Set("Origin", tt.origin)
			}
			rr := httptest.NewRecorder()
			handler.ServeHTTP(rr, req)

			if rr.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d", rr.Code, tt.wantStatus)
			}
			if called != tt.wantNext {
				t.Errorf("handler called = %v, want %v", called, tt.wantNext)
			}
			if got := rr.Header().Get("Access-Control-Allow-Origin"); got != tt.wantOrigin {
				t.Errorf("Allow-Origin = %q, want %q", got, tt.wantOrigin)
			}
			if got := rr.Header().Get("Access-Control-Allow-Credentials") == "true"; got != tt.wantCreds {
				t.Errorf("Allow-Credentials = %v, want %v", got, tt.wantCreds)
			}
			expose := rr.Header().Get("Access-Control-Expose-Headers")
			if got := strings.Contains(expose, "Content-Disposition"); got != tt.wantExposeCD {
				t.Errorf("Expose-Headers = %q, Content-Disposition exposed = %v, want %v", expose, got, tt.wantExposeCD)
			}
		})
	}
}

func TestCORS_PreflightForAuthorizedWrite(t *testing.T) {
	handler := CORS(dashboardHosts)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("preflight reached the transaction handler")
	}))

	req := httptest.NewRequest(http.MethodOptions, "/api/transactions/", nil)
	req.Header.Set("Origin", "https://app.findash.local")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	req.Header.Set("Access-Control-Request-Headers", "authorization, content-type")
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusNoContent {
		t.Fatalf("status = %d, want 204", rr.Code)
	}
	allowed := rr.Header().Get("Access-Control-Allow-Headers")
	for _, h := range []string{"Authorization", "Content-Type"} {
		if !strings.Contains(allowed, h) {
			t.Errorf("Allow-Headers = %q, missing %s", allowed, h)
		}
	}
	if methods := rr.Header().Get("Access-Control-Allow-Methods"); !strings.Contains(methods, http.MethodDelete) {
		t.Errorf("Allow-Methods = %q, missing DELETE", methods)
	}
	if vary := rr.Header().Get("Vary"); vary != "Origin" {
		t.Errorf("Vary = %q, want Origin", vary)
	}
}

func TestIsOriginAllowed(t *testing.T) {
	tests := []struct {
		origin string
		want   bool
	}{
		{"https://app.findash.local", true},
		{"https://APP.findash.local:8443", true},
		{"http://localhost:5173", true},
		{"http://localhost:3000", true},
		{"https://findash.local", false},
		{"https://app.findash.local.evil.example", false},
		{"://broken", false},
		{"null", false},
	}

	for _, tt := range tests {
		t.Run(tt.origin, func(t *testing.T) {
			if got := isOriginAllowed(tt.origin, dashboardHosts); got != tt.want {
				t.Errorf("isOriginAllowed(%q) = %v, want %v", tt.origin, got, tt.want)
			}
		})
	}
}
