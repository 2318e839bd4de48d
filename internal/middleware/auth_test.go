package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/qrsurvey/qrs-api/internal/pkg/jwt"
)

type staticRevocations map[string]bool

func (s staticRevocations) IsRevoked(_ context.Context, tokenID string) (bool, error) {
	return s[tokenID], nil
}

func serve(h http.Handler, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func TestStoreAuthPutsSessionInContext(t *testing.T) {
	jwtSvc := jwt.NewService("secret", time.Minute)
	customerID := uuid.New()
	userID := uuid.New()
	token, _, err := jwtSvc.Issue(jwt.AudienceStore, userID, &customerID, false)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	var got *Session
	h := StoreAuth(jwtSvc, nil, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = GetSession(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	if w := serve(h, token); w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if got == nil || got.UserID != userID || got.CustomerID != customerID {
		t.Fatalf("unexpected session %+v", got)
	}
}

func TestStoreAuthRejectsAdminToken(t *testing.T) {
	jwtSvc := jwt.NewService("secret", time.Minute)
	token, _, _ := jwtSvc.Issue(jwt.AudienceAdmin, uuid.New(), nil, true)

	h := StoreAuth(jwtSvc, nil, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatalf("handler should not run")
	}))
	if w := serve(h, token); w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", w.Code)
	}
}

func TestStoreAuthGateBlocksInactiveCustomer(t *testing.T) {
	jwtSvc := jwt.NewService("secret", time.Minute)
	customerID := uuid.New()
	token, _, _ := jwtSvc.Issue(jwt.AudienceStore, uuid.New(), &customerID, false)

	gate := func(context.Context, uuid.UUID) error { return errors.New("on hold") }
	h := StoreAuth(jwtSvc, nil, gate)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatalf("handler should not run")
	}))
	if w := serve(h, token); w.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", w.Code)
	}
}

func TestAdminAuth(t *testing.T) {
	jwtSvc := jwt.NewService("secret", time.Minute)
	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })

	admin, claims, _ := jwtSvc.Issue(jwt.AudienceAdmin, uuid.New(), nil, true)
	notAdmin, _, _ := jwtSvc.Issue(jwt.AudienceAdmin, uuid.New(), nil, false)

	tests := []struct {
		name        string
		token       string
		revocations Revocations
		want        int
	}{
		{"super admin", admin, nil, http.StatusOK},
		{"missing header", "", nil, http.StatusUnauthorized},
		{"garbage", "not-a-jwt", nil, http.StatusUnauthorized},
		{"not super admin", notAdmin, nil, http.StatusForbidden},
		{"revoked", admin, staticRevocations{claims.ID: true}, http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := AdminAuth(jwtSvc, tt.revocations)(ok)
			if w := serve(h, tt.token); w.Code != tt.want {
				t.Fatalf("expected %d, got %d", tt.want, w.Code)
			}
		})
	}
}

func TestAdminAuthExpiredToken(t *testing.T) {
	jwtSvc := jwt.NewService("secret", -time.Minute)
	token, _, _ := jwtSvc.Issue(jwt.AudienceAdmin, uuid.New(), nil, true)

	h := AdminAuth(jwtSvc, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	if w := serve(h, token); w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", w.Code)
	}
}

func TestClientIP(t *testing.T) {
	tests := []struct {
		name    string
		headers map[string]string
		want    string
	}{
		{"forwarded list", map[string]string{"X-Forwarded-For": "203.0.113.9, 10.0.0.1"}, "203.0.113.9"},
		{"cloudflare", map[string]string{"CF-Connecting-IP": "198.51.100.4", "X-Real-IP": "10.0.0.2"}, "198.51.100.4"},
		{"real ip", map[string]string{"X-Real-IP": "10.0.0.2"}, "10.0.0.2"},
		{"none", nil, "unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			for k, v := range tt.headers {
				req.Header.Set(k, v)
			}
			if got := ClientIP(req); got != tt.want {
				t.Fatalf("ClientIP = %q, want %q", got, tt.want)
			}
		})
	}
}
