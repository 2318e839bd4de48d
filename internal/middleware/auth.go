package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/qrsurvey/qrs-api/internal/pkg/jwt"
	"github.com/qrsurvey/qrs-api/internal/pkg/response"
)

type contextKey string

const sessionKey contextKey = "session"

// Session is the authenticated caller, passed explicitly through the
// request context. CustomerID is uuid.Nil for platform admins.
type Session struct {
	UserID       uuid.UUID
	CustomerID   uuid.UUID
	IsSuperAdmin bool
	TokenID      string
	ExpiresAt    time.Time
}

// Revocations reports tokens invalidated by logout.
type Revocations interface {
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}

// CustomerGate returns an error when the customer may not use the store panel.
type CustomerGate func(ctx context.Context, customerID uuid.UUID) error

var ErrMissingSession = errors.New("missing session")

// WithSession attaches a session to ctx.
func WithSession(ctx context.Context, s *Session) context.Context {
	return context.WithValue(ctx, sessionKey, s)
}

// GetSession returns the session set by AdminAuth or StoreAuth, or nil.
func GetSession(ctx context.Context) *Session {
	s, _ := ctx.Value(sessionKey).(*Session)
	return s
}

// GetCustomerID returns the session's customer, or uuid.Nil.
func GetCustomerID(ctx context.Context) uuid.UUID {
	if s := GetSession(ctx); s != nil {
		return s.CustomerID
	}
	return uuid.Nil
}

// AdminAuth accepts admin-audience tokens held by super admins.
func AdminAuth(jwtService *jwt.Service, revocations Revocations) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			session, ok := authenticate(w, r, jwtService, revocations, jwt.AudienceAdmin)
			if !ok {
				return
			}
			if !session.IsSuperAdmin {
				response.Forbidden(w, "Admin access required")
				return
			}
			next.ServeHTTP(w, r.WithContext(WithSession(r.Context(), session)))
		})
	}
}

// StoreAuth accepts store-audience tokens and re-checks the customer on
// every request, so putting a customer on hold locks its panel immediately.
func StoreAuth(jwtService *jwt.Service, revocations Revocations, gate CustomerGate) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			session, ok := authenticate(w, r, jwtService, revocations, jwt.AudienceStore)
			if !ok {
				return
			}
			if session.CustomerID == uuid.Nil {
				response.Forbidden(w, "No customer linked to this account")
				return
			}
			if gate != nil {
				if err := gate(r.Context(), session.CustomerID); err != nil {
					log.Warn().Err(err).Str("customer_id", session.CustomerID.String()).Msg("store session rejected")
					response.Forbidden(w, "Your account is not active. Please contact support.")
					return
				}
			}
			next.ServeHTTP(w, r.WithContext(WithSession(r.Context(), session)))
		})
	}
}

func authenticate(w http.ResponseWriter, r *http.Request, jwtService *jwt.Service, revocations Revocations, audience string) (*Session, bool) {
	token, ok := bearerToken(r)
	if !ok {
		response.Unauthorized(w, "Missing or malformed authorization header")
		return nil, false
	}

	claims, err := jwtService.Validate(token, audience)
	if err != nil {
		if errors.Is(err, jwt.ErrExpiredToken) {
			response.Unauthorized(w, "Token expired")
		} else {
			response.Unauthorized(w, "Invalid token")
		}
		return nil, false
	}

	if revocations != nil {
		revoked, err := revocations.IsRevoked(r.Context(), claims.ID)
		if err != nil {
			log.Warn().Err(err).Msg("revocation check failed")
		}
		if revoked {
			response.Unauthorized(w, "Session ended")
			return nil, false
		}
	}

	session := &Session{
		UserID:       claims.UserID,
		IsSuperAdmin: claims.IsSuperAdmin,
		TokenID:      claims.ID,
	}
	if claims.CustomerID != nil {
		session.CustomerID = *claims.CustomerID
	}
	if claims.ExpiresAt != nil {
		session.ExpiresAt = claims.ExpiresAt.Time
	}
	return session, true
}

func bearerToken(r *http.Request) (string, bool) {
	scheme, token, found := strings.Cut(r.Header.Get("Authorization"), " ")
	if !found || !strings.EqualFold(scheme, "bearer") || strings.TrimSpace(token) == "" {
		return "", false
	}
	return strings.TrimSpace(token), true
}
