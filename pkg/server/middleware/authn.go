package middleware

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"github.com/smartattend/smartattend-go/pkg/audit"
	"github.com/smartattend/smartattend-go/pkg/tenant"
)

// Claims carried by a SmartAttend bearer token.
type Claims struct {
	TenantID string `json:"tenant_id"`
	Role     string `json:"role"`
	Platform string `json:"platform"`
	jwt.RegisteredClaims
}

// Authenticator is middleware that validates bearer tokens and attaches the
// resulting tenant context to the request.
type Authenticator struct {
	key  []byte
	sink *audit.Sink
}

// NewAuthenticator creates a new bearer token authenticator middleware.
// sink may be nil.
func NewAuthenticator(key []byte, sink *audit.Sink) *Authenticator {
	return &Authenticator{key: key, sink: sink}
}

// Middleware returns an HTTP middleware that validates bearer tokens
func (a *Authenticator) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")

		if len(authHeader) == 0 {
			a.reject(w, r, "", "Authorization missing")
			return
		}

		tokenStr, found := strings.CutPrefix(authHeader, "Bearer ")
		if !found {
			a.reject(w, r, "", "Malformed authorization header")
			return
		}

		claims := &Claims{}
		token, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
			}
			return a.key, nil
		})
		if err != nil || !token.Valid {
			a.reject(w, r, claims.Subject, "Invalid token")
			return
		}

		tc := tenant.Context{
			TenantID: claims.TenantID,
			Subject:  claims.Subject,
			Role:     claims.Role,
			Platform: claims.Platform,
		}
		if !tc.Valid() {
			a.reject(w, r, claims.Subject, "Token missing tenant claims")
			return
		}

		next.ServeHTTP(w, r.WithContext(tenant.Set(r.Context(), tc)))
	})
}

func (a *Authenticator) reject(w http.ResponseWriter, r *http.Request, subject, reason string) {
	if a.sink != nil {
		a.sink.Enqueue(audit.AuthenticateEvent{
			Subject:      subject,
			ClientIP:     ClientIP(r),
			Success:      false,
			ErrorMessage: reason,
		})
	}
	w.WriteHeader(http.StatusUnauthorized)
	_, _ = w.Write([]byte(reason))
}

// ClientIP resolves the request origin, preferring X-Forwarded-For.
func ClientIP(r *http.Request) string {
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		// First hop is the original client
		if idx := strings.IndexByte(forwarded, ','); idx >= 0 {
			return strings.TrimSpace(forwarded[:idx])
		}
		return forwarded
	}
	return r.RemoteAddr
}
