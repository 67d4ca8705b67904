package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"github.com/bluecart/commerce/internal/transport/http/response"
)

type userIDKey struct{}

type accessClaims struct {
	jwt.RegisteredClaims
}

// Auth verifies a bearer token signed with HS256 and stashes the subject
// claim in the request context as the acting user id.
func Auth(secret, issuer string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if !strings.HasPrefix(header, "Bearer ") {
				response.Fail(w, http.StatusUnauthorized, "unauthorized", "missing bearer token", nil, response.RequestIDFromRequest(r))
				return
			}
			raw := strings.TrimPrefix(header, "Bearer ")

			var claims accessClaims
			token, err := jwt.ParseWithClaims(raw, &claims, func(t *jwt.Token) (any, error) {
				if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
					return nil, jwt.ErrSignatureInvalid
				}
				return []byte(secret), nil
			}, jwt.WithIssuer(issuer), jwt.WithExpirationRequired())
			if err != nil || !token.Valid || claims.Subject == "" {
				response.Fail(w, http.StatusUnauthorized, "unauthorized", "invalid token", nil, response.RequestIDFromRequest(r))
				return
			}

			ctx := context.WithValue(r.Context(), userIDKey{}, claims.Subject)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// UserID returns the authenticated user id, or "" outside an Auth-wrapped route.
func UserID(r *http.Request) string {
	id, _ := r.Context().Value(userIDKey{}).(string)
	return id
}
