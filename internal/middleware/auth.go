package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

type contextKey string

const claimsContextKey contextKey = "claims"

// Claims is the authenticated principal extracted from a bearer token.
type Claims struct {
	ID       string
	Username string
	Role     string
}

// JWTAuth verifies a bearer token signed with secret and stores the claims in
// the request context. Requests fail with 401 before any handler or store
// access.
func JWTAuth(secret []byte) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := strings.TrimSpace(r.Header.Get("Authorization"))
			if !strings.HasPrefix(strings.ToLower(authHeader), "bearer ") {
				unauthorized(w)
				return
			}
			tokenStr := strings.TrimSpace(authHeader[7:])

			token, err := jwt.Parse(tokenStr, func(token *jwt.Token) (interface{}, error) {
				if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
					return nil, jwt.ErrSignatureInvalid
				}
				return secret, nil
			})
			if err != nil || !token.Valid {
				unauthorized(w)
				return
			}

			claims := Claims{}
			if mc, ok := token.Claims.(jwt.MapClaims); ok {
				claims.ID, _ = mc["sub"].(string)
				claims.Username, _ = mc["username"].(string)
				claims.Role, _ = mc["role"].(string)
			}

			ctx := context.WithValue(r.Context(), claimsContextKey, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// ClaimsFromContext returns the claims stored by JWTAuth, if any.
func ClaimsFromContext(ctx context.Context) (Claims, bool) {
	claims, ok := ctx.Value(claimsContextKey).(Claims)
	return claims, ok
}

func unauthorized(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_, _ = w.Write([]byte(`{"error":"unauthorized"}`))
}
