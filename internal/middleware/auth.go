// middleware/auth.go
package middleware

import (
	"context"
	"net/http"
	"strings"

	"walletflow-service/internal/ledger"
	"walletflow-service/internal/pkg/response"

	"github.com/golang-jwt/jwt/v5"
)

type contextKey string

const (
	ContextUserID   contextKey = "user_id"
	ContextWalletID contextKey = "wallet_id"
)

// UserID extracts the authenticated user from the request context.
func UserID(ctx context.Context) string {
	if v, ok := ctx.Value(ContextUserID).(string); ok {
		return v
	}
	return ""
}

// WalletID extracts the session user's own wallet id, when the token
// carries one.
func WalletID(ctx context.Context) string {
	if v, ok := ctx.Value(ContextWalletID).(string); ok {
		return v
	}
	return ""
}

// RequireSession validates the bearer token, resolves the subject and
// forwards the raw token so ledger calls are made as the session user.
func RequireSession(secret []byte) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authz := r.Header.Get("Authorization")
			if !strings.HasPrefix(authz, "Bearer ") {
				response.Error(w, http.StatusUnauthorized, "missing bearer token")
				return
			}
			raw := strings.TrimPrefix(authz, "Bearer ")

			claims := jwt.MapClaims{}
			token, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (interface{}, error) {
				if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
					return nil, jwt.ErrSignatureInvalid
				}
				return secret, nil
			})
			if err != nil || !token.Valid {
				response.Error(w, http.StatusUnauthorized, "invalid or expired token")
				return
			}

			sub, _ := claims["sub"].(string)
			if sub == "" {
				response.Error(w, http.StatusUnauthorized, "token missing subject")
				return
			}

			ctx := context.WithValue(r.Context(), ContextUserID, sub)
			if wallet, _ := claims["wallet_id"].(string); wallet != "" {
				ctx = context.WithValue(ctx, ContextWalletID, wallet)
			}
			ctx = ledger.WithSessionToken(ctx, raw)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
