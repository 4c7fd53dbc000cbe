package middleware

import (
	"context"
	"log/slog"
	"net/http"

	"hoops-server/internal/shared/config"
	"hoops-server/internal/shared/errors"
	"hoops-server/internal/shared/response"

	"github.com/golang-jwt/jwt/v5"
)

type contextKey string

const SessionContextKey contextKey = "session"

// SessionClaims is the token payload minted by the external auth
// collaborator. The server only verifies the signature; it never
// issues tokens itself.
type SessionClaims struct {
	UserID int `json:"user_id"`
	TeamID int `json:"team_id"`
	jwt.RegisteredClaims
}

// Session guards mutating simulation endpoints. Tokens arrive in the
// auth_token cookie or an Authorization bearer header.
func Session(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logger := slog.With(
			"middleware", "session",
			"method", r.Method,
			"path", r.URL.Path,
		)

		token := tokenFromRequest(r)
		if token == "" {
			response.Error(w, r, logger, errors.Unauthorized("authentication required"))
			return
		}

		claims, err := validateToken(token)
		if err != nil {
			response.Error(w, r, logger, errors.Unauthorized("invalid token"))
			return
		}

		ctx := context.WithValue(r.Context(), SessionContextKey, claims)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// SessionFromRequest returns the verified claims, or nil outside the
// Session middleware.
func SessionFromRequest(r *http.Request) *SessionClaims {
	if claims, ok := r.Context().Value(SessionContextKey).(*SessionClaims); ok {
		return claims
	}
	return nil
}

func tokenFromRequest(r *http.Request) string {
	if cookie, err := r.Cookie("auth_token"); err == nil && cookie.Value != "" {
		return cookie.Value
	}

	const bearerPrefix = "Bearer "
	auth := r.Header.Get("Authorization")
	if len(auth) > len(bearerPrefix) && auth[:len(bearerPrefix)] == bearerPrefix {
		return auth[len(bearerPrefix):]
	}

	return ""
}

func validateToken(tokenStr string) (*SessionClaims, error) {
	claims := &SessionClaims{}

	token, err := jwt.ParseWithClaims(tokenStr, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.Unauthorized("unexpected signing method")
		}
		return []byte(config.GlobalConfig.Auth.JWTSecret), nil
	})
	if err != nil {
		return nil, err
	}

	if !token.Valid {
		return nil, errors.Unauthorized("token is not valid")
	}

	return claims, nil
}
