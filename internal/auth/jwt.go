package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/nvaldr/shopstack-be/internal/models"
)

const (
	// SessionCookie is the name of the httpOnly cookie carrying the token.
	SessionCookie = "jwt"

	minSecretBytes = 32

	shortLifetime    = 24 * time.Hour
	extendedLifetime = 7 * 24 * time.Hour
)

var (
	jwtKey     []byte
	jwtKeyErr  error
	jwtKeyOnce sync.Once
)

// The secret is read lazily so tests can set JWT_SECRET before first use.
func secret() ([]byte, error) {
	jwtKeyOnce.Do(func() {
		raw := strings.TrimSpace(os.Getenv("JWT_SECRET"))
		if raw == "" {
			jwtKeyErr = errors.New("JWT_SECRET is required")
			return
		}
		if len(raw) < minSecretBytes {
			jwtKeyErr = fmt.Errorf("JWT_SECRET must be at least %d characters", minSecretBytes)
			return
		}
		jwtKey = []byte(raw)
	})
	if jwtKeyErr != nil {
		return nil, jwtKeyErr
	}
	return jwtKey, nil
}

// Claims defines the JWT claims structure.
type Claims struct {
	UserID   string `json:"userId"`
	Username string `json:"username"`
	jwt.RegisteredClaims
}

// UserClaimsKey is the context key for user claims.
type contextKey string

const UserClaimsKey = contextKey("userClaims")

// GenerateJWT creates a signed token for a user. The token lives 24 hours, or
// 7 days when rememberMe is set. The second return value is the lifetime label
// exposed to clients ("24h" or "7d").
func GenerateJWT(user models.User, rememberMe bool) (string, string, error) {
	key, err := secret()
	if err != nil {
		return "", "", err
	}

	lifetime, label := shortLifetime, "24h"
	if rememberMe {
		lifetime, label = extendedLifetime, "7d"
	}

	now := time.Now()
	claims := &Claims{
		UserID:   user.ID,
		Username: user.Username,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(lifetime)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(key)
	if err != nil {
		return "", "", err
	}
	return signed, label, nil
}

// ValidateJWT parses and validates a JWT string. Expired tokens are rejected,
// including tokens at exactly their expiry instant.
func ValidateJWT(tokenStr string) (*Claims, error) {
	key, err := secret()
	if err != nil {
		return nil, err
	}

	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(token *jwt.Token) (interface{}, error) {
		if token.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return key, nil
	})
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, errors.New("invalid token")
	}
	return claims, nil
}

// TokenFromRequest extracts the session token from the Authorization header,
// falling back to the session cookie. Returns "" when neither is present.
func TokenFromRequest(r *http.Request) string {
	authHeader := r.Header.Get("Authorization")
	if authHeader != "" {
		parts := strings.Split(authHeader, "Bearer ")
		if len(parts) == 2 {
			return strings.TrimSpace(parts[1])
		}
	}
	if cookie, err := r.Cookie(SessionCookie); err == nil {
		return cookie.Value
	}
	return ""
}

// JWTMiddleware creates a middleware for protecting routes. It fails closed:
// missing, invalid or expired tokens get a 401.
func JWTMiddleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokenStr := TokenFromRequest(r)
			if tokenStr == "" {
				unauthorized(w, "Missing auth token")
				return
			}

			claims, err := ValidateJWT(tokenStr)
			if err != nil {
				unauthorized(w, "Invalid auth token")
				return
			}

			ctx := context.WithValue(r.Context(), UserClaimsKey, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func unauthorized(w http.ResponseWriter, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	fmt.Fprintf(w, `{"statusCode":401,"message":[%q],"error":"Unauthorized"}`, msg)
}
