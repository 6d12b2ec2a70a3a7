package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"TASKMANAGER_BACK-END/internal/config"
	"TASKMANAGER_BACK-END/internal/models"
	"TASKMANAGER_BACK-END/internal/repository"
	"TASKMANAGER_BACK-END/internal/utils"
)

// UserFinder resolves a token subject to a stored user. Tokens are stateless,
// so this lookup is what catches subjects that no longer exist.
type UserFinder interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.User, error)
}

// GenerateToken signs a bearer token for the given user, valid for the
// configured access TTL.
func GenerateToken(userID uuid.UUID, cfg *config.JWTConfig) (string, error) {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   userID.String(),
		ExpiresAt: jwt.NewNumericDate(now.Add(cfg.AccessTokenTTL)),
		IssuedAt:  jwt.NewNumericDate(now),
		NotBefore: jwt.NewNumericDate(now),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(cfg.Secret))
}

// ValidateToken verifies signature and time bounds and returns the subject
// user id. Failures surface as jwt.ErrTokenMalformed,
// jwt.ErrTokenSignatureInvalid, or jwt.ErrTokenExpired so callers can log
// which of the three it was.
func ValidateToken(tokenString string, cfg *config.JWTConfig) (uuid.UUID, error) {
	claims := &jwt.RegisteredClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return []byte(cfg.Secret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))

	if err != nil {
		return uuid.Nil, err
	}
	if !token.Valid {
		return uuid.Nil, jwt.ErrTokenSignatureInvalid
	}

	subject, err := uuid.Parse(claims.Subject)
	if err != nil {
		return uuid.Nil, jwt.ErrTokenMalformed
	}
	return subject, nil
}

// AuthMiddleware validates the bearer token on protected routes, resolves it
// to a stored user, and attaches the identity to the request context.
// Every failure ends the request with the same 401; the reason is only logged.
func AuthMiddleware(next http.HandlerFunc, cfg *config.JWTConfig, users UserFinder) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			utils.WriteUnauthorizedResponse(w, "Authorization header required")
			return
		}

		// Extract token from "Bearer <token>"
		tokenParts := strings.Split(authHeader, " ")
		if len(tokenParts) != 2 || tokenParts[0] != "Bearer" {
			utils.WriteUnauthorizedResponse(w, "Invalid authorization header format")
			return
		}

		userID, err := ValidateToken(tokenParts[1], cfg)
		if err != nil {
			log.Warn().
				Str("reason", tokenFailureReason(err)).
				Str("path", r.URL.Path).
				Msg("rejected bearer token")
			utils.WriteUnauthorizedResponse(w, "Invalid token")
			return
		}

		user, err := users.FindByID(r.Context(), userID)
		if err != nil {
			// A store outage is not an authentication failure
			if !errors.Is(err, repository.ErrNotFound) {
				log.Error().Err(err).Str("path", r.URL.Path).Msg("user lookup failed")
				utils.WriteErrorResponse(w, http.StatusInternalServerError, "Internal error", "Failed to resolve user")
				return
			}
			log.Warn().
				Str("reason", "unknown_subject").
				Str("path", r.URL.Path).
				Msg("rejected bearer token")
			utils.WriteUnauthorizedResponse(w, "Invalid token")
			return
		}

		next.ServeHTTP(w, r.WithContext(utils.WithUserID(r.Context(), user.ID)))
	}
}

func tokenFailureReason(err error) string {
	switch {
	case errors.Is(err, jwt.ErrTokenMalformed):
		return "malformed"
	case errors.Is(err, jwt.ErrTokenSignatureInvalid):
		return "signature_invalid"
	case errors.Is(err, jwt.ErrTokenExpired):
		return "expired"
	default:
		return "invalid"
	}
}
