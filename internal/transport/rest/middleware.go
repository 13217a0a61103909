package rest

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"bookable/backend/internal/domain"
	"bookable/backend/internal/service/scheduling"
)

const identityKey = "identity"

// RequireAuth validates the Bearer token and stores the caller's identity
// on the request context. Tokens are HS256-signed with sub, email, name and
// role claims.
func RequireAuth(secret string, log *slog.Logger) gin.HandlerFunc {
	if log == nil {
		log = slog.Default()
	}
	log = log.With(slog.String("component", "rest.auth"))

	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authorization header is required"})
			return
		}
		raw, ok := strings.CutPrefix(header, "Bearer ")
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authorization header must be a bearer token"})
			return
		}

		claims := jwt.MapClaims{}
		token, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (any, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, jwt.ErrSignatureInvalid
			}
			return []byte(secret), nil
		})
		if err != nil || !token.Valid {
			log.Warn("token rejected", slog.Any("err", err))
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}

		actor := scheduling.Actor{
			ID:    claimString(claims, "sub"),
			Email: claimString(claims, "email"),
			Name:  claimString(claims, "name"),
			Role:  domain.Role(claimString(claims, "role")),
		}
		if actor.Email == "" || !domain.ValidRole(actor.Role) {
			log.Warn("token missing identity claims")
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}

		c.Set(identityKey, actor)
		c.Next()
	}
}

func claimString(claims jwt.MapClaims, key string) string {
	v, ok := claims[key].(string)
	if !ok {
		return ""
	}
	return strings.TrimSpace(v)
}

// actorFrom returns the identity RequireAuth stored. Handlers are only
// mounted behind the middleware, so a missing identity is a wiring bug.
func actorFrom(c *gin.Context) scheduling.Actor {
	v, ok := c.Get(identityKey)
	if !ok {
		return scheduling.Actor{}
	}
	actor, _ := v.(scheduling.Actor)
	return actor
}

// RequestLogger emits one line per request after it completes.
func RequestLogger(log *slog.Logger) gin.HandlerFunc {
	if log == nil {
		log = slog.Default()
	}
	log = log.With(slog.String("component", "rest.access"))

	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		log.Info("request",
			slog.String("method", c.Request.Method),
			slog.String("path", c.Request.URL.Path),
			slog.Int("status", c.Writer.Status()),
			slog.Duration("duration", time.Since(start)),
		)
	}
}
