package api

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"mealplanner/internal/platform/logger"
	"mealplanner/internal/store"
)

const identityKey = "identity"

// Claims is the session token issued by the identity bridge.
type Claims struct {
	Email   string `json:"email"`
	Name    string `json:"name,omitempty"`
	Picture string `json:"picture,omitempty"`
	jwt.RegisteredClaims
}

// LoginRecorder records sign-ins for identified requests.
type LoginRecorder interface {
	GetUser(ctx context.Context, userID string) (*store.User, error)
	RecordLogin(ctx context.Context, id store.Identity) (*store.User, error)
}

// ParseSessionToken validates an HS256 session token and returns its claims.
func ParseSessionToken(tokenString string, secret []byte) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, errors.New("invalid session token")
	}
	if claims.Subject == "" || claims.Email == "" {
		return nil, errors.New("session token is missing sub or email")
	}
	return claims, nil
}

// Identify attaches the caller's identity when a valid bearer token is
// present. The first request of a new session records the login. Requests
// without a usable token continue anonymously.
func Identify(secret []byte, users LoginRecorder, log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := bearerToken(c)
		if tokenString == "" {
			c.Next()
			return
		}

		claims, err := ParseSessionToken(tokenString, secret)
		if err != nil {
			log.Warn("Ignoring session token", "error", err)
			c.Next()
			return
		}

		id := store.Identity{ID: claims.Subject, Email: claims.Email, Name: claims.Name, Picture: claims.Picture}
		if err := recordLogin(c.Request.Context(), users, id, claims.IssuedAt); err != nil {
			log.Error("Failed to record login", "user_id", id.ID, "error", err)
		}

		c.Set(identityKey, id)
		c.Next()
	}
}

func recordLogin(ctx context.Context, users LoginRecorder, id store.Identity, issuedAt *jwt.NumericDate) error {
	user, err := users.GetUser(ctx, id.ID)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		return err
	}
	if user != nil && (issuedAt == nil || !issuedAt.Time.After(user.LastLoginAt)) {
		return nil
	}
	_, err = users.RecordLogin(ctx, id)
	return err
}

// RequireAuth rejects requests that Identify did not authenticate.
func RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := identity(c); !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		c.Next()
	}
}

func identity(c *gin.Context) (store.Identity, bool) {
	v, ok := c.Get(identityKey)
	if !ok {
		return store.Identity{}, false
	}
	id, ok := v.(store.Identity)
	return id, ok
}

func bearerToken(c *gin.Context) string {
	authHeader := c.GetHeader("Authorization")
	if len(authHeader) > 7 && strings.EqualFold(authHeader[:7], "Bearer ") {
		return strings.TrimSpace(authHeader[7:])
	}
	return ""
}

// RequestLogger logs one line per request at a level chosen by status.
func RequestLogger(log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		path := c.FullPath()
		if path == "" {
			path = c.Request.URL.Path
		}
		fields := []interface{}{
			"method", c.Request.Method,
			"path", path,
			"status", status,
			"duration_ms", time.Since(start).Milliseconds(),
		}
		if id, ok := identity(c); ok {
			fields = append(fields, "user_id", id.ID)
		}
		if len(c.Errors) > 0 {
			fields = append(fields, "error", c.Errors.String())
		}

		switch {
		case status >= 500:
			log.Error("HTTP request", fields...)
		case status >= 400:
			log.Warn("HTTP request", fields...)
		default:
			log.Info("HTTP request", fields...)
		}
	}
}
