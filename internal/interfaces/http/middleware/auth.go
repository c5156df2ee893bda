package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rentalcore/backend/internal/infrastructure/auth"
	"github.com/rentalcore/backend/internal/infrastructure/logger"
	"go.uber.org/zap"
)

// Auth context keys and headers
const (
	JWTClaimsKey  = "jwt_claims"
	ActorKey      = "actor"
	AuthHeaderKey = "Authorization"
	BearerPrefix  = "Bearer "
	// HeaderActor names the caller when bearer tokens are disabled
	HeaderActor = "X-Actor"
)

// maxActorLength bounds the X-Actor header
const maxActorLength = 100

// TokenVerifier validates a bearer token. auth.JWTService implements it.
type TokenVerifier interface {
	Verify(token string) (*auth.Claims, error)
}

// AuthConfig configures ActorAuth
type AuthConfig struct {
	// Verifier checks bearer tokens. Nil disables token checks and the
	// caller is taken from X-Actor, falling back to the system actor.
	Verifier         TokenVerifier
	SkipPaths        []string
	SkipPathPrefixes []string
	Logger           *zap.Logger
}

// DefaultAuthConfig skips health checks and the API docs
func DefaultAuthConfig(verifier TokenVerifier, log *zap.Logger) AuthConfig {
	return AuthConfig{
		Verifier:         verifier,
		SkipPaths:        []string{"/health", "/api/v1/health"},
		SkipPathPrefixes: []string{"/swagger"},
		Logger:           log,
	}
}

// ActorAuth resolves the acting user of a request and stores it in the
// request context, where services stamp it on every change
func ActorAuth(cfg AuthConfig) gin.HandlerFunc {
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	return func(c *gin.Context) {
		if skipped(c.Request.URL.Path, cfg.SkipPaths, cfg.SkipPathPrefixes) {
			c.Next()
			return
		}

		if cfg.Verifier == nil {
			if actor := strings.TrimSpace(c.GetHeader(HeaderActor)); actor != "" && len(actor) <= maxActorLength {
				setActor(c, actor)
			}
			c.Next()
			return
		}

		header := c.GetHeader(AuthHeaderKey)
		if header == "" {
			authFailed(c, cfg, auth.ErrInvalidToken, "Missing authorization header")
			return
		}
		token, ok := strings.CutPrefix(header, BearerPrefix)
		if !ok || token == "" {
			authFailed(c, cfg, auth.ErrInvalidToken, "Invalid authorization header format")
			return
		}

		claims, err := cfg.Verifier.Verify(token)
		if err != nil {
			authFailed(c, cfg, err, "Token validation failed")
			return
		}

		c.Set(JWTClaimsKey, claims)
		setActor(c, claims.Actor())
		c.Next()
	}
}

func setActor(c *gin.Context, actor string) {
	c.Set(ActorKey, actor)
	ctx := c.Request.Context()
	ctx, _ = logger.WithActor(ctx, logger.FromContext(ctx), actor)
	c.Request = c.Request.WithContext(ctx)
}

func authFailed(c *gin.Context, cfg AuthConfig, err error, reason string) {
	cfg.Logger.Warn("Authentication failed",
		zap.Error(err),
		zap.String("reason", reason),
		zap.String("path", c.Request.URL.Path),
	)

	code, message := "UNAUTHORIZED", "Authentication required"
	switch {
	case errors.Is(err, auth.ErrExpiredToken):
		code, message = "TOKEN_EXPIRED", "Token has expired"
	case errors.Is(err, auth.ErrTokenNotYetValid):
		code, message = "TOKEN_NOT_VALID", "Token is not yet valid"
	case errors.Is(err, auth.ErrMissingSubject):
		code, message = "INVALID_TOKEN", "Token has no subject"
	case errors.Is(err, auth.ErrInvalidToken):
		code, message = "INVALID_TOKEN", "Invalid token"
	}
	abortWithError(c, http.StatusUnauthorized, code, message)
}

// GetJWTClaims returns the verified claims, or nil when the request was not
// authenticated with a token
func GetJWTClaims(c *gin.Context) *auth.Claims {
	if v, ok := c.Get(JWTClaimsKey); ok {
		if claims, ok := v.(*auth.Claims); ok {
			return claims
		}
	}
	return nil
}

// GetActor returns the acting user set by ActorAuth
func GetActor(c *gin.Context) string {
	return c.GetString(ActorKey)
}

func skipped(path string, paths, prefixes []string) bool {
	for _, p := range paths {
		if path == p {
			return true
		}
	}
	for _, p := range prefixes {
		if strings.HasPrefix(path, p) {
			return true
		}
	}
	return false
}
