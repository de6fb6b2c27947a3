package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/kamilakurskaa/TrustFlow/internal/auth"
	"github.com/kamilakurskaa/TrustFlow/internal/domain"
	"github.com/kamilakurskaa/TrustFlow/internal/logger"
	"github.com/kamilakurskaa/TrustFlow/internal/store"
	"github.com/kamilakurskaa/TrustFlow/internal/store/schema"
)

// contextKey is a custom type for context keys to avoid collisions
type contextKey = string

const (
	AUTH_USER_KEY    contextKey = "auth_user"
	AUTH_SUBJECT_KEY contextKey = "auth_subject"
)

// Auth returns a gin middleware that resolves the bearer token and loads the
// authenticated user. Requests with a valid token whose subject no longer
// exists or is deactivated are rejected.
func Auth(issuer *auth.TokenIssuer, s store.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := bearerToken(c.GetHeader("Authorization"))
		if err != nil {
			abortUnauthorized(c, "Authentication failed", err)
			return
		}

		userID, err := issuer.Resolve(token)
		if err != nil {
			abortUnauthorized(c, "Authentication failed", err)
			return
		}

		user, err := s.GetUserByID(c.Request.Context(), userID)
		if err != nil {
			logger.Error(err, zap.String("path", c.Request.URL.Path))
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
				"error": gin.H{
					"code":    "internal_error",
					"message": "Failed to authenticate request",
				},
			})
			return
		}
		if user == nil {
			abortUnauthorized(c, "Authentication failed", domain.ErrUnknownSubject)
			return
		}
		if !user.IsActive {
			abortUnauthorized(c, "Account is deactivated", domain.ErrInactiveUser)
			return
		}

		c.Set(AUTH_USER_KEY, user)
		c.Set(AUTH_SUBJECT_KEY, userID)

		c.Next()
	}
}

// CurrentUser returns the authenticated user stored by the Auth middleware
func CurrentUser(c *gin.Context) *schema.User {
	value, ok := c.Get(AUTH_USER_KEY)
	if !ok {
		return nil
	}
	user, ok := value.(*schema.User)
	if !ok {
		return nil
	}
	return user
}

func bearerToken(header string) (string, error) {
	if header == "" {
		return "", errors.New("missing Authorization header")
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return "", errors.New("invalid Authorization header format")
	}
	return parts[1], nil
}

func abortUnauthorized(c *gin.Context, message string, err error) {
	logger.Warn("Authentication failed",
		zap.Error(err),
		zap.String("path", c.Request.URL.Path),
		zap.String("client_ip", c.ClientIP()),
	)
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
		"error": gin.H{
			"code":    "unauthorized",
			"message": message,
			"details": err.Error(),
		},
	})
}
