package httpapi

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"github.com/abhisek/learnpath/internal/logger"
)

const userIDKey = "userID"

// Claims are the bearer token claims. The user is taken from user_id,
// falling back to the standard subject.
type Claims struct {
	UserID string `json:"user_id,omitempty"`
	jwt.RegisteredClaims
}

func (c *Claims) user() string {
	if c.UserID != "" {
		return c.UserID
	}
	return c.Subject
}

// RequireAuth verifies the HS256 bearer token and stores the user id on
// the gin context.
func RequireAuth(secret []byte, log *logger.Logger) gin.HandlerFunc {
	parser := jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	return func(c *gin.Context) {
		raw := bearerToken(c.GetHeader("Authorization"))
		if raw == "" {
			respondError(c, http.StatusUnauthorized, "unauthorized", errors.New("access token required"))
			c.Abort()
			return
		}

		claims := &Claims{}
		_, err := parser.ParseWithClaims(raw, claims, func(*jwt.Token) (any, error) {
			return secret, nil
		})
		if err != nil || claims.user() == "" {
			log.Debug("rejected token", "error", err)
			respondError(c, http.StatusUnauthorized, "unauthorized", errors.New("invalid or expired token"))
			c.Abort()
			return
		}
		c.Set(userIDKey, claims.user())
		c.Next()
	}
}

func bearerToken(header string) string {
	if len(header) > 7 && strings.EqualFold(header[:7], "Bearer ") {
		return strings.TrimSpace(header[7:])
	}
	return ""
}

func currentUser(c *gin.Context) string {
	return c.GetString(userIDKey)
}
