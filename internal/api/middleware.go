package api

import (
	"net/http"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rongwang/stonks/internal/models"
	"github.com/rongwang/stonks/internal/utils"
)

// Context keys set by the middleware.
const (
	ctxUserID    = "userId"
	ctxJWTSecret = "jwtSecret"
	ctxLogger    = "logger"

	RequestIDHeader = "X-Request-Id"
)

// SecretMiddleware makes the token secret available to AuthMiddleware.
func SecretMiddleware(secret []byte) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(ctxJWTSecret, secret)
		c.Next()
	}
}

// RequestIDMiddleware tags every request with an id, taken from the
// X-Request-Id header or generated, and logs the request once it completes.
func RequestIDMiddleware(logger *utils.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader(RequestIDHeader)
		if requestID == "" {
			requestID = uuid.New().String()
		}
		c.Header(RequestIDHeader, requestID)

		reqLogger := logger.With("request_id", requestID)
		c.Set(ctxLogger, reqLogger)

		start := time.Now()
		c.Next()

		reqLogger.Info("%s %s -> %d in %s", c.Request.Method, c.FullPath(), c.Writer.Status(), time.Since(start))
	}
}

// AuthMiddleware returns a Gin middleware for authentication
func AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		// Get the JWT token from the Authorization header
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			unauthorized(c, "Authentication required")
			return
		}

		// Check if the Authorization header starts with "Bearer "
		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			unauthorized(c, "Invalid token format")
			return
		}

		secret, ok := c.Get(ctxJWTSecret)
		if !ok {
			c.AbortWithStatusJSON(http.StatusInternalServerError, models.ErrorResponse{
				Status:  "error",
				Code:    "INTERNAL",
				Message: "authentication is not configured",
			})
			return
		}

		token, err := jwt.Parse(parts[1], func(token *jwt.Token) (interface{}, error) {
			// Validate the signing method
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, errors.New("invalid signing method")
			}
			return secret, nil
		})
		if err != nil || !token.Valid {
			unauthorized(c, "Invalid token")
			return
		}

		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			unauthorized(c, "Invalid token claims")
			return
		}

		// sub carries the unsigned decimal user id
		sub, err := claims.GetSubject()
		if err != nil || sub == "" {
			unauthorized(c, "Invalid user ID in token")
			return
		}
		userID, err := models.ParseID(sub)
		if err != nil {
			unauthorized(c, "Invalid user ID in token")
			return
		}

		c.Set(ctxUserID, userID)
		c.Next()
	}
}

// IssueToken signs a token for userID, valid for ttl.
func IssueToken(secret []byte, userID models.ID, ttl time.Duration) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": userID.String(),
		"exp": now.Add(ttl).Unix(),
		"iat": now.Unix(),
	})
	return token.SignedString(secret)
}

func unauthorized(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, models.ErrorResponse{
		Status:  "error",
		Code:    "UNAUTHORIZED",
		Message: message,
	})
}

func userIDFrom(c *gin.Context) models.ID {
	return c.MustGet(ctxUserID).(models.ID)
}

func loggerFrom(c *gin.Context, fallback *utils.Logger) *utils.Logger {
	if v, ok := c.Get(ctxLogger); ok {
		if l, ok := v.(*utils.Logger); ok {
			return l
		}
	}
	return fallback
}
