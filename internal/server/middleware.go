package server

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"auction-escrow/internal/auth"
	"auction-escrow/services/auction/helpers"
	"auction-escrow/utils"

	"github.com/gin-gonic/gin"
)

var errMissingBearer = errors.New("missing bearer token")

// RequestLoggerMiddleware logs incoming requests with timing
func RequestLoggerMiddleware(c *gin.Context) {
	start := time.Now()

	c.Next() // process request

	fields := map[string]any{
		"method":  c.Request.Method,
		"path":    c.Request.URL.Path,
		"status":  c.Writer.Status(),
		"latency": time.Since(start).String(),
	}
	if v, ok := c.Get(helpers.CallerKey); ok {
		fields["caller"] = v
	}
	utils.Info("HTTP Request", fields)
}

// AuthMiddleware verifies the bearer token and stores the caller identity
func AuthMiddleware(secret []byte) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString, ok := strings.CutPrefix(c.GetHeader("Authorization"), "Bearer ")
		if !ok || strings.TrimSpace(tokenString) == "" {
			utils.JSONError(c, http.StatusUnauthorized, errMissingBearer, "authorization required")
			c.Abort()
			return
		}

		claims, err := auth.ParseToken(secret, strings.TrimSpace(tokenString))
		if err != nil {
			utils.JSONError(c, http.StatusUnauthorized, err, "invalid or expired token")
			utils.Warn("AuthMiddleware: rejected token", map[string]any{
				"path":  c.Request.URL.Path,
				"error": err.Error(),
			})
			c.Abort()
			return
		}

		helpers.SetCaller(c, claims.Identity())
		c.Next()
	}
}
