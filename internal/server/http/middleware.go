package http

import (
	"errors"
	"net/http"
	"time"

	"github.com/dmitrijs2005/gophauth/internal/api"
	"github.com/dmitrijs2005/gophauth/internal/common"
	"github.com/dmitrijs2005/gophauth/internal/server/auth"
	"github.com/gin-gonic/gin"
)

// requireScopes admits requests whose bearer token carries every scope in
// required and attaches the caller's identity to the request context.
func (s *HTTPServer) requireScopes(required ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()

		identity, err := s.guard.Check(auth.BearerToken(c.GetHeader(common.AuthorizationHeaderName)), required)
		if err != nil {
			// the cause stays in the log, callers always get the same answer
			if errors.Is(err, common.ErrTokenExpired) {
				s.logger.Info(ctx, "access token expired", "path", c.FullPath())
			} else {
				s.logger.Warn(ctx, "access denied", "path", c.FullPath(), "client_ip", c.ClientIP(), "error", err)
			}
			c.AbortWithStatusJSON(http.StatusUnauthorized, api.ErrorResponse{Error: common.ErrorUnauthorized.Error()})
			return
		}

		c.Request = c.Request.WithContext(auth.WithIdentity(ctx, identity))
		c.Next()
	}
}

func (s *HTTPServer) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.logger.Debug(c.Request.Context(), "request handled",
			"method", c.Request.Method,
			"path", c.FullPath(),
			"status", c.Writer.Status(),
			"duration", time.Since(start),
		)
	}
}
