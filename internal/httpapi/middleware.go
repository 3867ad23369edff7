package httpapi

import (
	"errors"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/nhle/siteledger/internal/auth"
	"github.com/nhle/siteledger/internal/logger"
	"github.com/nhle/siteledger/internal/model"
)

const sessionKey = "session"

// requireAuth rejects requests while no login flag is present.
func (s *Server) requireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		sess, err := s.gate.Current(c.Request.Context())
		if err != nil {
			if !errors.Is(err, model.ErrNotAuthenticated) {
				s.log.Warn("reading login flag", "error", err)
			}
			s.respondError(c, model.ErrNotAuthenticated)
			return
		}
		c.Set(sessionKey, sess)
		c.Next()
	}
}

func sessionFrom(c *gin.Context) auth.Session {
	v, _ := c.Get(sessionKey)
	sess, _ := v.(auth.Session)
	return sess
}

func requestLogger(log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		path := c.FullPath()
		if path == "" {
			path = c.Request.URL.Path
		}
		fields := []interface{}{
			"method", strings.ToUpper(c.Request.Method),
			"path", path,
			"status", status,
			"duration_ms", time.Since(start).Milliseconds(),
		}

		switch {
		case status >= 500:
			log.Error("HTTP request", fields...)
		case status >= 400:
			log.Warn("HTTP request", fields...)
		default:
			log.Debug("HTTP request", fields...)
		}
	}
}
