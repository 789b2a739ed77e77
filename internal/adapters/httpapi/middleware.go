package httpapi

import (
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"partpulse/pkg/domain"
)

// Header names carrying caller identity and correlation.
const (
	HeaderActorID   = "X-Actor-ID"
	HeaderActorRole = "X-Actor-Role"
	HeaderRequestID = "X-Request-ID"
)

const (
	ctxRequestID = "request_id"
	ctxActorID   = "actor_id"
	ctxActorRole = "actor_role"
)

// accessLog writes one zap line per request, escalating on error statuses.
func accessLog(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		query := c.Request.URL.RawQuery

		c.Next()

		status := c.Writer.Status()
		fields := []zap.Field{
			zap.Int("status", status),
			zap.String("method", c.Request.Method),
			zap.String("path", path),
			zap.String("query", query),
			zap.String("ip", c.ClientIP()),
			zap.Duration("latency", time.Since(start)),
			zap.String("request_id", c.GetString(ctxRequestID)),
		}
		if actor := c.GetString(ctxActorID); actor != "" {
			fields = append(fields, zap.String("actor", actor))
		}

		switch {
		case status >= 500:
			logger.Error("server error", fields...)
		case status >= 400:
			logger.Warn("client error", fields...)
		default:
			logger.Info("request", fields...)
		}
	}
}

// requestID propagates X-Request-ID or mints one.
func requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(HeaderRequestID)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(ctxRequestID, id)
		c.Writer.Header().Set(HeaderRequestID, id)
		c.Next()
	}
}

// actor copies the identity headers into the context. Handlers decide
// whether they are required.
func actor() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(ctxActorID, strings.TrimSpace(c.GetHeader(HeaderActorID)))
		c.Set(ctxActorRole, strings.ToLower(strings.TrimSpace(c.GetHeader(HeaderActorRole))))
		c.Next()
	}
}

// requireActor aborts mutating requests that carry no X-Actor-ID.
func requireActor() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetString(ctxActorID) == "" {
			badRequest(c, CodeMissingActor, HeaderActorID+" header is required")
			return
		}
		c.Next()
	}
}

func actorID(c *gin.Context) string { return c.GetString(ctxActorID) }

func actorRole(c *gin.Context) domain.Role { return domain.Role(c.GetString(ctxActorRole)) }

// corsMiddleware allows every origin when origins is empty or contains "*".
func corsMiddleware(origins []string) gin.HandlerFunc {
	cfg := cors.DefaultConfig()
	allowAll := len(origins) == 0
	for _, o := range origins {
		if o == "*" {
			allowAll = true
		}
	}
	if allowAll {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = origins
	}
	cfg.AddAllowHeaders(HeaderActorID, HeaderActorRole, HeaderRequestID, "Authorization")
	cfg.AddExposeHeaders(HeaderRequestID, "Content-Length")
	return cors.New(cfg)
}
