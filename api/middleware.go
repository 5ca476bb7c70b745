package api

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Domenick1991/eventbooking/internal/domain"
)

const (
	RequestIDHeader = "X-Request-ID"
	requestIDKey    = "request_id"
	sessionKey      = "session"
)

type SessionParser interface {
	ParseBearer(header string) (domain.Session, error)
}

// RequestID keeps the caller's request id or assigns a new one.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader(RequestIDHeader)
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Set(requestIDKey, requestID)
		c.Header(RequestIDHeader, requestID)
		c.Next()
	}
}

func Logger(log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path

		c.Next()

		status := c.Writer.Status()
		fields := []zap.Field{
			zap.String("request_id", c.GetString(requestIDKey)),
			zap.Int("status", status),
			zap.String("method", c.Request.Method),
			zap.String("path", path),
			zap.String("ip", c.ClientIP()),
			zap.Duration("latency", time.Since(start)),
		}
		if len(c.Errors) > 0 {
			fields = append(fields, zap.String("errors", c.Errors.String()))
		}

		switch {
		case status >= 500:
			log.Error("server error", fields...)
		case status >= 400:
			log.Warn("client error", fields...)
		default:
			log.Info("request completed", fields...)
		}
	}
}

// Authenticate resolves the bearer token into a session for the handlers below it.
func Authenticate(tokens SessionParser) gin.HandlerFunc {
	return func(c *gin.Context) {
		session, err := tokens.ParseBearer(c.GetHeader("Authorization"))
		if err != nil {
			writeError(c, err)
			return
		}
		c.Set(sessionKey, session)
		c.Next()
	}
}

func sessionFrom(c *gin.Context) domain.Session {
	if v, ok := c.Get(sessionKey); ok {
		if session, ok := v.(domain.Session); ok {
			return session
		}
	}
	return domain.Session{}
}
