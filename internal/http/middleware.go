package http

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/mrlokans/bookmemo/internal/entities"
)

const (
	// HeaderUserID carries the caller's uid, set by the authenticating proxy.
	HeaderUserID       = "X-User-ID"
	HeaderUserNickname = "X-User-Nickname"
	HeaderUserEmail    = "X-User-Email"
	HeaderRequestID    = "X-Request-ID"

	contextKeyUser      = "user"
	contextKeyUserID    = "uid"
	contextKeyRequestID = "request_id"
	contextKeyLogger    = "logger"
)

// RequestLogger tags each request with an id and logs it when done.
func RequestLogger(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		requestID := c.GetHeader(HeaderRequestID)
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Header(HeaderRequestID, requestID)
		c.Set(contextKeyRequestID, requestID)

		reqLogger := logger.With(zap.String("request_id", requestID))
		c.Set(contextKeyLogger, reqLogger)

		c.Next()

		fields := []zap.Field{
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
			zap.String("client_ip", c.ClientIP()),
		}
		if uid := c.GetString(contextKeyUserID); uid != "" {
			fields = append(fields, zap.String("uid", uid))
		}

		switch status := c.Writer.Status(); {
		case status >= 500:
			reqLogger.Error("request", fields...)
		case status >= 400:
			reqLogger.Warn("request", fields...)
		default:
			reqLogger.Info("request", fields...)
		}
	}
}

// requestLogger returns the logger set by RequestLogger, or a no-op logger.
func requestLogger(c *gin.Context) *zap.Logger {
	if v, ok := c.Get(contextKeyLogger); ok {
		if l, ok := v.(*zap.Logger); ok {
			return l
		}
	}
	return zap.NewNop()
}

// RequireUser rejects requests without an X-User-ID header. The optional
// nickname and email headers are carried along untouched.
func RequireUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		uid := strings.TrimSpace(c.GetHeader(HeaderUserID))
		if uid == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, ErrorResponse{Error: "missing " + HeaderUserID + " header", Code: "unauthenticated"})
			return
		}
		c.Set(contextKeyUser, entities.UserInfo{
			UID:      uid,
			Nickname: c.GetHeader(HeaderUserNickname),
			Email:    c.GetHeader(HeaderUserEmail),
		})
		c.Set(contextKeyUserID, uid)
		c.Next()
	}
}

// GetUserInfo returns the identity stored by RequireUser.
func GetUserInfo(c *gin.Context) (entities.UserInfo, bool) {
	v, ok := c.Get(contextKeyUser)
	if !ok {
		return entities.UserInfo{}, false
	}
	user, ok := v.(entities.UserInfo)
	return user, ok
}

// GetUserID returns the uid stored by RequireUser.
func GetUserID(c *gin.Context) string {
	return c.GetString(contextKeyUserID)
}
