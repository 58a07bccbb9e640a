package stubserver

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/psiclinic/clinic-cli/pkg/httputil"
	"github.com/psiclinic/clinic-cli/pkg/logger"
)

const headerXRequestID = "X-Request-ID"

// requestID propagates the caller's request id, minting one if absent.
func requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		rid := c.GetHeader(headerXRequestID)
		if rid == "" {
			rid = uuid.New().String()
		}
		c.Set("request_id", rid)
		c.Header(headerXRequestID, rid)
		c.Next()
	}
}

// requestLogger logs each request after it completes.
func requestLogger(log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		c.Next()

		log.Info("request",
			"method", c.Request.Method,
			"path", path,
			"status", c.Writer.Status(),
			"duration_ms", time.Since(start).Milliseconds(),
			"request_id", c.GetString("request_id"),
		)
	}
}

// rateLimit applies a global token-bucket limit.
func rateLimit(limit rate.Limit, burst int) gin.HandlerFunc {
	limiter := rate.NewLimiter(limit, burst)
	return func(c *gin.Context) {
		if !limiter.Allow() {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, httputil.Response{
				Success: false,
				Error:   &httputil.Error{Code: http.StatusTooManyRequests, Message: "rate limit exceeded"},
			})
			return
		}
		c.Next()
	}
}
