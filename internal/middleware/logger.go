package middleware

import (
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/guttosm/drawdownpulse/internal/logger"
)

// RequestLogger is a Gin middleware that writes one structured line per request.
//
// Behavior:
//   - 5xx responses are logged at error, 4xx at warn, everything else at info.
//   - The matched route is logged next to the raw path so dashboards can group by it.
//   - request_id is included when RequestID() ran earlier in the chain.
//
// Example log output:
//
//	{"level":"info","request_id":"123e4567-...","method":"GET","route":"/api/v1/drawdowns","status":200,"latency_ms":812,"message":"http_request"}
func RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		method := c.Request.Method
		path := c.Request.URL.Path

		c.Next()

		status := c.Writer.Status()
		rid, _ := c.Get(RequestIDKey)

		logger.L().WithLevel(levelFor(status)).
			Str("request_id", toString(rid)).
			Str("method", method).
			Str("path", path).
			Str("route", c.FullPath()).
			Int("status", status).
			Int64("latency_ms", time.Since(start).Milliseconds()).
			Str("client_ip", c.ClientIP()).
			Msg("http_request")
	}
}

func levelFor(status int) zerolog.Level {
	switch {
	case status >= http.StatusInternalServerError:
		return zerolog.ErrorLevel
	case status >= http.StatusBadRequest:
		return zerolog.WarnLevel
	default:
		return zerolog.InfoLevel
	}
}

func toString(v any) string {
	if v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return ""
}

// client is one IP's counter inside the current window.
type client struct {
	lastSeen time.Time
	count    int
}

var errRateLimited = errors.New("rate limit exceeded")

// In-memory store for rate limiting; per-instance only.
var (
	clients         = make(map[string]*client)
	window          = time.Minute
	limit           = 60
	rateLimiterLock sync.Mutex
)

// RateLimiter limits the number of requests per client IP.
//
// Behavior:
//   - Allows up to `limit` requests per `window` (default: 60 per minute).
//     The dashboard polls every refresh interval, so normal use stays far below it.
//   - Entries idle for more than a window are evicted on the next request.
//   - Exceeding the limit answers 429 with a dto.ErrorResponse body.
func RateLimiter() gin.HandlerFunc {
	return func(c *gin.Context) {
		ip := c.ClientIP()
		now := time.Now()

		rateLimiterLock.Lock()
		for k, v := range clients {
			if now.Sub(v.lastSeen) > window {
				delete(clients, k)
			}
		}
		cl, ok := clients[ip]
		if !ok {
			cl = &client{}
			clients[ip] = cl
		}
		cl.count++
		cl.lastSeen = now
		exceeded := cl.count > limit
		rateLimiterLock.Unlock()

		if exceeded {
			c.Header("Retry-After", "60")
			AbortWithError(c, http.StatusTooManyRequests, "Too many requests", errRateLimited)
			return
		}

		c.Next()
	}
}
