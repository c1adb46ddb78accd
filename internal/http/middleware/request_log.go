package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/maintenance-planner/internal/pkg/ctxutil"
	"github.com/yungbote/maintenance-planner/internal/pkg/logger"
)

// RequestLogger writes one access line per request. Health probes log at debug.
func RequestLogger(log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		if log == nil {
			return
		}

		route := c.FullPath()
		if route == "" {
			route = c.Request.URL.Path
		}
		status := c.Writer.Status()
		kv := []interface{}{
			"method", c.Request.Method,
			"route", route,
			"status", status,
			"bytes", c.Writer.Size(),
			"client_ip", c.ClientIP(),
			"duration_ms", time.Since(start).Milliseconds(),
		}
		if id := c.Param("id"); id != "" {
			kv = append(kv, "resource_id", id)
		}
		if info := ctxutil.GetRequestInfo(c.Request.Context()); info != nil {
			kv = append(kv, "request_id", info.RequestID)
			if info.TraceID != "" {
				kv = append(kv, "trace_id", info.TraceID)
			}
		}
		if last := c.Errors.Last(); last != nil {
			kv = append(kv, "error", last.Error())
		}

		switch {
		case route == "/healthcheck" && status < 400:
			log.Debug("HTTP request", kv...)
		case status >= 500:
			log.Error("HTTP request", kv...)
		case status >= 400:
			log.Warn("HTTP request", kv...)
		default:
			log.Info("HTTP request", kv...)
		}
	}
}
