// Package logging writes single-line JSON logs and request logs for gin.
package logging

import (
	"encoding/json"
	"log"
	"net/http"
	"os"
	"strings"
	"sync/atomic"
	"time"

	"github.com/gin-gonic/gin"
)

var levels = map[string]int32{
	"debug": 0,
	"info":  1,
	"warn":  2,
	"error": 3,
}

var minLevel atomic.Int32

// ContextStaffEmail is the gin context key holding the staff label. The auth
// middleware sets it and the request log reports it.
const ContextStaffEmail = "staff_email"

func init() {
	log.SetOutput(os.Stdout)
	log.SetFlags(0)
	minLevel.Store(levels["info"])
}

// SetLevel sets the lowest level that is written. Unknown names fall back to info.
func SetLevel(level string) {
	l, ok := levels[strings.ToLower(strings.TrimSpace(level))]
	if !ok {
		l = levels["info"]
	}
	minLevel.Store(l)
}

// Enabled reports whether messages at level are written
func Enabled(level string) bool {
	l, ok := levels[level]
	if !ok {
		return true
	}
	return l >= minLevel.Load()
}

// LogKV logs a structured JSON line with a level, message, and arbitrary fields.
func LogKV(level, msg string, fields map[string]interface{}) {
	if !Enabled(level) {
		return
	}
	entry := map[string]interface{}{
		"level": level,
		"ts":    time.Now().UTC().Format(time.RFC3339Nano),
		"msg":   msg,
	}
	for k, v := range fields {
		entry[k] = v
	}
	b, _ := json.Marshal(entry)
	log.Println(string(b))
}

// JSONLogger returns a Gin middleware that logs requests as single-line JSON.
func JSONLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		query := c.Request.URL.RawQuery

		c.Next()

		status := c.Writer.Status()
		level := "info"
		if status >= http.StatusInternalServerError || len(c.Errors) > 0 {
			level = "error"
		} else if status >= http.StatusBadRequest {
			level = "warn"
		}

		fields := map[string]interface{}{
			"method":     c.Request.Method,
			"path":       path,
			"query":      query,
			"status":     status,
			"latency_ms": float64(time.Since(start).Microseconds()) / 1000.0,
			"client_ip":  c.ClientIP(),
			"user_agent": c.Request.UserAgent(),
			"bytes_out":  c.Writer.Size(),
		}
		if staff, ok := c.Get(ContextStaffEmail); ok {
			fields["staff"] = staff
		}
		if len(c.Errors) > 0 {
			fields["error"] = c.Errors.String()
		}

		LogKV(level, "request", fields)
	}
}
