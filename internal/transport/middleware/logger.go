package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// FallbacksHeader carries the number of captions rendered with the default face.
const FallbacksHeader = "X-Font-Fallbacks"

func Logger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		// Process request
		c.Next()

		fields := logrus.Fields{
			"method":    c.Request.Method,
			"path":      c.Request.URL.Path,
			"status":    c.Writer.Status(),
			"duration":  time.Since(start),
			"bytes":     c.Writer.Size(),
			"client_ip": c.ClientIP(),
		}
		if id := c.Param("id"); id != "" {
			fields["job_id"] = id
		}
		fallbacks := 0
		if n, err := strconv.Atoi(c.Writer.Header().Get(FallbacksHeader)); err == nil {
			fields["font_fallbacks"] = n
			fallbacks = n
		}
		entry := logrus.WithFields(fields)

		if len(c.Errors) > 0 {
			entry = entry.WithField("errors", c.Errors.String())
		}

		switch {
		case c.Writer.Status() >= 500:
			entry.Error("Request failed")
		case c.Writer.Status() >= 400:
			entry.Warn("Request rejected")
		case fallbacks > 0:
			entry.Warn("Captions rendered with the default font")
		default:
			entry.Info("Request processed")
		}
	}
}
