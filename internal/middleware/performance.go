package middleware

import (
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/emrealmaoglu/trailium/internal/logger"
)

// SlowRequestThreshold is the latency above which a request is logged as slow.
const SlowRequestThreshold = 500 * time.Millisecond

// PerformanceMiddleware sets X-Response-Time on every response and warns
// about slow requests.
func PerformanceMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		// The header must be written before the body, so hook the first write.
		tw := &timingWriter{ResponseWriter: c.Writer, start: start}
		c.Writer = tw

		c.Next()

		elapsed := time.Since(start)
		tw.stamp()

		if elapsed > SlowRequestThreshold {
			logger.Log.Warn("slow request",
				zap.String("method", c.Request.Method),
				zap.String("path", c.Request.URL.Path),
				logger.WithDuration(elapsed),
				logger.WithStatus(c.Writer.Status()),
			)
		}
	}
}

func formatResponseTime(d time.Duration) string {
	return fmt.Sprintf("%.3fs", d.Seconds())
}

type timingWriter struct {
	gin.ResponseWriter
	start   time.Time
	stamped bool
}

func (w *timingWriter) stamp() {
	if w.stamped || w.ResponseWriter.Written() {
		return
	}
	w.stamped = true
	w.Header().Set("X-Response-Time", formatResponseTime(time.Since(w.start)))
}

func (w *timingWriter) WriteHeader(code int) {
	w.stamp()
	w.ResponseWriter.WriteHeader(code)
}

func (w *timingWriter) WriteHeaderNow() {
	w.stamp()
	w.ResponseWriter.WriteHeaderNow()
}

func (w *timingWriter) Write(data []byte) (int, error) {
	w.stamp()
	return w.ResponseWriter.Write(data)
}

func (w *timingWriter) WriteString(s string) (int, error) {
	w.stamp()
	return w.ResponseWriter.WriteString(s)
}
