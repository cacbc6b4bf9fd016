package utils

import (
	"log"

	"github.com/gin-gonic/gin"
)

const maxLoggedBody = 2048

type errorLogWriter struct {
	gin.ResponseWriter
	gc *gin.Context
}

func (w errorLogWriter) Write(b []byte) (int, error) {
	status := w.gc.Writer.Status()
	if status >= 400 {
		body := b
		if len(body) > maxLoggedBody {
			body = body[:maxLoggedBody]
		}
		log.Printf("[DEBUG ERROR]: %s %s, Status %d, Body: %s", w.gc.Request.Method, w.gc.Request.URL.Path, status, body)
	}
	return w.ResponseWriter.Write(b)
}

// ErrorLogMiddleware logs 4xx and 5xx bodies. It doesn't work with GZIP.
func ErrorLogMiddleware(c *gin.Context) {
	blw := &errorLogWriter{gc: c, ResponseWriter: c.Writer}
	c.Writer = blw
	c.Next()
}
