package httpapi

import (
	"net/http"
	"time"

	"github.com/MrEthical07/authgate"
	"github.com/gin-gonic/gin"
)

// failureResponse is the uniform error body. Every non-2xx response the API
// produces, whatever the route or failure, serializes to this one shape.
type failureResponse struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	TraceID   string `json:"traceId"`
	Timestamp string `json:"timestamp"`
	Path      string `json:"path"`
}

func writeFailure(c *gin.Context, code authgate.ErrorCode) {
	message := code.Message
	if message == "" {
		message = http.StatusText(code.Status)
	}

	c.Header("Cache-Control", "no-store")
	c.AbortWithStatusJSON(code.Status, failureResponse{
		Code:      code.Code,
		Message:   message,
		TraceID:   authgate.TraceIDFromContext(c.Request.Context()),
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Path:      c.Request.URL.Path,
	})
}

func writeEngineFailure(c *gin.Context, err error) {
	writeFailure(c, authgate.CodeOf(err))
}
