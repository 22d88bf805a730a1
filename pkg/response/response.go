package response

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/showbase/showbase/pkg/apperrors"
)

// APIResponse is the envelope every endpoint answers with.
type APIResponse[T any] struct {
	Status    int         `json:"status"`
	Timestamp time.Time   `json:"timestamp"`
	RequestID string      `json:"request_id"`
	Success   bool        `json:"success"`
	Message   string      `json:"message"`
	Data      T           `json:"data,omitempty"`
	Meta      interface{} `json:"meta,omitempty"`
	Error     interface{} `json:"error,omitempty"`
}

// OK writes a success envelope with the given status.
func OK[T any](c *gin.Context, status int, data T, message string, meta interface{}) {
	if status == 0 {
		status = http.StatusOK
	}
	c.JSON(status, APIResponse[T]{
		Status:    status,
		Timestamp: time.Now(),
		RequestID: c.GetString("request_id"),
		Success:   true,
		Message:   message,
		Data:      data,
		Meta:      meta,
	})
}

// Fail writes an error envelope with the given status.
func Fail(c *gin.Context, status int, message string, details interface{}) {
	if status == 0 {
		status = http.StatusBadRequest
	}
	c.JSON(status, APIResponse[any]{
		Status:    status,
		Timestamp: time.Now(),
		RequestID: c.GetString("request_id"),
		Success:   false,
		Message:   message,
		Error:     details,
	})
}

// AbortFail writes an error envelope and aborts the handler chain.
func AbortFail(c *gin.Context, status int, message string, details interface{}) {
	Fail(c, status, message, details)
	c.Abort()
}

// FromError maps an application error to its envelope. Unexpected errors
// become an opaque 500; devMode additionally surfaces the cause.
func FromError(c *gin.Context, err error, devMode bool) {
	if e, ok := apperrors.As(err); ok {
		var details interface{}
		if devMode && e.Err != nil {
			details = e.Err.Error()
		}
		Fail(c, e.Status(), e.Message, details)
		return
	}
	var details interface{}
	if devMode {
		details = err.Error()
	}
	Fail(c, http.StatusInternalServerError, "something went wrong", details)
}
