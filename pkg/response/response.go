package response

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// APIResponse is the uniform envelope for every endpoint, success or error.
// The error field carries caller-facing detail only, never stack traces or
// internal identifiers.
type APIResponse[T any] struct {
	Status    int       `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	RequestID string    `json:"request_id"`
	Success   bool      `json:"success"`
	Message   string    `json:"message"`
	Data      T         `json:"data,omitempty"`
	Meta      any       `json:"meta,omitempty"`
	Error     any       `json:"error,omitempty"`
}

// Success writes a success envelope with the given status.
func Success[T any](ctx *gin.Context, status int, data T, message string, meta any) {
	if status == 0 {
		status = http.StatusOK
	}
	write(ctx, status, APIResponse[T]{
		Status:  status,
		Success: true,
		Message: message,
		Data:    data,
		Meta:    meta,
	})
}

// Error writes a failure envelope. err, when non-nil, usually carries a
// field-to-message validation map.
func Error[T any](ctx *gin.Context, status int, message string, err any) {
	if status == 0 {
		status = http.StatusBadRequest
	}
	write(ctx, status, APIResponse[T]{
		Status:  status,
		Success: false,
		Message: message,
		Error:   err,
	})
}

func write[T any](ctx *gin.Context, status int, resp APIResponse[T]) {
	resp.Timestamp = time.Now()
	resp.RequestID = ctx.GetString("request_id")
	ctx.JSON(status, resp)
}
