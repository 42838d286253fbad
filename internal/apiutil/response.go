// Package apiutil builds the uniform success/error envelopes and maps the
// error taxonomy to HTTP statuses.
package apiutil

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Error codes used across the API.
const (
	CodeInvalidParams   = "INVALID_PARAMS"
	CodeInvalidJSON     = "INVALID_JSON"
	CodeValidationError = "VALIDATION_ERROR"
	CodeUnauthorized    = "UNAUTHORIZED"
	CodeForbidden       = "FORBIDDEN"
	CodeNotFound        = "NOT_FOUND"
	CodeUserNotFound    = "USER_NOT_FOUND"
	CodeNoChanges       = "NO_CHANGES"
	CodeConflict        = "CONFLICT"
	CodeDBError         = "DB_ERROR"
	CodeInternalError   = "INTERNAL_ERROR"
)

// Metadata is the optional success-envelope metadata object.
type Metadata map[string]interface{}

// ErrorInfo is the error payload of a failure envelope.
type ErrorInfo struct {
	Code    string      `json:"code"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
}

type envelope struct {
	Success  bool        `json:"success"`
	Data     interface{} `json:"data,omitempty"`
	Metadata Metadata    `json:"metadata,omitempty"`
	Error    *ErrorInfo  `json:"error,omitempty"`
}

// Success writes {success:true, data, metadata?}.
func Success(c *gin.Context, status int, data interface{}, metadata Metadata) {
	c.JSON(status, envelope{Success: true, Data: data, Metadata: metadata})
}

// Error writes {success:false, error:{code, message, details?}} with the
// status implied by the code.
func Error(c *gin.Context, code, message string, details interface{}) {
	c.JSON(StatusFor(code), envelope{Success: false, Error: &ErrorInfo{
		Code:    code,
		Message: message,
		Details: details,
	}})
}

// AbortError is Error plus request abortion, for use in middleware.
func AbortError(c *gin.Context, code, message string) {
	c.AbortWithStatusJSON(StatusFor(code), envelope{Success: false, Error: &ErrorInfo{
		Code:    code,
		Message: message,
	}})
}

var debug bool

// SetDebug controls whether storage error details reach API responses.
// Production keeps them out.
func SetDebug(v bool) { debug = v }

// DBError reports a storage failure, attaching the driver message only in
// debug mode.
func DBError(c *gin.Context, message string, err error) {
	var details interface{}
	if debug && err != nil {
		details = err.Error()
	}
	Error(c, CodeDBError, message, details)
}

// StatusFor maps an error code to its HTTP status. Unknown codes are treated
// as internal errors.
func StatusFor(code string) int {
	switch code {
	case CodeInvalidParams, CodeInvalidJSON, CodeValidationError:
		return http.StatusBadRequest
	case CodeUnauthorized:
		return http.StatusUnauthorized
	case CodeForbidden:
		return http.StatusForbidden
	case CodeNotFound, CodeUserNotFound:
		return http.StatusNotFound
	case CodeNoChanges, CodeConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
