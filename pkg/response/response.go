// Package response defines the clip invocation wire contract and JSON helpers.
package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// ErrorDetail carries a human-readable message and, for known failure
// classes, a stable error code callers can branch on.
type ErrorDetail struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

// Clip is the terminal outcome of one clip invocation: exactly one of URL or
// Error is set, keyed off Created.
type Clip struct {
	Created bool         `json:"created"`
	URL     string       `json:"url,omitempty"`
	Error   *ErrorDetail `json:"error,omitempty"`
}

// Published builds the success outcome.
func Published(url string) Clip {
	return Clip{Created: true, URL: url}
}

// Failed builds a failure outcome. code may be empty for unclassified errors.
func Failed(message, code string) Clip {
	return Clip{Created: false, Error: &ErrorDetail{Error: message, Code: code}}
}

// Result sends the pipeline's terminal outcome. The invocation itself
// succeeded either way, so the status is 200 even for failed clips.
func Result(c *gin.Context, clip Clip) {
	c.JSON(http.StatusOK, clip)
}

// InvalidInput rejects a malformed request with 400 before any stage runs.
func InvalidInput(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, Clip{Created: false, Error: &ErrorDetail{Error: message}})
}

// OK sends a 200 JSON response with data (health endpoint).
func OK(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, data)
}
