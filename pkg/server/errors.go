package server

import (
	"errors"
	"net/http"

	"github.com/devicelab-dev/microej-driver/pkg/core"
	"github.com/gin-gonic/gin"
)

// W3CError is the "value" of a WebDriver error response.
type W3CError struct {
	Error      string `json:"error"`
	Message    string `json:"message"`
	Stacktrace string `json:"stacktrace"`
}

// w3cStatus maps a driver error to its WebDriver error code and HTTP status.
func w3cStatus(err error) (int, string) {
	switch {
	case errors.Is(err, core.ErrNoSuchElement):
		return http.StatusNotFound, "no such element"
	case errors.Is(err, core.ErrSessionNotCreated):
		return http.StatusInternalServerError, "session not created"
	case errors.Is(err, core.ErrUnsupportedOperation):
		return http.StatusInternalServerError, "unsupported operation"
	default:
		return http.StatusInternalServerError, "unknown error"
	}
}

func abortWithW3CError(c *gin.Context, status int, code, message string) {
	c.AbortWithStatusJSON(status, gin.H{"value": W3CError{
		Error:   code,
		Message: message,
	}})
}

func abortWithDriverError(c *gin.Context, err error) {
	status, code := w3cStatus(err)
	abortWithW3CError(c, status, code, err.Error())
}
