// Package httpkit provides HTTP response utilities.
// This is part of the platform layer and contains no business logic.
package httpkit

import (
	"errors"
	"net/http"

	"salesrep_portal/platform/apperr"
	"salesrep_portal/platform/logger"

	"github.com/gin-gonic/gin"
)

// ErrorResponse is the standard error response format.
type ErrorResponse struct {
	Error   string      `json:"error"`
	Reason  string      `json:"reason,omitempty"`
	Details interface{} `json:"details,omitempty"`
}

// JSON sends a JSON response with the given status code.
func JSON(c *gin.Context, status int, payload interface{}) {
	c.JSON(status, payload)
}

// Error sends an error response with the given status code and message.
func Error(c *gin.Context, status int, message string, details interface{}) {
	c.JSON(status, ErrorResponse{Error: message, Details: details})
}

// OK sends a 200 OK response with the given payload.
func OK(c *gin.Context, payload interface{}) {
	c.JSON(http.StatusOK, payload)
}

// HandleError maps domain errors to HTTP responses. Internal errors are
// logged with their cause and rendered as a generic retry-later message.
// Returns true if an error was handled.
func HandleError(c *gin.Context, log *logger.Logger, err error) bool {
	if err == nil {
		return false
	}

	var domainErr *apperr.Error
	if errors.As(err, &domainErr) {
		if domainErr.Kind == apperr.KindInternal && log != nil {
			log.WithContext(c.Request.Context()).Error("request failed", "op", domainErr.Op, "error", err)
		}
		c.JSON(domainErr.HTTPStatus(), ErrorResponse{
			Error:   domainErr.Message,
			Reason:  domainErr.Reason,
			Details: domainErr.Details,
		})
		return true
	}

	if log != nil {
		log.WithContext(c.Request.Context()).Error("unhandled error", "error", err)
	}
	c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "temporarily unavailable, please retry later"})
	return true
}
