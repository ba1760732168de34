package errors

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
)

// Error represents an application error
type Error struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Err     error  `json:"-"`
}

// Error implements the error interface
func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the wrapped error
func (e *Error) Unwrap() error {
	return e.Err
}

// New creates a new Error
func New(code int, message string, err error) *Error {
	return &Error{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// Constructors per error kind. Codes follow HTTP semantics so callers can
// render them directly, but services compare codes, not wire framing.

func InvalidInput(message string, err error) *Error {
	return New(http.StatusBadRequest, message, err)
}

func NotFound(message string, err error) *Error {
	return New(http.StatusNotFound, message, err)
}

func Forbidden(message string, err error) *Error {
	return New(http.StatusForbidden, message, err)
}

func InsufficientStock(productID string, err error) *Error {
	return New(http.StatusConflict, fmt.Sprintf("Insufficient stock for product %s", productID), err)
}

func CannotCancel(message string, err error) *Error {
	return New(http.StatusUnprocessableEntity, message, err)
}

func Internal(message string, err error) *Error {
	return New(http.StatusInternalServerError, message, err)
}

// Kind predicates used by callers and tests to distinguish failure classes
// without depending on message text.

func IsInvalidInput(err error) bool { return codeOf(err) == http.StatusBadRequest }

func IsNotFound(err error) bool { return codeOf(err) == http.StatusNotFound }

func IsForbidden(err error) bool { return codeOf(err) == http.StatusForbidden }

func IsInsufficientStock(err error) bool { return codeOf(err) == http.StatusConflict }

func IsCannotCancel(err error) bool { return codeOf(err) == http.StatusUnprocessableEntity }

func codeOf(err error) int {
	if e, ok := err.(*Error); ok {
		return e.Code
	}
	return 0
}

// ErrorMiddleware renders the last error attached to the gin context as the
// response body. Handlers attach application errors with c.Error and abort;
// anything that is not an *Error renders as a 500.
func ErrorMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}

		err := c.Errors.Last().Err
		appErr, ok := err.(*Error)
		if !ok {
			appErr = New(http.StatusInternalServerError, "Internal server error", err)
		}
		c.JSON(appErr.Code, gin.H{"error": appErr.Message})
	}
}
