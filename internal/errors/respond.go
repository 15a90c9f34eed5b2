package errors

import (
	stderrors "errors"
	"net/http"

	"github.com/gin-gonic/gin"
)

// Respond writes err as the JSON error response, mapping kinds to HTTP
// status codes. Unknown errors become a 500 without leaking details.
func Respond(c *gin.Context, err error) {
	var e *Error
	if !stderrors.As(err, &e) {
		c.JSON(http.StatusInternalServerError, gin.H{
			"code":    "INTERNAL_ERROR",
			"message": "Internal server error",
		})
		return
	}
	c.JSON(statusFor(e.Kind), e)
}

func statusFor(kind Kind) int {
	switch kind {
	case KindNotFound:
		return http.StatusNotFound
	case KindInvalidState:
		return http.StatusBadRequest
	case KindPermissionDenied:
		return http.StatusForbidden
	case KindConflict:
		return http.StatusConflict
	case KindUnauthorized:
		return http.StatusUnauthorized
	case KindStoreUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// BadRequest writes a 400 with the given message.
func BadRequest(c *gin.Context, message string) {
	if message == "" {
		message = "Invalid request"
	}
	c.JSON(http.StatusBadRequest, gin.H{"code": string(KindInvalidState), "message": message})
}

// AbortUnauthorized writes a 401 and aborts the handler chain.
func AbortUnauthorized(c *gin.Context, message string) {
	if message == "" {
		message = "Authentication required"
	}
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"code": string(KindUnauthorized), "message": message})
}
