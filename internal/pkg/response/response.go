package response

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"courseplatform/internal/domain"
)

func Success(c *gin.Context, statusCode int, data interface{}) {
	c.JSON(statusCode, gin.H{
		"success": true,
		"data":    data,
	})
}

func Error(c *gin.Context, statusCode int, code string, message string) {
	c.JSON(statusCode, gin.H{
		"success": false,
		"error": gin.H{
			"code":    code,
			"message": message,
		},
	})
}

// CustomError is Error for middleware callers; they abort the chain themselves.
func CustomError(c *gin.Context, statusCode int, code string, message string) {
	Error(c, statusCode, code, message)
}

func ErrorWithDetails(c *gin.Context, statusCode int, code string, message string, details any) {
	c.JSON(statusCode, gin.H{
		"success": false,
		"error": gin.H{
			"code":    code,
			"message": message,
			"details": details,
		},
	})
}

// FromError writes the envelope for a use-case error. Typed domain errors
// carry their own status; anything else is a 500 with a generic message.
func FromError(c *gin.Context, err error) {
	status, code := Classify(err)
	message := err.Error()
	if status == http.StatusInternalServerError {
		message = "Internal error"
	}
	_ = c.Error(err)
	Error(c, status, code, message)
}

// Classify maps an error onto its HTTP status and envelope code.
func Classify(err error) (int, string) {
	switch {
	case errors.Is(err, domain.ErrNotFound) && !errors.Is(err, domain.ErrStorage):
		return http.StatusNotFound, "NOT_FOUND"
	case errors.Is(err, domain.ErrValidation):
		return http.StatusBadRequest, "VALIDATION_ERROR"
	case errors.Is(err, domain.ErrConflict):
		return http.StatusConflict, "CONFLICT"
	}

	var httpErr domain.HTTPError
	if errors.As(err, &httpErr) {
		if errors.Is(err, domain.ErrStorage) {
			return httpErr.StatusCode(), "STORAGE_ERROR"
		}
		return httpErr.StatusCode(), "ERROR"
	}
	return http.StatusInternalServerError, "INTERNAL"
}
