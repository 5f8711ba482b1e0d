package ui

import (
	stderrors "errors"
	"log"
	"net/http"
	"strings"

	"tidytab/internal/errors"

	"github.com/gin-gonic/gin"
)

// statusForCode maps error codes to HTTP statuses
var statusForCode = map[string]int{
	errors.CodeInvalidInput:      http.StatusBadRequest,
	errors.CodeUnsupportedFormat: http.StatusUnsupportedMediaType,
	errors.CodeParseError:        http.StatusUnprocessableEntity,
	errors.CodeNoActiveSession:   http.StatusConflict,
	errors.CodeVersionConflict:   http.StatusConflict,
	errors.CodePayloadTooLarge:   http.StatusRequestEntityTooLarge,
	errors.CodeNotFound:          http.StatusNotFound,
	errors.CodeBusy:              http.StatusServiceUnavailable,
}

// respondError writes err as JSON. Browsers without a session are sent home.
func respondError(c *gin.Context, err error) {
	if errors.HasCode(err, errors.CodeNoActiveSession) && wantsHTML(c.GetHeader("Accept")) {
		c.Redirect(http.StatusSeeOther, "/")
		c.Abort()
		return
	}

	status, body := errorResponse(c.FullPath(), err)
	c.AbortWithStatusJSON(status, body)
}

// errorResponse builds the status and JSON body for err. Internal details
// are logged, never returned.
func errorResponse(path string, err error) (int, gin.H) {
	var appErr *errors.AppError
	if !stderrors.As(err, &appErr) {
		log.Printf("[%s] Unhandled error: %v", path, err)
		return http.StatusInternalServerError, gin.H{"code": errors.CodeInternalError, "error": "internal error"}
	}

	status, ok := statusForCode[appErr.Code]
	if !ok {
		status = http.StatusInternalServerError
	}

	body := gin.H{"code": appErr.Code, "error": appErr.Message}
	if status >= http.StatusInternalServerError {
		log.Printf("[%s] FAILED - %v", path, err)
		body["error"] = "internal error"
	}
	if appErr.Code == errors.CodeNoActiveSession {
		body["redirect"] = "/"
	}
	return status, body
}

func wantsHTML(accept string) bool {
	return strings.Contains(accept, "text/html")
}
