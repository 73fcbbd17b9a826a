package response

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/sightreadpro-backend/internal/platform/apierr"
	"github.com/yungbote/sightreadpro-backend/internal/platform/logger"
)

type APIError struct {
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
	Field   string `json:"field,omitempty"`
}

type ErrorEnvelope struct {
	Error APIError `json:"error"`
}

func RespondError(c *gin.Context, status int, code string, err error) {
	msg := "unknown error"
	if err != nil {
		msg = err.Error()
	}
	c.JSON(status, ErrorEnvelope{
		Error: APIError{
			Message: msg,
			Code:    code,
		},
	})
}

// RespondAPIError classifies err and renders it. Server-side failures are
// logged with their cause and answered with a generic message.
func RespondAPIError(c *gin.Context, log *logger.Logger, err error) {
	status, code := apierr.Classify(err)
	body := APIError{Message: err.Error(), Code: code}

	var ve *apierr.ValidationError
	if errors.As(err, &ve) {
		body.Field = ve.Field
		body.Message = ve.Error()
	}
	if status >= http.StatusInternalServerError {
		if log != nil {
			log.Error("Request failed", "path", c.FullPath(), "code", code, "error", err)
		}
		body.Message = internalMessage(code)
	}
	c.JSON(status, ErrorEnvelope{Error: body})
}

func internalMessage(code string) string {
	switch code {
	case "storage_error":
		return "a storage error occurred"
	case "upload_failed":
		return "failed to upload file"
	default:
		return "an unexpected error occurred"
	}
}

func RespondOK(c *gin.Context, payload any) {
	c.JSON(http.StatusOK, payload)
}
