package responses

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"socialplus/services/auth-api/internal/utils/platformerrors"
)

// HandleError maps an error onto an HTTP response. Platform errors carry
// their own status; anything else is an internal error.
func HandleError(c *gin.Context, err error, message string) {
	logger := log.With().Str("path", c.Request.URL.Path).Logger()
	logger.Error().Err(err).Msg(message)

	status := http.StatusInternalServerError
	errType := "internal_error"
	code := ""
	if platformErr := platformerrors.GetPlatformError(err); platformErr != nil {
		status = platformerrors.ErrorTypeToHTTPStatus(platformErr.Type)
		errType = statusToErrorType(status)
		code = platformErr.UUID
	}

	c.JSON(status, ErrorResponse{
		Error: &ErrorDetail{
			Message: message,
			Type:    errType,
			Code:    code,
		},
	})
}

// HandleErrorWithStatus writes an error response with a fixed status code.
func HandleErrorWithStatus(c *gin.Context, statusCode int, message string) {
	c.JSON(statusCode, ErrorResponse{
		Error: &ErrorDetail{
			Message: message,
			Type:    statusToErrorType(statusCode),
		},
	})
}

// statusToErrorType converts HTTP status code to error type string.
func statusToErrorType(status int) string {
	switch status {
	case http.StatusBadRequest:
		return "validation_error"
	case http.StatusUnauthorized:
		return "unauthorized_error"
	case http.StatusForbidden:
		return "forbidden_error"
	case http.StatusNotFound:
		return "not_found_error"
	case http.StatusConflict:
		return "conflict_error"
	case http.StatusBadGateway:
		return "external_error"
	default:
		return "internal_error"
	}
}
