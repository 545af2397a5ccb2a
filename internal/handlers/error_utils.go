package handlers

import (
	"errors"
	"net/http"

	"feedbackboard/internal/middleware"
	contextutils "feedbackboard/internal/utils"

	"github.com/gin-gonic/gin"
)

// StandardizeHTTPError creates consistent HTTP error responses with structured error information
func StandardizeHTTPError(c *gin.Context, statusCode int, message, details string) {
	var errorCode contextutils.ErrorCode
	var severity contextutils.SeverityLevel

	switch statusCode {
	case http.StatusBadRequest:
		errorCode = contextutils.ErrorCodeInvalidInput
		severity = contextutils.SeverityWarn
	case http.StatusNotFound:
		errorCode = contextutils.ErrorCodeRecordNotFound
		severity = contextutils.SeverityInfo
	case http.StatusServiceUnavailable:
		errorCode = contextutils.ErrorCodeServiceUnavailable
		severity = contextutils.SeverityError
	default:
		errorCode = contextutils.ErrorCodeInternalError
		severity = contextutils.SeverityError
	}

	appErr := contextutils.NewAppError(errorCode, severity, message, details)
	c.JSON(statusCode, appErr.ToJSON())
}

// HandleAppError sends the response for err with the message in the default locale
func HandleAppError(c *gin.Context, err error) {
	HandleLocalizedAppError(c, err, contextutils.DefaultLocale)
}

// HandleLocalizedAppError records err on the gin context, for the error span middleware,
// and sends a structured JSON response whose message is in locale
func HandleLocalizedAppError(c *gin.Context, err error, locale contextutils.Locale) {
	var appErr *contextutils.AppError
	if !errors.As(err, &appErr) {
		appErr = contextutils.NewAppErrorWithCause(
			contextutils.ErrorCodeInternalError,
			contextutils.SeverityError,
			"Internal server error",
			err.Error(),
			err,
		)
	}
	_ = c.Error(appErr)
	middleware.StandardizeAppError(c, appErr, string(locale))
}

// HandleValidationError handles malformed request input consistently
func HandleValidationError(c *gin.Context, message string, cause error, locale contextutils.Locale) {
	HandleLocalizedAppError(c, contextutils.NewAppErrorWithCause(
		contextutils.ErrorCodeInvalidInput,
		contextutils.SeverityWarn,
		message,
		"",
		cause,
	), locale)
}

// errorStatus is the HTTP status HandleAppError would use for err
func errorStatus(err error) int {
	return middleware.StatusForErrorCode(contextutils.GetErrorCode(err))
}
