package utils

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/conectasus/referral-management-api/internal/models"
	"github.com/conectasus/referral-management-api/internal/service"
)

// SendErrorResponse sends an error JSON response
func SendErrorResponse(c *gin.Context, statusCode int, errCode, message, details string) {
	c.JSON(statusCode, models.ErrorResponse{
		Code:    errCode,
		Message: message,
		Details: details,
	})
}

// SendCreatedResponse sends a 201 Created response
func SendCreatedResponse(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, data)
}

// SendOKResponse sends a 200 OK response
func SendOKResponse(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, data)
}

// SendNoContentResponse sends a 204 No Content response
func SendNoContentResponse(c *gin.Context) {
	c.Status(http.StatusNoContent)
}

// SendBadRequestError sends a 400 Bad Request error
func SendBadRequestError(c *gin.Context, message, details string) {
	SendErrorResponse(c, http.StatusBadRequest, models.ErrCodeBadRequest, message, details)
}

// SendValidationError sends a validation error response
func SendValidationError(c *gin.Context, details string) {
	SendErrorResponse(c, http.StatusBadRequest, models.ErrCodeValidationError, "Validation failed", details)
}

// SendNotFoundError sends a 404 Not Found error
func SendNotFoundError(c *gin.Context, message string) {
	SendErrorResponse(c, http.StatusNotFound, models.ErrCodeNotFound, message, "")
}

// SendInternalServerError sends a 500 Internal Server Error
func SendInternalServerError(c *gin.Context, message, details string) {
	SendErrorResponse(c, http.StatusInternalServerError, models.ErrCodeInternalError, message, details)
}

// SendWorkflowError maps a workflow error to its HTTP representation. Unknown
// errors surface as internal failures.
func SendWorkflowError(c *gin.Context, err error) {
	var notFound *service.NotFoundError
	var validation *service.ValidationError
	var transition *service.TransitionError
	var storage *service.StorageError

	switch {
	case errors.As(err, &notFound):
		SendErrorResponse(c, models.HTTPStatusForErrorCode(models.ErrCodeRequestNotFound),
			models.ErrCodeRequestNotFound, "Request not found", notFound.Error())
	case errors.As(err, &validation):
		SendErrorResponse(c, models.HTTPStatusForErrorCode(models.ErrCodeValidationError),
			models.ErrCodeValidationError, "Validation failed", validation.Error())
	case errors.As(err, &transition):
		SendErrorResponse(c, models.HTTPStatusForErrorCode(models.ErrCodeInvalidTransition),
			models.ErrCodeInvalidTransition, "Illegal status transition", transition.Error())
	case errors.As(err, &storage):
		SendErrorResponse(c, models.HTTPStatusForErrorCode(models.ErrCodeDatabaseError),
			models.ErrCodeDatabaseError, "Storage failure", storage.Error())
	default:
		SendInternalServerError(c, "Unexpected error", err.Error())
	}
}

// GetActorIDFromContext extracts the acting user id set by the header
// middleware. Returns 0 when absent.
func GetActorIDFromContext(c *gin.Context) int64 {
	actorID, exists := c.Get("actorID")
	if !exists {
		return 0
	}
	return actorID.(int64)
}

// GetCorrelationIDFromContext extracts the correlation id set by middleware.
func GetCorrelationIDFromContext(c *gin.Context) string {
	correlationID, exists := c.Get("correlationID")
	if !exists {
		return ""
	}
	return correlationID.(string)
}

// SetContextValue sets a value in the Gin context
func SetContextValue(c *gin.Context, key string, value interface{}) {
	c.Set(key, value)
}
