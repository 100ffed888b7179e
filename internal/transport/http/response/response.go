package response

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"teambot/internal/app"
)

const (
	CodeValidationError = "VALIDATION_ERROR"
	CodeNotFound        = "NOT_FOUND"
	CodeForbidden       = "FORBIDDEN"
	CodeUnauthorized    = "UNAUTHORIZED"
	CodeAIServiceError  = "AI_SERVICE_ERROR"
	CodeRateLimited     = "RATE_LIMITED"
	CodeInternalError   = "INTERNAL_ERROR"
)

// RequestIDKey is where the request-id middleware stores the id.
const RequestIDKey = "request_id"

type APIResponse struct {
	Success  bool        `json:"success"`
	Data     interface{} `json:"data,omitempty"`
	Error    *APIError   `json:"error,omitempty"`
	Metadata *Metadata   `json:"metadata,omitempty"`
}

type APIError struct {
	Code    string      `json:"code"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
}

type Metadata struct {
	Timestamp string `json:"timestamp"`
	RequestID string `json:"requestId,omitempty"`
}

func metadata(c *gin.Context) *Metadata {
	return &Metadata{
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		RequestID: c.GetString(RequestIDKey),
	}
}

func OK(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, APIResponse{
		Success:  true,
		Data:     data,
		Metadata: metadata(c),
	})
}

func Created(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, APIResponse{
		Success:  true,
		Data:     data,
		Metadata: metadata(c),
	})
}

func Error(c *gin.Context, httpStatus int, code, message string) {
	c.JSON(httpStatus, APIResponse{
		Success:  false,
		Error:    &APIError{Code: code, Message: message},
		Metadata: metadata(c),
	})
}

// FromError maps service sentinel errors onto the HTTP surface. Unknown
// errors collapse to a generic 500 so internals never leak.
func FromError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, app.ErrInvalidInput):
		Error(c, http.StatusBadRequest, CodeValidationError, err.Error())
	case errors.Is(err, app.ErrBotNotFound),
		errors.Is(err, app.ErrConversationNotFound),
		errors.Is(err, app.ErrDocumentNotFound),
		errors.Is(err, app.ErrSquadNotFound):
		Error(c, http.StatusNotFound, CodeNotFound, err.Error())
	case errors.Is(err, app.ErrForbidden):
		Error(c, http.StatusForbidden, CodeForbidden, err.Error())
	case errors.Is(err, app.ErrAIService):
		Error(c, http.StatusBadGateway, CodeAIServiceError, "ai service request failed")
	default:
		Error(c, http.StatusInternalServerError, CodeInternalError, "internal server error")
	}
}
