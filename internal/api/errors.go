package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/spigell/cv-screener/internal/ai"
	"github.com/spigell/cv-screener/internal/pdftext"
	"github.com/spigell/cv-screener/internal/queue"
	"github.com/spigell/cv-screener/internal/recruiting"
	"github.com/spigell/cv-screener/internal/store"
	"go.uber.org/zap"
)

// APIError is the JSON body of every failed request.
type APIError struct {
	Status  int                     `json:"-"`
	Code    string                  `json:"code"`
	Message string                  `json:"message"`
	Details string                  `json:"details,omitempty"`
	Fields  []recruiting.FieldError `json:"fields,omitempty"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func NewBadRequestError(message string, cause error) *APIError {
	err := &APIError{
		Status:  http.StatusBadRequest,
		Code:    "BAD_REQUEST",
		Message: message,
	}
	if cause != nil {
		err.Details = cause.Error()
	}
	return err
}

func NewValidationError(verr *recruiting.ValidationError) *APIError {
	return &APIError{
		Status:  http.StatusBadRequest,
		Code:    "VALIDATION_ERROR",
		Message: verr.Error(),
		Fields:  verr.Fields,
	}
}

func NewNotFoundError(resource string, id int64) *APIError {
	return &APIError{
		Status:  http.StatusNotFound,
		Code:    "NOT_FOUND",
		Message: fmt.Sprintf("%s not found: %d", resource, id),
	}
}

func NewConflictError(message string) *APIError {
	return &APIError{
		Status:  http.StatusConflict,
		Code:    "CONFLICT",
		Message: message,
	}
}

// NewUnprocessableError is returned when an uploaded file yields no usable text.
func NewUnprocessableError(message string) *APIError {
	return &APIError{
		Status:  http.StatusUnprocessableEntity,
		Code:    "UNPROCESSABLE",
		Message: message,
	}
}

// NewBadGatewayError is returned when the database or the AI service fails.
func NewBadGatewayError(message string, cause error) *APIError {
	err := &APIError{
		Status:  http.StatusBadGateway,
		Code:    "UPSTREAM_ERROR",
		Message: message,
	}
	if cause != nil {
		err.Details = cause.Error()
	}
	return err
}

func NewInternalError(message string, cause error) *APIError {
	err := &APIError{
		Status:  http.StatusInternalServerError,
		Code:    "INTERNAL_ERROR",
		Message: message,
	}
	if cause != nil {
		err.Details = cause.Error()
	}
	return err
}

// toAPIError classifies errors returned by the domain packages.
func toAPIError(err error) *APIError {
	var (
		apiErr     *APIError
		httpErr    *echo.HTTPError
		verr       *recruiting.ValidationError
		aiErr      *ai.ServiceError
		extractErr *pdftext.ExtractionError
		storeErr   *store.Error
	)

	switch {
	case errors.As(err, &apiErr):
		return apiErr
	case errors.As(err, &httpErr):
		return &APIError{
			Status:  httpErr.Code,
			Code:    "HTTP_ERROR",
			Message: fmt.Sprintf("%v", httpErr.Message),
		}
	case errors.As(err, &verr):
		return NewValidationError(verr)
	case errors.Is(err, store.ErrNotFound):
		return &APIError{Status: http.StatusNotFound, Code: "NOT_FOUND", Message: err.Error()}
	case recruiting.IsConflict(err), errors.Is(err, queue.ErrAlreadyProcessing):
		return NewConflictError(err.Error())
	case errors.As(err, &extractErr):
		return NewUnprocessableError(extractErr.Error())
	case errors.As(err, &aiErr):
		return NewBadGatewayError(aiErr.Reason, aiErr.Err)
	case errors.As(err, &storeErr):
		return NewBadGatewayError("database request failed", storeErr)
	default:
		return NewInternalError("an unexpected error occurred", err)
	}
}

// ErrorHandler renders errors as APIError bodies. Server-side failures are logged.
func ErrorHandler(logger *zap.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		apiErr := toAPIError(err)
		if apiErr.Status >= http.StatusInternalServerError {
			logger.Error("request failed",
				zap.String("method", c.Request().Method),
				zap.String("path", c.Path()),
				zap.Int("status", apiErr.Status),
				zap.Error(err),
			)
		}

		if c.Request().Method == http.MethodHead {
			_ = c.NoContent(apiErr.Status)
			return
		}
		_ = c.JSON(apiErr.Status, apiErr)
	}
}
