package response

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	apperrors "planmarket/pkg/errors"
	"planmarket/pkg/logger"
)

type Response struct {
	Success   bool        `json:"success"`
	Data      interface{} `json:"data,omitempty"`
	Error     *ErrorInfo  `json:"error,omitempty"`
	Timestamp string      `json:"timestamp"`
}

type ErrorInfo struct {
	Code    string      `json:"code"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
}

type Pagination struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"totalPages"`
}

type PaginatedData struct {
	Items      interface{} `json:"items"`
	Pagination Pagination  `json:"pagination"`
	Summary    interface{} `json:"summary,omitempty"`
}

// FieldError describes one failed validation rule.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func now() string {
	return time.Now().UTC().Format(time.RFC3339)
}

func Success(c echo.Context, data interface{}) error {
	return c.JSON(http.StatusOK, Response{Success: true, Data: data, Timestamp: now()})
}

func Created(c echo.Context, data interface{}) error {
	return c.JSON(http.StatusCreated, Response{Success: true, Data: data, Timestamp: now()})
}

func NewPagination(total int64, page, limit int) Pagination {
	totalPages := 0
	if limit > 0 {
		totalPages = int(total) / limit
		if int(total)%limit > 0 {
			totalPages++
		}
	}
	return Pagination{Page: page, Limit: limit, Total: total, TotalPages: totalPages}
}

func Paginated(c echo.Context, items interface{}, total int64, page, limit int) error {
	return PaginatedWithSummary(c, items, total, page, limit, nil)
}

// PaginatedWithSummary adds an aggregate block computed over the whole
// result set, not only the returned page.
func PaginatedWithSummary(c echo.Context, items interface{}, total int64, page, limit int, summary interface{}) error {
	return c.JSON(http.StatusOK, Response{
		Success:   true,
		Timestamp: now(),
		Data: PaginatedData{
			Items:      items,
			Pagination: NewPagination(total, page, limit),
			Summary:    summary,
		},
	})
}

func Error(c echo.Context, err error) error {
	var validationErr validator.ValidationErrors
	if errors.As(err, &validationErr) {
		return handleValidationError(c, validationErr)
	}

	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		if appErr.Status >= http.StatusInternalServerError {
			logger.Error("%s %s: %v", c.Request().Method, c.Path(), appErr)
		}
		if appErr.RetryAfter > 0 {
			c.Response().Header().Set("Retry-After", strconv.Itoa(int(appErr.RetryAfter.Seconds()+0.5)))
		}
		return c.JSON(appErr.Status, Response{
			Success:   false,
			Timestamp: now(),
			Error:     &ErrorInfo{Code: appErr.Code, Message: appErr.Message},
		})
	}

	var httpErr *echo.HTTPError
	if errors.As(err, &httpErr) {
		return c.JSON(httpErr.Code, Response{
			Success:   false,
			Timestamp: now(),
			Error:     &ErrorInfo{Code: strings.ToUpper(strings.ReplaceAll(http.StatusText(httpErr.Code), " ", "_")), Message: http.StatusText(httpErr.Code)},
		})
	}

	logger.Error("%s %s: unhandled error: %v", c.Request().Method, c.Path(), err)
	return c.JSON(http.StatusInternalServerError, Response{
		Success:   false,
		Timestamp: now(),
		Error:     &ErrorInfo{Code: apperrors.CodeInternal, Message: "An unexpected error occurred"},
	})
}

func handleValidationError(c echo.Context, validationErr validator.ValidationErrors) error {
	details := make([]FieldError, 0, len(validationErr))
	for _, fe := range validationErr {
		details = append(details, FieldError{Field: fe.Field(), Message: describe(fe)})
	}

	message := "Invalid input data"
	if len(details) > 0 {
		message = details[0].Message
	}

	return c.JSON(http.StatusBadRequest, Response{
		Success:   false,
		Timestamp: now(),
		Error:     &ErrorInfo{Code: "VALIDATION_ERROR", Message: message, Details: details},
	})
}

func describe(fe validator.FieldError) string {
	field := fe.Field()
	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "min", "gte":
		return field + " must be at least " + fe.Param()
	case "max", "lte":
		return field + " must be at most " + fe.Param()
	case "oneof":
		return field + " must be one of: " + fe.Param()
	case "email":
		return field + " must be a valid email address"
	case "url":
		return field + " must be a valid URL"
	default:
		return field + " is invalid"
	}
}
