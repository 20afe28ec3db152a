package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "github.com/yanqian/property-valuator/pkg/errors"
)

// HTTPError is the transport form of a failure: status plus a stable wire code.
type HTTPError struct {
	Status  int
	Code    string
	Message string
	Err     error
}

func (e *HTTPError) Error() string {
	if e == nil {
		return ""
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return e.Message
}

func (e *HTTPError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// NewHTTPError builds an HTTPError with an explicit status and wire code.
func NewHTTPError(status int, code, message string, err error) *HTTPError {
	return &HTTPError{Status: status, Code: code, Message: message, Err: err}
}

type wireCode struct {
	status int
	code   string
}

// domainCodes maps application error codes onto the public error contract.
var domainCodes = map[string]wireCode{
	apperrors.CodeInvalidInput: {http.StatusBadRequest, "invalid_request"},
	apperrors.CodeHistory:      {http.StatusServiceUnavailable, "history_unavailable"},
	apperrors.CodeDataset:      {http.StatusServiceUnavailable, "dataset_unavailable"},
	apperrors.CodeAgent:        {http.StatusBadGateway, "agent_unavailable"},
}

// asHTTPError resolves any error to its response form. An explicit HTTPError
// wins, then a known AppError code, and anything else is an opaque 500.
func asHTTPError(err error) *HTTPError {
	if err == nil {
		return nil
	}
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return httpErr
	}
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		if wc, ok := domainCodes[appErr.Code]; ok {
			return &HTTPError{Status: wc.status, Code: wc.code, Message: appErr.Message, Err: err}
		}
	}
	return &HTTPError{
		Status:  http.StatusInternalServerError,
		Code:    "internal_error",
		Message: "something went wrong",
		Err:     err,
	}
}

// abortWithError queues err for errorHandlingMiddleware and stops the chain.
func abortWithError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	_ = c.Error(asHTTPError(err))
	c.Abort()
}
