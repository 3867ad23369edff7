package httpapi

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/nhle/siteledger/internal/model"
)

// apiError pairs an error with the HTTP status and code it is reported as.
type apiError struct {
	Status int
	Code   string
	Err    error
}

func (e *apiError) Error() string { return e.Err.Error() }
func (e *apiError) Unwrap() error { return e.Err }

type errorBody struct {
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

type errorEnvelope struct {
	Error errorBody `json:"error"`
}

// classify maps domain sentinels to statuses. Unknown errors are 500s.
func classify(err error) *apiError {
	var ae *apiError
	if errors.As(err, &ae) {
		return ae
	}

	status, code := http.StatusInternalServerError, "internal"
	switch {
	case errors.Is(err, model.ErrInvalidQuantity):
		status, code = http.StatusUnprocessableEntity, "invalid_quantity"
	case errors.Is(err, model.ErrUnknownResourceType):
		status, code = http.StatusUnprocessableEntity, "unknown_resource_type"
	case errors.Is(err, model.ErrCompressionFailed):
		status, code = http.StatusUnprocessableEntity, "compression_failed"
	case errors.Is(err, model.ErrQuotaExceeded):
		status, code = http.StatusRequestEntityTooLarge, "quota_exceeded"
	case errors.Is(err, model.ErrUploadAborted):
		status, code = http.StatusRequestTimeout, "upload_aborted"
	case errors.Is(err, model.ErrValidation):
		status, code = http.StatusBadRequest, "validation_failed"
	case errors.Is(err, model.ErrInvalidCredentials):
		status, code = http.StatusUnauthorized, "invalid_credentials"
	case errors.Is(err, model.ErrNotAuthenticated):
		status, code = http.StatusUnauthorized, "unauthorized"
	case errors.Is(err, model.ErrNotFound):
		status, code = http.StatusNotFound, "not_found"
	}
	return &apiError{Status: status, Code: code, Err: err}
}

func (s *Server) respondError(c *gin.Context, err error) {
	ae := classify(err)
	if ae.Status >= http.StatusInternalServerError {
		s.log.Error("request failed", "path", c.FullPath(), "error", err)
	}
	c.AbortWithStatusJSON(ae.Status, errorEnvelope{
		Error: errorBody{Message: ae.Err.Error(), Code: ae.Code},
	})
}

func notFound(what, id string) error {
	return &apiError{
		Status: http.StatusNotFound,
		Code:   "not_found",
		Err:    errors.New(what + " " + id + " not found"),
	}
}
