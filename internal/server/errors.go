package server

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/google/uuid"

	"github.com/alexryan/leadscout/internal/collector"
)

// ErrCompanyNotFound indicates the company row does not exist
type ErrCompanyNotFound struct {
	ID uuid.UUID
}

func (e *ErrCompanyNotFound) Error() string {
	return fmt.Sprintf("company not found: %s", e.ID)
}

// ErrValidation indicates request validation failure
type ErrValidation struct {
	Field   string
	Message string
}

func (e *ErrValidation) Error() string {
	return fmt.Sprintf("validation error: %s - %s", e.Field, e.Message)
}

// ErrServiceDisabled indicates a dependent service is not configured
type ErrServiceDisabled struct {
	Service string
}

func (e *ErrServiceDisabled) Error() string {
	return fmt.Sprintf("%s is not configured", e.Service)
}

// HTTPStatus returns the appropriate HTTP status code for an error
func HTTPStatus(err error) int {
	var invalid *collector.InvalidInputError
	if errors.As(err, &invalid) {
		return http.StatusBadRequest
	}

	switch err.(type) {
	case *ErrValidation:
		return http.StatusBadRequest
	case *ErrCompanyNotFound:
		return http.StatusNotFound
	case *ErrServiceDisabled:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
