package api

import "net/http"

// Error is the service API error carried through gin's context so the recovery
// middleware can render the right status code.
type Error struct {
	StatusCode int
	Message    string
}

func (e *Error) Error() string {
	return e.Message
}

func NewBadRequestError(message string) *Error {
	return &Error{
		StatusCode: http.StatusBadRequest,
		Message:    message,
	}
}

func NewNotFoundError(message string) *Error {
	return &Error{
		StatusCode: http.StatusNotFound,
		Message:    message,
	}
}

func NewInternalServerError(message string) *Error {
	return &Error{
		StatusCode: http.StatusInternalServerError,
		Message:    message,
	}
}

func NewServiceUnavailableError(message string) *Error {
	return &Error{
		StatusCode: http.StatusServiceUnavailable,
		Message:    message,
	}
}
