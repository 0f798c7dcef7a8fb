package apperror

import (
	"errors"
	"net/http"
)

type Code string

const (
	// Input means the caller supplied an unusable request, e.g. an empty
	// symbol list after trimming.
	Input Code = "INPUT"
	// DataFetch means the upstream provider call itself failed.
	DataFetch Code = "DATA_FETCH"
	// NoData means the provider returned no observations at all for the
	// requested symbols and range.
	NoData Code = "NO_DATA"
	// FieldNotFound means the provider response carried neither an
	// adjusted-close nor a close price field.
	FieldNotFound Code = "FIELD_NOT_FOUND"
	// NoOverlap means no fully-observed date remained after dropping rows
	// with missing values.
	NoOverlap Code = "NO_OVERLAP"
	// Internal is the catch-all for anything not otherwise classified.
	Internal Code = "INTERNAL"
)

type AppError struct {
	code    Code
	message string
	cause   error
}

func New(code Code, message string) *AppError {
	return &AppError{code: code, message: message}
}

// Wrap attaches an underlying cause so callers can still inspect it with
// errors.Is/As while the code and message drive the surfaced failure.
func Wrap(code Code, message string, cause error) *AppError {
	return &AppError{code: code, message: message, cause: cause}
}

func (e *AppError) Error() string {
	if e.cause != nil {
		return e.message + ": " + e.cause.Error()
	}
	return e.message
}

func (e *AppError) Code() Code      { return e.code }
func (e *AppError) Message() string { return e.message }
func (e *AppError) Unwrap() error   { return e.cause }

func (e *AppError) HTTPStatus() int {
	switch e.code {
	case Input:
		return http.StatusBadRequest
	case NoData:
		return http.StatusNotFound
	case DataFetch, FieldNotFound:
		return http.StatusBadGateway
	case NoOverlap:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

// CodeOf returns the taxonomy code carried by err, or Internal when err is
// not an AppError.
func CodeOf(err error) Code {
	var ae *AppError
	if errors.As(err, &ae) {
		return ae.Code()
	}
	return Internal
}
