package common

import (
	"context"
	"errors"
	"fmt"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// AppError represents application-specific errors
type AppError struct {
	Code    string
	Message string
	Cause   error
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// Error codes carried by AppError.
const (
	CodeParse       = "PARSE_ERROR"
	CodeValidation  = "VALIDATION_ERROR"
	CodeOCR         = "OCR_ERROR"
	CodeLLM         = "LLM_ERROR"
	CodeUnsupported = "UNSUPPORTED_FORMAT"
	CodeConfig      = "CONFIG_ERROR"
	CodeCache       = "CACHE_ERROR"
	CodeExport      = "EXPORT_ERROR"
)

// Common application errors
var (
	ErrNotFound          = errors.New("resource not found")
	ErrInvalidInput      = errors.New("invalid input")
	ErrInternal          = errors.New("internal error")
	ErrValidation        = errors.New("validation failed")
	ErrUnsupportedFormat = errors.New("unsupported file format")
	ErrNoExtractor       = errors.New("no text extractor configured")
)

// Error constructors
func NewAppError(code, message string, cause error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// ErrorCode returns the AppError code found in err's chain, or "".
func ErrorCode(err error) string {
	var ae *AppError
	if errors.As(err, &ae) {
		return ae.Code
	}
	return ""
}

// ToStatus converts an error into a gRPC status error. Errors that already
// carry a status pass through.
func ToStatus(err error) error {
	if err == nil {
		return nil
	}
	if _, ok := status.FromError(err); ok {
		return err
	}
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return status.Error(codes.DeadlineExceeded, err.Error())
	case errors.Is(err, context.Canceled):
		return status.Error(codes.Canceled, err.Error())
	}

	switch ErrorCode(err) {
	case CodeParse, CodeValidation, CodeUnsupported:
		return InvalidArgumentError(err.Error())
	case CodeOCR, CodeLLM, CodeCache:
		return status.Error(codes.Unavailable, err.Error())
	case CodeConfig:
		return status.Error(codes.FailedPrecondition, err.Error())
	}
	if errors.Is(err, ErrNotFound) {
		return NotFoundError(err.Error())
	}
	if errors.Is(err, ErrInvalidInput) || errors.Is(err, ErrValidation) {
		return InvalidArgumentError(err.Error())
	}
	return InternalError(err.Error())
}

// gRPC error helpers
func InvalidArgumentError(message string) error {
	return status.Error(codes.InvalidArgument, message)
}

func NotFoundError(message string) error {
	return status.Error(codes.NotFound, message)
}

func InternalError(message string) error {
	return status.Error(codes.Internal, message)
}
