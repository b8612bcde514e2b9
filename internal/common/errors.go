package common

import (
	"errors"
	"fmt"
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

// Error codes
const (
	CodeAcquisitionFailed = "ACQUISITION_FAILED"
	CodeOCRFailed         = "OCR_FAILED"
	CodeOCRTimeout        = "OCR_TIMEOUT"
	CodeNoText            = "NO_TEXT"
	CodeSinkFailed        = "SINK_FAILED"
	CodeConfig            = "CONFIG_ERROR"
)

// Common application errors
var (
	ErrInvalidInput = errors.New("invalid input")
	ErrAcquisition  = errors.New("text acquisition failed")
	ErrOCR          = errors.New("ocr failed")
	ErrOCRTimeout   = errors.New("ocr timed out")
	ErrNoText       = errors.New("no usable text")
	ErrSink         = errors.New("result sink failed")
)

// Error constructors
func NewAppError(code, message string, cause error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// OCRError classifies an OCR invocation failure. Every result matches ErrOCR;
// a deadline overrun additionally carries CodeOCRTimeout.
func OCRError(message string, cause error) error {
	code := CodeOCRFailed
	if errors.Is(cause, ErrOCRTimeout) {
		code = CodeOCRTimeout
	}
	return NewAppError(code, message, errors.Join(ErrOCR, cause))
}

// AcquisitionError reports a document whose text could be obtained neither directly
// nor through OCR. It matches ErrAcquisition and every error in cause.
func AcquisitionError(message string, cause error) error {
	return NewAppError(CodeAcquisitionFailed, message, errors.Join(ErrAcquisition, cause))
}

// SinkError wraps a failure to persist the output relations.
func SinkError(message string, cause error) error {
	return NewAppError(CodeSinkFailed, message, errors.Join(ErrSink, cause))
}

// ErrorCode returns the AppError code found in err's chain, or "".
func ErrorCode(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return ""
}
