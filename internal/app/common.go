package app

import "errors"

type RequestErrorCode string

const (
	ErrInvalidRequest  RequestErrorCode = "INVALID_REQUEST"
	ErrUnknownVariety  RequestErrorCode = "UNKNOWN_VARIETY"
	ErrNotFound        RequestErrorCode = "NOT_FOUND"
	ErrInvalidState    RequestErrorCode = "INVALID_STATE"
	ErrDataIntegrity   RequestErrorCode = "DATA_INTEGRITY"
	ErrInternalFailure RequestErrorCode = "INTERNAL_ERROR"
)

// RequestError is returned by use cases for failures the caller can act on.
type RequestError struct {
	Code    RequestErrorCode
	Message string
	Err     error
}

func (e *RequestError) Error() string {
	return string(e.Code) + ": " + e.Message
}

func (e *RequestError) Unwrap() error {
	return e.Err
}

func NewRequestError(code RequestErrorCode, err error) *RequestError {
	return &RequestError{Code: code, Message: err.Error(), Err: err}
}

// ErrorCode extracts the RequestErrorCode from err, or "" when err is not a RequestError.
func ErrorCode(err error) RequestErrorCode {
	var re *RequestError
	if errors.As(err, &re) {
		return re.Code
	}
	return ""
}
