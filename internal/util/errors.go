package util

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	ErrUserNotFound        = errors.New("user not found")
	ErrEmailRegistered     = errors.New("email already registered")
	ErrInvalidCredentials  = errors.New("invalid credentials")
	ErrPermissionDenied    = errors.New("permission denied")
	ErrGenerationFailed    = errors.New("generation service failed")
	ErrGenerationParse     = errors.New("generation output could not be parsed")
	ErrUnsupportedDocument = errors.New("document type does not support text extraction")
)

// Code 对外暴露的错误码，写入响应的 error 字段
type Code string

const (
	CodeInvalidInput          Code = "INVALID_INPUT"
	CodeMissingRequiredFields Code = "MISSING_REQUIRED_FIELDS"
	CodeInvalidID             Code = "INVALID_ID"
	CodeFileTooLarge          Code = "FILE_TOO_LARGE"
	CodeUnsupportedFileType   Code = "UNSUPPORTED_FILE_TYPE"
	CodeUnauthorized          Code = "UNAUTHORIZED"
	CodeInvalidCredentials    Code = "INVALID_CREDENTIALS"
	CodeForbidden             Code = "FORBIDDEN"
	CodeNotFound              Code = "NOT_FOUND"
	CodeConflict              Code = "CONFLICT"
	CodeTooManyRequests       Code = "TOO_MANY_REQUESTS"
	CodeServiceUnavailable    Code = "SERVICE_UNAVAILABLE"
	CodeGenerationFailed      Code = "GENERATION_FAILED"
	CodeGenerationParse       Code = "GENERATION_PARSE_FAILED"
	CodeInternal              Code = "INTERNAL"
)

// AppError 跨层统一错误，Message 可以安全返回给客户端
type AppError struct {
	Code    Code
	Op      string
	Message string
	Err     error
}

func (e *AppError) Error() string {
	switch {
	case e.Op != "" && e.Err != nil:
		return fmt.Sprintf("%s: %s: %v", e.Op, e.Message, e.Err)
	case e.Op != "":
		return fmt.Sprintf("%s: %s", e.Op, e.Message)
	case e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	default:
		return e.Message
	}
}

func (e *AppError) Unwrap() error { return e.Err }

func E(code Code, op, msg string, err error) error {
	return &AppError{Code: code, Op: op, Message: msg, Err: err}
}

func AsAppError(err error) (*AppError, bool) {
	var ae *AppError
	if errors.As(err, &ae) {
		return ae, true
	}
	return nil, false
}

func IsCode(err error, code Code) bool {
	ae, ok := AsAppError(err)
	return ok && ae.Code == code
}

func HTTPStatus(code Code) int {
	switch code {
	case CodeInvalidInput, CodeMissingRequiredFields, CodeInvalidID, CodeFileTooLarge, CodeUnsupportedFileType:
		return http.StatusBadRequest
	case CodeUnauthorized, CodeInvalidCredentials:
		return http.StatusUnauthorized
	case CodeForbidden:
		return http.StatusForbidden
	case CodeNotFound:
		return http.StatusNotFound
	case CodeConflict:
		return http.StatusConflict
	case CodeTooManyRequests:
		return http.StatusTooManyRequests
	case CodeServiceUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func InvalidInput(op, msg string) error {
	return E(CodeInvalidInput, op, msg, nil)
}

func NotFound(op, msg string) error {
	return E(CodeNotFound, op, msg, nil)
}
