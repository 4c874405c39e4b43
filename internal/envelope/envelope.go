package envelope

import (
	"errors"

	"github.com/gofiber/fiber/v2"
)

// Error codes surfaced to clients.
const (
	CodeValidation       = "VALIDATION_ERROR"
	CodeBadRequest       = "BAD_REQUEST"
	CodeUnauthorized     = "UNAUTHORIZED"
	CodeForbidden        = "FORBIDDEN"
	CodeNotFound         = "NOT_FOUND"
	CodeDuplicateContact = "DUPLICATE_CONTACT"
	CodeRateLimited      = "RATE_LIMITED"
	CodeConfig           = "CONFIG_ERROR"
	CodeDatabase         = "DATABASE_ERROR"
)

// Error is the typed failure every handler raises. The action router is the
// only place an Error is translated into an HTTP status.
type Error struct {
	Code    string
	Status  int
	Message string
	Data    interface{}
}

func (e *Error) Error() string {
	return e.Message
}

func Validation(message string) *Error {
	return &Error{Code: CodeValidation, Status: fiber.StatusBadRequest, Message: message}
}

func BadRequest(message string) *Error {
	return &Error{Code: CodeBadRequest, Status: fiber.StatusBadRequest, Message: message}
}

func Unauthorized(message string) *Error {
	return &Error{Code: CodeUnauthorized, Status: fiber.StatusUnauthorized, Message: message}
}

func Forbidden(message string) *Error {
	return &Error{Code: CodeForbidden, Status: fiber.StatusForbidden, Message: message}
}

func NotFound(message string) *Error {
	return &Error{Code: CodeNotFound, Status: fiber.StatusNotFound, Message: message}
}

// DuplicateContact carries the matched contact so the client can link to it.
func DuplicateContact(message string, match interface{}) *Error {
	return &Error{Code: CodeDuplicateContact, Status: fiber.StatusConflict, Message: message, Data: match}
}

func RateLimited(message string) *Error {
	return &Error{Code: CodeRateLimited, Status: fiber.StatusTooManyRequests, Message: message}
}

func ConfigError(message string) *Error {
	return &Error{Code: CodeConfig, Status: fiber.StatusInternalServerError, Message: message}
}

// ErrorBody is the error half of the response envelope.
type ErrorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Response is the uniform envelope every action returns.
type Response struct {
	OK    bool        `json:"ok"`
	Data  interface{} `json:"data,omitempty"`
	Error *ErrorBody  `json:"error,omitempty"`
	Meta  interface{} `json:"meta,omitempty"`
}

// OK writes a success envelope.
func OK(c *fiber.Ctx, data interface{}) error {
	return c.JSON(Response{OK: true, Data: data})
}

// OKMeta writes a success envelope with meta attached.
func OKMeta(c *fiber.Ctx, data, meta interface{}) error {
	return c.JSON(Response{OK: true, Data: data, Meta: meta})
}

// Fail classifies err and writes a failure envelope. Unclassified errors
// become DATABASE_ERROR with a generic message so internals never leak.
func Fail(c *fiber.Ctx, err error) error {
	var apiErr *Error
	if !errors.As(err, &apiErr) {
		apiErr = &Error{Code: CodeDatabase, Status: fiber.StatusInternalServerError, Message: "internal error"}
	}
	resp := Response{OK: false, Error: &ErrorBody{Code: apiErr.Code, Message: apiErr.Message}}
	if apiErr.Data != nil {
		resp.Data = apiErr.Data
	}
	return c.Status(apiErr.Status).JSON(resp)
}
