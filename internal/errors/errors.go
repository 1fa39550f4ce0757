package errors

import (
	"errors"
	"fmt"
)

type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

// Kinds are matched with errors.Is against any AppError.
var (
	ErrNetwork    = errors.New("network error")
	ErrNotFound   = errors.New("not found")
	ErrDelivery   = errors.New("delivery failure")
	ErrValidation = errors.New("validation error")
	ErrRateLimit  = errors.New("rate limited")
)

type AppError struct {
	Code        string
	Message     string
	UserMessage string
	Severity    Severity
	Retryable   bool
	kind        error
	cause       error
}

func (e *AppError) Error() string {
	if e == nil {
		return ""
	}
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.cause)
	}

	return e.Message
}

func (e *AppError) Unwrap() error {
	if e == nil {
		return nil
	}

	return e.cause
}

func (e *AppError) Is(target error) bool {
	return e != nil && e.kind != nil && target == e.kind
}

func (e *AppError) Cause() error {
	return e.Unwrap()
}

func NewValidationError(msg string) *AppError {
	return &AppError{
		Code:        "E100",
		Message:     msg,
		UserMessage: fmt.Sprintf("Invalid input. %s", msg),
		Severity:    SeverityLow,
		kind:        ErrValidation,
	}
}

func NewNotFoundError(asset string) *AppError {
	return &AppError{
		Code:        "E200",
		Message:     fmt.Sprintf("asset %q not found", asset),
		UserMessage: fmt.Sprintf("Error fetching data for \"%s\". Please try again.", asset),
		Severity:    SeverityLow,
		kind:        ErrNotFound,
	}
}

func NewNetworkError(apiName string, cause error) *AppError {
	return &AppError{
		Code:        "E300",
		Message:     fmt.Sprintf("external API error: %s", apiName),
		UserMessage: "Sorry, something went wrong.",
		Severity:    SeverityMedium,
		Retryable:   true,
		kind:        ErrNetwork,
		cause:       cause,
	}
}

func NewDeliveryError(chatID int64, cause error) *AppError {
	return &AppError{
		Code:     "E400",
		Message:  fmt.Sprintf("delivery to chat %d failed", chatID),
		Severity: SeverityMedium,
		kind:     ErrDelivery,
		cause:    cause,
	}
}

func NewRateLimitError(retryAfter int) *AppError {
	return &AppError{
		Code:        "E500",
		Message:     fmt.Sprintf("rate limit exceeded: retry after %d seconds", retryAfter),
		UserMessage: fmt.Sprintf("Too many requests. Try again in %d seconds.", retryAfter),
		Severity:    SeverityLow,
		kind:        ErrRateLimit,
	}
}

// UserMessage returns the message safe to show to a chat for err, or fallback when err carries none.
func UserMessage(err error, fallback string) string {
	var appErr *AppError
	if errors.As(err, &appErr) && appErr.UserMessage != "" {
		return appErr.UserMessage
	}
	return fallback
}

// WithUserMessage returns a copy of err that shows msg to the chat. Errors
// that are not an AppError are wrapped as internal failures.
func WithUserMessage(err error, msg string) *AppError {
	if err == nil {
		return nil
	}

	var appErr *AppError
	if errors.As(err, &appErr) && appErr != nil {
		clone := *appErr
		clone.UserMessage = msg
		return &clone
	}

	return &AppError{
		Code:        "E000",
		Message:     "internal error",
		UserMessage: msg,
		Severity:    SeverityHigh,
		cause:       err,
	}
}
