// File: internal/services/ai/errors.go
package ai

import "fmt"

type ErrorType string

const (
	ErrTypeConfig    ErrorType = "CONFIG"
	ErrTypeNetwork   ErrorType = "NETWORK"
	ErrTypeProvider  ErrorType = "PROVIDER"
	ErrTypeAuth      ErrorType = "AUTH"
	ErrTypeRateLimit ErrorType = "RATE_LIMIT"
	ErrTypeEmpty     ErrorType = "EMPTY_RESPONSE"
)

// AIError is the single opaque failure a provider hands back to the orchestrator.
type AIError struct {
	Type      ErrorType
	Code      int
	Message   string
	Model     string
	Operation string
	Cause     error
}

func (e *AIError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("AI %s error in %s: %s (caused by: %v)",
			e.Type, e.Operation, e.Message, e.Cause)
	}
	return fmt.Sprintf("AI %s error in %s: %s", e.Type, e.Operation, e.Message)
}

func (e *AIError) Unwrap() error {
	return e.Cause
}

func NewConfigError(msg string) *AIError {
	return &AIError{Type: ErrTypeConfig, Message: msg, Operation: "config"}
}

func NewProviderError(operation, msg string, cause error) *AIError {
	return &AIError{Type: ErrTypeProvider, Operation: operation, Message: msg, Cause: cause}
}
