// Package errors provides standardized error handling shared by the HTTP API
// and the BPMN job workers.
package errors

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ==========================
// 1. Standard Error Types
// ==========================

// ErrorCode represents standardized internal error codes.
type ErrorCode string

const (
	ErrCodeOrderNotFound   ErrorCode = "ORDER_NOT_FOUND"
	ErrCodeProductNotFound ErrorCode = "PRODUCT_NOT_FOUND"
	ErrCodeLookupFailed    ErrorCode = "LOOKUP_FAILED"

	ErrCodeDatabaseConnectionFailed ErrorCode = "DATABASE_CONNECTION_FAILED"
	ErrCodeSearchQueryFailed        ErrorCode = "SEARCH_QUERY_FAILED"

	ErrCodeInvalidChatMessage        ErrorCode = "INVALID_CHAT_MESSAGE"
	ErrCodeConversationPersistFailed ErrorCode = "CONVERSATION_PERSIST_FAILED"

	ErrCodeLLMTimeout          ErrorCode = "LLM_TIMEOUT"
	ErrCodeLLMGenerationFailed ErrorCode = "LLM_GENERATION_FAILED"

	ErrCodeNotificationSendFailed ErrorCode = "NOTIFICATION_SEND_FAILED"
	ErrCodeInvalidInput           ErrorCode = "INVALID_INPUT"
	ErrCodeWorkflowEngineError    ErrorCode = "WORKFLOW_ENGINE_ERROR"
	ErrCodeInternal               ErrorCode = "INTERNAL_ERROR"
)

// StandardError represents a structured application error.
type StandardError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Retryable bool                   `json:"retryable"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
	Cause     error                  `json:"-"`
}

func (e *StandardError) Error() string {
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

func (e *StandardError) Unwrap() error {
	return e.Cause
}

// BPMNError is the payload thrown back to the workflow engine.
type BPMNError struct {
	Code           string                 `json:"code"`
	Message        string                 `json:"message"`
	Details        string                 `json:"details,omitempty"`
	Retryable      bool                   `json:"retryable"`
	Retries        int                    `json:"retries"`
	ErrorVariables map[string]interface{} `json:"errorVariables,omitempty"`
}

func (e *BPMNError) Error() string {
	return fmt.Sprintf("BPMNError[%s]: %s", e.Code, e.Message)
}

// ToErrorVariables flattens the error into process variables.
func (e *BPMNError) ToErrorVariables() map[string]interface{} {
	vars := map[string]interface{}{
		"errorCode":    e.Code,
		"errorMessage": e.Message,
		"errorDetails": e.Details,
		"retryable":    e.Retryable,
	}
	for k, v := range e.ErrorVariables {
		vars[k] = v
	}
	return vars
}

// ==========================
// 2. Constructors
// ==========================

func newError(code ErrorCode, message, details string, retryable bool, cause error) *StandardError {
	return &StandardError{
		Code:      code,
		Message:   message,
		Details:   details,
		Retryable: retryable,
		Timestamp: time.Now().UTC(),
		Cause:     cause,
	}
}

func NewOrderNotFoundError(orderID string) *StandardError {
	return newError(ErrCodeOrderNotFound, "Order not found", fmt.Sprintf("orderId: %s", orderID), false, nil)
}

func NewProductNotFoundError(term string) *StandardError {
	return newError(ErrCodeProductNotFound, "Product not found", fmt.Sprintf("term: %s", term), false, nil)
}

func NewLookupFailedError(operation string, err error) *StandardError {
	return newError(ErrCodeLookupFailed, "Data lookup failed",
		fmt.Sprintf("operation: %s, error: %s", operation, err.Error()), true, err)
}

func NewDatabaseConnectionFailedError(err error) *StandardError {
	return newError(ErrCodeDatabaseConnectionFailed, "Database connection error", err.Error(), true, err)
}

func NewSearchQueryFailedError(index string, err error) *StandardError {
	return newError(ErrCodeSearchQueryFailed, "Elasticsearch query error",
		fmt.Sprintf("index: %s, error: %s", index, err.Error()), true, err)
}

func NewInvalidChatMessageError(details string) *StandardError {
	return newError(ErrCodeInvalidChatMessage, "Chat message is invalid", details, false, nil)
}

func NewConversationPersistFailedError(conversationID string, err error) *StandardError {
	return newError(ErrCodeConversationPersistFailed, "Failed to store conversation",
		fmt.Sprintf("conversationId: %s, error: %s", conversationID, err.Error()), true, err)
}

func NewLLMTimeoutError(timeout time.Duration) *StandardError {
	return newError(ErrCodeLLMTimeout, "LLM generation timeout",
		fmt.Sprintf("call exceeded %s", timeout), true, nil)
}

func NewLLMGenerationFailedError(err error) *StandardError {
	return newError(ErrCodeLLMGenerationFailed, "LLM generation API error", err.Error(), true, err)
}

func NewNotificationSendFailedError(channel string, err error) *StandardError {
	return newError(ErrCodeNotificationSendFailed, "Notification delivery failed",
		fmt.Sprintf("channel: %s, error: %s", channel, err.Error()), true, err)
}

func NewInvalidInputError(details string) *StandardError {
	return newError(ErrCodeInvalidInput, "Invalid input", details, false, nil)
}

func NewWorkflowEngineError(operation string, err error, retryable bool) *StandardError {
	return newError(ErrCodeWorkflowEngineError, fmt.Sprintf("Zeebe operation '%s' failed", operation), err.Error(), retryable, err)
}

// ==========================
// 3. BPMN Mapping
// ==========================

var BPMNErrorMapping = map[ErrorCode]string{
	ErrCodeOrderNotFound:             "ORDER_NOT_FOUND",
	ErrCodeProductNotFound:           "PRODUCT_NOT_FOUND",
	ErrCodeLookupFailed:              "LOOKUP_FAILED",
	ErrCodeDatabaseConnectionFailed:  "DATABASE_CONNECTION_FAILED",
	ErrCodeSearchQueryFailed:         "SEARCH_QUERY_FAILED",
	ErrCodeInvalidChatMessage:        "INVALID_CHAT_MESSAGE",
	ErrCodeConversationPersistFailed: "CONVERSATION_PERSIST_FAILED",
	ErrCodeLLMTimeout:                "LLM_TIMEOUT",
	ErrCodeLLMGenerationFailed:       "LLM_GENERATION_FAILED",
	ErrCodeNotificationSendFailed:    "NOTIFICATION_SEND_FAILED",
	ErrCodeInvalidInput:              "INVALID_INPUT",
}

// GetRetryCount returns how many job retries a code is worth.
func GetRetryCount(code ErrorCode) int {
	switch code {
	case ErrCodeLookupFailed,
		ErrCodeDatabaseConnectionFailed,
		ErrCodeSearchQueryFailed,
		ErrCodeConversationPersistFailed,
		ErrCodeNotificationSendFailed,
		ErrCodeLLMGenerationFailed:
		return 3
	case ErrCodeLLMTimeout:
		return 1
	default:
		return 0
	}
}

func ConvertToBPMNError(stdErr *StandardError) *BPMNError {
	bpmnCode, exists := BPMNErrorMapping[stdErr.Code]
	if !exists {
		bpmnCode = string(stdErr.Code)
	}

	retries := GetRetryCount(stdErr.Code)
	if !stdErr.Retryable {
		retries = 0
	}

	return &BPMNError{
		Code:      bpmnCode,
		Message:   stdErr.Message,
		Details:   stdErr.Details,
		Retryable: stdErr.Retryable,
		Retries:   retries,
		ErrorVariables: map[string]interface{}{
			"originalErrorCode": string(stdErr.Code),
			"timestamp":         stdErr.Timestamp.Format(time.RFC3339),
		},
	}
}

// AsStandardError unwraps err to a StandardError, wrapping unknown errors as INTERNAL_ERROR.
func AsStandardError(err error) *StandardError {
	var stdErr *StandardError
	if errors.As(err, &stdErr) {
		return stdErr
	}
	return newError(ErrCodeInternal, "Unexpected error", err.Error(), false, err)
}

func IsRetryableErrorCode(code ErrorCode) bool {
	return GetRetryCount(code) > 0
}

func GetErrorCategory(code ErrorCode) string {
	codeStr := string(code)
	switch {
	case strings.Contains(codeStr, "NOT_FOUND") || strings.Contains(codeStr, "LOOKUP"):
		return "LOOKUP"
	case strings.Contains(codeStr, "SEARCH") || strings.Contains(codeStr, "CACHE"):
		return "STORAGE"
	case strings.Contains(codeStr, "DATABASE") || strings.Contains(codeStr, "QUERY") || strings.Contains(codeStr, "PERSIST"):
		return "DATABASE"
	case strings.Contains(codeStr, "NOTIFICATION"):
		return "NOTIFICATION"
	case strings.Contains(codeStr, "LLM"):
		return "AI"
	case strings.Contains(codeStr, "INVALID"):
		return "VALIDATION"
	default:
		return "OTHER"
	}
}
