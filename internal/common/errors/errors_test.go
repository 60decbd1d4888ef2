package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStandardError_Error(t *testing.T) {
	err := NewOrderNotFoundError("12345")
	assert.Equal(t, "StandardError[ORDER_NOT_FOUND]: Order not found", err.Error())
	assert.Equal(t, "orderId: 12345", err.Details)
	assert.False(t, err.Retryable)
}

func TestStandardError_UnwrapsCause(t *testing.T) {
	cause := errors.New("connection refused")
	err := NewLookupFailedError("get_order", cause)

	assert.ErrorIs(t, err, cause)
	assert.True(t, err.Retryable)
}

func TestAsStandardError(t *testing.T) {
	wrapped := fmt.Errorf("reply: %w", NewInvalidChatMessageError("message is empty"))
	got := AsStandardError(wrapped)
	assert.Equal(t, ErrCodeInvalidChatMessage, got.Code)

	plain := AsStandardError(errors.New("boom"))
	assert.Equal(t, ErrCodeInternal, plain.Code)
	assert.Equal(t, "boom", plain.Details)
}

func TestConvertToBPMNError(t *testing.T) {
	tests := []struct {
		name        string
		err         *StandardError
		wantCode    string
		wantRetries int
	}{
		{"business error is not retried", NewInvalidChatMessageError("empty"), "INVALID_CHAT_MESSAGE", 0},
		{"persist failure retries", NewConversationPersistFailedError("c1", errors.New("db down")), "CONVERSATION_PERSIST_FAILED", 3},
		{"llm timeout retries once", NewLLMTimeoutError(0), "LLM_TIMEOUT", 1},
		{"unmapped code falls through", &StandardError{Code: "CUSTOM", Retryable: true}, "CUSTOM", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bpmn := ConvertToBPMNError(tt.err)
			assert.Equal(t, tt.wantCode, bpmn.Code)
			assert.Equal(t, tt.wantRetries, bpmn.Retries)

			vars := bpmn.ToErrorVariables()
			require.Contains(t, vars, "originalErrorCode")
			assert.Equal(t, string(tt.err.Code), vars["originalErrorCode"])
		})
	}
}

func TestGetErrorCategory(t *testing.T) {
	assert.Equal(t, "LOOKUP", GetErrorCategory(ErrCodeOrderNotFound))
	assert.Equal(t, "DATABASE", GetErrorCategory(ErrCodeConversationPersistFailed))
	assert.Equal(t, "STORAGE", GetErrorCategory(ErrCodeSearchQueryFailed))
	assert.Equal(t, "AI", GetErrorCategory(ErrCodeLLMTimeout))
	assert.Equal(t, "NOTIFICATION", GetErrorCategory(ErrCodeNotificationSendFailed))
	assert.Equal(t, "VALIDATION", GetErrorCategory(ErrCodeInvalidInput))
	assert.Equal(t, "OTHER", GetErrorCategory(ErrCodeInternal))
}

func TestIsRetryableErrorCode(t *testing.T) {
	assert.True(t, IsRetryableErrorCode(ErrCodeSearchQueryFailed))
	assert.True(t, IsRetryableErrorCode(ErrCodeLLMGenerationFailed))
	assert.False(t, IsRetryableErrorCode(ErrCodeProductNotFound))
	assert.False(t, IsRetryableErrorCode(ErrCodeInvalidInput))
}
