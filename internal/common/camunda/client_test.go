package camunda

import (
	"context"
	stderrors "errors"
	"testing"
	"time"

	"support-chatbot/internal/common/errors"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fastRetry = &RetryConfig{MaxRetries: 2, BaseDelay: time.Millisecond, MaxDelay: 2 * time.Millisecond}

func TestIsRetryableZeebeError(t *testing.T) {
	tests := []struct {
		msg  string
		want bool
	}{
		{"rpc error: code = Unavailable desc = connection refused", true},
		{"context deadline exceeded", true},
		{"write: broken pipe", true},
		{"NOT_FOUND: process not found", false},
		{"permission denied", false},
	}
	for _, tt := range tests {
		t.Run(tt.msg, func(t *testing.T) {
			assert.Equal(t, tt.want, isRetryableZeebeError(stderrors.New(tt.msg)))
		})
	}
}

func TestExecuteWithRetry_RecoversFromTransientError(t *testing.T) {
	calls := 0
	result, err := executeWithRetry(context.Background(), fastRetry, func(context.Context) (interface{}, error) {
		calls++
		if calls < 2 {
			return nil, stderrors.New("connection refused")
		}
		return "ok", nil
	}, "topology")

	require.NoError(t, err)
	assert.Equal(t, "ok", result)
	assert.Equal(t, 2, calls)
}

func TestExecuteWithRetry_StopsOnPermanentError(t *testing.T) {
	calls := 0
	_, err := executeWithRetry(context.Background(), fastRetry, func(context.Context) (interface{}, error) {
		calls++
		return nil, stderrors.New("permission denied")
	}, "deploy")

	require.Error(t, err)
	assert.Equal(t, 1, calls)

	stdErr := errors.AsStandardError(err)
	assert.Equal(t, errors.ErrCodeWorkflowEngineError, stdErr.Code)
	assert.False(t, stdErr.Retryable)
}

func TestExecuteWithRetry_ExhaustsRetries(t *testing.T) {
	calls := 0
	_, err := executeWithRetry(context.Background(), fastRetry, func(context.Context) (interface{}, error) {
		calls++
		return nil, stderrors.New("unavailable")
	}, "topology")

	require.Error(t, err)
	assert.Equal(t, fastRetry.MaxRetries+1, calls)
	assert.True(t, errors.AsStandardError(err).Retryable)
}

func TestExecuteWithRetry_HonoursCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	slow := &RetryConfig{MaxRetries: 3, BaseDelay: time.Second, MaxDelay: time.Second}
	_, err := executeWithRetry(ctx, slow, func(context.Context) (interface{}, error) {
		return nil, stderrors.New("timeout")
	}, "topology")

	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestInstrument_CallsHandler(t *testing.T) {
	called := false
	h := Instrument("answer-customer-message", func(worker.JobClient, entities.Job) {
		called = true
	})
	h(nil, entities.Job{})
	assert.True(t, called)
}
