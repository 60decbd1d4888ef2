// internal/workers/chatbot/answer-customer-message/handler.go
package answercustomermessage

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"

	"support-chatbot/internal/chat"
	apperrors "support-chatbot/internal/common/errors"
	"support-chatbot/internal/common/logger"
	"support-chatbot/internal/common/metrics"
	"support-chatbot/internal/common/observability"
	"support-chatbot/internal/common/validation"
	"support-chatbot/internal/dataaccess"
	"support-chatbot/internal/models"
)

const TaskType = "answer-customer-message"

// Replier is satisfied by *chat.Service.
type Replier interface {
	ReplyFrom(ctx context.Context, source string, req models.ChatRequest) (*models.ChatResponse, error)
}

type Handler struct {
	config       *Config
	chat         Replier
	errorHandler *apperrors.ErrorHandler
	obs          *observability.Observability
	logger       logger.Logger
}

func NewHandler(config *Config, chat Replier, obs *observability.Observability, log logger.Logger) *Handler {
	if obs == nil {
		obs = observability.NewNop()
	}
	l := log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:       config,
		chat:         chat,
		errorHandler: apperrors.NewErrorHandler(l),
		obs:          obs,
		logger:       l,
	}
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) {
	start := time.Now()
	h.logger.Info("processing job", map[string]interface{}{
		"jobKey":      job.Key,
		"workflowKey": job.ProcessInstanceKey,
	})

	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()

	input, err := h.parseInput(job)
	if err == nil {
		var output *Output
		output, err = h.Execute(ctx, input)
		if err == nil {
			h.completeJob(client, job, output)
			h.obs.RecordJobProcessed(ctx, TaskType, "completed")
			h.obs.RecordJobDuration(ctx, TaskType, time.Since(start))
			return
		}
	}

	stdErr := apperrors.AsStandardError(err)
	metrics.WorkerJobsFailed.WithLabelValues(TaskType, string(stdErr.Code)).Inc()
	h.obs.RecordJobProcessed(ctx, TaskType, "failed")
	h.errorHandler.HandleJobError(context.Background(), client, job, stdErr)
}

func (h *Handler) parseInput(job entities.Job) (*Input, error) {
	var raw map[string]interface{}
	if err := json.Unmarshal([]byte(job.Variables), &raw); err != nil {
		return nil, apperrors.NewInvalidInputError("job variables are not a JSON object")
	}
	if result := validation.ValidateDocument(validation.AnswerMessageJobSchema, raw); !result.Valid {
		return nil, apperrors.NewInvalidInputError(result.Error())
	}

	var input Input
	if err := json.Unmarshal([]byte(job.Variables), &input); err != nil {
		return nil, apperrors.NewInvalidInputError(err.Error())
	}
	return &input, nil
}

// Execute answers the message and maps pipeline errors to StandardErrors.
func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	resp, err := h.chat.ReplyFrom(ctx, chat.SourceWorker, models.ChatRequest{
		Message:        input.Message,
		ConversationID: input.ConversationID,
	})
	if err != nil {
		switch {
		case errors.Is(err, chat.ErrEmptyMessage):
			return nil, apperrors.NewInvalidChatMessageError("message is empty")
		case errors.Is(err, dataaccess.ErrConversationExists):
			return nil, apperrors.NewInvalidInputError("conversationId already in use")
		case errors.Is(err, chat.ErrPersistFailed):
			return nil, apperrors.NewConversationPersistFailedError(input.ConversationID, err)
		default:
			return nil, err
		}
	}

	return &Output{
		Reply:          resp.Response,
		ConversationID: resp.ConversationID,
		Intent:         string(resp.Intent),
		Timestamp:      resp.Timestamp,
	}, nil
}

func (h *Handler) completeJob(client worker.JobClient, job entities.Job, output *Output) {
	cmd, err := client.NewCompleteJobCommand().
		JobKey(job.Key).
		VariablesFromObject(output)
	if err != nil {
		h.logger.Error("failed to create complete job command", map[string]interface{}{
			"jobKey": job.Key,
			"error":  err.Error(),
		})
		return
	}

	if _, err := cmd.Send(context.Background()); err != nil {
		h.logger.Error("failed to send complete job command", map[string]interface{}{
			"jobKey": job.Key,
			"error":  err.Error(),
		})
		return
	}

	metrics.WorkerJobsCompleted.WithLabelValues(TaskType).Inc()
	h.logger.Info("job completed", map[string]interface{}{
		"jobKey":         job.Key,
		"conversationId": output.ConversationID,
		"intent":         output.Intent,
	})
}
