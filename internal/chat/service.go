// Package chat runs one customer message through classification, context
// assembly, reply generation and persistence.
package chat

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"

	"support-chatbot/internal/common/logger"
	"support-chatbot/internal/common/metrics"
	"support-chatbot/internal/common/observability"
	"support-chatbot/internal/generation"
	"support-chatbot/internal/intent"
	"support-chatbot/internal/models"
)

var (
	ErrEmptyMessage  = errors.New("INVALID_CHAT_MESSAGE")
	ErrPersistFailed = errors.New("CONVERSATION_PERSIST_FAILED")
)

// Message sources, used as a metrics label.
const (
	SourceAPI    = "api"
	SourceWorker = "worker"
	SourceCLI    = "cli"
)

type ContextAssembler interface {
	Assemble(ctx context.Context, in models.Intent, message string) models.ContextBundle
}

type Generator interface {
	Generate(ctx context.Context, message string, bundle models.ContextBundle) string
}

type HintClassifier interface {
	ClassifyIntentHint(ctx context.Context, message string) (*generation.IntentHint, error)
}

type ConversationStore interface {
	SaveConversation(ctx context.Context, rec models.ConversationRecord) (*models.ConversationRecord, error)
}

type Service struct {
	assembler ContextAssembler
	generator Generator
	store     ConversationStore
	hints     HintClassifier
	obs       *observability.Observability
	logger    logger.Logger

	now   func() time.Time
	newID func() string
}

// NewService wires the pipeline. hints may be nil to skip the model's intent hint.
func NewService(assembler ContextAssembler, generator Generator, store ConversationStore, hints HintClassifier, obs *observability.Observability, log logger.Logger) *Service {
	if obs == nil {
		obs = observability.NewNop()
	}
	return &Service{
		assembler: assembler,
		generator: generator,
		store:     store,
		hints:     hints,
		obs:       obs,
		logger:    log.WithFields(map[string]interface{}{"component": "chat"}),
		now:       func() time.Time { return time.Now().UTC() },
		newID:     func() string { return uuid.New().String() },
	}
}

// Reply answers a message received over the HTTP API.
func (s *Service) Reply(ctx context.Context, req models.ChatRequest) (*models.ChatResponse, error) {
	return s.ReplyFrom(ctx, SourceAPI, req)
}

// ReplyFrom answers req. Only an empty message or a failed save returns an
// error; lookup and generation problems are absorbed into the reply.
func (s *Service) ReplyFrom(ctx context.Context, source string, req models.ChatRequest) (*models.ChatResponse, error) {
	if strings.TrimSpace(req.Message) == "" {
		return nil, ErrEmptyMessage
	}

	conversationID := req.ConversationID
	if conversationID == "" {
		conversationID = s.newID()
	}

	ctx, span := s.obs.StartSpan(ctx, "chat.reply",
		attribute.String("conversation_id", conversationID),
		attribute.String("source", source),
	)
	defer span.End()

	var in models.Intent
	s.stage(ctx, "classify", func(ctx context.Context) {
		in = intent.Classify(req.Message)
	})
	span.SetAttributes(attribute.String("intent", string(in)))
	metrics.ChatMessagesTotal.WithLabelValues(string(in), source).Inc()

	if s.hints != nil {
		s.stage(ctx, "intent_hint", func(ctx context.Context) {
			s.compareHint(ctx, in, req.Message)
		})
	}

	var bundle models.ContextBundle
	s.stage(ctx, "assemble", func(ctx context.Context) {
		bundle = s.assembler.Assemble(ctx, in, req.Message)
	})

	var reply string
	s.stage(ctx, "generate", func(ctx context.Context) {
		reply = s.generator.Generate(ctx, req.Message, bundle)
	})

	timestamp := s.now()
	var persistErr error
	s.stage(ctx, "persist", func(ctx context.Context) {
		_, persistErr = s.store.SaveConversation(ctx, models.ConversationRecord{
			ConversationID: conversationID,
			UserMessage:    req.Message,
			AIResponse:     reply,
			CreatedAt:      timestamp,
		})
	})
	if persistErr != nil {
		span.RecordError(persistErr)
		s.logger.Error("failed to save conversation", map[string]interface{}{
			"conversationId": conversationID,
			"error":          persistErr.Error(),
		})
		return nil, fmt.Errorf("%w: %w", ErrPersistFailed, persistErr)
	}

	s.logger.Info("message answered", map[string]interface{}{
		"conversationId": conversationID,
		"intent":         in,
		"contextKeys":    bundle.Keys(),
		"source":         source,
		"traceId":        observability.TraceID(ctx),
	})

	return &models.ChatResponse{
		Response:       reply,
		ConversationID: conversationID,
		Timestamp:      timestamp,
		Intent:         in,
	}, nil
}

func (s *Service) compareHint(ctx context.Context, in models.Intent, message string) {
	hint, err := s.hints.ClassifyIntentHint(ctx, message)
	if err != nil {
		s.logger.Debug("intent hint unavailable", map[string]interface{}{"error": err.Error()})
		return
	}
	agree := hint.Intent == in
	metrics.IntentHintAgreementTotal.WithLabelValues(fmt.Sprintf("%t", agree)).Inc()
	if !agree {
		s.logger.Info("intent hint disagrees with router", map[string]interface{}{
			"router":                in,
			"hint":                  hint.Intent,
			"requiresClarification": hint.RequiresClarification,
		})
	}
}

func (s *Service) stage(ctx context.Context, name string, fn func(ctx context.Context)) {
	ctx, span := s.obs.StartSpan(ctx, "chat."+name)
	start := time.Now()
	fn(ctx)
	s.obs.RecordStage(ctx, name, time.Since(start))
	span.End()
}
