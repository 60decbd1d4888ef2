// internal/workers/inventory/low-stock-alert/handler.go
package lowstockalert

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"

	apperrors "support-chatbot/internal/common/errors"
	"support-chatbot/internal/common/logger"
	"support-chatbot/internal/common/metrics"
	"support-chatbot/internal/common/observability"
	"support-chatbot/internal/common/validation"
	"support-chatbot/internal/models"
)

const TaskType = "low-stock-alert"

type StockReader interface {
	LowStock(ctx context.Context, threshold int) ([]models.ProductView, error)
}

// Publisher is satisfied by *aws.SNSClient.
type Publisher interface {
	PublishAlert(ctx context.Context, subject, message string, attributes map[string]string) (string, error)
}

type Handler struct {
	config       *Config
	stock        StockReader
	publisher    Publisher
	errorHandler *apperrors.ErrorHandler
	obs          *observability.Observability
	logger       logger.Logger
}

// NewHandler builds the handler. publisher may be nil, in which case the
// low-stock list is reported but never published.
func NewHandler(config *Config, stock StockReader, publisher Publisher, obs *observability.Observability, log logger.Logger) *Handler {
	if obs == nil {
		obs = observability.NewNop()
	}
	l := log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:       config,
		stock:        stock,
		publisher:    publisher,
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

	var output *Output
	input, err := h.parseInput(job)
	if err == nil {
		output, err = h.Execute(ctx, input)
	}
	if err != nil {
		stdErr := apperrors.AsStandardError(err)
		metrics.WorkerJobsFailed.WithLabelValues(TaskType, string(stdErr.Code)).Inc()
		h.obs.RecordJobProcessed(ctx, TaskType, "failed")
		h.errorHandler.HandleJobError(context.Background(), client, job, stdErr)
		return
	}

	cmd, err := client.NewCompleteJobCommand().JobKey(job.Key).VariablesFromObject(output)
	if err != nil {
		h.logger.Error("failed to create complete job command", map[string]interface{}{"jobKey": job.Key, "error": err.Error()})
		return
	}
	if _, err := cmd.Send(context.Background()); err != nil {
		h.logger.Error("failed to send complete job command", map[string]interface{}{"jobKey": job.Key, "error": err.Error()})
		return
	}

	metrics.WorkerJobsCompleted.WithLabelValues(TaskType).Inc()
	h.obs.RecordJobProcessed(ctx, TaskType, "completed")
	h.obs.RecordJobDuration(ctx, TaskType, time.Since(start))
}

func (h *Handler) parseInput(job entities.Job) (*Input, error) {
	vars := strings.TrimSpace(job.Variables)
	if vars == "" {
		vars = "{}"
	}

	var raw map[string]interface{}
	if err := json.Unmarshal([]byte(vars), &raw); err != nil {
		return nil, apperrors.NewInvalidInputError("job variables are not a JSON object")
	}
	if result := validation.ValidateDocument(validation.LowStockAlertJobSchema, raw); !result.Valid {
		return nil, apperrors.NewInvalidInputError(result.Error())
	}

	var input Input
	if err := json.Unmarshal([]byte(vars), &input); err != nil {
		return nil, apperrors.NewInvalidInputError(err.Error())
	}
	return &input, nil
}

// Execute finds products at or below the threshold and publishes a summary
// when there are any.
func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	threshold := h.config.DefaultThreshold
	if input.Threshold != nil {
		threshold = *input.Threshold
	}

	products, err := h.stock.LowStock(ctx, threshold)
	if err != nil {
		return nil, apperrors.NewLookupFailedError("low_stock", err)
	}

	output := &Output{Threshold: threshold, ProductCount: len(products)}
	if len(products) == 0 || h.publisher == nil {
		h.logger.Info("low stock check finished", map[string]interface{}{
			"threshold":    threshold,
			"productCount": len(products),
			"published":    false,
		})
		return output, nil
	}

	subject := fmt.Sprintf("Low stock: %d products at or below %d units", len(products), threshold)
	messageID, err := h.publisher.PublishAlert(ctx, subject, BuildSummary(products, threshold, h.config.MaxListed), map[string]string{
		"threshold":    strconv.Itoa(threshold),
		"productCount": strconv.Itoa(len(products)),
	})
	if err != nil {
		return nil, apperrors.NewNotificationSendFailedError("sns", err)
	}

	output.Published = true
	output.MessageID = messageID
	h.logger.Info("low stock alert published", map[string]interface{}{
		"threshold":    threshold,
		"productCount": len(products),
		"messageId":    messageID,
	})
	return output, nil
}

// BuildSummary lists up to maxListed products, lowest stock first as given.
func BuildSummary(products []models.ProductView, threshold, maxListed int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%d products have %d or fewer units available:\n", len(products), threshold)

	listed := products
	if maxListed > 0 && len(listed) > maxListed {
		listed = listed[:maxListed]
	}
	for _, p := range listed {
		fmt.Fprintf(&b, "- %s (id %d, %s): %d left\n", p.Name, p.ProductID, p.Category, p.StockQuantity)
	}
	if rest := len(products) - len(listed); rest > 0 {
		fmt.Fprintf(&b, "...and %d more\n", rest)
	}
	return b.String()
}
