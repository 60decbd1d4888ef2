// Package assembler gathers the business data relevant to a classified
// message into a ContextBundle for text generation.
package assembler

import (
	"context"
	"errors"
	"strings"

	"support-chatbot/internal/common/logger"
	"support-chatbot/internal/common/metrics"
	"support-chatbot/internal/dataaccess"
	"support-chatbot/internal/intent"
	"support-chatbot/internal/models"
)

const (
	MsgOrderNotFound     = "Order not found"
	MsgOrderLookupFailed = "Failed to retrieve order information"
	MsgProductNotFound   = "Product not found"
	MsgStockLookupFailed = "Failed to retrieve product information"
)

// Lookup is the subset of dataaccess.DataAccess the assembler reads from.
type Lookup interface {
	GetOrder(ctx context.Context, orderID string) (*models.OrderView, error)
	GetStock(ctx context.Context, nameOrID string) (*models.ProductView, error)
	SearchProducts(ctx context.Context, text string) ([]models.ProductView, error)
	TopProducts(ctx context.Context, limit int) ([]models.ProductView, error)
}

type Assembler struct {
	data   Lookup
	logger logger.Logger
}

func New(data Lookup, log logger.Logger) *Assembler {
	return &Assembler{
		data:   data,
		logger: log.WithFields(map[string]interface{}{"component": "assembler"}),
	}
}

// Assemble never fails. Lookup errors become *_error entries, or an empty
// list for product lists, and at most one lookup is made per call.
func (a *Assembler) Assemble(ctx context.Context, in models.Intent, message string) models.ContextBundle {
	var bundle models.ContextBundle

	switch in {
	case models.IntentOrderStatus:
		a.assembleOrder(ctx, message, &bundle)
	case models.IntentStockCheck:
		a.assembleStock(ctx, message, &bundle)
	case models.IntentProductQuery:
		a.assembleProducts(ctx, message, &bundle)
	}

	return bundle
}

func (a *Assembler) assembleOrder(ctx context.Context, message string, bundle *models.ContextBundle) {
	orderID, ok := intent.ExtractOrderID(message)
	if !ok {
		a.record(models.IntentOrderStatus, "skipped")
		return
	}

	order, err := a.data.GetOrder(ctx, orderID)
	switch {
	case err == nil:
		bundle.Set(models.KeyOrderInfo, order)
		a.record(models.IntentOrderStatus, "found")
	case errors.Is(err, dataaccess.ErrNotFound):
		bundle.Set(models.KeyOrderError, MsgOrderNotFound)
		a.record(models.IntentOrderStatus, "not_found")
	default:
		a.logger.Error("order lookup failed", map[string]interface{}{"orderId": orderID, "error": err.Error()})
		bundle.Set(models.KeyOrderError, MsgOrderLookupFailed)
		a.record(models.IntentOrderStatus, "failed")
	}
}

func (a *Assembler) assembleStock(ctx context.Context, message string, bundle *models.ContextBundle) {
	term, ok := intent.ExtractProductTerm(message)
	if !ok {
		a.record(models.IntentStockCheck, "skipped")
		return
	}

	product, err := a.data.GetStock(ctx, term)
	switch {
	case err == nil:
		bundle.Set(models.KeyStockInfo, product)
		a.record(models.IntentStockCheck, "found")
	case errors.Is(err, dataaccess.ErrNotFound):
		bundle.Set(models.KeyStockError, MsgProductNotFound)
		a.record(models.IntentStockCheck, "not_found")
	default:
		a.logger.Error("stock lookup failed", map[string]interface{}{"term": term, "error": err.Error()})
		bundle.Set(models.KeyStockError, MsgStockLookupFailed)
		a.record(models.IntentStockCheck, "failed")
	}
}

func (a *Assembler) assembleProducts(ctx context.Context, message string, bundle *models.ContextBundle) {
	key := models.KeyProducts
	var (
		products []models.ProductView
		err      error
	)
	if IsTopSellerQuery(message) {
		key = models.KeyTopProducts
		products, err = a.data.TopProducts(ctx, dataaccess.DefaultTopProducts)
	} else {
		products, err = a.data.SearchProducts(ctx, message)
	}

	if err != nil {
		a.logger.Error("product lookup failed", map[string]interface{}{"key": key, "error": err.Error()})
		a.record(models.IntentProductQuery, "failed")
		products = nil
	} else {
		a.record(models.IntentProductQuery, "found")
	}
	if products == nil {
		products = []models.ProductView{}
	}
	bundle.Set(key, products)
}

// IsTopSellerQuery reports whether message asks for best sellers.
func IsTopSellerQuery(message string) bool {
	lower := strings.ToLower(message)
	return strings.Contains(lower, "top") &&
		(strings.Contains(lower, "product") || strings.Contains(lower, "sold"))
}

func (a *Assembler) record(in models.Intent, outcome string) {
	metrics.ContextLookupsTotal.WithLabelValues(string(in), outcome).Inc()
}
