// Package dataaccess is the read/write boundary between the chatbot and its
// catalogue, order and conversation data.
package dataaccess

import (
	"context"
	"errors"

	"support-chatbot/internal/models"
)

var (
	ErrNotFound           = errors.New("NOT_FOUND")
	ErrLookupFailed       = errors.New("LOOKUP_FAILED")
	ErrConversationExists = errors.New("CONVERSATION_EXISTS")
)

const (
	DefaultTopProducts         = 5
	MaxTopProducts             = 100
	DefaultProductListLimit    = 100
	ProductPageSize            = 500
	DefaultLowStockThreshold   = 10
	DefaultRecentConversations = 50
)

// DataAccess is implemented by PostgresStore and CachedStore.
type DataAccess interface {
	GetOrder(ctx context.Context, orderID string) (*models.OrderView, error)
	GetStock(ctx context.Context, nameOrID string) (*models.ProductView, error)
	SearchProducts(ctx context.Context, text string) ([]models.ProductView, error)
	ListProducts(ctx context.Context, limit int) ([]models.ProductView, error)
	TopProducts(ctx context.Context, limit int) ([]models.ProductView, error)
	LowStock(ctx context.Context, threshold int) ([]models.ProductView, error)
	SalesAnalytics(ctx context.Context) (*models.AnalyticsView, error)
	SaveConversation(ctx context.Context, rec models.ConversationRecord) (*models.ConversationRecord, error)
	RecentConversations(ctx context.Context, limit int) ([]models.ConversationRecord, error)
}

// ProductSearcher is an alternative free-text product search backend. It
// only picks the matching product ids; rows and stock always come from the
// database.
type ProductSearcher interface {
	SearchProductIDs(ctx context.Context, text string) ([]int64, error)
}
