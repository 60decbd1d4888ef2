// internal/dataaccess/postgres.go
package dataaccess

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/lib/pq"

	"support-chatbot/internal/common/logger"
	"support-chatbot/internal/dataaccess/queries"
	"support-chatbot/internal/models"
)

const uniqueViolation = "23505"

// PostgresStore runs the registered queries against PostgreSQL.
type PostgresStore struct {
	db       *sql.DB
	searcher ProductSearcher
	logger   logger.Logger
}

// NewPostgresStore builds a store. searcher may be nil, in which case product
// search uses ILIKE against the products table.
func NewPostgresStore(db *sql.DB, searcher ProductSearcher, log logger.Logger) *PostgresStore {
	return &PostgresStore{
		db:       db,
		searcher: searcher,
		logger:   log.WithFields(map[string]interface{}{"component": "postgres-store"}),
	}
}

func (s *PostgresStore) GetOrder(ctx context.Context, orderID string) (*models.OrderView, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(orderID), 10, 64)
	if err != nil {
		return nil, ErrNotFound
	}
	data, err := s.run(ctx, models.QueryTypeOrderWithItems, queries.Params{"orderId": id})
	if err != nil {
		return nil, err
	}
	return data.(*models.OrderView), nil
}

// GetStock looks a product up by numeric id, or by name substring otherwise.
func (s *PostgresStore) GetStock(ctx context.Context, nameOrID string) (*models.ProductView, error) {
	nameOrID = strings.TrimSpace(nameOrID)
	if nameOrID == "" {
		return nil, ErrNotFound
	}
	params := queries.Params{"name": nameOrID}
	if id, err := strconv.ParseInt(nameOrID, 10, 64); err == nil {
		params = queries.Params{"productId": id}
	}
	data, err := s.run(ctx, models.QueryTypeProductStock, params)
	if err != nil {
		return nil, err
	}
	return data.(*models.ProductView), nil
}

// SearchProducts matches text against name, category and brand. With a
// searcher configured the index picks the ids; an index error or an empty
// hit list falls back to ILIKE so unindexed products are still found.
func (s *PostgresStore) SearchProducts(ctx context.Context, text string) ([]models.ProductView, error) {
	text = strings.TrimSpace(text)
	if s.searcher != nil {
		ids, err := s.searcher.SearchProductIDs(ctx, text)
		switch {
		case err != nil:
			s.logger.Warn("search index unavailable, falling back to postgres", map[string]interface{}{
				"error": err.Error(),
			})
		case len(ids) == 0:
			s.logger.Debug("no search index hits, falling back to postgres", map[string]interface{}{
				"text": text,
			})
		default:
			return s.productsByID(ctx, ids)
		}
	}
	data, err := s.run(ctx, models.QueryTypeProductSearch, queries.Params{"text": text})
	if err != nil {
		return nil, err
	}
	return data.([]models.ProductView), nil
}

func (s *PostgresStore) productsByID(ctx context.Context, ids []int64) ([]models.ProductView, error) {
	if len(ids) > queries.MaxSearchResults {
		ids = ids[:queries.MaxSearchResults]
	}
	data, err := s.run(ctx, models.QueryTypeProductsByID, queries.Params{"ids": ids})
	if err != nil {
		return nil, err
	}
	return capResults(data.([]models.ProductView)), nil
}

func (s *PostgresStore) ListProducts(ctx context.Context, limit int) ([]models.ProductView, error) {
	if limit <= 0 || limit > DefaultProductListLimit {
		limit = DefaultProductListLimit
	}
	data, err := s.run(ctx, models.QueryTypeProductList, queries.Params{"limit": limit})
	if err != nil {
		return nil, err
	}
	return data.([]models.ProductView), nil
}

// ProductsAfter returns the next page of products with id above afterID.
// An empty page means the table has been read to the end.
func (s *PostgresStore) ProductsAfter(ctx context.Context, afterID int64, limit int) ([]models.ProductView, error) {
	if limit <= 0 {
		limit = ProductPageSize
	}
	data, err := s.run(ctx, models.QueryTypeProductPage, queries.Params{"afterId": afterID, "limit": limit})
	if err != nil {
		return nil, err
	}
	return data.([]models.ProductView), nil
}

func (s *PostgresStore) TopProducts(ctx context.Context, limit int) ([]models.ProductView, error) {
	limit = topProductsLimit(limit)
	data, err := s.run(ctx, models.QueryTypeTopProducts, queries.Params{"limit": limit})
	if err != nil {
		return nil, err
	}
	return data.([]models.ProductView), nil
}

func (s *PostgresStore) LowStock(ctx context.Context, threshold int) ([]models.ProductView, error) {
	if threshold < 0 {
		threshold = DefaultLowStockThreshold
	}
	data, err := s.run(ctx, models.QueryTypeLowStock, queries.Params{"threshold": threshold})
	if err != nil {
		return nil, err
	}
	return data.([]models.ProductView), nil
}

func (s *PostgresStore) SalesAnalytics(ctx context.Context) (*models.AnalyticsView, error) {
	data, err := s.run(ctx, models.QueryTypeSalesAnalytics, nil)
	if err != nil {
		return nil, err
	}
	return data.(*models.AnalyticsView), nil
}

func (s *PostgresStore) SaveConversation(ctx context.Context, rec models.ConversationRecord) (*models.ConversationRecord, error) {
	data, err := s.run(ctx, models.QueryTypeSaveConversation, queries.Params{"record": rec})
	if err != nil {
		return nil, err
	}
	return data.(*models.ConversationRecord), nil
}

func (s *PostgresStore) RecentConversations(ctx context.Context, limit int) ([]models.ConversationRecord, error) {
	if limit <= 0 {
		limit = DefaultRecentConversations
	}
	data, err := s.run(ctx, models.QueryTypeRecentConversations, queries.Params{"limit": limit})
	if err != nil {
		return nil, err
	}
	return data.([]models.ConversationRecord), nil
}

func (s *PostgresStore) run(ctx context.Context, queryType models.QueryType, params queries.Params) (interface{}, error) {
	data, rowCount, execTime, err := queries.Execute(ctx, s.db, queryType, params)
	if err != nil {
		mapped := mapQueryError(err)
		if !errors.Is(mapped, ErrNotFound) {
			s.logger.Error("query failed", map[string]interface{}{
				"queryType": queryType,
				"error":     err.Error(),
			})
		}
		return nil, mapped
	}
	s.logger.Debug("query executed", map[string]interface{}{
		"queryType":     queryType,
		"rowCount":      rowCount,
		"executionTime": execTime,
	})
	return data, nil
}

func mapQueryError(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && string(pqErr.Code) == uniqueViolation {
		return fmt.Errorf("%w: %v", ErrConversationExists, err)
	}
	return fmt.Errorf("%w: %v", ErrLookupFailed, err)
}

func topProductsLimit(limit int) int {
	switch {
	case limit <= 0:
		return DefaultTopProducts
	case limit > MaxTopProducts:
		return MaxTopProducts
	}
	return limit
}

func capResults(products []models.ProductView) []models.ProductView {
	if products == nil {
		return []models.ProductView{}
	}
	if len(products) > queries.MaxSearchResults {
		return products[:queries.MaxSearchResults]
	}
	return products
}
