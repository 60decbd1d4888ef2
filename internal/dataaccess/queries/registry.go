// internal/dataaccess/queries/registry.go
package queries

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"support-chatbot/internal/models"
)

var (
	ErrMissingParam     = errors.New("missing required parameter")
	ErrUnknownQueryType = errors.New("unknown query type")
)

// Params carries named arguments for a query.
type Params map[string]interface{}

// QueryFunc returns: data, rowCount, executionTime (ms), error.
// Single-row queries return sql.ErrNoRows when nothing matches.
type QueryFunc func(ctx context.Context, db *sql.DB, params Params) (interface{}, int, int64, error)

var Registry = map[models.QueryType]QueryFunc{
	models.QueryTypeOrderWithItems:      OrderWithItems,
	models.QueryTypeProductStock:        ProductStock,
	models.QueryTypeProductSearch:       ProductSearch,
	models.QueryTypeProductList:         ProductList,
	models.QueryTypeProductPage:         ProductPage,
	models.QueryTypeProductsByID:        ProductsByID,
	models.QueryTypeTopProducts:         TopProducts,
	models.QueryTypeLowStock:            LowStock,
	models.QueryTypeSalesAnalytics:      SalesAnalytics,
	models.QueryTypeSaveConversation:    SaveConversation,
	models.QueryTypeRecentConversations: RecentConversations,
}

func Execute(ctx context.Context, db *sql.DB, queryType models.QueryType, params Params) (interface{}, int, int64, error) {
	fn, exists := Registry[queryType]
	if !exists {
		return nil, 0, 0, fmt.Errorf("%w: %s", ErrUnknownQueryType, queryType)
	}
	return fn(ctx, db, params)
}

func stringParam(params Params, key string) (string, error) {
	v, ok := params[key].(string)
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrMissingParam, key)
	}
	return v, nil
}

func int64Param(params Params, key string) (int64, error) {
	switch v := params[key].(type) {
	case int64:
		return v, nil
	case int:
		return int64(v), nil
	}
	return 0, fmt.Errorf("%w: %s", ErrMissingParam, key)
}

func intParam(params Params, key string) (int, error) {
	switch v := params[key].(type) {
	case int:
		return v, nil
	case int64:
		return int(v), nil
	}
	return 0, fmt.Errorf("%w: %s", ErrMissingParam, key)
}
