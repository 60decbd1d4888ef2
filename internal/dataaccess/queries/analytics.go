// internal/dataaccess/queries/analytics.go
package queries

import (
	"context"
	"database/sql"
	"time"

	"support-chatbot/internal/models"
)

// SalesAnalytics aggregates revenue, order counts and the best-selling category.
func SalesAnalytics(ctx context.Context, db *sql.DB, params Params) (interface{}, int, int64, error) {
	start := time.Now()

	var a models.AnalyticsView
	err := db.QueryRowContext(ctx, `
		SELECT
			COALESCE((SELECT SUM(sale_price) FROM order_items WHERE status = $1), 0),
			(SELECT COUNT(*) FROM orders),
			(SELECT COUNT(*) FROM orders WHERE status = $1),
			COALESCE((
				SELECT p.category
				FROM order_items oi
				JOIN products p ON p.id = oi.product_id
				WHERE oi.status = $1
				GROUP BY p.category
				ORDER BY COUNT(*) DESC, p.category
				LIMIT 1
			), '')`, CompletedStatus).Scan(
		&a.TotalRevenue, &a.TotalOrders, &a.CompletedOrders, &a.TopCategory,
	)
	if err != nil {
		return nil, 0, 0, err
	}
	a.CompletionRate = models.CompletionRate(a.CompletedOrders, a.TotalOrders)

	return &a, 1, time.Since(start).Milliseconds(), nil
}
