// internal/dataaccess/queries/orders.go
package queries

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"support-chatbot/internal/models"
)

// OrderWithItems loads one order and its line items. params: orderId (int64).
func OrderWithItems(ctx context.Context, db *sql.DB, params Params) (interface{}, int, int64, error) {
	orderID, ok := params["orderId"].(int64)
	if !ok {
		return nil, 0, 0, fmt.Errorf("%w: orderId", ErrMissingParam)
	}

	start := time.Now()

	var (
		order     models.OrderView
		userID    sql.NullInt64
		status    sql.NullString
		createdAt sql.NullTime
		numItems  sql.NullInt64
	)
	err := db.QueryRowContext(ctx, `
		SELECT order_id, user_id, status, created_at, num_of_item
		FROM orders
		WHERE order_id = $1`, orderID).Scan(
		&order.OrderID, &userID, &status, &createdAt, &numItems,
	)
	if err != nil {
		return nil, 0, 0, err
	}
	order.CustomerID = userID.Int64
	order.Status = status.String
	order.OrderDate = createdAt.Time
	order.NumOfItem = int(numItems.Int64)

	rows, err := db.QueryContext(ctx, `
		SELECT oi.product_id, COALESCE(p.name, ''), COALESCE(oi.status, ''), COALESCE(oi.sale_price, 0)
		FROM order_items oi
		LEFT JOIN products p ON p.id = oi.product_id
		WHERE oi.order_id = $1
		ORDER BY oi.id`, orderID)
	if err != nil {
		return nil, 0, 0, err
	}
	defer rows.Close()

	order.Items = []models.OrderItemView{}
	for rows.Next() {
		var item models.OrderItemView
		if err := rows.Scan(&item.ProductID, &item.ProductName, &item.Status, &item.SalePrice); err != nil {
			return nil, 0, 0, err
		}
		order.TotalAmount += item.SalePrice
		order.Items = append(order.Items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, 0, err
	}

	return &order, 1, time.Since(start).Milliseconds(), nil
}
