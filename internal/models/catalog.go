// internal/models/catalog.go
package models

import "time"

type OrderItemView struct {
	ProductID   int64   `json:"product_id"`
	ProductName string  `json:"product_name"`
	Status      string  `json:"status"`
	SalePrice   float64 `json:"sale_price"`
}

type OrderView struct {
	OrderID     int64           `json:"order_id"`
	CustomerID  int64           `json:"customer_id"`
	Status      string          `json:"status"`
	OrderDate   time.Time       `json:"order_date"`
	NumOfItem   int             `json:"num_of_item"`
	TotalAmount float64         `json:"total_amount"`
	Items       []OrderItemView `json:"items"`
}

// ProductView is a catalogue entry with its live stock level. UnitsSold is
// only set on top-seller results.
type ProductView struct {
	ProductID     int64   `json:"product_id"`
	Name          string  `json:"product_name"`
	Category      string  `json:"category"`
	Brand         string  `json:"brand"`
	Department    string  `json:"department"`
	Price         float64 `json:"price"`
	StockQuantity int     `json:"stock_quantity"`
	UnitsSold     *int    `json:"units_sold,omitempty"`
}

type AnalyticsView struct {
	TotalRevenue    float64 `json:"total_revenue"`
	TotalOrders     int     `json:"total_orders"`
	CompletedOrders int     `json:"completed_orders"`
	CompletionRate  float64 `json:"completion_rate"`
	TopCategory     string  `json:"top_category"`
}

// CompletionRate is completed/total as a percentage, 0 when there are no orders.
func CompletionRate(completed, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(completed) / float64(total) * 100
}
