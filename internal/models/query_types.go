// internal/models/query_types.go
package models

type QueryType string

const (
	QueryTypeOrderWithItems      QueryType = "order_with_items"
	QueryTypeProductStock        QueryType = "product_stock"
	QueryTypeProductSearch       QueryType = "product_search"
	QueryTypeProductList         QueryType = "product_list"
	QueryTypeProductPage         QueryType = "product_page"
	QueryTypeProductsByID        QueryType = "products_by_id"
	QueryTypeTopProducts         QueryType = "top_products"
	QueryTypeLowStock            QueryType = "low_stock"
	QueryTypeSalesAnalytics      QueryType = "sales_analytics"
	QueryTypeSaveConversation    QueryType = "save_conversation"
	QueryTypeRecentConversations QueryType = "recent_conversations"
)
