package queries

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"support-chatbot/internal/models"
)

var productCols = []string{"id", "name", "category", "brand", "department", "retail_price", "stock_quantity"}

func newMock(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db, mock
}

// ==========================
// Orders
// ==========================

func TestOrderWithItems(t *testing.T) {
	db, mock := newMock(t)
	created := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)

	mock.ExpectQuery(`FROM orders\s+WHERE order_id = \$1`).
		WithArgs(int64(12345)).
		WillReturnRows(sqlmock.NewRows([]string{"order_id", "user_id", "status", "created_at", "num_of_item"}).
			AddRow(int64(12345), int64(77), "Shipped", created, 2))
	mock.ExpectQuery(`FROM order_items oi\s+LEFT JOIN products p`).
		WithArgs(int64(12345)).
		WillReturnRows(sqlmock.NewRows([]string{"product_id", "name", "status", "sale_price"}).
			AddRow(int64(1), "Blue Hoodie", "Shipped", 40.0).
			AddRow(int64(2), "Black Jeans", "Shipped", 59.5))

	data, rows, execTime, err := OrderWithItems(context.Background(), db, Params{"orderId": int64(12345)})
	require.NoError(t, err)
	assert.Equal(t, 1, rows)
	assert.GreaterOrEqual(t, execTime, int64(0))

	order := data.(*models.OrderView)
	assert.Equal(t, int64(77), order.CustomerID)
	assert.Equal(t, "Shipped", order.Status)
	assert.Equal(t, created, order.OrderDate)
	assert.Len(t, order.Items, 2)
	assert.InDelta(t, 99.5, order.TotalAmount, 0.001)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOrderWithItems_NotFound(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectQuery(`FROM orders`).WithArgs(int64(1)).WillReturnError(sql.ErrNoRows)

	_, _, _, err := OrderWithItems(context.Background(), db, Params{"orderId": int64(1)})
	assert.ErrorIs(t, err, sql.ErrNoRows)
}

func TestOrderWithItems_MissingParam(t *testing.T) {
	db, _ := newMock(t)
	_, _, _, err := OrderWithItems(context.Background(), db, Params{"orderId": "12345"})
	assert.ErrorIs(t, err, ErrMissingParam)
}

// ==========================
// Products
// ==========================

func TestProductStock_ByName(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectQuery(`WHERE p.name ILIKE \$1`).
		WithArgs("%hoodie%").
		WillReturnRows(sqlmock.NewRows(productCols).
			AddRow(int64(3), "Zip Hoodie", "Outerwear", "Acme", "Men", 45.0, 12))

	data, _, _, err := ProductStock(context.Background(), db, Params{"name": "hoodie"})
	require.NoError(t, err)
	p := data.(*models.ProductView)
	assert.Equal(t, "Zip Hoodie", p.Name)
	assert.Equal(t, 12, p.StockQuantity)
	assert.Nil(t, p.UnitsSold)
}

func TestProductStock_ByID(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectQuery(`WHERE p.id = \$1`).
		WithArgs(int64(3)).
		WillReturnRows(sqlmock.NewRows(productCols).
			AddRow(int64(3), "Zip Hoodie", "Outerwear", "Acme", "Men", 45.0, 0))

	data, _, _, err := ProductStock(context.Background(), db, Params{"productId": int64(3)})
	require.NoError(t, err)
	assert.Equal(t, 0, data.(*models.ProductView).StockQuantity)
}

func TestProductStock_EscapesLikeWildcards(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectQuery(`ILIKE`).WithArgs(`%100\%\_wool%`).WillReturnError(sql.ErrNoRows)

	_, _, _, err := ProductStock(context.Background(), db, Params{"name": "100%_wool"})
	assert.ErrorIs(t, err, sql.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProductSearch(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectQuery(`p.name ILIKE \$1 OR p.category ILIKE \$1 OR p.brand ILIKE \$1`).
		WithArgs("%jeans%", MaxSearchResults).
		WillReturnRows(sqlmock.NewRows(productCols).
			AddRow(int64(1), "Slim Jeans", "Jeans", "Levi's", "Men", 70.0, 4).
			AddRow(int64(2), "Wide Jeans", "Jeans", "Levi's", "Women", 80.0, 9))

	data, rows, _, err := ProductSearch(context.Background(), db, Params{"text": "jeans"})
	require.NoError(t, err)
	assert.Equal(t, 2, rows)
	assert.Len(t, data.([]models.ProductView), 2)
}

func TestProductSearch_EmptyResultIsEmptySlice(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectQuery(`ILIKE`).WillReturnRows(sqlmock.NewRows(productCols))

	data, rows, _, err := ProductSearch(context.Background(), db, Params{"text": "zzz"})
	require.NoError(t, err)
	assert.Equal(t, 0, rows)
	assert.NotNil(t, data)
	assert.Empty(t, data.([]models.ProductView))
}

func TestTopProducts(t *testing.T) {
	db, mock := newMock(t)
	cols := append(append([]string{}, productCols...), "units_sold")
	mock.ExpectQuery(`ORDER BY units_sold DESC`).
		WithArgs(CompletedStatus, 5).
		WillReturnRows(sqlmock.NewRows(cols).
			AddRow(int64(9), "Classic Tee", "Tops", "Acme", "Men", 15.0, 30, 120).
			AddRow(int64(4), "Denim Jacket", "Outerwear", "Acme", "Women", 90.0, 3, 80))

	data, rows, _, err := TopProducts(context.Background(), db, Params{"limit": 5})
	require.NoError(t, err)
	assert.Equal(t, 2, rows)

	products := data.([]models.ProductView)
	require.NotNil(t, products[0].UnitsSold)
	assert.Equal(t, 120, *products[0].UnitsSold)
	assert.Equal(t, 80, *products[1].UnitsSold)
}

func TestLowStock(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectQuery(`stock.stock_quantity <= \$1`).
		WithArgs(10).
		WillReturnRows(sqlmock.NewRows(productCols).
			AddRow(int64(4), "Denim Jacket", "Outerwear", "Acme", "Women", 90.0, 0).
			AddRow(int64(8), "Linen Shirt", "Tops", "Acme", "Men", 35.0, 10))

	data, rows, _, err := LowStock(context.Background(), db, Params{"threshold": int64(10)})
	require.NoError(t, err)
	assert.Equal(t, 2, rows)
	for _, p := range data.([]models.ProductView) {
		assert.LessOrEqual(t, p.StockQuantity, 10)
	}
}

func TestProductList_QueryError(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectQuery(`ORDER BY p.id\s+LIMIT \$1`).WithArgs(100).WillReturnError(errors.New("connection reset"))

	_, _, _, err := ProductList(context.Background(), db, Params{"limit": 100})
	assert.EqualError(t, err, "connection reset")
}

func TestProductPage(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectQuery(`WHERE p.id > \$1\s+ORDER BY p.id\s+LIMIT \$2`).WithArgs(int64(300), 2).
		WillReturnRows(sqlmock.NewRows(productCols).
			AddRow(int64(301), "Rain Jacket", "Outerwear", "Acme", "Women", 90.0, 1).
			AddRow(int64(305), "Wool Scarf", "Accessories", "Acme", "Women", 25.0, 0))

	data, rows, _, err := ProductPage(context.Background(), db, Params{"afterId": int64(300), "limit": 2})
	require.NoError(t, err)
	assert.Equal(t, 2, rows)
	assert.Equal(t, int64(305), data.([]models.ProductView)[1].ProductID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProductPage_MissingParam(t *testing.T) {
	db, _ := newMock(t)
	_, _, _, err := ProductPage(context.Background(), db, Params{"limit": 2})
	assert.ErrorIs(t, err, ErrMissingParam)
}

func TestProductsByID(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectQuery(`WHERE p.id = ANY\(\$1\)`).WithArgs(pq.Array([]int64{7, 9})).
		WillReturnRows(sqlmock.NewRows(productCols).
			AddRow(int64(7), "Zip Hoodie", "Tops", "Acme", "Men", 50.0, 0).
			AddRow(int64(9), "Slim Jeans", "Jeans", "Levi's", "Men", 70.0, 12))

	data, rows, _, err := ProductsByID(context.Background(), db, Params{"ids": []int64{7, 9}})
	require.NoError(t, err)
	assert.Equal(t, 2, rows)
	products := data.([]models.ProductView)
	assert.Equal(t, 0, products[0].StockQuantity)
	assert.Equal(t, 12, products[1].StockQuantity)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// ==========================
// Analytics & Conversations
// ==========================

func TestSalesAnalytics(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectQuery(`SUM\(sale_price\)`).
		WithArgs(CompletedStatus).
		WillReturnRows(sqlmock.NewRows([]string{"revenue", "total", "completed", "category"}).
			AddRow(1500.25, 40, 30, "Jeans"))

	data, _, _, err := SalesAnalytics(context.Background(), db, nil)
	require.NoError(t, err)
	a := data.(*models.AnalyticsView)
	assert.Equal(t, 40, a.TotalOrders)
	assert.InDelta(t, 75.0, a.CompletionRate, 0.001)
	assert.Equal(t, "Jeans", a.TopCategory)
}

func TestSaveConversation(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectQuery(`INSERT INTO conversations`).
		WithArgs("conv-1", "hi", "hello!", sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(7)))

	rec := models.ConversationRecord{ConversationID: "conv-1", UserMessage: "hi", AIResponse: "hello!"}
	data, _, _, err := SaveConversation(context.Background(), db, Params{"record": rec})
	require.NoError(t, err)

	saved := data.(*models.ConversationRecord)
	assert.Equal(t, int64(7), saved.ID)
	assert.False(t, saved.CreatedAt.IsZero())
}

func TestRecentConversations(t *testing.T) {
	db, mock := newMock(t)
	now := time.Now().UTC()
	mock.ExpectQuery(`FROM conversations\s+ORDER BY created_at DESC`).
		WithArgs(50).
		WillReturnRows(sqlmock.NewRows([]string{"id", "conversation_id", "user_message", "ai_response", "created_at"}).
			AddRow(int64(2), "b", "q2", "a2", now).
			AddRow(int64(1), "a", "q1", "a1", now.Add(-time.Minute)))

	data, rows, _, err := RecentConversations(context.Background(), db, Params{"limit": 50})
	require.NoError(t, err)
	assert.Equal(t, 2, rows)
	assert.Equal(t, "b", data.([]models.ConversationRecord)[0].ConversationID)
}

func TestExecute_UnknownQueryType(t *testing.T) {
	db, _ := newMock(t)
	_, _, _, err := Execute(context.Background(), db, models.QueryType("nope"), nil)
	assert.ErrorIs(t, err, ErrUnknownQueryType)
}

func TestRegistry_CoversEveryQueryType(t *testing.T) {
	for _, qt := range []models.QueryType{
		models.QueryTypeOrderWithItems, models.QueryTypeProductStock, models.QueryTypeProductSearch,
		models.QueryTypeProductList, models.QueryTypeProductPage, models.QueryTypeProductsByID,
		models.QueryTypeTopProducts, models.QueryTypeLowStock,
		models.QueryTypeSalesAnalytics, models.QueryTypeSaveConversation, models.QueryTypeRecentConversations,
	} {
		_, ok := Registry[qt]
		assert.True(t, ok, string(qt))
	}
}
