package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"support-chatbot/internal/chat"
	"support-chatbot/internal/common/config"
	"support-chatbot/internal/common/logger"
	"support-chatbot/internal/dataaccess"
	"support-chatbot/internal/models"
)

// ==========================
// Test Helper Functions
// ==========================

type fakeReplier struct {
	resp *models.ChatResponse
	err  error
	got  models.ChatRequest
}

func (f *fakeReplier) Reply(ctx context.Context, req models.ChatRequest) (*models.ChatResponse, error) {
	f.got = req
	return f.resp, f.err
}

type fakeData struct {
	dataaccess.DataAccess
	order     *models.OrderView
	product   *models.ProductView
	products  []models.ProductView
	analytics *models.AnalyticsView
	records   []models.ConversationRecord
	err       error

	gotLimit int
	gotName  string
}

func (f *fakeData) GetOrder(ctx context.Context, id string) (*models.OrderView, error) {
	return f.order, f.err
}

func (f *fakeData) GetStock(ctx context.Context, name string) (*models.ProductView, error) {
	f.gotName = name
	return f.product, f.err
}

func (f *fakeData) ListProducts(ctx context.Context, limit int) ([]models.ProductView, error) {
	f.gotLimit = limit
	return f.products, f.err
}

func (f *fakeData) TopProducts(ctx context.Context, limit int) ([]models.ProductView, error) {
	f.gotLimit = limit
	return f.products, f.err
}

func (f *fakeData) LowStock(ctx context.Context, threshold int) ([]models.ProductView, error) {
	f.gotLimit = threshold
	return f.products, f.err
}

func (f *fakeData) SalesAnalytics(ctx context.Context) (*models.AnalyticsView, error) {
	return f.analytics, f.err
}

func (f *fakeData) RecentConversations(ctx context.Context, limit int) ([]models.ConversationRecord, error) {
	f.gotLimit = limit
	return f.records, f.err
}

func newTestServer(t *testing.T, r Replier, d dataaccess.DataAccess, checks map[string]ReadinessCheck) *echo.Echo {
	log := logger.NewTestLogger(t)
	return NewServer(config.HTTPConfig{AllowedOrigins: []string{"http://localhost:3000"}}, NewHandler(r, d, checks, log), log)
}

func do(e *echo.Echo, method, target, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

// ==========================
// Chat
// ==========================

func TestChat_Success(t *testing.T) {
	ts := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	r := &fakeReplier{resp: &models.ChatResponse{
		Response: "It shipped.", ConversationID: "c1", Timestamp: ts, Intent: models.IntentOrderStatus,
	}}
	e := echo.New()
	h := NewHandler(r, &fakeData{}, nil, logger.NewTestLogger(t))

	req := httptest.NewRequest(http.MethodPost, "/api/chat", bytes.NewBufferString(`{"message":"order 12345","conversation_id":"c1"}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	require.NoError(t, h.Chat(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"response":"It shipped.","conversation_id":"c1","timestamp":"2024-05-01T12:00:00Z"}`, rec.Body.String())
	assert.Equal(t, models.ChatRequest{Message: "order 12345", ConversationID: "c1"}, r.got)
}

func TestChat_Errors(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		replyErr error
		wantCode int
		wantKey  string
	}{
		{"missing message", `{}`, nil, http.StatusBadRequest, "error"},
		{"empty message", `{"message":""}`, nil, http.StatusBadRequest, "error"},
		{"malformed json", `{"message":`, nil, http.StatusBadRequest, "error"},
		{"blank message", `{"message":"   "}`, chat.ErrEmptyMessage, http.StatusBadRequest, "error"},
		{"duplicate conversation", `{"message":"hi","conversation_id":"c1"}`,
			fmt.Errorf("%w: %w", chat.ErrPersistFailed, dataaccess.ErrConversationExists), http.StatusConflict, "error"},
		{"persist failure", `{"message":"hi"}`,
			fmt.Errorf("%w: %w", chat.ErrPersistFailed, dataaccess.ErrLookupFailed), http.StatusInternalServerError, "detail"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newTestServer(t, &fakeReplier{err: tt.replyErr}, &fakeData{}, nil)
			rec := do(e, http.MethodPost, "/api/chat", tt.body)

			assert.Equal(t, tt.wantCode, rec.Code)
			var body map[string]interface{}
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Contains(t, body, tt.wantKey)
		})
	}
}

// ==========================
// Catalogue
// ==========================

func TestGetOrder(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode int
		wantBody string
	}{
		{"found", nil, http.StatusOK, ""},
		{"not found", dataaccess.ErrNotFound, http.StatusNotFound, `{"error":"Order not found"}`},
		{"failure", dataaccess.ErrLookupFailed, http.StatusInternalServerError, `{"detail":"Failed to retrieve order information"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := &fakeData{order: &models.OrderView{OrderID: 12345, Status: "Shipped"}, err: tt.err}
			rec := do(newTestServer(t, &fakeReplier{}, d, nil), http.MethodGet, "/api/orders/12345", "")

			assert.Equal(t, tt.wantCode, rec.Code)
			if tt.wantBody != "" {
				assert.JSONEq(t, tt.wantBody, rec.Body.String())
			}
		})
	}
}

func TestGetStock(t *testing.T) {
	d := &fakeData{product: &models.ProductView{ProductID: 3, Name: "Zip Hoodie", StockQuantity: 4}}
	rec := do(newTestServer(t, &fakeReplier{}, d, nil), http.MethodGet, "/api/products/stock/hoodie", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "hoodie", d.gotName)
	assert.Contains(t, rec.Body.String(), `"stock_quantity":4`)

	d.err = dataaccess.ErrNotFound
	rec = do(newTestServer(t, &fakeReplier{}, d, nil), http.MethodGet, "/api/products/stock/cape", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestListProducts(t *testing.T) {
	d := &fakeData{products: []models.ProductView{
		{ProductID: 1, Name: "Slim Jeans", Category: "Jeans", Brand: "Levi's", Department: "Men", Price: 70, StockQuantity: 4},
	}}
	rec := do(newTestServer(t, &fakeReplier{}, d, nil), http.MethodGet, "/api/products", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 100, d.gotLimit)
	assert.JSONEq(t, `[{"product_id":"1","product_name":"Slim Jeans","category":"Jeans","price":70,"stock_quantity":4,"description":"Levi's - Men"}]`, rec.Body.String())
}

func TestTopAndLowStockProducts(t *testing.T) {
	tests := []struct {
		name      string
		target    string
		wantCode  int
		wantParam int
	}{
		{"top default", "/api/products/top", http.StatusOK, 5},
		{"top explicit", "/api/products/top?limit=3", http.StatusOK, 3},
		{"top invalid", "/api/products/top?limit=abc", http.StatusBadRequest, 0},
		{"top zero", "/api/products/top?limit=0", http.StatusBadRequest, 0},
		{"top clamped", "/api/products/top?limit=100000", http.StatusOK, 100},
		{"low default", "/api/products/low-stock", http.StatusOK, 10},
		{"low explicit", "/api/products/low-stock?threshold=2", http.StatusOK, 2},
		{"low negative", "/api/products/low-stock?threshold=-1", http.StatusBadRequest, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := &fakeData{products: []models.ProductView{}}
			rec := do(newTestServer(t, &fakeReplier{}, d, nil), http.MethodGet, tt.target, "")

			assert.Equal(t, tt.wantCode, rec.Code)
			assert.Equal(t, tt.wantParam, d.gotLimit)
			if tt.wantCode == http.StatusOK {
				assert.JSONEq(t, `{"products":[]}`, rec.Body.String())
			}
		})
	}
}

func TestSalesAnalytics(t *testing.T) {
	d := &fakeData{analytics: &models.AnalyticsView{TotalOrders: 4, CompletedOrders: 1, CompletionRate: 25, TopCategory: "Jeans"}}
	rec := do(newTestServer(t, &fakeReplier{}, d, nil), http.MethodGet, "/api/analytics/sales", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"completion_rate":25`)

	d.err = errors.New("db down")
	rec = do(newTestServer(t, &fakeReplier{}, d, nil), http.MethodGet, "/api/analytics/sales", "")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"detail":"Failed to retrieve analytics"}`, rec.Body.String())
}

func TestListConversations(t *testing.T) {
	d := &fakeData{records: []models.ConversationRecord{{ID: 2, ConversationID: "b"}, {ID: 1, ConversationID: "a"}}}
	rec := do(newTestServer(t, &fakeReplier{}, d, nil), http.MethodGet, "/api/conversations", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 50, d.gotLimit)

	var got []models.ConversationRecord
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, "b", got[0].ConversationID)
}

// ==========================
// Service endpoints
// ==========================

func TestRootHealthAndMetrics(t *testing.T) {
	e := newTestServer(t, &fakeReplier{}, &fakeData{}, nil)

	rec := do(e, http.MethodGet, "/", "")
	assert.JSONEq(t, `{"message":"E-commerce Chatbot API is running!"}`, rec.Body.String())

	rec = do(e, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = do(e, http.MethodGet, "/metrics", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "chatbot_http_requests_total")
}

func TestReady(t *testing.T) {
	ok := func(ctx context.Context) error { return nil }
	down := func(ctx context.Context) error { return errors.New("connection refused") }

	rec := do(newTestServer(t, &fakeReplier{}, &fakeData{}, map[string]ReadinessCheck{"postgres": ok}), http.MethodGet, "/ready", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = do(newTestServer(t, &fakeReplier{}, &fakeData{}, map[string]ReadinessCheck{"postgres": ok, "redis": down}), http.MethodGet, "/ready", "")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), "connection refused")
}

func TestCORS(t *testing.T) {
	e := newTestServer(t, &fakeReplier{}, &fakeData{}, nil)

	req := httptest.NewRequest(http.MethodOptions, "/api/chat", nil)
	req.Header.Set(echo.HeaderOrigin, "http://localhost:3000")
	req.Header.Set(echo.HeaderAccessControlRequestMethod, http.MethodPost)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, "http://localhost:3000", rec.Header().Get(echo.HeaderAccessControlAllowOrigin))
}
