package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	apperrors "support-chatbot/internal/common/errors"
	"support-chatbot/internal/dataaccess"
	"support-chatbot/internal/models"
)

// productListItem is the catalogue listing shape.
type productListItem struct {
	ProductID     string  `json:"product_id"`
	ProductName   string  `json:"product_name"`
	Category      string  `json:"category"`
	Price         float64 `json:"price"`
	StockQuantity int     `json:"stock_quantity"`
	Description   string  `json:"description"`
}

func (h *Handler) ListProducts(c echo.Context) error {
	products, err := h.data.ListProducts(c.Request().Context(), dataaccess.DefaultProductListLimit)
	if err != nil {
		return h.detail(c, "Failed to retrieve products", err)
	}

	items := make([]productListItem, 0, len(products))
	for _, p := range products {
		items = append(items, productListItem{
			ProductID:     strconv.FormatInt(p.ProductID, 10),
			ProductName:   p.Name,
			Category:      p.Category,
			Price:         p.Price,
			StockQuantity: p.StockQuantity,
			Description:   p.Brand + " - " + p.Department,
		})
	}
	return c.JSON(http.StatusOK, items)
}

func (h *Handler) TopProducts(c echo.Context) error {
	limit, ok := intQuery(c, "limit", dataaccess.DefaultTopProducts)
	if !ok || limit < 1 {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "limit must be a positive integer"})
	}
	if limit > dataaccess.MaxTopProducts {
		limit = dataaccess.MaxTopProducts
	}

	products, err := h.data.TopProducts(c.Request().Context(), limit)
	if err != nil {
		return h.detail(c, "Failed to retrieve top products", err)
	}
	return c.JSON(http.StatusOK, map[string][]models.ProductView{"products": products})
}

func (h *Handler) LowStock(c echo.Context) error {
	threshold, ok := intQuery(c, "threshold", dataaccess.DefaultLowStockThreshold)
	if !ok || threshold < 0 {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "threshold must be a non-negative integer"})
	}

	products, err := h.data.LowStock(c.Request().Context(), threshold)
	if err != nil {
		return h.detail(c, "Failed to retrieve low stock products", err)
	}
	return c.JSON(http.StatusOK, map[string][]models.ProductView{"products": products})
}

func (h *Handler) GetStock(c echo.Context) error {
	product, err := h.data.GetStock(c.Request().Context(), c.Param("name"))
	switch {
	case err == nil:
		return c.JSON(http.StatusOK, product)
	case errors.Is(err, dataaccess.ErrNotFound):
		return h.notFound(c, apperrors.NewProductNotFoundError(c.Param("name")))
	default:
		return h.detail(c, "Failed to retrieve product information", err)
	}
}

func (h *Handler) GetOrder(c echo.Context) error {
	order, err := h.data.GetOrder(c.Request().Context(), c.Param("id"))
	switch {
	case err == nil:
		return c.JSON(http.StatusOK, order)
	case errors.Is(err, dataaccess.ErrNotFound):
		return h.notFound(c, apperrors.NewOrderNotFoundError(c.Param("id")))
	default:
		return h.detail(c, "Failed to retrieve order information", err)
	}
}

func (h *Handler) SalesAnalytics(c echo.Context) error {
	analytics, err := h.data.SalesAnalytics(c.Request().Context())
	if err != nil {
		return h.detail(c, "Failed to retrieve analytics", err)
	}
	return c.JSON(http.StatusOK, analytics)
}

// notFound answers 404 with the error's message as the body.
func (h *Handler) notFound(c echo.Context, stdErr *apperrors.StandardError) error {
	h.logger.Debug("lookup miss", map[string]interface{}{
		"code":    stdErr.Code,
		"details": stdErr.Details,
		"path":    c.Path(),
	})
	return c.JSON(http.StatusNotFound, map[string]string{"error": stdErr.Message})
}

// intQuery reads an integer query parameter, returning def when absent.
func intQuery(c echo.Context, name string, def int) (int, bool) {
	raw := c.QueryParam(name)
	if raw == "" {
		return def, true
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, false
	}
	return v, true
}
