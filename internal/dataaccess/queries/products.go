// internal/dataaccess/queries/products.go
package queries

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/lib/pq"

	"support-chatbot/internal/models"
)

// MaxSearchResults caps free-text product search.
const MaxSearchResults = 10

// CompletedStatus marks a fulfilled order or order item.
const CompletedStatus = "Complete"

// productColumns is shared by every product query so scanProducts can read them.
const productColumns = `
	p.id,
	COALESCE(p.name, ''),
	COALESCE(p.category, ''),
	COALESCE(p.brand, ''),
	COALESCE(p.department, ''),
	COALESCE(p.retail_price, 0),
	(SELECT COUNT(*) FROM inventory_items ii WHERE ii.product_id = p.id AND ii.sold_at IS NULL)`

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// containsPattern builds an ILIKE pattern matching text anywhere.
func containsPattern(text string) string {
	return "%" + likeEscaper.Replace(text) + "%"
}

// ProductStock finds one product by productId (int64) or by name substring (name).
func ProductStock(ctx context.Context, db *sql.DB, params Params) (interface{}, int, int64, error) {
	start := time.Now()

	var row *sql.Row
	if id, ok := params["productId"].(int64); ok {
		row = db.QueryRowContext(ctx, `SELECT `+productColumns+`
			FROM products p
			WHERE p.id = $1`, id)
	} else {
		name, err := stringParam(params, "name")
		if err != nil {
			return nil, 0, 0, err
		}
		row = db.QueryRowContext(ctx, `SELECT `+productColumns+`
			FROM products p
			WHERE p.name ILIKE $1
			ORDER BY p.id
			LIMIT 1`, containsPattern(name))
	}

	var p models.ProductView
	if err := row.Scan(&p.ProductID, &p.Name, &p.Category, &p.Brand, &p.Department, &p.Price, &p.StockQuantity); err != nil {
		return nil, 0, 0, err
	}
	return &p, 1, time.Since(start).Milliseconds(), nil
}

// ProductSearch matches text against name, category and brand. params: text.
func ProductSearch(ctx context.Context, db *sql.DB, params Params) (interface{}, int, int64, error) {
	text, err := stringParam(params, "text")
	if err != nil {
		return nil, 0, 0, err
	}

	start := time.Now()
	rows, err := db.QueryContext(ctx, `SELECT `+productColumns+`
		FROM products p
		WHERE p.name ILIKE $1 OR p.category ILIKE $1 OR p.brand ILIKE $1
		ORDER BY p.id
		LIMIT $2`, containsPattern(text), MaxSearchResults)
	if err != nil {
		return nil, 0, 0, err
	}
	defer rows.Close()

	products, err := scanProducts(rows, false)
	if err != nil {
		return nil, 0, 0, err
	}
	if len(products) > MaxSearchResults {
		products = products[:MaxSearchResults]
	}
	return products, len(products), time.Since(start).Milliseconds(), nil
}

// ProductList returns the first products by id. params: limit.
func ProductList(ctx context.Context, db *sql.DB, params Params) (interface{}, int, int64, error) {
	limit, err := intParam(params, "limit")
	if err != nil {
		return nil, 0, 0, err
	}

	start := time.Now()
	rows, err := db.QueryContext(ctx, `SELECT `+productColumns+`
		FROM products p
		ORDER BY p.id
		LIMIT $1`, limit)
	if err != nil {
		return nil, 0, 0, err
	}
	defer rows.Close()

	products, err := scanProducts(rows, false)
	if err != nil {
		return nil, 0, 0, err
	}
	return products, len(products), time.Since(start).Milliseconds(), nil
}

// ProductPage returns up to limit products with id greater than afterId, by id.
// Callers page through the whole table by passing the last id they saw.
func ProductPage(ctx context.Context, db *sql.DB, params Params) (interface{}, int, int64, error) {
	afterID, err := int64Param(params, "afterId")
	if err != nil {
		return nil, 0, 0, err
	}
	limit, err := intParam(params, "limit")
	if err != nil {
		return nil, 0, 0, err
	}

	start := time.Now()
	rows, err := db.QueryContext(ctx, `SELECT `+productColumns+`
		FROM products p
		WHERE p.id > $1
		ORDER BY p.id
		LIMIT $2`, afterID, limit)
	if err != nil {
		return nil, 0, 0, err
	}
	defer rows.Close()

	products, err := scanProducts(rows, false)
	if err != nil {
		return nil, 0, 0, err
	}
	return products, len(products), time.Since(start).Milliseconds(), nil
}

// ProductsByID loads the given products with live stock. params: ids ([]int64).
func ProductsByID(ctx context.Context, db *sql.DB, params Params) (interface{}, int, int64, error) {
	ids, ok := params["ids"].([]int64)
	if !ok {
		return nil, 0, 0, fmt.Errorf("%w: ids", ErrMissingParam)
	}

	start := time.Now()
	rows, err := db.QueryContext(ctx, `SELECT `+productColumns+`
		FROM products p
		WHERE p.id = ANY($1)
		ORDER BY p.id`, pq.Array(ids))
	if err != nil {
		return nil, 0, 0, err
	}
	defer rows.Close()

	products, err := scanProducts(rows, false)
	if err != nil {
		return nil, 0, 0, err
	}
	return products, len(products), time.Since(start).Milliseconds(), nil
}

// TopProducts ranks products by completed order items. params: limit.
func TopProducts(ctx context.Context, db *sql.DB, params Params) (interface{}, int, int64, error) {
	limit, err := intParam(params, "limit")
	if err != nil {
		return nil, 0, 0, err
	}

	start := time.Now()
	rows, err := db.QueryContext(ctx, `SELECT `+productColumns+`,
			COUNT(oi.id) AS units_sold
		FROM products p
		JOIN order_items oi ON oi.product_id = p.id
		WHERE oi.status = $1
		GROUP BY p.id
		ORDER BY units_sold DESC, p.id
		LIMIT $2`, CompletedStatus, limit)
	if err != nil {
		return nil, 0, 0, err
	}
	defer rows.Close()

	products, err := scanProducts(rows, true)
	if err != nil {
		return nil, 0, 0, err
	}
	return products, len(products), time.Since(start).Milliseconds(), nil
}

// LowStock returns products whose unsold inventory count is at or below threshold.
func LowStock(ctx context.Context, db *sql.DB, params Params) (interface{}, int, int64, error) {
	threshold, err := intParam(params, "threshold")
	if err != nil {
		return nil, 0, 0, err
	}

	start := time.Now()
	rows, err := db.QueryContext(ctx, `SELECT * FROM (
			SELECT `+productColumns+` AS stock_quantity
			FROM products p
		) stock
		WHERE stock.stock_quantity <= $1
		ORDER BY stock.stock_quantity, 1`, threshold)
	if err != nil {
		return nil, 0, 0, err
	}
	defer rows.Close()

	products, err := scanProducts(rows, false)
	if err != nil {
		return nil, 0, 0, err
	}
	return products, len(products), time.Since(start).Milliseconds(), nil
}

func scanProducts(rows *sql.Rows, withUnitsSold bool) ([]models.ProductView, error) {
	products := []models.ProductView{}
	for rows.Next() {
		var p models.ProductView
		dest := []interface{}{&p.ProductID, &p.Name, &p.Category, &p.Brand, &p.Department, &p.Price, &p.StockQuantity}
		var sold int
		if withUnitsSold {
			dest = append(dest, &sold)
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, err
		}
		if withUnitsSold {
			p.UnitsSold = &sold
		}
		products = append(products, p)
	}
	return products, rows.Err()
}
