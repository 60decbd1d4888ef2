// internal/common/database/postgres.go
package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"support-chatbot/internal/common/config"

	_ "github.com/lib/pq"
)

// PostgresClient wraps the SQL database connection
type PostgresClient struct {
	DB *sql.DB
}

// NewPostgres creates a new PostgreSQL client
func NewPostgres(cfg config.PostgresConfig) (*PostgresClient, error) {
	db, err := sql.Open("postgres", cfg.GetDSN())
	if err != nil {
		return nil, fmt.Errorf("failed to open postgres: %w", err)
	}

	db.SetMaxOpenConns(cfg.MaxConnections)
	db.SetMaxIdleConns(cfg.MaxIdle)
	db.SetConnMaxLifetime(5 * time.Minute)
	db.SetConnMaxIdleTime(5 * time.Minute)

	return &PostgresClient{DB: db}, nil
}

// NewPostgresFromDB wraps an already opened handle.
func NewPostgresFromDB(db *sql.DB) *PostgresClient {
	return &PostgresClient{DB: db}
}

// schema mirrors the thelook e-commerce tables plus the conversation log.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS products (
		id INTEGER PRIMARY KEY,
		cost NUMERIC(10,2),
		category TEXT,
		name TEXT,
		brand TEXT,
		retail_price NUMERIC(10,2),
		department TEXT,
		sku TEXT,
		distribution_center_id INTEGER
	)`,
	`CREATE INDEX IF NOT EXISTS idx_products_name ON products (name)`,
	`CREATE TABLE IF NOT EXISTS orders (
		order_id INTEGER PRIMARY KEY,
		user_id INTEGER,
		status TEXT,
		gender TEXT,
		created_at TIMESTAMPTZ,
		returned_at TIMESTAMPTZ,
		shipped_at TIMESTAMPTZ,
		delivered_at TIMESTAMPTZ,
		num_of_item INTEGER
	)`,
	`CREATE TABLE IF NOT EXISTS order_items (
		id INTEGER PRIMARY KEY,
		order_id INTEGER REFERENCES orders(order_id),
		user_id INTEGER,
		product_id INTEGER REFERENCES products(id),
		inventory_item_id INTEGER,
		status TEXT,
		created_at TIMESTAMPTZ,
		shipped_at TIMESTAMPTZ,
		delivered_at TIMESTAMPTZ,
		returned_at TIMESTAMPTZ,
		sale_price NUMERIC(10,2)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_order_items_order_id ON order_items (order_id)`,
	`CREATE TABLE IF NOT EXISTS inventory_items (
		id INTEGER PRIMARY KEY,
		product_id INTEGER REFERENCES products(id),
		created_at TIMESTAMPTZ,
		sold_at TIMESTAMPTZ,
		cost NUMERIC(10,2),
		product_category TEXT,
		product_name TEXT,
		product_brand TEXT,
		product_retail_price NUMERIC(10,2),
		product_department TEXT,
		product_sku TEXT,
		product_distribution_center_id INTEGER
	)`,
	`CREATE INDEX IF NOT EXISTS idx_inventory_items_product_id ON inventory_items (product_id)`,
	`CREATE TABLE IF NOT EXISTS conversations (
		id SERIAL PRIMARY KEY,
		conversation_id TEXT UNIQUE NOT NULL,
		user_message TEXT NOT NULL,
		ai_response TEXT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
}

// Migrate creates any missing tables. Existing tables are left untouched.
func (c *PostgresClient) Migrate(ctx context.Context) error {
	tx, err := c.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin migration: %w", err)
	}
	for _, stmt := range schema {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("apply migration: %w", err)
		}
	}
	return tx.Commit()
}

// Ping tests the database connection
func (c *PostgresClient) Ping(ctx context.Context) error {
	return c.DB.PingContext(ctx)
}

// Close closes the database connection
func (c *PostgresClient) Close() error {
	if c.DB != nil {
		return c.DB.Close()
	}
	return nil
}

// GetDB returns the underlying *sql.DB
func (c *PostgresClient) GetDB() *sql.DB {
	return c.DB
}
