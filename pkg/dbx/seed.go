package dbx

import (
	"context"
	"fmt"
)

// seedStatements create the demo schema and sample rows.
// INSERT OR IGNORE keeps seeding idempotent across restarts.
var seedStatements = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT NOT NULL,
		email TEXT UNIQUE NOT NULL,
		joined_on DATETIME DEFAULT CURRENT_TIMESTAMP,
		active BOOLEAN DEFAULT 1
	)`,
	`CREATE TABLE IF NOT EXISTS products (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT NOT NULL,
		price DECIMAL(10, 2) NOT NULL,
		category TEXT NOT NULL,
		stock_quantity INTEGER DEFAULT 0
	)`,
	`CREATE TABLE IF NOT EXISTS orders (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		user_id INTEGER,
		product_id INTEGER,
		quantity INTEGER NOT NULL,
		total_price DECIMAL(10, 2) NOT NULL,
		order_date DATETIME DEFAULT CURRENT_TIMESTAMP,
		FOREIGN KEY (user_id) REFERENCES users (id),
		FOREIGN KEY (product_id) REFERENCES products (id)
	)`,
	`INSERT OR IGNORE INTO users (id, name, email, active) VALUES
		(1, 'Ada Moreno', 'ada@example.com', 1),
		(2, 'Ben Okafor', 'ben@example.com', 1),
		(3, 'Carla Vast', 'carla@example.com', 0),
		(4, 'Dev Prasad', 'dev@example.com', 1)`,
	`INSERT OR IGNORE INTO products (id, name, price, category, stock_quantity) VALUES
		(1, 'Laptop', 5999.99, 'electronics', 50),
		(2, 'Smartphone', 2999.99, 'electronics', 100),
		(3, 'Office Chair', 899.99, 'furniture', 30),
		(4, 'Coffee Maker', 1299.99, 'appliances', 20)`,
	`INSERT OR IGNORE INTO orders (id, user_id, product_id, quantity, total_price) VALUES
		(1, 1, 1, 1, 5999.99),
		(2, 1, 2, 2, 5999.98),
		(3, 2, 3, 1, 899.99),
		(4, 4, 4, 1, 1299.99)`,
}

// Seed initializes the SQLite database with the demo schema and sample
// data. It is safe to call on every startup.
func (s *SQL) Seed(ctx context.Context) error {
	for _, stmt := range seedStatements {
		if err := s.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("seed database: %w", err)
		}
	}
	return nil
}
