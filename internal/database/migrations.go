package database

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// RunMigrations creates the database schema.
func RunMigrations(ctx context.Context, pool *pgxpool.Pool) error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS accounts (
			id SERIAL PRIMARY KEY,
			name TEXT NOT NULL UNIQUE,
			balance DECIMAL(12, 2) NOT NULL DEFAULT 0,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,

		`CREATE TABLE IF NOT EXISTS categories (
			id SERIAL PRIMARY KEY,
			name TEXT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_categories_name_lower ON categories (LOWER(name))`,

		`CREATE TABLE IF NOT EXISTS transactions (
			id SERIAL PRIMARY KEY,
			amount DECIMAL(12, 2) NOT NULL CHECK (amount > 0),
			description TEXT NOT NULL,
			category_id INTEGER NOT NULL REFERENCES categories(id),
			account_id INTEGER REFERENCES accounts(id),
			tx_date DATE NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE INDEX IF NOT EXISTS idx_transactions_tx_date ON transactions(tx_date)`,
		`CREATE INDEX IF NOT EXISTS idx_transactions_account_id ON transactions(account_id)`,
		`CREATE INDEX IF NOT EXISTS idx_transactions_category_id ON transactions(category_id)`,

		`CREATE TABLE IF NOT EXISTS shopping_lists (
			id SERIAL PRIMARY KEY,
			name TEXT NOT NULL,
			active BOOLEAN NOT NULL DEFAULT FALSE,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_shopping_lists_single_active
			ON shopping_lists(active) WHERE active`,

		`CREATE TABLE IF NOT EXISTS shopping_list_items (
			id SERIAL PRIMARY KEY,
			list_id INTEGER NOT NULL REFERENCES shopping_lists(id) ON DELETE CASCADE,
			name TEXT NOT NULL,
			checked BOOLEAN NOT NULL DEFAULT FALSE,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE INDEX IF NOT EXISTS idx_shopping_list_items_list_id ON shopping_list_items(list_id)`,

		`CREATE TABLE IF NOT EXISTS product_prices (
			id SERIAL PRIMARY KEY,
			product_name TEXT NOT NULL,
			market_name TEXT NOT NULL,
			price DECIMAL(12, 2) NOT NULL CHECK (price > 0),
			recorded_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE INDEX IF NOT EXISTS idx_product_prices_product ON product_prices(LOWER(TRIM(product_name)))`,
		`CREATE INDEX IF NOT EXISTS idx_product_prices_recorded ON product_prices(recorded_at)`,

		`CREATE TABLE IF NOT EXISTS prompt_logs (
			id SERIAL PRIMARY KEY,
			kind TEXT NOT NULL,
			prompt_text TEXT NOT NULL,
			response_text TEXT NOT NULL,
			model TEXT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE INDEX IF NOT EXISTS idx_prompt_logs_created_at ON prompt_logs(created_at)`,
		`CREATE INDEX IF NOT EXISTS idx_prompt_logs_kind ON prompt_logs(kind)`,

		`CREATE TABLE IF NOT EXISTS chat_messages (
			id SERIAL PRIMARY KEY,
			role TEXT NOT NULL,
			content TEXT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
	}

	for i, migration := range migrations {
		if _, err := pool.Exec(ctx, migration); err != nil {
			return fmt.Errorf("migration %d failed: %w", i+1, err)
		}
	}

	return nil
}

// SeedCategories inserts the default transaction categories.
func SeedCategories(ctx context.Context, pool *pgxpool.Pool) error {
	categories := []string{
		"Alimentação",
		"Transporte",
		"Moradia",
		"Saúde",
		"Educação",
		"Lazer",
		"Compras",
		"Serviços",
		"Salário",
		"Investimentos",
		"Outros",
	}

	for _, cat := range categories {
		_, err := pool.Exec(ctx, `
			INSERT INTO categories (name)
			SELECT $1 WHERE NOT EXISTS (
				SELECT 1 FROM categories WHERE LOWER(name) = LOWER($1)
			)
		`, cat)
		if err != nil {
			return fmt.Errorf("failed to seed category %q: %w", cat, err)
		}
	}

	return nil
}
