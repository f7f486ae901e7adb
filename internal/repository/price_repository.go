package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"gitlab.com/ravilima/diane/internal/database"
	"gitlab.com/ravilima/diane/internal/models"
)

// PriceRepository handles product price entries. Entries are a history: the
// most recent row per (product, market) pair is the current price.
type PriceRepository struct {
	db database.PGXDB
}

// NewPriceRepository creates a new PriceRepository.
func NewPriceRepository(db database.PGXDB) *PriceRepository {
	return &PriceRepository{db: db}
}

// Insert records a new price observation.
func (r *PriceRepository) Insert(ctx context.Context, product, market string, price decimal.Decimal) (*models.ProductPriceEntry, error) {
	product = strings.TrimSpace(product)
	market = strings.TrimSpace(market)
	if product == "" || market == "" {
		return nil, fmt.Errorf("product and market are required: %w", ErrConflict)
	}
	if !price.IsPositive() {
		return nil, fmt.Errorf("price must be positive: %w", ErrConflict)
	}

	var entry models.ProductPriceEntry
	err := r.db.QueryRow(ctx, `
		INSERT INTO product_prices (product_name, market_name, price)
		VALUES ($1, $2, $3)
		RETURNING id, product_name, market_name, price, recorded_at
	`, product, market, price).Scan(&entry.ID, &entry.ProductName, &entry.MarketName, &entry.Price, &entry.RecordedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to insert product price: %w", err)
	}
	return &entry, nil
}

// Current returns the most recent entry per (product, market) pair,
// case-insensitively normalized. Best-price flags are left to the stats
// package.
func (r *PriceRepository) Current(ctx context.Context) ([]models.ProductPriceEntry, error) {
	rows, err := r.db.Query(ctx, `
		SELECT DISTINCT ON (LOWER(TRIM(product_name)), LOWER(TRIM(market_name)))
		       id, product_name, market_name, price, recorded_at
		FROM product_prices
		ORDER BY LOWER(TRIM(product_name)), LOWER(TRIM(market_name)), recorded_at DESC, id DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query current prices: %w", err)
	}
	defer rows.Close()

	return scanPriceEntries(rows)
}

// CurrentForProduct returns the current entry per market for one product.
func (r *PriceRepository) CurrentForProduct(ctx context.Context, product string) ([]models.ProductPriceEntry, error) {
	rows, err := r.db.Query(ctx, `
		SELECT DISTINCT ON (LOWER(TRIM(market_name)))
		       id, product_name, market_name, price, recorded_at
		FROM product_prices
		WHERE LOWER(TRIM(product_name)) = LOWER(TRIM($1))
		ORDER BY LOWER(TRIM(market_name)), recorded_at DESC, id DESC
	`, product)
	if err != nil {
		return nil, fmt.Errorf("failed to query prices for product: %w", err)
	}
	defer rows.Close()

	return scanPriceEntries(rows)
}

// GetByID retrieves one price entry.
func (r *PriceRepository) GetByID(ctx context.Context, id int) (*models.ProductPriceEntry, error) {
	var entry models.ProductPriceEntry
	err := r.db.QueryRow(ctx, `
		SELECT id, product_name, market_name, price, recorded_at
		FROM product_prices WHERE id = $1
	`, id).Scan(&entry.ID, &entry.ProductName, &entry.MarketName, &entry.Price, &entry.RecordedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("price entry %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get price entry: %w", err)
	}
	return &entry, nil
}

// Update modifies an entry's product name and/or price. Nil fields are left
// untouched.
func (r *PriceRepository) Update(ctx context.Context, id int, product *string, price *decimal.Decimal) error {
	if product != nil {
		trimmed := strings.TrimSpace(*product)
		if trimmed == "" {
			return fmt.Errorf("product name must not be empty: %w", ErrConflict)
		}
		product = &trimmed
	}
	if price != nil && !price.IsPositive() {
		return fmt.Errorf("price must be positive: %w", ErrConflict)
	}

	tag, err := r.db.Exec(ctx, `
		UPDATE product_prices SET
			product_name = COALESCE($2, product_name),
			price = COALESCE($3, price)
		WHERE id = $1
	`, id, product, price)
	if err != nil {
		return fmt.Errorf("failed to update price entry: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("price entry %d: %w", id, ErrNotFound)
	}
	return nil
}

// Delete removes one price entry row.
func (r *PriceRepository) Delete(ctx context.Context, id int) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM product_prices WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete price entry: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("price entry %d: %w", id, ErrNotFound)
	}
	return nil
}

func scanPriceEntries(rows pgx.Rows) ([]models.ProductPriceEntry, error) {
	var entries []models.ProductPriceEntry
	for rows.Next() {
		var entry models.ProductPriceEntry
		if err := rows.Scan(&entry.ID, &entry.ProductName, &entry.MarketName, &entry.Price, &entry.RecordedAt); err != nil {
			return nil, fmt.Errorf("failed to scan price entry: %w", err)
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating price entries: %w", err)
	}
	return entries, nil
}
