package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"gitlab.com/ravilima/diane/internal/database"
	"gitlab.com/ravilima/diane/internal/models"
)

// AccountRepository handles account database operations.
type AccountRepository struct {
	db database.PGXDB
}

// NewAccountRepository creates a new AccountRepository.
func NewAccountRepository(db database.PGXDB) *AccountRepository {
	return &AccountRepository{db: db}
}

// GetAll retrieves all accounts ordered by name.
func (r *AccountRepository) GetAll(ctx context.Context) ([]models.Account, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, name, balance, created_at FROM accounts ORDER BY name
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query accounts: %w", err)
	}
	defer rows.Close()

	var accounts []models.Account
	for rows.Next() {
		var acc models.Account
		if err := rows.Scan(&acc.ID, &acc.Name, &acc.Balance, &acc.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan account: %w", err)
		}
		accounts = append(accounts, acc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating accounts: %w", err)
	}
	return accounts, nil
}

// GetByID retrieves an account by ID.
func (r *AccountRepository) GetByID(ctx context.Context, id int) (*models.Account, error) {
	var acc models.Account
	err := r.db.QueryRow(ctx, `
		SELECT id, name, balance, created_at FROM accounts WHERE id = $1
	`, id).Scan(&acc.ID, &acc.Name, &acc.Balance, &acc.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("account %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get account: %w", err)
	}
	return &acc, nil
}

// GetByName retrieves an account by name (case-insensitive).
func (r *AccountRepository) GetByName(ctx context.Context, name string) (*models.Account, error) {
	var acc models.Account
	err := r.db.QueryRow(ctx, `
		SELECT id, name, balance, created_at FROM accounts WHERE LOWER(name) = LOWER($1)
	`, name).Scan(&acc.ID, &acc.Name, &acc.Balance, &acc.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("account %q: %w", name, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get account by name: %w", err)
	}
	return &acc, nil
}

// Create adds a new account with the given initial balance.
func (r *AccountRepository) Create(ctx context.Context, name string, balance decimal.Decimal) (*models.Account, error) {
	existing, err := r.GetByName(ctx, name)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return nil, err
	}
	if existing != nil {
		return nil, fmt.Errorf("account %q already exists: %w", name, ErrConflict)
	}

	var acc models.Account
	err = r.db.QueryRow(ctx, `
		INSERT INTO accounts (name, balance) VALUES ($1, $2)
		RETURNING id, name, balance, created_at
	`, name, balance).Scan(&acc.ID, &acc.Name, &acc.Balance, &acc.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create account: %w", err)
	}
	return &acc, nil
}

// GetOrCreate returns the account with the given name, creating it with a
// zero balance when it does not exist yet.
func (r *AccountRepository) GetOrCreate(ctx context.Context, name string) (*models.Account, error) {
	acc, err := r.GetByName(ctx, name)
	if err == nil {
		return acc, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, err
	}
	return r.Create(ctx, name, decimal.Zero)
}

// Update modifies an account's name and/or stored balance. Nil fields are
// left untouched.
func (r *AccountRepository) Update(ctx context.Context, id int, name *string, balance *decimal.Decimal) (*models.Account, error) {
	if name != nil {
		var otherID int
		err := r.db.QueryRow(ctx, `
			SELECT id FROM accounts WHERE LOWER(name) = LOWER($1) AND id != $2
		`, *name, id).Scan(&otherID)
		if err == nil {
			return nil, fmt.Errorf("another account is already named %q: %w", *name, ErrConflict)
		}
		if !errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("failed to check account name: %w", err)
		}
	}

	var acc models.Account
	err := r.db.QueryRow(ctx, `
		UPDATE accounts SET
			name = COALESCE($2, name),
			balance = COALESCE($3, balance)
		WHERE id = $1
		RETURNING id, name, balance, created_at
	`, id, name, balance).Scan(&acc.ID, &acc.Name, &acc.Balance, &acc.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("account %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update account: %w", err)
	}
	return &acc, nil
}

// Delete removes an account. Accounts that still have transactions cannot be
// deleted.
func (r *AccountRepository) Delete(ctx context.Context, id int) error {
	var txID int
	err := r.db.QueryRow(ctx, `
		SELECT id FROM transactions WHERE account_id = $1 LIMIT 1
	`, id).Scan(&txID)
	if err == nil {
		return fmt.Errorf("account %d still has transactions: %w", id, ErrConflict)
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("failed to check account transactions: %w", err)
	}

	tag, err := r.db.Exec(ctx, `DELETE FROM accounts WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete account: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("account %d: %w", id, ErrNotFound)
	}
	return nil
}

// Count returns the number of accounts. The assistant uses it to decide
// whether an unspecified account can default to the only one there is.
func (r *AccountRepository) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM accounts`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count accounts: %w", err)
	}
	return n, nil
}
