package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"gitlab.com/ravilima/diane/internal/database"
	"gitlab.com/ravilima/diane/internal/models"
)

// TransactionRepository handles transaction database operations. Transactions
// are immutable once created; there is no update or delete.
type TransactionRepository struct {
	db database.PGXDB
}

// NewTransactionRepository creates a new TransactionRepository.
func NewTransactionRepository(db database.PGXDB) *TransactionRepository {
	return &TransactionRepository{db: db}
}

// Create inserts a new transaction and returns it hydrated with category and
// account names.
func (r *TransactionRepository) Create(ctx context.Context, tx *models.Transaction) (*models.Transaction, error) {
	var id int
	err := r.db.QueryRow(ctx, `
		INSERT INTO transactions (amount, description, category_id, account_id, tx_date)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`, tx.Amount, tx.Description, tx.CategoryID, tx.AccountID, tx.TxDate).Scan(&id)
	if err != nil {
		return nil, fmt.Errorf("failed to create transaction: %w", err)
	}
	return r.GetByID(ctx, id)
}

// GetByID retrieves a transaction by ID with category and account names.
func (r *TransactionRepository) GetByID(ctx context.Context, id int) (*models.Transaction, error) {
	var tx models.Transaction
	err := r.db.QueryRow(ctx, `
		SELECT t.id, t.amount, t.description, t.category_id, c.name,
		       t.account_id, a.name, t.tx_date, t.created_at
		FROM transactions t
		JOIN categories c ON c.id = t.category_id
		LEFT JOIN accounts a ON a.id = t.account_id
		WHERE t.id = $1
	`, id).Scan(&tx.ID, &tx.Amount, &tx.Description, &tx.CategoryID, &tx.CategoryName,
		&tx.AccountID, &tx.AccountName, &tx.TxDate, &tx.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("transaction %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get transaction: %w", err)
	}
	return &tx, nil
}

// List retrieves transactions ordered by date descending, optionally filtered
// to one calendar month. Year and month filter together; a nil pair means no
// filter.
func (r *TransactionRepository) List(ctx context.Context, limit int, year, month *int) ([]models.Transaction, error) {
	query := `
		SELECT t.id, t.amount, t.description, t.category_id, c.name,
		       t.account_id, a.name, t.tx_date, t.created_at
		FROM transactions t
		JOIN categories c ON c.id = t.category_id
		LEFT JOIN accounts a ON a.id = t.account_id`
	args := []any{}

	if year != nil && month != nil {
		start, end := monthBounds(*year, *month)
		query += ` WHERE t.tx_date >= $1 AND t.tx_date < $2
		ORDER BY t.tx_date DESC, t.id DESC LIMIT $3`
		args = append(args, start, end, limit)
	} else {
		query += ` ORDER BY t.tx_date DESC, t.id DESC LIMIT $1`
		args = append(args, limit)
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query transactions: %w", err)
	}
	defer rows.Close()

	return scanTransactions(rows)
}

// ListMonth retrieves every transaction whose tx_date falls in the given
// calendar month. The stats aggregators consume this.
func (r *TransactionRepository) ListMonth(ctx context.Context, year, month int) ([]models.Transaction, error) {
	start, end := monthBounds(year, month)
	rows, err := r.db.Query(ctx, `
		SELECT t.id, t.amount, t.description, t.category_id, c.name,
		       t.account_id, a.name, t.tx_date, t.created_at
		FROM transactions t
		JOIN categories c ON c.id = t.category_id
		LEFT JOIN accounts a ON a.id = t.account_id
		WHERE t.tx_date >= $1 AND t.tx_date < $2
		ORDER BY t.tx_date DESC, t.id DESC
	`, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to query month transactions: %w", err)
	}
	defer rows.Close()

	return scanTransactions(rows)
}

// SpendingByAccount returns the summed transaction amounts per account ID.
// Transactions without an account are excluded.
func (r *TransactionRepository) SpendingByAccount(ctx context.Context) (map[int]decimal.Decimal, error) {
	rows, err := r.db.Query(ctx, `
		SELECT account_id, COALESCE(SUM(amount), 0)
		FROM transactions
		WHERE account_id IS NOT NULL
		GROUP BY account_id
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query spending by account: %w", err)
	}
	defer rows.Close()

	spending := make(map[int]decimal.Decimal)
	for rows.Next() {
		var accountID int
		var total decimal.Decimal
		if err := rows.Scan(&accountID, &total); err != nil {
			return nil, fmt.Errorf("failed to scan spending row: %w", err)
		}
		spending[accountID] = total
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating spending rows: %w", err)
	}
	return spending, nil
}

// monthBounds returns the half-open [start, end) date range for a calendar
// month.
func monthBounds(year, month int) (time.Time, time.Time) {
	start := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	return start, start.AddDate(0, 1, 0)
}

// scanTransactions scans joined transaction rows.
func scanTransactions(rows pgx.Rows) ([]models.Transaction, error) {
	var txs []models.Transaction
	for rows.Next() {
		var tx models.Transaction
		if err := rows.Scan(&tx.ID, &tx.Amount, &tx.Description, &tx.CategoryID, &tx.CategoryName,
			&tx.AccountID, &tx.AccountName, &tx.TxDate, &tx.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}
		txs = append(txs, tx)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating transactions: %w", err)
	}
	return txs, nil
}
