package assistant

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"gitlab.com/ravilima/diane/internal/database"
	"gitlab.com/ravilima/diane/internal/gemini"
	"gitlab.com/ravilima/diane/internal/models"
	"gitlab.com/ravilima/diane/internal/repository"
)

// Applier validates extracted candidates against store invariants and
// persists them. Every Apply* method runs inside one transaction: either the
// whole entity lands or nothing does.
type Applier struct {
	db database.DB
}

// NewApplier creates an Applier on the given database handle.
func NewApplier(db database.DB) *Applier {
	return &Applier{db: db}
}

func (a *Applier) withTx(ctx context.Context, fn func(tx pgx.Tx) error) error {
	tx, err := a.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// ApplyTransaction validates and persists a spend. Account resolution: an
// explicit account name must exist; with no name, a single existing account
// is the default and several accounts require clarification.
func (a *Applier) ApplyTransaction(ctx context.Context, data *gemini.TransactionData, today time.Time) (*models.Transaction, error) {
	if !data.Amount.IsPositive() {
		return nil, Validation("O valor precisa ser positivo.")
	}

	txDate := today
	if data.TxDate != "" {
		parsed, err := time.Parse(models.DateLayout, data.TxDate)
		if err != nil {
			return nil, Validation("Não entendi a data %q.", data.TxDate)
		}
		txDate = parsed
	}

	description := strings.TrimSpace(data.Description)
	if description == "" {
		description = "Gasto"
	}

	var created *models.Transaction
	err := a.withTx(ctx, func(tx pgx.Tx) error {
		accounts := repository.NewAccountRepository(tx)
		categories := repository.NewCategoryRepository(tx)
		transactions := repository.NewTransactionRepository(tx)

		accountID, err := resolveAccount(ctx, accounts, data.Account)
		if err != nil {
			return err
		}

		category, err := resolveCategory(ctx, categories, data.Category, description)
		if err != nil {
			return err
		}

		created, err = transactions.Create(ctx, &models.Transaction{
			Amount:      data.Amount,
			Description: description,
			CategoryID:  category.ID,
			AccountID:   accountID,
			TxDate:      txDate,
		})
		return err
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// resolveAccount maps an optional account reference to an account id. Never
// guesses: with several accounts and no explicit name the caller must ask.
func resolveAccount(ctx context.Context, accounts *repository.AccountRepository, name string) (*int, error) {
	name = strings.TrimSpace(name)
	if name != "" {
		account, err := accounts.GetByName(ctx, name)
		if errors.Is(err, repository.ErrNotFound) {
			return nil, Validation("Não encontrei a conta %q. Quer criar essa conta primeiro?", name)
		}
		if err != nil {
			return nil, err
		}
		return &account.ID, nil
	}

	all, err := accounts.GetAll(ctx)
	if err != nil {
		return nil, err
	}
	switch len(all) {
	case 0:
		return nil, nil
	case 1:
		return &all[0].ID, nil
	default:
		names := make([]string, len(all))
		for i, acc := range all {
			names[i] = acc.Name
		}
		return nil, Validation("Você tem mais de uma conta (%s). Em qual delas devo registrar?", strings.Join(names, ", "))
	}
}

// resolveCategory maps the extracted category (or, failing that, the
// description) to an existing category by case-insensitive substring match,
// creating the category only when the extractor named a new one.
func resolveCategory(ctx context.Context, categories *repository.CategoryRepository, name, description string) (*models.Category, error) {
	existing, err := categories.GetAll(ctx)
	if err != nil {
		return nil, err
	}

	for _, hint := range []string{name, description} {
		hint = strings.ToLower(strings.TrimSpace(hint))
		if hint == "" {
			continue
		}
		for i := range existing {
			candidate := strings.ToLower(existing[i].Name)
			if strings.Contains(hint, candidate) || strings.Contains(candidate, hint) {
				return &existing[i], nil
			}
		}
	}

	name = strings.TrimSpace(name)
	if name == "" || len(name) > models.MaxCategoryNameLength {
		name = models.FallbackCategory
	}
	return categories.GetOrCreate(ctx, name)
}

// ShoppingOutcome is the applied result of one shopping operation.
type ShoppingOutcome struct {
	Action    string
	List      *models.ShoppingList
	Added     int
	Checked   []string
	Unmatched []string
	// Reused is true when a create request re-targeted an existing active
	// empty list instead of creating a duplicate.
	Reused bool
}

// ApplyShopping persists one shopping-list operation atomically.
func (a *Applier) ApplyShopping(ctx context.Context, data *gemini.ShoppingData) (*ShoppingOutcome, error) {
	outcome := &ShoppingOutcome{Action: data.Action}

	err := a.withTx(ctx, func(tx pgx.Tx) error {
		lists := repository.NewShoppingRepository(tx)

		switch data.Action {
		case gemini.ShoppingActionCreate:
			return a.applyCreate(ctx, lists, data, outcome)
		case gemini.ShoppingActionAdd:
			return a.applyAdd(ctx, lists, data, outcome)
		case gemini.ShoppingActionCheck:
			return a.applyCheck(ctx, lists, data, outcome)
		default:
			return Validation("Não entendi o que fazer com a lista.")
		}
	})
	if err != nil {
		return nil, err
	}
	return outcome, nil
}

// applyCreate reuses an existing active empty list so repeated "cria uma
// lista" messages do not pile up lists.
func (a *Applier) applyCreate(ctx context.Context, lists *repository.ShoppingRepository, data *gemini.ShoppingData, outcome *ShoppingOutcome) error {
	active, err := lists.GetActive(ctx)
	switch {
	case err == nil && len(active.Items) == 0:
		outcome.Reused = true
		if name := strings.TrimSpace(data.ListName); name != "" && name != active.Name {
			if err := lists.UpdateList(ctx, active.ID, name); err != nil {
				return err
			}
		}
	case err == nil || errors.Is(err, repository.ErrNotFound):
		active, err = lists.CreateActive(ctx, data.ListName)
		if err != nil {
			return err
		}
	default:
		return err
	}

	if len(data.Items) > 0 {
		outcome.Added, err = lists.AddItems(ctx, active.ID, data.Items)
		if err != nil {
			return err
		}
	}

	outcome.List, err = lists.GetByID(ctx, active.ID)
	return err
}

// applyAdd targets the active list, creating one when none exists.
func (a *Applier) applyAdd(ctx context.Context, lists *repository.ShoppingRepository, data *gemini.ShoppingData, outcome *ShoppingOutcome) error {
	if len(data.Items) == 0 {
		return Validation("Quais itens você quer adicionar?")
	}

	active, err := lists.GetActive(ctx)
	if errors.Is(err, repository.ErrNotFound) {
		active, err = lists.CreateActive(ctx, data.ListName)
	}
	if err != nil {
		return err
	}

	outcome.Added, err = lists.AddItems(ctx, active.ID, data.Items)
	if err != nil {
		return err
	}
	outcome.List, err = lists.GetByID(ctx, active.ID)
	return err
}

// applyCheck marks items picked on the active list; unmatched names are
// reported back, never silently dropped.
func (a *Applier) applyCheck(ctx context.Context, lists *repository.ShoppingRepository, data *gemini.ShoppingData, outcome *ShoppingOutcome) error {
	if len(data.Items) == 0 {
		return Validation("Quais itens você pegou?")
	}

	active, err := lists.GetActive(ctx)
	if errors.Is(err, repository.ErrNotFound) {
		return NotFound("Você não tem nenhuma lista ativa no momento.")
	}
	if err != nil {
		return err
	}

	outcome.Checked, outcome.Unmatched, err = lists.CheckItemsByNames(ctx, active.ID, data.Items)
	if err != nil {
		return err
	}
	outcome.List, err = lists.GetByID(ctx, active.ID)
	return err
}

// ApplyPrice persists a price observation and returns the current entries of
// the same product at other markets for the comparison reply.
func (a *Applier) ApplyPrice(ctx context.Context, data *gemini.PriceData) (*models.ProductPriceEntry, []models.ProductPriceEntry, error) {
	if strings.TrimSpace(data.Product) == "" || strings.TrimSpace(data.Market) == "" {
		return nil, nil, Validation("Preciso do produto e do mercado para registrar o preço.")
	}
	if !data.Price.IsPositive() {
		return nil, nil, Validation("O preço precisa ser positivo.")
	}

	var entry *models.ProductPriceEntry
	var others []models.ProductPriceEntry
	err := a.withTx(ctx, func(tx pgx.Tx) error {
		prices := repository.NewPriceRepository(tx)

		var err error
		entry, err = prices.Insert(ctx, data.Product, data.Market, data.Price)
		if err != nil {
			return err
		}

		current, err := prices.CurrentForProduct(ctx, data.Product)
		if err != nil {
			return err
		}
		for _, e := range current {
			if e.ID != entry.ID {
				others = append(others, e)
			}
		}
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	return entry, others, nil
}

// sum of a transaction slice's amounts, used by query handlers.
func sumAmounts(txs []models.Transaction) decimal.Decimal {
	total := decimal.Zero
	for _, tx := range txs {
		total = total.Add(tx.Amount)
	}
	return total
}
