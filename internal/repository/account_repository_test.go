package repository

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"gitlab.com/ravilima/diane/internal/database"
	"gitlab.com/ravilima/diane/internal/models"
)

func TestAccountRepository_CRUD(t *testing.T) {
	db := database.TestTx(t)
	ctx := context.Background()
	repo := NewAccountRepository(db)

	t.Run("creates and retrieves account", func(t *testing.T) {
		acc, err := repo.Create(ctx, "Nubank", decimal.NewFromInt(1000))
		require.NoError(t, err)
		require.NotZero(t, acc.ID)
		require.True(t, acc.Balance.Equal(decimal.NewFromInt(1000)))

		fetched, err := repo.GetByID(ctx, acc.ID)
		require.NoError(t, err)
		require.Equal(t, "Nubank", fetched.Name)
	})

	t.Run("name lookup is case-insensitive", func(t *testing.T) {
		acc, err := repo.Create(ctx, "Itaú", decimal.Zero)
		require.NoError(t, err)

		fetched, err := repo.GetByName(ctx, "itaú")
		require.NoError(t, err)
		require.Equal(t, acc.ID, fetched.ID)
	})

	t.Run("duplicate name conflicts", func(t *testing.T) {
		_, err := repo.Create(ctx, "Dinheiro", decimal.Zero)
		require.NoError(t, err)

		_, err = repo.Create(ctx, "dinheiro", decimal.Zero)
		require.ErrorIs(t, err, ErrConflict)
	})

	t.Run("updates name and balance independently", func(t *testing.T) {
		acc, err := repo.Create(ctx, "Carteira", decimal.NewFromInt(100))
		require.NoError(t, err)

		name := "Carteira Nova"
		updated, err := repo.Update(ctx, acc.ID, &name, nil)
		require.NoError(t, err)
		require.Equal(t, "Carteira Nova", updated.Name)
		require.True(t, updated.Balance.Equal(decimal.NewFromInt(100)))

		balance := decimal.NewFromInt(250)
		updated, err = repo.Update(ctx, acc.ID, nil, &balance)
		require.NoError(t, err)
		require.Equal(t, "Carteira Nova", updated.Name)
		require.True(t, updated.Balance.Equal(balance))
	})

	t.Run("rename onto existing name conflicts", func(t *testing.T) {
		_, err := repo.Create(ctx, "Conta A", decimal.Zero)
		require.NoError(t, err)
		b, err := repo.Create(ctx, "Conta B", decimal.Zero)
		require.NoError(t, err)

		name := "conta a"
		_, err = repo.Update(ctx, b.ID, &name, nil)
		require.ErrorIs(t, err, ErrConflict)
	})

	t.Run("delete refuses while transactions exist", func(t *testing.T) {
		acc, err := repo.Create(ctx, "Com Gastos", decimal.Zero)
		require.NoError(t, err)

		category, err := NewCategoryRepository(db).GetOrCreate(ctx, "Outros")
		require.NoError(t, err)
		tx, err := NewTransactionRepository(db).Create(ctx, &models.Transaction{
			Amount:      decimal.NewFromInt(10),
			Description: "Teste",
			CategoryID:  category.ID,
			AccountID:   &acc.ID,
			TxDate:      time.Now(),
		})
		require.NoError(t, err)
		require.NotNil(t, tx)

		require.ErrorIs(t, repo.Delete(ctx, acc.ID), ErrConflict)
	})

	t.Run("delete missing account", func(t *testing.T) {
		require.ErrorIs(t, repo.Delete(ctx, 999999), ErrNotFound)
	})
}
