package repository

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"gitlab.com/ravilima/diane/internal/database"
)

func TestPriceRepository(t *testing.T) {
	db := database.TestTx(t)
	ctx := context.Background()
	repo := NewPriceRepository(db)

	t.Run("insert validates input", func(t *testing.T) {
		_, err := repo.Insert(ctx, "", "guanabara", decimal.NewFromInt(5))
		require.ErrorIs(t, err, ErrConflict)

		_, err = repo.Insert(ctx, "leite", "guanabara", decimal.Zero)
		require.ErrorIs(t, err, ErrConflict)
	})

	t.Run("current keeps only the latest entry per pair", func(t *testing.T) {
		_, err := repo.Insert(ctx, "leite", "guanabara", decimal.RequireFromString("5.90"))
		require.NoError(t, err)
		newer, err := repo.Insert(ctx, "Leite", "Guanabara", decimal.RequireFromString("6.20"))
		require.NoError(t, err)
		_, err = repo.Insert(ctx, "leite", "pague menos", decimal.RequireFromString("4.50"))
		require.NoError(t, err)

		current, err := repo.Current(ctx)
		require.NoError(t, err)
		require.Len(t, current, 2)
		for _, e := range current {
			if e.ID == newer.ID {
				require.True(t, e.Price.Equal(decimal.RequireFromString("6.20")))
			}
		}
	})

	t.Run("current for product matches case-insensitively", func(t *testing.T) {
		entries, err := repo.CurrentForProduct(ctx, " LEITE ")
		require.NoError(t, err)
		require.Len(t, entries, 2)
	})

	t.Run("update keeps price positive", func(t *testing.T) {
		entry, err := repo.Insert(ctx, "café", "assai", decimal.RequireFromString("12.00"))
		require.NoError(t, err)

		price := decimal.RequireFromString("11.50")
		require.NoError(t, repo.Update(ctx, entry.ID, nil, &price))

		fetched, err := repo.GetByID(ctx, entry.ID)
		require.NoError(t, err)
		require.True(t, fetched.Price.Equal(price))

		bad := decimal.Zero
		require.ErrorIs(t, repo.Update(ctx, entry.ID, nil, &bad), ErrConflict)
	})

	t.Run("delete removes one entry", func(t *testing.T) {
		entry, err := repo.Insert(ctx, "arroz", "assai", decimal.RequireFromString("22.00"))
		require.NoError(t, err)

		require.NoError(t, repo.Delete(ctx, entry.ID))
		require.ErrorIs(t, repo.Delete(ctx, entry.ID), ErrNotFound)
	})
}
