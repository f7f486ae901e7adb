package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"gitlab.com/ravilima/diane/internal/database"
	"gitlab.com/ravilima/diane/internal/models"
)

func TestCategoryRepository_CRUD(t *testing.T) {
	db := database.TestTx(t)
	ctx := context.Background()
	repo := NewCategoryRepository(db)

	t.Run("creates and retrieves category", func(t *testing.T) {
		cat, err := repo.Create(ctx, "Assinaturas")
		require.NoError(t, err)
		require.NotZero(t, cat.ID)

		fetched, err := repo.GetByID(ctx, cat.ID)
		require.NoError(t, err)
		require.Equal(t, "Assinaturas", fetched.Name)
	})

	t.Run("name lookup is case-insensitive", func(t *testing.T) {
		fetched, err := repo.GetByName(ctx, "alimentação")
		require.NoError(t, err)
		require.Equal(t, "Alimentação", fetched.Name)
	})

	t.Run("get or create reuses existing", func(t *testing.T) {
		first, err := repo.GetOrCreate(ctx, "Pets")
		require.NoError(t, err)
		second, err := repo.GetOrCreate(ctx, "pets")
		require.NoError(t, err)
		require.Equal(t, first.ID, second.ID)
	})

	t.Run("empty name falls back", func(t *testing.T) {
		cat, err := repo.GetOrCreate(ctx, "   ")
		require.NoError(t, err)
		require.Equal(t, models.FallbackCategory, cat.Name)
	})

	t.Run("seeded categories present", func(t *testing.T) {
		cats, err := repo.GetAll(ctx)
		require.NoError(t, err)

		names := make(map[string]bool, len(cats))
		for _, cat := range cats {
			names[cat.Name] = true
		}
		for _, seed := range []string{"Alimentação", "Transporte", "Salário", "Outros"} {
			require.True(t, names[seed], "missing seed %q", seed)
		}
	})
}
