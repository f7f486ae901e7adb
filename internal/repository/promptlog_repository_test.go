package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"gitlab.com/ravilima/diane/internal/database"
	"gitlab.com/ravilima/diane/internal/models"
)

func TestPromptLogRepository(t *testing.T) {
	db := database.TestTx(t)
	ctx := context.Background()
	repo := NewPromptLogRepository(db)

	kinds := []string{
		models.PromptKindExtractionTx,
		models.PromptKindExtractionShopping,
		models.PromptKindChat,
	}
	for i, kind := range kinds {
		require.NoError(t, repo.Insert(ctx, kind, "prompt", "response", "gemini-2.5-flash"), "insert %d", i)
	}

	t.Run("list newest first", func(t *testing.T) {
		logs, err := repo.List(ctx, 10, 0, "")
		require.NoError(t, err)
		require.Len(t, logs, 3)
		require.Equal(t, models.PromptKindChat, logs[0].Kind)
	})

	t.Run("filter by kind", func(t *testing.T) {
		logs, err := repo.List(ctx, 10, 0, models.PromptKindExtractionTx)
		require.NoError(t, err)
		require.Len(t, logs, 1)
		require.Equal(t, "gemini-2.5-flash", logs[0].Model)
	})

	t.Run("offset pages through", func(t *testing.T) {
		logs, err := repo.List(ctx, 10, 2, "")
		require.NoError(t, err)
		require.Len(t, logs, 1)
	})
}

func TestChatRepository(t *testing.T) {
	db := database.TestTx(t)
	ctx := context.Background()
	repo := NewChatRepository(db)

	require.NoError(t, repo.Append(ctx, models.RoleUser, "oi"))
	require.NoError(t, repo.Append(ctx, models.RoleAssistant, "Oi! Como posso ajudar?"))
	require.NoError(t, repo.Append(ctx, models.RoleUser, "quanto gastei?"))

	t.Run("recent returns chronological order", func(t *testing.T) {
		messages, err := repo.Recent(ctx, 10)
		require.NoError(t, err)
		require.Len(t, messages, 3)
		require.Equal(t, "oi", messages[0].Content)
		require.Equal(t, "quanto gastei?", messages[2].Content)
	})

	t.Run("limit keeps the newest", func(t *testing.T) {
		messages, err := repo.Recent(ctx, 2)
		require.NoError(t, err)
		require.Len(t, messages, 2)
		require.Equal(t, models.RoleAssistant, messages[0].Role)
	})
}
