package stats

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"gitlab.com/ravilima/diane/internal/models"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestWithStats(t *testing.T) {
	accounts := []models.Account{
		{ID: 1, Name: "Nubank", Balance: dec("1000.00")},
		{ID: 2, Name: "Dinheiro", Balance: dec("200.00")},
	}
	spending := map[int]decimal.Decimal{1: dec("300.00")}

	out := WithStats(accounts, spending)
	require.Len(t, out, 2)
	require.True(t, out[0].EffectiveBalance.Equal(dec("700.00")))
	require.True(t, out[1].Spending.IsZero())
	require.True(t, out[1].EffectiveBalance.Equal(dec("200.00")))
}

func TestWithStatsProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		n := rapid.IntRange(0, 10).Draw(t, "accounts")
		accounts := make([]models.Account, n)
		spending := make(map[int]decimal.Decimal)
		for i := range accounts {
			accounts[i] = models.Account{
				ID:      i + 1,
				Balance: decimal.New(rapid.Int64Range(-1_000_000, 1_000_000).Draw(t, "balance"), -2),
			}
			if rapid.Bool().Draw(t, "hasSpending") {
				spending[i+1] = decimal.New(rapid.Int64Range(0, 1_000_000).Draw(t, "spent"), -2)
			}
		}

		out := WithStats(accounts, spending)
		for i, acc := range out {
			if !acc.EffectiveBalance.Equal(acc.Balance.Sub(acc.Spending)) {
				t.Fatalf("account %d: effective %s != balance %s - spending %s",
					i, acc.EffectiveBalance, acc.Balance, acc.Spending)
			}
		}
	})
}

func TestMonthlyOrdering(t *testing.T) {
	txs := []models.Transaction{
		{Amount: dec("30.00"), CategoryName: "Transporte"},
		{Amount: dec("100.00"), CategoryName: "Alimentação"},
		{Amount: dec("30.00"), CategoryName: "Lazer"},
		{Amount: dec("50.00"), CategoryName: "Alimentação"},
	}

	spending := Monthly(2026, 8, txs)
	require.True(t, spending.Total.Equal(dec("210.00")))
	require.Equal(t, "Alimentação", spending.ByCategory[0].CategoryName)
	// Equal totals break ties by name ascending.
	require.Equal(t, "Lazer", spending.ByCategory[1].CategoryName)
	require.Equal(t, "Transporte", spending.ByCategory[2].CategoryName)
}

func TestMonthlyProperty(t *testing.T) {
	categories := []string{"Alimentação", "Transporte", "Lazer", "Moradia", "Outros"}

	rapid.Check(t, func(t *rapid.T) {
		n := rapid.IntRange(0, 50).Draw(t, "transactions")
		txs := make([]models.Transaction, n)
		for i := range txs {
			txs[i] = models.Transaction{
				Amount:       decimal.New(rapid.Int64Range(1, 100_000).Draw(t, "amount"), -2),
				CategoryName: rapid.SampledFrom(categories).Draw(t, "category"),
			}
		}

		spending := Monthly(2026, 8, txs)

		sum := decimal.Zero
		for _, ct := range spending.ByCategory {
			sum = sum.Add(ct.Total)
		}
		if !spending.Total.Equal(sum) {
			t.Fatalf("total %s != sum of categories %s", spending.Total, sum)
		}

		for i := 1; i < len(spending.ByCategory); i++ {
			prev, cur := spending.ByCategory[i-1], spending.ByCategory[i]
			if prev.Total.LessThan(cur.Total) {
				t.Fatalf("categories not descending: %s < %s", prev.Total, cur.Total)
			}
			if prev.Total.Equal(cur.Total) && prev.CategoryName > cur.CategoryName {
				t.Fatalf("tie not broken by name: %q after %q", cur.CategoryName, prev.CategoryName)
			}
		}
	})
}

func TestFlagBestPrices(t *testing.T) {
	t.Run("single minimum", func(t *testing.T) {
		entries := []models.ProductPriceEntry{
			{ID: 1, ProductName: "Leite", MarketName: "guanabara", Price: dec("5.90")},
			{ID: 2, ProductName: "leite", MarketName: "pague menos", Price: dec("4.50")},
			{ID: 3, ProductName: "café", MarketName: "assai", Price: dec("12.00")},
		}

		flagged := FlagBestPrices(entries)
		require.False(t, flagged[0].IsBestPrice)
		require.True(t, flagged[1].IsBestPrice)
		require.True(t, flagged[2].IsBestPrice, "sole market is best by definition")
	})

	t.Run("ties all flagged", func(t *testing.T) {
		entries := []models.ProductPriceEntry{
			{ID: 1, ProductName: "arroz", MarketName: "a", Price: dec("20.00")},
			{ID: 2, ProductName: "arroz", MarketName: "b", Price: dec("20.00")},
			{ID: 3, ProductName: "arroz", MarketName: "c", Price: dec("25.00")},
		}

		flagged := FlagBestPrices(entries)
		require.True(t, flagged[0].IsBestPrice)
		require.True(t, flagged[1].IsBestPrice)
		require.False(t, flagged[2].IsBestPrice)
	})
}

func TestFlagBestPricesProperty(t *testing.T) {
	products := []string{"leite", "café", "arroz"}

	rapid.Check(t, func(t *rapid.T) {
		n := rapid.IntRange(1, 20).Draw(t, "entries")
		entries := make([]models.ProductPriceEntry, n)
		for i := range entries {
			entries[i] = models.ProductPriceEntry{
				ID:          i + 1,
				ProductName: rapid.SampledFrom(products).Draw(t, "product"),
				MarketName:  rapid.StringMatching(`m[0-9]{1,2}`).Draw(t, "market"),
				Price:       decimal.New(rapid.Int64Range(1, 10_000).Draw(t, "price"), -2),
			}
		}

		flagged := FlagBestPrices(entries)

		min := make(map[string]decimal.Decimal)
		for _, e := range flagged {
			key := normalizeName(e.ProductName)
			if cur, ok := min[key]; !ok || e.Price.LessThan(cur) {
				min[key] = e.Price
			}
		}
		for _, e := range flagged {
			isMin := e.Price.Equal(min[normalizeName(e.ProductName)])
			if e.IsBestPrice != isMin {
				t.Fatalf("entry %d: flag %v but minimum match is %v (price %s)",
					e.ID, e.IsBestPrice, isMin, e.Price)
			}
		}
	})
}

func TestGroupByMarket(t *testing.T) {
	now := time.Now()
	entries := []models.ProductPriceEntry{
		{ID: 1, ProductName: "leite", MarketName: "Guanabara", Price: dec("5.90"), RecordedAt: now},
		{ID: 2, ProductName: "café", MarketName: "assai", Price: dec("12.00"), RecordedAt: now},
		{ID: 3, ProductName: "arroz", MarketName: "guanabara", Price: dec("22.00"), RecordedAt: now},
	}

	groups := GroupByMarket(entries)
	require.Len(t, groups, 2, "market grouping is case-insensitive")
	require.Equal(t, "assai", groups[0].MarketName)
	require.Len(t, groups[1].Items, 2)
	// Items sorted by product name.
	require.Equal(t, "arroz", groups[1].Items[0].ProductName)
}
