// Package stats computes derived figures over the domain entities: effective
// balances, monthly category totals, and best-price flags. Everything here is
// a pure function over slices, recomputed on each query; the corpus is small
// and correctness beats caching.
package stats

import (
	"sort"
	"strings"

	"github.com/shopspring/decimal"
	"gitlab.com/ravilima/diane/internal/models"
)

// CategoryTotal is one category's summed spending for a month.
type CategoryTotal struct {
	CategoryName string
	Total        decimal.Decimal
}

// MonthlySpending is the aggregate of one calendar month.
type MonthlySpending struct {
	Year       int
	Month      int
	Total      decimal.Decimal
	ByCategory []CategoryTotal
}

// WithStats pairs each account with its spending and effective balance
// (stored balance minus the sum of its transaction amounts).
func WithStats(accounts []models.Account, spending map[int]decimal.Decimal) []models.AccountWithStats {
	out := make([]models.AccountWithStats, 0, len(accounts))
	for _, acc := range accounts {
		spent, ok := spending[acc.ID]
		if !ok {
			spent = decimal.Zero
		}
		out = append(out, models.AccountWithStats{
			Account:          acc,
			Spending:         spent,
			EffectiveBalance: acc.Balance.Sub(spent),
		})
	}
	return out
}

// Monthly sums the given transactions into a per-category breakdown.
// Categories are ordered by descending total; ties break by name ascending.
// The caller is expected to pass only transactions of the (year, month).
func Monthly(year, month int, txs []models.Transaction) MonthlySpending {
	byName := make(map[string]decimal.Decimal)
	for _, tx := range txs {
		byName[tx.CategoryName] = byName[tx.CategoryName].Add(tx.Amount)
	}

	spending := MonthlySpending{Year: year, Month: month, Total: decimal.Zero}
	for name, total := range byName {
		spending.ByCategory = append(spending.ByCategory, CategoryTotal{CategoryName: name, Total: total})
		spending.Total = spending.Total.Add(total)
	}

	sort.Slice(spending.ByCategory, func(i, j int) bool {
		a, b := spending.ByCategory[i], spending.ByCategory[j]
		if !a.Total.Equal(b.Total) {
			return a.Total.GreaterThan(b.Total)
		}
		return a.CategoryName < b.CategoryName
	})
	return spending
}

// FlagBestPrices sets IsBestPrice on every entry whose price is the minimum
// among the current entries for its product (case-insensitive product match).
// Exact ties all carry the flag; the user should see every equally good
// market. The input must already be one current entry per (product, market)
// pair.
func FlagBestPrices(entries []models.ProductPriceEntry) []models.ProductPriceEntry {
	minByProduct := make(map[string]decimal.Decimal)
	for _, e := range entries {
		key := normalizeName(e.ProductName)
		min, ok := minByProduct[key]
		if !ok || e.Price.LessThan(min) {
			minByProduct[key] = e.Price
		}
	}

	out := make([]models.ProductPriceEntry, len(entries))
	for i, e := range entries {
		e.IsBestPrice = e.Price.Equal(minByProduct[normalizeName(e.ProductName)])
		out[i] = e
	}
	return out
}

// MarketGroup collects a market's current entries.
type MarketGroup struct {
	MarketName string
	Items      []models.ProductPriceEntry
}

// GroupByMarket arranges flagged entries per market, markets and items both
// sorted case-insensitively by name.
func GroupByMarket(entries []models.ProductPriceEntry) []MarketGroup {
	byMarket := make(map[string]*MarketGroup)
	var order []string
	for _, e := range entries {
		key := normalizeName(e.MarketName)
		group, ok := byMarket[key]
		if !ok {
			group = &MarketGroup{MarketName: strings.TrimSpace(e.MarketName)}
			byMarket[key] = group
			order = append(order, key)
		}
		group.Items = append(group.Items, e)
	}

	sort.Slice(order, func(i, j int) bool { return order[i] < order[j] })

	groups := make([]MarketGroup, 0, len(order))
	for _, key := range order {
		group := byMarket[key]
		sort.Slice(group.Items, func(i, j int) bool {
			return normalizeName(group.Items[i].ProductName) < normalizeName(group.Items[j].ProductName)
		})
		groups = append(groups, *group)
	}
	return groups
}

func normalizeName(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
