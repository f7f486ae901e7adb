package assistant

import (
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func TestParseAmount(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
		ok       bool
	}{
		{"integer", "gastei 50 no mercado", "50", true},
		{"comma decimal", "paguei 5,90 no café", "5.90", true},
		{"dot decimal", "5.90 de pão", "5.90", true},
		{"currency prefix", "R$ 120 de luz", "120", true},
		{"reais suffix", "30 reais de uber", "30", true},
		{"thousands", "paguei 1.234,56 de aluguel", "1234.56", true},
		{"no amount", "bom dia", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			amount, ok := ParseAmount(tt.input)
			require.Equal(t, tt.ok, ok)
			if tt.ok {
				require.True(t, amount.Equal(decimal.RequireFromString(tt.expected)),
					"got %s want %s", amount, tt.expected)
			}
		})
	}
}

func TestParseTransaction(t *testing.T) {
	t.Run("spend with description", func(t *testing.T) {
		draft, ok := ParseTransaction("Gastei 50 no mercado")
		require.True(t, ok)
		require.True(t, draft.Amount.Equal(decimal.NewFromInt(50)))
		require.Equal(t, "Mercado", draft.Description)
	})

	t.Run("currency and suffix stripped", func(t *testing.T) {
		draft, ok := ParseTransaction("paguei R$ 35,50 de farmácia hoje")
		require.True(t, ok)
		require.True(t, draft.Amount.Equal(decimal.RequireFromString("35.50")))
		require.Equal(t, "Farmácia", draft.Description)
	})

	t.Run("amount only is incomplete", func(t *testing.T) {
		_, ok := ParseTransaction("gastei 50")
		require.False(t, ok)
	})

	t.Run("no amount", func(t *testing.T) {
		_, ok := ParseTransaction("gastei muito esse mês")
		require.False(t, ok)
	})
}

func TestSplitItems(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected []string
	}{
		{"commas", "leite, pão, café", []string{"leite", "pão", "café"}},
		{"connective e", "leite e pão", []string{"leite", "pão"}},
		{"mixed", "leite, pão; café e açúcar", []string{"leite", "pão", "café", "açúcar"}},
		{"dedup case insensitive", "Leite, leite e LEITE", []string{"Leite"}},
		{"empty parts skipped", "leite, , pão", []string{"leite", "pão"}},
		{"single", "arroz", []string{"arroz"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.expected, SplitItems(tt.input))
		})
	}
}

func TestParseItems(t *testing.T) {
	t.Run("add with list suffix", func(t *testing.T) {
		items, ok := ParseItems("adiciona leite, pão e café na lista")
		require.True(t, ok)
		require.Equal(t, []string{"leite", "pão", "café"}, items)
	})

	t.Run("check with article", func(t *testing.T) {
		items, ok := ParseItems("peguei o leite")
		require.True(t, ok)
		require.Equal(t, []string{"leite"}, items)
	})

	t.Run("no verb", func(t *testing.T) {
		_, ok := ParseItems("leite e pão")
		require.False(t, ok)
	})
}

func TestParsePriceReport(t *testing.T) {
	t.Run("basic shape", func(t *testing.T) {
		draft, ok := ParsePriceReport("leite piracanjuba no guanabara 5,90")
		require.True(t, ok)
		require.Equal(t, "leite piracanjuba", draft.Product)
		require.Equal(t, "guanabara", draft.Market)
		require.True(t, draft.Price.Equal(decimal.RequireFromString("5.90")))
	})

	t.Run("feminine preposition and filler", func(t *testing.T) {
		draft, ok := ParsePriceReport("café na venda do zé tá R$ 12,50")
		require.True(t, ok)
		require.Equal(t, "café", draft.Product)
		require.True(t, draft.Price.Equal(decimal.RequireFromString("12.50")))
	})

	t.Run("registra prefix", func(t *testing.T) {
		draft, ok := ParsePriceReport("registra o preço do arroz no assai 22,90")
		require.True(t, ok)
		require.Equal(t, "arroz", draft.Product)
		require.Equal(t, "assai", draft.Market)
	})

	t.Run("missing price", func(t *testing.T) {
		_, ok := ParsePriceReport("leite no guanabara")
		require.False(t, ok)
	})
}

func FuzzParseAmount(f *testing.F) {
	f.Add("gastei 50 no mercado")
	f.Add("R$ 1.234,56")
	f.Add("5,90 reais")
	f.Add("")
	f.Add("R$ -10")

	f.Fuzz(func(t *testing.T, input string) {
		amount, ok := ParseAmount(input)
		if ok && !amount.IsPositive() {
			t.Errorf("ParseAmount(%q) returned non-positive amount %s", input, amount)
		}
	})
}

func FuzzSplitItems(f *testing.F) {
	f.Add("leite, pão e café")
	f.Add(";;;")
	f.Add("a e a e A")

	f.Fuzz(func(t *testing.T, input string) {
		items := SplitItems(input)
		seen := make(map[string]bool)
		for _, item := range items {
			if strings.TrimSpace(item) == "" {
				t.Errorf("SplitItems(%q) returned blank item", input)
			}
			key := strings.ToLower(item)
			if seen[key] {
				t.Errorf("SplitItems(%q) returned duplicate %q", input, item)
			}
			seen[key] = true
		}
	})
}
