package assistant

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"gitlab.com/ravilima/diane/internal/gemini"
	"gitlab.com/ravilima/diane/internal/models"
	"gitlab.com/ravilima/diane/internal/stats"
)

// FormatBRL renders a decimal in Brazilian currency notation: R$ 1.234,56.
func FormatBRL(d decimal.Decimal) string {
	s := d.StringFixed(2)
	negative := strings.HasPrefix(s, "-")
	s = strings.TrimPrefix(s, "-")

	intPart := s[:len(s)-3]
	fracPart := s[len(s)-2:]

	var b strings.Builder
	for i, digit := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte('.')
		}
		b.WriteRune(digit)
	}

	sign := ""
	if negative {
		sign = "-"
	}
	return fmt.Sprintf("%sR$ %s,%s", sign, b.String(), fracPart)
}

func transactionReply(tx *models.Transaction) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Anotado! %s de %s na categoria %s",
		tx.Description, FormatBRL(tx.Amount), tx.CategoryName)
	if tx.AccountName != nil {
		fmt.Fprintf(&b, " pela conta %s", *tx.AccountName)
	}
	fmt.Fprintf(&b, ", em %s.", tx.TxDate.Format("02/01/2006"))
	return b.String()
}

// listBlock renders the list items as a checklist.
func listBlock(list *models.ShoppingList) string {
	if len(list.Items) == 0 {
		return "(lista vazia)"
	}
	var b strings.Builder
	for i, item := range list.Items {
		if i > 0 {
			b.WriteByte('\n')
		}
		mark := " "
		if item.Checked {
			mark = "x"
		}
		fmt.Fprintf(&b, "- [%s] %s", mark, item.Name)
	}
	return b.String()
}

func shoppingReply(outcome *ShoppingOutcome) string {
	list := outcome.List
	var b strings.Builder

	switch outcome.Action {
	case gemini.ShoppingActionCreate:
		if outcome.Reused {
			fmt.Fprintf(&b, "Sua lista \"%s\" já estava pronta e vazia, vamos usar ela!", list.Name)
		} else {
			fmt.Fprintf(&b, "Criei a lista \"%s\" e ela já está ativa.", list.Name)
		}
		if outcome.Added > 0 {
			fmt.Fprintf(&b, " Adicionei %d %s.", outcome.Added, plural(outcome.Added, "item", "itens"))
		}
	case gemini.ShoppingActionAdd:
		fmt.Fprintf(&b, "Adicionei %d %s na lista \"%s\".",
			outcome.Added, plural(outcome.Added, "item", "itens"), list.Name)
	case gemini.ShoppingActionCheck:
		if len(outcome.Checked) > 0 {
			fmt.Fprintf(&b, "Marquei: %s.", strings.Join(outcome.Checked, ", "))
		}
		if len(outcome.Unmatched) > 0 {
			if b.Len() > 0 {
				b.WriteByte(' ')
			}
			fmt.Fprintf(&b, "Não achei na lista: %s.", strings.Join(outcome.Unmatched, ", "))
		}
	}

	if len(list.Items) > 0 {
		fmt.Fprintf(&b, "\n\n%s", listBlock(list))
	}
	return b.String()
}

func listQueryReply(list *models.ShoppingList) string {
	return fmt.Sprintf("Sua lista \"%s\":\n\n%s", list.Name, listBlock(list))
}

// priceReply confirms the recorded price and compares it with the current
// price of the same product at other markets.
func priceReply(entry *models.ProductPriceEntry, others []models.ProductPriceEntry) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Registrei: %s no %s por %s.",
		entry.ProductName, entry.MarketName, FormatBRL(entry.Price))

	for _, other := range others {
		diff := percentDiff(entry.Price, other.Price)
		switch {
		case entry.Price.LessThan(other.Price):
			fmt.Fprintf(&b, "\nEstá %s%% mais barato que no %s (%s).",
				diff, other.MarketName, FormatBRL(other.Price))
		case entry.Price.GreaterThan(other.Price):
			fmt.Fprintf(&b, "\nNo %s está mais barato: %s (%s%% de diferença).",
				other.MarketName, FormatBRL(other.Price), diff)
		default:
			fmt.Fprintf(&b, "\nMesmo preço do %s.", other.MarketName)
		}
	}
	return b.String()
}

// percentDiff is the absolute difference between a and b relative to the
// larger value, with one fraction digit.
func percentDiff(a, b decimal.Decimal) string {
	high := decimal.Max(a, b)
	if high.IsZero() {
		return "0,0"
	}
	pct := a.Sub(b).Abs().Div(high).Mul(decimal.NewFromInt(100))
	return strings.ReplaceAll(pct.StringFixed(1), ".", ",")
}

func priceQueryReply(entries []models.ProductPriceEntry) string {
	if len(entries) == 0 {
		return "Ainda não tenho preços registrados. Me manda algo como \"leite no guanabara 5,90\" que eu anoto!"
	}

	var b strings.Builder
	b.WriteString("Melhores preços que eu conheço:")
	for _, e := range entries {
		if !e.IsBestPrice {
			continue
		}
		fmt.Fprintf(&b, "\n- %s: %s no %s", e.ProductName, FormatBRL(e.Price), e.MarketName)
	}
	return b.String()
}

// productPricesReply lists the current price of one product per market, best
// prices first.
func productPricesReply(entries []models.ProductPriceEntry) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Preços de %s:", entries[0].ProductName)
	for _, e := range entries {
		fmt.Fprintf(&b, "\n- %s: %s", e.MarketName, FormatBRL(e.Price))
		if e.IsBestPrice {
			b.WriteString(" (melhor preço)")
		}
	}
	return b.String()
}

func statsReply(spending stats.MonthlySpending) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Em %02d/%d você gastou %s.",
		spending.Month, spending.Year, FormatBRL(spending.Total))
	if len(spending.ByCategory) > 0 {
		b.WriteString("\n\nPor categoria:")
		for _, ct := range spending.ByCategory {
			fmt.Fprintf(&b, "\n- %s: %s", ct.CategoryName, FormatBRL(ct.Total))
		}
	}
	return b.String()
}

func balanceReply(accounts []models.AccountWithStats) string {
	if len(accounts) == 0 {
		return "Você ainda não tem nenhuma conta cadastrada."
	}
	var b strings.Builder
	b.WriteString("Seus saldos:")
	for _, acc := range accounts {
		fmt.Fprintf(&b, "\n- %s: %s (saldo efetivo %s)",
			acc.Name, FormatBRL(acc.Balance), FormatBRL(acc.EffectiveBalance))
	}
	return b.String()
}

// apology phrases a model failure without breaking the conversation.
func apology(errType ErrorType) string {
	switch errType {
	case ErrorQuota:
		return "Desculpa, atingi meu limite de uso da IA por agora. Tenta de novo daqui a pouco?"
	case ErrorNetwork:
		return "Desculpa, tive um problema de conexão. Pode tentar de novo?"
	default:
		return "Desculpa, não consegui processar sua mensagem agora. Pode tentar de novo?"
	}
}

func plural(n int, singular, pluralForm string) string {
	if n == 1 {
		return singular
	}
	return pluralForm
}
