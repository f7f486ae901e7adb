package assistant

import (
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

// amountPattern matches Brazilian monetary amounts: "50", "5,90", "5.90",
// "1.234,56", optionally prefixed with R$ or suffixed with "reais".
var amountPattern = regexp.MustCompile(`(?i)(?:r\$\s*)?(\d{1,3}(?:\.\d{3})+,\d{2}|\d+(?:[.,]\d{1,2})?)(?:\s*reais)?`)

// pricePattern captures "<product> no|na <market> <price>" with optional
// connective words before the price.
var pricePattern = regexp.MustCompile(`(?i)^(?:registra(?:r)?\s+)?(?:o\s+)?(?:preço\s+d[eoa]\s+|preco\s+d[eoa]\s+)?(.+?)\s+n[oa]\s+(.+?)\s+(?:tá\s+|ta\s+|está\s+|esta\s+|custa\s+|custando\s+|por\s+|a\s+)?(?:r\$\s*)?(\d{1,3}(?:\.\d{3})+,\d{2}|\d+(?:[.,]\d{1,2})?)\s*(?:reais)?\s*$`)

// itemSplitPattern splits enumerations on commas, semicolons, and the
// connective "e".
var itemSplitPattern = regexp.MustCompile(`(?i)\s*(?:,|;|\se\s)\s*`)

// parseDecimalBR converts a Brazilian-formatted number ("1.234,56", "5,90",
// "5.90", "50") to a decimal.
func parseDecimalBR(raw string) (decimal.Decimal, bool) {
	s := strings.TrimSpace(raw)
	if strings.Contains(s, ",") {
		s = strings.ReplaceAll(s, ".", "")
		s = strings.ReplaceAll(s, ",", ".")
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Decimal{}, false
	}
	return d, true
}

// ParseAmount finds the first monetary amount in the message.
func ParseAmount(message string) (decimal.Decimal, bool) {
	m := amountPattern.FindStringSubmatch(message)
	if m == nil {
		return decimal.Decimal{}, false
	}
	d, ok := parseDecimalBR(m[1])
	if !ok || !d.IsPositive() {
		return decimal.Decimal{}, false
	}
	return d, true
}

// TransactionDraft is a deterministically parsed spend candidate. Category
// and account resolution happen against the store at apply time.
type TransactionDraft struct {
	Amount      decimal.Decimal
	Description string
}

var descriptionNoise = regexp.MustCompile(`(?i)\b(gastei|paguei|comprei|custou|torrei|hoje|ontem|de|do|da|no|na|em|com|por|r\$|reais)\b`)

// ParseTransaction extracts an amount and a cleaned description from a spend
// message. Returns false when no amount is present; the model fallback then
// handles the message.
func ParseTransaction(message string) (*TransactionDraft, bool) {
	loc := amountPattern.FindStringSubmatchIndex(message)
	if loc == nil {
		return nil, false
	}
	amount, ok := parseDecimalBR(message[loc[2]:loc[3]])
	if !ok || !amount.IsPositive() {
		return nil, false
	}

	remainder := message[:loc[0]] + " " + message[loc[1]:]
	desc := descriptionNoise.ReplaceAllString(remainder, " ")
	desc = strings.Join(strings.Fields(desc), " ")
	desc = strings.TrimSpace(desc)
	if desc == "" {
		return nil, false
	}
	return &TransactionDraft{Amount: amount, Description: titleFirst(desc)}, true
}

// SplitItems breaks an enumeration into trimmed, case-insensitively
// deduplicated item names, preserving first-seen order and casing.
func SplitItems(text string) []string {
	parts := itemSplitPattern.Split(text, -1)
	seen := make(map[string]bool, len(parts))
	var items []string
	for _, part := range parts {
		name := strings.TrimSpace(part)
		if name == "" {
			continue
		}
		key := strings.ToLower(name)
		if seen[key] {
			continue
		}
		seen[key] = true
		items = append(items, name)
	}
	return items
}

// itemEnumeration strips the leading verb phrase of an add/check message so
// only the enumerated items remain. Returns false when nothing is left.
var itemVerbPrefix = regexp.MustCompile(`(?i)^(adiciona(?:r)?|põe|poe|coloca(?:r)?|peguei|marquei|comprei)\s+(?:o\s+|a\s+|os\s+|as\s+)?`)
var itemListSuffix = regexp.MustCompile(`(?i)\s+(?:n[oa]|para|pra)\s+(?:a\s+)?lista(?:\s+de\s+compras)?\s*$`)

func itemEnumeration(message string) (string, bool) {
	text := strings.TrimSpace(message)
	stripped := itemVerbPrefix.ReplaceAllString(text, "")
	if stripped == text {
		return "", false
	}
	stripped = itemListSuffix.ReplaceAllString(stripped, "")
	stripped = strings.TrimSpace(stripped)
	if stripped == "" {
		return "", false
	}
	return stripped, true
}

// ParseItems deterministically extracts the item names of an add/check
// message ("adiciona leite, pão e café na lista").
func ParseItems(message string) ([]string, bool) {
	enum, ok := itemEnumeration(message)
	if !ok {
		return nil, false
	}
	items := SplitItems(enum)
	if len(items) == 0 {
		return nil, false
	}
	return items, true
}

// PriceDraft is a deterministically parsed price report.
type PriceDraft struct {
	Product string
	Market  string
	Price   decimal.Decimal
}

// ParsePriceReport matches the "<product> no|na <market> <price>" shape.
func ParsePriceReport(message string) (*PriceDraft, bool) {
	m := pricePattern.FindStringSubmatch(strings.TrimSpace(message))
	if m == nil {
		return nil, false
	}
	price, ok := parseDecimalBR(m[3])
	if !ok || !price.IsPositive() {
		return nil, false
	}
	product := strings.TrimSpace(m[1])
	market := strings.TrimSpace(m[2])
	if product == "" || market == "" {
		return nil, false
	}
	return &PriceDraft{Product: product, Market: market, Price: price}, true
}

func titleFirst(s string) string {
	if s == "" {
		return s
	}
	runes := []rune(s)
	return strings.ToUpper(string(runes[0])) + string(runes[1:])
}
