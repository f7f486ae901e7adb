// Package assistant implements the conversational pipeline: intent
// classification, entity extraction, atomic application to the store, and
// reply composition.
package assistant

import (
	"regexp"
	"strings"
)

// Intent is the closed classification of what a chat message asks for.
type Intent string

const (
	IntentRecordTransaction  Intent = "record_transaction"
	IntentQueryStats         Intent = "query_stats"
	IntentShoppingCreate     Intent = "shopping_create"
	IntentShoppingAddItems   Intent = "shopping_add_items"
	IntentShoppingCheckItems Intent = "shopping_check_items"
	IntentShoppingQuery      Intent = "shopping_query"
	IntentPriceRecord        Intent = "price_record"
	IntentPriceQuery         Intent = "price_query"
	IntentGeneralChat        Intent = "general_chat"
)

// IntentLabels lists every intent, in the order shown to the model.
func IntentLabels() []string {
	return []string{
		string(IntentRecordTransaction),
		string(IntentQueryStats),
		string(IntentShoppingCreate),
		string(IntentShoppingAddItems),
		string(IntentShoppingCheckItems),
		string(IntentShoppingQuery),
		string(IntentPriceRecord),
		string(IntentPriceQuery),
		string(IntentGeneralChat),
	}
}

// ParseIntent maps a model answer back onto the closed set.
func ParseIntent(label string) (Intent, bool) {
	candidate := Intent(strings.TrimSpace(strings.ToLower(label)))
	for _, known := range IntentLabels() {
		if candidate == Intent(known) {
			return candidate, true
		}
	}
	return IntentGeneralChat, false
}

var spendVerbs = []string{"gastei", "paguei", "comprei", "custou", "torrei"}

var statsMarkers = []string{
	"quanto gastei", "quanto eu gastei", "quanto já gastei",
	"meu saldo", "qual o saldo", "qual meu saldo", "quanto tenho",
	"resumo do mês", "resumo do mes", "gastos do mês", "gastos do mes",
}

var listQueryMarkers = []string{
	"mostra a lista", "mostrar a lista", "ver a lista", "minha lista",
	"como tá a lista", "como está a lista", "o que tem na lista",
	"o que falta na lista",
}

var listCreateMarkers = []string{
	"cria uma lista", "criar uma lista", "cria lista", "criar lista",
	"nova lista", "inicia uma lista", "iniciar lista", "começa uma lista",
}

// balancePattern matches "saldo" as a whole word, so "saldão" and other
// longer words never fire.
var balancePattern = regexp.MustCompile(`(?:^|[^\p{L}])saldo(?:[^\p{L}]|$)`)

var priceQueryMarkers = []string{
	"mais barato", "mais em conta", "onde compro", "qual o preço",
	"qual o preco", "quanto custa", "quanto tá o", "quanto está o",
}

// ClassifyDeterministic applies ordered lexical rules to the message. It
// returns (intent, true) when a rule fires; (GeneralChat, false) otherwise so
// the caller can fall back to the model.
func ClassifyDeterministic(message string) (Intent, bool) {
	text := strings.ToLower(strings.TrimSpace(message))
	if text == "" {
		return IntentGeneralChat, false
	}

	// Spend verb plus a monetary amount beats everything else: "comprei pão
	// por 8 reais" is a transaction, not a list check.
	if _, ok := ParseAmount(text); ok {
		for _, verb := range spendVerbs {
			if strings.Contains(text, verb) {
				return IntentRecordTransaction, true
			}
		}
	}

	for _, marker := range statsMarkers {
		if strings.Contains(text, marker) {
			return IntentQueryStats, true
		}
	}
	if balancePattern.MatchString(text) {
		return IntentQueryStats, true
	}

	for _, marker := range listQueryMarkers {
		if strings.Contains(text, marker) {
			return IntentShoppingQuery, true
		}
	}
	for _, marker := range listCreateMarkers {
		if strings.Contains(text, marker) {
			return IntentShoppingCreate, true
		}
	}

	hasListContext := strings.Contains(text, "lista")
	if strings.HasPrefix(text, "adiciona") || strings.HasPrefix(text, "adicionar") ||
		(hasListContext && (strings.Contains(text, "adiciona") || strings.Contains(text, "põe") || strings.Contains(text, "poe") || strings.Contains(text, "coloca"))) {
		return IntentShoppingAddItems, true
	}
	if strings.HasPrefix(text, "peguei") || strings.HasPrefix(text, "marquei") ||
		(hasListContext && (strings.Contains(text, "peguei") || strings.Contains(text, "comprei"))) {
		return IntentShoppingCheckItems, true
	}

	if _, ok := ParsePriceReport(message); ok {
		return IntentPriceRecord, true
	}
	for _, marker := range priceQueryMarkers {
		if strings.Contains(text, marker) {
			return IntentPriceQuery, true
		}
	}

	return IntentGeneralChat, false
}
