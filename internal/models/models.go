// Package models defines the domain entities for the finance assistant.
package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// MaxCategoryNameLength is the maximum allowed length for category names.
const MaxCategoryNameLength = 50

// DateLayout is the wire format for transaction dates (calendar date, no time).
const DateLayout = "2006-01-02"

// DefaultListName is used when the user asks for a list without naming it.
const DefaultListName = "Nova lista"

// FallbackCategory receives transactions whose category could not be inferred.
const FallbackCategory = "Outros"

// Prompt log kinds, one per model invocation site.
const (
	PromptKindExtractionTx       = "extraction_tx"
	PromptKindExtractionShopping = "extraction_shopping"
	PromptKindExtractionPrice    = "extraction_product_price"
	PromptKindChat               = "chat"
)

// Chat message roles.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Account represents a money source (bank account, card, cash). Its stored
// balance is the initial funds; transactions never mutate it directly.
type Account struct {
	ID        int
	Name      string
	Balance   decimal.Decimal
	CreatedAt time.Time
}

// AccountWithStats is an account plus its derived spending figures.
type AccountWithStats struct {
	Account
	Spending         decimal.Decimal
	EffectiveBalance decimal.Decimal
}

// Category represents a transaction category. Names are unique
// case-insensitively.
type Category struct {
	ID        int
	Name      string
	CreatedAt time.Time
}

// Transaction represents a single spend. Amount is always positive.
type Transaction struct {
	ID           int
	Amount       decimal.Decimal
	Description  string
	CategoryID   int
	CategoryName string
	AccountID    *int
	AccountName  *string
	TxDate       time.Time
	CreatedAt    time.Time
}

// ShoppingList is a named list of items. At most one list is active at any
// time; the active list is the implicit target of add/check operations.
type ShoppingList struct {
	ID        int
	Name      string
	Active    bool
	CreatedAt time.Time
	UpdatedAt time.Time
	Items     []ShoppingListItem
}

// ShoppingListItem is one entry on a shopping list.
type ShoppingListItem struct {
	ID        int
	ListID    int
	Name      string
	Checked   bool
	CreatedAt time.Time
}

// ProductPriceEntry records the price of a product at a market at a point in
// time. Only the most recent entry per (product, market) pair is current.
type ProductPriceEntry struct {
	ID          int
	ProductName string
	MarketName  string
	Price       decimal.Decimal
	RecordedAt  time.Time
	IsBestPrice bool
}

// PromptLog is an append-only audit record of one model invocation.
type PromptLog struct {
	ID           int
	Kind         string
	PromptText   string
	ResponseText string
	Model        string
	CreatedAt    time.Time
}

// ChatMessage is one turn of the stored conversation.
type ChatMessage struct {
	ID        int
	Role      string
	Content   string
	CreatedAt time.Time
}
