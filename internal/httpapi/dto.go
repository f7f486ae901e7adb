package httpapi

import (
	"time"

	"gitlab.com/ravilima/diane/internal/models"
	"gitlab.com/ravilima/diane/internal/stats"
)

// AccountDTO is the API representation of an account plus its derived
// spending figures.
type AccountDTO struct {
	ID               int    `json:"id"`
	Name             string `json:"name"`
	Balance          string `json:"balance"`
	CreatedAt        string `json:"created_at"`
	Spending         string `json:"spending"`
	EffectiveBalance string `json:"effective_balance"`
}

func toAccountDTO(acc models.AccountWithStats) AccountDTO {
	return AccountDTO{
		ID:               acc.ID,
		Name:             acc.Name,
		Balance:          acc.Balance.StringFixed(2),
		CreatedAt:        acc.CreatedAt.Format(time.RFC3339),
		Spending:         acc.Spending.StringFixed(2),
		EffectiveBalance: acc.EffectiveBalance.StringFixed(2),
	}
}

// CategoryDTO is the API representation of a category.
type CategoryDTO struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// TransactionDTO is the API representation of a transaction.
type TransactionDTO struct {
	ID           int     `json:"id"`
	Amount       string  `json:"amount"`
	Description  string  `json:"description"`
	CategoryID   int     `json:"category_id"`
	CategoryName string  `json:"category_name"`
	AccountID    *int    `json:"account_id"`
	AccountName  *string `json:"account_name"`
	TxDate       string  `json:"tx_date"`
	CreatedAt    string  `json:"created_at"`
}

func toTransactionDTO(tx *models.Transaction) *TransactionDTO {
	if tx == nil {
		return nil
	}
	return &TransactionDTO{
		ID:           tx.ID,
		Amount:       tx.Amount.StringFixed(2),
		Description:  tx.Description,
		CategoryID:   tx.CategoryID,
		CategoryName: tx.CategoryName,
		AccountID:    tx.AccountID,
		AccountName:  tx.AccountName,
		TxDate:       tx.TxDate.Format(models.DateLayout),
		CreatedAt:    tx.CreatedAt.Format(time.RFC3339),
	}
}

func toTransactionDTOs(txs []models.Transaction) []TransactionDTO {
	out := make([]TransactionDTO, len(txs))
	for i := range txs {
		out[i] = *toTransactionDTO(&txs[i])
	}
	return out
}

// CategoryTotalDTO is one row of the monthly breakdown.
type CategoryTotalDTO struct {
	CategoryName string `json:"category_name"`
	Total        string `json:"total"`
}

// MonthlyStatsDTO is the monthly spending summary.
type MonthlyStatsDTO struct {
	Year       int                `json:"year"`
	Month      int                `json:"month"`
	Total      string             `json:"total"`
	ByCategory []CategoryTotalDTO `json:"by_category"`
}

func toMonthlyStatsDTO(spending stats.MonthlySpending) MonthlyStatsDTO {
	byCategory := make([]CategoryTotalDTO, len(spending.ByCategory))
	for i, ct := range spending.ByCategory {
		byCategory[i] = CategoryTotalDTO{CategoryName: ct.CategoryName, Total: ct.Total.StringFixed(2)}
	}
	return MonthlyStatsDTO{
		Year:       spending.Year,
		Month:      spending.Month,
		Total:      spending.Total.StringFixed(2),
		ByCategory: byCategory,
	}
}

// ShoppingItemDTO is the API representation of a list item.
type ShoppingItemDTO struct {
	ID        int    `json:"id"`
	ListID    int    `json:"list_id"`
	Name      string `json:"name"`
	Checked   bool   `json:"checked"`
	CreatedAt string `json:"created_at"`
}

// ShoppingListDTO is the API representation of a shopping list with items.
type ShoppingListDTO struct {
	ID        int               `json:"id"`
	Name      string            `json:"name"`
	Active    bool              `json:"active"`
	CreatedAt string            `json:"created_at"`
	UpdatedAt string            `json:"updated_at"`
	Items     []ShoppingItemDTO `json:"items"`
}

func toShoppingListDTO(list *models.ShoppingList) ShoppingListDTO {
	items := make([]ShoppingItemDTO, len(list.Items))
	for i, item := range list.Items {
		items[i] = ShoppingItemDTO{
			ID:        item.ID,
			ListID:    item.ListID,
			Name:      item.Name,
			Checked:   item.Checked,
			CreatedAt: item.CreatedAt.Format(time.RFC3339),
		}
	}
	return ShoppingListDTO{
		ID:        list.ID,
		Name:      list.Name,
		Active:    list.Active,
		CreatedAt: list.CreatedAt.Format(time.RFC3339),
		UpdatedAt: list.UpdatedAt.Format(time.RFC3339),
		Items:     items,
	}
}

// PriceEntryDTO is the API representation of a product price entry.
type PriceEntryDTO struct {
	ID          int    `json:"id"`
	ProductName string `json:"product_name"`
	MarketName  string `json:"market_name"`
	Price       string `json:"price"`
	RecordedAt  string `json:"recorded_at"`
	IsBestPrice bool   `json:"is_best_price"`
}

// MarketGroupDTO groups one market's current entries.
type MarketGroupDTO struct {
	MarketName string          `json:"market_name"`
	Items      []PriceEntryDTO `json:"items"`
}

func toPriceEntryDTO(e models.ProductPriceEntry) PriceEntryDTO {
	return PriceEntryDTO{
		ID:          e.ID,
		ProductName: e.ProductName,
		MarketName:  e.MarketName,
		Price:       e.Price.StringFixed(2),
		RecordedAt:  e.RecordedAt.Format(time.RFC3339),
		IsBestPrice: e.IsBestPrice,
	}
}

func toMarketGroupDTOs(groups []stats.MarketGroup) []MarketGroupDTO {
	out := make([]MarketGroupDTO, len(groups))
	for i, g := range groups {
		items := make([]PriceEntryDTO, len(g.Items))
		for j, e := range g.Items {
			items[j] = toPriceEntryDTO(e)
		}
		out[i] = MarketGroupDTO{MarketName: g.MarketName, Items: items}
	}
	return out
}

// PromptLogDTO is the API representation of one audit record.
type PromptLogDTO struct {
	ID           int    `json:"id"`
	Kind         string `json:"kind"`
	PromptText   string `json:"prompt_text"`
	ResponseText string `json:"response_text"`
	Model        string `json:"model"`
	CreatedAt    string `json:"created_at"`
}

func toPromptLogDTOs(logs []models.PromptLog) []PromptLogDTO {
	out := make([]PromptLogDTO, len(logs))
	for i, l := range logs {
		out[i] = PromptLogDTO{
			ID:           l.ID,
			Kind:         l.Kind,
			PromptText:   l.PromptText,
			ResponseText: l.ResponseText,
			Model:        l.Model,
			CreatedAt:    l.CreatedAt.Format(time.RFC3339),
		}
	}
	return out
}

// ChatRequest is the body of POST /api/chat.
type ChatRequest struct {
	Message string `json:"message" validate:"required,max=2000"`
}

// ChatResponse carries the assistant's reply. ErrorType is null unless a
// model call failed (quota, llm, network).
type ChatResponse struct {
	Reply                string          `json:"reply"`
	ExtractedTransaction *TransactionDTO `json:"extracted_transaction"`
	ErrorType            *string         `json:"error_type"`
}
