package gemini

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"google.golang.org/genai"
)

// transactionPrompt extracts one spend from a free-text message. Mirrors the
// assistant's seeded category set; the repository creates any new category
// the model invents.
const transactionPrompt = `Analisa a mensagem do usuário e, se ela descrever um gasto ou transação financeira, extrai os dados em JSON.

Regras:
- amount: valor numérico, sempre positivo. Use . como separador decimal.
- description: breve descrição da transação (ex: "Mercado", "Almoço", "Uber").
- category: UMA das categorias: Alimentação, Transporte, Moradia, Saúde, Educação, Lazer, Compras, Serviços, Salário, Investimentos, Outros.
- account: nome da conta/cartão se mencionado (ex: Nubank, Itaú, Dinheiro), ou null.
- tx_date: data da transação em YYYY-MM-DD. Se não informada, use hoje.

Se a mensagem NÃO for sobre uma transação (pergunta, cumprimento, etc), responda apenas: {"extract": null}

Exemplo de resposta para "Gastei 50 no mercado ontem":
{"extract": {"amount": "50", "description": "Mercado", "category": "Alimentação", "account": null, "tx_date": "2025-01-27"}}`

// TransactionData is the structured candidate extracted from a message.
type TransactionData struct {
	Amount      decimal.Decimal
	Description string
	Category    string
	Account     string
	TxDate      string
}

// transactionResponse is the JSON envelope returned by the model.
type transactionResponse struct {
	Extract *struct {
		Amount      json.Number `json:"amount"`
		Description string      `json:"description"`
		Category    string      `json:"category"`
		Account     *string     `json:"account"`
		TxDate      string      `json:"tx_date"`
	} `json:"extract"`
}

// ExtractTransaction asks the model to extract a transaction from the
// message. A nil TransactionData with nil error means the message does not
// describe a transaction; an unusable amount yields an IncompleteError.
func ExtractTransaction(ctx context.Context, c *Client, message string, today time.Time) (*TransactionData, *Invocation, error) {
	prompt := fmt.Sprintf("%s\n\nData de hoje: %s\n\nMensagem: %s",
		transactionPrompt, today.Format("2006-01-02"), SanitizeMessage(message))

	config := &genai.GenerateContentConfig{
		Temperature:      temperature(0.1),
		ResponseMIMEType: "application/json",
	}

	text, err := c.generate(ctx, ExtractTimeout, prompt, config)
	if err != nil {
		return nil, nil, err
	}
	inv := &Invocation{Prompt: prompt, Response: text}

	jsonText := extractJSON(text)
	if jsonText == "" {
		return nil, inv, fmt.Errorf("no JSON found in response")
	}

	var resp transactionResponse
	if err := json.Unmarshal([]byte(jsonText), &resp); err != nil {
		return nil, inv, fmt.Errorf("failed to parse transaction response: %w", err)
	}
	if resp.Extract == nil {
		return nil, inv, nil
	}

	amount, err := decimal.NewFromString(resp.Extract.Amount.String())
	if err != nil {
		return nil, inv, incomplete("amount %q is not a number", resp.Extract.Amount.String())
	}
	if !amount.IsPositive() {
		return nil, inv, incomplete("amount %s is not positive", amount)
	}

	data := &TransactionData{
		Amount:      amount,
		Description: strings.TrimSpace(resp.Extract.Description),
		Category:    strings.TrimSpace(resp.Extract.Category),
		TxDate:      strings.TrimSpace(resp.Extract.TxDate),
	}
	if resp.Extract.Account != nil {
		data.Account = strings.TrimSpace(*resp.Extract.Account)
	}
	return data, inv, nil
}
