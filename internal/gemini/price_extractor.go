package gemini

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"google.golang.org/genai"
)

const pricePrompt = `Analisa a mensagem do usuário. Se ela REPORTAR o preço de um produto em um mercado/supermercado, extrai os dados.

Exemplos:
- "preço do leite piracanjuba no guanabara tá 5,90" -> produto, mercado, preço
- "no assaí o leite custa 6 reais"
- "leite piracanjuba guanabara 5,90"
- "registra preço do café no atacadão: 12,50"

Responde APENAS em JSON, sem outro texto:
{"product": "nome do produto", "market": "nome do mercado", "price": "número"}

Regras:
- product: nome do produto (ex: "leite piracanjuba", "café").
- market: nome do mercado/supermercado (ex: "guanabara", "assai", "atacadão").
- price: valor numérico positivo (use . como decimal). Ex: "5.90", "12.50".
- Se a mensagem NÃO for reporte de preço em mercado, responda: {"product": null, "market": null, "price": null}`

// PriceData is the structured price observation extracted from a message.
type PriceData struct {
	Product string
	Market  string
	Price   decimal.Decimal
}

type priceResponse struct {
	Product *string      `json:"product"`
	Market  *string      `json:"market"`
	Price   *json.Number `json:"price"`
}

// ExtractPrice asks the model to extract a product price observation. A nil
// PriceData with nil error means the message is not a price report. A price
// report missing its market or price yields an IncompleteError, never a
// placeholder value.
func ExtractPrice(ctx context.Context, c *Client, message string) (*PriceData, *Invocation, error) {
	prompt := fmt.Sprintf("%s\n\nMensagem: %s", pricePrompt, SanitizeMessage(message))

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

	var resp priceResponse
	if err := json.Unmarshal([]byte(jsonText), &resp); err != nil {
		return nil, inv, fmt.Errorf("failed to parse price response: %w", err)
	}
	if resp.Product == nil && resp.Market == nil && resp.Price == nil {
		return nil, inv, nil
	}

	product := ""
	if resp.Product != nil {
		product = strings.TrimSpace(*resp.Product)
	}
	market := ""
	if resp.Market != nil {
		market = strings.TrimSpace(*resp.Market)
	}
	if product == "" || market == "" || resp.Price == nil {
		return nil, inv, incomplete("price report: product=%q market=%q price missing=%t", product, market, resp.Price == nil)
	}

	price, err := decimal.NewFromString(resp.Price.String())
	if err != nil {
		return nil, inv, incomplete("price %q is not a number", resp.Price.String())
	}
	if !price.IsPositive() {
		return nil, inv, incomplete("price %s is not positive", price)
	}

	return &PriceData{Product: product, Market: market, Price: price}, inv, nil
}
