package gemini

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/genai"
)

// classifierPrompt asks for exactly one intent label. The label set is
// supplied by the caller so the closed set lives in one place.
const classifierPrompt = `Classifica a mensagem do usuário de um assistente de finanças pessoais.

Intenções possíveis:
- record_transaction: relata um gasto ou transação ("Gastei 50 no mercado", "paguei 30 de uber").
- query_stats: pergunta sobre gastos, saldo ou resumo do mês ("quanto gastei esse mês?", "qual meu saldo?").
- shopping_create: quer criar/iniciar uma lista de compras ("cria uma lista com leite e pão").
- shopping_add_items: quer adicionar itens à lista ("adiciona café na lista").
- shopping_check_items: diz que pegou/comprou itens da lista ("peguei o leite").
- shopping_query: quer ver a lista de compras ("mostra a lista").
- price_record: reporta o preço de um produto em um mercado ("leite piracanjuba no guanabara 5,90").
- price_query: pergunta preços de produtos ("onde o leite tá mais barato?").
- general_chat: qualquer outra coisa (cumprimento, pergunta geral).

Responda APENAS com o rótulo da intenção.`

// ClassifyIntent asks the model to pick one label from labels for the given
// message. The returned string is one of labels; the caller still validates
// it against the closed intent set.
func ClassifyIntent(ctx context.Context, c *Client, message string, labels []string) (string, *Invocation, error) {
	prompt := fmt.Sprintf("%s\n\nMensagem: %s", classifierPrompt, SanitizeMessage(message))

	config := &genai.GenerateContentConfig{
		Temperature:      temperature(0.1),
		ResponseMIMEType: "text/x.enum",
		ResponseSchema: &genai.Schema{
			Type: genai.TypeString,
			Enum: labels,
		},
	}

	text, err := c.generate(ctx, ExtractTimeout, prompt, config)
	if err != nil {
		return "", nil, err
	}

	inv := &Invocation{Prompt: prompt, Response: text}
	return strings.TrimSpace(text), inv, nil
}
