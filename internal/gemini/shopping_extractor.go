package gemini

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"google.golang.org/genai"
)

// Shopping actions the extractor can produce.
const (
	ShoppingActionCreate = "create_list"
	ShoppingActionAdd    = "add_items"
	ShoppingActionCheck  = "check_items"
)

const shoppingPrompt = `Analisa a mensagem do usuário sobre LISTA DE COMPRAS.

Ações possíveis:
- create_list: usuário quer CRIAR ou INICIAR uma nova lista (ex: "cria uma lista", "nova lista", "inicia lista").
  Pode incluir itens iniciais na mesma frase (ex: "cria lista e adiciona leite, pão", "nova lista do mercado com café e açúcar").
- add_items: usuário quer ADICIONAR itens (ex: "adiciona leite", "adiciona leite e pão", "põe café na lista").
- check_items: usuário diz que PEGOU/comprou itens (ex: "peguei o leite", "peguei leite e pão", "marquei o café").

Responde APENAS em JSON, sem outro texto:
{"action": "create_list"|"add_items"|"check_items"|null, "list_name": "nome ou null", "items": ["item1","item2"] ou []}

Regras:
- action null se não for sobre lista de compras.
- create_list: list_name pode ser um nome dado ("lista do mercado") ou null.
  Se o usuário disser itens ao criar (ex: "cria lista com leite e pão"), inclua em items.
- add_items / check_items: items = lista dos itens mencionados.
- "peguei o leite" -> check_items, items ["leite"].
- "adiciona leite, pão e café" -> add_items, items ["leite","pão","café"].`

// ShoppingData is the structured shopping operation extracted from a message.
type ShoppingData struct {
	Action   string
	ListName string
	Items    []string
}

type shoppingResponse struct {
	Action   *string  `json:"action"`
	ListName *string  `json:"list_name"`
	Items    []string `json:"items"`
}

// ExtractShopping asks the model to extract a shopping-list operation. A nil
// ShoppingData with nil error means the message is not about shopping lists.
func ExtractShopping(ctx context.Context, c *Client, message string) (*ShoppingData, *Invocation, error) {
	prompt := fmt.Sprintf("%s\n\nMensagem: %s", shoppingPrompt, SanitizeMessage(message))

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

	var resp shoppingResponse
	if err := json.Unmarshal([]byte(jsonText), &resp); err != nil {
		return nil, inv, fmt.Errorf("failed to parse shopping response: %w", err)
	}
	if resp.Action == nil {
		return nil, inv, nil
	}

	action := strings.TrimSpace(*resp.Action)
	switch action {
	case ShoppingActionCreate, ShoppingActionAdd, ShoppingActionCheck:
	default:
		return nil, inv, fmt.Errorf("unknown shopping action %q", action)
	}

	data := &ShoppingData{Action: action}
	if resp.ListName != nil {
		data.ListName = strings.TrimSpace(*resp.ListName)
	}
	for _, item := range resp.Items {
		item = strings.TrimSpace(item)
		if item != "" {
			data.Items = append(data.Items, item)
		}
	}
	return data, inv, nil
}
