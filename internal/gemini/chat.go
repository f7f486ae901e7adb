package gemini

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/genai"
)

const chatPersona = `Você é a DIANE, uma assistente financeira pessoal. Você é simpática, direta e fala português brasileiro.

Você ajuda o usuário a controlar gastos, contas, listas de compras e preços de produtos nos mercados.

Regras:
- Responda de forma curta e natural, como numa conversa de mensagens.
- Use os dados financeiros abaixo quando forem relevantes para a pergunta.
- Valores monetários sempre no formato brasileiro (R$ 1.234,56).
- Nunca invente transações, saldos ou preços que não estejam nos dados.
- Se não souber algo, diga que não sabe.`

// ChatTurn is one prior message of the conversation, oldest first.
type ChatTurn struct {
	Role    string
	Content string
}

// ChatReply generates a free-form assistant reply. contextBlock carries the
// current financial snapshot (accounts, recent transactions, active list)
// already formatted by the caller; it may be empty.
func ChatReply(ctx context.Context, c *Client, message, contextBlock string, history []ChatTurn) (string, *Invocation, error) {
	var b strings.Builder
	b.WriteString(chatPersona)
	if contextBlock != "" {
		b.WriteString("\n\nDados financeiros atuais:\n")
		b.WriteString(contextBlock)
	}
	if len(history) > 0 {
		b.WriteString("\n\nConversa recente:\n")
		for _, turn := range history {
			name := "Usuário"
			if turn.Role == "assistant" {
				name = "DIANE"
			}
			fmt.Fprintf(&b, "%s: %s\n", name, SanitizeMessage(turn.Content))
		}
	}
	b.WriteString("\n\nUsuário: ")
	b.WriteString(SanitizeMessage(message))
	b.WriteString("\nDIANE:")

	prompt := b.String()
	config := &genai.GenerateContentConfig{
		Temperature: temperature(0.5),
	}

	text, err := c.generate(ctx, ChatTimeout, prompt, config)
	if err != nil {
		return "", nil, err
	}
	inv := &Invocation{Prompt: prompt, Response: text}

	reply := strings.TrimSpace(text)
	if reply == "" {
		return "", inv, fmt.Errorf("empty chat response")
	}
	return reply, inv, nil
}
