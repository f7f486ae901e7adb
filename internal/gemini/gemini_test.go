package gemini

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"
)

// fakeGenerator returns canned responses without hitting the API.
type fakeGenerator struct {
	text string
	err  error

	lastPrompt string
	lastConfig *genai.GenerateContentConfig
}

func (f *fakeGenerator) GenerateContent(
	_ context.Context,
	_ string,
	contents []*genai.Content,
	config *genai.GenerateContentConfig,
) (*genai.GenerateContentResponse, error) {
	if len(contents) > 0 && len(contents[0].Parts) > 0 {
		f.lastPrompt = contents[0].Parts[0].Text
	}
	f.lastConfig = config
	if f.err != nil {
		return nil, f.err
	}
	return &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{
			{
				Content: &genai.Content{
					Parts: []*genai.Part{{Text: f.text}},
				},
			},
		},
	}, nil
}

func fakeClient(text string) (*Client, *fakeGenerator) {
	gen := &fakeGenerator{text: text}
	return NewClientWithGenerator(gen, "test-model"), gen
}

// fakeNetError is a transport failure for error classification tests.
type fakeNetError struct{ msg string }

func (e *fakeNetError) Error() string   { return e.msg }
func (e *fakeNetError) Timeout() bool   { return true }
func (e *fakeNetError) Temporary() bool { return true }

func TestExtractJSON(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"plain object", `{"a": 1}`, `{"a": 1}`},
		{"markdown fence", "```json\n{\"a\": 1}\n```", `{"a": 1}`},
		{"preamble", `Here is the JSON: {"a": 1}`, `{"a": 1}`},
		{"trailing text", `{"a": 1} done`, `{"a": 1}`},
		{"nested", `{"a": {"b": 2}}`, `{"a": {"b": 2}}`},
		{"no json", "nothing here", ""},
		{"unbalanced", `{"a": 1`, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.expected, extractJSON(tt.input))
		})
	}
}

func TestSanitizeForPrompt(t *testing.T) {
	t.Run("strips quotes and backticks", func(t *testing.T) {
		got := SanitizeForPrompt("say \"hi\" `now`", 100)
		require.Equal(t, "say 'hi' 'now'", got)
	})

	t.Run("collapses whitespace", func(t *testing.T) {
		got := SanitizeForPrompt("a\n\nb\t c", 100)
		require.Equal(t, "a b c", got)
	})

	t.Run("truncates", func(t *testing.T) {
		got := SanitizeForPrompt("abcdefghij", 5)
		require.Equal(t, "abcde", got)
	})
}

func TestClassifyIntent(t *testing.T) {
	labels := []string{"record_transaction", "general_chat"}

	c, gen := fakeClient("record_transaction\n")
	intent, inv, err := ClassifyIntent(context.Background(), c, "gastei 50 no mercado", labels)
	require.NoError(t, err)
	require.Equal(t, "record_transaction", intent)
	require.NotNil(t, inv)
	require.Contains(t, inv.Prompt, "gastei 50 no mercado")
	require.Equal(t, "text/x.enum", gen.lastConfig.ResponseMIMEType)
	require.Equal(t, labels, gen.lastConfig.ResponseSchema.Enum)
}

func TestExtractTransaction(t *testing.T) {
	today := time.Date(2026, 8, 29, 12, 0, 0, 0, time.UTC)

	t.Run("full extraction", func(t *testing.T) {
		c, _ := fakeClient(`{"extract": {"amount": "52.30", "description": "Mercado", "category": "Alimentação", "account": "Nubank", "tx_date": "2026-08-28"}}`)
		data, inv, err := ExtractTransaction(context.Background(), c, "gastei 52,30 no mercado ontem no nubank", today)
		require.NoError(t, err)
		require.NotNil(t, inv)
		require.NotNil(t, data)
		require.True(t, data.Amount.Equal(decimal.RequireFromString("52.30")))
		require.Equal(t, "Mercado", data.Description)
		require.Equal(t, "Alimentação", data.Category)
		require.Equal(t, "Nubank", data.Account)
		require.Equal(t, "2026-08-28", data.TxDate)
	})

	t.Run("null account", func(t *testing.T) {
		c, _ := fakeClient(`{"extract": {"amount": 30, "description": "Uber", "category": "Transporte", "account": null, "tx_date": "2026-08-29"}}`)
		data, _, err := ExtractTransaction(context.Background(), c, "30 de uber", today)
		require.NoError(t, err)
		require.NotNil(t, data)
		require.Empty(t, data.Account)
	})

	t.Run("not a transaction", func(t *testing.T) {
		c, _ := fakeClient(`{"extract": null}`)
		data, inv, err := ExtractTransaction(context.Background(), c, "bom dia", today)
		require.NoError(t, err)
		require.Nil(t, data)
		require.NotNil(t, inv)
	})

	t.Run("today in prompt", func(t *testing.T) {
		c, gen := fakeClient(`{"extract": null}`)
		_, _, err := ExtractTransaction(context.Background(), c, "oi", today)
		require.NoError(t, err)
		require.Contains(t, gen.lastPrompt, "2026-08-29")
	})

	t.Run("non positive amount is incomplete", func(t *testing.T) {
		c, _ := fakeClient(`{"extract": {"amount": "0", "description": "x", "category": "Outros", "account": null, "tx_date": "2026-08-29"}}`)
		_, _, err := ExtractTransaction(context.Background(), c, "x", today)
		require.Error(t, err)
		require.True(t, Incomplete(err))
	})

	t.Run("unparseable amount is incomplete", func(t *testing.T) {
		c, _ := fakeClient(`{"extract": {"amount": "muito", "description": "x", "category": "Outros", "account": null, "tx_date": "2026-08-29"}}`)
		_, _, err := ExtractTransaction(context.Background(), c, "x", today)
		require.Error(t, err)
		require.True(t, Incomplete(err))
	})

	t.Run("garbage response", func(t *testing.T) {
		c, _ := fakeClient("no json here")
		_, _, err := ExtractTransaction(context.Background(), c, "x", today)
		require.Error(t, err)
		require.False(t, Incomplete(err))
	})
}

func TestExtractShopping(t *testing.T) {
	t.Run("create with items", func(t *testing.T) {
		c, _ := fakeClient(`{"action": "create_list", "list_name": "lista do mercado", "items": ["leite", "pão", " "]}`)
		data, _, err := ExtractShopping(context.Background(), c, "cria lista do mercado com leite e pão")
		require.NoError(t, err)
		require.NotNil(t, data)
		require.Equal(t, ShoppingActionCreate, data.Action)
		require.Equal(t, "lista do mercado", data.ListName)
		require.Equal(t, []string{"leite", "pão"}, data.Items)
	})

	t.Run("check items", func(t *testing.T) {
		c, _ := fakeClient(`{"action": "check_items", "list_name": null, "items": ["leite"]}`)
		data, _, err := ExtractShopping(context.Background(), c, "peguei o leite")
		require.NoError(t, err)
		require.Equal(t, ShoppingActionCheck, data.Action)
		require.Equal(t, []string{"leite"}, data.Items)
	})

	t.Run("not shopping", func(t *testing.T) {
		c, _ := fakeClient(`{"action": null, "list_name": null, "items": []}`)
		data, inv, err := ExtractShopping(context.Background(), c, "bom dia")
		require.NoError(t, err)
		require.Nil(t, data)
		require.NotNil(t, inv)
	})

	t.Run("unknown action", func(t *testing.T) {
		c, _ := fakeClient(`{"action": "delete_list", "list_name": null, "items": []}`)
		_, _, err := ExtractShopping(context.Background(), c, "apaga a lista")
		require.Error(t, err)
	})
}

func TestExtractPrice(t *testing.T) {
	t.Run("full extraction", func(t *testing.T) {
		c, _ := fakeClient(`{"product": "leite piracanjuba", "market": "guanabara", "price": "5.90"}`)
		data, _, err := ExtractPrice(context.Background(), c, "leite piracanjuba no guanabara 5,90")
		require.NoError(t, err)
		require.NotNil(t, data)
		require.Equal(t, "leite piracanjuba", data.Product)
		require.Equal(t, "guanabara", data.Market)
		require.True(t, data.Price.Equal(decimal.RequireFromString("5.90")))
	})

	t.Run("numeric price", func(t *testing.T) {
		c, _ := fakeClient(`{"product": "café", "market": "assai", "price": 12.5}`)
		data, _, err := ExtractPrice(context.Background(), c, "café no assai 12,50")
		require.NoError(t, err)
		require.True(t, data.Price.Equal(decimal.RequireFromString("12.5")))
	})

	t.Run("not a price report", func(t *testing.T) {
		c, _ := fakeClient(`{"product": null, "market": null, "price": null}`)
		data, inv, err := ExtractPrice(context.Background(), c, "bom dia")
		require.NoError(t, err)
		require.Nil(t, data)
		require.NotNil(t, inv)
	})

	t.Run("missing market is incomplete", func(t *testing.T) {
		c, _ := fakeClient(`{"product": "leite", "market": "", "price": "5.90"}`)
		_, inv, err := ExtractPrice(context.Background(), c, "leite 5,90")
		require.Error(t, err)
		require.True(t, Incomplete(err))
		require.NotNil(t, inv)
	})

	t.Run("missing market and price is incomplete", func(t *testing.T) {
		c, _ := fakeClient(`{"product": "leite", "market": null, "price": null}`)
		_, _, err := ExtractPrice(context.Background(), c, "registra o preço do leite")
		require.Error(t, err)
		require.True(t, Incomplete(err))
	})

	t.Run("non positive price is incomplete", func(t *testing.T) {
		c, _ := fakeClient(`{"product": "leite", "market": "guanabara", "price": "-1"}`)
		_, _, err := ExtractPrice(context.Background(), c, "leite no guanabara -1")
		require.Error(t, err)
		require.True(t, Incomplete(err))
	})
}

func TestChatReply(t *testing.T) {
	t.Run("includes context and history", func(t *testing.T) {
		c, gen := fakeClient("Seu saldo efetivo é R$ 1.200,00.")
		history := []ChatTurn{
			{Role: "user", Content: "oi"},
			{Role: "assistant", Content: "Oi! Como posso ajudar?"},
		}
		reply, inv, err := ChatReply(context.Background(), c, "qual meu saldo?", "Conta Nubank: R$ 1.200,00", history)
		require.NoError(t, err)
		require.Equal(t, "Seu saldo efetivo é R$ 1.200,00.", reply)
		require.NotNil(t, inv)
		require.Contains(t, gen.lastPrompt, "Conta Nubank: R$ 1.200,00")
		require.Contains(t, gen.lastPrompt, "Usuário: oi")
		require.Contains(t, gen.lastPrompt, "DIANE: Oi! Como posso ajudar?")
	})

	t.Run("empty response", func(t *testing.T) {
		c, _ := fakeClient("   ")
		_, _, err := ChatReply(context.Background(), c, "oi", "", nil)
		require.Error(t, err)
	})

	t.Run("generator error", func(t *testing.T) {
		gen := &fakeGenerator{err: errors.New("boom")}
		c := NewClientWithGenerator(gen, "test-model")
		_, _, err := ChatReply(context.Background(), c, "oi", "", nil)
		require.Error(t, err)
	})
}

func TestClassifyError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected ErrorClass
	}{
		{"api 429", fmt.Errorf("call failed: %w", genai.APIError{Code: 429, Message: "quota exceeded"}), ClassQuota},
		{"api 503", fmt.Errorf("call failed: %w", genai.APIError{Code: 503, Message: "unavailable"}), ClassNetwork},
		{"api 400", fmt.Errorf("call failed: %w", genai.APIError{Code: 400, Message: "bad request"}), ClassLLM},
		{"quota 429 untyped", errors.New("googleapi: Error 429: quota exceeded"), ClassQuota},
		{"resource exhausted", errors.New("rpc error: RESOURCE_EXHAUSTED"), ClassQuota},
		{"rate limit", errors.New("rate limit reached"), ClassQuota},
		{"deadline", fmt.Errorf("call failed: %w", context.DeadlineExceeded), ClassNetwork},
		{"transport error mentioning 429", &fakeNetError{msg: "dial tcp 10.0.0.7:4291: connection refused"}, ClassNetwork},
		{"generic", errors.New("invalid response"), ClassLLM},
		{"nil", nil, ClassLLM},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.expected, ClassifyError(tt.err))
		})
	}

	t.Run("retryable only for network", func(t *testing.T) {
		require.True(t, Retryable(fmt.Errorf("x: %w", context.DeadlineExceeded)))
		require.False(t, Retryable(errors.New("429")))
		require.False(t, Retryable(errors.New("bad json")))
	})
}
