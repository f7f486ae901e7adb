package assistant

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"gitlab.com/ravilima/diane/internal/database"
	"gitlab.com/ravilima/diane/internal/gemini"
	"gitlab.com/ravilima/diane/internal/logger"
	"gitlab.com/ravilima/diane/internal/models"
	"gitlab.com/ravilima/diane/internal/repository"
	"gitlab.com/ravilima/diane/internal/stats"
)

// retryBackoff is the pause before the single retry of a transient
// model-call failure.
const retryBackoff = 300 * time.Millisecond

// chatHistoryLimit caps the stored conversation fed into the chat prompt.
const chatHistoryLimit = 20

// promptLogTimeout bounds the fire-and-forget audit insert.
const promptLogTimeout = 5 * time.Second

// Outcome is the result of processing one chat message.
type Outcome struct {
	Reply       string
	Transaction *models.Transaction
	// ErrorType is set only for model failures (quota, llm, network).
	// Validation and not-found outcomes carry the reason in Reply.
	ErrorType ErrorType
}

// Assistant runs the message pipeline: classify, extract, apply, reply.
type Assistant struct {
	db      database.DB
	gem     *gemini.Client
	applier *Applier

	accounts     *repository.AccountRepository
	transactions *repository.TransactionRepository
	shopping     *repository.ShoppingRepository
	prices       *repository.PriceRepository
	prompts      *repository.PromptLogRepository
	chat         *repository.ChatRepository

	now   func() time.Time
	logWG sync.WaitGroup
	logMu sync.Mutex
}

// New creates the assistant. gem may be nil; the pipeline then answers with
// deterministic extraction only and a canned chat fallback.
func New(db database.DB, gem *gemini.Client) *Assistant {
	return &Assistant{
		db:           db,
		gem:          gem,
		applier:      NewApplier(db),
		accounts:     repository.NewAccountRepository(db),
		transactions: repository.NewTransactionRepository(db),
		shopping:     repository.NewShoppingRepository(db),
		prices:       repository.NewPriceRepository(db),
		prompts:      repository.NewPromptLogRepository(db),
		chat:         repository.NewChatRepository(db),
		now:          time.Now,
	}
}

// HandleMessage processes one user message end to end. It never returns an
// error: failures become replies (clarifications or apologies) so the
// conversation always continues.
func (a *Assistant) HandleMessage(ctx context.Context, message string) *Outcome {
	message = strings.TrimSpace(message)
	if message == "" {
		return &Outcome{Reply: "Me manda uma mensagem que eu te ajudo com seus gastos, listas e preços!"}
	}

	if err := a.chat.Append(ctx, models.RoleUser, message); err != nil {
		logger.Log.Warn().Err(err).Msg("failed to store user message")
	}

	intent := a.classify(ctx, message)
	logger.Log.Debug().
		Str("intent", string(intent)).
		Str("message_hash", logger.HashMessage(message)).
		Msg("message classified")

	var outcome *Outcome
	switch intent {
	case IntentRecordTransaction:
		outcome = a.handleTransaction(ctx, message)
	case IntentQueryStats:
		outcome = a.handleStats(ctx, message)
	case IntentShoppingCreate, IntentShoppingAddItems, IntentShoppingCheckItems:
		outcome = a.handleShopping(ctx, intent, message)
	case IntentShoppingQuery:
		outcome = a.handleShoppingQuery(ctx)
	case IntentPriceRecord:
		outcome = a.handlePriceRecord(ctx, message)
	case IntentPriceQuery:
		outcome = a.handlePriceQuery(ctx, message)
	default:
		outcome = a.handleChat(ctx, message)
	}

	// Drain pending audit inserts first: a single-connection handle (a test
	// transaction) must never see the Append below concurrently with them.
	a.logWG.Wait()
	if err := a.chat.Append(ctx, models.RoleAssistant, outcome.Reply); err != nil {
		logger.Log.Warn().Err(err).Msg("failed to store assistant reply")
	}
	return outcome
}

// classify runs the deterministic rules first and delegates to the model
// only when none fires. Any model failure or unknown answer resolves to
// general chat, never to an error.
func (a *Assistant) classify(ctx context.Context, message string) Intent {
	if intent, ok := ClassifyDeterministic(message); ok {
		return intent
	}
	if a.gem == nil {
		return IntentGeneralChat
	}

	var label string
	var inv *gemini.Invocation
	err := a.withRetry(ctx, func(ctx context.Context) error {
		var err error
		label, inv, err = gemini.ClassifyIntent(ctx, a.gem, message, IntentLabels())
		return err
	})
	a.logPrompt(models.PromptKindChat, inv)
	if err != nil {
		logger.Log.Warn().Err(err).Msg("intent classification failed")
		return IntentGeneralChat
	}

	intent, ok := ParseIntent(label)
	if !ok {
		logger.Log.Warn().Str("label", label).Msg("unknown intent label")
	}
	return intent
}

func (a *Assistant) handleTransaction(ctx context.Context, message string) *Outcome {
	data := a.extractTransaction(ctx, message)
	if data == nil {
		return a.handleChat(ctx, message)
	}
	if err, ok := data.err(); ok {
		return a.extractionFailure(err, "Não consegui entender o valor do gasto. Me manda de novo com o valor? Ex: \"gastei 50 no mercado\".")
	}

	tx, err := a.applier.ApplyTransaction(ctx, data.value, a.now())
	if err != nil {
		return a.outcomeFromError(err)
	}
	return &Outcome{Reply: transactionReply(tx), Transaction: tx}
}

// extractionFailure separates a model that could not be reached from a model
// that answered with an unusable entity. The latter becomes a clarification
// asking the user to rephrase, with no error_type on the wire.
func (a *Assistant) extractionFailure(err error, clarification string) *Outcome {
	if gemini.Incomplete(err) {
		logger.Log.Debug().Err(err).Msg("extraction incomplete")
		return a.outcomeFromError(Validation("%s", clarification))
	}
	return a.modelFailure(err)
}

// extracted pairs an extraction result with the model error, so handlers can
// distinguish "not this intent" (nil, no error) from a failed model call.
type extracted[T any] struct {
	value    *T
	modelErr error
}

func (e *extracted[T]) err() (error, bool) {
	if e == nil {
		return nil, false
	}
	return e.modelErr, e.modelErr != nil
}

// extractTransaction tries the deterministic parser first and falls back to
// one model call. A nil return means the message is not a transaction.
func (a *Assistant) extractTransaction(ctx context.Context, message string) *extracted[gemini.TransactionData] {
	if draft, ok := ParseTransaction(message); ok {
		return &extracted[gemini.TransactionData]{value: &gemini.TransactionData{
			Amount:      draft.Amount,
			Description: draft.Description,
		}}
	}
	if a.gem == nil {
		return nil
	}

	var data *gemini.TransactionData
	var inv *gemini.Invocation
	err := a.withRetry(ctx, func(ctx context.Context) error {
		var err error
		data, inv, err = gemini.ExtractTransaction(ctx, a.gem, message, a.now())
		return err
	})
	a.logPrompt(models.PromptKindExtractionTx, inv)
	if err != nil {
		return &extracted[gemini.TransactionData]{modelErr: err}
	}
	if data == nil {
		return nil
	}
	return &extracted[gemini.TransactionData]{value: data}
}

func (a *Assistant) handleShopping(ctx context.Context, intent Intent, message string) *Outcome {
	data := a.extractShopping(ctx, intent, message)
	if data == nil {
		return a.outcomeFromError(Validation("Não entendi o que fazer com a lista. Pode repetir?"))
	}
	if err, ok := data.err(); ok {
		return a.extractionFailure(err, "Não entendi o que fazer com a lista. Pode repetir?")
	}

	outcome, err := a.applier.ApplyShopping(ctx, data.value)
	if err != nil {
		return a.outcomeFromError(err)
	}
	return &Outcome{Reply: shoppingReply(outcome)}
}

// extractShopping builds the shopping operation deterministically when the
// message shape allows, otherwise through one model call.
func (a *Assistant) extractShopping(ctx context.Context, intent Intent, message string) *extracted[gemini.ShoppingData] {
	switch intent {
	case IntentShoppingCreate:
		data := &gemini.ShoppingData{Action: gemini.ShoppingActionCreate}
		lower := strings.ToLower(message)
		if idx := strings.LastIndex(lower, " com "); idx >= 0 {
			data.Items = SplitItems(message[idx+len(" com "):])
		}
		return &extracted[gemini.ShoppingData]{value: data}
	case IntentShoppingAddItems:
		if items, ok := ParseItems(message); ok {
			return &extracted[gemini.ShoppingData]{value: &gemini.ShoppingData{
				Action: gemini.ShoppingActionAdd,
				Items:  items,
			}}
		}
	case IntentShoppingCheckItems:
		if items, ok := ParseItems(message); ok {
			return &extracted[gemini.ShoppingData]{value: &gemini.ShoppingData{
				Action: gemini.ShoppingActionCheck,
				Items:  items,
			}}
		}
	}
	if a.gem == nil {
		return nil
	}

	var data *gemini.ShoppingData
	var inv *gemini.Invocation
	err := a.withRetry(ctx, func(ctx context.Context) error {
		var err error
		data, inv, err = gemini.ExtractShopping(ctx, a.gem, message)
		return err
	})
	a.logPrompt(models.PromptKindExtractionShopping, inv)
	if err != nil {
		return &extracted[gemini.ShoppingData]{modelErr: err}
	}
	if data == nil {
		return nil
	}
	return &extracted[gemini.ShoppingData]{value: data}
}

func (a *Assistant) handleShoppingQuery(ctx context.Context) *Outcome {
	list, err := a.shopping.GetActive(ctx)
	if errors.Is(err, repository.ErrNotFound) {
		return &Outcome{Reply: "Você não tem nenhuma lista ativa. Quer que eu crie uma?"}
	}
	if err != nil {
		return a.outcomeFromError(err)
	}
	return &Outcome{Reply: listQueryReply(list)}
}

func (a *Assistant) handlePriceRecord(ctx context.Context, message string) *Outcome {
	data := a.extractPrice(ctx, message)
	if data == nil {
		return a.outcomeFromError(Validation("Preciso do produto, do mercado e do preço. Ex: \"leite no guanabara 5,90\"."))
	}
	if err, ok := data.err(); ok {
		return a.extractionFailure(err, "Preciso do produto, do mercado e do preço. Ex: \"leite no guanabara 5,90\".")
	}

	entry, others, err := a.applier.ApplyPrice(ctx, data.value)
	if err != nil {
		return a.outcomeFromError(err)
	}
	return &Outcome{Reply: priceReply(entry, others)}
}

func (a *Assistant) extractPrice(ctx context.Context, message string) *extracted[gemini.PriceData] {
	if draft, ok := ParsePriceReport(message); ok {
		return &extracted[gemini.PriceData]{value: &gemini.PriceData{
			Product: draft.Product,
			Market:  draft.Market,
			Price:   draft.Price,
		}}
	}
	if a.gem == nil {
		return nil
	}

	var data *gemini.PriceData
	var inv *gemini.Invocation
	err := a.withRetry(ctx, func(ctx context.Context) error {
		var err error
		data, inv, err = gemini.ExtractPrice(ctx, a.gem, message)
		return err
	})
	a.logPrompt(models.PromptKindExtractionPrice, inv)
	if err != nil {
		return &extracted[gemini.PriceData]{modelErr: err}
	}
	if data == nil {
		return nil
	}
	return &extracted[gemini.PriceData]{value: data}
}

func (a *Assistant) handlePriceQuery(ctx context.Context, message string) *Outcome {
	current, err := a.prices.Current(ctx)
	if err != nil {
		return a.outcomeFromError(err)
	}
	flagged := stats.FlagBestPrices(current)

	// When the message names a known product, answer for that product only.
	lower := strings.ToLower(message)
	var matched []models.ProductPriceEntry
	for _, e := range flagged {
		if strings.Contains(lower, strings.ToLower(strings.TrimSpace(e.ProductName))) {
			matched = append(matched, e)
		}
	}
	if len(matched) > 0 {
		return &Outcome{Reply: productPricesReply(matched)}
	}
	return &Outcome{Reply: priceQueryReply(flagged)}
}

func (a *Assistant) handleStats(ctx context.Context, message string) *Outcome {
	if strings.Contains(strings.ToLower(message), "saldo") {
		return a.balances(ctx)
	}

	now := a.now()
	year, month := now.Year(), int(now.Month())
	txs, err := a.transactions.ListMonth(ctx, year, month)
	if err != nil {
		return a.outcomeFromError(err)
	}
	return &Outcome{Reply: statsReply(stats.Monthly(year, month, txs))}
}

func (a *Assistant) balances(ctx context.Context) *Outcome {
	accounts, err := a.accounts.GetAll(ctx)
	if err != nil {
		return a.outcomeFromError(err)
	}
	spending, err := a.transactions.SpendingByAccount(ctx)
	if err != nil {
		return a.outcomeFromError(err)
	}
	return &Outcome{Reply: balanceReply(stats.WithStats(accounts, spending))}
}

func (a *Assistant) handleChat(ctx context.Context, message string) *Outcome {
	if a.gem == nil {
		return &Outcome{Reply: "Oi! Eu sou a DIANE. Me conta um gasto (\"gastei 50 no mercado\"), pede uma lista de compras ou registra um preço que eu anoto tudo pra você."}
	}

	contextBlock, err := a.chatContext(ctx)
	if err != nil {
		logger.Log.Warn().Err(err).Msg("failed to build chat context")
	}
	history := a.chatHistory(ctx)

	var reply string
	var inv *gemini.Invocation
	err = a.withRetry(ctx, func(ctx context.Context) error {
		var err error
		reply, inv, err = gemini.ChatReply(ctx, a.gem, message, contextBlock, history)
		return err
	})
	a.logPrompt(models.PromptKindChat, inv)
	if err != nil {
		return a.modelFailure(err)
	}
	return &Outcome{Reply: reply}
}

// chatContext assembles the financial snapshot for the chat prompt.
func (a *Assistant) chatContext(ctx context.Context) (string, error) {
	var b strings.Builder

	accounts, err := a.accounts.GetAll(ctx)
	if err != nil {
		return "", err
	}
	spending, err := a.transactions.SpendingByAccount(ctx)
	if err != nil {
		return "", err
	}
	for _, acc := range stats.WithStats(accounts, spending) {
		b.WriteString("Conta ")
		b.WriteString(acc.Name)
		b.WriteString(": saldo ")
		b.WriteString(FormatBRL(acc.Balance))
		b.WriteString(", saldo efetivo ")
		b.WriteString(FormatBRL(acc.EffectiveBalance))
		b.WriteByte('\n')
	}

	txs, err := a.transactions.List(ctx, 10, nil, nil)
	if err != nil {
		return "", err
	}
	if len(txs) > 0 {
		b.WriteString("Últimas transações (total ")
		b.WriteString(FormatBRL(sumAmounts(txs)))
		b.WriteString("):\n")
		for _, tx := range txs {
			b.WriteString("- ")
			b.WriteString(tx.TxDate.Format(models.DateLayout))
			b.WriteString(" ")
			b.WriteString(tx.Description)
			b.WriteString(" ")
			b.WriteString(FormatBRL(tx.Amount))
			b.WriteString(" (")
			b.WriteString(tx.CategoryName)
			b.WriteString(")\n")
		}
	}

	if list, err := a.shopping.GetActive(ctx); err == nil {
		b.WriteString("Lista de compras ativa \"")
		b.WriteString(list.Name)
		b.WriteString("\": ")
		b.WriteString(logger.SummarizeItems(itemNames(list.Items)))
		b.WriteByte('\n')
	}

	return strings.TrimSpace(b.String()), nil
}

func (a *Assistant) chatHistory(ctx context.Context) []gemini.ChatTurn {
	messages, err := a.chat.Recent(ctx, chatHistoryLimit)
	if err != nil {
		logger.Log.Warn().Err(err).Msg("failed to load chat history")
		return nil
	}
	turns := make([]gemini.ChatTurn, 0, len(messages))
	for _, m := range messages {
		turns = append(turns, gemini.ChatTurn{Role: m.Role, Content: m.Content})
	}
	return turns
}

// withRetry runs one model call, retrying once with backoff on transient
// transport failures. Quota errors surface immediately.
func (a *Assistant) withRetry(ctx context.Context, call func(ctx context.Context) error) error {
	err := call(ctx)
	if err == nil || !gemini.Retryable(err) {
		return err
	}

	logger.Log.Debug().Err(err).Msg("retrying model call after transient failure")
	select {
	case <-time.After(retryBackoff):
	case <-ctx.Done():
		return err
	}
	return call(ctx)
}

// logPrompt appends the audit record of one model invocation. Fire and
// forget: runs detached from the request so a logging failure never fails
// the user-facing reply. Inserts are serialized with each other; the message
// loop drains them before its trailing history append.
func (a *Assistant) logPrompt(kind string, inv *gemini.Invocation) {
	if inv == nil {
		return
	}
	model := ""
	if a.gem != nil {
		model = a.gem.Model()
	}
	a.logWG.Add(1)
	go func() {
		defer a.logWG.Done()
		a.logMu.Lock()
		defer a.logMu.Unlock()
		ctx, cancel := context.WithTimeout(context.Background(), promptLogTimeout)
		defer cancel()
		if err := a.prompts.Insert(ctx, kind, inv.Prompt, inv.Response, model); err != nil {
			logger.Log.Warn().Err(err).Str("kind", kind).Msg("failed to store prompt log")
		}
	}()
}

// modelFailure maps a failed model call to an apologetic outcome with the
// error_type the UI styles on.
func (a *Assistant) modelFailure(err error) *Outcome {
	var errType ErrorType
	switch gemini.ClassifyError(err) {
	case gemini.ClassQuota:
		errType = ErrorQuota
	case gemini.ClassNetwork:
		errType = ErrorNetwork
	default:
		errType = ErrorLLM
	}
	logger.Log.Error().Err(err).Str("error_type", string(errType)).Msg("model call failed")
	return &Outcome{Reply: apology(errType), ErrorType: errType}
}

// outcomeFromError turns applier and store failures into replies. Domain
// errors carry their own user-facing message; everything else gets a generic
// apology without an error_type.
func (a *Assistant) outcomeFromError(err error) *Outcome {
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		if domainErr.Type.surfaced() {
			return &Outcome{Reply: domainErr.Message, ErrorType: domainErr.Type}
		}
		return &Outcome{Reply: domainErr.Message}
	}
	if errors.Is(err, repository.ErrNotFound) {
		return &Outcome{Reply: "Não encontrei o que você mencionou. Pode conferir e tentar de novo?"}
	}

	logger.Log.Error().Err(err).Msg("failed to process message")
	return &Outcome{Reply: "Tive um problema pra processar sua mensagem. Pode tentar de novo?"}
}

func itemNames(items []models.ShoppingListItem) []string {
	names := make([]string, len(items))
	for i, item := range items {
		names[i] = item.Name
	}
	return names
}
