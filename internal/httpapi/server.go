// Package httpapi exposes the assistant and the domain store over HTTP+JSON.
package httpapi

import (
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"gitlab.com/ravilima/diane/internal/assistant"
	"gitlab.com/ravilima/diane/internal/database"
	"gitlab.com/ravilima/diane/internal/logger"
	"gitlab.com/ravilima/diane/internal/repository"
)

// Server holds the handlers' dependencies.
type Server struct {
	db        database.DB
	assistant *assistant.Assistant

	accounts     *repository.AccountRepository
	categories   *repository.CategoryRepository
	transactions *repository.TransactionRepository
	shopping     *repository.ShoppingRepository
	prices       *repository.PriceRepository
	prompts      *repository.PromptLogRepository

	validate *validator.Validate
}

// New builds the Fiber application with every route registered.
func New(db database.DB, asst *assistant.Assistant) *fiber.App {
	s := &Server{
		db:           db,
		assistant:    asst,
		accounts:     repository.NewAccountRepository(db),
		categories:   repository.NewCategoryRepository(db),
		transactions: repository.NewTransactionRepository(db),
		shopping:     repository.NewShoppingRepository(db),
		prices:       repository.NewPriceRepository(db),
		prompts:      repository.NewPromptLogRepository(db),
		validate:     validator.New(),
	}

	app := fiber.New(fiber.Config{
		AppName: "diane",
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			var fiberErr *fiber.Error
			if errors.As(err, &fiberErr) {
				return c.Status(fiberErr.Code).JSON(fiber.Map{"detail": fiberErr.Message})
			}
			logger.Log.Error().Err(err).Str("path", c.Path()).Msg("unhandled request error")
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"detail": "internal server error"})
		},
	})
	app.Use(recover.New())

	app.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"service": "diane", "status": "ok"})
	})

	api := app.Group("/api")

	api.Post("/chat", s.handleChat)

	api.Get("/accounts", s.listAccounts)
	api.Post("/accounts", s.createAccount)
	api.Get("/accounts/:id", s.getAccount)
	api.Patch("/accounts/:id", s.updateAccount)
	api.Delete("/accounts/:id", s.deleteAccount)

	api.Get("/categories", s.listCategories)

	api.Get("/transactions", s.listTransactions)
	api.Get("/stats/monthly", s.monthlyStats)

	api.Get("/shopping-lists", s.listShoppingLists)
	api.Post("/shopping-lists", s.createShoppingList)
	api.Get("/shopping-lists/:id", s.getShoppingList)
	api.Patch("/shopping-lists/:id", s.updateShoppingList)
	api.Delete("/shopping-lists/:id", s.deleteShoppingList)
	api.Post("/shopping-lists/:id/activate", s.activateShoppingList)
	api.Post("/shopping-lists/:id/items", s.addShoppingItems)
	api.Patch("/shopping-lists/:id/items/check", s.checkShoppingItems)
	api.Patch("/shopping-lists/:id/items/:itemID/toggle", s.toggleShoppingItem)
	api.Patch("/shopping-lists/:id/items/:itemID", s.updateShoppingItem)
	api.Delete("/shopping-lists/:id/items/:itemID", s.deleteShoppingItem)

	api.Get("/product-prices", s.listProductPrices)
	api.Post("/product-prices", s.createProductPrice)
	api.Patch("/product-prices/:id", s.updateProductPrice)
	api.Delete("/product-prices/:id", s.deleteProductPrice)

	api.Get("/prompt-logs", s.listPromptLogs)

	return app
}
