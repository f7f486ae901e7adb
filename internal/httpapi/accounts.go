package httpapi

import (
	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"

	"gitlab.com/ravilima/diane/internal/models"
	"gitlab.com/ravilima/diane/internal/stats"
)

type createAccountRequest struct {
	Name    string          `json:"name" validate:"required,min=1,max=100"`
	Balance decimal.Decimal `json:"balance"`
}

type updateAccountRequest struct {
	Name    *string          `json:"name" validate:"omitempty,min=1,max=100"`
	Balance *decimal.Decimal `json:"balance"`
}

// accountDTO pairs one account with its derived figures.
func (s *Server) accountDTO(c *fiber.Ctx, account *models.Account) (AccountDTO, error) {
	spending, err := s.transactions.SpendingByAccount(c.Context())
	if err != nil {
		return AccountDTO{}, err
	}
	withStats := stats.WithStats([]models.Account{*account}, spending)
	return toAccountDTO(withStats[0]), nil
}

func (s *Server) listAccounts(c *fiber.Ctx) error {
	accounts, err := s.accounts.GetAll(c.Context())
	if err != nil {
		return respondError(c, err)
	}
	spending, err := s.transactions.SpendingByAccount(c.Context())
	if err != nil {
		return respondError(c, err)
	}

	withStats := stats.WithStats(accounts, spending)
	out := make([]AccountDTO, len(withStats))
	for i, acc := range withStats {
		out[i] = toAccountDTO(acc)
	}
	return c.JSON(out)
}

func (s *Server) getAccount(c *fiber.Ctx) error {
	id, err := idParam(c, "id")
	if err != nil {
		return respondError(c, err)
	}
	account, err := s.accounts.GetByID(c.Context(), id)
	if err != nil {
		return respondError(c, err)
	}
	dto, err := s.accountDTO(c, account)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto)
}

func (s *Server) createAccount(c *fiber.Ctx) error {
	var req createAccountRequest
	if err := s.bindAndValidate(c, &req); err != nil {
		return respondError(c, err)
	}

	account, err := s.accounts.Create(c.Context(), req.Name, req.Balance)
	if err != nil {
		return respondError(c, err)
	}
	dto, err := s.accountDTO(c, account)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto)
}

func (s *Server) updateAccount(c *fiber.Ctx) error {
	id, err := idParam(c, "id")
	if err != nil {
		return respondError(c, err)
	}
	var req updateAccountRequest
	if err := s.bindAndValidate(c, &req); err != nil {
		return respondError(c, err)
	}
	if req.Name == nil && req.Balance == nil {
		return respondError(c, fiber.NewError(fiber.StatusBadRequest, "nothing to update"))
	}

	account, err := s.accounts.Update(c.Context(), id, req.Name, req.Balance)
	if err != nil {
		return respondError(c, err)
	}
	dto, err := s.accountDTO(c, account)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto)
}

func (s *Server) deleteAccount(c *fiber.Ctx) error {
	id, err := idParam(c, "id")
	if err != nil {
		return respondError(c, err)
	}
	if err := s.accounts.Delete(c.Context(), id); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (s *Server) listCategories(c *fiber.Ctx) error {
	categories, err := s.categories.GetAll(c.Context())
	if err != nil {
		return respondError(c, err)
	}
	out := make([]CategoryDTO, len(categories))
	for i, cat := range categories {
		out[i] = CategoryDTO{ID: cat.ID, Name: cat.Name}
	}
	return c.JSON(out)
}
