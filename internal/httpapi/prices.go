package httpapi

import (
	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"

	"gitlab.com/ravilima/diane/internal/stats"
)

type createPriceRequest struct {
	ProductName string          `json:"product_name" validate:"required,min=1,max=200"`
	MarketName  string          `json:"market_name" validate:"required,min=1,max=200"`
	Price       decimal.Decimal `json:"price"`
}

type updatePriceRequest struct {
	ProductName *string          `json:"product_name" validate:"omitempty,min=1,max=200"`
	Price       *decimal.Decimal `json:"price"`
}

// listProductPrices returns the current entries grouped per market, with
// best-price flags computed across markets.
func (s *Server) listProductPrices(c *fiber.Ctx) error {
	current, err := s.prices.Current(c.Context())
	if err != nil {
		return respondError(c, err)
	}
	flagged := stats.FlagBestPrices(current)
	return c.JSON(toMarketGroupDTOs(stats.GroupByMarket(flagged)))
}

func (s *Server) createProductPrice(c *fiber.Ctx) error {
	var req createPriceRequest
	if err := s.bindAndValidate(c, &req); err != nil {
		return respondError(c, err)
	}
	if !req.Price.IsPositive() {
		return respondError(c, fiber.NewError(fiber.StatusBadRequest, "price must be positive"))
	}

	entry, err := s.prices.Insert(c.Context(), req.ProductName, req.MarketName, req.Price)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(toPriceEntryDTO(*entry))
}

func (s *Server) updateProductPrice(c *fiber.Ctx) error {
	id, err := idParam(c, "id")
	if err != nil {
		return respondError(c, err)
	}
	var req updatePriceRequest
	if err := s.bindAndValidate(c, &req); err != nil {
		return respondError(c, err)
	}
	if req.ProductName == nil && req.Price == nil {
		return respondError(c, fiber.NewError(fiber.StatusBadRequest, "nothing to update"))
	}
	if req.Price != nil && !req.Price.IsPositive() {
		return respondError(c, fiber.NewError(fiber.StatusBadRequest, "price must be positive"))
	}

	if err := s.prices.Update(c.Context(), id, req.ProductName, req.Price); err != nil {
		return respondError(c, err)
	}
	entry, err := s.prices.GetByID(c.Context(), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(toPriceEntryDTO(*entry))
}

func (s *Server) deleteProductPrice(c *fiber.Ctx) error {
	id, err := idParam(c, "id")
	if err != nil {
		return respondError(c, err)
	}
	if err := s.prices.Delete(c.Context(), id); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
