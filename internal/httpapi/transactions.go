package httpapi

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"gitlab.com/ravilima/diane/internal/stats"
)

const defaultTransactionLimit = 50

func (s *Server) listTransactions(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", defaultTransactionLimit)
	if limit <= 0 || limit > 500 {
		limit = defaultTransactionLimit
	}
	year, err := queryInt(c, "year")
	if err != nil {
		return respondError(c, err)
	}
	month, err := queryInt(c, "month")
	if err != nil {
		return respondError(c, err)
	}

	txs, err := s.transactions.List(c.Context(), limit, year, month)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(toTransactionDTOs(txs))
}

func (s *Server) monthlyStats(c *fiber.Ctx) error {
	now := time.Now()
	year := c.QueryInt("year", now.Year())
	month := c.QueryInt("month", int(now.Month()))
	if month < 1 || month > 12 {
		return respondError(c, fiber.NewError(fiber.StatusBadRequest, "invalid month"))
	}

	txs, err := s.transactions.ListMonth(c.Context(), year, month)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(toMonthlyStatsDTO(stats.Monthly(year, month, txs)))
}

func (s *Server) listPromptLogs(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", 50)
	if limit <= 0 || limit > 500 {
		limit = 50
	}
	offset := c.QueryInt("offset", 0)
	if offset < 0 {
		offset = 0
	}

	logs, err := s.prompts.List(c.Context(), limit, offset, c.Query("kind"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(toPromptLogDTOs(logs))
}
