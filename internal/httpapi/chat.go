package httpapi

import (
	"github.com/gofiber/fiber/v2"
)

// handleChat runs the assistant pipeline. Model failures still answer 200:
// the apologetic reply plus error_type keeps the conversation alive.
func (s *Server) handleChat(c *fiber.Ctx) error {
	var req ChatRequest
	if err := s.bindAndValidate(c, &req); err != nil {
		return respondError(c, err)
	}

	outcome := s.assistant.HandleMessage(c.Context(), req.Message)

	resp := ChatResponse{
		Reply:                outcome.Reply,
		ExtractedTransaction: toTransactionDTO(outcome.Transaction),
	}
	if outcome.ErrorType != "" {
		errType := string(outcome.ErrorType)
		resp.ErrorType = &errType
	}
	return c.JSON(resp)
}
