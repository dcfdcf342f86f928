package server

import (
	"github.com/gofiber/fiber/v2"

	"dealfeed/internal/models"
	"dealfeed/internal/validation"
)

// GetChatMessages returns the conversation between the calling user and
// :userId, oldest first.
func (s *Server) GetChatMessages(c *fiber.Ctx) error {
	other := c.Params("userId")

	messages, err := s.store.ListChatMessages(c.UserContext(), callerID(c), other)
	if err != nil {
		return respondError(c, models.NewInternalError(err))
	}
	return c.JSON(messages)
}

type sendMessageRequest struct {
	Content string `json:"content" validate:"required,min=1,max=2000"`
	DealID  *uint  `json:"dealId"`
}

// SendChatMessage sends a direct message from the calling user to :userId.
// A message may reference a deal so users can share finds in chat.
func (s *Server) SendChatMessage(c *fiber.Ctx) error {
	other := c.Params("userId")

	var req sendMessageRequest
	if err := c.BodyParser(&req); err != nil {
		return respondError(c, models.NewValidationError("Invalid request body"))
	}
	if err := validation.ValidateStruct(req); err != nil {
		return respondError(c, err)
	}

	message := &models.ChatMessage{
		FromUserID: callerID(c),
		ToUserID:   other,
		Content:    req.Content,
		DealID:     req.DealID,
	}
	if err := s.store.CreateChatMessage(c.UserContext(), message); err != nil {
		return respondError(c, models.NewInternalError(err))
	}
	return c.Status(fiber.StatusCreated).JSON(message)
}

// MarkMessageRead stamps a message's read time.
func (s *Server) MarkMessageRead(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return respondError(c, err)
	}

	ok, err := s.store.MarkMessageRead(c.UserContext(), id)
	if err != nil {
		return respondError(c, models.NewInternalError(err))
	}
	if !ok {
		return respondError(c, models.NewNotFoundError("message", id))
	}
	return c.SendStatus(fiber.StatusNoContent)
}
