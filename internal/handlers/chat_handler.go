package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"jobbuddy/career-assistant/internal/models"
	"jobbuddy/career-assistant/internal/services"
)

type ChatHandler struct {
	chatService services.ChatService
}

func NewChatHandler(chatService services.ChatService) *ChatHandler {
	return &ChatHandler{chatService: chatService}
}

func (h *ChatHandler) HandleChat(c *fiber.Ctx) error {
	var req models.ChatRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	reply, err := h.chatService.Send(c.UserContext(), req.UserID, req.Message)
	if err != nil {
		if errors.Is(err, services.ErrEmptyMessage) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Empty message",
			})
		}
		if errors.Is(err, services.ErrService) {
			return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{
				"error": "The assistant is unavailable right now. Please try again.",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to process message",
		})
	}

	return c.JSON(models.ChatResponse{Reply: reply})
}

func (h *ChatHandler) HandleReset(c *fiber.Ctx) error {
	var req models.ResetRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Invalid request body",
			})
		}
	}

	if err := h.chatService.Reset(c.UserContext(), req.UserID); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to reset conversation",
		})
	}

	return c.JSON(fiber.Map{"status": "conversation reset"})
}
