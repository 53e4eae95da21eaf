package handlers

import (
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/spec-kit/registration-service/internal/service"
)

// WebhookHandler receives Telegram updates. It must always answer with a
// success status: an error response would make Telegram redeliver the
// update and duplicate operator prompts.
type WebhookHandler struct {
	approvals *service.ApprovalService
	notifier  service.OperatorNotifier
	logger    *zap.Logger
}

// NewWebhookHandler constructs handler.
func NewWebhookHandler(approvals *service.ApprovalService, notifier service.OperatorNotifier, logger *zap.Logger) *WebhookHandler {
	return &WebhookHandler{approvals: approvals, notifier: notifier, logger: logger}
}

// Handle processes POST /telegram/webhook.
func (h *WebhookHandler) Handle(c *fiber.Ctx) error {
	var update tgbotapi.Update
	if err := c.BodyParser(&update); err != nil {
		h.logger.Warn("undecodable telegram update", zap.Error(err))
		return c.JSON(fiber.Map{"ok": true})
	}

	ctx := c.UserContext()

	switch {
	case update.CallbackQuery != nil:
		cq := update.CallbackQuery
		chatID := cq.From.ID
		messageID := 0
		if cq.Message != nil {
			chatID = cq.Message.Chat.ID
			messageID = cq.Message.MessageID
		}

		if _, err := h.approvals.HandleAction(ctx, chatID, cq.Data, messageID); err != nil {
			h.logger.Error("callback handling failed",
				zap.Int64("chat_id", chatID),
				zap.String("data", cq.Data),
				zap.Error(err))
		}
		if err := h.notifier.AnswerCallback(ctx, cq.ID); err != nil {
			h.logger.Warn("failed to answer callback", zap.Error(err))
		}

	case update.Message != nil && strings.TrimSpace(update.Message.Text) != "":
		msg := update.Message
		if _, err := h.approvals.HandleText(ctx, msg.Chat.ID, msg.Text, msg.MessageID); err != nil {
			h.logger.Error("text handling failed",
				zap.Int64("chat_id", msg.Chat.ID),
				zap.Error(err))
		}
	}

	return c.JSON(fiber.Map{"ok": true})
}
