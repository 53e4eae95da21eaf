package telegram

import (
	"context"
	"fmt"
	"html"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/spec-kit/registration-service/internal/config"
	"github.com/spec-kit/registration-service/internal/domain"
)

// Client wraps the Telegram bot API for the pieces this service needs:
// sending the interactive operator prompt, threaded replies, prompt edits
// and callback acknowledgements. The bot API itself carries no context
// support; ctx is accepted to match the service interfaces.
type Client struct {
	api            *tgbotapi.BotAPI
	operatorChatID int64
	logger         *zap.Logger
}

// NewClient authorizes against the bot API.
func NewClient(cfg config.TelegramConfig, logger *zap.Logger) (*Client, error) {
	api, err := tgbotapi.NewBotAPI(cfg.BotToken)
	if err != nil {
		return nil, fmt.Errorf("authorize telegram bot: %w", err)
	}

	logger.Info("telegram bot authorized", zap.String("username", api.Self.UserName))

	return &Client{
		api:            api,
		operatorChatID: cfg.OperatorChatID,
		logger:         logger,
	}, nil
}

// EnsureWebhook registers the webhook URL with Telegram so updates are
// pushed to this service instead of polled.
func (c *Client) EnsureWebhook(url string) error {
	wh, err := tgbotapi.NewWebhook(url)
	if err != nil {
		return fmt.Errorf("build webhook config: %w", err)
	}
	if _, err := c.api.Request(wh); err != nil {
		return fmt.Errorf("set webhook: %w", err)
	}
	c.logger.Info("telegram webhook registered", zap.String("url", url))
	return nil
}

// SendOperatorPrompt sends the registration details with approve / reject /
// assign-code inline buttons to the operator chat and returns the message id.
func (c *Client) SendOperatorPrompt(ctx context.Context, reg *domain.Registration) (int, error) {
	text := fmt.Sprintf(
		"📋 <b>New registration request</b>\n\n"+
			"👤 <b>Name:</b> %s\n"+
			"🆔 <b>National ID:</b> %s\n"+
			"📞 <b>Phone:</b> %s\n"+
			"⏰ <b>Submitted:</b> %s\n"+
			"🆔 <b>Request ID:</b> %s\n\n"+
			"Choose an action:",
		html.EscapeString(reg.FullName()),
		html.EscapeString(reg.NationalID),
		html.EscapeString(reg.Phone),
		reg.CreatedAt.Format("2006-01-02 15:04:05"),
		reg.ID,
	)

	msg := tgbotapi.NewMessage(c.operatorChatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	msg.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("✅ Approve",
				domain.Action{Kind: domain.ActionApprove, RegistrationID: reg.ID}.Token()),
			tgbotapi.NewInlineKeyboardButtonData("❌ Reject",
				domain.Action{Kind: domain.ActionReject, RegistrationID: reg.ID}.Token()),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🔑 Assign custom code",
				domain.Action{Kind: domain.ActionAssignCode, RegistrationID: reg.ID}.Token()),
		),
	)

	sent, err := c.api.Send(msg)
	if err != nil {
		return 0, fmt.Errorf("send operator prompt: %w", err)
	}
	return sent.MessageID, nil
}

// Reply sends text into a conversation, threaded when replyTo is non-zero.
func (c *Client) Reply(ctx context.Context, chatID int64, text string, replyTo int) error {
	msg := tgbotapi.NewMessage(chatID, text)
	if replyTo != 0 {
		msg.ReplyToMessageID = replyTo
	}
	if _, err := c.api.Send(msg); err != nil {
		return fmt.Errorf("send reply: %w", err)
	}
	return nil
}

// EditPrompt rewrites a previously sent operator prompt, dropping its
// keyboard.
func (c *Client) EditPrompt(ctx context.Context, messageID int, text string) error {
	edit := tgbotapi.NewEditMessageText(c.operatorChatID, messageID, text)
	if _, err := c.api.Send(edit); err != nil {
		return fmt.Errorf("edit prompt: %w", err)
	}
	return nil
}

// AnswerCallback acknowledges an inline button click so the client stops
// showing a spinner.
func (c *Client) AnswerCallback(ctx context.Context, callbackID string) error {
	cb := tgbotapi.NewCallback(callbackID, "")
	if _, err := c.api.Request(cb); err != nil {
		return fmt.Errorf("answer callback: %w", err)
	}
	return nil
}
