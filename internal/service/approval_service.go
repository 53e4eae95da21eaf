package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/registration-service/internal/domain"
	"github.com/spec-kit/registration-service/internal/events"
	"github.com/spec-kit/registration-service/internal/repository"
)

// OperatorNotifier abstracts the chat transport used to interact with the
// operator.
type OperatorNotifier interface {
	// SendOperatorPrompt delivers the interactive registration prompt to the
	// operator channel and returns the sent message id.
	SendOperatorPrompt(ctx context.Context, reg *domain.Registration) (int, error)
	// Reply sends text into a conversation, threaded to replyTo when non-zero.
	Reply(ctx context.Context, chatID int64, text string, replyTo int) error
	// EditPrompt rewrites a previously sent operator prompt.
	EditPrompt(ctx context.Context, messageID int, text string) error
	// AnswerCallback acknowledges a clicked inline button.
	AnswerCallback(ctx context.Context, callbackID string) error
}

// ApprovalService is the approval session state machine. It consumes
// operator callback and text events, keeps per-conversation session state in
// the session store, and transitions registration records.
type ApprovalService struct {
	registrations repository.RegistrationRepository
	sessions      repository.SessionRepository
	notifier      OperatorNotifier
	dispatcher    events.Dispatcher
	logger        *zap.Logger
	sessionTTL    time.Duration
}

// ApprovalDependencies bundles collaborators for the service.
type ApprovalDependencies struct {
	Registrations repository.RegistrationRepository
	Sessions      repository.SessionRepository
	Notifier      OperatorNotifier
	Dispatcher    events.Dispatcher
	Logger        *zap.Logger
	SessionTTL    time.Duration
}

// NewApprovalService constructs the service.
func NewApprovalService(deps ApprovalDependencies) *ApprovalService {
	return &ApprovalService{
		registrations: deps.Registrations,
		sessions:      deps.Sessions,
		notifier:      deps.Notifier,
		dispatcher:    deps.Dispatcher,
		logger:        deps.Logger,
		sessionTTL:    deps.SessionTTL,
	}
}

// HandleAction processes an inline-button click. The token decodes to an
// action kind and a target registration id; unknown tokens produce an
// "invalid command" reply for the operator rather than an error. The reply
// text is returned for observability and threaded back into the
// conversation as a side effect.
func (s *ApprovalService) HandleAction(ctx context.Context, chatID int64, token string, messageID int) (string, error) {
	action, err := domain.ParseActionToken(token)
	if err != nil {
		return s.reply(ctx, chatID, "⚠️ Invalid command.", messageID)
	}

	reg, err := s.registrations.GetByID(ctx, action.RegistrationID)
	if errors.Is(err, repository.ErrNotFound) {
		return s.reply(ctx, chatID, "⚠️ Registration not found. It may have been removed.", messageID)
	}
	if err != nil {
		return "", err
	}

	switch action.Kind {
	case domain.ActionReject:
		return s.handleReject(ctx, chatID, reg, messageID)
	case domain.ActionApprove:
		return s.openSession(ctx, chatID, reg, domain.IntentAwaitingApprovalCode, messageID)
	case domain.ActionAssignCode:
		return s.openSession(ctx, chatID, reg, domain.IntentAwaitingCustomCode, messageID)
	default:
		return s.reply(ctx, chatID, "⚠️ Invalid command.", messageID)
	}
}

// HandleText processes free text from an operator conversation. Outside a
// live code-awaiting session the text is silently ignored.
func (s *ApprovalService) HandleText(ctx context.Context, chatID int64, text string, messageID int) (string, error) {
	session, err := s.sessions.Get(ctx, chatID)
	if err != nil {
		return "", err
	}
	if session == nil {
		return "", nil
	}

	code := strings.TrimSpace(text)
	if !domain.ValidUniqueCode(code) {
		// Session stays open so the operator can retry until it expires.
		return s.reply(ctx, chatID,
			fmt.Sprintf("⚠️ Invalid code. Codes need at least %d characters: letters, digits, hyphen or underscore.", domain.MinCodeLength),
			messageID)
	}

	if inUse, err := s.registrations.CodeInUse(ctx, code); err != nil {
		return "", err
	} else if inUse {
		return s.reply(ctx, chatID, "⚠️ That code is already in use. Please enter a different one.", messageID)
	}

	operator := fmt.Sprintf("telegram:%d", chatID)
	err = s.registrations.Approve(ctx, session.RegistrationID, code, operator)
	switch {
	case errors.Is(err, repository.ErrCodeTaken):
		// The pre-check raced with another assignment; same outcome.
		return s.reply(ctx, chatID, "⚠️ That code is already in use. Please enter a different one.", messageID)
	case errors.Is(err, repository.ErrNotFound):
		_ = s.sessions.Delete(ctx, chatID)
		return s.reply(ctx, chatID, "⚠️ Registration not found. It may have been removed.", messageID)
	case errors.Is(err, repository.ErrNotPending):
		_ = s.sessions.Delete(ctx, chatID)
		return s.reply(ctx, chatID, "⚠️ This registration is no longer pending.", messageID)
	case err != nil:
		return "", err
	}

	if err := s.sessions.Delete(ctx, chatID); err != nil {
		s.logger.Warn("failed to delete consumed session", zap.Int64("chat_id", chatID), zap.Error(err))
	}

	reg, err := s.registrations.GetByID(ctx, session.RegistrationID)
	if err != nil {
		return "", err
	}

	s.logger.Info("registration approved",
		zap.String("registration_id", reg.ID),
		zap.String("unique_code", code),
		zap.Int64("chat_id", chatID))

	_ = s.dispatcher.Publish(ctx, events.Event{
		ID:             uuid.NewString(),
		Type:           events.EventRegistrationApproved,
		RegistrationID: reg.ID,
		Timestamp:      time.Now(),
		Payload:        events.RegistrationApprovedPayload{UniqueCode: code, OperatorChatID: chatID},
	})

	s.editPromptOutcome(ctx, reg, fmt.Sprintf("✅ Approved with code %s", code))

	confirmation := fmt.Sprintf(
		"✅ Registration approved!\n\n👤 Name: %s\n📞 Phone: %s\n🔑 Code: %s",
		reg.FullName(), reg.Phone, code)
	return s.reply(ctx, chatID, confirmation, messageID)
}

func (s *ApprovalService) handleReject(ctx context.Context, chatID int64, reg *domain.Registration, messageID int) (string, error) {
	if err := s.registrations.Reject(ctx, reg.ID); err != nil {
		return "", err
	}

	// A pending code-entry session for this conversation is void after a
	// reject.
	if err := s.sessions.Delete(ctx, chatID); err != nil {
		s.logger.Warn("failed to clear session on reject", zap.Int64("chat_id", chatID), zap.Error(err))
	}

	s.logger.Info("registration rejected",
		zap.String("registration_id", reg.ID),
		zap.Int64("chat_id", chatID))

	_ = s.dispatcher.Publish(ctx, events.Event{
		ID:             uuid.NewString(),
		Type:           events.EventRegistrationRejected,
		RegistrationID: reg.ID,
		Timestamp:      time.Now(),
		Payload:        events.RegistrationRejectedPayload{OperatorChatID: chatID},
	})

	s.editPromptOutcome(ctx, reg, "❌ Rejected")

	text := fmt.Sprintf("❌ Registration for %s rejected.", reg.FullName())
	return s.reply(ctx, chatID, text, messageID)
}

func (s *ApprovalService) openSession(ctx context.Context, chatID int64, reg *domain.Registration, intent domain.SessionIntent, messageID int) (string, error) {
	session := domain.NewApprovalSession(chatID, reg.ID, intent, s.sessionTTL, time.Now())
	if err := s.sessions.Put(ctx, session); err != nil {
		return "", err
	}

	s.logger.Info("approval session opened",
		zap.String("registration_id", reg.ID),
		zap.Int64("chat_id", chatID),
		zap.String("intent", string(intent)))

	var text string
	switch intent {
	case domain.IntentAwaitingCustomCode:
		text = fmt.Sprintf("🔑 Reply with the custom code to assign to %s.\n\nExample: USER-2024 or SHOP-001", reg.FullName())
	default:
		text = fmt.Sprintf("📝 Reply with the code to approve %s.\n\nExample: POS123 or CUSTOM456", reg.FullName())
	}
	return s.reply(ctx, chatID, text, messageID)
}

// reply sends outbound text back into the conversation. Send failures are
// logged and swallowed: the state transition already happened and the
// channel must not observe an error.
func (s *ApprovalService) reply(ctx context.Context, chatID int64, text string, replyTo int) (string, error) {
	if err := s.notifier.Reply(ctx, chatID, text, replyTo); err != nil {
		s.logger.Warn("failed to send operator reply", zap.Int64("chat_id", chatID), zap.Error(err))
	}
	return text, nil
}

// editPromptOutcome rewrites the original operator prompt to reflect the
// final outcome. Best-effort: the prompt may be missing or already edited.
func (s *ApprovalService) editPromptOutcome(ctx context.Context, reg *domain.Registration, outcome string) {
	if reg.TelegramMessageID == nil {
		return
	}
	text := fmt.Sprintf("%s\n\n👤 %s\n🆔 %s\n📞 %s", outcome, reg.FullName(), reg.NationalID, reg.Phone)
	if err := s.notifier.EditPrompt(ctx, *reg.TelegramMessageID, text); err != nil {
		s.logger.Warn("failed to edit operator prompt",
			zap.String("registration_id", reg.ID),
			zap.Error(err))
	}
}
