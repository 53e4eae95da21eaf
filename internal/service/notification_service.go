package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/spec-kit/registration-service/internal/events"
	"github.com/spec-kit/registration-service/internal/repository"
	"github.com/spec-kit/registration-service/pkg/util"
)

// NotificationService forwards registration lifecycle events to the operator
// channel and records audit log entries. It runs as an event subscriber so a
// notification failure can never fail the operation that emitted the event.
type NotificationService struct {
	dispatcher    events.Dispatcher
	notifier      OperatorNotifier
	registrations repository.RegistrationRepository
	logger        *zap.Logger
}

// NewNotificationService creates the service.
func NewNotificationService(dispatcher events.Dispatcher, notifier OperatorNotifier, registrations repository.RegistrationRepository, logger *zap.Logger) *NotificationService {
	return &NotificationService{
		dispatcher:    dispatcher,
		notifier:      notifier,
		registrations: registrations,
		logger:        logger,
	}
}

// RegisterHandlers subscribes to events.
func (n *NotificationService) RegisterHandlers() {
	if n.dispatcher == nil {
		return
	}
	n.dispatcher.Subscribe(events.EventRegistrationReceived, n.handleRegistrationReceived)
	n.dispatcher.Subscribe(events.EventRegistrationApproved, n.handleRegistrationApproved)
	n.dispatcher.Subscribe(events.EventRegistrationRejected, n.handleRegistrationRejected)
}

func (n *NotificationService) handleRegistrationReceived(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.RegistrationReceivedPayload)
	if !ok || payload.Registration == nil {
		n.logger.Warn("RegistrationReceived with unexpected payload", zap.String("registration_id", event.RegistrationID))
		return nil
	}

	messageID, err := n.notifier.SendOperatorPrompt(ctx, payload.Registration)
	if err != nil {
		n.logger.Warn("operator notification failed; registration retained",
			zap.String("registration_id", event.RegistrationID),
			zap.Error(err))
		return util.NewUpstreamError(err)
	}

	// Keep the prompt's message id on the record so the outcome can be
	// written back into the original message later.
	if err := n.registrations.SetTelegramMessageID(ctx, payload.Registration.ID, messageID); err != nil {
		n.logger.Warn("failed to store prompt message id",
			zap.String("registration_id", event.RegistrationID),
			zap.Error(err))
	}
	return nil
}

func (n *NotificationService) handleRegistrationApproved(ctx context.Context, event events.Event) error {
	n.logger.Info("RegistrationApproved",
		zap.String("registration_id", event.RegistrationID),
		zap.Any("payload", event.Payload))
	return nil
}

func (n *NotificationService) handleRegistrationRejected(ctx context.Context, event events.Event) error {
	n.logger.Info("RegistrationRejected",
		zap.String("registration_id", event.RegistrationID),
		zap.Any("payload", event.Payload))
	return nil
}
