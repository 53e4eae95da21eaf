package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/registration-service/internal/domain"
	"github.com/spec-kit/registration-service/internal/events"
	"github.com/spec-kit/registration-service/internal/repository"
	"github.com/spec-kit/registration-service/pkg/util"
)

// RegistrationService handles intake and status queries for registration
// requests.
type RegistrationService struct {
	registrations repository.RegistrationRepository
	dispatcher    events.Dispatcher
	logger        *zap.Logger
}

// RegistrationDependencies bundles collaborators for the service.
type RegistrationDependencies struct {
	Registrations repository.RegistrationRepository
	Dispatcher    events.Dispatcher
	Logger        *zap.Logger
}

// SubmitInput describes a registration submission.
type SubmitInput struct {
	FirstName  string
	LastName   string
	NationalID string
	Phone      string
	RemoteIP   string
}

// NewRegistrationService constructs the service.
func NewRegistrationService(deps RegistrationDependencies) *RegistrationService {
	return &RegistrationService{
		registrations: deps.Registrations,
		dispatcher:    deps.Dispatcher,
		logger:        deps.Logger,
	}
}

// Submit validates the submission, persists a pending record and publishes a
// registration.received event so the operator channel gets notified. The
// notification leg is best-effort: its failure never fails the submission.
func (s *RegistrationService) Submit(ctx context.Context, input SubmitInput) (*domain.Registration, error) {
	if err := validateSubmission(input); err != nil {
		return nil, err
	}

	existing, err := s.registrations.GetByPhone(ctx, input.Phone)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}
	if existing != nil {
		return nil, util.NewDuplicateSubmission("phone number already registered", map[string]any{
			"phoneNumber": input.Phone,
		})
	}

	reg := &domain.Registration{
		ID:          uuid.NewString(),
		FirstName:   input.FirstName,
		LastName:    input.LastName,
		NationalID:  input.NationalID,
		Phone:       input.Phone,
		Status:      domain.StatusPending,
		SubmitterIP: input.RemoteIP,
	}

	if err := s.registrations.Create(ctx, reg); err != nil {
		return nil, err
	}

	s.logger.Info("registration received",
		zap.String("registration_id", reg.ID),
		zap.String("phone", reg.Phone))

	_ = s.dispatcher.Publish(ctx, events.Event{
		ID:             uuid.NewString(),
		Type:           events.EventRegistrationReceived,
		RegistrationID: reg.ID,
		Timestamp:      time.Now(),
		Payload:        events.RegistrationReceivedPayload{Registration: reg},
	})

	return reg, nil
}

// Status returns the current record for a registration id. Read-only.
func (s *RegistrationService) Status(ctx context.Context, id string) (*domain.Registration, error) {
	reg, err := s.registrations.GetByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, util.NewNotFound("registration", map[string]any{"userId": id})
	}
	if err != nil {
		return nil, err
	}
	return reg, nil
}

func validateSubmission(input SubmitInput) error {
	missing := map[string]any{}
	if input.FirstName == "" {
		missing["firstName"] = "required"
	}
	if input.LastName == "" {
		missing["lastName"] = "required"
	}
	if input.NationalID == "" {
		missing["nationalCode"] = "required"
	}
	if input.Phone == "" {
		missing["phoneNumber"] = "required"
	}
	if len(missing) > 0 {
		return util.NewValidationError("missing required fields", missing)
	}

	if !domain.ValidNationalID(input.NationalID) {
		return util.NewValidationError("national code must be exactly 13 digits", map[string]any{
			"nationalCode": input.NationalID,
		})
	}
	if !domain.ValidPhone(input.Phone) {
		return util.NewValidationError("phone number must be exactly 10 digits", map[string]any{
			"phoneNumber": input.Phone,
		})
	}
	return nil
}
