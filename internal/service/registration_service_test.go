package service_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/registration-service/internal/domain"
	"github.com/spec-kit/registration-service/internal/events"
	"github.com/spec-kit/registration-service/internal/service"
	"github.com/spec-kit/registration-service/internal/worker"
	"github.com/spec-kit/registration-service/pkg/util"
)

type registrationFixture struct {
	repo     *memRegistrationRepo
	notifier *fakeNotifier
	svc      *service.RegistrationService
}

func newRegistrationFixture(t *testing.T) *registrationFixture {
	t.Helper()

	repo := newMemRegistrationRepo()
	notifier := newFakeNotifier()
	dispatcher := events.NewInMemoryDispatcher()
	logger := zap.NewNop()

	worker.StartNotificationWorker(service.NewNotificationService(dispatcher, notifier, repo, logger))

	svc := service.NewRegistrationService(service.RegistrationDependencies{
		Registrations: repo,
		Dispatcher:    dispatcher,
		Logger:        logger,
	})
	return &registrationFixture{repo: repo, notifier: notifier, svc: svc}
}

func validSubmission() service.SubmitInput {
	return service.SubmitInput{
		FirstName:  "Ali",
		LastName:   "Rezaei",
		NationalID: "1234567890123",
		Phone:      "0912345678",
		RemoteIP:   "203.0.113.7",
	}
}

func TestSubmitCreatesPendingRecord(t *testing.T) {
	fx := newRegistrationFixture(t)

	reg, err := fx.svc.Submit(context.Background(), validSubmission())
	require.NoError(t, err)
	require.NotEmpty(t, reg.ID)

	stored, err := fx.repo.GetByID(context.Background(), reg.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPending, stored.Status)
	assert.Equal(t, "Ali", stored.FirstName)
	assert.Equal(t, "0912345678", stored.Phone)
	assert.Nil(t, stored.UniqueCode)
	assert.Nil(t, stored.ApprovedAt)

	// The operator prompt went out and its message id was written back.
	require.Equal(t, []string{reg.ID}, fx.notifier.prompts)
	require.NotNil(t, stored.TelegramMessageID)
}

func TestSubmitRejectsDuplicatePhone(t *testing.T) {
	fx := newRegistrationFixture(t)
	ctx := context.Background()

	_, err := fx.svc.Submit(ctx, validSubmission())
	require.NoError(t, err)

	input := validSubmission()
	input.FirstName = "Sara"
	input.NationalID = "9876543210987"
	_, err = fx.svc.Submit(ctx, input)

	var domainErr *util.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "DUPLICATE_SUBMISSION", domainErr.Code)
	assert.Len(t, fx.repo.regs, 1, "no second record for the same phone")
}

func TestSubmitValidation(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*service.SubmitInput)
	}{
		{"missing first name", func(in *service.SubmitInput) { in.FirstName = "" }},
		{"missing last name", func(in *service.SubmitInput) { in.LastName = "" }},
		{"missing national id", func(in *service.SubmitInput) { in.NationalID = "" }},
		{"missing phone", func(in *service.SubmitInput) { in.Phone = "" }},
		{"short national id", func(in *service.SubmitInput) { in.NationalID = "12345" }},
		{"non numeric national id", func(in *service.SubmitInput) { in.NationalID = "12345678901ab" }},
		{"short phone", func(in *service.SubmitInput) { in.Phone = "0912" }},
		{"long phone", func(in *service.SubmitInput) { in.Phone = "09123456789" }},
		{"non numeric phone", func(in *service.SubmitInput) { in.Phone = "09123x5678" }},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			fx := newRegistrationFixture(t)
			input := validSubmission()
			tc.mutate(&input)

			_, err := fx.svc.Submit(context.Background(), input)

			var domainErr *util.DomainError
			require.ErrorAs(t, err, &domainErr)
			assert.Equal(t, "VALIDATION_FAILED", domainErr.Code)
			assert.Empty(t, fx.repo.regs, "no record created on validation failure")
			assert.Empty(t, fx.notifier.prompts, "no notification sent on validation failure")
		})
	}
}

func TestSubmitSucceedsWhenNotificationFails(t *testing.T) {
	fx := newRegistrationFixture(t)
	fx.notifier.failPrompts = true

	reg, err := fx.svc.Submit(context.Background(), validSubmission())
	require.NoError(t, err, "notification failure must not fail the submission")

	stored, err := fx.repo.GetByID(context.Background(), reg.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPending, stored.Status, "record retained despite failed prompt")
	assert.Nil(t, stored.TelegramMessageID)
}

func TestStatusUnknownID(t *testing.T) {
	fx := newRegistrationFixture(t)

	_, err := fx.svc.Status(context.Background(), "no-such-id")

	var domainErr *util.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "NOT_FOUND", domainErr.Code)
}

func TestStatusReturnsRecord(t *testing.T) {
	fx := newRegistrationFixture(t)
	ctx := context.Background()

	reg, err := fx.svc.Submit(ctx, validSubmission())
	require.NoError(t, err)

	got, err := fx.svc.Status(ctx, reg.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPending, got.Status)
	assert.Nil(t, got.UniqueCode)

	require.NoError(t, fx.repo.Approve(ctx, reg.ID, "POS123", "telegram:1"))

	got, err = fx.svc.Status(ctx, reg.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusApproved, got.Status)
	require.NotNil(t, got.UniqueCode)
	assert.Equal(t, "POS123", *got.UniqueCode)
	assert.NotNil(t, got.ApprovedAt)
}

func TestStatusIsReadOnly(t *testing.T) {
	fx := newRegistrationFixture(t)
	ctx := context.Background()

	reg, err := fx.svc.Submit(ctx, validSubmission())
	require.NoError(t, err)

	before := *fx.repo.regs[reg.ID]
	_, err = fx.svc.Status(ctx, reg.ID)
	require.NoError(t, err)
	assert.Equal(t, before.Status, fx.repo.regs[reg.ID].Status)
}
