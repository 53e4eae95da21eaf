package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/registration-service/internal/api/dto"
	"github.com/spec-kit/registration-service/internal/domain"
	"github.com/spec-kit/registration-service/internal/service"
	"github.com/spec-kit/registration-service/pkg/util"
)

// RegistrationsHandler exposes submission and status endpoints.
type RegistrationsHandler struct {
	registrations *service.RegistrationService
}

// NewRegistrationsHandler constructs handler.
func NewRegistrationsHandler(registrations *service.RegistrationService) *RegistrationsHandler {
	return &RegistrationsHandler{registrations: registrations}
}

// Submit handles POST /api/registrations.
func (h *RegistrationsHandler) Submit(c *fiber.Ctx) error {
	var req dto.SubmitRegistrationRequest
	if err := c.BodyParser(&req); err != nil {
		return util.NewValidationError("invalid payload", nil)
	}

	reg, err := h.registrations.Submit(c.UserContext(), service.SubmitInput{
		FirstName:  req.FirstName,
		LastName:   req.LastName,
		NationalID: req.NationalCode,
		Phone:      req.PhoneNumber,
		RemoteIP:   c.IP(),
	})
	if err != nil {
		return err
	}

	return c.Status(http.StatusOK).JSON(dto.SubmitRegistrationResponse{
		Success: true,
		UserID:  reg.ID,
		Message: "Registration received. Awaiting operator approval.",
	})
}

// Status handles GET /api/registrations/status?userId=...
func (h *RegistrationsHandler) Status(c *fiber.Ctx) error {
	userID := c.Query("userId")
	if userID == "" {
		return util.NewValidationError("userId is required", nil)
	}

	reg, err := h.registrations.Status(c.UserContext(), userID)
	if err != nil {
		return err
	}

	resp := dto.StatusResponse{
		Success: true,
		Status:  string(reg.Status),
		UserData: dto.RegistrationView{
			ID:           reg.ID,
			FirstName:    reg.FirstName,
			LastName:     reg.LastName,
			NationalCode: reg.NationalID,
			Phone:        reg.Phone,
		},
	}

	switch reg.Status {
	case domain.StatusApproved:
		if reg.UniqueCode != nil {
			resp.UniqueCode = *reg.UniqueCode
		}
		resp.ApprovedAt = reg.ApprovedAt
		resp.Message = "Registration approved."
	case domain.StatusRejected:
		resp.Message = "Registration rejected."
	default:
		resp.Message = "Awaiting operator approval."
	}

	return c.JSON(resp)
}
