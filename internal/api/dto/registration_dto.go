package dto

import "time"

// SubmitRegistrationRequest payload for new registrations.
type SubmitRegistrationRequest struct {
	FirstName    string `json:"firstName"`
	LastName     string `json:"lastName"`
	NationalCode string `json:"nationalCode"`
	PhoneNumber  string `json:"phoneNumber"`
}

// SubmitRegistrationResponse standard response for a submission.
type SubmitRegistrationResponse struct {
	Success bool   `json:"success"`
	UserID  string `json:"userId"`
	Message string `json:"message"`
}

// RegistrationView is the identity subset included in status responses.
type RegistrationView struct {
	ID           string `json:"id"`
	FirstName    string `json:"firstName"`
	LastName     string `json:"lastName"`
	NationalCode string `json:"nationalCode"`
	Phone        string `json:"phone"`
}

// StatusResponse is the registration status view. UniqueCode and ApprovedAt
// are present only when the registration is approved.
type StatusResponse struct {
	Success    bool             `json:"success"`
	Status     string           `json:"status"`
	UserData   RegistrationView `json:"userData"`
	UniqueCode string           `json:"uniqueCode,omitempty"`
	ApprovedAt *time.Time       `json:"approvedAt,omitempty"`
	Message    string           `json:"message"`
}
