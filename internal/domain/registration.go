package domain

import "time"

// RegistrationStatus represents lifecycle states for a registration request.
type RegistrationStatus string

const (
	StatusPending  RegistrationStatus = "pending"
	StatusApproved RegistrationStatus = "approved"
	StatusRejected RegistrationStatus = "rejected"
)

// Field format rules enforced at intake.
const (
	NationalIDLength = 13
	PhoneLength      = 10
	MinCodeLength    = 3
)

// Registration is the domain model for a submitted registration request.
// Optional fields are populated only once an operator approves the request.
type Registration struct {
	ID                string
	FirstName         string
	LastName          string
	NationalID        string
	Phone             string
	Status            RegistrationStatus
	UniqueCode        *string
	ApprovedAt        *time.Time
	ApprovedBy        *string
	TelegramMessageID *int
	SubmitterIP       string
	CreatedAt         time.Time
}

// FullName returns the submitter's display name.
func (r *Registration) FullName() string {
	return r.FirstName + " " + r.LastName
}

// ValidNationalID reports whether s is exactly NationalIDLength digits.
func ValidNationalID(s string) bool {
	return len(s) == NationalIDLength && allDigits(s)
}

// ValidPhone reports whether s is exactly PhoneLength digits.
func ValidPhone(s string) bool {
	return len(s) == PhoneLength && allDigits(s)
}

// ValidUniqueCode reports whether s is an acceptable operator-assigned code:
// at least MinCodeLength characters drawn from ASCII letters, digits, hyphen
// and underscore.
func ValidUniqueCode(s string) bool {
	if len(s) < MinCodeLength {
		return false
	}
	for _, c := range s {
		switch {
		case c >= 'a' && c <= 'z':
		case c >= 'A' && c <= 'Z':
		case c >= '0' && c <= '9':
		case c == '-' || c == '_':
		default:
			return false
		}
	}
	return true
}

func allDigits(s string) bool {
	for _, c := range s {
		if c < '0' || c > '9' {
			return false
		}
	}
	return len(s) > 0
}
