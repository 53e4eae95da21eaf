package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestValidNationalID(t *testing.T) {
	assert.True(t, ValidNationalID("1234567890123"))
	assert.False(t, ValidNationalID("123456789012"), "too short")
	assert.False(t, ValidNationalID("12345678901234"), "too long")
	assert.False(t, ValidNationalID("123456789012a"), "letter")
	assert.False(t, ValidNationalID(""))
}

func TestValidPhone(t *testing.T) {
	assert.True(t, ValidPhone("0912345678"))
	assert.False(t, ValidPhone("091234567"), "too short")
	assert.False(t, ValidPhone("09123456789"), "too long")
	assert.False(t, ValidPhone("09123 5678"), "space")
	assert.False(t, ValidPhone(""))
}

func TestValidUniqueCode(t *testing.T) {
	cases := []struct {
		code string
		want bool
	}{
		{"POS123", true},
		{"USER-2024", true},
		{"shop_001", true},
		{"ab", false},
		{"", false},
		{"POS 123", false},
		{"POS#123", false},
		{"کد۱۲۳", false},
		{"abc", true},
		{"---", true},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, ValidUniqueCode(tc.code), "code %q", tc.code)
	}
}

func TestApprovalSessionExpiry(t *testing.T) {
	now := time.Now()
	session := NewApprovalSession(42, "reg-1", IntentAwaitingApprovalCode, 30*time.Minute, now)

	assert.Equal(t, int64(42), session.ChatID)
	assert.Equal(t, "reg-1", session.RegistrationID)
	assert.False(t, session.Expired(now))
	assert.False(t, session.Expired(now.Add(29*time.Minute)))
	assert.True(t, session.Expired(now.Add(30*time.Minute)))
	assert.True(t, session.Expired(now.Add(time.Hour)))
}
