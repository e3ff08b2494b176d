package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidEmail(t *testing.T) {
	tests := []struct {
		email string
		want  bool
	}{
		{"user@example.com", true},
		{"first.last@sub.example.co.za", true},
		{"u@d.io", true},
		{"", false},
		{"plainaddress", false},
		{"missing-domain@", false},
		{"@missing-local.com", false},
		{"no-dot@domain", false},
		{"two@@example.com", false},
		{"spaces in@example.com", false},
		{"user@exa mple.com", false},
	}

	for _, tt := range tests {
		t.Run(tt.email, func(t *testing.T) {
			assert.Equal(t, tt.want, ValidEmail(tt.email))
		})
	}
}

func TestValidPhone(t *testing.T) {
	tests := []struct {
		phone string
		want  bool
	}{
		{"+15551234567", true},
		{"15551234567", true},
		{"(555) 123-4567 ext 1", true}, // digits only after stripping
		{"27821234567", true},
		{"12", true},
		{"", false},
		{"1", false},
		{"0821234567", false},          // leading zero
		{"+0821234567", false},
		{"1234567890123456", false},    // 16 digits
		{"no digits here", false},
	}

	for _, tt := range tests {
		t.Run(tt.phone, func(t *testing.T) {
			assert.Equal(t, tt.want, ValidPhone(tt.phone))
		})
	}
}
