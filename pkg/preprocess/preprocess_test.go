package preprocess

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// ==================== Contact Info Tests ====================

func TestLinkContactInfo(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"email", "write to joe@example.com today", "write to <mailto:joe@example.com> today"},
		{"email at start with punctuation", "joe@example.com.", "<mailto:joe@example.com>."},
		{"email inside url untouched", "https://x.com/joe@example.com", "https://x.com/joe@example.com"},
		{"phone with dashes", "call 555-123-4567", "call <tel:555-123-4567>"},
		{"phone with area code parens", "call (555) 123-4567", "call <tel:(555) 123-4567>"},
		{"phone in parens", "(555.123.4567)", "(<tel:555.123.4567>)"},
		{"phone with country code", "+1 555 123 4567", "<tel:+1 555 123 4567>"},
		{"too short", "call 555-1234", "call 555-1234"},
		{"nothing to do", "plain text", "plain text"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, LinkContactInfo(tt.input))
		})
	}
}

// ==================== Citation Tests ====================

func TestRenumberCitations(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"sequential", "a【5】 b【9】 c【5】", "a【0】 b【1】 c【2】"},
		{"no markers", "none", "none"},
		{"not numeric", "a【x】", "a【x】"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, RenumberCitations(tt.input))
		})
	}
}

// ==================== Run Tests ====================

func TestRun(t *testing.T) {
	src := "mail a@b.co【3】"

	assert.Equal(t, src, Run(src, nil))
	assert.Equal(t, "mail a@b.co【0】", Run(src, []string{Citation}))
	assert.Equal(t, "mail <mailto:a@b.co>【0】", Run(src, []string{Citation, ContactInfo}))
}
