package utils

import (
	"errors"
	"strings"
	"testing"
)

func TestSendEmailRequiresSMTP(t *testing.T) {
	t.Setenv("SMTP_HOST", "")
	t.Setenv("SMTP_PORT", "")
	t.Setenv("SMTP_FROM", "")

	if err := SendEmail("a@test.com", "hi", "<p>hi</p>"); !errors.Is(err, ErrSMTPNotConfigured) {
		t.Errorf("expected ErrSMTPNotConfigured, got %v", err)
	}
}

func TestEmailConfigConfigured(t *testing.T) {
	t.Setenv("SMTP_HOST", "smtp.test")
	t.Setenv("SMTP_PORT", "587")
	t.Setenv("SMTP_FROM", "shop@test.com")

	if !GetEmailConfig().Configured() {
		t.Error("expected config with host, port and from to be configured")
	}
}

func TestWelcomeEmailBodyUsesFirstName(t *testing.T) {
	body := welcomeEmailBody("Jane Doe")
	if !strings.Contains(body, "Welcome to Prostore, Jane!") {
		t.Errorf("expected greeting with first name, got %s", body)
	}
	if !strings.Contains(welcomeEmailBody("  "), "Welcome to Prostore, there!") {
		t.Error("expected fallback greeting for blank name")
	}
}
