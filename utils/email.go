package utils

import (
	"errors"
	"fmt"
	"net/smtp"
	"os"
	"strings"

	log "github.com/sirupsen/logrus"
)

var ErrSMTPNotConfigured = errors.New("SMTP not configured")

type EmailConfig struct {
	Host     string
	Port     string
	Username string
	Password string
	From     string
}

func GetEmailConfig() *EmailConfig {
	return &EmailConfig{
		Host:     os.Getenv("SMTP_HOST"),
		Port:     os.Getenv("SMTP_PORT"),
		Username: os.Getenv("SMTP_USERNAME"),
		Password: os.Getenv("SMTP_PASSWORD"),
		From:     os.Getenv("SMTP_FROM"),
	}
}

func (c *EmailConfig) Configured() bool {
	return c.Host != "" && c.Port != "" && c.From != ""
}

func SendEmail(to, subject, htmlBody string) error {
	config := GetEmailConfig()
	if !config.Configured() {
		return ErrSMTPNotConfigured
	}

	headers := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\nMIME-Version: 1.0\r\nContent-Type: text/html; charset=UTF-8\r\n\r\n",
		config.From, to, subject)
	msg := []byte(headers + htmlBody)

	var auth smtp.Auth
	if config.Username != "" && config.Password != "" {
		auth = smtp.PlainAuth("", config.Username, config.Password, config.Host)
	}

	addr := config.Host + ":" + config.Port
	return smtp.SendMail(addr, auth, config.From, []string{to}, msg)
}

func welcomeEmailBody(name string) string {
	return fmt.Sprintf(`<h2>Welcome to Prostore, %s!</h2>
<p>Thank you for creating your account. Anything you added to your cart before signing up is waiting for you.</p>
<p>Happy shopping!</p>
<p>The Prostore Team</p>`, firstName(name))
}

func firstName(name string) string {
	fields := strings.Fields(name)
	if len(fields) == 0 {
		return "there"
	}
	return fields[0]
}

// SendWelcomeEmail mails a new customer in the background. It is a no-op
// when SMTP is not configured.
func SendWelcomeEmail(email, name string) {
	if !GetEmailConfig().Configured() {
		log.WithField("email", email).Debug("SMTP not configured, skipping welcome email")
		return
	}
	go func() {
		if err := SendEmail(email, "Welcome to Prostore!", welcomeEmailBody(name)); err != nil {
			log.WithError(err).WithField("email", email).Warn("failed to send welcome email")
		}
	}()
}
