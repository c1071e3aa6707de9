package email

import (
	"fmt"
	"net/smtp"
	"os"
)

// SendEmail sends a plain text email through the configured SMTP relay.
// The sender identity comes from SMTP_SENDER. When SMTP_HOST is unset,
// mail is skipped so local setups work without a relay.
func SendEmail(to, subject, body string) error {
	from := os.Getenv("SMTP_SENDER")
	password := os.Getenv("SMTP_PASSWORD")
	smtpHost := os.Getenv("SMTP_HOST")
	smtpPort := os.Getenv("SMTP_PORT")

	if smtpHost == "" {
		return nil
	}

	auth := smtp.PlainAuth("", from, password, smtpHost)

	msg := []byte("From: PawPal <" + from + ">\r\n" +
		"To: " + to + "\r\n" +
		"Subject: " + subject + "\r\n" +
		"\r\n" + body + "\r\n")

	if err := smtp.SendMail(smtpHost+":"+smtpPort, auth, from, []string{to}, msg); err != nil {
		return fmt.Errorf("failed to send email: %v", err)
	}
	return nil
}
