package services

import (
	"fmt"
	"net/smtp"
	"strings"

	"go.uber.org/zap"

	"github.com/example/clothy/internal/config"
	"github.com/example/clothy/internal/logger"
)

// EmailService sends transactional mail over SMTP. When no host is
// configured the service logs the message and drops it, so local setups work
// without a mail server.
type EmailService struct {
	host     string
	port     string
	username string
	password string
	from     string
}

func NewEmailService(cfg *config.Config) *EmailService {
	return &EmailService{
		host:     cfg.SMTPHost,
		port:     cfg.SMTPPort,
		username: cfg.SMTPUser,
		password: cfg.SMTPPass,
		from:     cfg.EmailFrom,
	}
}

// Send delivers a plain-text message to a single recipient.
func (s *EmailService) Send(to, subject, body string) error {
	if s.host == "" {
		logger.L().Warn("SMTP not configured, skipping email",
			zap.String("to", to),
			zap.String("subject", subject),
		)
		return nil
	}

	var msg strings.Builder
	msg.WriteString(fmt.Sprintf("From: %s\r\n", s.from))
	msg.WriteString(fmt.Sprintf("To: %s\r\n", to))
	msg.WriteString(fmt.Sprintf("Subject: %s\r\n", subject))
	msg.WriteString("MIME-Version: 1.0\r\n")
	msg.WriteString("Content-Type: text/plain; charset=\"UTF-8\"\r\n")
	msg.WriteString("\r\n")
	msg.WriteString(body)

	addr := fmt.Sprintf("%s:%s", s.host, s.port)
	auth := smtp.PlainAuth("", s.username, s.password, s.host)

	if err := smtp.SendMail(addr, auth, s.from, []string{to}, []byte(msg.String())); err != nil {
		return fmt.Errorf("send email to %s: %w", to, err)
	}

	logger.L().Info("Email sent", zap.String("to", to), zap.String("subject", subject))
	return nil
}

// SendPasswordReset mails the reset link for the given token.
func (s *EmailService) SendPasswordReset(to, resetURL string) error {
	body := fmt.Sprintf(
		"You requested a password reset.\n\n"+
			"Open the link below to choose a new password. The link expires soon.\n\n"+
			"%s\n\n"+
			"If you did not request this, you can ignore this email.\n",
		resetURL,
	)
	return s.Send(to, "Reset your password", body)
}
