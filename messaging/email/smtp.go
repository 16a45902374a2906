package email

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/smtp"
)

// SMTPConfig holds the configuration for local email sending
type SMTPConfig struct {
	SMTPHost string `json:"host" yaml:"host"`
	SMTPPort string `json:"port" yaml:"port"`
	Username string `json:"username" yaml:"username"`
	Password string `json:"password" yaml:"password"`
	From     string `json:"from" yaml:"from"`
}

// LocalSMTPSender implements Sender for a plain SMTP relay
type LocalSMTPSender struct {
	Config *SMTPConfig
}

func (s *LocalSMTPSender) SendTemplateEmail(ctx context.Context, recipientEmail string, template Template) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	var auth smtp.Auth
	if s.Config.Username != "" {
		auth = smtp.PlainAuth("", s.Config.Username, s.Config.Password, s.Config.SMTPHost)
	}
	msg := []byte(fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\n\r\n%s",
		s.Config.From, recipientEmail, template.Subject, template.body()))

	addr := net.JoinHostPort(s.Config.SMTPHost, s.Config.SMTPPort)
	if err := smtp.SendMail(addr, auth, s.Config.From, []string{recipientEmail}, msg); err != nil {
		return "", fmt.Errorf("smtp send: %w", err)
	}
	return "", nil
}

func validateSMTPConfig(config *SMTPConfig) error {
	if config == nil || config.SMTPHost == "" || config.SMTPPort == "" || config.From == "" {
		return errors.New("invalid local email configuration")
	}
	return nil
}
