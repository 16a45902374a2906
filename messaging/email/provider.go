package email

import (
	"github.com/google/wire"
)

// ProviderSet is the wire provider set for the email package.
var ProviderSet = wire.NewSet(ProvideSender)

// ProvideSender creates an email Sender from Email configuration.
// Returns nil when no provider is configured; callers treat email as optional.
func ProvideSender(cfg *Email) (Sender, error) {
	if cfg == nil {
		return nil, nil
	}

	switch cfg.Provider {
	case "mailgun":
		return NewSender(cfg.Mailgun)
	case "sendgrid":
		return NewSender(cfg.SendGrid)
	case "smtp":
		return NewSender(cfg.SMTP)
	default:
		return nil, nil
	}
}
