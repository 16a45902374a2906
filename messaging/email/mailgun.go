package email

import (
	"context"
	"errors"
	"time"

	"github.com/mailgun/mailgun-go/v4"
)

// MailgunConfig holds the configuration for Mailgun
type MailgunConfig struct {
	Key    string `json:"key" yaml:"key"`
	Domain string `json:"domain" yaml:"domain"`
	From   string `json:"from" yaml:"from"`
}

// MailgunSender implements Sender for Mailgun
type MailgunSender struct {
	Config *MailgunConfig
}

func (s *MailgunSender) SendTemplateEmail(ctx context.Context, recipientEmail string, template Template) (string, error) {
	mg := mailgun.NewMailgun(s.Config.Domain, s.Config.Key)

	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	message := mg.NewMessage(s.Config.From, template.Subject, template.body(), recipientEmail)
	if template.HTML != "" {
		message.SetHtml(template.HTML)
	}
	if template.Template != "" {
		message.SetTemplate(template.Template)
		_ = message.AddVariable("url", template.URL)
		for k, v := range template.Data {
			_ = message.AddVariable(k, v)
		}
	}

	_, id, err := mg.Send(ctx, message)
	if err != nil {
		return "", err
	}
	return id, nil
}

func validateMailgunConfig(config *MailgunConfig) error {
	if config == nil || config.Key == "" || config.Domain == "" || config.From == "" {
		return errors.New("invalid Mailgun configuration")
	}
	return nil
}
