package mail

import (
	"context"
	"fmt"
	"net/http"
	netmail "net/mail"

	"github.com/sendgrid/sendgrid-go"
	sgmail "github.com/sendgrid/sendgrid-go/helpers/mail"
)

const (
	sendGridHost     = "https://api.sendgrid.com"
	sendGridEndpoint = "/v3/mail/send"
)

// SendGridOption configures a SendGridMailer.
type SendGridOption func(*sendGridConfig)

type sendGridConfig struct {
	host string
}

// WithSendGridHost points the mailer at another API host, e.g. a local fake.
func WithSendGridHost(host string) SendGridOption {
	return func(c *sendGridConfig) {
		if host != "" {
			c.host = host
		}
	}
}

// SendGridMailer delivers through the SendGrid v3 API.
type SendGridMailer struct {
	client     *sendgrid.Client
	from       *sgmail.Email
	subjPrefix string
}

// NewSendGridMailer creates a mailer sending as fromName <fromEmail>.
func NewSendGridMailer(key, fromName, fromEmail, appName string, opts ...SendGridOption) *SendGridMailer {
	cfg := sendGridConfig{host: sendGridHost}
	for _, opt := range opts {
		opt(&cfg)
	}
	req := sendgrid.GetRequest(key, sendGridEndpoint, cfg.host)
	req.Method = http.MethodPost

	prefix := ""
	if appName != "" {
		prefix = "[" + appName + "] "
	}
	return &SendGridMailer{
		client:     &sendgrid.Client{Request: req},
		from:       sgmail.NewEmail(fromName, fromEmail),
		subjPrefix: prefix,
	}
}

func (s *SendGridMailer) prepare(m *Message) *sgmail.SGMailV3 {
	p := sgmail.NewPersonalization()
	p.Subject = s.subjPrefix + m.Subject
	for _, to := range m.To {
		p.AddTos(sgEmail(to))
	}

	v3 := sgmail.NewV3Mail()
	v3.SetFrom(s.from)
	v3.AddPersonalizations(p)
	if m.TextContent != "" {
		v3.AddContent(sgmail.NewContent("text/plain", m.TextContent))
	}
	if m.HTMLContent != "" {
		v3.AddContent(sgmail.NewContent("text/html", m.HTMLContent))
	}
	return v3
}

func sgEmail(addr netmail.Address) *sgmail.Email {
	return sgmail.NewEmail(addr.Name, addr.Address)
}

// Send posts m to SendGrid. Any 4xx or 5xx answer is an error.
func (s *SendGridMailer) Send(ctx context.Context, m *Message) error {
	if !m.HasRecipients() {
		return ErrNoRecipients
	}
	res, err := s.client.SendWithContext(ctx, s.prepare(m))
	if err != nil {
		return fmt.Errorf("sendgrid: %w", err)
	}
	if res.StatusCode >= http.StatusBadRequest {
		return fmt.Errorf("sendgrid: status %d: %s", res.StatusCode, res.Body)
	}
	return nil
}
