package mail

import (
	"context"
	"strings"
	"sync"

	"github.com/okian/pairdesk/pkg/logger"
)

// ConsoleMailer logs messages instead of sending them. With WithCapture it
// also keeps a copy of each one for inspection.
type ConsoleMailer struct {
	mu      sync.Mutex
	capture bool
	sent    []Message
	logger  logger.Logger
	// Fail, when set, can reject a message; a non-nil result is returned by Send.
	Fail func(m *Message) error
}

// ConsoleOption configures a ConsoleMailer.
type ConsoleOption func(*ConsoleMailer)

// WithCapture keeps every sent message in memory until Reset. Unbounded;
// meant for tests and one-shot commands.
func WithCapture() ConsoleOption {
	return func(c *ConsoleMailer) {
		c.capture = true
	}
}

// NewConsoleMailer creates a console mailer that logs through l.
func NewConsoleMailer(l logger.Logger, opts ...ConsoleOption) *ConsoleMailer {
	if l == nil {
		l = logger.Nop()
	}
	c := &ConsoleMailer{logger: l}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *ConsoleMailer) Send(ctx context.Context, m *Message) error {
	if !m.HasRecipients() {
		return ErrNoRecipients
	}
	if c.Fail != nil {
		if err := c.Fail(m); err != nil {
			return err
		}
	}

	to := make([]string, len(m.To))
	for i, a := range m.To {
		to[i] = a.String()
	}
	c.logger.Info(ctx, "mail",
		logger.String("to", strings.Join(to, ", ")),
		logger.String("subject", m.Subject),
		logger.String("template", m.TemplateName),
	)
	c.logger.Debug(ctx, "mail body", logger.String("text", m.TextContent))

	if c.capture {
		c.mu.Lock()
		c.sent = append(c.sent, *m)
		c.mu.Unlock()
	}
	return nil
}

// Sent returns a copy of every captured message.
func (c *ConsoleMailer) Sent() []Message {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Message, len(c.sent))
	copy(out, c.sent)
	return out
}

// Reset forgets captured messages.
func (c *ConsoleMailer) Reset() {
	c.mu.Lock()
	c.sent = nil
	c.mu.Unlock()
}
