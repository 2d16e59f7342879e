// Package mail renders notification templates and delivers them.
package mail

import (
	"bytes"
	"context"
	"embed"
	"errors"
	"fmt"
	htmltmpl "html/template"
	netmail "net/mail"
	texttmpl "text/template"
	"time"

	"github.com/okian/pairdesk/internal/domain/model"
	"github.com/okian/pairdesk/internal/domain/notify"
)

//go:embed templates/*.txt templates/*.gohtml
var templateFS embed.FS

// ErrNoRecipients is returned when a message has nobody to send to.
var ErrNoRecipients = errors.New("message has no recipients")

// ErrUnknownTemplate is returned when a message names a template that does not exist.
var ErrUnknownTemplate = errors.New("unknown mail template")

var subjects = map[notify.Kind]string{ //nolint:gochecknoglobals // read-only table
	notify.KindPairReminder:    "Appointment Reminder",
	notify.KindSoloReminder:    "Appointment Reminder",
	notify.KindMorningReminder: "Appointment Reminder",
	notify.KindPostSession:     "We'd Love Your Feedback!",
}

// Mailer delivers rendered messages.
type Mailer interface {
	Send(ctx context.Context, m *Message) error
}

// Message is one email. TextContent and HTMLContent are filled by Render.
type Message struct {
	To      []netmail.Address
	Subject string

	TemplateName string
	TemplateData any
	TextContent  string
	HTMLContent  string
}

// HasRecipients reports whether m has at least one address.
func (m *Message) HasRecipients() bool {
	return len(m.To) > 0
}

// HasContent reports whether m was rendered.
func (m *Message) HasContent() bool {
	return m.TextContent != "" || m.HTMLContent != ""
}

// Site is data shared by every template.
type Site struct {
	AppName     string
	FrontendURL string
	Venue       string
	FeedbackURL string
}

// contextData is what templates see as dot.
type contextData struct {
	Site
	Data any
}

// Reminder is the template data of reminder mails.
type Reminder struct {
	Name    string
	Date    string
	Time    string
	Station string
}

// Renderer executes the embedded templates.
type Renderer struct {
	site Site
	text *texttmpl.Template
	html *htmltmpl.Template
}

// NewRenderer parses the embedded templates.
func NewRenderer(site Site) (*Renderer, error) {
	text, err := texttmpl.ParseFS(templateFS, "templates/*.txt")
	if err != nil {
		return nil, fmt.Errorf("parse text templates: %w", err)
	}
	html, err := htmltmpl.ParseFS(templateFS, "templates/*.gohtml")
	if err != nil {
		return nil, fmt.Errorf("parse html templates: %w", err)
	}
	return &Renderer{site: site, text: text, html: html}, nil
}

// Render fills the text and HTML bodies of m from its template.
func (r *Renderer) Render(m *Message) error {
	data := contextData{Site: r.site, Data: m.TemplateData}

	t := r.text.Lookup(m.TemplateName + ".txt")
	h := r.html.Lookup(m.TemplateName + ".gohtml")
	if t == nil && h == nil {
		return fmt.Errorf("%w: %q", ErrUnknownTemplate, m.TemplateName)
	}

	if t != nil {
		var buf bytes.Buffer
		if err := t.Execute(&buf, data); err != nil {
			return fmt.Errorf("render %s text: %w", m.TemplateName, err)
		}
		m.TextContent = buf.String()
	}
	if h != nil {
		var buf bytes.Buffer
		if err := h.Execute(&buf, data); err != nil {
			return fmt.Errorf("render %s html: %w", m.TemplateName, err)
		}
		m.HTMLContent = buf.String()
	}
	return nil
}

// NewJobMessage builds the unrendered message for a notification job.
func NewJobMessage(j notify.Job) (*Message, error) {
	subject, ok := subjects[j.Kind]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownTemplate, j.Kind)
	}
	m := &Message{
		Subject:      subject,
		TemplateName: string(j.Kind),
		TemplateData: Reminder{
			Name:    j.To.Name,
			Date:    j.Date,
			Time:    clock12(j.StartTime),
			Station: j.Station,
		},
	}
	if j.To.Email != "" {
		m.To = []netmail.Address{{Name: j.To.Name, Address: j.To.Email}}
	}
	return m, nil
}

// clock12 turns "15:00" into "03:00 PM". Unparseable input is returned as is.
func clock12(hhmm string) string {
	t, err := time.Parse(model.TimeLayout, hhmm)
	if err != nil {
		return hhmm
	}
	return t.Format("03:04 PM")
}
