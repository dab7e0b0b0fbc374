package mail

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"

	"gopkg.in/gomail.v2"
)

//go:embed templates/*.html
var templateFS embed.FS

var templates = template.Must(template.ParseFS(templateFS, "templates/*.html"))

func NewEmailSender(host string, port int, user, password, from string) *EmailSender {
	return &EmailSender{
		Host:     host,
		Port:     port,
		User:     user,
		Password: password,
		From:     from,
	}
}

// Configured is false when no SMTP host is set.
func (s *EmailSender) Configured() bool {
	return s != nil && s.Host != ""
}

func (s *EmailSender) SendLeadAssigned(to string, data LeadAssignedEmailData) error {
	m, err := s.leadAssignedMessage(to, data)
	if err != nil {
		return err
	}

	d := gomail.NewDialer(s.Host, s.Port, s.User, s.Password)
	if err := d.DialAndSend(m); err != nil {
		return fmt.Errorf("failed to send SMTP email: %w", err)
	}
	return nil
}

func (s *EmailSender) leadAssignedMessage(to string, data LeadAssignedEmailData) (*gomail.Message, error) {
	var body bytes.Buffer
	if err := templates.ExecuteTemplate(&body, "lead_assigned.html", data); err != nil {
		return nil, fmt.Errorf("failed to render email template: %w", err)
	}

	subject := "New lead assigned"
	if data.LeadName != "" {
		subject = fmt.Sprintf("New lead assigned: %s", data.LeadName)
	}

	m := gomail.NewMessage()
	m.SetHeader("From", s.From)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/html", body.String())
	return m, nil
}
