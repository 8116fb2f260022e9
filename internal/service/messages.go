package service

import (
	"bytes"
	htmltemplate "html/template"
	"text/template"

	"github.com/adamzambudio/rpa-lab/internal/core/domain"
)

const (
	DefaultSubjectTemplate = "Informe para {{.Name}} - {{.City}}"
	DefaultBodyTemplate    = "<p>Hola {{.Name}},</p><p>Adjunto informe con datos para {{.City}}.</p>"

	// Single-run pipeline messages carry no client name.
	RunSubjectTemplate = "Informe web - {{.City}} - {{.GeneratedAt}}"
	RunBodyTemplate    = "<p>Adjunto informe automático para {{.City}} generado el {{.GeneratedAt}}.</p><p>(Generado por rpa-lab pipeline)</p>"
)

// MessageData is what subject and body templates are rendered with.
type MessageData struct {
	Name        string
	City        string
	Email       string
	GeneratedAt string
}

// MessageTemplates renders notification subjects and HTML bodies.
type MessageTemplates struct {
	subject *template.Template
	body    *htmltemplate.Template
}

// NewMessageTemplates parses the templates; empty strings select the defaults.
func NewMessageTemplates(subject, body string) (*MessageTemplates, error) {
	if subject == "" {
		subject = DefaultSubjectTemplate
	}
	if body == "" {
		body = DefaultBodyTemplate
	}
	st, err := template.New("subject").Parse(subject)
	if err != nil {
		return nil, &domain.ConfigError{Field: "notify.subject", Err: err}
	}
	bt, err := htmltemplate.New("body").Parse(body)
	if err != nil {
		return nil, &domain.ConfigError{Field: "notify.body", Err: err}
	}
	return &MessageTemplates{subject: st, body: bt}, nil
}

// Render produces the subject and body for data.
func (m *MessageTemplates) Render(data MessageData) (string, string, error) {
	var subject, body bytes.Buffer
	if err := m.subject.Execute(&subject, data); err != nil {
		return "", "", &domain.BuildError{Op: "render subject", Err: err}
	}
	if err := m.body.Execute(&body, data); err != nil {
		return "", "", &domain.BuildError{Op: "render body", Err: err}
	}
	return subject.String(), body.String(), nil
}
