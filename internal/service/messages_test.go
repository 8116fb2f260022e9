package service

import (
	"errors"
	"strings"
	"testing"

	"github.com/adamzambudio/rpa-lab/internal/core/domain"
)

func TestMessageTemplates_Defaults(t *testing.T) {
	m, err := NewMessageTemplates("", "")
	if err != nil {
		t.Fatalf("NewMessageTemplates: %v", err)
	}
	subject, body, err := m.Render(MessageData{Name: "Ana", City: "Madrid"})
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if subject != "Informe para Ana - Madrid" {
		t.Errorf("subject = %q", subject)
	}
	if body != "<p>Hola Ana,</p><p>Adjunto informe con datos para Madrid.</p>" {
		t.Errorf("body = %q", body)
	}
}

func TestMessageTemplates_EscapesBody(t *testing.T) {
	m, err := NewMessageTemplates("{{.Name}}", "<p>{{.Name}}</p>")
	if err != nil {
		t.Fatal(err)
	}
	subject, body, err := m.Render(MessageData{Name: "<b>Ana</b>"})
	if err != nil {
		t.Fatal(err)
	}
	if subject != "<b>Ana</b>" {
		t.Errorf("subject should not be escaped: %q", subject)
	}
	if strings.Contains(body, "<b>") {
		t.Errorf("body not escaped: %q", body)
	}
}

func TestMessageTemplates_Errors(t *testing.T) {
	_, err := NewMessageTemplates("{{.Name", "")
	if !errors.Is(err, domain.ErrConfig) {
		t.Errorf("parse error = %v, want config error", err)
	}

	m, err := NewMessageTemplates("{{.Missing}}", "")
	if err != nil {
		t.Fatal(err)
	}
	_, _, err = m.Render(MessageData{})
	if !errors.Is(err, domain.ErrBuild) {
		t.Errorf("render error = %v, want build error", err)
	}
}
