package email

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/carlpacpaco9-design/HRIS-sub001/internal/platform/config"
)

func TestNewReturnsNoopWhenDisabled(t *testing.T) {
	mailer := New(config.Config{EmailEnabled: false, SMTPHost: "smtp.example.com"})
	if _, ok := mailer.(noopMailer); !ok {
		t.Fatalf("expected noop mailer, got %T", mailer)
	}
	if err := mailer.Send(context.Background(), "a@example.com", "b@example.com", "s", "b"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestNewConfiguresSMTP(t *testing.T) {
	mailer := New(config.Config{EmailEnabled: true, SMTPHost: "smtp.example.com", SMTPPort: 587, SMTPUseTLS: true})
	m, ok := mailer.(*smtpMailer)
	if !ok {
		t.Fatalf("expected smtp mailer, got %T", mailer)
	}
	if m.dialer.Host != "smtp.example.com" || m.dialer.Port != 587 {
		t.Fatalf("unexpected dialer: %s:%d", m.dialer.Host, m.dialer.Port)
	}
	if m.dialer.TLSConfig == nil || m.dialer.TLSConfig.ServerName != "smtp.example.com" {
		t.Fatal("expected tls server name to be set")
	}
}

func TestSendSkipsEmptyRecipient(t *testing.T) {
	mailer := New(config.Config{EmailEnabled: true, SMTPHost: "127.0.0.1", SMTPPort: 1})
	if err := mailer.Send(context.Background(), "a@example.com", "  ", "s", "b"); err != nil {
		t.Fatalf("expected empty recipient to be skipped, got %v", err)
	}
}

func TestBuildMessageHeaders(t *testing.T) {
	var buf bytes.Buffer
	if _, err := buildMessage("hr@example.gov", "emp@example.gov", "IPCR returned", "Please revise.").WriteTo(&buf); err != nil {
		t.Fatalf("write message: %v", err)
	}
	raw := buf.String()
	for _, want := range []string{"From: hr@example.gov", "To: emp@example.gov", "Subject: IPCR returned", "Please revise."} {
		if !strings.Contains(raw, want) {
			t.Fatalf("expected message to contain %q:\n%s", want, raw)
		}
	}
}
