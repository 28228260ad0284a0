package queue

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"github.com/benesafe/registry/internal/core/ports"
)

func TestLogMailer_OmitsBody(t *testing.T) {
	var buf bytes.Buffer
	m := NewLogMailer(zerolog.New(&buf))

	err := m.Send(context.Background(), ports.MailMessage{
		UserID:  "user-1",
		To:      "alice@example.com",
		Subject: "Verify your BeneSafe email address",
		Body:    "open https://benesafe.example/auth/verify-email?token=s3cr3t-token",
	})
	if err != nil {
		t.Fatalf("Send returned error: %v", err)
	}

	if strings.Contains(buf.String(), "s3cr3t-token") {
		t.Fatalf("verification token written to the log: %s", buf.String())
	}

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("invalid log line: %v", err)
	}
	if entry["to"] != "alice@example.com" || entry["subject"] != "Verify your BeneSafe email address" {
		t.Fatalf("recipient or subject missing: %v", entry)
	}
	if _, ok := entry["body"]; ok {
		t.Fatalf("body field present: %v", entry)
	}
}
