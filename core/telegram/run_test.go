package telegram

import (
	"strings"
	"testing"
)

func TestRedactTokenMasksTokenInErrors(t *testing.T) {
	token := "123456:AAF-secret"
	msg := `Post "https://api.telegram.org/bot` + token + `/deleteWebhook": dial tcp: lookup api.telegram.org: no such host`

	got := redactToken(msg, token)
	if strings.Contains(got, token) {
		t.Fatalf("token survived redaction: %s", got)
	}
	if !strings.Contains(got, "/bot***/deleteWebhook") {
		t.Fatalf("token placeholder missing: %s", got)
	}
}

func TestRedactTokenPassthrough(t *testing.T) {
	if got := redactToken("connection refused", "123456:AAF-secret"); got != "connection refused" {
		t.Fatalf("token-free message must be unchanged, got %q", got)
	}
	if got := redactToken("anything", ""); got != "anything" {
		t.Fatalf("empty token must be a no-op, got %q", got)
	}
}
