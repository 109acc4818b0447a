package notify

import (
	"strings"
	"testing"
)

func TestComposeMessageCarriesBothParts(t *testing.T) {
	raw, err := composeMessage(
		"safety@example.com",
		"ana@example.com",
		"Safety talk: Ladder Safety",
		"<p>html body</p>",
		"text body",
	)
	if err != nil {
		t.Fatalf("composeMessage() error = %v", err)
	}

	msg := string(raw)
	for _, want := range []string{
		"From: <safety@example.com>",
		"To: <ana@example.com>",
		"Ladder Safety",
		"text/plain",
		"text/html",
		"html body",
		"text body",
	} {
		if !strings.Contains(msg, want) {
			t.Fatalf("composed message missing %q:\n%s", want, msg)
		}
	}
}
