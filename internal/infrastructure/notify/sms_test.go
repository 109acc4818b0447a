package notify

import (
	"strings"
	"testing"
)

func TestBuildSMSBodyFitsWithoutTruncation(t *testing.T) {
	tpl := DefaultTemplates().SMS.Body
	link := "http://hub.local/t/abc123"

	body := BuildSMSBody(tpl, "Ladder Safety", link, 160)
	if !strings.Contains(body, "Ladder Safety") || !strings.Contains(body, link) {
		t.Fatalf("BuildSMSBody() = %q", body)
	}
}

func TestBuildSMSBodyShortensTitleKeepsLink(t *testing.T) {
	tpl := DefaultTemplates().SMS.Body
	link := "http://hub.local/t/abc123"
	longTitle := strings.Repeat("Working Safely at Height ", 10)

	body := BuildSMSBody(tpl, longTitle, link, 160)
	if len([]rune(body)) > 160 {
		t.Fatalf("BuildSMSBody() len = %d", len([]rune(body)))
	}
	if !strings.Contains(body, link) {
		t.Fatalf("link truncated: %q", body)
	}
	if !strings.Contains(body, "…") {
		t.Fatalf("no ellipsis marker: %q", body)
	}
}

func TestBuildSMSBodyFallsBackToLinkAlone(t *testing.T) {
	link := "http://hub.local/t/abc123"
	// Template overhead alone exceeds the budget, so only the link fits.
	tpl := strings.Repeat("x", 40) + " {title} {link}"

	body := BuildSMSBody(tpl, "Ladder Safety", link, 50)
	if body != link {
		t.Fatalf("BuildSMSBody() = %q, want bare link", body)
	}
}

func TestRenderSubstitutesPlaceholders(t *testing.T) {
	got := Render("Hi {name}, read {title} at {link}", "Ladder Safety", "http://x", "Ana")
	want := "Hi Ana, read Ladder Safety at http://x"
	if got != want {
		t.Fatalf("Render() = %q", got)
	}
}
