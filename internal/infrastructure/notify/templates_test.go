package notify

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadTemplatesMissingFileKeepsDefaults(t *testing.T) {
	tpl, err := LoadTemplates(filepath.Join(t.TempDir(), "nope.toml"))
	if err != nil {
		t.Fatalf("LoadTemplates() error = %v", err)
	}
	if tpl.Email.Subject != DefaultTemplates().Email.Subject {
		t.Fatalf("subject = %q", tpl.Email.Subject)
	}
}

func TestLoadTemplatesOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "templates.toml")
	content := "[email]\nsubject = \"Custom: {title}\"\n\n[sms]\nbody = \"{title} -> {link}\"\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write templates: %v", err)
	}

	tpl, err := LoadTemplates(path)
	if err != nil {
		t.Fatalf("LoadTemplates() error = %v", err)
	}
	if tpl.Email.Subject != "Custom: {title}" {
		t.Fatalf("subject = %q", tpl.Email.Subject)
	}
	if tpl.SMS.Body != "{title} -> {link}" {
		t.Fatalf("sms body = %q", tpl.SMS.Body)
	}
	// Untouched fields keep their defaults.
	if tpl.Email.HTMLBody != DefaultTemplates().Email.HTMLBody {
		t.Fatalf("html body = %q", tpl.Email.HTMLBody)
	}
}

func TestLoadTemplatesBadTOML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "templates.toml")
	if err := os.WriteFile(path, []byte("not = [valid"), 0o644); err != nil {
		t.Fatalf("write templates: %v", err)
	}
	if _, err := LoadTemplates(path); err == nil {
		t.Fatalf("LoadTemplates(bad toml) succeeded")
	}
}
