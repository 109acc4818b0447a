package notify

import (
	"errors"
	"os"
	"strings"

	"github.com/pelletier/go-toml/v2"

	"safetyhub/internal/errs"
)

// Templates hold the notification wording. Placeholders: {title}, {link},
// {name}.
type Templates struct {
	Email EmailTemplate `toml:"email"`
	SMS   SMSTemplate   `toml:"sms"`
}

type EmailTemplate struct {
	Subject  string `toml:"subject"`
	HTMLBody string `toml:"html_body"`
	TextBody string `toml:"text_body"`
}

type SMSTemplate struct {
	Body string `toml:"body"`
}

func DefaultTemplates() Templates {
	return Templates{
		Email: EmailTemplate{
			Subject:  "Safety Talk: {title}",
			HTMLBody: `<p>Hello {name},</p><p>A new safety talk <strong>{title}</strong> requires your review and signature.</p><p><a href="{link}">Open the talk</a></p>`,
			TextBody: "Hello {name},\n\nA new safety talk \"{title}\" requires your review and signature.\n\nOpen the talk: {link}\n",
		},
		SMS: SMSTemplate{
			Body: "Safety talk \"{title}\" needs your signature: {link}",
		},
	}
}

// LoadTemplates reads a TOML template file over the defaults. A missing
// file keeps the defaults; a present but unreadable file is an error.
func LoadTemplates(path string) (Templates, error) {
	tpl := DefaultTemplates()

	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return tpl, nil
	}

	raw, err := os.ReadFile(trimmed)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return tpl, nil
		}
		return Templates{}, errs.Wrapf(err, "read templates file %q", trimmed)
	}

	if err := toml.Unmarshal(raw, &tpl); err != nil {
		return Templates{}, errs.Wrapf(err, "parse templates file %q", trimmed)
	}
	return tpl, nil
}

// Render substitutes the supported placeholders.
func Render(template string, title string, link string, name string) string {
	return strings.NewReplacer(
		"{title}", title,
		"{link}", link,
		"{name}", name,
	).Replace(template)
}
